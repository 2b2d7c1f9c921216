package stub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/smartmeal/internal/api/httpapi"
	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
)

// Credentials: учётные данные Basic-авторизации. Пустой Username отключает проверку.
type Credentials struct {
	Username string
	Password string
}

type commandHandler struct {
	catalog *Catalog
	logger  *log.Entry
}

// NewHTTPHandler создаёт HTTP-обработчик командного API: POST / с JSON-конвертом.
func NewHTTPHandler(catalog *Catalog, creds Credentials, logger *log.Entry) http.Handler {
	if logger == nil {
		logger = log.New().WithField("component", "stub-http")
	}
	h := &commandHandler{catalog: catalog, logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	if creds.Username != "" {
		r.Use(chimiddleware.BasicAuth("smartmeal", map[string]string{creds.Username: creds.Password}))
	}
	r.Post("/", h.serveCommand)

	return r
}

func (h *commandHandler) serveCommand(w http.ResponseWriter, r *http.Request) {
	var req httpapi.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed command envelope", http.StatusBadRequest)
		return
	}

	logger := h.logger.WithFields(log.Fields{
		"command":    req.Command,
		"request_id": chimiddleware.GetReqID(r.Context()),
	})

	switch req.Command {
	case httpapi.CommandGetMenu:
		h.getMenu(w, req, logger)
	case httpapi.CommandSendOrder:
		h.sendOrder(w, req, logger)
	default:
		logger.Warn("unknown command")
		writeResponse(w, httpapi.CommandResponse{
			Command:      req.Command,
			ErrorMessage: fmt.Sprintf("unknown command %q", req.Command),
		})
	}
}

func (h *commandHandler) getMenu(w http.ResponseWriter, req httpapi.CommandRequest, logger *log.Entry) {
	var params httpapi.GetMenuParameters
	if len(req.CommandParameters) > 0 {
		if err := json.Unmarshal(req.CommandParameters, &params); err != nil {
			writeResponse(w, httpapi.CommandResponse{Command: req.Command, ErrorMessage: "invalid commandParameters"})
			return
		}
	}

	items := h.catalog.Items()
	if !params.WithPrice {
		for i := range items {
			items[i].Price = decimal.Zero
		}
	}

	data, err := json.Marshal(httpapi.MenuData{MenuItems: httpapi.FromDomainMenu(items)})
	if err != nil {
		logger.WithError(err).Error("failed to encode menu")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logger.WithField("items", len(items)).Info("menu served")
	writeResponse(w, httpapi.CommandResponse{Command: req.Command, Success: true, Data: data})
}

func (h *commandHandler) sendOrder(w http.ResponseWriter, req httpapi.CommandRequest, logger *log.Entry) {
	var params httpapi.SendOrderParameters
	if err := json.Unmarshal(req.CommandParameters, &params); err != nil {
		writeResponse(w, httpapi.CommandResponse{Command: req.Command, ErrorMessage: "invalid commandParameters"})
		return
	}

	order, err := httpapi.ToDomainOrder(params)
	if err == nil {
		err = h.catalog.AcceptOrder(order)
	}
	if err != nil {
		logger.WithError(err).Warn("order rejected")
		writeResponse(w, httpapi.CommandResponse{Command: req.Command, ErrorMessage: err.Error()})
		return
	}

	logOrder(logger, order)
	writeResponse(w, httpapi.CommandResponse{Command: req.Command, Success: true})
}

func writeResponse(w http.ResponseWriter, resp httpapi.CommandResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func logOrder(logger *log.Entry, order domain.Order) {
	logger.WithFields(log.Fields{
		"order_id": order.ID.String(),
		"items":    len(order.Items),
	}).Info("order accepted")
}
