// Package httpapi реализует клиент удалённого API меню поверх HTTP: каждая команда
// отправляется POST-запросом на базовый URL в JSON-конверте с Basic-авторизацией.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
	"github.com/vladislavdragonenkov/smartmeal/internal/result"
	"github.com/vladislavdragonenkov/smartmeal/internal/version"
)

// DefaultTimeout ограничивает время одного запроса.
const DefaultTimeout = 30 * time.Second

const maxResponseBytes = 16 << 20

// Config описывает подключение к API.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// Client: HTTP-клиент API меню.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *log.Entry
}

// NewClient создаёт клиент. Нулевой Timeout заменяется на DefaultTimeout.
func NewClient(cfg Config, logger *log.Entry) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.New().WithField("component", "http-api")
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// FetchMenu выполняет команду GetMenu.
func (c *Client) FetchMenu(ctx context.Context, withPrice bool) result.Result[[]domain.MenuItem] {
	resp, err := c.execute(ctx, CommandGetMenu, GetMenuParameters{WithPrice: withPrice})
	if err != nil {
		return result.Fail[[]domain.MenuItem](err)
	}

	var data MenuData
	if len(resp.Data) > 0 && string(resp.Data) != "null" {
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			return result.Failf[[]domain.MenuItem](domain.CodeTransport, "decode menu: %v", err)
		}
	}

	return result.Ok(ToDomainMenu(data.MenuItems))
}

// SubmitOrder выполняет команду SendOrder.
func (c *Client) SubmitOrder(ctx context.Context, order domain.Order) result.Result[struct{}] {
	if _, err := c.execute(ctx, CommandSendOrder, FromDomainOrder(order)); err != nil {
		return result.Fail[struct{}](err)
	}
	return result.Ok(struct{}{})
}

func (c *Client) execute(ctx context.Context, command string, parameters any) (CommandResponse, *domain.Error) {
	logger := c.logger.WithField("command", command)

	params, err := json.Marshal(parameters)
	if err != nil {
		return CommandResponse{}, domain.Errorf(domain.CodeTransport, "encode %s parameters: %v", command, err)
	}
	body, err := json.Marshal(CommandRequest{Command: command, CommandParameters: params})
	if err != nil {
		return CommandResponse{}, domain.Errorf(domain.CodeTransport, "encode %s request: %v", command, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return CommandResponse{}, domain.Errorf(domain.CodeTransport, "build %s request: %v", command, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WithError(err).Warn("api request failed")
		return CommandResponse{}, domain.Errorf(domain.CodeTransport, "%s request failed: %v", command, err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return CommandResponse{}, domain.Errorf(domain.CodeTransport, "read %s response: %v", command, err)
	}

	logger.WithFields(log.Fields{
		"status":   httpResp.StatusCode,
		"bytes":    len(raw),
		"duration": time.Since(start),
	}).Debug("api response received")

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return CommandResponse{}, domain.Errorf(domain.CodeTransport,
			"%s: unexpected HTTP status %d %s", command, httpResp.StatusCode, http.StatusText(httpResp.StatusCode))
	}

	var resp CommandResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return CommandResponse{}, domain.Errorf(domain.CodeTransport, "decode %s response: %v", command, err)
	}
	if !resp.Success {
		return CommandResponse{}, apiError(command, resp.ErrorMessage)
	}

	return resp, nil
}

func apiError(command, message string) *domain.Error {
	if message == "" {
		message = fmt.Sprintf("%s was rejected by the server", command)
	}
	return domain.NewError(domain.CodeAPI, message)
}
