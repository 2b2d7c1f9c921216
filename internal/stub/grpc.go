package stub

import (
	"context"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/vladislavdragonenkov/smartmeal/internal/api/grpcapi"
)

// MenuService реализует gRPC-сервис меню поверх Catalog.
type MenuService struct {
	catalog *Catalog
	logger  *log.Entry
}

// NewMenuService создаёт gRPC-сервис меню.
func NewMenuService(catalog *Catalog, logger *log.Entry) *MenuService {
	if logger == nil {
		logger = log.New().WithField("component", "stub-grpc")
	}
	return &MenuService{catalog: catalog, logger: logger}
}

// GetMenu отдаёт каталог. Без withPrice цены обнуляются.
func (s *MenuService) GetMenu(_ context.Context, withPrice *wrapperspb.BoolValue) (*grpcapi.GetMenuResponse, error) {
	items := s.catalog.Items()
	if !withPrice.GetValue() {
		for i := range items {
			items[i].Price = decimal.Zero
		}
	}

	s.logger.WithField("items", len(items)).Info("menu served")
	return &grpcapi.GetMenuResponse{Success: true, MenuItems: grpcapi.FromDomainMenu(items)}, nil
}

// SendOrder принимает заказ. Бизнес-отказ возвращается в теле ответа, а не статусом.
func (s *MenuService) SendOrder(_ context.Context, msg *grpcapi.Order) (*grpcapi.SendOrderResponse, error) {
	order, err := grpcapi.ToDomainOrder(msg)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode order: %v", err)
	}

	if err := s.catalog.AcceptOrder(order); err != nil {
		s.logger.WithError(err).Warn("order rejected")
		return &grpcapi.SendOrderResponse{ErrorMessage: err.Error()}, nil
	}

	logOrder(s.logger, order)
	return &grpcapi.SendOrderResponse{Success: true}, nil
}

var _ grpcapi.MenuServiceServer = (*MenuService)(nil)
