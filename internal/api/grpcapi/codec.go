package grpcapi

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/proto"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
)

// wireCodec кодирует сообщения сервиса меню вручную, а остальные (BoolValue, health,
// reflection) передаёт стандартному protobuf. Content-type остаётся application/grpc+proto.
type wireCodec struct{}

var _ encoding.Codec = wireCodec{}

func (wireCodec) Marshal(v any) ([]byte, error) {
	switch msg := v.(type) {
	case wireMessage:
		return msg.marshalWire(), nil
	case proto.Message:
		return proto.Marshal(msg)
	default:
		return nil, fmt.Errorf("grpcapi codec: unsupported message type %T", v)
	}
}

func (wireCodec) Unmarshal(data []byte, v any) error {
	switch msg := v.(type) {
	case wireMessage:
		return msg.unmarshalWire(data)
	case proto.Message:
		return proto.Unmarshal(data, msg)
	default:
		return fmt.Errorf("grpcapi codec: unsupported message type %T", v)
	}
}

func (wireCodec) Name() string {
	return "proto"
}

// ServerCodec подключает кодек сервиса меню к grpc.Server.
func ServerCodec() grpc.ServerOption {
	return grpc.ForceServerCodec(wireCodec{})
}

// CallCodec подключает кодек сервиса меню к вызову на стороне клиента.
func CallCodec() grpc.CallOption {
	return grpc.ForceCodec(wireCodec{})
}

// FromDomainMenu переводит позиции каталога в сообщения ответа GetMenu.
func FromDomainMenu(items []domain.MenuItem) []MenuItem {
	out := make([]MenuItem, 0, len(items))
	for _, item := range items {
		out = append(out, MenuItem{
			ID:         item.ID,
			Article:    item.Article,
			Name:       item.Name,
			Price:      item.Price.InexactFloat64(),
			IsWeighted: item.IsWeighted,
			FullPath:   item.FullPath,
			Barcodes:   append([]string(nil), item.Barcodes...),
		})
	}
	return out
}

// ToDomainMenu переводит ответ GetMenu в позиции каталога.
func ToDomainMenu(items []MenuItem) ([]domain.MenuItem, error) {
	out := make([]domain.MenuItem, 0, len(items))
	for i, item := range items {
		price, err := decimalFromDouble(item.Price)
		if err != nil {
			return nil, fmt.Errorf("menu_items[%d].price: %w", i, err)
		}
		barcodes := item.Barcodes
		if barcodes == nil {
			barcodes = []string{}
		}
		out = append(out, domain.MenuItem{
			ID:         item.ID,
			Article:    item.Article,
			Name:       item.Name,
			Price:      price,
			IsWeighted: item.IsWeighted,
			FullPath:   item.FullPath,
			Barcodes:   barcodes,
		})
	}
	return out, nil
}

// FromDomainOrder собирает запрос SendOrder. Количество передаётся как double.
func FromDomainOrder(order domain.Order) *Order {
	msg := &Order{
		ID:         order.ID.String(),
		OrderItems: make([]OrderItem, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		msg.OrderItems = append(msg.OrderItems, OrderItem{
			ID:       item.MenuItemID,
			Quantity: item.Quantity.InexactFloat64(),
		})
	}
	return msg
}

// ToDomainOrder разбирает запрос SendOrder.
func ToDomainOrder(msg *Order) (domain.Order, error) {
	id, err := uuid.Parse(msg.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("id: %w", err)
	}

	order := domain.Order{ID: id, Items: make([]domain.OrderItem, 0, len(msg.OrderItems))}
	for i, item := range msg.OrderItems {
		quantity, err := decimalFromDouble(item.Quantity)
		if err != nil {
			return domain.Order{}, fmt.Errorf("order_items[%d].quantity: %w", i, err)
		}
		order.Items = append(order.Items, domain.OrderItem{
			MenuItemID: item.ID,
			Quantity:   quantity,
		})
	}
	return order, nil
}

func decimalFromDouble(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, fmt.Errorf("not a finite number")
	}
	return decimal.NewFromFloat(v), nil
}
