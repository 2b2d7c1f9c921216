package httpapi

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
)

// ToDomainMenu переводит позиции API в доменную модель.
func ToDomainMenu(items []MenuItemDTO) []domain.MenuItem {
	out := make([]domain.MenuItem, 0, len(items))
	for _, item := range items {
		out = append(out, domain.MenuItem{
			ID:         item.ID,
			Article:    item.Article,
			Name:       item.Name,
			Price:      item.Price,
			IsWeighted: item.IsWeighted,
			FullPath:   item.FullPath,
			Barcodes:   append([]string(nil), item.Barcodes...),
		})
	}
	return out
}

// FromDomainMenu переводит позиции каталога в формат API.
func FromDomainMenu(items []domain.MenuItem) []MenuItemDTO {
	out := make([]MenuItemDTO, 0, len(items))
	for _, item := range items {
		barcodes := item.Barcodes
		if barcodes == nil {
			barcodes = []string{}
		}
		out = append(out, MenuItemDTO{
			ID:         item.ID,
			Article:    item.Article,
			Name:       item.Name,
			Price:      item.Price,
			IsWeighted: item.IsWeighted,
			FullPath:   item.FullPath,
			Barcodes:   barcodes,
		})
	}
	return out
}

// FromDomainOrder собирает параметры SendOrder.
func FromDomainOrder(order domain.Order) SendOrderParameters {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:       item.MenuItemID,
			Quantity: item.Quantity.String(),
		})
	}
	return SendOrderParameters{
		OrderID:   order.ID.String(),
		MenuItems: items,
	}
}

// ToDomainOrder разбирает параметры SendOrder, полученные сервером.
func ToDomainOrder(params SendOrderParameters) (domain.Order, error) {
	id, err := uuid.Parse(params.OrderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("orderId: %w", err)
	}
	order := domain.Order{ID: id, Items: make([]domain.OrderItem, 0, len(params.MenuItems))}
	for i, item := range params.MenuItems {
		quantity, err := decimal.NewFromString(item.Quantity)
		if err != nil {
			return domain.Order{}, fmt.Errorf("menuItems[%d].quantity: %w", i, err)
		}
		order.Items = append(order.Items, domain.OrderItem{MenuItemID: item.ID, Quantity: quantity})
	}
	return order, nil
}
