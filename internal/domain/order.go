package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParsedOrderLine: строка заказа после разбора ввода, до сопоставления с каталогом.
type ParsedOrderLine struct {
	Article  string
	Quantity decimal.Decimal
}

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// MenuItemID ссылается на MenuItem.ID, а не на артикул.
	MenuItemID string
	// Quantity: количество или вес, всегда больше нуля.
	Quantity decimal.Decimal
}

// Order: заказ одной сессии. Создаётся пустым, заполняется один раз после валидации.
type Order struct {
	ID    uuid.UUID
	Items []OrderItem
}

// WithItems возвращает копию заказа с указанным набором позиций.
func (o Order) WithItems(items []OrderItem) Order {
	o.Items = append([]OrderItem(nil), items...)
	return o
}
