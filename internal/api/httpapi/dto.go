package httpapi

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Команды удалённого API.
const (
	CommandGetMenu   = "GetMenu"
	CommandSendOrder = "SendOrder"
)

// CommandRequest это конверт запроса с именем команды и её параметрами.
type CommandRequest struct {
	Command           string          `json:"command"`
	CommandParameters json.RawMessage `json:"commandParameters,omitempty"`
}

// CommandResponse: конверт ответа. Data заполнен только у команд, возвращающих данные.
type CommandResponse struct {
	Command      string          `json:"command"`
	Success      bool            `json:"success"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
}

// GetMenuParameters: параметры команды GetMenu.
type GetMenuParameters struct {
	WithPrice bool `json:"withPrice"`
}

// MenuData: полезная нагрузка ответа GetMenu.
type MenuData struct {
	MenuItems []MenuItemDTO `json:"menuItems"`
}

// MenuItemDTO: позиция меню в формате API.
type MenuItemDTO struct {
	ID         string          `json:"id"`
	Article    string          `json:"article"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	IsWeighted bool            `json:"isWeighted"`
	FullPath   string          `json:"fullPath"`
	Barcodes   []string        `json:"barcodes"`
}

// SendOrderParameters: параметры команды SendOrder.
type SendOrderParameters struct {
	OrderID   string         `json:"orderId"`
	MenuItems []OrderItemDTO `json:"menuItems"`
}

// OrderItemDTO: позиция заказа. Количество передаётся строкой с точкой в качестве разделителя.
type OrderItemDTO struct {
	ID       string `json:"id"`
	Quantity string `json:"quantity"`
}
