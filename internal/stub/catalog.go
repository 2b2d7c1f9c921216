// Package stub: локальная замена удалённого API меню для разработки и тестов.
// Один и тот же каталог отдаётся по HTTP и gRPC, принятые заказы хранятся в памяти.
package stub

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/smartmeal/internal/api/httpapi"
	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
)

// Catalog хранит меню и полученные заказы.
type Catalog struct {
	mu        sync.RWMutex
	items     []domain.MenuItem
	byID      map[string]struct{}
	orders    []domain.Order
	rejection string
}

// NewCatalog проверяет позиции и создаёт каталог.
func NewCatalog(items []domain.MenuItem) (*Catalog, error) {
	byID := make(map[string]struct{}, len(items))
	articles := make(map[string]struct{}, len(items))
	cloned := make([]domain.MenuItem, 0, len(items))

	for i, item := range items {
		if errs := item.ValidateInvariants(); len(errs) > 0 {
			return nil, fmt.Errorf("menu item #%d: %w", i, errors.Join(errs...))
		}
		if _, dup := byID[item.ID]; dup {
			return nil, fmt.Errorf("menu item #%d: duplicate id %q", i, item.ID)
		}
		if _, dup := articles[item.Article]; dup {
			return nil, fmt.Errorf("menu item #%d: %w: %q", i, domain.ErrDuplicateArticle, item.Article)
		}
		byID[item.ID] = struct{}{}
		articles[item.Article] = struct{}{}
		cloned = append(cloned, item.Clone())
	}

	return &Catalog{items: cloned, byID: byID}, nil
}

// LoadCatalog читает каталог из JSON-файла в формате данных ответа GetMenu.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var data httpapi.MenuData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return NewCatalog(httpapi.ToDomainMenu(data.MenuItems))
}

// SampleCatalog возвращает встроенное демонстрационное меню.
func SampleCatalog() *Catalog {
	catalog, err := NewCatalog([]domain.MenuItem{
		{
			ID:       "5979224",
			Article:  "A1004292",
			Name:     "Каша гречневая",
			Price:    decimal.RequireFromString("50"),
			FullPath: "ПРОИЗВОДСТВО\\Гарниры",
			Barcodes: []string{"57890975627974236429"},
		},
		{
			ID:         "9084246",
			Article:    "A1004293",
			Name:       "Конфеты Коровка",
			Price:      decimal.RequireFromString("300"),
			IsWeighted: true,
			FullPath:   "ДЕСЕРТЫ\\Развес",
			Barcodes:   []string{},
		},
		{
			ID:       "1740031",
			Article:  "A1004294",
			Name:     "Морс клюквенный",
			Price:    decimal.RequireFromString("89.90"),
			FullPath: "НАПИТКИ\\Холодные",
			Barcodes: []string{"4607001771234"},
		},
	})
	if err != nil {
		panic(fmt.Sprintf("sample catalog: %v", err))
	}
	return catalog
}

// Items возвращает копию меню.
func (c *Catalog) Items() []domain.MenuItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.MenuItem, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item.Clone())
	}
	return out
}

// Reject заставляет каталог отклонять следующие заказы с сообщением message.
// Пустая строка снова включает приём заказов.
func (c *Catalog) Reject(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejection = message
}

// AcceptOrder проверяет заказ и сохраняет его. Ошибка: это бизнес-отказ,
// сообщение которой уходит клиенту в errorMessage.
func (c *Catalog) AcceptOrder(order domain.Order) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rejection != "" {
		return errors.New(c.rejection)
	}
	if len(order.Items) == 0 {
		return errors.New("order has no items")
	}
	for _, item := range order.Items {
		if _, ok := c.byID[item.MenuItemID]; !ok {
			return fmt.Errorf("unknown menu item %q", item.MenuItemID)
		}
		if !item.Quantity.IsPositive() {
			return fmt.Errorf("menu item %q: quantity must be greater than zero", item.MenuItemID)
		}
	}
	for _, existing := range c.orders {
		if existing.ID == order.ID {
			return fmt.Errorf("order %s already accepted", order.ID)
		}
	}

	c.orders = append(c.orders, order.WithItems(order.Items))
	return nil
}

// Orders возвращает принятые заказы в порядке поступления.
func (c *Catalog) Orders() []domain.Order {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Order(nil), c.orders...)
}
