// Package ordering сопоставляет разобранные строки заказа с локальным каталогом.
package ordering

import (
	"context"
	"errors"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
	"github.com/vladislavdragonenkov/smartmeal/internal/result"
)

// Validator разрешает артикулы в позиции каталога.
type Validator struct {
	repo   domain.MenuRepository
	logger *log.Entry
}

// NewValidator создаёт валидатор поверх репозитория каталога.
func NewValidator(repo domain.MenuRepository, logger *log.Entry) *Validator {
	if logger == nil {
		logger = log.New().WithField("component", "order-validator")
	}
	return &Validator{repo: repo, logger: logger}
}

// Validate последовательно ищет каждый артикул и останавливается на первом отсутствующем.
// Отсутствующий артикул даёт NotFoundError, прочие сбои хранилища: PersistenceError.
// Каталог не изменяется.
func (v *Validator) Validate(ctx context.Context, lines []domain.ParsedOrderLine) result.Result[[]domain.OrderItem] {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		entry, err := v.repo.FindByArticle(ctx, line.Article)
		if err != nil {
			if errors.Is(err, domain.ErrMenuItemNotFound) {
				v.logger.WithField("article", line.Article).Debug("article not found in catalog")
				return result.Failf[[]domain.OrderItem](domain.CodeNotFound,
					"menu item with article %q not found", line.Article)
			}
			v.logger.WithError(err).WithField("article", line.Article).Error("catalog lookup failed")
			return result.Fail[[]domain.OrderItem](domain.Wrap(domain.CodePersistence, err))
		}

		items = append(items, domain.OrderItem{
			MenuItemID: entry.ID,
			Quantity:   line.Quantity,
		})
	}

	return result.Ok(items)
}

// NewOrder создаёт пустой заказ со свежим идентификатором.
func NewOrder() domain.Order {
	return domain.Order{ID: uuid.New()}
}
