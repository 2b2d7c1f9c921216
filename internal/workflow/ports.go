package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
	"github.com/vladislavdragonenkov/smartmeal/internal/result"
)

// MenuAPIClient описывает удалённый API каталога и приёма заказов.
type MenuAPIClient interface {
	// FetchMenu запрашивает актуальный каталог.
	FetchMenu(ctx context.Context, withPrice bool) result.Result[[]domain.MenuItem]
	// SubmitOrder отправляет заказ. Повторных попыток не делает.
	SubmitOrder(ctx context.Context, order domain.Order) result.Result[struct{}]
}

// Console: текстовый ввод-вывод сессии.
type Console interface {
	// ReadLine блокируется до получения строки, отмены ctx или конца ввода (io.EOF).
	ReadLine(ctx context.Context) (string, error)
	Printf(format string, args ...any)
}

// Metrics принимает наблюдения о ходе сессии.
type Metrics interface {
	RecordTransition(state string)
	RecordCatalogSync(inserted, updated int)
	RecordInputRejected(code string)
	RecordSessionFinished(state string, duration time.Duration)
}

// EventPublisher публикует события сессии во внешнюю шину.
// Ошибки публикации только логируются и не влияют на исход сессии.
type EventPublisher interface {
	CatalogSynced(orderID uuid.UUID, inserted, updated int) error
	OrderSubmitted(order domain.Order) error
	SessionAborted(orderID uuid.UUID, stage string, cause error) error
}

type noopMetrics struct{}

func (noopMetrics) RecordTransition(string) {}
func (noopMetrics) RecordCatalogSync(int, int) {}
func (noopMetrics) RecordInputRejected(string) {}
func (noopMetrics) RecordSessionFinished(string, time.Duration) {}
