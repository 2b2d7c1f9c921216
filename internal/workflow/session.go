// Package workflow ведёт одну сессию заказа: загрузка меню, синхронизация каталога,
// ввод и проверка заказа, отправка.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/smartmeal/internal/catalog"
	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
	"github.com/vladislavdragonenkov/smartmeal/internal/orderinput"
	"github.com/vladislavdragonenkov/smartmeal/internal/ordering"
)

// ErrCanceled означает, что сессия прервана отменой контекста или концом ввода.
var ErrCanceled = errors.New("session canceled")

// Option настраивает необязательные зависимости сессии.
type Option func(*Session)

// WithMetrics подключает приёмник метрик.
func WithMetrics(m Metrics) Option {
	return func(s *Session) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithEvents подключает публикацию событий.
func WithEvents(p EventPublisher) Option {
	return func(s *Session) {
		s.events = p
	}
}

// Session: конечный автомат одной сессии заказа.
type Session struct {
	api       MenuAPIClient
	repo      domain.MenuRepository
	sync      *catalog.Synchronizer
	validator *ordering.Validator
	console   Console
	metrics   Metrics
	events    EventPublisher
	logger    *log.Entry

	state State
	order domain.Order
}

// NewSession собирает сессию из удалённого API, репозитория каталога и консоли.
func NewSession(api MenuAPIClient, repo domain.MenuRepository, console Console, logger *log.Entry, opts ...Option) *Session {
	if logger == nil {
		logger = log.New().WithField("component", "workflow")
	}
	s := &Session{
		api:       api,
		repo:      repo,
		sync:      catalog.NewSynchronizer(repo, logger.WithField("component", "catalog-sync")),
		validator: ordering.NewValidator(repo, logger.WithField("component", "order-validator")),
		console:   console,
		metrics:   noopMetrics{},
		logger:    logger,
		state:     StateInit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run проводит сессию до терминального состояния. Паника на любом этапе перехватывается
// и завершает сессию в StateAborted.
func (s *Session) Run(ctx context.Context) (outcome Outcome) {
	start := time.Now()
	s.state = StateInit
	s.order = ordering.NewOrder()
	s.logger = s.logger.WithField("order_id", s.order.ID.String())
	s.logger.Info("session started")

	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(log.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("session panicked")
			outcome = s.abort(domain.Errorf(domain.CodeInternal, "unexpected failure: %v", r))
		}
		s.metrics.RecordSessionFinished(string(outcome.State), time.Since(start))
		s.logger.WithFields(log.Fields{
			"state":    outcome.State,
			"duration": time.Since(start),
		}).Info("session finished")
	}()

	return s.run(ctx)
}

func (s *Session) run(ctx context.Context) Outcome {
	s.transition(StateFetching)
	menu, err := s.api.FetchMenu(ctx, true).Get()
	if err != nil {
		return s.abort(err)
	}
	s.logger.WithField("items", len(menu)).Info("menu fetched")

	s.transition(StateSyncing)
	report, err := s.sync.Sync(ctx, menu)
	if err != nil {
		return s.abort(err)
	}
	s.metrics.RecordCatalogSync(report.Inserted, report.Updated)
	s.publish("catalog.synced", func(p EventPublisher) error {
		return p.CatalogSynced(s.order.ID, report.Inserted, report.Updated)
	})

	if err := s.displayCatalog(ctx); err != nil {
		return s.abort(err)
	}

	items, err := s.collectItems(ctx)
	if err != nil {
		return s.abort(err)
	}

	s.transition(StateSubmitting)
	s.order = s.order.WithItems(items)
	if _, err := s.api.SubmitOrder(ctx, s.order).Get(); err != nil {
		return s.abort(err)
	}

	s.transition(StateDone)
	s.console.Printf("SUCCESS\n")
	s.publish("order.submitted", func(p EventPublisher) error {
		return p.OrderSubmitted(s.order)
	})
	return Outcome{State: StateDone, OrderID: s.order.ID}
}

// collectItems повторяет цикл ввод → разбор → проверка, пока не получит корректный заказ.
// Исправимые ошибки выводятся пользователю; число попыток не ограничено.
func (s *Session) collectItems(ctx context.Context) ([]domain.OrderItem, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCanceled, err)
		}

		s.transition(StateAwaitingInput)
		s.console.Printf("Enter order as %s (example: %s):\n", orderinput.Prompt, orderinput.Example)

		line, err := s.console.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrCanceled, err)
			}
			if domain.IsRecoverable(err) {
				s.transition(StateValidating)
				s.reject(err)
				continue
			}
			return nil, domain.Wrap(domain.CodeInternal, err)
		}

		s.transition(StateValidating)
		lines, err := orderinput.Parse(line).Get()
		if err != nil {
			s.reject(err)
			continue
		}

		items, err := s.validator.Validate(ctx, lines).Get()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
			}
			if domain.IsRecoverable(err) {
				s.reject(err)
				continue
			}
			return nil, err
		}

		s.logger.WithField("items", len(items)).Info("order validated")
		return items, nil
	}
}

func (s *Session) reject(err error) {
	code := domain.CodeOf(err)
	s.metrics.RecordInputRejected(code)
	s.logger.WithField("code", code).WithError(err).Debug("order input rejected")
	s.console.Printf("Error: %s\n", userMessage(err))
}

func (s *Session) displayCatalog(ctx context.Context) error {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return domain.Wrap(domain.CodePersistence, err)
	}

	if len(items) == 0 {
		s.console.Printf("Menu is empty.\n")
		return nil
	}

	s.console.Printf("Menu:\n")
	for _, item := range items {
		s.console.Printf("%s\n", FormatMenuLine(item))
	}
	return nil
}

// FormatMenuLine форматирует позицию каталога как "Название – Артикул – Цена".
func FormatMenuLine(item domain.MenuItem) string {
	return fmt.Sprintf("%s – %s – %s", item.Name, item.Article, item.Price.StringFixed(2))
}

func (s *Session) abort(err error) Outcome {
	stage := s.state
	s.logger.WithError(err).WithField("stage", stage).Warn("session aborted")
	s.transition(StateAborted)

	if errors.Is(err, ErrCanceled) {
		s.console.Printf("Canceled.\n")
	} else {
		s.console.Printf("Error: %s\n", userMessage(err))
	}

	s.publish("session.aborted", func(p EventPublisher) error {
		return p.SessionAborted(s.order.ID, string(stage), err)
	})
	return Outcome{State: StateAborted, OrderID: s.order.ID, Err: err}
}

func (s *Session) transition(to State) {
	from := s.state
	if from == to && to == StateAborted {
		return
	}
	if !CanTransition(from, to) {
		s.logger.WithFields(log.Fields{"from": from, "to": to}).Error("unexpected state transition")
	}
	s.state = to
	s.metrics.RecordTransition(string(to))
	s.logger.WithFields(log.Fields{"from": from, "to": to}).Debug("state changed")
}

func (s *Session) publish(event string, send func(EventPublisher) error) {
	if s.events == nil {
		return
	}
	if err := send(s.events); err != nil {
		s.logger.WithError(err).WithField("event", event).Warn("failed to publish session event")
	}
}

// State возвращает текущее состояние сессии.
func (s *Session) State() State {
	return s.state
}

func userMessage(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
