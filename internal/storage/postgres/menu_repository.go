package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
)

const (
	uniqueViolationCode = "23505"

	constraintMenuItemsPK = "menu_items_pkey"
)

const (
	insertMenuItemSQL = `
		INSERT INTO menu_items (id, article, name, price, is_weighted, full_path, barcodes, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, NOW())
	`
	updateMenuItemSQL = `
		UPDATE menu_items
		SET article = $2,
		    name = $3,
		    price = $4::numeric,
		    is_weighted = $5,
		    full_path = $6,
		    barcodes = $7,
		    revision = nextval('menu_items_revision_seq'),
		    updated_at = NOW()
		WHERE id = $1
	`
	selectMenuItemColumns = `id, article, name, price::text, is_weighted, full_path, barcodes`
)

// MenuRepository: PostgreSQL-реализация domain.MenuRepository.
type MenuRepository struct {
	store *Store
}

var _ domain.MenuRepository = (*MenuRepository)(nil)

// NewMenuRepository создаёт PostgreSQL-реализацию MenuRepository.
func NewMenuRepository(store *Store) *MenuRepository {
	return &MenuRepository{store: store}
}

// ExistingIDs одним запросом находит уже сохранённые ID.
func (r *MenuRepository) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	found := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	err := r.store.withRetry(ctx, "existing_ids", func(ctx context.Context) error {
		rows, err := r.store.pool.Query(ctx, `SELECT id FROM menu_items WHERE id = ANY($1)`, ids)
		if err != nil {
			return err
		}
		existing, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		for _, id := range existing {
			found[id] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query existing menu item ids: %w", err)
	}
	return found, nil
}

// ApplyChanges выполняет вставки и обновления одним пакетом в одной транзакции.
// Каждая запись получает новую ревизию, поэтому поиск по артикулу видит последнюю запись.
func (r *MenuRepository) ApplyChanges(ctx context.Context, changes domain.CatalogChanges) error {
	if changes.Empty() {
		return nil
	}

	err := r.store.withRetry(ctx, "apply_changes", func(ctx context.Context) error {
		return pgx.BeginFunc(ctx, r.store.pool, func(tx pgx.Tx) error {
			batch := &pgx.Batch{}
			for _, item := range changes.Inserts {
				batch.Queue(insertMenuItemSQL, menuItemArgs(item)...)
			}
			for _, item := range changes.Updates {
				id := item.ID
				batch.Queue(updateMenuItemSQL, menuItemArgs(item)...).Exec(func(tag pgconn.CommandTag) error {
					if tag.RowsAffected() == 0 {
						return fmt.Errorf("update %s: %w", id, domain.ErrMenuItemNotFound)
					}
					return nil
				})
			}
			return tx.SendBatch(ctx, batch).Close()
		})
	})
	if err != nil {
		return fmt.Errorf("apply catalog changes: %w", translateError(err))
	}
	return nil
}

// FindByArticle ищет позицию по точному артикулу. Если артикул встречается у нескольких
// позиций, возвращается записанная последней.
func (r *MenuRepository) FindByArticle(ctx context.Context, article string) (domain.MenuItem, error) {
	var item domain.MenuItem
	err := r.store.withRetry(ctx, "find_by_article", func(ctx context.Context) error {
		row := r.store.pool.QueryRow(ctx, `SELECT `+selectMenuItemColumns+` FROM menu_items WHERE article = $1 ORDER BY revision DESC LIMIT 1`, article)
		var scanErr error
		item, scanErr = scanMenuItem(row)
		return scanErr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MenuItem{}, domain.ErrMenuItemNotFound
	}
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("find menu item by article: %w", err)
	}
	return item, nil
}

// ListAll возвращает каталог, отсортированный по артикулу.
func (r *MenuRepository) ListAll(ctx context.Context) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	err := r.store.withRetry(ctx, "list_all", func(ctx context.Context) error {
		rows, err := r.store.pool.Query(ctx, `SELECT `+selectMenuItemColumns+` FROM menu_items ORDER BY article, id`)
		if err != nil {
			return err
		}
		items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.MenuItem, error) {
			return scanMenuItem(row)
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	return items, nil
}

func menuItemArgs(item domain.MenuItem) []any {
	barcodes := item.Barcodes
	if barcodes == nil {
		barcodes = []string{}
	}
	return []any{item.ID, item.Article, item.Name, item.Price.String(), item.IsWeighted, item.FullPath, barcodes}
}

func scanMenuItem(row pgx.Row) (domain.MenuItem, error) {
	var (
		item  domain.MenuItem
		price string
	)
	if err := row.Scan(&item.ID, &item.Article, &item.Name, &price, &item.IsWeighted, &item.FullPath, &item.Barcodes); err != nil {
		return domain.MenuItem{}, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("parse price %q of %s: %w", price, item.ID, err)
	}
	item.Price = parsed
	return item, nil
}

// translateError переводит нарушения ограничений в доменные ошибки.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolationCode {
		return err
	}
	if pgErr.ConstraintName == constraintMenuItemsPK {
		return fmt.Errorf("%s: %w", pgErr.Detail, domain.ErrMenuItemExists)
	}
	return err
}
