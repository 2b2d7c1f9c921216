package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/smartmeal/internal/domain"
)

// menuRepositoryInMemory: in-memory реализация MenuRepository.
type menuRepositoryInMemory struct {
	mu        sync.RWMutex
	items     map[string]domain.MenuItem
	revisions map[string]uint64
	revision  uint64
	byArticle map[string]string
}

var _ domain.MenuRepository = (*menuRepositoryInMemory)(nil)

// NewMenuRepository возвращает in-memory репозиторий каталога для локального запуска и тестов.
func NewMenuRepository() domain.MenuRepository {
	return &menuRepositoryInMemory{
		items:     make(map[string]domain.MenuItem),
		revisions: make(map[string]uint64),
		byArticle: make(map[string]string),
	}
}

// ExistingIDs возвращает подмножество ids, присутствующее в каталоге.
func (r *menuRepositoryInMemory) ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := r.items[id]; ok {
			found[id] = struct{}{}
		}
	}
	return found, nil
}

// ApplyChanges применяет изменения к копии каталога и подменяет состояние только если
// все проверки прошли: ID вставок свободны, ID обновлений существуют.
// Артикул не уникален; каждая запись получает новую ревизию, и поиск по артикулу
// возвращает позицию, записанную последней.
func (r *menuRepositoryInMemory) ApplyChanges(ctx context.Context, changes domain.CatalogChanges) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if changes.Empty() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]domain.MenuItem, len(r.items)+len(changes.Inserts))
	for id, item := range r.items {
		next[id] = item
	}
	revisions := make(map[string]uint64, len(next))
	for id, rev := range r.revisions {
		revisions[id] = rev
	}
	revision := r.revision

	for _, item := range changes.Inserts {
		if _, exists := next[item.ID]; exists {
			return fmt.Errorf("insert %s: %w", item.ID, domain.ErrMenuItemExists)
		}
		revision++
		next[item.ID] = item.Clone()
		revisions[item.ID] = revision
	}
	for _, item := range changes.Updates {
		if _, exists := next[item.ID]; !exists {
			return fmt.Errorf("update %s: %w", item.ID, domain.ErrMenuItemNotFound)
		}
		revision++
		next[item.ID] = item.Clone()
		revisions[item.ID] = revision
	}

	byArticle := make(map[string]string, len(next))
	for id, item := range next {
		if current, taken := byArticle[item.Article]; taken && revisions[current] > revisions[id] {
			continue
		}
		byArticle[item.Article] = id
	}

	r.items = next
	r.revisions = revisions
	r.revision = revision
	r.byArticle = byArticle
	return nil
}

// FindByArticle возвращает последнюю записанную позицию с точным артикулом или ErrMenuItemNotFound.
func (r *menuRepositoryInMemory) FindByArticle(ctx context.Context, article string) (domain.MenuItem, error) {
	if err := ctx.Err(); err != nil {
		return domain.MenuItem{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byArticle[article]
	if !ok {
		return domain.MenuItem{}, domain.ErrMenuItemNotFound
	}
	return r.items[id].Clone(), nil
}

// ListAll возвращает каталог, отсортированный по артикулу.
func (r *menuRepositoryInMemory) ListAll(ctx context.Context) ([]domain.MenuItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.MenuItem, 0, len(r.items))
	for _, item := range r.items {
		result = append(result, item.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Article != result[j].Article {
			return result[i].Article < result[j].Article
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}
