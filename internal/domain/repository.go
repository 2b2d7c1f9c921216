package domain

import "context"

// CatalogChanges: разбиение удалённого снимка каталога на непересекающиеся вставки и обновления.
type CatalogChanges struct {
	Inserts []MenuItem
	Updates []MenuItem
}

// Empty сообщает, что применять нечего.
func (c CatalogChanges) Empty() bool {
	return len(c.Inserts) == 0 && len(c.Updates) == 0
}

// MenuRepository описывает требования к локальному хранилищу каталога.
type MenuRepository interface {
	// ExistingIDs одним запросом возвращает подмножество ids, уже присутствующее в хранилище.
	ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	// ApplyChanges атомарно вставляет новые позиции и полностью перезаписывает существующие.
	// При ошибке ни одно изменение не должно стать видимым.
	ApplyChanges(ctx context.Context, changes CatalogChanges) error
	// FindByArticle ищет позицию по точному совпадению артикула или возвращает ErrMenuItemNotFound.
	FindByArticle(ctx context.Context, article string) (MenuItem, error)
	// ListAll возвращает весь каталог, упорядоченный по артикулу.
	ListAll(ctx context.Context) ([]MenuItem, error)
}
