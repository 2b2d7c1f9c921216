package domain

import "github.com/shopspring/decimal"

// MenuItem: позиция каталога, полученная из удалённого API.
type MenuItem struct {
	// ID: стабильный идентификатор позиции, ключ слияния при синхронизации.
	ID string
	// Article: код позиции, который вводит пользователь; уникален в пределах каталога.
	Article string
	Name    string
	// Price: цена в денежных единицах.
	Price decimal.Decimal
	// IsWeighted означает, что количество задаётся весом и может быть дробным.
	IsWeighted bool
	// FullPath: путь позиции в дереве каталога, используется только для отображения.
	FullPath string
	Barcodes []string
}

// ValidateInvariants проверяет базовые инварианты позиции и возвращает список замечаний.
func (m MenuItem) ValidateInvariants() []error {
	var errs []error

	if m.ID == "" {
		errs = append(errs, ErrMenuItemIDRequired)
	}
	if m.Article == "" {
		errs = append(errs, ErrArticleRequired)
	}
	if m.Price.IsNegative() {
		errs = append(errs, ErrPriceNegative)
	}

	return errs
}

// Clone возвращает копию позиции, не разделяющую срез штрихкодов с исходной.
func (m MenuItem) Clone() MenuItem {
	if m.Barcodes != nil {
		m.Barcodes = append([]string(nil), m.Barcodes...)
	}
	return m
}
