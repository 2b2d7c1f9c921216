package domain

import (
	"errors"
	"fmt"
)

// Коды ошибок, которыми ядро сообщает о неуспешном результате операции.
const (
	// CodeValidation: некорректный пользовательский ввод, можно исправить и повторить.
	CodeValidation = "ValidationError"
	// CodeNotFound: артикула нет в локальном каталоге, можно исправить и повторить.
	CodeNotFound = "NotFoundError"
	// CodeTransport: сетевой сбой или нечитаемый ответ удалённого API.
	CodeTransport = "TransportError"
	// CodeAPI: удалённый API вернул бизнес-ошибку (success=false).
	CodeAPI = "ApiError"
	// CodePersistence: сбой локального хранилища.
	CodePersistence = "PersistenceError"
	// CodeInternal: непредвиденная ошибка (паника, нарушение инварианта).
	CodeInternal = "InternalError"
)

var (
	// ErrMenuItemNotFound возвращается репозиторием, если позиции с таким артикулом нет.
	ErrMenuItemNotFound = errors.New("menu item not found")
	// ErrMenuItemExists возвращается при попытке вставить позицию с уже занятым ID.
	ErrMenuItemExists = errors.New("menu item already exists")
	// ErrDuplicateArticle сигнализирует, что артикул повторяется внутри одного каталога сервера.
	ErrDuplicateArticle = errors.New("article must be unique within server catalog")
	// ErrMenuItemIDRequired: позиция меню без идентификатора.
	ErrMenuItemIDRequired = errors.New("menu item id is required")
	// ErrArticleRequired: позиция меню без артикула.
	ErrArticleRequired = errors.New("menu item article is required")
	// ErrPriceNegative: отрицательная цена позиции.
	ErrPriceNegative = errors.New("menu item price must be non-negative")
)

// Error: ошибка с машиночитаемым кодом и сообщением, пригодным для показа пользователю.
type Error struct {
	Code    string
	Message string

	cause error
}

// NewError создаёт ошибку с кодом и сообщением.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf создаёт ошибку с форматированным сообщением.
func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap превращает произвольную ошибку в Error с заданным кодом, сохраняя причину для errors.Is/As.
func Wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) && de.Code == code {
		return de
	}
	return &Error{Code: code, Message: err.Error(), cause: err}
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf возвращает код ошибки или пустую строку, если ошибка не несёт кода.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsRecoverable сообщает, можно ли исправить ошибку повторным вводом.
func IsRecoverable(err error) bool {
	switch CodeOf(err) {
	case CodeValidation, CodeNotFound:
		return true
	default:
		return false
	}
}
