// Package result содержит тип Result: исход операции, который либо несёт значение,
// либо ошибку с кодом. Используется вместо исключений на ожидаемых путях отказа.
package result

import "github.com/vladislavdragonenkov/smartmeal/internal/domain"

// Result хранит ровно один вариант: успех со значением или неуспех с ошибкой.
// Нулевое значение эквивалентно Ok от нулевого значения T.
type Result[T any] struct {
	value T
	err   *domain.Error
}

// Ok создаёт успешный результат.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail создаёт неуспешный результат. Передача nil считается ошибкой программиста.
func Fail[T any](err *domain.Error) Result[T] {
	if err == nil {
		panic("result: Fail called with nil error")
	}
	return Result[T]{err: err}
}

// Failf создаёт неуспешный результат с кодом и форматированным сообщением.
func Failf[T any](code, format string, args ...any) Result[T] {
	return Fail[T](domain.Errorf(code, format, args...))
}

// IsSuccess сообщает, что результат несёт значение.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// IsFailure сообщает, что результат несёт ошибку.
func (r Result[T]) IsFailure() bool {
	return r.err != nil
}

// Value возвращает значение и признак успеха.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.err == nil
}

// Err возвращает ошибку или nil для успешного результата.
func (r Result[T]) Err() *domain.Error {
	return r.err
}

// Get раскладывает результат в привычную пару (значение, error).
func (r Result[T]) Get() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}

// Match вызывает onSuccess или onFailure в зависимости от варианта.
func Match[T, R any](r Result[T], onSuccess func(T) R, onFailure func(*domain.Error) R) R {
	if r.err != nil {
		return onFailure(r.err)
	}
	return onSuccess(r.value)
}

// Map преобразует значение успешного результата, пропуская ошибку без изменений.
func Map[T, R any](r Result[T], fn func(T) R) Result[R] {
	if r.err != nil {
		return Result[R]{err: r.err}
	}
	return Ok(fn(r.value))
}
