package models

import "errors"

// Виды ошибок предметной области. HTTP-слой отображает их в статусы ответа.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

// DomainError ошибка с видом и сообщением, которое можно показать клиенту.
type DomainError struct {
	Kind    error
	Message string
}

// NewDomainError создаёт ошибку указанного вида.
func NewDomainError(kind error, msg string) *DomainError {
	return &DomainError{Kind: kind, Message: msg}
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}
