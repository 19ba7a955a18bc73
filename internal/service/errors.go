package service

import "github.com/gofiber/fiber/v2"

// Kind classifies business-rule failures so the transport layer can map them
// to status codes without inspecting message strings.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindForbidden
	KindInvalidState
	KindInvalidInput
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindForbidden:
		return fiber.StatusForbidden
	case KindInvalidState, KindInvalidInput:
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func notFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func invalidState(msg string) error {
	return &Error{Kind: KindInvalidState, Message: msg}
}

func invalidInput(msg string) error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}
