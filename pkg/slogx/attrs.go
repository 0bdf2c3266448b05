// Package slogx carries small slog.Attr helpers shared across the module.
package slogx

import (
	"log/slog"

	"github.com/google/uuid"
)

// Error returns an attribute with key "error" and the error's message.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Session returns an attribute with key "session_id".
func Session(id uuid.UUID) slog.Attr {
	return slog.String("session_id", id.String())
}

// Dialect returns an attribute with key "dialect".
func Dialect[T ~string](d T) slog.Attr {
	return slog.String("dialect", string(d))
}
