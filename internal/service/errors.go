package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for empty or oversize input and for
	// uploads that are not images or exceed the size limit.
	ErrValidation = errors.New("invalid input")

	// ErrStoreUnavailable wraps any failure reported by the data store.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUserNotFound is returned by Login for an unknown name.
	ErrUserNotFound = errors.New("user not found")

	// ErrNameTaken is returned by Register when the name is in use.
	ErrNameTaken = errors.New("name already taken")

	// ErrTodoNotFound is returned when a todo is missing or owned by
	// another user.
	ErrTodoNotFound = errors.New("todo not found")
)

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// UserMessage returns the status-bar text for err.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUserNotFound):
		return "Nama belum terdaftar. Silakan daftar terlebih dahulu."
	case errors.Is(err, ErrNameTaken):
		return "Nama sudah dipakai. Silakan masuk dengan nama tersebut."
	case errors.Is(err, ErrTodoNotFound):
		return "Todo tidak ditemukan."
	case errors.Is(err, ErrValidation):
		return "Input tidak valid: " + detail(err, ErrValidation)
	case errors.Is(err, ErrStoreUnavailable):
		return "Gagal menghubungi server. Coba lagi nanti."
	default:
		return "Terjadi kesalahan: " + err.Error()
	}
}

// detail strips the sentinel prefix from a wrapped message.
func detail(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
