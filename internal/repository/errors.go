package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	// ErrIDNotSet is returned when an update is attempted on an account
	// that was never inserted.
	ErrIDNotSet = errors.New("account id is not set")
)

// IsClientError reports whether err was caused by the data the client sent
// rather than by the store: PostgreSQL data exceptions (class 22) and
// integrity constraint violations (class 23).
func IsClientError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code.Class() {
	case "22", "23":
		return true
	}
	return false
}
