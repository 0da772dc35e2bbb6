package notes

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"

	apperrors "github.com/julianstephens/dailyfocus/internal/errors"
	"github.com/julianstephens/dailyfocus/internal/models"
)

var (
	// ErrAuthenticationRequired is returned before any backend call when nobody is signed in.
	ErrAuthenticationRequired = errors.New("authentication required: sign in with 'dailyfocus auth login'")
	// ErrConnectivity marks failures to reach the backend at all.
	ErrConnectivity = errors.New("note backend unreachable")
	// ErrBackend marks failures reported by a reachable backend.
	ErrBackend = errors.New("note backend error")
)

// classify maps a raw backend error onto ErrConnectivity or ErrBackend,
// keeping the cause in the message.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isConnectivity(err) {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	return fmt.Errorf("%w: %v", ErrBackend, err)
}

// noteError classifies err and tags it with the note it concerns.
func noteError(op string, nk models.NoteKey, err error) error {
	return &apperrors.NoteError{Op: op, NoteType: nk.NoteType, Date: nk.Date, Err: classify(err)}
}

func isConnectivity(err error) bool {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr):
		return true
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET):
		return true
	}
	return false
}
