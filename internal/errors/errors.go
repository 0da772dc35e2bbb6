package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/dailyfocus/internal/logger"
	"github.com/julianstephens/dailyfocus/internal/models"
)

// NoteError records which note an operation failed on. Date is empty for
// operations that span every date, such as list and clear.
type NoteError struct {
	Op       string
	NoteType models.NoteType
	Date     models.DateKey
	Err      error
}

func (e *NoteError) Error() string {
	if e.Date == "" {
		return fmt.Sprintf("failed to %s %s notes: %v", e.Op, e.NoteType, e.Err)
	}
	return fmt.Sprintf("failed to %s %s note for %s: %v", e.Op, e.NoteType, e.Date, e.Err)
}

func (e *NoteError) Unwrap() error {
	return e.Err
}

// Keyvals returns log fields for err, including the note it concerns when
// a NoteError is in the chain.
func Keyvals(err error) []interface{} {
	var noteErr *NoteError
	if errors.As(err, &noteErr) {
		return logger.NoteFields(noteErr.NoteType, noteErr.Date, "op", noteErr.Op, "error", noteErr.Err)
	}
	return []interface{}{"error", err}
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", Keyvals(err)...)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
