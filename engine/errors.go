package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// Sentinel errors. Callers match against these with errors.Is/errors.As.
// A sqlite3.Error from the driver is always normalized to *Error; other
// driver errors are passed through unchanged (see normalizeError).
var (
	ErrConnectionClosed = errors.New("engine: connection closed")
	ErrStatementClosed  = errors.New("engine: statement closed")
	ErrValueExpired     = errors.New("engine: borrowed value read after cursor advanced")
	ErrNotSingleRow     = errors.New("engine: expected exactly one row")
)

// noSuchTablePrefix is the exact text the replacement scan matches
// against (spec §4.6, §9 "only trigger on the exact error text").
const noSuchTablePrefix = "no such table: "

// Error is the normalized shape every prepare/step failure takes:
// {result_code, code_description, message, offset?}. Offset, when
// present, is a byte position in the prepared SQL identifying the first
// offending token.
type Error struct {
	ResultCode      int
	CodeDescription string
	Message         string
	Offset          *int
}

func (e *Error) Error() string {
	if e.Offset != nil {
		return fmt.Sprintf("[%d] %s\n%s (offset %d)", e.ResultCode, e.CodeDescription, e.Message, *e.Offset)
	}
	return fmt.Sprintf("[%d] %s\n%s", e.ResultCode, e.CodeDescription, e.Message)
}

// MissingTable returns the table name NAME and true when the error is
// exactly "no such table: NAME".
func (e *Error) MissingTable() (string, bool) {
	if !strings.HasPrefix(e.Message, noSuchTablePrefix) {
		return "", false
	}
	return strings.TrimPrefix(e.Message, noSuchTablePrefix), true
}

// normalizeError converts a driver error into *Error. Non-sqlite3 errors
// (context cancellation, closed handles) are returned unchanged.
func normalizeError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	e := &Error{
		ResultCode:      int(sqliteErr.Code),
		CodeDescription: sqliteErr.Code.Error(),
		Message:         sqliteErr.Error(),
	}

	// go-sqlite3 folds the extended code's description and the engine
	// message into one string ("SQL logic error: no such table: x");
	// split on the first ": " when the prefix matches the code
	// description so Message is just the engine's own text.
	if idx := strings.Index(e.Message, ": "); idx >= 0 {
		if strings.EqualFold(e.Message[:idx], e.CodeDescription) {
			e.Message = e.Message[idx+2:]
		}
	}

	if off, ok := extractOffset(sqliteErr); ok {
		e.Offset = &off
	}

	return e
}

// extractOffset pulls the byte offset SQLite reports for the offending
// token, when the driver surfaces one. go-sqlite3 does not expose
// sqlite3_error_offset() directly as of this writing; this falls back to
// scanning the message for a "(near offset N)"-shaped suffix some SQLite
// builds append, and otherwise reports no offset.
func extractOffset(err sqlite3.Error) (int, bool) {
	msg := err.Error()
	idx := strings.LastIndex(msg, "offset ")
	if idx < 0 {
		return 0, false
	}
	rest := msg[idx+len("offset "):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err2 := strconv.Atoi(rest[:end])
	if err2 != nil {
		return 0, false
	}
	return n, true
}
