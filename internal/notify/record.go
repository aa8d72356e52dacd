// Package notify keeps the application-owned log of every toast emission
// the interceptors observe.
package notify

import (
	"time"

	"github.com/tuanbt/toastlog/internal/toast"
)

// Record is one mirrored emission. Records are never modified once appended.
type Record struct {
	// Seq is the 1-based position in the log.
	Seq uint64 `json:"seq"`

	// Kind is the emission kind.
	Kind toast.Kind `json:"kind"`

	// Title is derived from Kind, see Title.
	Title string `json:"title"`

	// Message is the emitted message, or the canned default for Kind when
	// the emission carried something other than a string.
	Message string `json:"message"`

	// Time is when the record was appended.
	Time time.Time `json:"time"`
}

// Title returns the fixed label for kind.
func Title(kind toast.Kind) string {
	switch kind {
	case toast.KindSuccess:
		return "Success"
	case toast.KindError:
		return "Error"
	case toast.KindWarning:
		return "Warning"
	default:
		return "Info"
	}
}

// DefaultMessage is the text logged for kind when the emitted payload is not
// a string.
func DefaultMessage(kind toast.Kind) string {
	switch kind {
	case toast.KindSuccess:
		return "Operation completed successfully"
	case toast.KindError:
		return "An error occurred"
	case toast.KindWarning:
		return "Please review this warning"
	default:
		return "New notification"
	}
}

// MessageText returns message when it is a string and DefaultMessage(kind)
// for anything else, nil included.
func MessageText(kind toast.Kind, message any) string {
	if s, ok := message.(string); ok {
		return s
	}
	return DefaultMessage(kind)
}
