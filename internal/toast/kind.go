// Package toast provides transient terminal notifications ("toasts") and the
// emission API call-sites use to raise them.
package toast

import (
	"fmt"
	"strings"
)

// Kind is the severity of a toast.
type Kind string

const (
	// KindSuccess reports a completed operation.
	KindSuccess Kind = "success"

	// KindError reports a failed operation.
	KindError Kind = "error"

	// KindInfo carries neutral information.
	KindInfo Kind = "info"

	// KindWarning reports something that needs attention but did not fail.
	KindWarning Kind = "warning"
)

// Kinds lists every Kind in display order.
var Kinds = []Kind{KindSuccess, KindError, KindInfo, KindWarning}

// Valid returns true if k is one of the four known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSuccess, KindError, KindInfo, KindWarning:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// ParseKind converts a kind name to a Kind. "warn" is accepted for Warning.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success":
		return KindSuccess, nil
	case "error":
		return KindError, nil
	case "info":
		return KindInfo, nil
	case "warning", "warn":
		return KindWarning, nil
	}
	return "", fmt.Errorf("unknown toast kind: %q", s)
}
