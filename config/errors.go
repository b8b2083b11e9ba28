package config

import (
	"fmt"
	"strings"
)

// ConfigurationError reports an invalid setting. It is raised before any
// file or network I/O.
type ConfigurationError struct {
	Field string
	Value string
	Valid []string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	switch {
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Value != "":
		fmt.Fprintf(&b, "invalid %s %q", e.Field, e.Value)
	default:
		fmt.Fprintf(&b, "%s is not configured", e.Field)
	}
	if len(e.Valid) > 0 {
		fmt.Fprintf(&b, " (valid: %s)", strings.Join(e.Valid, ", "))
	}
	return b.String()
}

func invalid(field, value string, valid ...string) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Valid: valid}
}
