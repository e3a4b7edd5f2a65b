// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"
)

// ShipID validates a ship identifier: non-empty and free of whitespace.
func ShipID(id string) error {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return fmt.Errorf("ship id is required")
	}
	if strings.ContainsAny(trimmed, " \t") {
		return fmt.Errorf("ship id cannot contain whitespace")
	}
	return nil
}

// Name validates a display name is non-empty after trimming whitespace.
func Name(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Username validates a login or crew username.
func Username(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("username is required")
	}
	if strings.Contains(trimmed, " ") {
		return fmt.Errorf("username cannot contain spaces")
	}
	return nil
}
