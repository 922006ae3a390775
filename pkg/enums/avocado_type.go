package enums

import (
	"fmt"
	"strings"
)

// AvocadoType is the cultivar traded on an order or sale.
type AvocadoType string

const (
	AvocadoHass   AvocadoType = "Hass"
	AvocadoFuerte AvocadoType = "Fuerte"
)

// DefaultAvocadoType is used when a request omits the cultivar.
const DefaultAvocadoType = AvocadoHass

var validAvocadoTypes = []AvocadoType{
	AvocadoHass,
	AvocadoFuerte,
}

// IsValid reports whether the value is a known cultivar.
func (a AvocadoType) IsValid() bool {
	for _, candidate := range validAvocadoTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAvocadoType accepts any casing and falls back to Hass for blank input.
func ParseAvocadoType(value string) (AvocadoType, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return DefaultAvocadoType, nil
	}
	for _, candidate := range validAvocadoTypes {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid avocado type %q", value)
}
