package enums

import "fmt"

// OrderSource identifies the upstream platform an order was fetched from.
type OrderSource string

const (
	SourceShopify OrderSource = "shopify"
	SourceEtsy    OrderSource = "etsy"
)

var validOrderSources = []OrderSource{
	SourceShopify,
	SourceEtsy,
}

// String implements fmt.Stringer.
func (s OrderSource) String() string {
	return string(s)
}

// IsValid reports whether the source is recognized.
func (s OrderSource) IsValid() bool {
	for _, candidate := range validOrderSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// Label returns the source name used in user-facing diagnostics.
func (s OrderSource) Label() string {
	switch s {
	case SourceShopify:
		return "Shopify"
	case SourceEtsy:
		return "Etsy"
	default:
		return string(s)
	}
}

// ParseOrderSource converts a raw string into an OrderSource.
func ParseOrderSource(value string) (OrderSource, error) {
	for _, candidate := range validOrderSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order source %q", value)
}
