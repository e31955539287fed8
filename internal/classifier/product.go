package classifier

import "strings"

// UnknownProduct is returned for blank product codes.
const UnknownProduct = "Unknown"

// productAliases maps case-folded export codes to display names.
var productAliases = map[string]string{
	"dm cut gr bn":       "Cut Green Beans 8pk",
	"dm cut green beans": "Cut Green Beans 8pk",
	"dm fr st gr bn":     "French Style Green Beans 8pk",
	"dm wk corn":         "WK Corn 12pk",
	"dm whole kernel":    "WK Corn 12pk",
	"dm cr corn":         "Cream Corn 12pk",
	"dm sliced pears":    "Pears (trayed)",
	"dm pear halves":     "Pears (trayed)",
	"dm peach slices":    "Peaches (trayed)",
	"dm sw peas":         "Sweet Peas 8pk",
	"dm mixed veg":       "Mixed Vegetables 8pk",
}

// NormalizeProduct returns the display name for a product code. Blank and
// NaN-like codes are "Unknown"; unknown codes pass through trimmed.
func NormalizeProduct(code string) string {
	trimmed := strings.TrimSpace(code)
	key := strings.ToLower(trimmed)
	switch key {
	case "", "nan", "null":
		return UnknownProduct
	}
	if name, ok := productAliases[key]; ok {
		return name
	}
	return trimmed
}
