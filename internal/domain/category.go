package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is the closed set of spend categories. The declaration order is
// the fixed priority order used to break ties during classification and the
// canonical order for category sorting.
type Category int

const (
	CategoryGrocery Category = iota
	CategoryDining
	CategoryUtilities
	CategoryTransportation
	CategoryHealthcare
	CategoryRetail
	CategoryEntertainment
	CategoryTravel
	CategoryOther
)

var categoryNames = [...]string{
	CategoryGrocery:        "Grocery",
	CategoryDining:         "Dining",
	CategoryUtilities:      "Utilities",
	CategoryTransportation: "Transportation",
	CategoryHealthcare:     "Healthcare",
	CategoryRetail:         "Retail",
	CategoryEntertainment:  "Entertainment",
	CategoryTravel:         "Travel",
	CategoryOther:          "Other",
}

// Categories returns every category in priority order.
func Categories() []Category {
	out := make([]Category, len(categoryNames))
	for i := range categoryNames {
		out[i] = Category(i)
	}
	return out
}

func (c Category) String() string {
	if int(c) < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory resolves a category by name, case-insensitively.
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Category(i), nil
		}
	}
	return CategoryOther, fmt.Errorf("ParseCategory: unknown category %q", name)
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
