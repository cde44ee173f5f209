package catalog

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Category is a closed-set classification attached to every catalog entry.
type Category string

const (
	// All is the filter sentinel selecting every category. It is never
	// attached to an entry.
	All Category = "All"

	CategoryFashion       Category = "Fashion"
	CategoryElectronics   Category = "Electronics"
	CategoryFoodGrocery   Category = "Food & Grocery"
	CategoryHomeLiving    Category = "Home & Living"
	CategorySportsFitness Category = "Sports & Fitness"
	CategoryHandmade      Category = "Handmade"
)

// declared is the closed category set in display order.
var declared = []Category{
	CategoryFashion,
	CategoryElectronics,
	CategoryFoodGrocery,
	CategoryHomeLiving,
	CategorySportsFitness,
	CategoryHandmade,
}

// ErrUnknownCategory indicates a value outside the declared category set.
var ErrUnknownCategory = errors.New("unknown category")

// Declared returns the closed category set in display order.
func Declared() []Category {
	return append([]Category(nil), declared...)
}

// Categories returns the filter options: All followed by the declared set.
func Categories() []Category {
	return append([]Category{All}, declared...)
}

// Valid reports whether c is a member of the declared set. All is not.
func (c Category) Valid() bool {
	for _, d := range declared {
		if c == d {
			return true
		}
	}
	return false
}

// Selectable reports whether c may be used as a filter selection.
func (c Category) Selectable() bool {
	return c == All || c.Valid()
}

// Slug returns a URL-friendly form, e.g. "food-grocery".
func (c Category) Slug() string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(string(c)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

var folder = cases.Fold()

// ParseCategory resolves user input to a selectable category. It accepts
// display names and slugs, case-insensitively. Empty input selects All.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return All, nil
	}
	key := folder.String(s)
	for _, c := range Categories() {
		if key == folder.String(string(c)) || key == c.Slug() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}
