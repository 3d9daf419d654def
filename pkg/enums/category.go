package enums

import "fmt"

// Category classifies marketplace listings.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryFashion     Category = "fashion"
	CategoryHome        Category = "home"
	CategoryVehicles    Category = "vehicles"
	CategoryBooks       Category = "books"
	CategorySports      Category = "sports"
	CategoryOther       Category = "other"
)

var validCategories = []Category{
	CategoryElectronics,
	CategoryFashion,
	CategoryHome,
	CategoryVehicles,
	CategoryBooks,
	CategorySports,
	CategoryOther,
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Category.
func (c Category) IsValid() bool {
	for _, candidate := range validCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCategory converts raw input into a Category.
func ParseCategory(value string) (Category, error) {
	for _, candidate := range validCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", value)
}
