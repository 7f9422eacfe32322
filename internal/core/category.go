package core

import "strings"

// Category is the business activity bucket of a timesheet entry.
type Category string

const (
	CategoryHiring   Category = "OPS_Hiring"
	CategoryJobs     Category = "OPS_Jobs"
	CategoryReviews  Category = "OPS_Reviews"
	CategoryGuiding  Category = "OPS_Guiding"
	CategoryUnpaired Category = "Unpaired"
	CategoryOther    Category = "Other"
)

// RestrictedCategories are only valid on OPS projects, in priority order.
var RestrictedCategories = []Category{CategoryHiring, CategoryJobs, CategoryReviews}

// AllCategories lists every category in display order.
var AllCategories = []Category{
	CategoryHiring,
	CategoryJobs,
	CategoryReviews,
	CategoryGuiding,
	CategoryUnpaired,
	CategoryOther,
}

// ParseCategory maps any known spelling ("OPS Hiring", "ops_hiring",
// "OPS-Hiring") to its canonical category.
func ParseCategory(s string) (Category, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for strings.Contains(norm, "__") {
		norm = strings.ReplaceAll(norm, "__", "_")
	}
	for _, c := range AllCategories {
		if strings.ToLower(string(c)) == norm {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}

// IsKeywordCategory reports whether keywords may point at this category.
func (c Category) IsKeywordCategory() bool {
	switch c {
	case CategoryHiring, CategoryJobs, CategoryReviews, CategoryGuiding:
		return true
	}
	return false
}

// IsPaired reports whether the category counts as correctly classified.
func (c Category) IsPaired() bool {
	return c != CategoryUnpaired
}

func (c Category) String() string {
	return string(c)
}
