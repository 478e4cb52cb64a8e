package domain

// Category is one of the fixed exam-preparation classifications.
type Category string

const (
	CategoryPolity         Category = "Polity & Governance"
	CategoryEconomy        Category = "Economy"
	CategoryEnvironment    Category = "Environment & Ecology"
	CategoryScienceTech    Category = "Science & Technology"
	CategoryInternational  Category = "International Relations"
	CategoryCurrentAffairs Category = "Current Affairs"
)

// FallbackCategory is assigned whenever the classifier reply is missing
// or does not match the enum.
const FallbackCategory = CategoryCurrentAffairs

// Categories returns the closed category set in canonical order.
func Categories() []Category {
	return []Category{
		CategoryPolity,
		CategoryEconomy,
		CategoryEnvironment,
		CategoryScienceTech,
		CategoryInternational,
		CategoryCurrentAffairs,
	}
}

// Valid reports whether c is an exact member of the category set.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory coerces raw input to a category, falling back to
// FallbackCategory unless raw is an exact match.
func ParseCategory(raw string) Category {
	c := Category(raw)
	if c.Valid() {
		return c
	}
	return FallbackCategory
}
