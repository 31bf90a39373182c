package model

// Category is a label from the closed categorization enumeration.
type Category string

// Base categories, in catalog order.
const (
	CategoryFoodDining    Category = "Food & Dining"
	CategoryTransport     Category = "Transportation"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryBills         Category = "Bills & Utilities"
	CategoryHealthcare    Category = "Healthcare"
	CategoryTravel        Category = "Travel"
	CategoryGasFuel       Category = "Gas & Fuel"
	CategoryGroceries     Category = "Groceries"
	CategoryEducation     Category = "Education"
	CategoryBusiness      Category = "Business"
	// CategoryOther is the universal fallback and always exists.
	CategoryOther Category = "Other"
)

// BaseCategories returns the built-in enumeration in catalog order.
func BaseCategories() []Category {
	return []Category{
		CategoryFoodDining,
		CategoryTransport,
		CategoryShopping,
		CategoryEntertainment,
		CategoryBills,
		CategoryHealthcare,
		CategoryTravel,
		CategoryGasFuel,
		CategoryGroceries,
		CategoryEducation,
		CategoryBusiness,
		CategoryOther,
	}
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// Strings converts a slice of categories to plain strings.
func Strings(categories []Category) []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}
