package lexicon

import "github.com/Veraticus/finshare-ai/internal/model"

// DefaultEntries returns the built-in merchant keyword table.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Category: model.CategoryFoodDining,
			Keywords: []string{
				"restaurant", "cafe", "coffee", "pizza", "burger", "starbucks",
				"mcdonald", "subway", "kfc", "domino", "food", "dining", "kitchen",
				"bistro", "bar", "pub", "grill", "diner",
			},
		},
		{
			Category: model.CategoryTransport,
			Keywords: []string{
				"uber", "lyft", "taxi", "bus", "metro", "train", "flight",
				"airline", "airport", "parking", "toll", "transit", "transport",
			},
		},
		{
			Category: model.CategoryShopping,
			Keywords: []string{
				"amazon", "walmart", "target", "store", "mall", "shop", "retail",
				"clothing", "shoes", "electronics", "best buy", "costco",
			},
		},
		{
			Category: model.CategoryEntertainment,
			Keywords: []string{
				"movie", "theater", "cinema", "netflix", "spotify", "game",
				"concert", "show", "entertainment", "ticket", "event",
			},
		},
		{
			Category: model.CategoryBills,
			Keywords: []string{
				"electric", "gas", "water", "internet", "phone", "utility",
				"bill", "payment", "insurance", "rent", "mortgage",
			},
		},
		{
			Category: model.CategoryHealthcare,
			Keywords: []string{
				"hospital", "doctor", "pharmacy", "medical", "health", "clinic",
				"dentist", "medicine", "prescription", "cvs", "walgreens",
			},
		},
		{
			Category: model.CategoryTravel,
			Keywords: []string{
				"hotel", "booking", "airbnb", "resort", "vacation", "trip",
				"travel", "expedia", "tripadvisor",
			},
		},
		{
			Category: model.CategoryGasFuel,
			Keywords: []string{
				"gas", "fuel", "shell", "chevron", "bp", "exxon", "mobil",
				"station", "petrol",
			},
		},
		{
			Category: model.CategoryGroceries,
			Keywords: []string{
				"grocery", "supermarket", "safeway", "kroger", "whole foods",
				"trader joe", "market", "produce",
			},
		},
		{
			Category: model.CategoryEducation,
			Keywords: []string{
				"school", "university", "college", "education", "tuition",
				"book", "course", "learning",
			},
		},
		{
			Category: model.CategoryBusiness,
			Keywords: []string{
				"office", "supplies", "business", "conference", "meeting",
				"professional", "software", "subscription",
			},
		},
		{Category: model.CategoryOther},
	}
}
