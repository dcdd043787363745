package core

// CategoryTotal is the sum of expense amounts for one category.
type CategoryTotal struct {
	Category    string `json:"category"`
	TotalAmount Amount `json:"total_amount"`
}

// SummaryFilter narrows a category summary to an inclusive date range and,
// when Category is set and non-empty, to a single category.
type SummaryFilter struct {
	Start    Date
	End      Date
	Category *string
}

// CategoryName returns the category to filter on. An empty name means no
// filter, the same as a nil Category.
func (f SummaryFilter) CategoryName() (string, bool) {
	if f.Category == nil || *f.Category == "" {
		return "", false
	}
	return *f.Category, true
}
