package core

// CategoryTotal is the expense total for one category.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    Amount `json:"total"`
}

// MonthSummary is the server-computed aggregate for a year+month.
type MonthSummary struct {
	TotalIncome     Amount          `json:"total_income"`
	TotalExpenses   Amount          `json:"total_expenses"`
	Balance         Amount          `json:"balance"`
	CategorySummary []CategoryTotal `json:"category_summary"`
}

// NewMonthSummary derives the balance from the totals.
func NewMonthSummary(income, expenses Amount, byCategory []CategoryTotal) MonthSummary {
	if byCategory == nil {
		byCategory = []CategoryTotal{}
	}
	return MonthSummary{
		TotalIncome:     income,
		TotalExpenses:   expenses,
		Balance:         income.Sub(expenses),
		CategorySummary: byCategory,
	}
}
