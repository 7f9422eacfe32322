package core

// CategoryHours represents hours aggregated by category.
type CategoryHours struct {
	Category Category `json:"category"`
	Hours    float64  `json:"hours"`
}

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1-12
}

// Start returns the first day of the month.
func (m MonthKey) Start() Date { return NewDate(m.Year, m.Month, 1) }

// End returns the last day of the month.
func (m MonthKey) End() Date { return NewDate(m.Year, m.Month+1, 0) }

// String formats the month as YYYY-MM.
func (m MonthKey) String() string { return m.Start().MonthKey() }
