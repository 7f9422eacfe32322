package calendar

import (
	"sort"
	"strings"

	"fteboard/internal/core"
)

// HolidayCalendar yields the public holidays of one country.
type HolidayCalendar interface {
	// Country returns the ISO 3166-1 alpha-2 code the calendar serves.
	Country() string
	// Holidays returns the holidays of the given year ordered by date.
	Holidays(year int) []core.Holiday
}

type fixedHoliday struct {
	month, day int
	name       string
}

var czechFixed = []fixedHoliday{
	{1, 1, "Den obnovy samostatného českého státu"},
	{5, 1, "Svátek práce"},
	{5, 8, "Den vítězství"},
	{7, 5, "Den slovanských věrozvěstů Cyrila a Metoděje"},
	{7, 6, "Den upálení mistra Jana Husa"},
	{9, 28, "Den české státnosti"},
	{10, 28, "Den vzniku samostatného československého státu"},
	{11, 17, "Den boje za svobodu a demokracii"},
	{12, 24, "Štědrý den"},
	{12, 25, "1. svátek vánoční"},
	{12, 26, "2. svátek vánoční"},
}

type czech struct{}

// Czech returns the statutory public holidays of the Czech Republic.
func Czech() HolidayCalendar { return czech{} }

func (czech) Country() string { return "CZ" }

func (czech) Holidays(year int) []core.Holiday {
	out := make([]core.Holiday, 0, len(czechFixed)+2)
	for _, f := range czechFixed {
		out = append(out, core.Holiday{Date: core.NewDate(year, f.month, f.day), Name: f.name, Country: "CZ"})
	}
	easter := EasterSunday(year)
	out = append(out,
		core.Holiday{Date: easter.AddDays(-2), Name: "Velký pátek", Country: "CZ"},
		core.Holiday{Date: easter.AddDays(1), Name: "Velikonoční pondělí", Country: "CZ"},
	)
	sortHolidays(out)
	return out
}

// EasterSunday computes Gregorian Easter with the anonymous algorithm
// (Meeus/Jones/Butcher).
func EasterSunday(year int) core.Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return core.NewDate(year, month, day)
}

// Static is a calendar backed by a fixed list of holidays.
type Static struct {
	country  string
	holidays []core.Holiday
}

// NewStatic creates a calendar from explicit holiday rows.
func NewStatic(country string, holidays []core.Holiday) *Static {
	hs := append([]core.Holiday(nil), holidays...)
	sortHolidays(hs)
	return &Static{country: strings.ToUpper(country), holidays: hs}
}

func (s *Static) Country() string { return s.country }

func (s *Static) Holidays(year int) []core.Holiday {
	var out []core.Holiday
	for _, h := range s.holidays {
		if h.Date.Year() == year {
			out = append(out, h)
		}
	}
	return out
}

type overrides struct {
	base  HolidayCalendar
	extra map[string]core.Holiday
}

// WithOverrides merges stored holiday rows into base. Rows of other
// countries are ignored; a row on the same date as a base holiday replaces it.
func WithOverrides(base HolidayCalendar, rows []core.Holiday) HolidayCalendar {
	extra := make(map[string]core.Holiday)
	for _, h := range rows {
		if h.Country != "" && !strings.EqualFold(h.Country, base.Country()) {
			continue
		}
		h.Country = base.Country()
		extra[h.Date.String()] = h
	}
	if len(extra) == 0 {
		return base
	}
	return &overrides{base: base, extra: extra}
}

func (o *overrides) Country() string { return o.base.Country() }

func (o *overrides) Holidays(year int) []core.Holiday {
	byDate := make(map[string]core.Holiday)
	for _, h := range o.base.Holidays(year) {
		byDate[h.Date.String()] = h
	}
	for k, h := range o.extra {
		if h.Date.Year() == year {
			byDate[k] = h
		}
	}
	out := make([]core.Holiday, 0, len(byDate))
	for _, h := range byDate {
		out = append(out, h)
	}
	sortHolidays(out)
	return out
}

// ForCountry returns the built-in calendar for a country code.
func ForCountry(code string) (HolidayCalendar, bool) {
	switch strings.ToUpper(code) {
	case "CZ":
		return Czech(), true
	}
	return nil, false
}

func sortHolidays(hs []core.Holiday) {
	sort.Slice(hs, func(i, j int) bool { return hs[i].Date.Before(hs[j].Date) })
}
