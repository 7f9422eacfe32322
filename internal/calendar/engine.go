// Package calendar computes working days and working hours from weekday
// arithmetic and a national holiday calendar.
package calendar

import (
	"fmt"

	"fteboard/internal/cache"
	"fteboard/internal/core"
)

// HoursPerDay is the standard working day length.
const HoursPerDay = 8

// WorkingDaysResult describes the working time of one calendar month.
type WorkingDaysResult struct {
	Year         int            `json:"year"`
	Month        int            `json:"month"`
	TotalDays    int            `json:"totalDays"`
	Weekdays     int            `json:"weekdays"`
	Holidays     []core.Holiday `json:"holidays"`
	WorkingDays  int            `json:"workingDays"`
	WorkingHours int            `json:"workingHours"`
}

// Engine answers working-time questions for one holiday calendar. Monthly
// results are memoized and safe for concurrent use.
type Engine struct {
	cal  HolidayCalendar
	memo *cache.Memo[WorkingDaysResult]
}

// NewEngine creates an engine over cal.
func NewEngine(cal HolidayCalendar) *Engine {
	return &Engine{cal: cal, memo: cache.NewMemo[WorkingDaysResult](240)}
}

// Country returns the calendar's country code.
func (e *Engine) Country() string { return e.cal.Country() }

// WorkingDays computes the working time of a month. Out-of-range months are
// normalised the way time.Date does, so month 13 is January of the next year.
func (e *Engine) WorkingDays(year, month int) WorkingDaysResult {
	first := core.NewDate(year, month, 1)
	year, month = first.Year(), first.Month()
	key := fmt.Sprintf("%s-%04d-%02d", e.cal.Country(), year, month)
	res, _ := e.memo.Get(key, func() (WorkingDaysResult, error) {
		return e.compute(year, month), nil
	})
	return res
}

func (e *Engine) compute(year, month int) WorkingDaysResult {
	first := core.NewDate(year, month, 1)
	last := first.MonthEnd()

	holidayOn := make(map[int]core.Holiday)
	for _, h := range e.cal.Holidays(year) {
		if h.Date.Month() == month {
			holidayOn[h.Date.Day()] = h
		}
	}

	res := WorkingDaysResult{Year: year, Month: month, TotalDays: last.Day(), Holidays: []core.Holiday{}}
	for d := first; !d.After(last); d = d.AddDays(1) {
		if !IsWeekday(d) {
			continue
		}
		res.Weekdays++
		if h, ok := holidayOn[d.Day()]; ok {
			res.Holidays = append(res.Holidays, h)
		}
	}
	res.WorkingDays = res.Weekdays - len(res.Holidays)
	res.WorkingHours = res.WorkingDays * HoursPerDay
	return res
}

// MonthsInPeriod lists every month touched by [from, to] in order.
func (e *Engine) MonthsInPeriod(from, to core.Date) []core.MonthKey {
	return MonthsInPeriod(from, to)
}

// WorkingHoursForPeriod sums the working hours of every month touched by
// [from, to]. Partial months count in full.
func (e *Engine) WorkingHoursForPeriod(from, to core.Date) int {
	total := 0
	for _, m := range MonthsInPeriod(from, to) {
		total += e.WorkingDays(m.Year, m.Month).WorkingHours
	}
	return total
}

// MonthsInPeriod lists every month touched by [from, to] in order. It is
// empty when to is before from.
func MonthsInPeriod(from, to core.Date) []core.MonthKey {
	if to.Before(from) {
		return nil
	}
	var out []core.MonthKey
	end := to.MonthStart()
	for cur := from.MonthStart(); !cur.After(end); cur = core.NewDate(cur.Year(), cur.Month()+1, 1) {
		out = append(out, core.MonthKey{Year: cur.Year(), Month: cur.Month()})
	}
	return out
}

// IsWeekday reports whether d is Monday to Friday.
func IsWeekday(d core.Date) bool {
	wd := d.Weekday()
	return wd >= 1 && wd <= 5
}
