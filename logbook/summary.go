/*
summary.go - Read-only derived views over the repository snapshot

PURPOSE:
  Recomputes aggregations (sorted lists, pages, weekly/monthly sums, per-tag
  pay-period summaries) as plain functions over the current state, on demand.
  Nothing here mutates the repository or caches across calls.

WEEK CONVENTION:
  Weeks start on Sunday, matching the calendar the tracker displays.

PAY PERIODS:
  Each tag carries a closing day of month (PeriodStartDay field, named for
  the boundary it marks). The current period ends on that day of this month,
  or next month once today has passed it, and spans exactly one month.
*/
package logbook

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shiftwage/attendance-engine/engine"
)

// =============================================================================
// FLAT AND PAGINATED VIEWS
// =============================================================================

// AllLogsSorted flattens every date bucket and orders by ModifiedAt,
// most recent first.
func (r *Repository) AllLogsSorted() []AttendanceLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.allLogsSortedLocked()
}

func (r *Repository) allLogsSortedLocked() []AttendanceLog {
	var flat []AttendanceLog
	for _, bucket := range r.logs {
		flat = append(flat, bucket...)
	}
	sort.SliceStable(flat, func(i, j int) bool {
		return flat[i].ModifiedAt.After(flat[j].ModifiedAt)
	})
	return flat
}

// Page is one slice of the sorted log list.
type Page struct {
	Logs       []AttendanceLog `json:"logs"`
	Number     int             `json:"page"`
	TotalPages int             `json:"totalPages"`
	TotalLogs  int             `json:"totalLogs"`
}

// Paginate returns page number (1-based) of the sorted logs, perPage items
// per page. Out-of-range pages return an empty slice.
func (r *Repository) Paginate(page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 5
	}

	all := r.AllLogsSorted()
	totalPages := (len(all) + perPage - 1) / perPage

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}

	return Page{Logs: all[start:end], Number: page, TotalPages: totalPages, TotalLogs: len(all)}
}

// LogsByDate returns the bucket for one calendar date.
func (r *Repository) LogsByDate(date string) []AttendanceLog {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.logs[date]
	out := make([]AttendanceLog, len(bucket))
	copy(out, bucket)
	return out
}

// =============================================================================
// WAGE AND EXPENSE SUMS
// =============================================================================

// WageSummary aggregates one date window.
type WageSummary struct {
	Wage     decimal.Decimal `json:"wage"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// WeeklySummary sums wages and expenses for the Sunday-started week
// containing today.
func (r *Repository) WeeklySummary(today time.Time) WageSummary {
	dates := weekDates(today)
	return r.sumWhere(func(log AttendanceLog) bool {
		_, ok := dates[log.Date]
		return ok
	})
}

// MonthlySummary sums wages and expenses for the calendar month containing
// today.
func (r *Repository) MonthlySummary(today time.Time) WageSummary {
	prefix := today.Format("2006-01")
	return r.sumWhere(func(log AttendanceLog) bool {
		return strings.HasPrefix(log.Date, prefix)
	})
}

func (r *Repository) sumWhere(match func(AttendanceLog) bool) WageSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	wage, expenses := decimal.Zero, decimal.Zero
	for _, bucket := range r.logs {
		for _, log := range bucket {
			if !match(log) {
				continue
			}
			wage = wage.Add(log.DailyWage)
			expenses = expenses.Add(log.Expenses)
		}
	}
	return WageSummary{Wage: wage, Expenses: expenses, Net: wage.Sub(expenses)}
}

// weekDates returns the seven date strings of the Sunday-started week
// containing t.
func weekDates(t time.Time) map[string]struct{} {
	day := engine.StartOfDay(t)
	sunday := day.AddDate(0, 0, -int(day.Weekday()))

	dates := make(map[string]struct{}, 7)
	for i := 0; i < 7; i++ {
		dates[engine.FormatDate(sunday.AddDate(0, 0, i))] = struct{}{}
	}
	return dates
}

// =============================================================================
// PER-TAG PAY-PERIOD SUMMARIES
// =============================================================================

// TagSummary is the current pay-period aggregation for one tag.
type TagSummary struct {
	TagID     engine.TagID    `json:"tagId"`
	TagName   string          `json:"tagName"`
	TagColor  string          `json:"tagColor"`
	Payday    int             `json:"payday"`
	Period    string          `json:"period"`
	GrossWage decimal.Decimal `json:"grossWage"`
	Expenses  decimal.Decimal `json:"expenses"`
	TotalWage decimal.Decimal `json:"totalWage"`
}

// TagSummaries computes, for every tag, wage and expense totals over the pay
// period whose closing day is the tag's PeriodStartDay. The period ends on
// that day of the current month, or the next month once today is past it,
// and starts a month earlier plus one day.
func (r *Repository) TagSummaries(today time.Time) []TagSummary {
	r.mu.Lock()
	tags := make([]engine.RateProfile, len(r.tags))
	copy(tags, r.tags)
	logs := r.allLogsSortedLocked()
	r.mu.Unlock()

	summaries := make([]TagSummary, 0, len(tags))
	for _, tag := range tags {
		closingDay := tag.PeriodStartDay
		if closingDay < 1 || closingDay > 31 {
			continue
		}

		endMonth := today.Month()
		endYear := today.Year()
		if today.Day() > closingDay {
			endMonth++
		}
		periodEnd := time.Date(endYear, endMonth, closingDay, 0, 0, 0, 0, time.Local)
		// Advance a day before stepping back a month. The single-step
		// AddDate(0, -1, 1) would normalize Feb 32 to Mar 4 for a period
		// ending Mar 31, dropping Mar 1-3 from the window.
		periodStart := periodEnd.AddDate(0, 0, 1).AddDate(0, -1, 0)

		startStr := engine.FormatDate(periodStart)
		endStr := engine.FormatDate(periodEnd)

		wage, expenses := decimal.Zero, decimal.Zero
		for _, log := range logs {
			if log.TagID != tag.ID || log.Date < startStr || log.Date > endStr {
				continue
			}
			wage = wage.Add(log.DailyWage)
			expenses = expenses.Add(log.Expenses)
		}

		summaries = append(summaries, TagSummary{
			TagID:     tag.ID,
			TagName:   tag.Name,
			TagColor:  tag.Color,
			Payday:    tag.Payday,
			Period:    startStr[5:] + " ~ " + endStr[5:],
			GrossWage: wage,
			Expenses:  expenses,
			TotalWage: wage.Sub(expenses),
		})
	}
	return summaries
}
