// Package history groups todos by calendar day and computes per-day
// completion statistics.
package history

import (
	"math"
	"sort"

	"github.com/nhle/wellness/internal/model"
)

// Stats summarises completion for a set of todos.
type Stats struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Day is one calendar day of a user's history.
type Day struct {
	Date  string       `json:"date"`
	Todos []model.Todo `json:"todos"`
	Stats Stats        `json:"stats"`
}

// FeedDay is one calendar day of the public feed.
type FeedDay struct {
	Date  string             `json:"date"`
	Items []model.PublicTodo `json:"items"`
}

// Percentage returns round(100*completed/total), or 0 when total is 0.
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(completed) * 100 / float64(total)))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Compute returns completion statistics for todos.
func Compute(todos []model.Todo) Stats {
	s := Stats{Total: len(todos)}
	for _, t := range todos {
		if t.Completed {
			s.Completed++
		}
	}
	s.Percentage = Percentage(s.Completed, s.Total)
	return s
}

// Group buckets todos by their stored Date string. Days are returned most
// recent first; todos within a day are ordered by creation time.
func Group(todos []model.Todo) []Day {
	groups := groupByDate(todos, func(t model.Todo) string { return t.Date })

	days := make([]Day, 0, len(groups))
	for _, g := range groups {
		sort.SliceStable(g.items, func(i, j int) bool {
			return g.items[i].CreatedAt.Before(g.items[j].CreatedAt)
		})
		days = append(days, Day{Date: g.date, Todos: g.items, Stats: Compute(g.items)})
	}

	// YYYY-MM-DD sorts chronologically as a string.
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date > days[j].Date })
	return days
}

// GroupFeed buckets public feed items by Date, keeping the input order both
// across days and within each day.
func GroupFeed(items []model.PublicTodo) []FeedDay {
	groups := groupByDate(items, func(t model.PublicTodo) string { return t.Date })

	days := make([]FeedDay, 0, len(groups))
	for _, g := range groups {
		days = append(days, FeedDay{Date: g.date, Items: g.items})
	}
	return days
}

type group[T any] struct {
	date  string
	items []T
}

// groupByDate buckets items by key in order of first appearance.
func groupByDate[T any](items []T, key func(T) string) []*group[T] {
	index := make(map[string]*group[T])
	var out []*group[T]
	for _, it := range items {
		k := key(it)
		g, ok := index[k]
		if !ok {
			g = &group[T]{date: k}
			index[k] = g
			out = append(out, g)
		}
		g.items = append(g.items, it)
	}
	return out
}
