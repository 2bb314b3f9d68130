// Package checklist pairs the day's stored mandatory todos with the static
// catalog so each catalog entry can be shown with its backing row.
package checklist

import (
	"strings"

	"github.com/nhle/wellness/internal/model"
)

// alternates are extra lowercase substrings that identify a catalog entry in
// rows generated before catalog keys were stored.
var alternates = map[string][]string{
	"makan": {"anti-inflamasi"},
	"gerak": {"gerak"},
	"stres": {"stres"},
	"kimia": {"kimia"},
	"obat":  {"obat"},
}

// Item is one catalog entry together with the todo that backs it, if any.
type Item struct {
	Entry     model.CatalogEntry
	Todo      *model.Todo
	Completed bool
}

// Toggleable reports whether the item has a backing row to toggle.
func (i Item) Toggleable() bool {
	return i.Todo != nil
}

// Result is the reconciled checklist in catalog order.
type Result struct {
	Items          []Item
	CompletedCount int
}

// Reconcile matches todos to catalog entries. A row is matched by its
// catalog key or exact canonical text first; rows without a key are then
// matched by case-insensitive substring heuristics. Each todo backs at most
// one entry.
func Reconcile(catalog []model.CatalogEntry, todos []model.Todo) Result {
	claimed := make([]bool, len(todos))
	items := make([]Item, len(catalog))

	for i, entry := range catalog {
		items[i].Entry = entry
		if idx := findExact(entry, todos, claimed); idx >= 0 {
			claimed[idx] = true
			items[i].Todo = &todos[idx]
		}
	}

	// Prefix matches win over plain substring matches, so "Minum air putih"
	// is taken by minum before "Jangan minum obat" can be.
	for _, prefixOnly := range []bool{true, false} {
		for i := range items {
			if items[i].Todo != nil {
				continue
			}
			if idx := findHeuristic(items[i].Entry, todos, claimed, prefixOnly); idx >= 0 {
				claimed[idx] = true
				items[i].Todo = &todos[idx]
			}
		}
	}

	res := Result{Items: items}
	for i := range items {
		if items[i].Todo != nil && items[i].Todo.Completed {
			items[i].Completed = true
			res.CompletedCount++
		}
	}
	return res
}

func findExact(entry model.CatalogEntry, todos []model.Todo, claimed []bool) int {
	for i, t := range todos {
		if claimed[i] || !t.IsMandatory {
			continue
		}
		if t.CatalogKey != nil && *t.CatalogKey == entry.Key {
			return i
		}
	}
	for i, t := range todos {
		if claimed[i] || !t.IsMandatory || t.CatalogKey != nil {
			continue
		}
		if t.Text == entry.Text {
			return i
		}
	}
	return -1
}

func findHeuristic(entry model.CatalogEntry, todos []model.Todo, claimed []bool, prefixOnly bool) int {
	needles := append([]string{entry.Key}, alternates[entry.Key]...)
	for i, t := range todos {
		if claimed[i] || !t.IsMandatory || t.CatalogKey != nil {
			continue
		}
		text := strings.ToLower(t.Text)
		for _, n := range needles {
			if prefixOnly && strings.HasPrefix(text, n) {
				return i
			}
			if !prefixOnly && strings.Contains(text, n) {
				return i
			}
		}
	}
	return -1
}
