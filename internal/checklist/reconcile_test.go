package checklist

import (
	"testing"

	"github.com/nhle/wellness/internal/model"
)

func keyPtr(s string) *string { return &s }

func TestReconcileByCatalogKey(t *testing.T) {
	catalog := model.MandatoryCatalog()
	var todos []model.Todo
	for i, e := range catalog {
		todos = append(todos, model.Todo{
			ID:          e.Key,
			Text:        "renamed " + e.Text,
			IsMandatory: true,
			Completed:   i%2 == 0,
			CatalogKey:  keyPtr(e.Key),
		})
	}

	res := Reconcile(catalog, todos)

	if len(res.Items) != len(catalog) {
		t.Fatalf("len(Items) = %d, want %d", len(res.Items), len(catalog))
	}
	for i, item := range res.Items {
		if item.Todo == nil || item.Todo.ID != catalog[i].Key {
			t.Fatalf("Items[%d].Todo = %v, want row %q", i, item.Todo, catalog[i].Key)
		}
	}
	if res.CompletedCount != 4 {
		t.Fatalf("CompletedCount = %d, want 4", res.CompletedCount)
	}
}

func TestReconcileHeuristicFallback(t *testing.T) {
	catalog := model.MandatoryCatalog()
	todos := []model.Todo{
		{ID: "a", Text: "Makan makanan anti-inflamasi hari ini", IsMandatory: true, Completed: true},
		{ID: "b", Text: "Tidur cukup", IsMandatory: true},
		{ID: "c", Text: "Minum 2 liter", IsMandatory: false, Completed: true},
	}

	res := Reconcile(catalog, todos)

	byKey := map[string]Item{}
	for _, item := range res.Items {
		byKey[item.Entry.Key] = item
	}

	makan := byKey["makan"]
	if makan.Todo == nil || makan.Todo.ID != "a" || !makan.Completed {
		t.Fatalf("makan = %+v, want completed row a", makan)
	}
	if tidur := byKey["tidur"]; tidur.Todo == nil || tidur.Todo.ID != "b" {
		t.Fatalf("tidur = %+v, want row b by exact text", tidur)
	}
	if minum := byKey["minum"]; minum.Todo != nil || minum.Toggleable() {
		t.Fatalf("minum = %+v, custom todos must not back catalog entries", minum)
	}
	if res.CompletedCount != 1 {
		t.Fatalf("CompletedCount = %d, want 1", res.CompletedCount)
	}
}

func TestReconcileDoesNotReuseRows(t *testing.T) {
	catalog := model.MandatoryCatalog()
	// "Jangan minum obat" contains both "minum" and "obat".
	todos := []model.Todo{
		{ID: "obat", Text: "Jangan minum obat/booster", IsMandatory: true},
		{ID: "minum", Text: "Minum air putih", IsMandatory: true},
	}

	res := Reconcile(catalog, todos)

	got := map[string]string{}
	for _, item := range res.Items {
		if item.Todo != nil {
			got[item.Entry.Key] = item.Todo.ID
		}
	}
	if len(got) != 2 {
		t.Fatalf("matched %v, want two distinct rows", got)
	}
	if got["minum"] == got["obat"] {
		t.Fatalf("row %q backs both minum and obat", got["minum"])
	}
}

func TestReconcileEmpty(t *testing.T) {
	res := Reconcile(model.MandatoryCatalog(), nil)

	if len(res.Items) != 7 || res.CompletedCount != 0 {
		t.Fatalf("Reconcile(nil) = %d items, %d completed", len(res.Items), res.CompletedCount)
	}
	for _, item := range res.Items {
		if item.Toggleable() || item.Completed {
			t.Fatalf("item %q = %+v, want unchecked without row", item.Entry.Key, item)
		}
	}
}
