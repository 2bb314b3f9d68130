package history

import (
	"testing"
	"time"

	"github.com/nhle/wellness/internal/model"
)

func TestPercentage(t *testing.T) {
	tests := []struct {
		name            string
		completed, tota int
		want            int
	}{
		{"empty day", 0, 0, 0},
		{"none done", 0, 8, 0},
		{"one of eight rounds up", 1, 8, 13},
		{"half", 4, 8, 50},
		{"two of three", 2, 3, 67},
		{"all", 7, 7, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentage(tt.completed, tt.tota); got != tt.want {
				t.Fatalf("Percentage(%d, %d) = %d, want %d", tt.completed, tt.tota, got, tt.want)
			}
		})
	}
}

func TestPercentageBounds(t *testing.T) {
	for total := 0; total <= 20; total++ {
		for completed := 0; completed <= total; completed++ {
			p := Percentage(completed, total)
			if p < 0 || p > 100 {
				t.Fatalf("Percentage(%d, %d) = %d, out of [0,100]", completed, total, p)
			}
		}
	}
}

func TestGroupSortsDaysDescendingAndTodosAscending(t *testing.T) {
	base := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

	todos := []model.Todo{
		{ID: "b2", Date: "2026-10-02", CreatedAt: at(30), Completed: true},
		{ID: "a1", Date: "2026-10-01", CreatedAt: at(5)},
		{ID: "c1", Date: "2026-10-03", CreatedAt: at(1), Completed: true},
		{ID: "b1", Date: "2026-10-02", CreatedAt: at(10)},
		{ID: "a2", Date: "2026-10-01", CreatedAt: at(50), Completed: true},
	}

	days := Group(todos)

	if len(days) != 3 {
		t.Fatalf("len(Group()) = %d, want 3", len(days))
	}
	wantDates := []string{"2026-10-03", "2026-10-02", "2026-10-01"}
	for i, d := range days {
		if d.Date != wantDates[i] {
			t.Fatalf("days[%d].Date = %q, want %q", i, d.Date, wantDates[i])
		}
		for j := 1; j < len(d.Todos); j++ {
			if d.Todos[j].CreatedAt.Before(d.Todos[j-1].CreatedAt) {
				t.Fatalf("day %s not sorted by created_at", d.Date)
			}
		}
	}

	if days[1].Todos[0].ID != "b1" || days[1].Todos[1].ID != "b2" {
		t.Fatalf("day 2026-10-02 = %v, want b1 then b2", days[1].Todos)
	}
	if got := days[1].Stats; got != (Stats{Completed: 1, Total: 2, Percentage: 50}) {
		t.Fatalf("days[1].Stats = %+v, want 1/2 50%%", got)
	}
	if got := days[0].Stats; got.Percentage != 100 {
		t.Fatalf("days[0].Stats = %+v, want 100%%", got)
	}
}

func TestGroupUsesStoredDateNotTimestamp(t *testing.T) {
	// Created late on the 1st in UTC but stored as the user's local 2nd.
	todos := []model.Todo{
		{ID: "x", Date: "2026-10-02", CreatedAt: time.Date(2026, 10, 1, 23, 30, 0, 0, time.UTC)},
	}

	days := Group(todos)
	if len(days) != 1 || days[0].Date != "2026-10-02" {
		t.Fatalf("Group() = %+v, want single day 2026-10-02", days)
	}
}

func TestGroupFeedKeepsInputOrder(t *testing.T) {
	items := []model.PublicTodo{
		{Todo: model.Todo{ID: "3", Date: "2026-10-03"}, UserName: "Ana"},
		{Todo: model.Todo{ID: "2", Date: "2026-10-03"}, UserName: "Budi"},
		{Todo: model.Todo{ID: "1", Date: "2026-10-02"}, UserName: "Ana"},
	}

	days := GroupFeed(items)

	if len(days) != 2 {
		t.Fatalf("len(GroupFeed()) = %d, want 2", len(days))
	}
	if days[0].Date != "2026-10-03" || len(days[0].Items) != 2 || days[0].Items[0].ID != "3" {
		t.Fatalf("days[0] = %+v, want 3 then 2", days[0])
	}
	if days[1].Items[0].ID != "1" {
		t.Fatalf("days[1] = %+v, want item 1", days[1])
	}
}

func TestComputeEmpty(t *testing.T) {
	if got := Compute(nil); got != (Stats{}) {
		t.Fatalf("Compute(nil) = %+v, want zero stats", got)
	}
}
