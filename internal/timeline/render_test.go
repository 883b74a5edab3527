package timeline

import (
	"errors"
	"slices"
	"testing"

	"github.com/hylla/ritning/internal/domain"
)

func TestComputeMonthView(t *testing.T) {
	tasks := []domain.Task{
		{ID: "late", Name: "Site survey", Start: date(2024, 11, 20), End: date(2024, 12, 5), Status: domain.StatusInProgress},
		{ID: "slab", Name: "Slab pour", Start: date(2024, 12, 10), End: date(2024, 12, 30), Status: domain.StatusPending},
		{ID: "permit", Name: "Permit", Start: date(2025, 1, 1), End: date(2025, 1, 1), IsMilestone: true},
		{ID: "old", Name: "Brief", Start: date(2024, 9, 1), End: date(2024, 9, 3), Status: domain.StatusDone},
	}
	w := ViewWindow{Mode: ModeMonth, Anchor: date(2024, 12, 18)}
	model, err := Compute(w, tasks, date(2024, 12, 18))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if !model.Range.Start.Equal(date(2024, 12, 1)) || len(model.Columns) != 62 || len(model.Months) != 2 {
		t.Fatalf("unexpected grid: start %s, %d columns, %d months", model.Range.Start, len(model.Columns), len(model.Months))
	}
	if !model.TodayVisible || !near(model.TodayPercent, 17.0/62*100, 1e-9) {
		t.Fatalf("unexpected today marker visible=%t percent=%v", model.TodayVisible, model.TodayPercent)
	}

	ids := make([]string, 0, len(model.Bars))
	for _, bar := range model.Bars {
		ids = append(ids, bar.Task.ID)
	}
	if !slices.Equal(ids, []string{"old", "late", "slab", "permit"}) {
		t.Fatalf("unexpected bar order %v", ids)
	}

	old := model.Bars[0]
	if old.Visible || old.Overdue {
		t.Fatalf("expected done task outside the window to be hidden and not overdue, got %#v", old)
	}
	late := model.Bars[1]
	if !late.Visible || !late.Overdue || !near(late.Position.LeftPercent, 0, 1e-9) {
		t.Fatalf("unexpected late bar %#v", late)
	}
	slab := model.Bars[2]
	if slab.Overdue || !near(slab.Position.LeftPercent, 14.516, 0.001) || !near(slab.Position.WidthPercent, 33.871, 0.001) {
		t.Fatalf("unexpected slab bar %#v", slab)
	}
	permit := model.Bars[3]
	if !permit.IsMilestone || !near(permit.Position.LeftPercent, 31.0/62*100, 1e-9) {
		t.Fatalf("unexpected milestone bar %#v", permit)
	}
}

func TestComputeEmptyTaskList(t *testing.T) {
	model, err := Compute(ViewWindow{Mode: ModeWeek, Anchor: date(2024, 12, 18)}, nil, date(2030, 1, 1))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if len(model.Bars) != 0 || len(model.Columns) != 14 || model.TodayVisible {
		t.Fatalf("unexpected empty model %#v", model)
	}
}

func TestComputeRejectsInvalidMode(t *testing.T) {
	if _, err := Compute(ViewWindow{Mode: "year", Anchor: date(2024, 12, 18)}, nil, date(2024, 12, 18)); !errors.Is(err, ErrInvalidViewMode) {
		t.Fatalf("expected ErrInvalidViewMode, got %v", err)
	}
}
