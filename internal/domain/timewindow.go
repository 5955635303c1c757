package domain

import (
	"sort"
	"time"
)

// TimeWindow полуоткрытый интервал времени [Start, End)
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow создает интервал
func NewTimeWindow(start, end time.Time) TimeWindow {
	return TimeWindow{Start: start, End: end}
}

// IsEmpty true, если интервал пустой или перевернутый
func (w TimeWindow) IsEmpty() bool {
	return !w.Start.Before(w.End)
}

// Duration длительность интервала
func (w TimeWindow) Duration() time.Duration {
	if w.IsEmpty() {
		return 0
	}
	return w.End.Sub(w.Start)
}

// Overlaps проверяет пересечение двух интервалов.
// Граничащие интервалы ([9,10) и [10,11)) не пересекаются.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	if w.IsEmpty() || other.IsEmpty() {
		return false
	}
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// Contains true, если момент t попадает в [Start, End)
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Covers true, если other целиком лежит внутри w
func (w TimeWindow) Covers(other TimeWindow) bool {
	return !other.Start.Before(w.Start) && !other.End.After(w.End)
}

// Clip обрезает интервал по границам bounds
func (w TimeWindow) Clip(bounds TimeWindow) TimeWindow {
	start, end := w.Start, w.End
	if start.Before(bounds.Start) {
		start = bounds.Start
	}
	if end.After(bounds.End) {
		end = bounds.End
	}
	return TimeWindow{Start: start, End: end}
}

// MergeWindows сортирует интервалы и склеивает пересекающиеся и граничащие
func MergeWindows(windows []TimeWindow) []TimeWindow {
	sorted := make([]TimeWindow, 0, len(windows))
	for _, w := range windows {
		if !w.IsEmpty() {
			sorted = append(sorted, w)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := make([]TimeWindow, 0, len(sorted))
	for _, w := range sorted {
		if n := len(merged); n > 0 && !w.Start.After(merged[n-1].End) {
			if w.End.After(merged[n-1].End) {
				merged[n-1].End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// SubtractWindows вычитает занятые интервалы из базовых.
// Результат отсортирован; частичное пересечение разбивает базовый интервал на два.
func SubtractWindows(base []TimeWindow, busy []TimeWindow) []TimeWindow {
	free := MergeWindows(base)
	for _, b := range MergeWindows(busy) {
		next := make([]TimeWindow, 0, len(free)+1)
		for _, f := range free {
			if !f.Overlaps(b) {
				next = append(next, f)
				continue
			}
			if f.Start.Before(b.Start) {
				next = append(next, TimeWindow{Start: f.Start, End: b.Start})
			}
			if b.End.Before(f.End) {
				next = append(next, TimeWindow{Start: b.End, End: f.End})
			}
		}
		free = next
	}
	return free
}
