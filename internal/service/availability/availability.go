package availability

import (
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

// DayBounds возвращает сутки [00:00, 24:00) даты в таймзоне аудитории
func DayBounds(room *domain.ExamRoom, date time.Time) domain.TimeWindow {
	loc := room.Location()
	y, m, d := date.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return domain.TimeWindow{Start: start, End: start.AddDate(0, 0, 1)}
}

// WorkingWindows вычисляет рабочие интервалы аудитории на дату.
// Исключения имеют приоритет над шаблоном дня недели: открывающие исключения добавляются,
// закрывающие вычитаются.
func WorkingWindows(room *domain.ExamRoom, date time.Time) []domain.TimeWindow {
	if room.OutOfService {
		return []domain.TimeWindow{}
	}

	day := DayBounds(room, date)
	loc := room.Location()

	// 1. Шаблон рабочих часов на день недели
	windows := make([]domain.TimeWindow, 0, len(room.WorkingHours))
	for _, wh := range room.WorkingHours {
		if wh.Weekday != day.Start.Weekday() {
			continue
		}
		open, err := wh.Open.On(day.Start, loc)
		if err != nil {
			continue
		}
		closeAt, err := wh.Close.On(day.Start, loc)
		if err != nil {
			continue
		}
		windows = append(windows, domain.TimeWindow{Start: open, End: closeAt}.Clip(day))
	}

	// 2. Исключения на эту дату
	closed := make([]domain.TimeWindow, 0)
	for _, ex := range room.Exceptions {
		w := ex.Window()
		if !w.Overlaps(day) {
			continue
		}
		if ex.OutOfService {
			closed = append(closed, w.Clip(day))
		} else {
			windows = append(windows, w.Clip(day))
		}
	}

	return domain.SubtractWindows(windows, closed)
}

// FreeSlots вычисляет свободные интервалы аудитории на дату: рабочие часы минус все бронирования
// машин аудитории. Чистая функция, бронирования берутся из room.Machines[].Reservations.
func FreeSlots(room *domain.ExamRoom, date time.Time) []domain.TimeWindow {
	working := WorkingWindows(room, date)
	if len(working) == 0 {
		return working
	}

	day := DayBounds(room, date)
	busy := make([]domain.TimeWindow, 0)
	for _, machine := range room.Machines {
		for _, r := range machine.Reservations {
			w := r.Window()
			if w.Overlaps(day) {
				busy = append(busy, w.Clip(day))
			}
		}
	}

	return domain.SubtractWindows(working, busy)
}

// IsOpenDuring проверяет, что интервал целиком попадает в рабочее время аудитории
func IsOpenDuring(room *domain.ExamRoom, window domain.TimeWindow) bool {
	if window.IsEmpty() {
		return false
	}

	windows := make([]domain.TimeWindow, 0)
	loc := room.Location()
	for day := DayBounds(room, window.Start).Start; day.Before(window.End); day = day.AddDate(0, 0, 1) {
		windows = append(windows, WorkingWindows(room, day.In(loc))...)
	}

	for _, w := range domain.MergeWindows(windows) {
		if w.Covers(window) {
			return true
		}
	}
	return false
}
