package domain

import (
	"time"

	"github.com/m04kA/SMC-ExamBookingService/pkg/types"
)

// DefaultWorkingHours шаблон рабочих часов аудитории на день недели: [Open, Close)
type DefaultWorkingHours struct {
	Weekday time.Weekday
	Open    types.TimeString
	Close   types.TimeString
}

// ExceptionWorkingHours исключение из шаблона на период [StartAt, EndAt).
// OutOfService = true - аудитория закрыта, false - аудитория дополнительно открыта.
type ExceptionWorkingHours struct {
	ID           int64
	StartAt      time.Time
	EndAt        time.Time
	OutOfService bool
}

// Window возвращает период исключения
func (e ExceptionWorkingHours) Window() TimeWindow {
	return TimeWindow{Start: e.StartAt, End: e.EndAt}
}

// ExamRoom аудитория с машинами
type ExamRoom struct {
	ID           int64
	Name         string
	RoomCode     string
	Timezone     string
	OutOfService bool
	WorkingHours []DefaultWorkingHours
	Exceptions   []ExceptionWorkingHours
	Machines     []*ExamMachine
}

// Location возвращает таймзону аудитории (UTC, если не задана или некорректна)
func (r *ExamRoom) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ExamMachine машина в аудитории
type ExamMachine struct {
	ID               int64
	RoomID           int64
	Name             string
	IPAddress        string
	OutOfService     bool
	Archived         bool
	SoftwareIDs      []int64
	AccessibilityIDs []int64
	Reservations     []*Reservation // загруженные бронирования за интересующий период
}

// HasRequiredSoftware true, если на машине установлено все ПО, нужное экзамену
func (m *ExamMachine) HasRequiredSoftware(exam *Exam) bool {
	return containsAll(m.SoftwareIDs, exam.SoftwareIDs)
}

// HasAccessibilities true, если машина поддерживает все запрошенные средства доступности
func (m *ExamMachine) HasAccessibilities(ids []int64) bool {
	return containsAll(m.AccessibilityIDs, ids)
}

// IsReservedDuring true, если хотя бы одно бронирование машины пересекается с интервалом
func (m *ExamMachine) IsReservedDuring(window TimeWindow) bool {
	for _, r := range m.Reservations {
		if r.Window().Overlaps(window) {
			return true
		}
	}
	return false
}

// IsUsable true, если машина не выведена из эксплуатации и не архивирована
func (m *ExamMachine) IsUsable() bool {
	return !m.OutOfService && !m.Archived
}

func containsAll(set []int64, required []int64) bool {
	if len(required) == 0 {
		return true
	}
	have := make(map[int64]struct{}, len(set))
	for _, id := range set {
		have[id] = struct{}{}
	}
	for _, id := range required {
		if _, ok := have[id]; !ok {
			return false
		}
	}
	return true
}
