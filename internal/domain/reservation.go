package domain

import (
	"sort"
	"time"
)

// ExternalReservation бронирование машины у удаленного пира (студент сдает экзамен в чужой организации)
type ExternalReservation struct {
	ID           int64
	ExternalRef  string
	OrgRef       string
	RoomRef      string
	MachineName  string
	RoomName     string
	RoomTimezone string
}

// Reservation забронированное время на конкретной машине для конкретного пользователя.
// Заполнено ровно одно из полей MachineID / External.
type Reservation struct {
	ID                 int64
	UserID             int64
	MachineID          *int64
	External           *ExternalReservation
	StartAt            time.Time
	EndAt              time.Time // не включается
	NoShow             bool
	RetrialPermitted   bool
	ReminderSent       bool
	OptionalSectionIDs []int64 // необязательные разделы экзамена, выбранные студентом
	CreatedAt          time.Time
}

// Window возвращает интервал бронирования
func (r *Reservation) Window() TimeWindow {
	return TimeWindow{Start: r.StartAt, End: r.EndAt}
}

// IsInEffect true, если now попадает в [StartAt, EndAt)
func (r *Reservation) IsInEffect(now time.Time) bool {
	return r.Window().Contains(now)
}

// IsInFuture true, если бронирование еще не началось
func (r *Reservation) IsInFuture(now time.Time) bool {
	return now.Before(r.StartAt)
}

// HasEnded true, если бронирование уже закончилось
func (r *Reservation) HasEnded(now time.Time) bool {
	return !now.Before(r.EndAt)
}

// IsExternal true для бронирований у удаленного пира
func (r *Reservation) IsExternal() bool {
	return r.External != nil
}

// SortReservations сортирует бронирования по времени начала
func SortReservations(reservations []*Reservation) {
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].StartAt.Before(reservations[j].StartAt)
	})
}
