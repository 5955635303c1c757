package create_reservation

import "time"

// Request модель запроса на создание (замену) бронирования
type Request struct {
	UserID           int64     // ID пользователя из токена
	RoomID           int64     // ID аудитории
	ExamID           int64     // ID экзамена (или прокси-записи совместного экзамена)
	Collaborative    bool      // true для совместного экзамена
	Start            time.Time // Начало интервала
	End              time.Time // Конец интервала (не включается)
	AccessibilityIDs []int64   // Требуемые средства доступности
	SectionIDs       []int64   // Выбранные необязательные разделы экзамена
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID                    int64
	EnrolmentID           int64
	UserID                int64
	ExamID                int64
	Collaborative         bool
	RoomID                int64
	MachineID             int64
	MachineName           string
	Start                 time.Time
	End                   time.Time
	OptionalSectionIDs    []int64
	ReplacedReservationID *int64 // ID замененного бронирования, если было
	CreatedAt             time.Time
}
