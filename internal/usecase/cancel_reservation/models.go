package cancel_reservation

// Request модель запроса на отмену бронирования
type Request struct {
	UserID        int64 // ID пользователя из токена
	IsAdmin       bool  // администратор может отменить чужое бронирование
	ReservationID int64
}

// Response модель ответа
type Response struct {
	ReservationID int64
	EnrolmentID   *int64
}
