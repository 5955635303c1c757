package cancel_reservation

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_reservation: invalid input data")

	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = errors.New("cancel_reservation: reservation not found")

	// ErrAccessDenied возвращается, когда пользователь не владеет бронированием
	ErrAccessDenied = errors.New("cancel_reservation: access denied")

	// ErrCannotCancel возвращается, когда бронирование уже началось или закончилось
	ErrCannotCancel = errors.New("cancel_reservation: reservation has already started")

	// ErrPeerCancelFailed возвращается, когда пир не смог отменить внешнее бронирование
	ErrPeerCancelFailed = errors.New("cancel_reservation: failed to cancel reservation on peer")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_reservation: internal error")
)
