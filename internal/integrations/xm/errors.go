package xm

import "errors"

var (
	// ErrExamNotFound пир не знает экзамен с таким ref
	ErrExamNotFound = errors.New("xm client: exam not found")

	// ErrReservationNotFound пир не знает бронирование с таким ref
	ErrReservationNotFound = errors.New("xm client: reservation not found")

	// ErrRevisionConflict ревизия в запросе устарела (409/412 от пира)
	ErrRevisionConflict = errors.New("xm client: revision conflict")

	// ErrPeerUnavailable пир недоступен (сетевая ошибка, таймаут, 5xx)
	ErrPeerUnavailable = errors.New("xm client: peer unavailable")

	// ErrUnexpectedStatus пир ответил неожиданным статусом
	ErrUnexpectedStatus = errors.New("xm client: unexpected status")

	// ErrInvalidResponse тело ответа пира не разбирается
	ErrInvalidResponse = errors.New("xm client: invalid response")

	// ErrInternal внутренняя ошибка клиента
	ErrInternal = errors.New("xm client: internal error")
)
