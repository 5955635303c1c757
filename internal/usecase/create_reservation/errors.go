package create_reservation

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_reservation: invalid input data")

	// ErrInvalidTimeRange возвращается, когда конец не позже начала или длительность вне допустимых границ
	ErrInvalidTimeRange = errors.New("create_reservation: invalid time range")

	// ErrStartInPast возвращается, когда начало бронирования в прошлом
	ErrStartInPast = errors.New("create_reservation: start is in the past")

	// ErrExamNotFound возвращается, когда экзамен не найден
	ErrExamNotFound = errors.New("create_reservation: exam not found")

	// ErrRoomNotFound возвращается, когда аудитория не найдена
	ErrRoomNotFound = errors.New("create_reservation: room not found")

	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("create_reservation: user not found")

	// ErrNotBookable возвращается для экзаменов, которые не проводятся за машиной
	ErrNotBookable = errors.New("create_reservation: exam does not use machine reservations")

	// ErrExamNotEnrollable возвращается, когда экзамен не опубликован
	ErrExamNotEnrollable = errors.New("create_reservation: exam is not open for reservations")

	// ErrOutsideExamPeriod возвращается, когда интервал выходит за период активности экзамена
	ErrOutsideExamPeriod = errors.New("create_reservation: window is outside the exam active period")

	// ErrRoomClosed возвращается, когда аудитория закрыта в течение интервала
	ErrRoomClosed = errors.New("create_reservation: room is closed during the window")

	// ErrEnrolmentNotFound возвращается, когда нет записи на экзамен, к которой можно привязать бронирование
	ErrEnrolmentNotFound = errors.New("create_reservation: no enrolment to attach the reservation to")

	// ErrReservationInEffect возвращается, когда текущее бронирование уже идет
	ErrReservationInEffect = errors.New("create_reservation: current reservation is in effect")

	// ErrNoMachinesAvailable возвращается, когда нет свободной подходящей машины
	ErrNoMachinesAvailable = errors.New("create_reservation: no machines available")

	// ErrSlotTaken возвращается, когда машину заняли параллельно (сработало ограничение БД)
	ErrSlotTaken = errors.New("create_reservation: machine was reserved concurrently")

	// ErrExamSourceUnavailable возвращается, когда удаленный источник экзамена недоступен
	ErrExamSourceUnavailable = errors.New("create_reservation: exam source unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
