package enroll

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("enroll: invalid input data")

	// ErrExamNotFound возвращается, когда экзамен не найден
	ErrExamNotFound = errors.New("enroll: exam not found")

	// ErrUserNotFound возвращается, когда пользователь не найден
	ErrUserNotFound = errors.New("enroll: user not found")

	// ErrEnrolmentNotFound возвращается, когда запись не найдена
	ErrEnrolmentNotFound = errors.New("enroll: enrolment not found")

	// ErrExamNotEnrollable возвращается, когда на экзамен нельзя записаться (состояние, тип, период)
	ErrExamNotEnrollable = errors.New("enroll: exam is not enrollable")

	// ErrOrganisationNotAllowed возвращается, когда организация студента не допущена к совместному экзамену
	ErrOrganisationNotAllowed = errors.New("enroll: organisation is not allowed for this exam")

	// ErrTrialCountExceeded возвращается, когда исчерпан лимит попыток
	ErrTrialCountExceeded = errors.New("enroll: trial count exceeded")

	// ErrAlreadyEnrolled возвращается при наличии записи без бронирования
	ErrAlreadyEnrolled = errors.New("enroll: already enrolled")

	// ErrReservationInEffect возвращается, когда бронирование по записи уже идет
	ErrReservationInEffect = errors.New("enroll: reservation is in effect")

	// ErrCannotRemove возвращается, когда бронирование записи уже началось или прошло
	ErrCannotRemove = errors.New("enroll: enrolment reservation has already started")

	// ErrAccessDenied возвращается при недостатке прав
	ErrAccessDenied = errors.New("enroll: access denied")

	// ErrExamSourceUnavailable возвращается, когда удаленный источник экзамена недоступен
	ErrExamSourceUnavailable = errors.New("enroll: exam source unavailable")

	// ErrPeerCancelFailed возвращается, когда пир не смог отменить внешнее бронирование
	ErrPeerCancelFailed = errors.New("enroll: failed to cancel reservation on peer")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("enroll: internal error")
)
