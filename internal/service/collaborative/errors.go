package collaborative

import "errors"

var (
	// ErrExamNotFound совместный экзамен не найден локально или у пира
	ErrExamNotFound = errors.New("collaborative: exam not found")

	// ErrRevisionConflict ревизия устарела, нужно заново скачать экзамен
	ErrRevisionConflict = errors.New("collaborative: revision conflict")

	// ErrPeerUnavailable пир недоступен
	ErrPeerUnavailable = errors.New("collaborative: peer unavailable")

	// ErrUnexpectedStatus пир ответил неожиданно
	ErrUnexpectedStatus = errors.New("collaborative: unexpected peer response")

	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = errors.New("collaborative: invalid input")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("collaborative: internal error")
)
