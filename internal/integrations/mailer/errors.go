package mailer

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("mailer client: internal error")

	// ErrUnavailable сервис отправки писем недоступен
	ErrUnavailable = errors.New("mailer client: service unavailable")

	// ErrRejected сервис отклонил письмо (4xx)
	ErrRejected = errors.New("mailer client: message rejected")
)
