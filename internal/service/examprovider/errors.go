package examprovider

import "errors"

var (
	// ErrExamNotFound экзамен не найден
	ErrExamNotFound = errors.New("examprovider: exam not found")

	// ErrUnavailable источник экзамена недоступен (удаленный пир)
	ErrUnavailable = errors.New("examprovider: exam source unavailable")

	// ErrCollaborationDisabled совместные экзамены отключены в конфигурации
	ErrCollaborationDisabled = errors.New("examprovider: collaboration is disabled")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("examprovider: internal error")
)
