package pgerr

import (
	"errors"

	"github.com/lib/pq"
)

// Коды ошибок PostgreSQL, которые обрабатываются явно
const (
	CodeUniqueViolation    pq.ErrorCode = "23505"
	CodeExclusionViolation pq.ErrorCode = "23P01"
)

// Code возвращает код ошибки PostgreSQL или пустую строку
func Code(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// IsExclusionViolation true при нарушении EXCLUDE-ограничения
func IsExclusionViolation(err error) bool {
	return Code(err) == CodeExclusionViolation
}

// IsUniqueViolation true при нарушении уникальности
func IsUniqueViolation(err error) bool {
	return Code(err) == CodeUniqueViolation
}
