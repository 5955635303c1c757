package domain

import "time"

// Role роль пользователя
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// User пользователь (данные приходят из подсистемы аутентификации, здесь только чтение)
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	Organisation string
	Role         Role
}

// Principal аутентифицированный пользователь запроса
type Principal struct {
	UserID       int64
	Role         Role
	Organisation string
}

// IsAdmin true для администратора
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsTeacher true для преподавателя или администратора
func (p Principal) IsTeacher() bool {
	return p.Role == RoleTeacher || p.Role == RoleAdmin
}

// Participation попытка сдачи экзамена (данные подсистемы оценивания, только чтение)
type Participation struct {
	ID               int64
	UserID           int64
	EnrolmentID      *int64
	State            ExamState
	EndedAt          *time.Time
	RetrialPermitted bool
}
