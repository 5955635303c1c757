package handlers

import (
	"encoding/json"
	"net/http"
)

// Стабильные коды ошибок, общие для всех обработчиков
const (
	ReasonInvalidRequest = "invalid_request"
	ReasonUnauthorized   = "unauthorized"
	ReasonForbidden      = "forbidden"
	ReasonNotFound       = "not_found"
	ReasonInternal       = "internal_error"
	ReasonBadGateway     = "dependency_failed"
)

const msgInternalError = "внутренняя ошибка сервера"

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError отправляет ошибку со статусом и стабильным кодом причины
func RespondError(w http.ResponseWriter, status int, reason, message string) {
	RespondJSON(w, status, ErrorResponse{
		Code:    status,
		Reason:  reason,
		Message: message,
	})
}

// RespondBadRequest 400
func RespondBadRequest(w http.ResponseWriter, reason, message string) {
	RespondError(w, http.StatusBadRequest, reason, message)
}

// RespondUnauthorized 401
func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, ReasonUnauthorized, message)
}

// RespondForbidden 403
func RespondForbidden(w http.ResponseWriter, reason, message string) {
	RespondError(w, http.StatusForbidden, reason, message)
}

// RespondNotFound 404
func RespondNotFound(w http.ResponseWriter, reason, message string) {
	RespondError(w, http.StatusNotFound, reason, message)
}

// RespondConflict 409
func RespondConflict(w http.ResponseWriter, reason, message string) {
	RespondError(w, http.StatusConflict, reason, message)
}

// RespondBadGateway 502, ошибка внешней зависимости
func RespondBadGateway(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadGateway, ReasonBadGateway, message)
}

// RespondInternalError 500
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, ReasonInternal, msgInternalError)
}
