package pre_enroll

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ExamBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ExamBookingService/internal/api/middleware"
	enrollUC "github.com/m04kA/SMC-ExamBookingService/internal/usecase/enroll"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса, нужен userId или email"
	msgInvalidExamID       = "некорректный ID экзамена"
	msgUnauthorized        = "пользователь не аутентифицирован"
	msgExamNotFound        = "экзамен не найден"
	msgUserNotFound        = "пользователь не найден"
	msgAccessDenied        = "нет прав на запись студентов на этот экзамен"
	msgExamNotEnrollable   = "на экзамен нельзя записать студента"
	msgAlreadyEnrolled     = "студент уже записан на экзамен"
	msgReservationInEffect = "бронирование студента уже идет"
	msgExamSource          = "источник экзамена недоступен"
)

// Стабильные коды причин ошибок
const (
	reasonExamNotEnrollable   = "exam_not_enrollable"
	reasonAlreadyEnrolled     = "already_enrolled"
	reasonReservationInEffect = "reservation_in_effect"
)

type Handler struct {
	useCase PreEnrollUseCase
	logger  Logger
}

func NewHandler(useCase PreEnrollUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/enrolments/{examId}/pre
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	examID, err := handlers.PathInt64(r, "examId")
	if err != nil {
		h.logger.Warn("POST /enrolments/{examId}/pre - Invalid exam ID: %v", err)
		handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidExamID)
		return
	}

	var req PreEnrollRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /enrolments/%d/pre - Invalid request body: %v", examID, err)
		handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.PreEnroll(r.Context(), req.ToUseCaseRequest(principal, examID))
	if err != nil {
		switch {
		case errors.Is(err, enrollUC.ErrInvalidInput):
			handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidRequestBody)

		case errors.Is(err, enrollUC.ErrExamNotFound):
			handlers.RespondNotFound(w, handlers.ReasonNotFound, msgExamNotFound)

		case errors.Is(err, enrollUC.ErrUserNotFound):
			handlers.RespondNotFound(w, handlers.ReasonNotFound, msgUserNotFound)

		case errors.Is(err, enrollUC.ErrAccessDenied):
			h.logger.Warn("POST /enrolments/%d/pre - Access denied: user_id=%d", examID, principal.UserID)
			handlers.RespondForbidden(w, handlers.ReasonForbidden, msgAccessDenied)

		case errors.Is(err, enrollUC.ErrExamNotEnrollable):
			handlers.RespondForbidden(w, reasonExamNotEnrollable, msgExamNotEnrollable)

		case errors.Is(err, enrollUC.ErrAlreadyEnrolled):
			handlers.RespondForbidden(w, reasonAlreadyEnrolled, msgAlreadyEnrolled)

		case errors.Is(err, enrollUC.ErrReservationInEffect):
			handlers.RespondForbidden(w, reasonReservationInEffect, msgReservationInEffect)

		case errors.Is(err, enrollUC.ErrExamSourceUnavailable):
			h.logger.Error("POST /enrolments/%d/pre - Exam source unavailable: %v", examID, err)
			handlers.RespondBadGateway(w, msgExamSource)

		default:
			h.logger.Error("POST /enrolments/%d/pre - Failed to pre-enrol: %v", examID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /enrolments/%d/pre - Enrolment created: enrolment_id=%d, by user_id=%d",
		examID, result.ID, principal.UserID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
