package remove_enrolment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ExamBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ExamBookingService/internal/api/middleware"
	enrollUC "github.com/m04kA/SMC-ExamBookingService/internal/usecase/enroll"
)

const (
	msgInvalidEnrolmentID = "некорректный ID записи"
	msgUnauthorized       = "пользователь не аутентифицирован"
	msgEnrolmentNotFound  = "запись на экзамен не найдена"
	msgAccessDenied       = "нельзя удалить чужую запись"
	msgCannotRemove       = "бронирование по записи уже началось"
	msgPeerCancelFailed   = "не удалось отменить бронирование на удаленной площадке"
)

const reasonCannotRemove = "reservation_started"

type Handler struct {
	useCase RemoveEnrolmentUseCase
	logger  Logger
}

func NewHandler(useCase RemoveEnrolmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/enrolments/{enrolmentId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	enrolmentID, err := handlers.PathInt64(r, "enrolmentId")
	if err != nil {
		h.logger.Warn("DELETE /enrolments/{id} - Invalid enrolment ID: %v", err)
		handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidEnrolmentID)
		return
	}

	err = h.useCase.RemoveEnrolment(r.Context(), &enrollUC.RemoveRequest{
		Principal:   principal,
		EnrolmentID: enrolmentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, enrollUC.ErrInvalidInput):
			handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidEnrolmentID)

		case errors.Is(err, enrollUC.ErrEnrolmentNotFound):
			handlers.RespondNotFound(w, handlers.ReasonNotFound, msgEnrolmentNotFound)

		case errors.Is(err, enrollUC.ErrAccessDenied):
			h.logger.Warn("DELETE /enrolments/%d - Access denied: user_id=%d", enrolmentID, principal.UserID)
			handlers.RespondForbidden(w, handlers.ReasonForbidden, msgAccessDenied)

		case errors.Is(err, enrollUC.ErrCannotRemove):
			handlers.RespondForbidden(w, reasonCannotRemove, msgCannotRemove)

		case errors.Is(err, enrollUC.ErrPeerCancelFailed):
			h.logger.Error("DELETE /enrolments/%d - Peer cancel failed: %v", enrolmentID, err)
			handlers.RespondBadGateway(w, msgPeerCancelFailed)

		default:
			h.logger.Error("DELETE /enrolments/%d - Failed to remove enrolment: %v", enrolmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /enrolments/%d - Enrolment removed by user_id=%d", enrolmentID, principal.UserID)
	w.WriteHeader(http.StatusNoContent)
}
