package cancel_reservation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ExamBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ExamBookingService/internal/api/middleware"
	cancelReservation "github.com/m04kA/SMC-ExamBookingService/internal/usecase/cancel_reservation"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgUnauthorized         = "пользователь не аутентифицирован"
	msgReservationNotFound  = "бронирование не найдено"
	msgAccessDenied         = "нельзя отменить чужое бронирование"
	msgCannotCancel         = "бронирование уже началось"
	msgPeerCancelFailed     = "не удалось отменить бронирование на удаленной площадке"
)

const reasonCannotCancel = "reservation_started"

type Handler struct {
	useCase CancelReservationUseCase
	logger  Logger
}

func NewHandler(useCase CancelReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/reservations/{reservationId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	reservationID, err := handlers.PathInt64(r, "reservationId")
	if err != nil {
		h.logger.Warn("DELETE /reservations/{id} - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidReservationID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &cancelReservation.Request{
		UserID:        principal.UserID,
		IsAdmin:       principal.IsAdmin(),
		ReservationID: reservationID,
	})
	if err != nil {
		switch {
		case errors.Is(err, cancelReservation.ErrInvalidInput):
			handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidReservationID)

		case errors.Is(err, cancelReservation.ErrReservationNotFound):
			h.logger.Warn("DELETE /reservations/%d - Reservation not found", reservationID)
			handlers.RespondNotFound(w, handlers.ReasonNotFound, msgReservationNotFound)

		case errors.Is(err, cancelReservation.ErrAccessDenied):
			h.logger.Warn("DELETE /reservations/%d - Access denied: user_id=%d", reservationID, principal.UserID)
			handlers.RespondForbidden(w, handlers.ReasonForbidden, msgAccessDenied)

		case errors.Is(err, cancelReservation.ErrCannotCancel):
			handlers.RespondForbidden(w, reasonCannotCancel, msgCannotCancel)

		case errors.Is(err, cancelReservation.ErrPeerCancelFailed):
			h.logger.Error("DELETE /reservations/%d - Peer cancel failed: %v", reservationID, err)
			handlers.RespondBadGateway(w, msgPeerCancelFailed)

		default:
			h.logger.Error("DELETE /reservations/%d - Failed to cancel reservation: %v", reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /reservations/%d - Reservation cancelled by user_id=%d", reservationID, principal.UserID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
