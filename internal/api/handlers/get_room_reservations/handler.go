package get_room_reservations

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/reservations"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/reservations/models"
)

const (
	msgInvalidRoomID = "некорректный ID аудитории"
	msgInvalidDate   = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgRoomNotFound  = "аудитория не найдена"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/rooms/{roomId}/reservations
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	roomID, err := handlers.PathInt64(r, "roomId")
	if err != nil {
		h.logger.Warn("GET /rooms/{id}/reservations - Invalid room ID: %v", err)
		handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidRoomID)
		return
	}

	date, err := time.Parse(domain.DateFormat, r.URL.Query().Get("date"))
	if err != nil {
		h.logger.Warn("GET /rooms/%d/reservations - Invalid date: %v", roomID, err)
		handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidDate)
		return
	}

	result, err := h.service.GetRoomReservations(r.Context(), &models.GetRoomReservationsRequest{
		RoomID: roomID,
		Date:   date,
	})
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidInput):
			handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidRoomID)

		case errors.Is(err, reservations.ErrRoomNotFound):
			handlers.RespondNotFound(w, handlers.ReasonNotFound, msgRoomNotFound)

		default:
			h.logger.Error("GET /rooms/%d/reservations - Failed to get reservations: %v", roomID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /rooms/%d/reservations - Retrieved %d reservations on %s", roomID, len(result.Reservations), result.Date)
	handlers.RespondJSON(w, http.StatusOK, result)
}
