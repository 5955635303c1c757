package get_free_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ExamBookingService/internal/api/handlers"
	getFreeSlots "github.com/m04kA/SMC-ExamBookingService/internal/usecase/get_free_slots"
)

const (
	msgInvalidRoomID = "некорректный ID аудитории"
	msgMissingDate   = "дата обязательна"
	msgInvalidDate   = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgRoomNotFound  = "аудитория не найдена"
)

type Handler struct {
	useCase GetFreeSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetFreeSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/rooms/{roomId}/free-slots
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	roomID, err := handlers.PathInt64(r, "roomId")
	if err != nil {
		h.logger.Warn("GET /rooms/{id}/free-slots - Invalid room ID: %v", err)
		handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidRoomID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /rooms/%d/free-slots - Missing date", roomID)
		handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(roomID, dateStr)
	if err != nil {
		h.logger.Warn("GET /rooms/%d/free-slots - Invalid date format: %v", roomID, err)
		handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getFreeSlots.ErrInvalidInput):
			handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidRoomID)

		case errors.Is(err, getFreeSlots.ErrRoomNotFound):
			h.logger.Warn("GET /rooms/%d/free-slots - Room not found", roomID)
			handlers.RespondNotFound(w, handlers.ReasonNotFound, msgRoomNotFound)

		default:
			h.logger.Error("GET /rooms/%d/free-slots - Failed to get free slots: %v", roomID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
