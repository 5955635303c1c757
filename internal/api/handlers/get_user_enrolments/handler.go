package get_user_enrolments

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-ExamBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ExamBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/reservations/models"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgInvalidActive = "параметр active должен быть true или false"
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

// Handle GET /api/v1/enrolments
// Query params: active (optional, bool)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	activeOnly := false
	if raw := r.URL.Query().Get("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("GET /enrolments - Invalid active param: %v", err)
			handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidActive)
			return
		}
		activeOnly = parsed
	}

	result, err := h.service.GetUserEnrolments(r.Context(), &models.GetUserEnrolmentsRequest{
		UserID:     userID,
		ActiveOnly: activeOnly,
	})
	if err != nil {
		h.logger.Error("GET /enrolments - Failed to get enrolments: user_id=%d, error=%v", userID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /enrolments - Enrolments retrieved: user_id=%d, count=%d", userID, len(result.Enrolments))
	handlers.RespondJSON(w, http.StatusOK, result)
}
