package get_collaborative_exam

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ExamBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/collaborative"
)

const (
	msgInvalidExamID   = "некорректный ID экзамена"
	msgExamNotFound    = "совместный экзамен не найден"
	msgPeerUnavailable = "удаленный сервис экзаменов недоступен"
)

type Handler struct {
	service CollaborativeService
	logger  Logger
}

func NewHandler(service CollaborativeService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/collaborative/exams/{examId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	examID, err := handlers.PathInt64(r, "examId")
	if err != nil {
		h.logger.Warn("GET /collaborative/exams/{id} - Invalid exam ID: %v", err)
		handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidExamID)
		return
	}

	result, err := h.service.DownloadExam(r.Context(), examID)
	if err != nil {
		switch {
		case errors.Is(err, collaborative.ErrExamNotFound):
			h.logger.Warn("GET /collaborative/exams/%d - Exam not found", examID)
			handlers.RespondNotFound(w, handlers.ReasonNotFound, msgExamNotFound)

		case errors.Is(err, collaborative.ErrPeerUnavailable), errors.Is(err, collaborative.ErrUnexpectedStatus):
			h.logger.Error("GET /collaborative/exams/%d - Peer failed: %v", examID, err)
			handlers.RespondBadGateway(w, msgPeerUnavailable)

		default:
			h.logger.Error("GET /collaborative/exams/%d - Failed to download exam: %v", examID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /collaborative/exams/%d - Downloaded revision %s", examID, result.Exam.Revision)
	handlers.RespondJSON(w, http.StatusOK, FromServiceResponse(result))
}
