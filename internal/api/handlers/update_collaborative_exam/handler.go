package update_collaborative_exam

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ExamBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/collaborative"
)

const (
	msgInvalidExamID      = "некорректный ID экзамена"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgExamNotFound       = "совместный экзамен не найден"
	msgRevisionConflict   = "экзамен изменен на удаленной площадке, скачайте актуальную версию"
	msgPeerUnavailable    = "удаленный сервис экзаменов недоступен"
)

const reasonRevisionConflict = "revision_conflict"

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

// Handle PUT /api/v1/collaborative/exams/{examId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	examID, err := handlers.PathInt64(r, "examId")
	if err != nil {
		h.logger.Warn("PUT /collaborative/exams/{id} - Invalid exam ID: %v", err)
		handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidExamID)
		return
	}

	var req UpdateExamRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /collaborative/exams/%d - Invalid request body: %v", examID, err)
		handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UploadExam(r.Context(), examID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, collaborative.ErrInvalidInput):
			handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidRequestBody)

		case errors.Is(err, collaborative.ErrExamNotFound):
			handlers.RespondNotFound(w, handlers.ReasonNotFound, msgExamNotFound)

		case errors.Is(err, collaborative.ErrRevisionConflict):
			h.logger.Warn("PUT /collaborative/exams/%d - Revision conflict", examID)
			handlers.RespondConflict(w, reasonRevisionConflict, msgRevisionConflict)

		case errors.Is(err, collaborative.ErrPeerUnavailable), errors.Is(err, collaborative.ErrUnexpectedStatus):
			h.logger.Error("PUT /collaborative/exams/%d - Peer failed: %v", examID, err)
			handlers.RespondBadGateway(w, msgPeerUnavailable)

		default:
			h.logger.Error("PUT /collaborative/exams/%d - Failed to upload exam: %v", examID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /collaborative/exams/%d - Uploaded, revision %s", examID, result.Revision)
	handlers.RespondJSON(w, http.StatusOK, FromServiceResponse(result))
}
