package enroll

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ExamBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ExamBookingService/internal/api/middleware"
	enrollUC "github.com/m04kA/SMC-ExamBookingService/internal/usecase/enroll"
)

const (
	msgInvalidExamID          = "некорректный ID экзамена"
	msgUnauthorized           = "пользователь не аутентифицирован"
	msgExamNotFound           = "экзамен не найден"
	msgUserNotFound           = "пользователь не найден"
	msgExamNotEnrollable      = "на экзамен нельзя записаться"
	msgOrganisationNotAllowed = "ваша организация не допущена к экзамену"
	msgTrialCountExceeded     = "исчерпан лимит попыток"
	msgAlreadyEnrolled        = "вы уже записаны на экзамен"
	msgReservationInEffect    = "бронирование по записи уже идет"
	msgExamSource             = "источник экзамена недоступен"
)

// Стабильные коды причин ошибок
const (
	reasonExamNotEnrollable      = "exam_not_enrollable"
	reasonOrganisationNotAllowed = "organisation_not_allowed"
	reasonTrialCountExceeded     = "trial_count_exceeded"
	reasonAlreadyEnrolled        = "already_enrolled"
	reasonReservationInEffect    = "reservation_in_effect"
)

// Handler запись студента на локальный или совместный экзамен
type Handler struct {
	useCase       EnrollUseCase
	collaborative bool
	logger        Logger
}

// NewHandler collaborative=true для маршрута совместных экзаменов
func NewHandler(useCase EnrollUseCase, collaborative bool, logger Logger) *Handler {
	return &Handler{
		useCase:       useCase,
		collaborative: collaborative,
		logger:        logger,
	}
}

// Handle POST /api/v1/enrolments/{examId} и POST /api/v1/collaborative/enrolments/{examId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	examID, err := handlers.PathInt64(r, "examId")
	if err != nil {
		h.logger.Warn("POST /enrolments/{examId} - Invalid exam ID: %v", err)
		handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidExamID)
		return
	}

	result, err := h.useCase.Enroll(r.Context(), &enrollUC.EnrollRequest{
		Principal:     principal,
		ExamID:        examID,
		Collaborative: h.collaborative,
	})
	if err != nil {
		switch {
		case errors.Is(err, enrollUC.ErrInvalidInput):
			handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidExamID)

		case errors.Is(err, enrollUC.ErrExamNotFound):
			h.logger.Warn("POST /enrolments/%d - Exam not found (collaborative=%t)", examID, h.collaborative)
			handlers.RespondNotFound(w, handlers.ReasonNotFound, msgExamNotFound)

		case errors.Is(err, enrollUC.ErrUserNotFound):
			handlers.RespondNotFound(w, handlers.ReasonNotFound, msgUserNotFound)

		case errors.Is(err, enrollUC.ErrExamNotEnrollable):
			handlers.RespondForbidden(w, reasonExamNotEnrollable, msgExamNotEnrollable)

		case errors.Is(err, enrollUC.ErrOrganisationNotAllowed):
			handlers.RespondForbidden(w, reasonOrganisationNotAllowed, msgOrganisationNotAllowed)

		case errors.Is(err, enrollUC.ErrTrialCountExceeded):
			handlers.RespondForbidden(w, reasonTrialCountExceeded, msgTrialCountExceeded)

		case errors.Is(err, enrollUC.ErrAlreadyEnrolled):
			handlers.RespondForbidden(w, reasonAlreadyEnrolled, msgAlreadyEnrolled)

		case errors.Is(err, enrollUC.ErrReservationInEffect):
			handlers.RespondForbidden(w, reasonReservationInEffect, msgReservationInEffect)

		case errors.Is(err, enrollUC.ErrExamSourceUnavailable):
			h.logger.Error("POST /enrolments/%d - Exam source unavailable: %v", examID, err)
			handlers.RespondBadGateway(w, msgExamSource)

		default:
			h.logger.Error("POST /enrolments/%d - Failed to enrol user_id=%d: %v", examID, principal.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /enrolments/%d - Enrolment created: enrolment_id=%d, user_id=%d",
		examID, result.ID, principal.UserID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
