package create_reservation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-ExamBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-ExamBookingService/internal/api/middleware"
	createReservation "github.com/m04kA/SMC-ExamBookingService/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgInvalidTimeRange    = "некорректный интервал бронирования"
	msgStartInPast         = "начало бронирования в прошлом"
	msgExamNotFound        = "экзамен не найден"
	msgRoomNotFound        = "аудитория не найдена"
	msgUserNotFound        = "пользователь не найден"
	msgNotBookable         = "для этого экзамена не бронируются машины"
	msgExamNotEnrollable   = "экзамен закрыт для бронирования"
	msgOutsideExamPeriod   = "интервал выходит за период проведения экзамена"
	msgRoomClosed          = "аудитория закрыта в выбранное время"
	msgEnrolmentNotFound   = "нет записи на экзамен для бронирования"
	msgReservationInEffect = "текущее бронирование уже идет"
	msgNoMachines          = "нет свободных машин на выбранное время"
	msgSlotTaken           = "машина была занята параллельным запросом, попробуйте еще раз"
	msgExamSource          = "источник экзамена недоступен"
)

// Стабильные коды причин ошибок
const (
	reasonInvalidTimeRange    = "invalid_time_range"
	reasonStartInPast         = "start_in_past"
	reasonNotBookable         = "exam_not_bookable"
	reasonExamNotEnrollable   = "exam_not_enrollable"
	reasonOutsideExamPeriod   = "outside_exam_period"
	reasonRoomClosed          = "room_closed"
	reasonEnrolmentNotFound   = "enrolment_not_found"
	reasonReservationInEffect = "reservation_in_effect"
	reasonNoMachines          = "no_machines_available"
	reasonSlotTaken           = "slot_taken"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUserNotFound)
		return
	}

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, createReservation.ErrInvalidInput):
			h.logger.Warn("POST /reservations - Invalid input: user_id=%d: %v", userID, err)
			handlers.RespondBadRequest(w, handlers.ReasonInvalidRequest, msgInvalidRequestBody)

		case errors.Is(err, createReservation.ErrInvalidTimeRange):
			h.logger.Warn("POST /reservations - Invalid time range: user_id=%d: %v", userID, err)
			handlers.RespondBadRequest(w, reasonInvalidTimeRange, msgInvalidTimeRange)

		case errors.Is(err, createReservation.ErrStartInPast):
			h.logger.Warn("POST /reservations - Start in past: user_id=%d", userID)
			handlers.RespondBadRequest(w, reasonStartInPast, msgStartInPast)

		case errors.Is(err, createReservation.ErrExamNotFound):
			h.logger.Warn("POST /reservations - Exam not found: exam_id=%d", req.ExamID)
			handlers.RespondNotFound(w, handlers.ReasonNotFound, msgExamNotFound)

		case errors.Is(err, createReservation.ErrRoomNotFound):
			h.logger.Warn("POST /reservations - Room not found: room_id=%d", req.RoomID)
			handlers.RespondNotFound(w, handlers.ReasonNotFound, msgRoomNotFound)

		case errors.Is(err, createReservation.ErrUserNotFound):
			h.logger.Warn("POST /reservations - User not found: user_id=%d", userID)
			handlers.RespondNotFound(w, handlers.ReasonNotFound, msgUserNotFound)

		case errors.Is(err, createReservation.ErrNotBookable):
			handlers.RespondForbidden(w, reasonNotBookable, msgNotBookable)

		case errors.Is(err, createReservation.ErrExamNotEnrollable):
			handlers.RespondForbidden(w, reasonExamNotEnrollable, msgExamNotEnrollable)

		case errors.Is(err, createReservation.ErrOutsideExamPeriod):
			handlers.RespondForbidden(w, reasonOutsideExamPeriod, msgOutsideExamPeriod)

		case errors.Is(err, createReservation.ErrRoomClosed):
			handlers.RespondForbidden(w, reasonRoomClosed, msgRoomClosed)

		case errors.Is(err, createReservation.ErrEnrolmentNotFound):
			handlers.RespondForbidden(w, reasonEnrolmentNotFound, msgEnrolmentNotFound)

		case errors.Is(err, createReservation.ErrReservationInEffect):
			handlers.RespondForbidden(w, reasonReservationInEffect, msgReservationInEffect)

		case errors.Is(err, createReservation.ErrNoMachinesAvailable):
			h.logger.Warn("POST /reservations - No machines: user_id=%d, room_id=%d", userID, req.RoomID)
			handlers.RespondConflict(w, reasonNoMachines, msgNoMachines)

		case errors.Is(err, createReservation.ErrSlotTaken):
			h.logger.Warn("POST /reservations - Slot taken concurrently: user_id=%d, room_id=%d", userID, req.RoomID)
			handlers.RespondConflict(w, reasonSlotTaken, msgSlotTaken)

		case errors.Is(err, createReservation.ErrExamSourceUnavailable):
			h.logger.Error("POST /reservations - Exam source unavailable: %v", err)
			handlers.RespondBadGateway(w, msgExamSource)

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations - Reservation created: reservation_id=%d, user_id=%d, machine_id=%d",
		result.ID, userID, result.MachineID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
