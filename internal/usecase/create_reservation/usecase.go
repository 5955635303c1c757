package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/reservation"
	roomRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/room"
	userRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/user"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/availability"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/examprovider"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/machines"
	"github.com/m04kA/SMC-ExamBookingService/pkg/ptr"
)

// UseCase use case создания или замены бронирования машины
type UseCase struct {
	examProvider    ExamProvider
	roomRepo        RoomRepository
	userRepo        UserRepository
	enrolmentRepo   EnrolmentRepository
	reservationRepo ReservationRepository
	selector        MachineSelector
	notifier        Notifier
	canceller       ExternalCanceller
	metrics         Metrics
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case. canceller может быть nil,
// если совместные экзамены отключены.
func NewUseCase(
	examProvider ExamProvider,
	roomRepo RoomRepository,
	userRepo UserRepository,
	enrolmentRepo EnrolmentRepository,
	reservationRepo ReservationRepository,
	selector MachineSelector,
	notifier Notifier,
	canceller ExternalCanceller,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		examProvider:    examProvider,
		roomRepo:        roomRepo,
		userRepo:        userRepo,
		enrolmentRepo:   enrolmentRepo,
		reservationRepo: reservationRepo,
		selector:        selector,
		notifier:        notifier,
		canceller:       canceller,
		metrics:         metrics,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute создает бронирование для записи пользователя на экзамен или заменяет будущее бронирование.
// Вся работа с записями и бронированиями пользователя выполняется под блокировкой строки пользователя.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: user=%d, exam=%d (collaborative=%t), room=%d, window=[%s, %s)",
		req.UserID, req.ExamID, req.Collaborative, req.RoomID,
		req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339))

	now := uc.timeProvider.Now()

	// 1. Дешевая валидация до любых блокировок
	if err := validateRequest(req, now); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		uc.observe(domain.OutcomeRejected)
		return nil, err
	}

	window := domain.TimeWindow{Start: req.Start, End: req.End}
	ref := domain.ExamRef{ID: req.ExamID, Collaborative: req.Collaborative}

	// 2. Получаем экзамен (для совместного экзамена - у пира, вне транзакции)
	exam, err := uc.examProvider.Exam(ctx, ref)
	if err != nil {
		uc.observe(domain.OutcomeFailed)
		return nil, uc.mapExamError(err, ref)
	}

	// 3. Проверяем экзамен
	if !exam.RequiresMachine() {
		uc.logger.Warn("CreateReservation: exam id=%d has execution type %s", exam.ID, exam.ExecutionType)
		uc.observe(domain.OutcomeRejected)
		return nil, ErrNotBookable
	}
	if !exam.IsPublished() {
		uc.logger.Warn("CreateReservation: exam id=%d is in state %s", exam.ID, exam.State)
		uc.observe(domain.OutcomeRejected)
		return nil, ErrExamNotEnrollable
	}
	if !exam.ActivePeriod().Covers(window) {
		uc.logger.Warn("CreateReservation: window is outside active period of exam id=%d", exam.ID)
		uc.observe(domain.OutcomeRejected)
		return nil, ErrOutsideExamPeriod
	}

	// 4. Получаем аудиторию и проверяем рабочие часы
	room, err := uc.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		uc.observe(domain.OutcomeFailed)
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			uc.logger.Warn("CreateReservation: room id=%d not found", req.RoomID)
			return nil, ErrRoomNotFound
		}
		uc.logger.Error("CreateReservation: failed to get room id=%d: %v", req.RoomID, err)
		return nil, fmt.Errorf("%w: failed to get room: %v", ErrInternal, err)
	}
	if !availability.IsOpenDuring(room, window) {
		uc.logger.Warn("CreateReservation: room id=%d is closed during the window", room.ID)
		uc.observe(domain.OutcomeRejected)
		return nil, ErrRoomClosed
	}

	var (
		user     *domain.User
		created  *domain.Reservation
		machine  *domain.ExamMachine
		target   *domain.ExamEnrolment
		replaced *domain.Reservation
	)

	// 5. Транзакция под блокировкой пользователя
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 5.1. Блокируем пользователя
		lockedUser, err := uc.userRepo.LockByID(txCtx, req.UserID)
		if err != nil {
			if errors.Is(err, userRepo.ErrUserNotFound) {
				uc.logger.Warn("CreateReservation: user id=%d not found", req.UserID)
				return ErrUserNotFound
			}
			uc.logger.Error("CreateReservation: failed to lock user id=%d: %v", req.UserID, err)
			return fmt.Errorf("%w: failed to lock user: %v", ErrInternal, err)
		}
		user = lockedUser

		// 5.2. Повторно проверяем состояние экзамена
		state, err := uc.examProvider.State(txCtx, ref)
		if err != nil {
			return uc.mapExamError(err, ref)
		}
		if state != domain.ExamStatePublished {
			uc.logger.Warn("CreateReservation: exam id=%d moved to state %s", ref.ID, state)
			return ErrExamNotEnrollable
		}

		// 5.3. Ищем запись, к которой привяжем бронирование
		enrolments, err := uc.enrolmentRepo.GetByUserAndExam(txCtx, req.UserID, ref)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to get enrolments: %v", err)
			return fmt.Errorf("%w: failed to get enrolments: %v", ErrInternal, err)
		}
		target, err = findReplaceableEnrolment(enrolments, now)
		if err != nil {
			uc.logger.Warn("CreateReservation: user=%d exam=%d: %v", req.UserID, ref.ID, err)
			return err
		}
		replaced = target.Reservation

		// 5.4. Выбираем машину по свежим данным
		roomMachines, err := uc.roomRepo.GetMachines(txCtx, req.RoomID, window)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to get machines of room id=%d: %v", req.RoomID, err)
			return fmt.Errorf("%w: failed to get machines: %v", ErrInternal, err)
		}
		if replaced != nil {
			withoutReservation(roomMachines, replaced.ID)
		}

		var ok bool
		machine, ok = uc.selector.Select(roomMachines, machines.Criteria{
			Exam:             exam,
			Window:           window,
			AccessibilityIDs: req.AccessibilityIDs,
		})
		if !ok {
			uc.logger.Warn("CreateReservation: no machines available in room id=%d", req.RoomID)
			return ErrNoMachinesAvailable
		}

		// 5.5. Отвязываем и удаляем старое бронирование
		if replaced != nil {
			if err := uc.removeReservation(txCtx, target.ID, replaced); err != nil {
				return err
			}
		}

		// 5.6. Создаем новое бронирование и привязываем к записи
		created, err = uc.reservationRepo.Create(txCtx, &domain.Reservation{
			UserID:             req.UserID,
			MachineID:          &machine.ID,
			StartAt:            req.Start,
			EndAt:              req.End,
			OptionalSectionIDs: req.SectionIDs,
		})
		if err != nil {
			if errors.Is(err, reservationRepo.ErrMachineOverlap) {
				uc.logger.Warn("CreateReservation: machine id=%d was reserved concurrently", machine.ID)
				return ErrSlotTaken
			}
			uc.logger.Error("CreateReservation: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %v", ErrInternal, err)
		}

		if err := uc.enrolmentRepo.AttachReservation(txCtx, target.ID, created.ID); err != nil {
			uc.logger.Error("CreateReservation: failed to attach reservation id=%d to enrolment id=%d: %v",
				created.ID, target.ID, err)
			return fmt.Errorf("%w: failed to attach reservation: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		uc.observe(outcomeOf(err))
		return nil, err
	}

	// 6. После фиксации: уведомление и отмена внешнего бронирования у пира
	isChange := replaced != nil
	if isChange {
		uc.observe(domain.OutcomeReplaced)
		uc.cancelExternal(ctx, replaced)
	} else {
		uc.observe(domain.OutcomeCreated)
	}
	uc.notifier.NotifyReservation(user, created, exam, isChange)

	uc.logger.Info("CreateReservation: created reservation id=%d on machine id=%d for enrolment id=%d (replaced=%t)",
		created.ID, machine.ID, target.ID, isChange)

	resp := &Response{
		ID:                 created.ID,
		EnrolmentID:        target.ID,
		UserID:             created.UserID,
		ExamID:             ref.ID,
		Collaborative:      ref.Collaborative,
		RoomID:             room.ID,
		MachineID:          machine.ID,
		MachineName:        machine.Name,
		Start:              created.StartAt,
		End:                created.EndAt,
		OptionalSectionIDs: created.OptionalSectionIDs,
		CreatedAt:          created.CreatedAt,
	}
	if replaced != nil {
		resp.ReplacedReservationID = ptr.Ptr(replaced.ID)
	}
	return resp, nil
}

// removeReservation отвязывает бронирование от записи, затем удаляет его и внешнюю побочную запись
func (uc *UseCase) removeReservation(ctx context.Context, enrolmentID int64, res *domain.Reservation) error {
	if err := uc.enrolmentRepo.DetachReservation(ctx, enrolmentID, false); err != nil {
		uc.logger.Error("CreateReservation: failed to detach reservation id=%d: %v", res.ID, err)
		return fmt.Errorf("%w: failed to detach reservation: %v", ErrInternal, err)
	}
	if err := uc.reservationRepo.Delete(ctx, res.ID); err != nil {
		uc.logger.Error("CreateReservation: failed to delete reservation id=%d: %v", res.ID, err)
		return fmt.Errorf("%w: failed to delete reservation: %v", ErrInternal, err)
	}
	if res.External != nil {
		if err := uc.reservationRepo.DeleteExternal(ctx, res.External.ID); err != nil {
			uc.logger.Error("CreateReservation: failed to delete external reservation id=%d: %v", res.External.ID, err)
			return fmt.Errorf("%w: failed to delete external reservation: %v", ErrInternal, err)
		}
	}
	return nil
}

// cancelExternal отменяет замененное внешнее бронирование у пира. Ошибка только логируется.
func (uc *UseCase) cancelExternal(ctx context.Context, res *domain.Reservation) {
	if res == nil || res.External == nil || uc.canceller == nil {
		return
	}
	if err := uc.canceller.CancelExternalReservation(ctx, res.External.ExternalRef); err != nil {
		uc.logger.Error("CreateReservation: failed to cancel external reservation ref=%s on peer: %v",
			res.External.ExternalRef, err)
	}
}

func (uc *UseCase) mapExamError(err error, ref domain.ExamRef) error {
	switch {
	case errors.Is(err, examprovider.ErrExamNotFound), errors.Is(err, examprovider.ErrCollaborationDisabled):
		uc.logger.Warn("CreateReservation: exam id=%d (collaborative=%t) not found", ref.ID, ref.Collaborative)
		return ErrExamNotFound
	case errors.Is(err, examprovider.ErrUnavailable):
		uc.logger.Error("CreateReservation: exam source unavailable for exam id=%d: %v", ref.ID, err)
		return fmt.Errorf("%w: %v", ErrExamSourceUnavailable, err)
	default:
		uc.logger.Error("CreateReservation: failed to get exam id=%d: %v", ref.ID, err)
		return fmt.Errorf("%w: failed to get exam: %v", ErrInternal, err)
	}
}

func (uc *UseCase) observe(outcome string) {
	if uc.metrics != nil {
		uc.metrics.ObserveReservation(outcome)
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrNoMachinesAvailable), errors.Is(err, ErrSlotTaken):
		return domain.OutcomeConflict
	case errors.Is(err, ErrInternal), errors.Is(err, ErrExamSourceUnavailable):
		return domain.OutcomeFailed
	default:
		return domain.OutcomeRejected
	}
}
