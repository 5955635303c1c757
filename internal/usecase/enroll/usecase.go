package enroll

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	enrolmentRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/enrolment"
	userRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/user"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/examprovider"
)

// UseCase жизненный цикл записи на экзамен: запись, предварительная запись, удаление
type UseCase struct {
	examProvider      ExamProvider
	userRepo          UserRepository
	enrolmentRepo     EnrolmentRepository
	reservationRepo   ReservationRepository
	participationRepo ParticipationRepository
	canceller         ExternalCanceller
	metrics           Metrics
	txManager         TransactionManager
	timeProvider      TimeProvider
	logger            Logger
}

// NewUseCase создает новый экземпляр use case. canceller может быть nil.
func NewUseCase(
	examProvider ExamProvider,
	userRepo UserRepository,
	enrolmentRepo EnrolmentRepository,
	reservationRepo ReservationRepository,
	participationRepo ParticipationRepository,
	canceller ExternalCanceller,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		examProvider:      examProvider,
		userRepo:          userRepo,
		enrolmentRepo:     enrolmentRepo,
		reservationRepo:   reservationRepo,
		participationRepo: participationRepo,
		canceller:         canceller,
		metrics:           metrics,
		txManager:         txManager,
		timeProvider:      &RealTimeProvider{},
		logger:            logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Enroll записывает студента на экзамен
func (uc *UseCase) Enroll(ctx context.Context, req *EnrollRequest) (*Response, error) {
	uc.logger.Info("Enroll: user=%d, exam=%d (collaborative=%t)", req.Principal.UserID, req.ExamID, req.Collaborative)

	// 1. Валидация входных данных
	if req.Principal.UserID <= 0 || req.ExamID <= 0 {
		return nil, fmt.Errorf("%w: ids must be positive", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()
	ref := domain.ExamRef{ID: req.ExamID, Collaborative: req.Collaborative}

	// 2. Получаем экзамен
	exam, err := uc.examProvider.Exam(ctx, ref)
	if err != nil {
		uc.observe(domain.OutcomeFailed)
		return nil, uc.mapExamError("Enroll", err, ref)
	}

	// 3. Проверяем, что на экзамен можно записаться
	if err := checkEnrollable(exam, req.Principal, now); err != nil {
		uc.logger.Warn("Enroll: exam id=%d is not enrollable for user=%d: %v", exam.ID, req.Principal.UserID, err)
		uc.observe(domain.OutcomeRejected)
		return nil, err
	}

	// 4. Проверяем лимит попыток
	if err := uc.checkTrialCount(ctx, req.Principal.UserID, exam); err != nil {
		uc.observe(domain.OutcomeRejected)
		return nil, err
	}

	// 5. Создаем запись под блокировкой пользователя
	created, superseded, err := uc.enrolUser(ctx, "Enroll", req.Principal.UserID, exam, true)
	if err != nil {
		uc.observe(outcomeOf(err))
		return nil, err
	}

	uc.afterCommit(ctx, "Enroll", superseded)
	uc.logger.Info("Enroll: created enrolment id=%d for user=%d, superseded=%d",
		created.ID, req.Principal.UserID, len(superseded))
	return toResponse(created, enrolmentIDs(superseded)), nil
}

// PreEnroll записывает студента преподавателем по ID пользователя или по email.
// Период активности и лимит попыток не проверяются.
func (uc *UseCase) PreEnroll(ctx context.Context, req *PreEnrollRequest) (*Response, error) {
	uc.logger.Info("PreEnroll: by=%d, exam=%d (collaborative=%t)", req.Principal.UserID, req.ExamID, req.Collaborative)

	// 1. Валидация входных данных
	if req.ExamID <= 0 {
		return nil, fmt.Errorf("%w: examId must be positive", ErrInvalidInput)
	}
	if err := validatePreEnrollTarget(req); err != nil {
		return nil, err
	}

	ref := domain.ExamRef{ID: req.ExamID, Collaborative: req.Collaborative}

	// 2. Получаем экзамен и проверяем права
	exam, err := uc.examProvider.Exam(ctx, ref)
	if err != nil {
		uc.observe(domain.OutcomeFailed)
		return nil, uc.mapExamError("PreEnroll", err, ref)
	}
	if err := checkPreEnrollable(exam, req.Principal); err != nil {
		uc.logger.Warn("PreEnroll: user=%d cannot pre-enrol to exam id=%d: %v", req.Principal.UserID, exam.ID, err)
		uc.observe(domain.OutcomeRejected)
		return nil, err
	}

	// 3a. По ID пользователя - та же дисциплина блокировок, что и у обычной записи
	if req.UserID != nil {
		created, superseded, err := uc.enrolUser(ctx, "PreEnroll", *req.UserID, exam, false)
		if err != nil {
			uc.observe(outcomeOf(err))
			return nil, err
		}
		uc.afterCommit(ctx, "PreEnroll", superseded)
		uc.observe(domain.OutcomePreEnrolled)
		uc.logger.Info("PreEnroll: created enrolment id=%d for user=%d", created.ID, *req.UserID)
		return toResponse(created, enrolmentIDs(superseded)), nil
	}

	// 3b. По email - пользователя еще нет, дубль проверяется по email,
	// гонку двух вставок отсекает уникальный индекс
	email := strings.ToLower(strings.TrimSpace(*req.Email))
	var created *domain.ExamEnrolment
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		existing, err := uc.enrolmentRepo.GetByEmailAndExam(txCtx, email, ref)
		if err != nil {
			uc.logger.Error("PreEnroll: failed to get enrolments by email: %v", err)
			return fmt.Errorf("%w: failed to get enrolments: %v", ErrInternal, err)
		}
		if len(existing) > 0 {
			uc.logger.Warn("PreEnroll: %s is already pre-enrolled to exam id=%d", email, ref.ID)
			return ErrAlreadyEnrolled
		}

		created, err = uc.enrolmentRepo.Create(txCtx, domain.NewPreEnrolment(email, ref, uc.timeProvider.Now()))
		if errors.Is(err, enrolmentRepo.ErrDuplicateEnrolment) {
			uc.logger.Warn("PreEnroll: %s was pre-enrolled to exam id=%d concurrently", email, ref.ID)
			return ErrAlreadyEnrolled
		}
		if err != nil {
			uc.logger.Error("PreEnroll: failed to create enrolment: %v", err)
			return fmt.Errorf("%w: failed to create enrolment: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		uc.observe(outcomeOf(err))
		return nil, err
	}

	uc.observe(domain.OutcomePreEnrolled)
	uc.logger.Info("PreEnroll: created enrolment id=%d for email=%s", created.ID, email)
	return toResponse(created, nil), nil
}

// RemoveEnrolment удаляет запись вместе с еще не начавшимся бронированием
func (uc *UseCase) RemoveEnrolment(ctx context.Context, req *RemoveRequest) error {
	uc.logger.Info("RemoveEnrolment: user=%d, enrolment=%d", req.Principal.UserID, req.EnrolmentID)

	// 1. Валидация входных данных
	if req.EnrolmentID <= 0 || req.Principal.UserID <= 0 {
		return fmt.Errorf("%w: ids must be positive", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	// 2. Получаем запись и проверяем права
	e, err := uc.getEnrolment(ctx, req.EnrolmentID)
	if err != nil {
		return err
	}
	if err := checkRemovable(e, req.Principal, now); err != nil {
		uc.logger.Warn("RemoveEnrolment: enrolment id=%d: %v", e.ID, err)
		return err
	}

	// 3. Транзакция под блокировкой владельца записи
	var peerRef string
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if e.UserID != nil {
			if _, err := uc.lockUser(txCtx, "RemoveEnrolment", *e.UserID); err != nil {
				return err
			}
		}

		locked, err := uc.getEnrolment(txCtx, req.EnrolmentID)
		if err != nil {
			return err
		}
		if err := checkRemovable(locked, req.Principal, now); err != nil {
			return err
		}

		// Внешнее бронирование отменяем у пира после повторной проверки, до локальных изменений
		if locked.Reservation != nil && locked.Reservation.External != nil {
			ref := locked.Reservation.External.ExternalRef
			if uc.canceller == nil {
				return fmt.Errorf("%w: collaboration is disabled", ErrPeerCancelFailed)
			}
			if err := uc.canceller.CancelExternalReservation(txCtx, ref); err != nil {
				uc.logger.Error("RemoveEnrolment: peer failed to cancel ref=%s: %v", ref, err)
				return fmt.Errorf("%w: %v", ErrPeerCancelFailed, err)
			}
			peerRef = ref
		}

		return uc.deleteEnrolment(txCtx, "RemoveEnrolment", locked)
	})
	if err != nil {
		if peerRef != "" {
			uc.logger.Error("RemoveEnrolment: enrolment id=%d cancelled on peer (ref=%s) but local removal failed: %v",
				req.EnrolmentID, peerRef, err)
			if uc.metrics != nil {
				uc.metrics.ObservePeerDivergence("remove_enrolment")
			}
		}
		return err
	}

	uc.logger.Info("RemoveEnrolment: enrolment id=%d removed", req.EnrolmentID)
	return nil
}

// enrolUser создает запись пользователя под блокировкой его строки.
// recheckState повторно проверяет, что экзамен еще опубликован.
func (uc *UseCase) enrolUser(ctx context.Context, op string, userID int64, exam *domain.Exam, recheckState bool) (*domain.ExamEnrolment, []*domain.ExamEnrolment, error) {
	ref := exam.Ref()

	var (
		created    *domain.ExamEnrolment
		superseded []*domain.ExamEnrolment
	)

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Блокируем пользователя
		if _, err := uc.lockUser(txCtx, op, userID); err != nil {
			return err
		}

		// 2. Повторно проверяем состояние экзамена
		if recheckState {
			state, err := uc.examProvider.State(txCtx, ref)
			if err != nil {
				return uc.mapExamError(op, err, ref)
			}
			if state != domain.ExamStatePublished {
				uc.logger.Warn("%s: exam id=%d moved to state %s", op, ref.ID, state)
				return fmt.Errorf("%w: exam is in state %s", ErrExamNotEnrollable, state)
			}
		}

		// 3. Разбираем существующие записи
		now := uc.timeProvider.Now()
		existing, err := uc.enrolmentRepo.GetByUserAndExam(txCtx, userID, ref)
		if err != nil {
			uc.logger.Error("%s: failed to get enrolments: %v", op, err)
			return fmt.Errorf("%w: failed to get enrolments: %v", ErrInternal, err)
		}
		superseded, err = splitExisting(existing, now)
		if err != nil {
			uc.logger.Warn("%s: user=%d exam=%d: %v", op, userID, ref.ID, err)
			return err
		}

		// 4. Удаляем записи с будущими бронированиями
		for _, old := range superseded {
			if err := uc.deleteEnrolment(txCtx, op, old); err != nil {
				return err
			}
		}

		// 5. Создаем новую запись без бронирования
		created, err = uc.enrolmentRepo.Create(txCtx, domain.NewEnrolment(userID, ref, now))
		if err != nil {
			uc.logger.Error("%s: failed to create enrolment: %v", op, err)
			return fmt.Errorf("%w: failed to create enrolment: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return created, superseded, nil
}

// deleteEnrolment удаляет запись, затем ее бронирование и внешнюю побочную запись
func (uc *UseCase) deleteEnrolment(ctx context.Context, op string, e *domain.ExamEnrolment) error {
	if err := uc.enrolmentRepo.Delete(ctx, e.ID); err != nil {
		uc.logger.Error("%s: failed to delete enrolment id=%d: %v", op, e.ID, err)
		return fmt.Errorf("%w: failed to delete enrolment: %v", ErrInternal, err)
	}
	if e.Reservation == nil {
		return nil
	}
	if err := uc.reservationRepo.Delete(ctx, e.Reservation.ID); err != nil {
		uc.logger.Error("%s: failed to delete reservation id=%d: %v", op, e.Reservation.ID, err)
		return fmt.Errorf("%w: failed to delete reservation: %v", ErrInternal, err)
	}
	if e.Reservation.External != nil {
		if err := uc.reservationRepo.DeleteExternal(ctx, e.Reservation.External.ID); err != nil {
			uc.logger.Error("%s: failed to delete external reservation id=%d: %v", op, e.Reservation.External.ID, err)
			return fmt.Errorf("%w: failed to delete external reservation: %v", ErrInternal, err)
		}
	}
	return nil
}

// afterCommit отменяет у пира внешние бронирования замененных записей и пишет метрики
func (uc *UseCase) afterCommit(ctx context.Context, op string, superseded []*domain.ExamEnrolment) {
	if len(superseded) == 0 {
		uc.observe(domain.OutcomeCreated)
		return
	}
	uc.observe(domain.OutcomeSuperseded)

	for _, old := range superseded {
		if old.Reservation == nil || old.Reservation.External == nil || uc.canceller == nil {
			continue
		}
		ref := old.Reservation.External.ExternalRef
		if err := uc.canceller.CancelExternalReservation(ctx, ref); err != nil {
			uc.logger.Error("%s: failed to cancel external reservation ref=%s on peer: %v", op, ref, err)
		}
	}
}

// checkTrialCount проверяет лимит попыток: учитываются последние trialCount завершенных
// попыток без разрешения на пересдачу. Без лимита проверка всегда проходит.
func (uc *UseCase) checkTrialCount(ctx context.Context, userID int64, exam *domain.Exam) error {
	if exam.TrialCount == nil {
		return nil
	}
	limit := *exam.TrialCount

	attempts, err := uc.participationRepo.GetFinishedAttempts(ctx, userID, exam.Ref(), limit)
	if err != nil {
		uc.logger.Error("Enroll: failed to get attempts of user=%d: %v", userID, err)
		return fmt.Errorf("%w: failed to get attempts: %v", ErrInternal, err)
	}

	if countCountedAttempts(attempts) >= limit {
		uc.logger.Warn("Enroll: user=%d exceeded trial count %d for exam id=%d", userID, limit, exam.ID)
		return ErrTrialCountExceeded
	}
	return nil
}

func (uc *UseCase) lockUser(ctx context.Context, op string, userID int64) (*domain.User, error) {
	u, err := uc.userRepo.LockByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			uc.logger.Warn("%s: user id=%d not found", op, userID)
			return nil, ErrUserNotFound
		}
		uc.logger.Error("%s: failed to lock user id=%d: %v", op, userID, err)
		return nil, fmt.Errorf("%w: failed to lock user: %v", ErrInternal, err)
	}
	return u, nil
}

func (uc *UseCase) getEnrolment(ctx context.Context, id int64) (*domain.ExamEnrolment, error) {
	e, err := uc.enrolmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, enrolmentRepo.ErrEnrolmentNotFound) {
			uc.logger.Warn("RemoveEnrolment: enrolment id=%d not found", id)
			return nil, ErrEnrolmentNotFound
		}
		uc.logger.Error("RemoveEnrolment: failed to get enrolment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get enrolment: %v", ErrInternal, err)
	}
	return e, nil
}

func (uc *UseCase) mapExamError(op string, err error, ref domain.ExamRef) error {
	switch {
	case errors.Is(err, examprovider.ErrExamNotFound), errors.Is(err, examprovider.ErrCollaborationDisabled):
		uc.logger.Warn("%s: exam id=%d (collaborative=%t) not found", op, ref.ID, ref.Collaborative)
		return ErrExamNotFound
	case errors.Is(err, examprovider.ErrUnavailable):
		uc.logger.Error("%s: exam source unavailable for exam id=%d: %v", op, ref.ID, err)
		return fmt.Errorf("%w: %v", ErrExamSourceUnavailable, err)
	default:
		uc.logger.Error("%s: failed to get exam id=%d: %v", op, ref.ID, err)
		return fmt.Errorf("%w: failed to get exam: %v", ErrInternal, err)
	}
}

func (uc *UseCase) observe(outcome string) {
	if uc.metrics != nil {
		uc.metrics.ObserveEnrolment(outcome)
	}
}

// checkRemovable владелец (или администратор) может удалить запись, пока бронирование не началось
func checkRemovable(e *domain.ExamEnrolment, principal domain.Principal, now time.Time) error {
	if !principal.IsAdmin() && (e.UserID == nil || *e.UserID != principal.UserID) {
		return ErrAccessDenied
	}
	if e.Reservation != nil && !e.Reservation.IsInFuture(now) {
		return ErrCannotRemove
	}
	return nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrInternal), errors.Is(err, ErrExamSourceUnavailable):
		return domain.OutcomeFailed
	case errors.Is(err, ErrAlreadyEnrolled), errors.Is(err, ErrReservationInEffect):
		return domain.OutcomeConflict
	default:
		return domain.OutcomeRejected
	}
}

func enrolmentIDs(enrolments []*domain.ExamEnrolment) []int64 {
	ids := make([]int64, 0, len(enrolments))
	for _, e := range enrolments {
		ids = append(ids, e.ID)
	}
	return ids
}
