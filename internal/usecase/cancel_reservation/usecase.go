package cancel_reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	enrolmentRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/enrolment"
	reservationRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ExamBookingService/pkg/ptr"
)

// UseCase use case отмены бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	enrolmentRepo   EnrolmentRepository
	userRepo        UserRepository
	exams           ExamReader
	canceller       ExternalCanceller
	notifier        Notifier
	metrics         Metrics
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case. canceller и metrics могут быть nil.
func NewUseCase(
	reservationRepo ReservationRepository,
	enrolmentRepo EnrolmentRepository,
	userRepo UserRepository,
	exams ExamReader,
	canceller ExternalCanceller,
	notifier Notifier,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		enrolmentRepo:   enrolmentRepo,
		userRepo:        userRepo,
		exams:           exams,
		canceller:       canceller,
		notifier:        notifier,
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

// Execute отменяет бронирование до его начала. Внешнее бронирование отменяется у пира
// под блокировкой владельца, до локальных изменений; при ошибке пира локальное состояние не меняется.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelReservation: user=%d, reservation=%d", req.UserID, req.ReservationID)

	// 1. Валидация входных данных
	if req.UserID <= 0 || req.ReservationID <= 0 {
		return nil, fmt.Errorf("%w: ids must be positive", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	// 2. Получаем бронирование и проверяем права
	res, err := uc.getReservation(ctx, req.ReservationID)
	if err != nil {
		return nil, err
	}
	if err := uc.checkCancellable(res, req); err != nil {
		return nil, err
	}
	if !now.Before(res.StartAt) {
		uc.logger.Warn("CancelReservation: reservation id=%d started at %s", res.ID, res.StartAt)
		return nil, ErrCannotCancel
	}

	var (
		owner     *domain.User
		enrolment *domain.ExamEnrolment
		peerRef   string
	)

	// 3. Транзакция под блокировкой владельца бронирования
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 3.1. Блокируем владельца
		u, err := uc.userRepo.LockByID(txCtx, res.UserID)
		if err != nil {
			uc.logger.Error("CancelReservation: failed to lock user id=%d: %v", res.UserID, err)
			return fmt.Errorf("%w: failed to lock user: %v", ErrInternal, err)
		}
		owner = u

		// 3.2. Перечитываем бронирование под блокировкой
		locked, err := uc.getReservation(txCtx, req.ReservationID)
		if err != nil {
			return err
		}
		if !now.Before(locked.StartAt) {
			return ErrCannotCancel
		}

		// 3.3. Внешнее бронирование отменяем у пира до локальных изменений
		if locked.External != nil {
			if uc.canceller == nil {
				return fmt.Errorf("%w: collaboration is disabled", ErrPeerCancelFailed)
			}
			if err := uc.canceller.CancelExternalReservation(txCtx, locked.External.ExternalRef); err != nil {
				uc.logger.Error("CancelReservation: peer failed to cancel ref=%s: %v", locked.External.ExternalRef, err)
				return fmt.Errorf("%w: %v", ErrPeerCancelFailed, err)
			}
			peerRef = locked.External.ExternalRef
		}

		// 3.4. Отвязываем от записи с флагом отмены
		enrolment, err = uc.enrolmentRepo.GetByReservationID(txCtx, locked.ID)
		switch {
		case err == nil:
			if err := uc.enrolmentRepo.DetachReservation(txCtx, enrolment.ID, true); err != nil {
				uc.logger.Error("CancelReservation: failed to detach reservation id=%d: %v", locked.ID, err)
				return fmt.Errorf("%w: failed to detach reservation: %v", ErrInternal, err)
			}
		case errors.Is(err, enrolmentRepo.ErrEnrolmentNotFound):
			enrolment = nil
		default:
			uc.logger.Error("CancelReservation: failed to get enrolment of reservation id=%d: %v", locked.ID, err)
			return fmt.Errorf("%w: failed to get enrolment: %v", ErrInternal, err)
		}

		// 3.5. Удаляем бронирование и внешнюю побочную запись
		if err := uc.reservationRepo.Delete(txCtx, locked.ID); err != nil {
			uc.logger.Error("CancelReservation: failed to delete reservation id=%d: %v", locked.ID, err)
			return fmt.Errorf("%w: failed to delete reservation: %v", ErrInternal, err)
		}
		if locked.External != nil {
			if err := uc.reservationRepo.DeleteExternal(txCtx, locked.External.ID); err != nil {
				uc.logger.Error("CancelReservation: failed to delete external reservation id=%d: %v", locked.External.ID, err)
				return fmt.Errorf("%w: failed to delete external reservation: %v", ErrInternal, err)
			}
		}
		return nil
	})
	if err != nil {
		if peerRef != "" {
			uc.logger.Error("CancelReservation: reservation id=%d cancelled on peer (ref=%s) but local cancel failed: %v",
				res.ID, peerRef, err)
			if uc.metrics != nil {
				uc.metrics.ObservePeerDivergence("cancel_reservation")
			}
		}
		return nil, err
	}

	// 4. Уведомление после фиксации
	var exam *domain.Exam
	resp := &Response{ReservationID: res.ID}
	if enrolment != nil {
		resp.EnrolmentID = ptr.Ptr(enrolment.ID)
		exam = uc.localExam(ctx, enrolment.ExamRef())
	}
	uc.notifier.NotifyReservationCancelled(owner, res, exam)

	uc.logger.Info("CancelReservation: reservation id=%d cancelled", res.ID)
	return resp, nil
}

func (uc *UseCase) getReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	res, err := uc.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			uc.logger.Warn("CancelReservation: reservation id=%d not found", id)
			return nil, ErrReservationNotFound
		}
		uc.logger.Error("CancelReservation: failed to get reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get reservation: %v", ErrInternal, err)
	}
	return res, nil
}

func (uc *UseCase) checkCancellable(res *domain.Reservation, req *Request) error {
	if res.UserID != req.UserID && !req.IsAdmin {
		uc.logger.Warn("CancelReservation: user=%d does not own reservation id=%d", req.UserID, res.ID)
		return ErrAccessDenied
	}
	return nil
}

// localExam читает локальный экзамен для уведомления. Совместный экзамен у пира не запрашивается.
func (uc *UseCase) localExam(ctx context.Context, ref domain.ExamRef) *domain.Exam {
	if ref.Collaborative || ref.ID == 0 || uc.exams == nil {
		return nil
	}
	exam, err := uc.exams.Exam(ctx, ref)
	if err != nil {
		uc.logger.Warn("CancelReservation: failed to read exam id=%d for notification: %v", ref.ID, err)
		return nil
	}
	return exam
}
