package noshow

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
)

// Виды экзаменов для метрик
const (
	kindLocal         = "local"
	kindCollaborative = "collaborative"
)

// Sweeper отмечает неявки: бронирование закончилось, а экзамен так и не был начат
type Sweeper struct {
	enrolmentRepo   EnrolmentRepository
	reservationRepo ReservationRepository
	examRepo        ExamRepository
	userRepo        UserRepository
	notifier        Notifier
	metrics         Metrics
	batchSize       int
	timeProvider    TimeProvider
	logger          Logger
}

// NewSweeper создает новый экземпляр sweeper. batchSize <= 0 заменяется значением по умолчанию.
func NewSweeper(
	enrolmentRepo EnrolmentRepository,
	reservationRepo ReservationRepository,
	examRepo ExamRepository,
	userRepo UserRepository,
	notifier Notifier,
	metrics Metrics,
	batchSize int,
	logger Logger,
) *Sweeper {
	if batchSize <= 0 {
		batchSize = domain.DefaultNoShowBatchSize
	}
	return &Sweeper{
		enrolmentRepo:   enrolmentRepo,
		reservationRepo: reservationRepo,
		examRepo:        examRepo,
		userRepo:        userRepo,
		notifier:        notifier,
		metrics:         metrics,
		batchSize:       batchSize,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Sweeper) WithTimeProvider(tp TimeProvider) *Sweeper {
	s.timeProvider = tp
	return s
}

// RunOnce обрабатывает одну пачку кандидатов. Ошибки отдельных записей логируются и пропускаются.
// Повторный запуск ничего не меняет: отметка делается условным UPDATE.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	now := s.timeProvider.Now()

	// 1. Кандидаты на неявку
	candidates, err := s.enrolmentRepo.FindNoShowCandidates(ctx, now, s.batchSize)
	if err != nil {
		s.logger.Error("NoShowSweep: failed to find candidates: %v", err)
		return 0, fmt.Errorf("find no-show candidates: %w", err)
	}
	if len(candidates) == 0 {
		return 0, nil
	}
	s.logger.Info("NoShowSweep: found %d candidates", len(candidates))

	marked := 0
	for _, e := range candidates {
		if ctx.Err() != nil {
			return marked, ctx.Err()
		}
		if e.Reservation == nil {
			continue
		}

		// 2. Отмечаем неявку
		ok, err := s.reservationRepo.MarkNoShow(ctx, e.Reservation.ID)
		if err != nil {
			s.logger.Error("NoShowSweep: failed to mark reservation id=%d: %v", e.Reservation.ID, err)
			continue
		}
		if !ok {
			continue
		}
		e.Reservation.NoShow = true
		marked++
		s.observe(e)

		// 3. Уведомляем владельцев и проверяющих приватного экзамена
		s.notifyExamStaff(ctx, e)
	}

	s.logger.Info("NoShowSweep: marked %d of %d candidates", marked, len(candidates))
	return marked, nil
}

func (s *Sweeper) notifyExamStaff(ctx context.Context, e *domain.ExamEnrolment) {
	ref := e.ExamRef()
	if ref.Collaborative || ref.ID == 0 || s.notifier == nil {
		return
	}

	exam, err := s.examRepo.GetByID(ctx, ref.ID)
	if err != nil {
		s.logger.Error("NoShowSweep: failed to get exam id=%d: %v", ref.ID, err)
		return
	}
	if !exam.IsPrivate() {
		return
	}

	recipients, err := s.userRepo.GetByIDs(ctx, uniqueIDs(exam.OwnerIDs, exam.InspectorIDs))
	if err != nil {
		s.logger.Error("NoShowSweep: failed to get recipients of exam id=%d: %v", exam.ID, err)
		return
	}
	for _, u := range recipients {
		s.notifier.NotifyNoShow(u, e)
	}
}

func (s *Sweeper) observe(e *domain.ExamEnrolment) {
	if s.metrics == nil {
		return
	}
	if e.ExamRef().Collaborative {
		s.metrics.ObserveNoShow(kindCollaborative)
		return
	}
	s.metrics.ObserveNoShow(kindLocal)
}

func uniqueIDs(lists ...[]int64) []int64 {
	seen := make(map[int64]struct{})
	result := make([]int64, 0)
	for _, list := range lists {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}
	return result
}
