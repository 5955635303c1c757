package create_reservation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/machines"
	"github.com/m04kA/SMC-ExamBookingService/pkg/logger"
)

// sharedLedger общее хранилище машин и бронирований для параллельных запросов.
// Create повторяет exclusion constraint: пересечение на одной машине отклоняется.
type sharedLedger struct {
	mu       sync.Mutex
	room     *domain.ExamRoom
	machines []*domain.ExamMachine
	nextID   int64
}

func (l *sharedLedger) reservation(id int64) *domain.Reservation {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.machines {
		for _, r := range m.Reservations {
			if r.ID == id {
				return r
			}
		}
	}
	return nil
}

func (l *sharedLedger) reservationCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, m := range l.machines {
		total += len(m.Reservations)
	}
	return total
}

func (l *sharedLedger) GetByID(_ context.Context, _ int64) (*domain.ExamRoom, error) {
	return l.room, nil
}

func (l *sharedLedger) GetMachines(_ context.Context, _ int64, _ domain.TimeWindow) ([]*domain.ExamMachine, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	snapshot := make([]*domain.ExamMachine, 0, len(l.machines))
	for _, m := range l.machines {
		cp := *m
		cp.Reservations = append([]*domain.Reservation(nil), m.Reservations...)
		snapshot = append(snapshot, &cp)
	}
	return snapshot, nil
}

func (l *sharedLedger) Create(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.machines {
		if res.MachineID == nil || m.ID != *res.MachineID {
			continue
		}
		if m.IsReservedDuring(res.Window()) {
			return nil, reservationRepo.ErrMachineOverlap
		}
		l.nextID++
		res.ID = l.nextID
		m.Reservations = append(m.Reservations, res)
		return res, nil
	}
	return nil, errors.New("machine not found")
}

func (l *sharedLedger) Delete(_ context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.machines {
		kept := m.Reservations[:0]
		for _, r := range m.Reservations {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		m.Reservations = kept
	}
	return nil
}

func (l *sharedLedger) DeleteExternal(context.Context, int64) error { return nil }

// userEnrolments у каждого пользователя одна запись без бронирования
type userEnrolments struct{}

func (userEnrolments) GetByUserAndExam(_ context.Context, userID int64, _ domain.ExamRef) ([]*domain.ExamEnrolment, error) {
	return []*domain.ExamEnrolment{{ID: 1000 + userID, UserID: &userID}}, nil
}

func (userEnrolments) AttachReservation(context.Context, int64, int64) error { return nil }
func (userEnrolments) DetachReservation(context.Context, int64, bool) error  { return nil }

type lockingUsers struct{}

func (lockingUsers) LockByID(_ context.Context, id int64) (*domain.User, error) {
	return &domain.User{ID: id}, nil
}

// lockHolder блокировки строк, взятые внутри транзакции
type lockHolder struct {
	unlocks []func()
}

type lockHolderKey struct{}

// lockingTx держит блокировки строк пользователей до завершения транзакции, как SELECT ... FOR UPDATE
type lockingTx struct{}

func (lockingTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	h := &lockHolder{}
	defer func() {
		for i := len(h.unlocks) - 1; i >= 0; i-- {
			h.unlocks[i]()
		}
	}()
	return fn(context.WithValue(ctx, lockHolderKey{}, h))
}

// rowLockingUsers блокирует строку пользователя в транзакции из контекста
type rowLockingUsers struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (u *rowLockingUsers) LockByID(ctx context.Context, id int64) (*domain.User, error) {
	u.mu.Lock()
	row, ok := u.locks[id]
	if !ok {
		row = &sync.Mutex{}
		u.locks[id] = row
	}
	u.mu.Unlock()

	h, ok := ctx.Value(lockHolderKey{}).(*lockHolder)
	if !ok {
		return nil, errors.New("LockByID outside of transaction")
	}
	row.Lock()
	h.unlocks = append(h.unlocks, row.Unlock)
	return &domain.User{ID: id}, nil
}

// storedEnrolments записи пользователей с привязкой бронирований из ledger
type storedEnrolments struct {
	mu         sync.Mutex
	ledger     *sharedLedger
	enrolments map[int64]*domain.ExamEnrolment
}

func (s *storedEnrolments) GetByUserAndExam(_ context.Context, userID int64, _ domain.ExamRef) ([]*domain.ExamEnrolment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*domain.ExamEnrolment, 0)
	for _, e := range s.enrolments {
		if e.UserID != nil && *e.UserID == userID {
			cp := *e
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (s *storedEnrolments) AttachReservation(_ context.Context, enrolmentID, reservationID int64) error {
	res := s.ledger.reservation(reservationID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrolments[enrolmentID].Reservation = res
	return nil
}

func (s *storedEnrolments) DetachReservation(_ context.Context, enrolmentID int64, _ bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrolments[enrolmentID].Reservation = nil
	return nil
}

func (s *storedEnrolments) get(id int64) *domain.ExamEnrolment {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.enrolments[id]
	return &cp
}

type silentNotifier struct{}

func (silentNotifier) NotifyReservation(*domain.User, *domain.Reservation, *domain.Exam, bool) {}

type countingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (m *countingMetrics) ObserveReservation(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func TestExecute_NoDoubleBookingUnderConcurrency(t *testing.T) {
	base := newFixture()
	ledger := &sharedLedger{
		room: base.rooms.room,
		machines: []*domain.ExamMachine{
			{ID: 1, SoftwareIDs: []int64{5}},
			{ID: 2, SoftwareIDs: []int64{5}},
		},
	}
	metrics := &countingMetrics{outcomes: map[string]int{}}

	// источник всегда выбирает первую свободную машину, чтобы запросы сталкивались
	uc := NewUseCase(
		base.exams,
		ledger,
		lockingUsers{},
		userEnrolments{},
		ledger,
		machines.NewSelectorWithSource(func(int) int { return 0 }),
		silentNotifier{},
		nil,
		metrics,
		inlineTx{},
		logger.Discard(),
	).WithTimeProvider(fixedTime{t: now})

	const students = 16
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []error
	)
	for i := 1; i <= students; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			req := validRequest()
			req.UserID = userID
			if _, err := uc.Execute(context.Background(), req); err != nil {
				mu.Lock()
				failed = append(failed, err)
				mu.Unlock()
			}
		}(int64(i))
	}
	wg.Wait()

	for _, err := range failed {
		assert.True(t, errors.Is(err, ErrNoMachinesAvailable) || errors.Is(err, ErrSlotTaken), "unexpected error: %v", err)
	}

	total := 0
	for _, m := range ledger.machines {
		require.LessOrEqual(t, len(m.Reservations), 1, "machine %d double booked", m.ID)
		total += len(m.Reservations)
	}
	assert.Equal(t, 2, total)
	assert.Len(t, failed, students-2)
	assert.Equal(t, 2, metrics.outcomes[domain.OutcomeCreated])
	assert.Equal(t, students-2, metrics.outcomes[domain.OutcomeConflict])
}

func TestExecute_SameUserConcurrentRequestsKeepOneReservation(t *testing.T) {
	base := newFixture()
	ledger := &sharedLedger{
		room: base.rooms.room,
		machines: []*domain.ExamMachine{
			{ID: 1, SoftwareIDs: []int64{5}},
			{ID: 2, SoftwareIDs: []int64{5}},
			{ID: 3, SoftwareIDs: []int64{5}},
		},
	}
	userID := int64(7)
	enrolments := &storedEnrolments{
		ledger:     ledger,
		enrolments: map[int64]*domain.ExamEnrolment{30: {ID: 30, UserID: &userID}},
	}
	metrics := &countingMetrics{outcomes: map[string]int{}}

	uc := NewUseCase(
		base.exams,
		ledger,
		&rowLockingUsers{locks: map[int64]*sync.Mutex{}},
		enrolments,
		ledger,
		machines.NewSelectorWithSource(func(int) int { return 0 }),
		silentNotifier{},
		nil,
		metrics,
		lockingTx{},
		logger.Discard(),
	).WithTimeProvider(fixedTime{t: now})

	const clicks = 12
	errs := make([]error, clicks)
	var wg sync.WaitGroup
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := validRequest()
			req.UserID = userID
			_, errs[i] = uc.Execute(context.Background(), req)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	final := enrolments.get(30)
	require.NotNil(t, final.Reservation, "enrolment keeps a reservation")
	assert.True(t, final.Reservation.IsInFuture(now))
	assert.Equal(t, 1, ledger.reservationCount(), "replaced reservations are removed")
	assert.Same(t, ledger.reservation(final.Reservation.ID), final.Reservation)

	assert.Equal(t, 1, metrics.outcomes[domain.OutcomeCreated])
	assert.Equal(t, clicks-1, metrics.outcomes[domain.OutcomeReplaced])
}
