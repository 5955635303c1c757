package create_reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/reservation"
	roomRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/room"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/examprovider"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/machines"
	"github.com/m04kA/SMC-ExamBookingService/pkg/logger"
)

// 2026-03-02 понедельник, аудитория открыта 09:00-17:00 UTC
var now = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

func clock(hour int) time.Time {
	return time.Date(2026, time.March, 2, hour, 0, 0, 0, time.UTC)
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type fakeExams struct {
	exam     *domain.Exam
	state    domain.ExamState
	examErr  error
	stateErr error
}

func (f *fakeExams) Exam(_ context.Context, _ domain.ExamRef) (*domain.Exam, error) {
	if f.examErr != nil {
		return nil, f.examErr
	}
	return f.exam, nil
}

func (f *fakeExams) State(_ context.Context, _ domain.ExamRef) (domain.ExamState, error) {
	if f.stateErr != nil {
		return "", f.stateErr
	}
	return f.state, nil
}

type fakeRooms struct {
	room     *domain.ExamRoom
	machines []*domain.ExamMachine
}

func (f *fakeRooms) GetByID(_ context.Context, id int64) (*domain.ExamRoom, error) {
	if f.room == nil || f.room.ID != id {
		return nil, roomRepo.ErrRoomNotFound
	}
	return f.room, nil
}

func (f *fakeRooms) GetMachines(_ context.Context, _ int64, _ domain.TimeWindow) ([]*domain.ExamMachine, error) {
	return f.machines, nil
}

type fakeUsers struct {
	locked []int64
}

func (f *fakeUsers) LockByID(_ context.Context, id int64) (*domain.User, error) {
	f.locked = append(f.locked, id)
	return &domain.User{ID: id, Email: "student@example.org"}, nil
}

type fakeEnrolments struct {
	enrolments []*domain.ExamEnrolment
	attached   map[int64]int64
	detached   []int64
}

func (f *fakeEnrolments) GetByUserAndExam(_ context.Context, _ int64, _ domain.ExamRef) ([]*domain.ExamEnrolment, error) {
	return f.enrolments, nil
}

func (f *fakeEnrolments) AttachReservation(_ context.Context, enrolmentID, reservationID int64) error {
	if f.attached == nil {
		f.attached = make(map[int64]int64)
	}
	f.attached[enrolmentID] = reservationID
	return nil
}

func (f *fakeEnrolments) DetachReservation(_ context.Context, enrolmentID int64, _ bool) error {
	f.detached = append(f.detached, enrolmentID)
	return nil
}

type fakeReservations struct {
	nextID          int64
	created         []*domain.Reservation
	deleted         []int64
	deletedExternal []int64
	createErr       error
}

func (f *fakeReservations) Create(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	res.ID = 100 + f.nextID
	res.CreatedAt = now
	f.created = append(f.created, res)
	return res, nil
}

func (f *fakeReservations) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeReservations) DeleteExternal(_ context.Context, id int64) error {
	f.deletedExternal = append(f.deletedExternal, id)
	return nil
}

type fakeNotifier struct {
	calls    int
	isChange bool
}

func (f *fakeNotifier) NotifyReservation(_ *domain.User, _ *domain.Reservation, _ *domain.Exam, isChange bool) {
	f.calls++
	f.isChange = isChange
}

type fakeCanceller struct {
	refs []string
}

func (f *fakeCanceller) CancelExternalReservation(_ context.Context, ref string) error {
	f.refs = append(f.refs, ref)
	return nil
}

type fakeMetrics struct {
	outcomes []string
}

func (f *fakeMetrics) ObserveReservation(outcome string) {
	f.outcomes = append(f.outcomes, outcome)
}

type inlineTx struct{}

func (inlineTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	exams        *fakeExams
	rooms        *fakeRooms
	users        *fakeUsers
	enrolments   *fakeEnrolments
	reservations *fakeReservations
	notifier     *fakeNotifier
	canceller    *fakeCanceller
	metrics      *fakeMetrics
	uc           *UseCase
}

func newFixture() *fixture {
	f := &fixture{
		exams: &fakeExams{
			exam: &domain.Exam{
				ID:            1,
				State:         domain.ExamStatePublished,
				ExecutionType: domain.ExecutionPublic,
				ActiveStart:   now.AddDate(0, 0, -1),
				ActiveEnd:     now.AddDate(0, 0, 7),
				SoftwareIDs:   []int64{5},
			},
			state: domain.ExamStatePublished,
		},
		rooms: &fakeRooms{
			room: &domain.ExamRoom{
				ID:       10,
				Timezone: "UTC",
				WorkingHours: []domain.DefaultWorkingHours{
					{Weekday: time.Monday, Open: "09:00", Close: "17:00"},
				},
			},
			machines: []*domain.ExamMachine{{ID: 20, Name: "M-20", SoftwareIDs: []int64{5}}},
		},
		users:        &fakeUsers{},
		enrolments:   &fakeEnrolments{enrolments: []*domain.ExamEnrolment{{ID: 30}}},
		reservations: &fakeReservations{},
		notifier:     &fakeNotifier{},
		canceller:    &fakeCanceller{},
		metrics:      &fakeMetrics{},
	}
	f.uc = NewUseCase(
		f.exams,
		f.rooms,
		f.users,
		f.enrolments,
		f.reservations,
		machines.NewSelectorWithSource(func(int) int { return 0 }),
		f.notifier,
		f.canceller,
		f.metrics,
		inlineTx{},
		logger.Discard(),
	).WithTimeProvider(fixedTime{t: now})
	return f
}

func validRequest() *Request {
	return &Request{UserID: 7, RoomID: 10, ExamID: 1, Start: clock(10), End: clock(11)}
}

func TestExecute_CreatesReservation(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.Execute(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(30), resp.EnrolmentID)
	assert.Equal(t, int64(20), resp.MachineID)
	assert.Equal(t, "M-20", resp.MachineName)
	assert.Nil(t, resp.ReplacedReservationID)
	assert.Equal(t, resp.ID, f.enrolments.attached[30])
	assert.Equal(t, []int64{7}, f.users.locked)
	assert.Equal(t, 1, f.notifier.calls)
	assert.False(t, f.notifier.isChange)
	assert.Equal(t, []string{domain.OutcomeCreated}, f.metrics.outcomes)
}

func TestExecute_ReplacesFutureReservation(t *testing.T) {
	f := newFixture()
	old := &domain.Reservation{
		ID:       55,
		UserID:   7,
		StartAt:  clock(13),
		EndAt:    clock(14),
		External: &domain.ExternalReservation{ID: 66, ExternalRef: "peer-66"},
	}
	f.enrolments.enrolments = []*domain.ExamEnrolment{{ID: 30, Reservation: old}}

	resp, err := f.uc.Execute(context.Background(), validRequest())

	require.NoError(t, err)
	require.NotNil(t, resp.ReplacedReservationID)
	assert.Equal(t, int64(55), *resp.ReplacedReservationID)
	assert.Equal(t, []int64{30}, f.enrolments.detached)
	assert.Equal(t, []int64{55}, f.reservations.deleted)
	assert.Equal(t, []int64{66}, f.reservations.deletedExternal)
	assert.Equal(t, []string{"peer-66"}, f.canceller.refs)
	assert.True(t, f.notifier.isChange)
	assert.Equal(t, []string{domain.OutcomeReplaced}, f.metrics.outcomes)
}

func TestExecute_ReplacedReservationDoesNotBlockItsMachine(t *testing.T) {
	f := newFixture()
	old := &domain.Reservation{ID: 55, UserID: 7, StartAt: clock(10), EndAt: clock(11)}
	f.rooms.machines[0].Reservations = []*domain.Reservation{old}
	f.enrolments.enrolments = []*domain.ExamEnrolment{{ID: 30, Reservation: old}}

	resp, err := f.uc.Execute(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(20), resp.MachineID)
	assert.Equal(t, []int64{55}, f.reservations.deleted)
}

func TestExecute_ReservationInEffect(t *testing.T) {
	f := newFixture()
	f.uc.WithTimeProvider(fixedTime{t: clock(9)})
	current := &domain.Reservation{ID: 55, StartAt: clock(8), EndAt: clock(10)}
	f.enrolments.enrolments = []*domain.ExamEnrolment{{ID: 30, Reservation: current}}

	req := validRequest()
	req.Start, req.End = clock(12), clock(13)
	_, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrReservationInEffect)
	assert.Empty(t, f.reservations.created)
	assert.Empty(t, f.reservations.deleted)
	assert.Zero(t, f.notifier.calls)
}

func TestExecute_NoMachines(t *testing.T) {
	f := newFixture()
	f.rooms.machines[0].Reservations = []*domain.Reservation{{ID: 99, UserID: 8, StartAt: clock(10), EndAt: clock(12)}}

	_, err := f.uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrNoMachinesAvailable)
	assert.Empty(t, f.reservations.created)
	assert.Equal(t, []string{domain.OutcomeConflict}, f.metrics.outcomes)
}

func TestExecute_ConcurrentReservationMapsToSlotTaken(t *testing.T) {
	f := newFixture()
	f.reservations.createErr = reservationRepo.ErrMachineOverlap

	_, err := f.uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Zero(t, f.notifier.calls)
	assert.Equal(t, []string{domain.OutcomeConflict}, f.metrics.outcomes)
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture, req *Request)
		wantErr error
	}{
		{
			name:    "end before start",
			mutate:  func(_ *fixture, req *Request) { req.End = req.Start.Add(-time.Minute) },
			wantErr: ErrInvalidTimeRange,
		},
		{
			name:    "too short",
			mutate:  func(_ *fixture, req *Request) { req.End = req.Start.Add(time.Minute) },
			wantErr: ErrInvalidTimeRange,
		},
		{
			name: "start in the past",
			mutate: func(_ *fixture, req *Request) {
				req.Start, req.End = now.Add(-time.Hour), now.Add(time.Hour)
			},
			wantErr: ErrStartInPast,
		},
		{
			name:    "missing room",
			mutate:  func(_ *fixture, req *Request) { req.RoomID = 0 },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown room",
			mutate:  func(_ *fixture, req *Request) { req.RoomID = 11 },
			wantErr: ErrRoomNotFound,
		},
		{
			name:    "room closed",
			mutate:  func(_ *fixture, req *Request) { req.Start, req.End = clock(16), clock(18) },
			wantErr: ErrRoomClosed,
		},
		{
			name:    "exam not published",
			mutate:  func(f *fixture, _ *Request) { f.exams.exam.State = domain.ExamStateDraft },
			wantErr: ErrExamNotEnrollable,
		},
		{
			name:    "exam left published state",
			mutate:  func(f *fixture, _ *Request) { f.exams.state = domain.ExamStateInitialized },
			wantErr: ErrExamNotEnrollable,
		},
		{
			name:    "printout exam",
			mutate:  func(f *fixture, _ *Request) { f.exams.exam.ExecutionType = domain.ExecutionPrintout },
			wantErr: ErrNotBookable,
		},
		{
			name:    "outside active period",
			mutate:  func(f *fixture, _ *Request) { f.exams.exam.ActiveEnd = clock(10).Add(30 * time.Minute) },
			wantErr: ErrOutsideExamPeriod,
		},
		{
			name:    "exam not found",
			mutate:  func(f *fixture, _ *Request) { f.exams.examErr = examprovider.ErrExamNotFound },
			wantErr: ErrExamNotFound,
		},
		{
			name: "peer unavailable",
			mutate: func(f *fixture, _ *Request) {
				f.exams.examErr = errors.Join(examprovider.ErrUnavailable, errors.New("timeout"))
			},
			wantErr: ErrExamSourceUnavailable,
		},
		{
			name:    "no enrolment",
			mutate:  func(f *fixture, _ *Request) { f.enrolments.enrolments = nil },
			wantErr: ErrEnrolmentNotFound,
		},
		{
			name:    "missing software",
			mutate:  func(f *fixture, _ *Request) { f.exams.exam.SoftwareIDs = []int64{6} },
			wantErr: ErrNoMachinesAvailable,
		},
		{
			name:    "missing accessibility",
			mutate:  func(_ *fixture, req *Request) { req.AccessibilityIDs = []int64{3} },
			wantErr: ErrNoMachinesAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := validRequest()
			tt.mutate(f, req)

			resp, err := f.uc.Execute(context.Background(), req)

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.reservations.created)
			assert.Zero(t, f.notifier.calls)
		})
	}
}

func TestFindReplaceableEnrolment(t *testing.T) {
	future := &domain.ExamEnrolment{ID: 1, Reservation: &domain.Reservation{StartAt: clock(12), EndAt: clock(13)}}
	unreserved := &domain.ExamEnrolment{ID: 2}
	ended := &domain.ExamEnrolment{ID: 3, Reservation: &domain.Reservation{StartAt: clock(6), EndAt: clock(7)}}

	got, err := findReplaceableEnrolment([]*domain.ExamEnrolment{unreserved, future}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID, "future reservation is replaced first")

	got, err = findReplaceableEnrolment([]*domain.ExamEnrolment{ended, unreserved}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ID)

	_, err = findReplaceableEnrolment([]*domain.ExamEnrolment{ended}, now)
	assert.ErrorIs(t, err, ErrEnrolmentNotFound)
}
