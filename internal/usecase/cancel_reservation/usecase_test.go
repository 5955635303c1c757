package cancel_reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	enrolmentRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/enrolment"
	reservationRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ExamBookingService/pkg/logger"
	"github.com/m04kA/SMC-ExamBookingService/pkg/ptr"
)

var now = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type fakeReservations struct {
	byID            map[int64]*domain.Reservation
	deleted         []int64
	deletedExternal []int64
	deleteErr       error

	// relocked подменяет бронирование при повторном чтении под блокировкой
	relocked *domain.Reservation
	reads    int
}

func (f *fakeReservations) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	f.reads++
	if f.reads > 1 && f.relocked != nil {
		return f.relocked, nil
	}
	res, ok := f.byID[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	return res, nil
}

func (f *fakeReservations) Delete(_ context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	delete(f.byID, id)
	return nil
}

func (f *fakeReservations) DeleteExternal(_ context.Context, id int64) error {
	f.deletedExternal = append(f.deletedExternal, id)
	return nil
}

type fakeEnrolments struct {
	byReservation map[int64]*domain.ExamEnrolment
	detached      map[int64]bool
}

func (f *fakeEnrolments) GetByReservationID(_ context.Context, reservationID int64) (*domain.ExamEnrolment, error) {
	e, ok := f.byReservation[reservationID]
	if !ok {
		return nil, enrolmentRepo.ErrEnrolmentNotFound
	}
	return e, nil
}

func (f *fakeEnrolments) DetachReservation(_ context.Context, enrolmentID int64, canceled bool) error {
	f.detached[enrolmentID] = canceled
	return nil
}

type fakeUsers struct{}

func (fakeUsers) LockByID(_ context.Context, id int64) (*domain.User, error) {
	return &domain.User{ID: id}, nil
}

type fakeExams struct {
	reads int
}

func (f *fakeExams) Exam(_ context.Context, ref domain.ExamRef) (*domain.Exam, error) {
	f.reads++
	return &domain.Exam{ID: ref.ID, Name: "Algebra"}, nil
}

type fakeCanceller struct {
	refs []string
	err  error
}

func (f *fakeCanceller) CancelExternalReservation(_ context.Context, ref string) error {
	f.refs = append(f.refs, ref)
	return f.err
}

type fakeNotifier struct {
	calls int
	exam  *domain.Exam
}

func (f *fakeNotifier) NotifyReservationCancelled(_ *domain.User, _ *domain.Reservation, exam *domain.Exam) {
	f.calls++
	f.exam = exam
}

type fakeMetrics struct {
	divergences []string
}

func (f *fakeMetrics) ObservePeerDivergence(operation string) {
	f.divergences = append(f.divergences, operation)
}

type inlineTx struct{}

func (inlineTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	reservations *fakeReservations
	enrolments   *fakeEnrolments
	exams        *fakeExams
	canceller    *fakeCanceller
	notifier     *fakeNotifier
	metrics      *fakeMetrics
}

func newFixture(res *domain.Reservation, enrolment *domain.ExamEnrolment) *fixture {
	f := &fixture{
		reservations: &fakeReservations{byID: map[int64]*domain.Reservation{res.ID: res}},
		enrolments: &fakeEnrolments{
			byReservation: map[int64]*domain.ExamEnrolment{},
			detached:      map[int64]bool{},
		},
		exams:     &fakeExams{},
		canceller: &fakeCanceller{},
		notifier:  &fakeNotifier{},
		metrics:   &fakeMetrics{},
	}
	if enrolment != nil {
		f.enrolments.byReservation[res.ID] = enrolment
	}
	return f
}

func (f *fixture) useCase(canceller ExternalCanceller) *UseCase {
	return NewUseCase(
		f.reservations,
		f.enrolments,
		fakeUsers{},
		f.exams,
		canceller,
		f.notifier,
		f.metrics,
		inlineTx{},
		logger.Discard(),
	).WithTimeProvider(fixedTime{t: now})
}

func futureReservation() *domain.Reservation {
	return &domain.Reservation{ID: 5, UserID: 7, StartAt: now.Add(2 * time.Hour), EndAt: now.Add(3 * time.Hour)}
}

func TestExecute_CancelsLocalReservation(t *testing.T) {
	res := futureReservation()
	f := newFixture(res, &domain.ExamEnrolment{ID: 9, ExamID: ptr.Ptr(int64(3))})

	resp, err := f.useCase(f.canceller).Execute(context.Background(), &Request{UserID: 7, ReservationID: 5})

	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.ReservationID)
	require.NotNil(t, resp.EnrolmentID)
	assert.Equal(t, int64(9), *resp.EnrolmentID)
	assert.True(t, f.enrolments.detached[9], "enrolment is flagged as cancelled")
	assert.Equal(t, []int64{5}, f.reservations.deleted)
	assert.Empty(t, f.canceller.refs)
	assert.Equal(t, 1, f.notifier.calls)
	require.NotNil(t, f.notifier.exam)
	assert.Equal(t, "Algebra", f.notifier.exam.Name)
}

func TestExecute_CollaborativeExamIsNotReadForNotification(t *testing.T) {
	res := futureReservation()
	f := newFixture(res, &domain.ExamEnrolment{ID: 9, CollaborativeExamID: ptr.Ptr(int64(3))})

	_, err := f.useCase(f.canceller).Execute(context.Background(), &Request{UserID: 7, ReservationID: 5})

	require.NoError(t, err)
	assert.Zero(t, f.exams.reads)
	assert.Nil(t, f.notifier.exam)
}

func TestExecute_ExternalReservationCancelledAtPeerFirst(t *testing.T) {
	res := futureReservation()
	res.External = &domain.ExternalReservation{ID: 11, ExternalRef: "peer-11"}
	f := newFixture(res, nil)

	resp, err := f.useCase(f.canceller).Execute(context.Background(), &Request{UserID: 7, ReservationID: 5})

	require.NoError(t, err)
	assert.Nil(t, resp.EnrolmentID)
	assert.Equal(t, []string{"peer-11"}, f.canceller.refs)
	assert.Equal(t, []int64{11}, f.reservations.deletedExternal)
}

func TestExecute_PeerFailureKeepsLocalState(t *testing.T) {
	res := futureReservation()
	res.External = &domain.ExternalReservation{ID: 11, ExternalRef: "peer-11"}
	f := newFixture(res, &domain.ExamEnrolment{ID: 9})
	f.canceller.err = errors.New("peer is down")

	_, err := f.useCase(f.canceller).Execute(context.Background(), &Request{UserID: 7, ReservationID: 5})

	assert.ErrorIs(t, err, ErrPeerCancelFailed)
	assert.Empty(t, f.reservations.deleted)
	assert.Empty(t, f.enrolments.detached)
	assert.Zero(t, f.notifier.calls)
}

func TestExecute_ExternalReservationWithoutCollaboration(t *testing.T) {
	res := futureReservation()
	res.External = &domain.ExternalReservation{ID: 11, ExternalRef: "peer-11"}
	f := newFixture(res, nil)

	_, err := f.useCase(nil).Execute(context.Background(), &Request{UserID: 7, ReservationID: 5})

	assert.ErrorIs(t, err, ErrPeerCancelFailed)
	assert.Empty(t, f.reservations.deleted)
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		res     *domain.Reservation
		req     *Request
		wantErr error
	}{
		{
			name:    "invalid id",
			res:     futureReservation(),
			req:     &Request{UserID: 7},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "not found",
			res:     futureReservation(),
			req:     &Request{UserID: 7, ReservationID: 6},
			wantErr: ErrReservationNotFound,
		},
		{
			name:    "someone else's reservation",
			res:     futureReservation(),
			req:     &Request{UserID: 8, ReservationID: 5},
			wantErr: ErrAccessDenied,
		},
		{
			name:    "already started",
			res:     &domain.Reservation{ID: 5, UserID: 7, StartAt: now.Add(-time.Minute), EndAt: now.Add(time.Hour)},
			req:     &Request{UserID: 7, ReservationID: 5},
			wantErr: ErrCannotCancel,
		},
		{
			name:    "starts right now",
			res:     &domain.Reservation{ID: 5, UserID: 7, StartAt: now, EndAt: now.Add(time.Hour)},
			req:     &Request{UserID: 7, ReservationID: 5},
			wantErr: ErrCannotCancel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.res, nil)

			_, err := f.useCase(f.canceller).Execute(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.reservations.deleted)
		})
	}
}

func TestExecute_AdminCancelsForeignReservation(t *testing.T) {
	f := newFixture(futureReservation(), nil)

	_, err := f.useCase(f.canceller).Execute(context.Background(), &Request{UserID: 1, IsAdmin: true, ReservationID: 5})

	require.NoError(t, err)
	assert.Equal(t, []int64{5}, f.reservations.deleted)
}

func TestExecute_StartedBeforeLockIsNotCancelledAtPeer(t *testing.T) {
	res := futureReservation()
	res.External = &domain.ExternalReservation{ID: 11, ExternalRef: "peer-11"}
	f := newFixture(res, nil)
	started := *res
	started.StartAt = now.Add(-time.Minute)
	f.reservations.relocked = &started

	_, err := f.useCase(f.canceller).Execute(context.Background(), &Request{UserID: 7, ReservationID: 5})

	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.Empty(t, f.canceller.refs, "peer is not asked once the reservation has started")
	assert.Empty(t, f.reservations.deleted)
	assert.Empty(t, f.metrics.divergences)
}

func TestExecute_LocalFailureAfterPeerCancelIsRecorded(t *testing.T) {
	res := futureReservation()
	res.External = &domain.ExternalReservation{ID: 11, ExternalRef: "peer-11"}
	f := newFixture(res, nil)
	f.reservations.deleteErr = errors.New("connection reset")

	_, err := f.useCase(f.canceller).Execute(context.Background(), &Request{UserID: 7, ReservationID: 5})

	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, []string{"peer-11"}, f.canceller.refs)
	assert.Equal(t, []string{"cancel_reservation"}, f.metrics.divergences)
	assert.Zero(t, f.notifier.calls)
}

func TestExecute_LocalFailureWithoutPeerIsNotDivergence(t *testing.T) {
	f := newFixture(futureReservation(), nil)
	f.reservations.deleteErr = errors.New("connection reset")

	_, err := f.useCase(f.canceller).Execute(context.Background(), &Request{UserID: 7, ReservationID: 5})

	assert.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, f.metrics.divergences)
}
