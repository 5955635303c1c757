package reservations

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
	"github.com/m04kA/SMC-ExamBookingService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ExamBookingService/pkg/logger"
	"github.com/m04kA/SMC-ExamBookingService/pkg/ptr"
)

func at(hour int) time.Time {
	return time.Date(2026, time.March, 2, hour, 0, 0, 0, time.UTC)
}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

type fakeReservations struct {
	items map[int64]*domain.Reservation
	err   error
}

func (f *fakeReservations) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.items[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	return r, nil
}

type fakeEnrolments struct {
	items []*domain.ExamEnrolment
	err   error
}

func (f *fakeEnrolments) GetByUserID(_ context.Context, _ int64) ([]*domain.ExamEnrolment, error) {
	return f.items, f.err
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

func newService(res *fakeReservations, enr *fakeEnrolments, rooms *fakeRooms) *Service {
	if res == nil {
		res = &fakeReservations{}
	}
	if enr == nil {
		enr = &fakeEnrolments{}
	}
	if rooms == nil {
		rooms = &fakeRooms{}
	}
	return NewService(res, enr, rooms, logger.Discard()).WithTimeProvider(fixedTime{at(12)})
}

func TestService_GetByID(t *testing.T) {
	res := &fakeReservations{items: map[int64]*domain.Reservation{
		1: {ID: 1, UserID: 7, MachineID: ptr.Ptr(int64(3)), StartAt: at(10), EndAt: at(11)},
	}}
	svc := newService(res, nil, nil)
	ctx := context.Background()

	got, err := svc.GetByID(ctx, 1, domain.Principal{UserID: 7, Role: domain.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02T10:00:00Z", got.Start)
	assert.Equal(t, []int64{}, got.OptionalSectionIDs)

	_, err = svc.GetByID(ctx, 1, domain.Principal{UserID: 8, Role: domain.RoleStudent})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetByID(ctx, 1, domain.Principal{UserID: 50, Role: domain.RoleTeacher})
	assert.NoError(t, err)

	_, err = svc.GetByID(ctx, 2, domain.Principal{UserID: 7})
	assert.ErrorIs(t, err, ErrReservationNotFound)

	_, err = newService(&fakeReservations{err: errors.New("boom")}, nil, nil).GetByID(ctx, 1, domain.Principal{UserID: 7})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestService_GetUserEnrolments(t *testing.T) {
	enr := &fakeEnrolments{items: []*domain.ExamEnrolment{
		{ID: 1, ExamID: ptr.Ptr(int64(3))},
		{ID: 2, ExamID: ptr.Ptr(int64(4)), Reservation: &domain.Reservation{StartAt: at(9), EndAt: at(10)}},
		{ID: 3, CollaborativeExamID: ptr.Ptr(int64(5)), Reservation: &domain.Reservation{StartAt: at(13), EndAt: at(14)}},
	}}
	svc := newService(nil, enr, nil)

	all, err := svc.GetUserEnrolments(context.Background(), &models.GetUserEnrolmentsRequest{UserID: 7})
	require.NoError(t, err)
	assert.Len(t, all.Enrolments, 3)

	active, err := svc.GetUserEnrolments(context.Background(), &models.GetUserEnrolmentsRequest{UserID: 7, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active.Enrolments, 2)
	assert.Equal(t, int64(1), active.Enrolments[0].ID)
	assert.Equal(t, int64(3), active.Enrolments[1].ID)
	assert.True(t, active.Enrolments[1].Collaborative)
	assert.Equal(t, int64(5), active.Enrolments[1].ExamID)

	_, err = svc.GetUserEnrolments(context.Background(), &models.GetUserEnrolmentsRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_GetRoomReservations(t *testing.T) {
	rooms := &fakeRooms{
		room: &domain.ExamRoom{ID: 4, Timezone: "UTC"},
		machines: []*domain.ExamMachine{
			{ID: 1, Name: "PC-1", Reservations: []*domain.Reservation{{ID: 11, MachineID: ptr.Ptr(int64(1)), StartAt: at(14), EndAt: at(15)}}},
			{ID: 2, Name: "PC-2", Reservations: []*domain.Reservation{{ID: 12, MachineID: ptr.Ptr(int64(2)), StartAt: at(9), EndAt: at(10)}}},
		},
	}
	svc := newService(nil, nil, rooms)

	resp, err := svc.GetRoomReservations(context.Background(), &models.GetRoomReservationsRequest{RoomID: 4, Date: at(0)})
	require.NoError(t, err)

	assert.Equal(t, "2026-03-02", resp.Date)
	require.Len(t, resp.Reservations, 2)
	assert.Equal(t, int64(12), resp.Reservations[0].ID)
	assert.Equal(t, "PC-2", resp.Reservations[0].MachineName)
	assert.Equal(t, "PC-1", resp.Reservations[1].MachineName)

	_, err = svc.GetRoomReservations(context.Background(), &models.GetRoomReservationsRequest{RoomID: 9, Date: at(0)})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = svc.GetRoomReservations(context.Background(), &models.GetRoomReservationsRequest{RoomID: 4})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
