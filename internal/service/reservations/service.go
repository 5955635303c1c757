package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/reservation"
	roomRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/room"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/availability"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/reservations/models"
)

// Service чтение бронирований и записей на экзамен
type Service struct {
	reservationRepo ReservationRepository
	enrolmentRepo   EnrolmentRepository
	roomRepo        RoomRepository
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	enrolmentRepo EnrolmentRepository,
	roomRepo RoomRepository,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		enrolmentRepo:   enrolmentRepo,
		roomRepo:        roomRepo,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает бронирование по ID.
// Студент видит только свое бронирование, преподаватель и администратор - любое.
func (s *Service) GetByID(ctx context.Context, id int64, principal domain.Principal) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for user=%d", id, principal.UserID)

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("GetByID: reservation id=%d not found", id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("GetByID: repository error for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if reservation.UserID != principal.UserID && !principal.IsTeacher() {
		s.logger.Warn("GetByID: access denied for user=%d to reservation id=%d", principal.UserID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainReservation(reservation), nil
}

// GetUserEnrolments получает записи пользователя вместе с бронированиями
func (s *Service) GetUserEnrolments(ctx context.Context, req *models.GetUserEnrolmentsRequest) (*models.EnrolmentListResponse, error) {
	s.logger.Info("GetUserEnrolments: fetching enrolments for user=%d, activeOnly=%t", req.UserID, req.ActiveOnly)

	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	enrolments, err := s.enrolmentRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		s.logger.Error("GetUserEnrolments: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserEnrolments - repository error: %v", ErrInternal, err)
	}

	if req.ActiveOnly {
		now := s.timeProvider.Now()
		active := make([]*domain.ExamEnrolment, 0, len(enrolments))
		for _, e := range enrolments {
			if e.IsActive(now) {
				active = append(active, e)
			}
		}
		enrolments = active
	}

	s.logger.Info("GetUserEnrolments: fetched %d enrolments for user=%d", len(enrolments), req.UserID)
	return models.FromDomainEnrolmentList(enrolments), nil
}

// GetRoomReservations получает бронирования машин аудитории за календарный день
func (s *Service) GetRoomReservations(ctx context.Context, req *models.GetRoomReservationsRequest) (*models.RoomReservationsResponse, error) {
	s.logger.Info("GetRoomReservations: room=%d, date=%s", req.RoomID, req.Date.Format(domain.DateFormat))

	if req.RoomID <= 0 || req.Date.IsZero() {
		return nil, fmt.Errorf("%w: roomID and date are required", ErrInvalidInput)
	}

	room, err := s.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			s.logger.Warn("GetRoomReservations: room id=%d not found", req.RoomID)
			return nil, ErrRoomNotFound
		}
		s.logger.Error("GetRoomReservations: repository error for room id=%d: %v", req.RoomID, err)
		return nil, fmt.Errorf("%w: GetRoomReservations - repository error: %v", ErrInternal, err)
	}

	y, m, d := req.Date.Date()
	day := availability.DayBounds(room, time.Date(y, m, d, 0, 0, 0, 0, room.Location()))

	machines, err := s.roomRepo.GetMachines(ctx, room.ID, day)
	if err != nil {
		s.logger.Error("GetRoomReservations: failed to get machines of room id=%d: %v", room.ID, err)
		return nil, fmt.Errorf("%w: GetRoomReservations - repository error: %v", ErrInternal, err)
	}

	all := make([]*domain.Reservation, 0)
	names := make(map[int64]string)
	for _, machine := range machines {
		names[machine.ID] = machine.Name
		all = append(all, machine.Reservations...)
	}
	domain.SortReservations(all)

	result := make([]models.ReservationResponse, 0, len(all))
	for _, r := range all {
		dto := models.FromDomainReservation(r)
		if r.MachineID != nil {
			dto.MachineName = names[*r.MachineID]
		}
		result = append(result, *dto)
	}

	return &models.RoomReservationsResponse{
		RoomID:       room.ID,
		Date:         day.Start.Format(domain.DateFormat),
		Reservations: result,
	}, nil
}
