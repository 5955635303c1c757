package get_free_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	roomRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/room"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/availability"
)

// UseCase use case для получения свободных интервалов аудитории на дату
type UseCase struct {
	roomRepo RoomRepository
	logger   Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(roomRepo RoomRepository, logger Logger) *UseCase {
	return &UseCase{
		roomRepo: roomRepo,
		logger:   logger,
	}
}

// Execute выполняет use case получения свободных интервалов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetFreeSlots: room=%d, date=%s", req.RoomID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetFreeSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем аудиторию (рабочие часы, исключения, таймзона)
	room, err := uc.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			uc.logger.Warn("GetFreeSlots: room id=%d not found", req.RoomID)
			return nil, ErrRoomNotFound
		}
		uc.logger.Error("GetFreeSlots: failed to get room id=%d: %v", req.RoomID, err)
		return nil, fmt.Errorf("%w: failed to get room: %v", ErrInternal, err)
	}

	// 3. Загружаем машины с бронированиями за календарный день в таймзоне аудитории
	y, m, d := req.Date.Date()
	day := availability.DayBounds(room, time.Date(y, m, d, 0, 0, 0, 0, room.Location()))
	room.Machines, err = uc.roomRepo.GetMachines(ctx, room.ID, day)
	if err != nil {
		uc.logger.Error("GetFreeSlots: failed to get machines of room id=%d: %v", room.ID, err)
		return nil, fmt.Errorf("%w: failed to get machines: %v", ErrInternal, err)
	}

	// 4. Рабочие часы минус бронирования
	free := availability.FreeSlots(room, day.Start)

	uc.logger.Info("GetFreeSlots: room=%d has %d free windows on %s",
		req.RoomID, len(free), day.Start.Format(domain.DateFormat))

	return &Response{
		RoomID:   room.ID,
		Date:     day.Start.Format(domain.DateFormat),
		Timezone: room.Location().String(),
		Slots:    toSlots(free, day),
	}, nil
}
