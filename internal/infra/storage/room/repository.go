package room

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	"github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ExamBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ExamBookingService/pkg/psqlbuilder"
)

// Repository репозиторий аудиторий и машин
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория аудиторий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает аудиторию с шаблоном рабочих часов и исключениями (без машин)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ExamRoom, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "name", "room_code", "timezone", "out_of_service").
		From("exam_rooms").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var room domain.ExamRoom
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&room.ID,
		&room.Name,
		&room.RoomCode,
		&room.Timezone,
		&room.OutOfService,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan room: %v", ErrScanRow, err)
	}

	room.WorkingHours, err = r.getWorkingHours(ctx, id)
	if err != nil {
		return nil, err
	}
	room.Exceptions, err = r.getExceptions(ctx, id)
	if err != nil {
		return nil, err
	}
	room.Machines = []*domain.ExamMachine{}

	return &room, nil
}

// GetMachines получает все машины аудитории (включая неисправные и архивные) с ПО,
// средствами доступности и бронированиями, пересекающимися с window.
// Внутри транзакции вызывается после блокировки пользователя и видит свежие данные.
func (r *Repository) GetMachines(ctx context.Context, roomID int64, window domain.TimeWindow) ([]*domain.ExamMachine, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"m.id",
		"m.room_id",
		"m.name",
		"m.ip_address",
		"m.out_of_service",
		"m.archived",
		"ARRAY(SELECT s.software_id FROM machine_software s WHERE s.machine_id = m.id ORDER BY s.software_id)",
		"ARRAY(SELECT a.accessibility_id FROM machine_accessibilities a WHERE a.machine_id = m.id ORDER BY a.accessibility_id)",
	).
		From("exam_machines m").
		Where(squirrel.Eq{"m.room_id": roomID}).
		OrderBy("m.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetMachines - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetMachines - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	machines := make([]*domain.ExamMachine, 0)
	byID := make(map[int64]*domain.ExamMachine)
	for rows.Next() {
		var (
			m                domain.ExamMachine
			softwareIDs      []int64
			accessibilityIDs []int64
		)
		err := rows.Scan(
			&m.ID,
			&m.RoomID,
			&m.Name,
			&m.IPAddress,
			&m.OutOfService,
			&m.Archived,
			pq.Array(&softwareIDs),
			pq.Array(&accessibilityIDs),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: GetMachines - scan machine: %v", ErrScanRow, err)
		}
		m.SoftwareIDs = softwareIDs
		m.AccessibilityIDs = accessibilityIDs
		m.Reservations = []*domain.Reservation{}
		machines = append(machines, &m)
		byID[m.ID] = &m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetMachines - rows iteration: %v", ErrExecQuery, err)
	}

	if len(machines) == 0 {
		return machines, nil
	}

	ids := make([]int64, 0, len(machines))
	for _, m := range machines {
		ids = append(ids, m.ID)
	}

	reservations, err := r.getOverlappingReservations(ctx, ids, window)
	if err != nil {
		return nil, err
	}
	for _, res := range reservations {
		if res.MachineID == nil {
			continue
		}
		if m, ok := byID[*res.MachineID]; ok {
			m.Reservations = append(m.Reservations, res)
		}
	}

	return machines, nil
}

func (r *Repository) getOverlappingReservations(ctx context.Context, machineIDs []int64, window domain.TimeWindow) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reservation.Columns...).
		From("reservations r").
		LeftJoin("external_reservations x ON x.id = r.external_reservation_id").
		Where(squirrel.Expr("r.machine_id = ANY(?)", pq.Array(machineIDs))).
		Where(squirrel.Lt{"r.start_at": window.End}).
		Where(squirrel.Gt{"r.end_at": window.Start}).
		OrderBy("r.start_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getOverlappingReservations - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getOverlappingReservations - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.Reservation, 0)
	for rows.Next() {
		res, err := reservation.ScanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: getOverlappingReservations - scan reservation: %v", ErrScanRow, err)
		}
		result = append(result, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getOverlappingReservations - rows iteration: %v", ErrExecQuery, err)
	}
	return result, nil
}

func (r *Repository) getWorkingHours(ctx context.Context, roomID int64) ([]domain.DefaultWorkingHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("weekday", "open_time", "close_time").
		From("default_working_hours").
		Where(squirrel.Eq{"room_id": roomID}).
		OrderBy("weekday", "open_time").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getWorkingHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getWorkingHours - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	hours := make([]domain.DefaultWorkingHours, 0)
	for rows.Next() {
		var (
			wh      domain.DefaultWorkingHours
			weekday int
		)
		if err := rows.Scan(&weekday, &wh.Open, &wh.Close); err != nil {
			return nil, fmt.Errorf("%w: getWorkingHours - scan row: %v", ErrScanRow, err)
		}
		wh.Weekday = time.Weekday(weekday)
		hours = append(hours, wh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getWorkingHours - rows iteration: %v", ErrExecQuery, err)
	}
	return hours, nil
}

func (r *Repository) getExceptions(ctx context.Context, roomID int64) ([]domain.ExceptionWorkingHours, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "start_at", "end_at", "out_of_service").
		From("exception_working_hours").
		Where(squirrel.Eq{"room_id": roomID}).
		OrderBy("start_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getExceptions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getExceptions - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	exceptions := make([]domain.ExceptionWorkingHours, 0)
	for rows.Next() {
		var ex domain.ExceptionWorkingHours
		if err := rows.Scan(&ex.ID, &ex.StartAt, &ex.EndAt, &ex.OutOfService); err != nil {
			return nil, fmt.Errorf("%w: getExceptions - scan row: %v", ErrScanRow, err)
		}
		exceptions = append(exceptions, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getExceptions - rows iteration: %v", ErrExecQuery, err)
	}
	return exceptions, nil
}
