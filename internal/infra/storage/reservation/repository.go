package reservation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	"github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/pgerr"
	"github.com/m04kA/SMC-ExamBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ExamBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-ExamBookingService/pkg/ptr"
)

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Columns колонки бронирования с внешним бронированием (LEFT JOIN external_reservations x).
// Используются также репозиторием записей на экзамен.
var Columns = []string{
	"r.id",
	"r.user_id",
	"r.machine_id",
	"r.start_at",
	"r.end_at",
	"r.no_show",
	"r.retrial_permitted",
	"r.reminder_sent",
	"r.optional_section_ids",
	"r.created_at",
	"x.id",
	"x.external_ref",
	"x.org_ref",
	"x.room_ref",
	"x.machine_name",
	"x.room_name",
	"x.room_timezone",
}

// Create создает бронирование. Для внешнего бронирования сначала создается побочная запись
// external_reservations. Должен вызываться внутри транзакции: при нарушении ограничения
// reservations_machine_no_overlap возвращается ErrMachineOverlap и транзакцию нужно откатить.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var externalID *int64
	if res.External != nil {
		if err := r.createExternal(ctx, res.External); err != nil {
			return nil, err
		}
		externalID = &res.External.ID
	}

	query, args, err := psqlbuilder.Insert("reservations").
		Columns(
			"user_id",
			"machine_id",
			"external_reservation_id",
			"start_at",
			"end_at",
			"no_show",
			"retrial_permitted",
			"reminder_sent",
			"optional_section_ids",
		).
		Values(
			res.UserID,
			res.MachineID,
			externalID,
			res.StartAt,
			res.EndAt,
			res.NoShow,
			res.RetrialPermitted,
			res.ReminderSent,
			pq.Array(nonNil(res.OptionalSectionIDs)),
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&res.ID, &createdAt)
	if err != nil {
		if pgerr.IsExclusionViolation(err) {
			return nil, ErrMachineOverlap
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}
	res.CreatedAt = createdAt.Time

	return res, nil
}

func (r *Repository) createExternal(ctx context.Context, ext *domain.ExternalReservation) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("external_reservations").
		Columns("external_ref", "org_ref", "room_ref", "machine_name", "room_name", "room_timezone").
		Values(ext.ExternalRef, ext.OrgRef, ext.RoomRef, ext.MachineName, ext.RoomName, ext.RoomTimezone).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: createExternal - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&ext.ID); err != nil {
		return fmt.Errorf("%w: createExternal - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(Columns...).
		From("reservations r").
		LeftJoin("external_reservations x ON x.id = r.external_reservation_id").
		Where(squirrel.Eq{"r.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := ScanReservation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %v", ErrScanRow, err)
	}
	return res, nil
}

// Delete удаляет бронирование. Ссылку из записи на экзамен нужно снять заранее.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// DeleteExternal удаляет побочную запись внешнего бронирования.
// Вызывается после удаления самого бронирования (внешний ключ).
func (r *Repository) DeleteExternal(ctx context.Context, externalID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("external_reservations").
		Where(squirrel.Eq{"id": externalID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteExternal - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: DeleteExternal - execute delete: %v", ErrExecQuery, err)
	}
	return nil
}

// MarkNoShow помечает бронирование как неявку.
// Возвращает false, если бронирование уже было помечено (повторный запуск ничего не меняет).
func (r *Repository) MarkNoShow(ctx context.Context, id int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("no_show", true).
		Where(squirrel.Eq{"id": id, "no_show": false}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: MarkNoShow - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: MarkNoShow - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: MarkNoShow - get rows affected: %v", ErrExecQuery, err)
	}
	return rowsAffected > 0, nil
}

// RowScanner общий интерфейс *sql.Row и *sql.Rows
type RowScanner interface {
	Scan(dest ...interface{}) error
}

// ScanReservation сканирует строку с колонками Columns
func ScanReservation(row RowScanner) (*domain.Reservation, error) {
	var (
		res        domain.Reservation
		machineID  sql.NullInt64
		createdAt  sql.NullTime
		ext        nullableExternal
		sectionIDs []int64
	)

	err := row.Scan(
		&res.ID,
		&res.UserID,
		&machineID,
		&res.StartAt,
		&res.EndAt,
		&res.NoShow,
		&res.RetrialPermitted,
		&res.ReminderSent,
		pq.Array(&sectionIDs),
		&createdAt,
		&ext.id,
		&ext.externalRef,
		&ext.orgRef,
		&ext.roomRef,
		&ext.machineName,
		&ext.roomName,
		&ext.roomTimezone,
	)
	if err != nil {
		return nil, err
	}

	if machineID.Valid {
		res.MachineID = ptr.Ptr(machineID.Int64)
	}
	res.CreatedAt = createdAt.Time
	res.OptionalSectionIDs = sectionIDs
	res.External = ext.toDomain()

	return &res, nil
}

// nullableExternal колонки external_reservations из LEFT JOIN
type nullableExternal struct {
	id           sql.NullInt64
	externalRef  sql.NullString
	orgRef       sql.NullString
	roomRef      sql.NullString
	machineName  sql.NullString
	roomName     sql.NullString
	roomTimezone sql.NullString
}

func (n nullableExternal) toDomain() *domain.ExternalReservation {
	if !n.id.Valid {
		return nil
	}
	return &domain.ExternalReservation{
		ID:           n.id.Int64,
		ExternalRef:  n.externalRef.String,
		OrgRef:       n.orgRef.String,
		RoomRef:      n.roomRef.String,
		MachineName:  n.machineName.String,
		RoomName:     n.roomName.String,
		RoomTimezone: n.roomTimezone.String,
	}
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
