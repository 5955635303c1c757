package enrolment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	"github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/pgerr"
	"github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ExamBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ExamBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-ExamBookingService/pkg/ptr"
)

// Repository репозиторий записей на экзамен
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var enrolmentColumns = []string{
	"e.id",
	"e.user_id",
	"e.exam_id",
	"e.collaborative_exam_id",
	"e.enrolled_on",
	"e.reservation_canceled",
	"e.pre_enrolled_user_email",
	"e.examination_event_configuration_id",
}

func selectEnrolments() squirrel.SelectBuilder {
	columns := make([]string, 0, len(enrolmentColumns)+len(reservation.Columns))
	columns = append(columns, enrolmentColumns...)
	columns = append(columns, reservation.Columns...)

	return psqlbuilder.Select(columns...).
		From("exam_enrolments e").
		LeftJoin("reservations r ON r.id = e.reservation_id").
		LeftJoin("external_reservations x ON x.id = r.external_reservation_id")
}

func examRefCondition(ref domain.ExamRef) squirrel.Eq {
	if ref.Collaborative {
		return squirrel.Eq{"e.collaborative_exam_id": ref.ID}
	}
	return squirrel.Eq{"e.exam_id": ref.ID}
}

// GetByUserAndExam получает все записи пользователя на экзамен вместе с бронированиями.
// Внутри транзакции строки записей блокируются (FOR UPDATE OF e).
func (r *Repository) GetByUserAndExam(ctx context.Context, userID int64, ref domain.ExamRef) ([]*domain.ExamEnrolment, error) {
	builder := selectEnrolments().
		Where(squirrel.Eq{"e.user_id": userID}).
		Where(examRefCondition(ref)).
		OrderBy("e.enrolled_on", "e.id")

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE OF e")
	}

	return r.queryList(ctx, "GetByUserAndExam", builder)
}

// GetByUserID получает все записи пользователя с бронированиями, новые первыми
func (r *Repository) GetByUserID(ctx context.Context, userID int64) ([]*domain.ExamEnrolment, error) {
	builder := selectEnrolments().
		Where(squirrel.Eq{"e.user_id": userID}).
		OrderBy("e.enrolled_on DESC", "e.id DESC")

	return r.queryList(ctx, "GetByUserID", builder)
}

// GetByEmailAndExam получает предварительные записи по email на экзамен
func (r *Repository) GetByEmailAndExam(ctx context.Context, email string, ref domain.ExamRef) ([]*domain.ExamEnrolment, error) {
	builder := selectEnrolments().
		Where(squirrel.Eq{"e.pre_enrolled_user_email": email}).
		Where(examRefCondition(ref)).
		OrderBy("e.id")

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE OF e")
	}

	return r.queryList(ctx, "GetByEmailAndExam", builder)
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.ExamEnrolment, error) {
	builder := selectEnrolments().Where(squirrel.Eq{"e.id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE OF e")
	}
	return r.queryOne(ctx, "GetByID", builder)
}

// GetByReservationID получает запись, которой принадлежит бронирование
func (r *Repository) GetByReservationID(ctx context.Context, reservationID int64) (*domain.ExamEnrolment, error) {
	builder := selectEnrolments().Where(squirrel.Eq{"e.reservation_id": reservationID})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE OF e")
	}
	return r.queryOne(ctx, "GetByReservationID", builder)
}

// FindNoShowCandidates возвращает записи с закончившимся до now бронированием, которое
// еще не помечено как неявка и по которому не начиналась попытка сдачи.
// Для локальных экзаменов экзамен должен быть опубликован.
func (r *Repository) FindNoShowCandidates(ctx context.Context, now time.Time, limit int) ([]*domain.ExamEnrolment, error) {
	builder := psqlbuilder.Select(append(append([]string{}, enrolmentColumns...), reservation.Columns...)...).
		From("exam_enrolments e").
		Join("reservations r ON r.id = e.reservation_id").
		LeftJoin("external_reservations x ON x.id = r.external_reservation_id").
		LeftJoin("exams ex ON ex.id = e.exam_id").
		Where(squirrel.Lt{"r.end_at": now}).
		Where(squirrel.Eq{"r.no_show": false}).
		Where("NOT EXISTS (SELECT 1 FROM exam_participations p WHERE p.enrolment_id = e.id)").
		Where(squirrel.Or{
			squirrel.Eq{"e.exam_id": nil},
			squirrel.Eq{"ex.state": string(domain.ExamStatePublished)},
		}).
		OrderBy("r.end_at", "e.id")

	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	return r.queryList(ctx, "FindNoShowCandidates", builder)
}

// Create создает запись на экзамен (без бронирования)
func (r *Repository) Create(ctx context.Context, e *domain.ExamEnrolment) (*domain.ExamEnrolment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("exam_enrolments").
		Columns(
			"user_id",
			"exam_id",
			"collaborative_exam_id",
			"enrolled_on",
			"reservation_canceled",
			"pre_enrolled_user_email",
			"examination_event_configuration_id",
		).
		Values(
			e.UserID,
			e.ExamID,
			e.CollaborativeExamID,
			e.EnrolledOn,
			e.ReservationCanceled,
			e.PreEnrolledUserEmail,
			e.ExaminationEventConfigurationID,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&e.ID); err != nil {
		if pgerr.IsUniqueViolation(err) {
			return nil, ErrDuplicateEnrolment
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}
	return e, nil
}

// Delete удаляет запись. Привязанное бронирование нужно удалить отдельно.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("exam_enrolments").
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
		return ErrEnrolmentNotFound
	}
	return nil
}

// AttachReservation привязывает бронирование к записи и снимает флаг отмены
func (r *Repository) AttachReservation(ctx context.Context, enrolmentID, reservationID int64) error {
	return r.update(ctx, "AttachReservation", enrolmentID, map[string]interface{}{
		"reservation_id":       reservationID,
		"reservation_canceled": false,
	})
}

// DetachReservation отвязывает бронирование от записи. canceled выставляет флаг отмены.
func (r *Repository) DetachReservation(ctx context.Context, enrolmentID int64, canceled bool) error {
	return r.update(ctx, "DetachReservation", enrolmentID, map[string]interface{}{
		"reservation_id":       nil,
		"reservation_canceled": canceled,
	})
}

func (r *Repository) update(ctx context.Context, op string, id int64, values map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("exam_enrolments").
		SetMap(values).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrEnrolmentNotFound
	}
	return nil
}

func (r *Repository) queryOne(ctx context.Context, op string, builder squirrel.SelectBuilder) (*domain.ExamEnrolment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	e, err := scanEnrolment(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrEnrolmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan enrolment: %v", ErrScanRow, op, err)
	}
	return e, nil
}

func (r *Repository) queryList(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.ExamEnrolment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	result := make([]*domain.ExamEnrolment, 0)
	for rows.Next() {
		e, err := scanEnrolment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan enrolment: %v", ErrScanRow, op, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %v", ErrExecQuery, op, err)
	}
	return result, nil
}

func scanEnrolment(row reservation.RowScanner) (*domain.ExamEnrolment, error) {
	var (
		e                   domain.ExamEnrolment
		userID              sql.NullInt64
		examID              sql.NullInt64
		collaborativeExamID sql.NullInt64
		email               sql.NullString
		configurationID     sql.NullInt64

		resID               sql.NullInt64
		resUserID           sql.NullInt64
		resMachineID        sql.NullInt64
		resStartAt          sql.NullTime
		resEndAt            sql.NullTime
		resNoShow           sql.NullBool
		resRetrialPermitted sql.NullBool
		resReminderSent     sql.NullBool
		resSectionIDs       []int64
		resCreatedAt        sql.NullTime

		extID           sql.NullInt64
		extRef          sql.NullString
		extOrgRef       sql.NullString
		extRoomRef      sql.NullString
		extMachineName  sql.NullString
		extRoomName     sql.NullString
		extRoomTimezone sql.NullString
	)

	err := row.Scan(
		&e.ID,
		&userID,
		&examID,
		&collaborativeExamID,
		&e.EnrolledOn,
		&e.ReservationCanceled,
		&email,
		&configurationID,
		&resID,
		&resUserID,
		&resMachineID,
		&resStartAt,
		&resEndAt,
		&resNoShow,
		&resRetrialPermitted,
		&resReminderSent,
		pq.Array(&resSectionIDs),
		&resCreatedAt,
		&extID,
		&extRef,
		&extOrgRef,
		&extRoomRef,
		&extMachineName,
		&extRoomName,
		&extRoomTimezone,
	)
	if err != nil {
		return nil, err
	}

	e.UserID = nullInt64(userID)
	e.ExamID = nullInt64(examID)
	e.CollaborativeExamID = nullInt64(collaborativeExamID)
	e.ExaminationEventConfigurationID = nullInt64(configurationID)
	if email.Valid {
		v := email.String
		e.PreEnrolledUserEmail = &v
	}

	if resID.Valid {
		res := &domain.Reservation{
			ID:                 resID.Int64,
			UserID:             resUserID.Int64,
			MachineID:          nullInt64(resMachineID),
			StartAt:            resStartAt.Time,
			EndAt:              resEndAt.Time,
			NoShow:             resNoShow.Bool,
			RetrialPermitted:   resRetrialPermitted.Bool,
			ReminderSent:       resReminderSent.Bool,
			OptionalSectionIDs: resSectionIDs,
			CreatedAt:          resCreatedAt.Time,
		}
		if extID.Valid {
			res.External = &domain.ExternalReservation{
				ID:           extID.Int64,
				ExternalRef:  extRef.String,
				OrgRef:       extOrgRef.String,
				RoomRef:      extRoomRef.String,
				MachineName:  extMachineName.String,
				RoomName:     extRoomName.String,
				RoomTimezone: extRoomTimezone.String,
			}
		}
		e.Reservation = res
	}

	return &e, nil
}

func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return ptr.Ptr(v.Int64)
}
