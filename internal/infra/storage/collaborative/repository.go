package collaborative

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	"github.com/m04kA/SMC-ExamBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ExamBookingService/pkg/psqlbuilder"
)

// Repository репозиторий локальных прокси-записей совместных экзаменов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория совместных экзаменов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var columns = []string{
	"id",
	"external_ref",
	"revision",
	"name",
	"state",
	"period_start",
	"period_end",
	"hash",
	"execution_type",
	"trial_count",
	"duration_minutes",
	"organisations",
	"updated_at",
}

// GetByID получает прокси-запись совместного экзамена
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.CollaborativeExam, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("collaborative_exams").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		exam          domain.CollaborativeExam
		state         string
		executionType string
		periodStart   sql.NullTime
		periodEnd     sql.NullTime
		trialCount    sql.NullInt64
		organisations []string
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&exam.ID,
		&exam.ExternalRef,
		&exam.Revision,
		&exam.Name,
		&state,
		&periodStart,
		&periodEnd,
		&exam.Hash,
		&executionType,
		&trialCount,
		&exam.DurationMinutes,
		pq.Array(&organisations),
		&exam.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan collaborative exam: %v", ErrScanRow, err)
	}

	exam.State = domain.ExamState(state)
	exam.ExecutionType = domain.ExecutionType(executionType)
	exam.PeriodStart = periodStart.Time
	exam.PeriodEnd = periodEnd.Time
	if trialCount.Valid {
		tc := int(trialCount.Int64)
		exam.TrialCount = &tc
	}
	exam.Organisations = organisations

	return &exam, nil
}

// GetState возвращает закэшированное состояние совместного экзамена
func (r *Repository) GetState(ctx context.Context, id int64) (domain.ExamState, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("state").
		From("collaborative_exams").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("%w: GetState - build select query: %v", ErrBuildQuery, err)
	}

	var state string
	err = executor.QueryRowContext(ctx, query, args...).Scan(&state)
	if err == sql.ErrNoRows {
		return "", ErrExamNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: GetState - scan state: %v", ErrScanRow, err)
	}
	return domain.ExamState(state), nil
}

// UpdateFromPeer сохраняет ревизию и денормализованные поля, полученные от пира
func (r *Repository) UpdateFromPeer(ctx context.Context, exam *domain.CollaborativeExam) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var trialCount interface{}
	if exam.TrialCount != nil {
		trialCount = *exam.TrialCount
	}

	query, args, err := psqlbuilder.Update("collaborative_exams").
		Set("revision", exam.Revision).
		Set("name", exam.Name).
		Set("state", string(exam.State)).
		Set("period_start", nullTime(exam.PeriodStart)).
		Set("period_end", nullTime(exam.PeriodEnd)).
		Set("hash", exam.Hash).
		Set("execution_type", string(exam.ExecutionType)).
		Set("trial_count", trialCount).
		Set("duration_minutes", exam.DurationMinutes).
		Set("organisations", pq.Array(nonNil(exam.Organisations))).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": exam.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateFromPeer - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateFromPeer - execute update: %v", ErrExecQuery, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateFromPeer - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrExamNotFound
	}
	return nil
}

// CompareAndSwapRevision меняет ревизию, только если текущая равна oldRevision.
// false - ревизию успели поменять параллельно.
func (r *Repository) CompareAndSwapRevision(ctx context.Context, id int64, oldRevision, newRevision string) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("collaborative_exams").
		Set("revision", newRevision).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "revision": oldRevision}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: CompareAndSwapRevision - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: CompareAndSwapRevision - execute update: %v", ErrExecQuery, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: CompareAndSwapRevision - get rows affected: %v", ErrExecQuery, err)
	}
	return rowsAffected > 0, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
