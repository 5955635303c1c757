package exam

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	"github.com/m04kA/SMC-ExamBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ExamBookingService/pkg/psqlbuilder"
)

// Repository репозиторий локальных экзаменов (только поля, нужные для записи и бронирования)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория экзаменов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает экзамен вместе с владельцами, инспекторами и требуемым ПО
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Exam, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"e.id",
		"e.name",
		"e.state",
		"e.duration_minutes",
		"e.trial_count",
		"e.execution_type",
		"e.active_start",
		"e.active_end",
		"e.course_code",
		"ARRAY(SELECT o.user_id FROM exam_owners o WHERE o.exam_id = e.id ORDER BY o.user_id)",
		"ARRAY(SELECT i.user_id FROM exam_inspections i WHERE i.exam_id = e.id ORDER BY i.user_id)",
		"ARRAY(SELECT s.software_id FROM exam_software s WHERE s.exam_id = e.id ORDER BY s.software_id)",
	).
		From("exams e").
		Where(squirrel.Eq{"e.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		exam          domain.Exam
		state         string
		executionType string
		trialCount    sql.NullInt64
		ownerIDs      []int64
		inspectorIDs  []int64
		softwareIDs   []int64
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&exam.ID,
		&exam.Name,
		&state,
		&exam.DurationMinutes,
		&trialCount,
		&executionType,
		&exam.ActiveStart,
		&exam.ActiveEnd,
		&exam.CourseCode,
		pq.Array(&ownerIDs),
		pq.Array(&inspectorIDs),
		pq.Array(&softwareIDs),
	)
	if err == sql.ErrNoRows {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan exam: %v", ErrScanRow, err)
	}

	exam.State = domain.ExamState(state)
	exam.ExecutionType = domain.ExecutionType(executionType)
	if trialCount.Valid {
		tc := int(trialCount.Int64)
		exam.TrialCount = &tc
	}
	exam.OwnerIDs = ownerIDs
	exam.InspectorIDs = inspectorIDs
	exam.SoftwareIDs = softwareIDs

	return &exam, nil
}

// GetState возвращает текущее состояние экзамена.
// Используется для повторной проверки под блокировкой пользователя.
func (r *Repository) GetState(ctx context.Context, id int64) (domain.ExamState, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("state").
		From("exams").
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
