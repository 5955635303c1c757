package participation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	"github.com/m04kA/SMC-ExamBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ExamBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-ExamBookingService/pkg/ptr"
)

// Repository репозиторий попыток сдачи. Таблицу заполняет подсистема оценивания.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория попыток
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetFinishedAttempts возвращает последние limit завершенных попыток пользователя по экзамену,
// от самой поздней к самой ранней
func (r *Repository) GetFinishedAttempts(ctx context.Context, userID int64, ref domain.ExamRef, limit int) ([]*domain.Participation, error) {
	if limit <= 0 {
		return []*domain.Participation{}, nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	states := make([]string, 0, len(domain.FinishedAttemptStates))
	for _, s := range domain.FinishedAttemptStates {
		states = append(states, string(s))
	}

	examColumn := "exam_id"
	if ref.Collaborative {
		examColumn = "collaborative_exam_id"
	}

	query, args, err := psqlbuilder.Select(
		"id",
		"user_id",
		"enrolment_id",
		"state",
		"ended_at",
		"retrial_permitted",
	).
		From("exam_participations").
		Where(squirrel.Eq{
			"user_id":  userID,
			examColumn: ref.ID,
			"state":    states,
		}).
		OrderBy("ended_at DESC NULLS LAST", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetFinishedAttempts - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetFinishedAttempts - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.Participation, 0, limit)
	for rows.Next() {
		var (
			p           domain.Participation
			enrolmentID sql.NullInt64
			state       string
			endedAt     sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.UserID, &enrolmentID, &state, &endedAt, &p.RetrialPermitted); err != nil {
			return nil, fmt.Errorf("%w: GetFinishedAttempts - scan participation: %v", ErrScanRow, err)
		}
		p.State = domain.ExamState(state)
		if enrolmentID.Valid {
			p.EnrolmentID = ptr.Ptr(enrolmentID.Int64)
		}
		if endedAt.Valid {
			t := endedAt.Time
			p.EndedAt = &t
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetFinishedAttempts - rows iteration: %v", ErrExecQuery, err)
	}
	return result, nil
}
