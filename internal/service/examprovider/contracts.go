package examprovider

import (
	"context"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/collaborative"
)

// ExamRepository локальные экзамены
type ExamRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Exam, error)
	GetState(ctx context.Context, id int64) (domain.ExamState, error)
}

// CollaborativeRepository прокси-записи совместных экзаменов
type CollaborativeRepository interface {
	GetState(ctx context.Context, id int64) (domain.ExamState, error)
}

// Downloader скачивание совместного экзамена у пира
type Downloader interface {
	DownloadExam(ctx context.Context, id int64) (*collaborative.DownloadedExam, error)
}
