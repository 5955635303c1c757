package examprovider

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	collaborativeRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/collaborative"
	examRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/exam"
	"github.com/m04kA/SMC-ExamBookingService/internal/service/collaborative"
)

// Local экзамены из локальной БД
type Local struct {
	repo ExamRepository
}

// NewLocal создает провайдер локальных экзаменов
func NewLocal(repo ExamRepository) *Local {
	return &Local{repo: repo}
}

// Exam получает экзамен
func (l *Local) Exam(ctx context.Context, ref domain.ExamRef) (*domain.Exam, error) {
	exam, err := l.repo.GetByID(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, examRepo.ErrExamNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("%w: Local.Exam: %v", ErrInternal, err)
	}
	return exam, nil
}

// State читает текущее состояние экзамена
func (l *Local) State(ctx context.Context, ref domain.ExamRef) (domain.ExamState, error) {
	state, err := l.repo.GetState(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, examRepo.ErrExamNotFound) {
			return "", ErrExamNotFound
		}
		return "", fmt.Errorf("%w: Local.State: %v", ErrInternal, err)
	}
	return state, nil
}

// Remote совместные экзамены: содержимое берется у пира, состояние из локальной прокси-записи
type Remote struct {
	bridge Downloader
	repo   CollaborativeRepository
}

// NewRemote создает провайдер совместных экзаменов
func NewRemote(bridge Downloader, repo CollaborativeRepository) *Remote {
	return &Remote{bridge: bridge, repo: repo}
}

// Exam скачивает экзамен у пира (с обновлением локальной ревизии) и возвращает его проекцию
func (r *Remote) Exam(ctx context.Context, ref domain.ExamRef) (*domain.Exam, error) {
	downloaded, err := r.bridge.DownloadExam(ctx, ref.ID)
	if err != nil {
		switch {
		case errors.Is(err, collaborative.ErrExamNotFound):
			return nil, ErrExamNotFound
		case errors.Is(err, collaborative.ErrPeerUnavailable), errors.Is(err, collaborative.ErrUnexpectedStatus):
			return nil, fmt.Errorf("%w: Remote.Exam: %v", ErrUnavailable, err)
		default:
			return nil, fmt.Errorf("%w: Remote.Exam: %v", ErrInternal, err)
		}
	}
	return downloaded.Exam.ToExam(), nil
}

// State читает закэшированное состояние совместного экзамена (без обращения к пиру)
func (r *Remote) State(ctx context.Context, ref domain.ExamRef) (domain.ExamState, error) {
	state, err := r.repo.GetState(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, collaborativeRepo.ErrExamNotFound) {
			return "", ErrExamNotFound
		}
		return "", fmt.Errorf("%w: Remote.State: %v", ErrInternal, err)
	}
	return state, nil
}

// Source источник экзаменов одного вида
type Source interface {
	Exam(ctx context.Context, ref domain.ExamRef) (*domain.Exam, error)
	State(ctx context.Context, ref domain.ExamRef) (domain.ExamState, error)
}

// Provider выбирает источник по виду ссылки на экзамен. remote может быть nil.
type Provider struct {
	local  Source
	remote Source
}

// NewProvider создает провайдер экзаменов
func NewProvider(local Source, remote Source) *Provider {
	return &Provider{local: local, remote: remote}
}

// Exam получает экзамен из подходящего источника
func (p *Provider) Exam(ctx context.Context, ref domain.ExamRef) (*domain.Exam, error) {
	src, err := p.source(ref)
	if err != nil {
		return nil, err
	}
	return src.Exam(ctx, ref)
}

// State читает состояние экзамена из подходящего источника
func (p *Provider) State(ctx context.Context, ref domain.ExamRef) (domain.ExamState, error) {
	src, err := p.source(ref)
	if err != nil {
		return "", err
	}
	return src.State(ctx, ref)
}

func (p *Provider) source(ref domain.ExamRef) (Source, error) {
	if !ref.Collaborative {
		return p.local, nil
	}
	if p.remote == nil {
		return nil, ErrCollaborationDisabled
	}
	return p.remote, nil
}
