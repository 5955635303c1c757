package collaborative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	collaborativeRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/collaborative"
	"github.com/m04kA/SMC-ExamBookingService/internal/integrations/xm"
)

// Результаты обращений к пиру для метрик
const (
	resultOK          = "ok"
	resultConflict    = "conflict"
	resultNotFound    = "not_found"
	resultUnavailable = "unavailable"
	resultError       = "error"
)

// DownloadedExam экзамен, скачанный у пира: обновленная прокси-запись и полное содержимое
type DownloadedExam struct {
	Exam    *domain.CollaborativeExam
	Content json.RawMessage
}

// Service мост к удаленному сервису совместных экзаменов.
// Не выполняется внутри транзакций БД.
type Service struct {
	repo    Repository
	client  PeerClient
	metrics Metrics
	logger  Logger
}

// NewService создает новый экземпляр моста
func NewService(repo Repository, client PeerClient, metrics Metrics, logger Logger) *Service {
	return &Service{
		repo:    repo,
		client:  client,
		metrics: metrics,
		logger:  logger,
	}
}

// DownloadExam скачивает экзамен у пира и сохраняет ревизию и денормализованные поля локально
func (s *Service) DownloadExam(ctx context.Context, id int64) (*DownloadedExam, error) {
	s.logger.Info("DownloadExam: collaborative exam id=%d", id)

	local, err := s.getLocal(ctx, "DownloadExam", id)
	if err != nil {
		return nil, err
	}

	remote, err := s.client.GetExam(ctx, local.ExternalRef)
	if err != nil {
		s.observe("get_exam", err)
		s.logger.Warn("DownloadExam: peer request for ref=%s failed: %v", local.ExternalRef, err)
		return nil, mapPeerError("DownloadExam", err)
	}
	s.observe("get_exam", nil)

	applyRemote(local, remote)
	if err := s.repo.UpdateFromPeer(ctx, local); err != nil {
		s.logger.Error("DownloadExam: failed to store revision for id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: DownloadExam - store revision: %v", ErrInternal, err)
	}

	s.logger.Info("DownloadExam: id=%d ref=%s stored revision=%s", id, local.ExternalRef, local.Revision)
	return &DownloadedExam{Exam: local, Content: remote.Content}, nil
}

// UploadExam отправляет новое содержимое с последней известной ревизией.
// При конфликте ревизий локальная ревизия не меняется. При успехе новая ревизия
// сохраняется сравнением-с-обменом со старой.
func (s *Service) UploadExam(ctx context.Context, id int64, content json.RawMessage) (*domain.CollaborativeExam, error) {
	s.logger.Info("UploadExam: collaborative exam id=%d", id)

	if len(content) == 0 || !json.Valid(content) {
		return nil, fmt.Errorf("%w: content must be a valid JSON document", ErrInvalidInput)
	}

	local, err := s.getLocal(ctx, "UploadExam", id)
	if err != nil {
		return nil, err
	}

	oldRevision := local.Revision
	newRevision, err := s.client.UpdateExam(ctx, local.ExternalRef, oldRevision, content)
	if err != nil {
		s.observe("update_exam", err)
		if errors.Is(err, xm.ErrRevisionConflict) {
			s.logger.Warn("UploadExam: revision conflict for id=%d rev=%s", id, oldRevision)
			return nil, ErrRevisionConflict
		}
		s.logger.Warn("UploadExam: peer request for ref=%s failed: %v", local.ExternalRef, err)
		return nil, mapPeerError("UploadExam", err)
	}
	s.observe("update_exam", nil)

	swapped, err := s.repo.CompareAndSwapRevision(ctx, id, oldRevision, newRevision)
	if err != nil {
		s.logger.Error("UploadExam: failed to store revision for id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: UploadExam - store revision: %v", ErrInternal, err)
	}
	if !swapped {
		s.logger.Warn("UploadExam: local revision of id=%d changed concurrently, peer revision=%s", id, newRevision)
		return nil, ErrRevisionConflict
	}

	local.Revision = newRevision
	s.logger.Info("UploadExam: id=%d revision %s -> %s", id, oldRevision, newRevision)
	return local, nil
}

// CancelExternalReservation отменяет бронирование у пира
func (s *Service) CancelExternalReservation(ctx context.Context, ref string) error {
	s.logger.Info("CancelExternalReservation: ref=%s", ref)

	err := s.client.CancelReservation(ctx, ref)
	s.observe("cancel_reservation", err)
	if err != nil {
		if errors.Is(err, xm.ErrReservationNotFound) {
			// у пира бронирования уже нет
			return nil
		}
		s.logger.Warn("CancelExternalReservation: ref=%s failed: %v", ref, err)
		return mapPeerError("CancelExternalReservation", err)
	}
	return nil
}

func (s *Service) getLocal(ctx context.Context, op string, id int64) (*domain.CollaborativeExam, error) {
	local, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, collaborativeRepo.ErrExamNotFound) {
			s.logger.Warn("%s: collaborative exam id=%d not found", op, id)
			return nil, ErrExamNotFound
		}
		s.logger.Error("%s: repository error for id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return local, nil
}

func (s *Service) observe(operation string, err error) {
	if s.metrics == nil {
		return
	}
	result := resultOK
	switch {
	case err == nil:
	case errors.Is(err, xm.ErrRevisionConflict):
		result = resultConflict
	case errors.Is(err, xm.ErrExamNotFound), errors.Is(err, xm.ErrReservationNotFound):
		result = resultNotFound
	case errors.Is(err, xm.ErrPeerUnavailable):
		result = resultUnavailable
	default:
		result = resultError
	}
	s.metrics.ObservePeerRequest(operation, result)
}

func mapPeerError(op string, err error) error {
	switch {
	case errors.Is(err, xm.ErrExamNotFound):
		return ErrExamNotFound
	case errors.Is(err, xm.ErrPeerUnavailable):
		return fmt.Errorf("%w: %s: %v", ErrPeerUnavailable, op, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrUnexpectedStatus, op, err)
	}
}

func applyRemote(local *domain.CollaborativeExam, remote *xm.Exam) {
	local.Revision = remote.Rev
	local.Name = remote.Name
	if remote.State != "" {
		local.State = domain.ExamState(remote.State)
	}
	if remote.PeriodStart != nil {
		local.PeriodStart = *remote.PeriodStart
	}
	if remote.PeriodEnd != nil {
		local.PeriodEnd = *remote.PeriodEnd
	}
	local.Hash = remote.Hash
	if remote.ExecutionType != "" {
		local.ExecutionType = domain.ExecutionType(remote.ExecutionType)
	}
	local.TrialCount = remote.TrialCount
	local.DurationMinutes = remote.Duration
	local.Organisations = remote.Organisations
}
