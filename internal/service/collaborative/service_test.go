package collaborative

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ExamBookingService/internal/domain"
	collaborativeRepo "github.com/m04kA/SMC-ExamBookingService/internal/infra/storage/collaborative"
	"github.com/m04kA/SMC-ExamBookingService/internal/integrations/xm"
	"github.com/m04kA/SMC-ExamBookingService/pkg/logger"
)

// memoryRepo прокси-записи в памяти с семантикой сравнения-с-обменом ревизии
type memoryRepo struct {
	mu    sync.Mutex
	exams map[int64]*domain.CollaborativeExam
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (*domain.CollaborativeExam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exam, ok := r.exams[id]
	if !ok {
		return nil, collaborativeRepo.ErrExamNotFound
	}
	copied := *exam
	return &copied, nil
}

func (r *memoryRepo) UpdateFromPeer(_ context.Context, exam *domain.CollaborativeExam) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *exam
	r.exams[exam.ID] = &copied
	return nil
}

func (r *memoryRepo) CompareAndSwapRevision(_ context.Context, id int64, oldRevision, newRevision string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exam, ok := r.exams[id]
	if !ok || exam.Revision != oldRevision {
		return false, nil
	}
	exam.Revision = newRevision
	return true, nil
}

func (r *memoryRepo) revision(id int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exams[id].Revision
}

type recordingMetrics struct {
	mu      sync.Mutex
	results []string
}

func (m *recordingMetrics) ObservePeerRequest(operation, result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, operation+":"+result)
}

// fakePeer хранилище пира с оптимистичной блокировкой по ревизии
type fakePeer struct {
	mu      sync.Mutex
	rev     string
	content json.RawMessage
	status  int
}

func (p *fakePeer) handler(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != 0 {
		w.WriteHeader(p.status)
		return
	}

	switch r.Method {
	case http.MethodGet:
		end := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
		_ = json.NewEncoder(w).Encode(xm.Exam{
			ID:            "ref-1",
			Rev:           p.rev,
			Name:          "Physics",
			State:         "PUBLISHED",
			PeriodEnd:     &end,
			ExecutionType: "PUBLIC",
			Duration:      90,
			Organisations: []string{"uni-a"},
			Content:       p.content,
		})
	case http.MethodPut:
		var req xm.UpdateExamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Rev != p.rev {
			w.WriteHeader(http.StatusConflict)
			return
		}
		p.rev = p.rev + "+"
		p.content = req.Content
		_ = json.NewEncoder(w).Encode(map[string]string{"rev": p.rev})
	case http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (p *fakePeer) set(rev string, status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rev != "" {
		p.rev = rev
	}
	p.status = status
}

func (p *fakePeer) currentContent() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.content)
}

type fixture struct {
	repo    *memoryRepo
	peer    *fakePeer
	metrics *recordingMetrics
	svc     *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: &memoryRepo{exams: map[int64]*domain.CollaborativeExam{
			1: {ID: 1, ExternalRef: "ref-1", Revision: "1-a", State: domain.ExamStatePublished},
		}},
		peer:    &fakePeer{rev: "1-a", content: json.RawMessage(`{"v":1}`)},
		metrics: &recordingMetrics{},
	}
	srv := httptest.NewServer(http.HandlerFunc(f.peer.handler))
	t.Cleanup(srv.Close)

	client := xm.NewClient(srv.URL, 2*time.Second, logger.Discard())
	f.svc = NewService(f.repo, client, f.metrics, logger.Discard())
	return f
}

func TestDownloadExam_StoresRevision(t *testing.T) {
	f := newFixture(t)
	f.peer.set("2-b", 0)

	downloaded, err := f.svc.DownloadExam(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "2-b", downloaded.Exam.Revision)
	assert.Equal(t, "Physics", downloaded.Exam.Name)
	assert.Equal(t, 90, downloaded.Exam.DurationMinutes)
	assert.Equal(t, []string{"uni-a"}, downloaded.Exam.Organisations)
	assert.JSONEq(t, `{"v":1}`, string(downloaded.Content))
	assert.Equal(t, "2-b", f.repo.revision(1))
	assert.Equal(t, []string{"get_exam:ok"}, f.metrics.results)

	projected := downloaded.Exam.ToExam()
	assert.True(t, projected.Collaborative)
	assert.True(t, projected.AllowsOrganisation("uni-a"))
}

func TestUploadExam_AdvancesRevision(t *testing.T) {
	f := newFixture(t)

	updated, err := f.svc.UploadExam(context.Background(), 1, json.RawMessage(`{"v":2}`))

	require.NoError(t, err)
	assert.Equal(t, "1-a+", updated.Revision)
	assert.Equal(t, "1-a+", f.repo.revision(1))
	assert.JSONEq(t, `{"v":2}`, f.peer.currentContent())
}

func TestUploadExam_StaleRevisionLeavesLocalRevision(t *testing.T) {
	f := newFixture(t)
	f.peer.set("5-z", 0)

	_, err := f.svc.UploadExam(context.Background(), 1, json.RawMessage(`{"v":2}`))

	assert.ErrorIs(t, err, ErrRevisionConflict)
	assert.Equal(t, "1-a", f.repo.revision(1))
	assert.JSONEq(t, `{"v":1}`, f.peer.currentContent())
	assert.Equal(t, []string{"update_exam:conflict"}, f.metrics.results)

	// после повторного скачивания загрузка проходит
	_, err = f.svc.DownloadExam(context.Background(), 1)
	require.NoError(t, err)
	updated, err := f.svc.UploadExam(context.Background(), 1, json.RawMessage(`{"v":2}`))
	require.NoError(t, err)
	assert.Equal(t, "5-z+", updated.Revision)
}

func TestUploadExam_InvalidContent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UploadExam(context.Background(), 1, json.RawMessage(`{`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.UploadExam(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_PeerErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.DownloadExam(context.Background(), 2)
	assert.ErrorIs(t, err, ErrExamNotFound, "unknown local proxy")

	f.peer.set("", http.StatusInternalServerError)
	_, err = f.svc.DownloadExam(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPeerUnavailable)
	assert.Equal(t, "1-a", f.repo.revision(1))

	f.peer.set("", http.StatusNotFound)
	_, err = f.svc.DownloadExam(context.Background(), 1)
	assert.ErrorIs(t, err, ErrExamNotFound)

	f.peer.set("", http.StatusTeapot)
	_, err = f.svc.UploadExam(context.Background(), 1, json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestCancelExternalReservation_UnknownRefIsCancelled(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.svc.CancelExternalReservation(context.Background(), "res-1"))
	assert.Equal(t, []string{"cancel_reservation:not_found"}, f.metrics.results)

	f.peer.set("", http.StatusBadGateway)
	assert.ErrorIs(t, f.svc.CancelExternalReservation(context.Background(), "res-1"), ErrPeerUnavailable)
}
