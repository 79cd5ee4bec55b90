package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/degree-audit-api/internal/dto"
	"github.com/noah-isme/degree-audit-api/internal/migrate"
	"github.com/noah-isme/degree-audit-api/internal/models"
	"github.com/noah-isme/degree-audit-api/internal/repository"
	appErrors "github.com/noah-isme/degree-audit-api/pkg/errors"
	"github.com/noah-isme/degree-audit-api/pkg/jobs"
)

type fakeAuditCaller struct {
	mu      sync.Mutex
	calls   int
	reports []json.RawMessage
	err     error
	seen    models.Transcript
}

func (f *fakeAuditCaller) Audit(_ context.Context, transcript models.Transcript) ([]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.seen = transcript
	return f.reports, f.err
}

type capturingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *capturingQueue) Enqueue(job jobs.Job) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.jobs = append(q.jobs, job)
	return "job-1", nil
}

func newAuditFixture(t *testing.T, caller *fakeAuditCaller, cache *CacheService) (*AuditService, *repository.SessionRepository, *capturingQueue, string) {
	t.Helper()
	ctx := context.Background()
	store := repository.NewSessionRepository()
	session, err := store.Create(ctx)
	require.NoError(t, err)
	_, err = store.Update(ctx, session.ID, func(s *models.Session) error {
		s.Transcript = models.Transcript{
			ProgramTitles: []string{"", "Computer Science Major Concentration (B.A.)"},
			Courses:       sampleTranscript().Courses,
		}
		return nil
	})
	require.NoError(t, err)

	svc := NewAuditService(store, caller, migrate.New(migrate.Options{EnforceFailingCredit: true}), cache, NewMetricsService(), nil, AuditServiceConfig{})
	queue := &capturingQueue{}
	svc.queue = queue
	return svc, store, queue, session.ID
}

func legacyReports() []json.RawMessage {
	return []json.RawMessage{json.RawMessage(`{"name":"Computer Science Major Concentration (B.A.)","block_type":"PROGRAM","courses":[["COMP","206","3"]],"blocks":[]}`)}
}

func TestAuditSubmitAndComplete(t *testing.T) {
	ctx := context.Background()
	caller := &fakeAuditCaller{reports: legacyReports()}
	svc, store, queue, id := newAuditFixture(t, caller, nil)

	view, err := svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, &dto.AuditStatusView{SessionID: id, JobID: "job-1", AuditStatus: models.AuditStatusRunning}, view)

	_, err = svc.Submit(ctx, id)
	assert.True(t, appErrors.Is(err, appErrors.ErrAuditInFlight))

	require.Len(t, queue.jobs, 1)
	require.NoError(t, svc.handle(ctx, queue.jobs[0]))
	assert.Equal(t, []string{"Computer Science Major Concentration (B.A.)"}, caller.seen.ProgramTitles)

	session, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.AuditStatusIdle, session.AuditStatus)
	require.Len(t, session.Reports, 1)
	assert.Equal(t, models.Course{SubjectCode: "COMP", CourseCode: "206", Grade: models.GradeA, Credit: 3}, session.Reports[0].Courses[0])
	assert.Len(t, session.Renames, 1)
}

func TestAuditSubmitValidation(t *testing.T) {
	ctx := context.Background()
	svc, store, _, id := newAuditFixture(t, &fakeAuditCaller{}, nil)

	_, err := store.Update(ctx, id, func(s *models.Session) error {
		s.Transcript.Courses = nil
		return nil
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, id)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = store.Update(ctx, id, func(s *models.Session) error {
		s.Transcript = models.Transcript{ProgramTitles: []string{" "}, Courses: sampleTranscript().Courses}
		return nil
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, id)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	session, _ := store.Get(ctx, id)
	assert.Equal(t, models.AuditStatusIdle, session.AuditStatus)
}

func TestAuditFailureKeepsReports(t *testing.T) {
	ctx := context.Background()
	caller := &fakeAuditCaller{err: appErrors.Clone(appErrors.ErrAuditFailed, "HTTP error! status: 500")}
	svc, store, queue, id := newAuditFixture(t, caller, nil)
	_, err := store.Update(ctx, id, func(s *models.Session) error {
		s.ReplaceReports([]*models.Report{models.NewBlock()})
		return nil
	})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.Error(t, svc.handle(ctx, queue.jobs[0]))

	session, _ := store.Get(ctx, id)
	assert.Equal(t, models.AuditStatusFailed, session.AuditStatus)
	assert.Equal(t, "HTTP error! status: 500", session.AuditError)
	assert.Len(t, session.Reports, 1)

	caller.err = nil
	caller.reports = legacyReports()
	_, err = svc.Submit(ctx, id)
	require.NoError(t, err)
	session, _ = store.Get(ctx, id)
	assert.Empty(t, session.AuditError)
}

func TestAuditEnqueueFailureMarksFailed(t *testing.T) {
	ctx := context.Background()
	svc, store, queue, id := newAuditFixture(t, &fakeAuditCaller{}, nil)
	queue.err = errors.New("queue full")

	_, err := svc.Submit(ctx, id)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
	session, _ := store.Get(ctx, id)
	assert.Equal(t, models.AuditStatusFailed, session.AuditStatus)
}

func TestAuditUsesCache(t *testing.T) {
	ctx := context.Background()
	caller := &fakeAuditCaller{reports: legacyReports()}
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil, true)
	svc, _, queue, id := newAuditFixture(t, caller, cache)

	for i := 0; i < 2; i++ {
		_, err := svc.Submit(ctx, id)
		require.NoError(t, err)
		require.NoError(t, svc.handle(ctx, queue.jobs[i]))
	}
	assert.Equal(t, 1, caller.calls)
}

func TestAuditInvalidResponse(t *testing.T) {
	ctx := context.Background()
	caller := &fakeAuditCaller{reports: []json.RawMessage{json.RawMessage(`"not a report"`)}}
	svc, store, queue, id := newAuditFixture(t, caller, nil)

	_, err := svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.Error(t, svc.handle(ctx, queue.jobs[0]))
	session, _ := store.Get(ctx, id)
	assert.Equal(t, "invalid audit response", session.AuditError)
}

func TestAuditQueueEndToEnd(t *testing.T) {
	ctx := context.Background()
	caller := &fakeAuditCaller{reports: legacyReports()}
	svc, store, _, id := newAuditFixture(t, caller, nil)
	svc.queue = svc.worker
	svc.Start(ctx)
	defer svc.Stop()

	_, err := svc.Submit(ctx, id)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		session, err := store.Get(ctx, id)
		return err == nil && session.AuditStatus == models.AuditStatusIdle && len(session.Reports) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
