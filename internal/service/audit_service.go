package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/degree-audit-api/internal/dto"
	"github.com/noah-isme/degree-audit-api/internal/models"
	appErrors "github.com/noah-isme/degree-audit-api/pkg/errors"
	"github.com/noah-isme/degree-audit-api/pkg/jobs"
)

const auditJobType = "audit"

type auditCaller interface {
	Audit(ctx context.Context, transcript models.Transcript) ([]json.RawMessage, error)
}

type rawReportNormalizer interface {
	RawReports(raws []json.RawMessage) ([]*models.Report, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) (string, error)
}

// AuditServiceConfig tunes the audit worker pool and response cache.
type AuditServiceConfig struct {
	Workers  int
	CacheTTL time.Duration
}

type auditPayload struct {
	SessionID  string
	Transcript models.Transcript
}

// AuditService submits transcripts to the remote audit and stores the
// normalised reports on the session. A session runs at most one audit at a time.
type AuditService struct {
	store      sessionStore
	client     auditCaller
	normalizer rawReportNormalizer
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
	cfg        AuditServiceConfig

	worker *jobs.Queue
	queue  jobDispatcher
}

// NewAuditService constructs the audit service with its own job queue.
// Audit calls are never retried.
func NewAuditService(store sessionStore, client auditCaller, normalizer rawReportNormalizer, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg AuditServiceConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AuditService{
		store:      store,
		client:     client,
		normalizer: normalizer,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
	}
	svc.worker = jobs.NewQueue(auditJobType, svc.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: 0,
		Logger:     logger,
	})
	svc.queue = svc.worker
	return svc
}

// Start launches the audit workers.
func (s *AuditService) Start(ctx context.Context) {
	s.worker.Start(ctx)
}

// Stop waits for the audit workers to exit.
func (s *AuditService) Stop() {
	s.worker.Stop()
}

// Submit validates the session's transcript and queues an audit for it.
func (s *AuditService) Submit(ctx context.Context, sessionID string) (*dto.AuditStatusView, error) {
	var payload auditPayload
	_, err := s.store.Update(ctx, sessionID, func(session *models.Session) error {
		if session.AuditStatus == models.AuditStatusRunning {
			return appErrors.ErrAuditInFlight
		}
		programs := session.Transcript.SubmittedPrograms()
		if len(programs) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "Please add at least one program title")
		}
		if len(session.Transcript.Courses) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "Please add at least one course")
		}
		courses := make([]models.Course, len(session.Transcript.Courses))
		copy(courses, session.Transcript.Courses)
		payload = auditPayload{
			SessionID:  session.ID,
			Transcript: models.Transcript{ProgramTitles: programs, Courses: courses},
		}
		session.AuditStatus = models.AuditStatusRunning
		session.AuditError = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	jobID, err := s.queue.Enqueue(jobs.Job{Type: auditJobType, Payload: payload})
	if err != nil {
		s.logger.Error("enqueue audit", zap.String("session_id", sessionID), zap.Error(err))
		s.finish(ctx, sessionID, nil, "audit queue unavailable")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "audit queue unavailable")
	}

	return &dto.AuditStatusView{SessionID: sessionID, JobID: jobID, AuditStatus: models.AuditStatusRunning}, nil
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(auditPayload)
	if !ok {
		return fmt.Errorf("unexpected audit payload %T", job.Payload)
	}

	reports, err := s.run(ctx, payload.Transcript)
	if err != nil {
		s.finish(ctx, payload.SessionID, nil, appErrors.FromError(err).Message)
		return err
	}
	s.finish(ctx, payload.SessionID, reports, "")
	return nil
}

func (s *AuditService) run(ctx context.Context, transcript models.Transcript) ([]*models.Report, error) {
	key, keyErr := cacheKey(transcript)
	var raws []json.RawMessage
	if keyErr != nil || !s.cache.Get(ctx, key, &raws) {
		start := time.Now()
		fetched, err := s.client.Audit(ctx, transcript)
		s.metrics.ObserveAudit(err == nil, time.Since(start))
		if err != nil {
			return nil, err
		}
		raws = fetched
		if keyErr == nil {
			s.cache.Set(ctx, key, raws, s.cfg.CacheTTL)
		}
	}

	reports, err := s.normalizer.RawReports(raws)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAuditFailed.Code, appErrors.ErrAuditFailed.Status, "invalid audit response")
	}
	return reports, nil
}

// finish records the audit outcome. A failed audit keeps the previous reports.
func (s *AuditService) finish(ctx context.Context, sessionID string, reports []*models.Report, failure string) {
	_, err := s.store.Update(context.WithoutCancel(ctx), sessionID, func(session *models.Session) error {
		if failure != "" {
			session.AuditStatus = models.AuditStatusFailed
			session.AuditError = failure
			return nil
		}
		session.ReplaceReports(reports)
		session.AuditStatus = models.AuditStatusIdle
		session.AuditError = ""
		return nil
	})
	if err != nil {
		s.logger.Warn("audit finished for missing session", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	if failure != "" {
		s.logger.Warn("audit failed", zap.String("session_id", sessionID), zap.String("error", failure))
		return
	}
	s.logger.Info("audit completed", zap.String("session_id", sessionID), zap.Int("reports", len(reports)))
}

func cacheKey(transcript models.Transcript) (string, error) {
	body, err := json.Marshal(transcript)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}
