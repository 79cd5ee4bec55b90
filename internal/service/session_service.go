package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/degree-audit-api/internal/models"
)

// sessionStore is the persistence contract shared by every session scoped service.
type sessionStore interface {
	Create(ctx context.Context) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Update(ctx context.Context, id string, fn func(*models.Session) error) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error)
	Count() int
}

type tokenIssuer interface {
	Issue(sessionID string) (string, time.Time, error)
}

// SessionServiceConfig governs idle expiry.
type SessionServiceConfig struct {
	IdleTTL         time.Duration
	CleanupInterval time.Duration
}

// SessionService opens, reads and expires editing sessions.
type SessionService struct {
	store   sessionStore
	tokens  tokenIssuer
	metrics *MetricsService
	logger  *zap.Logger
	cfg     SessionServiceConfig
	now     func() time.Time
}

// NewSessionService constructs the session service.
func NewSessionService(store sessionStore, tokens tokenIssuer, metrics *MetricsService, logger *zap.Logger, cfg SessionServiceConfig) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 2 * time.Hour
	}
	return &SessionService{
		store:   store,
		tokens:  tokens,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a session and issues its bearer token.
func (s *SessionService) Create(ctx context.Context) (*models.SessionToken, error) {
	session, err := s.store.Create(ctx)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.tokens.Issue(session.ID)
	if err != nil {
		_ = s.store.Delete(ctx, session.ID)
		return nil, err
	}
	s.metrics.SetActiveSessions(s.store.Count())
	s.logger.Info("session created", zap.String("session_id", session.ID))
	return &models.SessionToken{ID: session.ID, Token: token, ExpiresAt: expiresAt}, nil
}

// Get returns a snapshot of the session.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	return s.store.Get(ctx, id)
}

// Delete discards the session.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.SetActiveSessions(s.store.Count())
	s.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}

// StartCleanup boots a goroutine that purges idle sessions periodically.
func (s *SessionService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupIdle(ctx)
			}
		}
	}()
}

func (s *SessionService) cleanupIdle(ctx context.Context) int {
	removed, err := s.store.DeleteIdleSince(ctx, s.now().Add(-s.cfg.IdleTTL))
	if err != nil {
		s.logger.Sugar().Warnw("session cleanup failed", "error", err)
		return 0
	}
	if removed > 0 {
		s.logger.Sugar().Infow("idle sessions purged", "count", removed)
	}
	s.metrics.SetActiveSessions(s.store.Count())
	return removed
}
