package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper bundles the retention sweeps. It owns no schedule of its own;
// an external trigger (the main ticker, or the admin endpoint) invokes
// Run, and every sweep is delete-where-expired, so concurrent runs are
// harmless and a second pass removes nothing extra.
type Sweeper struct {
	attempts AttemptLedger
	sessions *SessionStore
	audit    *AuditStore
	lg       *zap.SugaredLogger

	attemptHorizon time.Duration
	auditHorizon   time.Duration
}

type SweepResult struct {
	Sessions int64 `json:"sessions"`
	Attempts int64 `json:"attempts"`
	Audit    int64 `json:"audit"`
}

func NewSweeper(attempts AttemptLedger, sessions *SessionStore, audit *AuditStore,
	lg *zap.SugaredLogger, attemptHorizon, auditHorizon time.Duration) *Sweeper {
	return &Sweeper{
		attempts: attempts, sessions: sessions, audit: audit, lg: lg,
		attemptHorizon: attemptHorizon, auditHorizon: auditHorizon,
	}
}

func (s *Sweeper) Run(ctx context.Context) SweepResult {
	var res SweepResult
	var err error
	if res.Sessions, err = s.sessions.PurgeExpired(ctx); err != nil {
		s.lg.Errorw("session sweep", "error", err)
	}
	if res.Attempts, err = s.attempts.PurgeOlderThan(ctx, s.attemptHorizon); err != nil {
		s.lg.Errorw("attempt sweep", "error", err)
	}
	if res.Audit, err = s.audit.PurgeOlderThan(ctx, s.auditHorizon); err != nil {
		s.lg.Errorw("audit sweep", "error", err)
	}
	s.lg.Infow("retention sweep",
		"sessions", res.Sessions, "attempts", res.Attempts, "audit", res.Audit)
	return res
}
