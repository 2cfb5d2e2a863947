// Package scheduler runs the service's recurring maintenance jobs on
// cron schedules: expired session purging (with audit trail retention),
// stale approval expiry, and connection pool stats collection.
package scheduler

import (
	"context"
	"database/sql"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/gadaihub/backoffice/pkg/auth"
	"github.com/gadaihub/backoffice/pkg/config"
	"github.com/gadaihub/backoffice/pkg/observability"
)

// Scheduler owns the cron runner and the jobs registered on it.
type Scheduler struct {
	cron    *cron.Cron
	db      *sql.DB
	auth    *auth.Service
	cfg     config.SchedulerConfig
	metrics *observability.Metrics
	log     *logrus.Entry
}

// New creates a scheduler with the standard job set registered.
// metrics may be nil.
func New(db *sql.DB, authService *auth.Service, cfg config.SchedulerConfig, metrics *observability.Metrics) (*Scheduler, error) {
	log := logrus.WithField("component", "scheduler")

	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(log)))),
		db:      db,
		auth:    authService,
		cfg:     cfg,
		metrics: metrics,
		log:     log,
	}

	if _, err := s.cron.AddFunc(cfg.SessionPurgeSpec, s.job("session_purge", s.purgeSessions)); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(cfg.StaleApprovalSpec, s.job("stale_approvals", s.expireStaleApprovals)); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(cfg.DBStatsSpec, s.job("db_stats", s.collectDBStats)); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running jobs on their schedules.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// job wraps a run function with logging and run metrics.
func (s *Scheduler) job(name string, run func(context.Context) error) func() {
	return func() {
		start := time.Now()
		err := run(context.Background())
		elapsed := time.Since(start)

		status := "ok"
		if err != nil {
			status = "error"
			s.log.WithError(err).WithField("job", name).Error("scheduled job failed")
		}
		if s.metrics != nil {
			s.metrics.SchedulerJobRunsTotal.WithLabelValues(name, status).Inc()
			s.metrics.SchedulerJobDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		}
	}
}

func (s *Scheduler) purgeSessions(ctx context.Context) error {
	purged, err := s.auth.PurgeExpiredSessions(ctx)
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.SessionsPurgedTotal.Add(float64(purged))
	}
	if purged > 0 {
		s.log.WithField("purged", purged).Info("removed expired sessions")
	}

	if s.cfg.AuditRetention > 0 {
		result, err := s.db.ExecContext(ctx,
			`DELETE FROM audit_events WHERE occurred_at < $1`,
			time.Now().Add(-s.cfg.AuditRetention))
		if err != nil {
			return err
		}
		if removed, _ := result.RowsAffected(); removed > 0 {
			s.log.WithField("removed", removed).Info("trimmed audit trail past retention")
		}
	}
	return nil
}

// expireStaleApprovals rejects approval requests that sat pending past
// the configured window, so queues do not accumulate dead submissions.
func (s *Scheduler) expireStaleApprovals(ctx context.Context) error {
	cutoff := time.Now().Add(-s.cfg.StaleApprovalMaxAge)
	reason := "expired: not reviewed within the approval window"

	expired, err := s.expireTable(ctx, `
		UPDATE capital_topups
		SET status = 'rejected', rejected_at = NOW(), rejection_reason = $2, updated_at = NOW()
		WHERE status = 'pending' AND created_at < $1`, cutoff, reason)
	if err != nil {
		return err
	}

	n, err := s.expireTable(ctx, `
		UPDATE cash_deposits
		SET status = 'rejected', rejected_at = NOW(), rejection_reason = $2, updated_at = NOW()
		WHERE status = 'pending' AND created_at < $1`, cutoff, reason)
	if err != nil {
		return err
	}
	expired += n

	n, err = s.expireTable(ctx, `
		UPDATE auction_batches
		SET status = 'rejected', validated_at = NOW(), rejection_reason = $2, updated_at = NOW()
		WHERE status = 'pending_validation' AND submitted_at < $1`, cutoff, reason)
	if err != nil {
		return err
	}
	expired += n

	if expired > 0 {
		s.log.WithField("expired", expired).Info("rejected stale pending approvals")
	}
	return nil
}

func (s *Scheduler) expireTable(ctx context.Context, query string, cutoff time.Time, reason string) (int64, error) {
	result, err := s.db.ExecContext(ctx, query, cutoff, reason)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *Scheduler) collectDBStats(context.Context) error {
	if s.metrics != nil {
		s.metrics.ObserveDBStats(s.db.Stats())
	}
	return nil
}
