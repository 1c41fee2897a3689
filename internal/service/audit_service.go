package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/safetrack/incident-api/internal/models"
	"github.com/safetrack/incident-api/pkg/jobs"
)

// AuditService persists audit log entries off the request path through a
// buffered worker queue. CreateAuditLog only enqueues; a dropped entry is
// logged, never surfaced to the caller.
type AuditService struct {
	store  auditLogger
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAuditService constructs an AuditService writing through the given store.
func NewAuditService(store auditLogger, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &AuditService{store: store, logger: logger}
	s.queue = jobs.NewQueue("audit", s.persist, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 64,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		Logger:     logger,
	})
	return s
}

// Start launches the queue workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *AuditService) Stop() {
	s.queue.Stop()
}

// CreateAuditLog enqueues the entry for asynchronous persistence.
func (s *AuditService) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	if err := s.queue.Enqueue(jobs.Job{ID: log.ID, Type: log.Action, Payload: log}); err != nil {
		s.logger.Warn("failed to enqueue audit log", zap.String("action", log.Action), zap.Error(err))
	}
	return nil
}

func (s *AuditService) persist(ctx context.Context, job jobs.Job) error {
	log, ok := job.Payload.(*models.AuditLog)
	if !ok {
		s.logger.Warn("unexpected audit job payload", zap.String("job_id", job.ID))
		return nil
	}
	return s.store.CreateAuditLog(ctx, log)
}
