package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/riteshkumar/account-ledger/internal/models"
)

type AuditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	GetByEntityID(ctx context.Context, entityType, entityID string) ([]*models.AuditLog, error)
}

type MemoryAuditRepository struct {
	mu   sync.RWMutex
	logs []*models.AuditLog
	now  func() time.Time
}

func NewAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{now: time.Now}
}

// Create appends a new audit log entry, assigning its id and timestamp.
func (r *MemoryAuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log.ID = uuid.New().String()
	log.CreatedAt = r.now()

	entry := *log
	r.logs = append(r.logs, &entry)
	return nil
}

// GetByEntityID retrieves audit logs for a specific entity type and ID,
// newest first.
func (r *MemoryAuditRepository) GetByEntityID(ctx context.Context, entityType, entityID string) ([]*models.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	logs := make([]*models.AuditLog, 0)
	for i := len(r.logs) - 1; i >= 0; i-- {
		l := r.logs[i]
		if l.EntityType == entityType && l.EntityID == entityID {
			entry := *l
			logs = append(logs, &entry)
		}
	}
	return logs, nil
}
