package audit

import (
	"context"
	"encoding/json"

	"crm-backend/internal/models"

	log "github.com/sirupsen/logrus"
)

// Entry describes one change to a CRUD entity.
type Entry struct {
	User        *models.User
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// Recorder stores audit entries. Recording never fails the request that
// triggered it.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

type LogStore interface {
	Create(ctx context.Context, l *models.AuditLog) error
}

type Service struct {
	store  LogStore
	logger *log.Logger
}

func NewService(store LogStore, logger *log.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) Record(ctx context.Context, e Entry) {
	entry := models.AuditLog{
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		Action:      e.Action,
		Description: e.Description,
		// jsonb rejects empty strings, "null" is the absent value
		BeforeData: snapshot(e.Before),
		AfterData:  snapshot(e.After),
	}
	if e.User != nil {
		entry.UserID = e.User.ID
		entry.UserName = e.User.Name
	}

	if err := s.store.Create(ctx, &entry); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"entity_type": e.EntityType,
			"entity_id":   e.EntityID,
			"action":      e.Action,
		}).Warn("audit log could not be written")
	}
}

func snapshot(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// Nop discards every entry.
type Nop struct{}

func (Nop) Record(context.Context, Entry) {}
