package audit

import (
	"context"
	"errors"
	"io"
	"testing"

	"crm-backend/internal/models"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLogStore struct {
	logs []models.AuditLog
	err  error
}

func (m *memLogStore) Create(_ context.Context, l *models.AuditLog) error {
	if m.err != nil {
		return m.err
	}
	m.logs = append(m.logs, *l)
	return nil
}

func TestRecordSnapshots(t *testing.T) {
	st := &memLogStore{}
	logger := log.New()
	logger.SetOutput(io.Discard)
	svc := NewService(st, logger)

	svc.Record(context.Background(), Entry{
		User:       &models.User{ID: 4, Name: "Anil"},
		EntityType: "customer",
		EntityID:   12,
		Action:     models.AuditActionCreate,
		After:      map[string]any{"customer_name": "Ravi"},
	})

	require.Len(t, st.logs, 1)
	got := st.logs[0]
	assert.Equal(t, uint(4), got.UserID)
	assert.Equal(t, "Anil", got.UserName)
	assert.Equal(t, "null", got.BeforeData)
	assert.JSONEq(t, `{"customer_name":"Ravi"}`, got.AfterData)
}

func TestRecordFailureOnlyWarns(t *testing.T) {
	logger, hook := test.NewNullLogger()
	svc := NewService(&memLogStore{err: errors.New("db down")}, logger)

	svc.Record(context.Background(), Entry{EntityType: "camp", EntityID: 1, Action: models.AuditActionDelete})

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
}
