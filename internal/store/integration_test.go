package store

import (
	"context"
	"fmt"
	"os"
	"testing"

	"crm-backend/internal/apperr"
	"crm-backend/internal/models"
	"crm-backend/internal/paging"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB connects to DATABASE_DSN. Integration tests are opt-in:
// set DB_DSN_TEST=1 and point DATABASE_DSN at a throwaway database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	db, err := gorm.Open(postgres.Open(os.Getenv("DATABASE_DSN")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Customer{}, &models.Card{}, &models.Claim{},
		&models.ClientService{}, &models.ClientServiceItem{}, &models.ServicesDocument{},
		&models.Meeseva{},
	))
	require.NoError(t, db.Exec(`TRUNCATE services_documents, client_service_items, client_services,
		claims, cards, customers, meeseva RESTART IDENTITY CASCADE`).Error)
	return db
}

func TestCustomerDeleteTwice(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	customers := NewCustomerStore(db)

	c := &models.Customer{CustomerName: "Lakshmi", PendingAmount: decimal.RequireFromString("250.50")}
	require.NoError(t, customers.Create(ctx, c))

	got, err := customers.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lakshmi", got.CustomerName)
	assert.True(t, got.PendingAmount.Equal(decimal.RequireFromString("250.50")))

	require.NoError(t, customers.Delete(ctx, c.ID))
	err = customers.Delete(ctx, c.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSecondCardConflicts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	c := &models.Customer{CustomerName: "Ramesh"}
	require.NoError(t, NewCustomerStore(db).Create(ctx, c))

	cards := NewCardStore(db)
	require.NoError(t, cards.Create(ctx, &models.Card{CustomerID: c.ID, CardHolderName: "Ramesh"}))

	err := cards.Create(ctx, &models.Card{CustomerID: c.ID})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, "Customer already has a card", err.Error())
}

func TestClientServicePagination(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	services := NewClientServiceStore(db)

	for i := 0; i < 25; i++ {
		require.NoError(t, services.Create(ctx, &models.ClientService{
			EstablishmentName: fmt.Sprintf("Establishment %02d", i),
			MobileNumber:      "98480" + fmt.Sprintf("%05d", i),
		}))
	}

	p := paging.FromQuery("2", "10")
	rows, total, err := services.List(ctx, ClientServiceFilter{}, p)
	require.NoError(t, err)
	res := paging.NewResult(rows, total, p)
	assert.Len(t, res.Data, 10)
	assert.EqualValues(t, 25, res.TotalCount)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, 2, res.CurrentPage)

	rows, total, err = services.List(ctx, ClientServiceFilter{ServiceCount: "1"}, p)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Zero(t, total)
}

func TestClientServiceCreateWithItems(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	services := NewClientServiceStore(db)

	cs := &models.ClientService{
		EstablishmentName: "Sri Sai Traders",
		Services: []models.ClientServiceItem{
			{ServiceName: "GST Registration", ServiceStatus: models.ServicePending},
			{ServiceName: "Trade License", ServiceStatus: models.ServiceApproved},
		},
	}
	require.NoError(t, services.Create(ctx, cs))

	got, err := services.FindByID(ctx, cs.ID)
	require.NoError(t, err)
	require.Len(t, got.Services, 2)
	assert.Equal(t, "GST Registration", got.Services[0].ServiceName)

	docs, err := services.Delete(ctx, cs.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
