package store

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LabelCount is one row of a GROUP BY count.
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type DashboardCounts struct {
	Customers      int64 `json:"customers"`
	Cards          int64 `json:"cards"`
	Claims         int64 `json:"claims"`
	Camps          int64 `json:"camps"`
	ClientServices int64 `json:"client_services"`
	Meeseva        int64 `json:"meeseva"`
}

type FinanceTotals struct {
	TotalCredit decimal.Decimal `json:"total_credit"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	Net         decimal.Decimal `json:"net"`
}

type DashboardStore struct {
	db *gorm.DB
}

func NewDashboardStore(db *gorm.DB) *DashboardStore {
	return &DashboardStore{db: db}
}

func (s *DashboardStore) Counts(ctx context.Context) (*DashboardCounts, error) {
	var out DashboardCounts
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM customers)       AS customers,
			(SELECT COUNT(*) FROM cards)           AS cards,
			(SELECT COUNT(*) FROM claims)          AS claims,
			(SELECT COUNT(*) FROM camps)           AS camps,
			(SELECT COUNT(*) FROM client_services) AS client_services,
			(SELECT COUNT(*) FROM meeseva)         AS meeseva
	`).Scan(&out).Error
	if err != nil {
		return nil, translate(err, "Dashboard", "count")
	}
	return &out, nil
}

// GroupCount counts rows of table grouped by column. Both names come from
// callers in this module, never from request input.
func (s *DashboardStore) GroupCount(ctx context.Context, table, column string) ([]LabelCount, error) {
	var rows []LabelCount
	err := s.db.WithContext(ctx).
		Table(table).
		Select(column + " AS label, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "Dashboard", "group")
	}
	if rows == nil {
		rows = []LabelCount{}
	}
	return rows, nil
}

func (s *DashboardStore) FinanceTotals(ctx context.Context) (*FinanceTotals, error) {
	var row struct {
		TotalCredit decimal.Decimal
		TotalDebit  decimal.Decimal
	}
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(CASE WHEN type = 'Credit' THEN amount END), 0) AS total_credit,
			COALESCE(SUM(CASE WHEN type = 'Debit' THEN amount END), 0)  AS total_debit
		FROM financial_transactions
	`).Scan(&row).Error
	if err != nil {
		return nil, translate(err, "Dashboard", "sum")
	}
	return &FinanceTotals{
		TotalCredit: row.TotalCredit,
		TotalDebit:  row.TotalDebit,
		Net:         row.TotalCredit.Sub(row.TotalDebit),
	}, nil
}
