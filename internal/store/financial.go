package store

import (
	"context"
	"time"

	"crm-backend/internal/models"
	"crm-backend/internal/paging"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const entityTransaction = "Transaction"

type TransactionFilter struct {
	Type      models.TransactionType
	Bank      string
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
}

type TransactionSummary struct {
	TotalCredit decimal.Decimal `json:"total_credit"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	Net         decimal.Decimal `json:"net"`
	Count       int64           `json:"count"`
}

type FinancialStore struct {
	db *gorm.DB
}

func NewFinancialStore(db *gorm.DB) *FinancialStore {
	return &FinancialStore{db: db}
}

func (s *FinancialStore) filtered(ctx context.Context, f TransactionFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.FinancialTransaction{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Bank != "" {
		q = q.Where("bank ILIKE ?", likePattern(f.Bank))
	}
	if f.Search != "" {
		q = q.Where("description ILIKE ?", likePattern(f.Search))
	}
	if f.StartDate != nil {
		q = q.Where("transaction_date >= ?", f.StartDate.Format(models.DateLayout))
	}
	if f.EndDate != nil {
		q = q.Where("transaction_date <= ?", f.EndDate.Format(models.DateLayout))
	}
	return q
}

func (s *FinancialStore) List(ctx context.Context, f TransactionFilter, p paging.Params) ([]models.FinancialTransaction, int64, error) {
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, translate(err, entityTransaction, "count")
	}

	var txs []models.FinancialTransaction
	err := s.filtered(ctx, f).
		Order("transaction_date DESC, id DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&txs).Error
	if err != nil {
		return nil, 0, translate(err, entityTransaction, "list")
	}
	return txs, total, nil
}

func (s *FinancialStore) Summary(ctx context.Context, f TransactionFilter) (*TransactionSummary, error) {
	var row struct {
		TotalCredit decimal.Decimal
		TotalDebit  decimal.Decimal
		Count       int64
	}
	err := s.filtered(ctx, f).
		Select(`COALESCE(SUM(CASE WHEN type = ? THEN amount END), 0) AS total_credit,
			COALESCE(SUM(CASE WHEN type = ? THEN amount END), 0) AS total_debit,
			COUNT(*) AS count`, models.TransactionCredit, models.TransactionDebit).
		Scan(&row).Error
	if err != nil {
		return nil, translate(err, entityTransaction, "summarize")
	}
	return &TransactionSummary{
		TotalCredit: row.TotalCredit,
		TotalDebit:  row.TotalDebit,
		Net:         row.TotalCredit.Sub(row.TotalDebit),
		Count:       row.Count,
	}, nil
}

func (s *FinancialStore) FindByID(ctx context.Context, id uint) (*models.FinancialTransaction, error) {
	var t models.FinancialTransaction
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, translate(err, entityTransaction, "find")
	}
	return &t, nil
}

func (s *FinancialStore) Create(ctx context.Context, t *models.FinancialTransaction) error {
	return translate(s.db.WithContext(ctx).Create(t).Error, entityTransaction, "create")
}

// CreateBatch inserts all rows in one transaction; either every row is
// stored or none is.
func (s *FinancialStore) CreateBatch(ctx context.Context, txs []models.FinancialTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(txs, 200).Error
	})
	return translate(err, entityTransaction, "import")
}

func (s *FinancialStore) Update(ctx context.Context, t *models.FinancialTransaction) error {
	return translate(s.db.WithContext(ctx).Save(t).Error, entityTransaction, "update")
}

func (s *FinancialStore) Delete(ctx context.Context, id uint) error {
	return deleted(s.db.WithContext(ctx).Delete(&models.FinancialTransaction{}, id), entityTransaction)
}
