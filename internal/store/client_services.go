package store

import (
	"context"
	"time"

	"crm-backend/internal/apperr"
	"crm-backend/internal/models"
	"crm-backend/internal/paging"

	"gorm.io/gorm"
)

const (
	entityClientService = "Client service"
	entityServiceItem   = "Service"
)

// Service count buckets accepted by ClientServiceFilter.ServiceCount.
var ServiceCountBuckets = map[string]string{
	"0":    "COUNT(client_service_items.id) = 0",
	"1":    "COUNT(client_service_items.id) = 1",
	"2-5":  "COUNT(client_service_items.id) BETWEEN 2 AND 5",
	"6-10": "COUNT(client_service_items.id) BETWEEN 6 AND 10",
	"10+":  "COUNT(client_service_items.id) > 10",
}

type ClientServiceFilter struct {
	Search       string
	StartDate    *time.Time
	EndDate      *time.Time
	Phone        string
	ServiceCount string
}

type ClientServiceStore struct {
	db *gorm.DB
}

func NewClientServiceStore(db *gorm.DB) *ClientServiceStore {
	return &ClientServiceStore{db: db}
}

func (s *ClientServiceStore) filtered(ctx context.Context, f ClientServiceFilter) *gorm.DB {
	q := s.db.WithContext(ctx).
		Table("client_services").
		Select("client_services.*, COUNT(client_service_items.id) AS service_count").
		Joins("LEFT JOIN client_service_items ON client_service_items.client_service_id = client_services.id").
		Group("client_services.id")

	if f.Search != "" {
		like := likePattern(f.Search)
		q = q.Where("client_services.establishment_name ILIKE ? OR client_services.employer_name ILIKE ? OR client_services.email_id ILIKE ?",
			like, like, like)
	}
	if f.StartDate != nil {
		q = q.Where("client_services.created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("client_services.created_at < ?", dayAfter(*f.EndDate))
	}
	if f.Phone != "" {
		q = q.Where("client_services.mobile_number LIKE ?", prefixPattern(f.Phone))
	}
	if having, ok := ServiceCountBuckets[f.ServiceCount]; ok {
		q = q.Having(having)
	}
	return q
}

func (s *ClientServiceStore) List(ctx context.Context, f ClientServiceFilter, p paging.Params) ([]models.ClientServiceListItem, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Table("(?) AS filtered", s.filtered(ctx, f)).Count(&total).Error; err != nil {
		return nil, 0, translate(err, entityClientService, "count")
	}

	var items []models.ClientServiceListItem
	err := s.filtered(ctx, f).
		Order("client_services.created_at DESC, client_services.id DESC").
		Offset(p.Offset()).
		Limit(p.Limit).
		Scan(&items).Error
	if err != nil {
		return nil, 0, translate(err, entityClientService, "list")
	}
	return items, total, nil
}

// FindByID loads the establishment with its service items and their document counts.
func (s *ClientServiceStore) FindByID(ctx context.Context, id uint) (*models.ClientService, error) {
	var cs models.ClientService
	if err := s.db.WithContext(ctx).First(&cs, id).Error; err != nil {
		return nil, translate(err, entityClientService, "find")
	}

	err := s.db.WithContext(ctx).
		Model(&models.ClientServiceItem{}).
		Select(`client_service_items.*,
			(SELECT COUNT(*) FROM services_documents WHERE services_documents.service_id = client_service_items.id) AS document_count`).
		Where("client_service_items.client_service_id = ?", id).
		Order("client_service_items.created_at ASC, client_service_items.id ASC").
		Find(&cs.Services).Error
	if err != nil {
		return nil, translate(err, entityServiceItem, "list")
	}
	if cs.Services == nil {
		cs.Services = []models.ClientServiceItem{}
	}
	return &cs, nil
}

// Create inserts the establishment and its items in one transaction.
func (s *ClientServiceStore) Create(ctx context.Context, cs *models.ClientService) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := cs.Services
		cs.Services = nil
		if err := tx.Omit("Services").Create(cs).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ClientServiceID = cs.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		cs.Services = items
		return nil
	})
	return translate(err, entityClientService, "create")
}

func (s *ClientServiceStore) Update(ctx context.Context, cs *models.ClientService) error {
	return translate(s.db.WithContext(ctx).Omit("Services").Save(cs).Error, entityClientService, "update")
}

// Delete removes the establishment and returns the documents that were
// attached to its items, so the caller can clean up stored files.
func (s *ClientServiceStore) Delete(ctx context.Context, id uint) ([]models.ServicesDocument, error) {
	var docs []models.ServicesDocument
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Joins("JOIN client_service_items ON client_service_items.id = services_documents.service_id").
			Where("client_service_items.client_service_id = ?", id).
			Find(&docs).Error; err != nil {
			return err
		}
		return deleted(tx.Delete(&models.ClientService{}, id), entityClientService)
	})
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		return nil, translate(err, entityClientService, "delete")
	}
	return docs, nil
}

func (s *ClientServiceStore) FindItem(ctx context.Context, id uint) (*models.ClientServiceItem, error) {
	var item models.ClientServiceItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, translate(err, entityServiceItem, "find")
	}
	return &item, nil
}

func (s *ClientServiceStore) CreateItem(ctx context.Context, item *models.ClientServiceItem) error {
	return translate(s.db.WithContext(ctx).Create(item).Error, entityServiceItem, "create")
}

func (s *ClientServiceStore) UpdateItem(ctx context.Context, item *models.ClientServiceItem) error {
	return translate(s.db.WithContext(ctx).Save(item).Error, entityServiceItem, "update")
}

func (s *ClientServiceStore) UpdateItemStatus(ctx context.Context, id uint, status models.ServiceStatus) error {
	res := s.db.WithContext(ctx).Model(&models.ClientServiceItem{}).Where("id = ?", id).Update("service_status", status)
	if res.Error != nil {
		return translate(res.Error, entityServiceItem, "update")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(entityServiceItem)
	}
	return nil
}

// DeleteItem removes one service item and returns its documents.
func (s *ClientServiceStore) DeleteItem(ctx context.Context, id uint) ([]models.ServicesDocument, error) {
	var docs []models.ServicesDocument
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_id = ?", id).Find(&docs).Error; err != nil {
			return err
		}
		return deleted(tx.Delete(&models.ClientServiceItem{}, id), entityServiceItem)
	})
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		return nil, translate(err, entityServiceItem, "delete")
	}
	return docs, nil
}
