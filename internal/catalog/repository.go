package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, svc *TourService) error
	GetByID(ctx context.Context, id uuid.UUID) (*TourService, error)
	GetBySlug(ctx context.Context, slug string) (*TourService, error)
	Update(ctx context.Context, svc *TourService) error
	List(ctx context.Context, query ServiceListQuery) ([]TourService, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, svc *TourService) error {
	return r.db.WithContext(ctx).Create(svc).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*TourService, error) {
	var svc TourService
	if err := r.db.WithContext(ctx).First(&svc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*TourService, error) {
	var svc TourService
	if err := r.db.WithContext(ctx).First(&svc, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *repository) Update(ctx context.Context, svc *TourService) error {
	return r.db.WithContext(ctx).Save(svc).Error
}

func (r *repository) List(ctx context.Context, query ServiceListQuery) ([]TourService, int64, error) {
	db := r.db.WithContext(ctx).Model(&TourService{})

	if query.Type != "" {
		db = db.Where("type = ?", query.Type)
	}
	if query.Active != nil {
		db = db.Where("active = ?", *query.Active)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var services []TourService
	offset := (query.Page - 1) * query.Limit
	err := db.Order("created_at DESC").Offset(offset).Limit(query.Limit).Find(&services).Error
	if err != nil {
		return nil, 0, err
	}

	return services, total, nil
}
