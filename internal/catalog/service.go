package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"atlastours/internal/shared/apperrors"
	"atlastours/pkg/cache"
)

type Service interface {
	CreateService(ctx context.Context, adminID uuid.UUID, req CreateServiceRequest) (*TourService, error)
	GetServiceByID(ctx context.Context, id uuid.UUID) (*TourService, error)
	GetServiceBySlug(ctx context.Context, slug string) (*TourService, error)
	UpdateService(ctx context.Context, id uuid.UUID, req UpdateServiceRequest) (*TourService, error)
	DeactivateService(ctx context.Context, id uuid.UUID) error
	ListServices(ctx context.Context, query ServiceListQuery) (*ServiceListResponse, error)
}

type service struct {
	repo     Repository
	cache    cache.Service
	cacheTTL time.Duration
}

func NewService(repo Repository, cacheService cache.Service, cacheTTL time.Duration) Service {
	return &service{repo: repo, cache: cacheService, cacheTTL: cacheTTL}
}

func serviceCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("atlastours:catalog:service:%s", id)
}

func (s *service) CreateService(ctx context.Context, adminID uuid.UUID, req CreateServiceRequest) (*TourService, error) {
	svcType := ServiceType(req.Type)
	if !svcType.IsValid() {
		return nil, apperrors.NewValidation("invalid service type: %s", req.Type)
	}

	slug := GenerateSlug(req.Name)
	if slug == "" {
		return nil, apperrors.NewValidation("service name produces an empty slug")
	}
	if existing, err := s.repo.GetBySlug(ctx, slug); err == nil && existing != nil {
		return nil, apperrors.NewConflict("a service named %q already exists", req.Name)
	}

	currency := req.Currency
	if currency == "" {
		currency = "MAD"
	}
	capacity := req.Capacity
	if capacity == 0 {
		capacity = 4
	}

	svc := &TourService{
		Type:            svcType,
		Name:            req.Name,
		Slug:            slug,
		Description:     req.Description,
		BasePrice:       req.BasePrice,
		Currency:        currency,
		DurationMinutes: req.DurationMinutes,
		Capacity:        capacity,
		Active:          true,
		CreatedBy:       adminID,
	}

	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.invalidateListCache(ctx)
	return svc, nil
}

func (s *service) GetServiceByID(ctx context.Context, id uuid.UUID) (*TourService, error) {
	var svc TourService
	err := s.cache.GetOrSet(ctx, serviceCacheKey(id), s.cacheTTL, func() (interface{}, error) {
		return s.repo.GetByID(ctx, id)
	}, &svc)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("service not found")
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &svc, nil
}

func (s *service) GetServiceBySlug(ctx context.Context, slug string) (*TourService, error) {
	svc, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("service not found")
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return svc, nil
}

func (s *service) UpdateService(ctx context.Context, id uuid.UUID, req UpdateServiceRequest) (*TourService, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("service not found")
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	if req.Name != nil {
		svc.Name = *req.Name
		svc.Slug = GenerateSlug(*req.Name)
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.BasePrice != nil {
		svc.BasePrice = *req.BasePrice
	}
	if req.DurationMinutes != nil {
		svc.DurationMinutes = *req.DurationMinutes
	}
	if req.Capacity != nil {
		svc.Capacity = *req.Capacity
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}

	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	_ = s.cache.Delete(ctx, serviceCacheKey(id))
	s.invalidateListCache(ctx)
	return svc, nil
}

// DeactivateService hides a service from new bookings. Existing bookings keep
// their snapshot of name and price, so nothing downstream breaks.
func (s *service) DeactivateService(ctx context.Context, id uuid.UUID) error {
	active := false
	_, err := s.UpdateService(ctx, id, UpdateServiceRequest{Active: &active})
	return err
}

func (s *service) ListServices(ctx context.Context, query ServiceListQuery) (*ServiceListResponse, error) {
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = 20
	}

	var resp ServiceListResponse
	key := fmt.Sprintf("atlastours:catalog:list:%s:%v:%d:%d", query.Type, query.Active, query.Page, query.Limit)
	err := s.cache.GetOrSet(ctx, key, s.cacheTTL, func() (interface{}, error) {
		services, total, err := s.repo.List(ctx, query)
		if err != nil {
			return nil, err
		}
		return &ServiceListResponse{
			Services: services,
			Total:    total,
			Page:     query.Page,
			Limit:    query.Limit,
		}, nil
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return &resp, nil
}

func (s *service) invalidateListCache(ctx context.Context) {
	_ = s.cache.DeletePattern(ctx, "atlastours:catalog:list:*")
}
