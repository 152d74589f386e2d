// internal/service/catalog/catalog_service.go
package catalog

import (
	"context"
	"errors"
	"fmt"

	"groupgate-service/internal/domain/service"
	xerrors "groupgate-service/internal/pkg/errors"
	"groupgate-service/internal/pkg/tokencode"
	"groupgate-service/internal/repository/postgres"

	"go.uber.org/zap"
)

type CatalogService struct {
	serviceRepo *postgres.ServiceRepository
	logger      *zap.Logger
}

func NewCatalogService(serviceRepo *postgres.ServiceRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		serviceRepo: serviceRepo,
		logger:      logger,
	}
}

// CreateService adds a service to the catalog. The service ID doubles as the
// token's two-digit service code, so creation fails once the catalog outgrows
// the codec field.
func (s *CatalogService) CreateService(ctx context.Context, req *service.CreateServiceRequest) (*service.Service, error) {
	existing, err := s.serviceRepo.FindByName(ctx, req.Name)
	if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("service %q already exists", req.Name)
	}

	svc := &service.Service{
		Name:               req.Name,
		DefaultCost:        req.DefaultCost,
		TokenDurationHours: req.TokenDurationHours,
	}

	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	if svc.ID > tokencode.MaxServiceCode {
		// Undo: a service that cannot be encoded must not exist.
		if delErr := s.serviceRepo.Delete(ctx, svc.ID); delErr != nil {
			s.logger.Error("failed to remove unencodable service", zap.Int64("service_id", svc.ID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("service id %d exceeds the encodable maximum %d: %w",
			svc.ID, tokencode.MaxServiceCode, xerrors.ErrFieldOverflow)
	}

	s.logger.Info("service created",
		zap.Int64("service_id", svc.ID),
		zap.String("name", svc.Name),
	)

	return svc, nil
}

// GetService retrieves a service by ID.
func (s *CatalogService) GetService(ctx context.Context, id int64) (*service.Service, error) {
	return s.serviceRepo.FindByID(ctx, id)
}

// ListServices retrieves the full catalog.
func (s *CatalogService) ListServices(ctx context.Context) ([]service.Service, error) {
	services, err := s.serviceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// UpdateService updates a catalog entry.
func (s *CatalogService) UpdateService(ctx context.Context, id int64, req *service.UpdateServiceRequest) (*service.Service, error) {
	svc, err := s.serviceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update fields
	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.DefaultCost != nil {
		svc.DefaultCost = *req.DefaultCost
	}
	if req.TokenDurationHours != nil {
		svc.TokenDurationHours = *req.TokenDurationHours
	}

	if err := s.serviceRepo.Update(ctx, id, svc); err != nil {
		s.logger.Error("failed to update service", zap.Error(err))
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	s.logger.Info("service updated", zap.Int64("service_id", id))

	return s.serviceRepo.FindByID(ctx, id)
}

// DeleteService removes a catalog entry.
func (s *CatalogService) DeleteService(ctx context.Context, id int64) error {
	if err := s.serviceRepo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete service", zap.Error(err))
		return fmt.Errorf("failed to delete service: %w", err)
	}

	s.logger.Info("service deleted", zap.Int64("service_id", id))
	return nil
}
