package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"floorPilot/domain"
	"floorPilot/pkg/logger"
)

// AdapterRepository contract interface
type AdapterRepository interface {
	Create(ctx context.Context, adapter *domain.Adapter) error
	FindByID(ctx context.Context, id uint) (domain.Adapter, error)
	FindByName(ctx context.Context, name string) (domain.Adapter, error)
	FindAll(ctx context.Context) ([]domain.Adapter, error)
	SetEnabled(ctx context.Context, id uint, enabled bool) error
	Delete(ctx context.Context, id uint) error
}

type adapterService struct {
	adapterRepo AdapterRepository
}

func NewAdapterService(adapterRepo AdapterRepository) *adapterService {
	return &adapterService{
		adapterRepo: adapterRepo,
	}
}

func (s *adapterService) GetAllAdapters(ctx context.Context) ([]domain.Adapter, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all adapters")
		return nil, fmt.Errorf("context error: %w", err)
	}

	adapters, err := s.adapterRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to find all adapters", err)
		return nil, err
	}

	return adapters, nil
}

func (s *adapterService) GetAdapterByID(ctx context.Context, id uint) (domain.Adapter, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get adapter by id")
		return domain.Adapter{}, fmt.Errorf("context error: %w", err)
	}

	if id == 0 {
		logger.Error("Invalid adapter id")
		return domain.Adapter{}, errors.New("invalid adapter id")
	}

	adapter, err := s.adapterRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to find adapter", err)
		return domain.Adapter{}, err
	}

	return adapter, nil
}

func (s *adapterService) RegisterAdapter(ctx context.Context, adapter *domain.Adapter) (*domain.Adapter, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when register adapter")
		return nil, fmt.Errorf("context error: %w", err)
	}

	// Validation
	if adapter.Name == "" {
		logger.Error("Invalid adapter data: name is required")
		return nil, errors.New("adapter name is required")
	}

	// adapter ids arrive lowercase from the SDK; store them that way
	adapter.Name = strings.ToLower(strings.TrimSpace(adapter.Name))

	existing, err := s.adapterRepo.FindByName(ctx, adapter.Name)
	if err == nil && existing.ID > 0 {
		logger.Error("Adapter already exists")
		return nil, errors.New("adapter already exists")
	}

	if err := s.adapterRepo.Create(ctx, adapter); err != nil {
		logger.Error("failed to create new adapter", err)
		return nil, fmt.Errorf("failed to create adapter: %w", err)
	}

	logger.Info("adapter registered successfully", "name", adapter.Name)

	return adapter, nil
}

func (s *adapterService) SetAdapterEnabled(ctx context.Context, id uint, enabled bool) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating adapter")
		return fmt.Errorf("context error: %w", err)
	}

	if id == 0 {
		logger.Error("Invalid adapter id")
		return errors.New("invalid adapter id")
	}

	if err := s.adapterRepo.SetEnabled(ctx, id, enabled); err != nil {
		logger.Error("failed to update adapter", err)
		return err
	}

	logger.Info("adapter enabled flag updated", "id", id, "enabled", enabled)

	return nil
}

func (s *adapterService) DeleteAdapter(ctx context.Context, id uint) error {
	if id == 0 {
		logger.Error("Invalid adapter id when deleting adapter")
		return errors.New("invalid adapter id")
	}

	if err := ctx.Err(); err != nil {
		logger.Error("context error when deleting adapter")
		return fmt.Errorf("context error: %w", err)
	}

	// Verify adapter exists
	_, err := s.adapterRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("adapter not found", err)
		return errors.New("adapter not found")
	}

	if err := s.adapterRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete adapter", err)
		return fmt.Errorf("failed to delete adapter: %w", err)
	}

	logger.Info("adapter deleted successfully")

	return nil
}

// Allow implements the floor decision gate: only adapters that are
// registered and enabled may be served. An unregistered name is a plain
// refusal, not an error; repository failures bubble up so the caller can
// fail open.
func (s *adapterService) Allow(ctx context.Context, adapterID string) (bool, error) {
	adapter, err := s.adapterRepo.FindByName(ctx, strings.ToLower(adapterID))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return false, nil
		}
		return false, err
	}

	return adapter.Enabled, nil
}
