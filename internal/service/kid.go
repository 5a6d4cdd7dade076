package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallsteps/backend/internal/models"
	"github.com/smallsteps/backend/internal/repository"
)

const maxKidAge = 18

type kidService struct {
	kidRepo repository.KidRepository
}

// NewKidService creates a new child profile service
func NewKidService(kidRepo repository.KidRepository) KidService {
	return &kidService{kidRepo: kidRepo}
}

func (s *kidService) ListKids(ctx context.Context, userID string) ([]models.Kid, error) {
	return s.kidRepo.ListByUser(ctx, userID)
}

func (s *kidService) CreateKid(ctx context.Context, userID string, req *models.CreateKidRequest) (*models.Kid, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Age == nil || *req.Age < 0 || *req.Age > maxKidAge {
		return nil, fmt.Errorf("%w: age must be between 0 and %d", ErrInvalidInput, maxKidAge)
	}

	count, err := s.kidRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= models.MaxKidsPerUser {
		return nil, ErrKidLimitReached
	}

	return s.kidRepo.Create(ctx, &models.Kid{
		UserID: userID,
		Name:   name,
		Age:    *req.Age,
	})
}

func (s *kidService) UpdateKid(ctx context.Context, userID, kidID string, req *models.UpdateKidRequest) (*models.Kid, error) {
	if err := ValidateID(kidID); err != nil {
		return nil, err
	}

	// GetByID is scoped to the owner, so another parent's kid reads as missing
	kid, err := s.kidRepo.GetByID(ctx, userID, kidID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		kid.Name = name
	}
	if req.Age != nil {
		if *req.Age < 0 || *req.Age > maxKidAge {
			return nil, fmt.Errorf("%w: age must be between 0 and %d", ErrInvalidInput, maxKidAge)
		}
		kid.Age = *req.Age
	}

	return s.kidRepo.Update(ctx, kid)
}

func (s *kidService) DeleteKid(ctx context.Context, userID, kidID string) error {
	if err := ValidateID(kidID); err != nil {
		return err
	}
	if _, err := s.kidRepo.GetByID(ctx, userID, kidID); err != nil {
		return err
	}
	return s.kidRepo.Delete(ctx, userID, kidID)
}
