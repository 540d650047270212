package foods

import (
	"context"

	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/Domenick1991/cinemabooking/internal/logger"
	"github.com/Domenick1991/cinemabooking/internal/repository"
	"github.com/Domenick1991/cinemabooking/internal/validation"
	"github.com/jinzhu/copier"
)

type FoodUseCase interface {
	Create(ctx context.Context, input CreateFoodInput) (*domain.Food, error)
	Update(ctx context.Context, id int64, input UpdateFoodInput) (*domain.Food, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Food, error)
	List(ctx context.Context) ([]domain.Food, error)
	ListAvailable(ctx context.Context) ([]domain.Food, error)
}

type Cache interface {
	GetFoods(ctx context.Context) ([]domain.Food, error)
	SetFoods(ctx context.Context, foods []domain.Food) error
	InvalidateFoods(ctx context.Context) error
}

type CreateFoodInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"required"`
	PriceCents  int64  `json:"price_cents" validate:"gt=0"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	Available   *bool  `json:"available"`
}

type UpdateFoodInput struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,min=1"`
	PriceCents  *int64  `json:"price_cents" validate:"omitempty,gt=0"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url|eq="`
	Available   *bool   `json:"available"`
}

type FoodService struct {
	repo  repository.FoodRepository
	cache Cache
}

func NewFoodService(repo repository.FoodRepository, cache Cache) *FoodService {
	return &FoodService{repo: repo, cache: cache}
}

func (s *FoodService) Create(ctx context.Context, input CreateFoodInput) (*domain.Food, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	food := &domain.Food{Available: true}
	if err := copier.CopyWithOption(food, &input, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, food); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return food, nil
}

func (s *FoodService) Update(ctx context.Context, id int64, input UpdateFoodInput) (*domain.Food, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	food, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := copier.CopyWithOption(food, &input, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, food); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return food, nil
}

func (s *FoodService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FoodService) GetByID(ctx context.Context, id int64) (*domain.Food, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns the whole menu, including unavailable items.
func (s *FoodService) List(ctx context.Context) ([]domain.Food, error) {
	return s.repo.List(ctx, false)
}

// ListAvailable is the public menu, served through the cache.
func (s *FoodService) ListAvailable(ctx context.Context) ([]domain.Food, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFoods(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	foods, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFoods(ctx, foods); err != nil {
			logger.Warn("cache foods", "err", err)
		}
	}
	return foods, nil
}

func (s *FoodService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFoods(ctx); err != nil {
		logger.Warn("invalidate food cache", "err", err)
	}
}

var _ FoodUseCase = (*FoodService)(nil)
