package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sweetshop/apiserver/types"
)

// ErrValidation marks a rejected payload. The wrapped message describes
// the failing field and is safe to return to the caller.
var ErrValidation = errors.New("validation failed")

// SweetRepository defines persistence operations for sweets.
type SweetRepository interface {
	List(ctx context.Context) ([]types.Sweet, error)
	Search(ctx context.Context, term string) ([]types.Sweet, error)
	Get(ctx context.Context, id int64) (types.Sweet, error)
	Create(ctx context.Context, sweet types.Sweet) (types.Sweet, error)
	Update(ctx context.Context, sweet types.Sweet) (types.Sweet, error)
	Delete(ctx context.Context, id int64) error
}

// SweetPatch carries the fields of a partial update. Nil fields are
// left unchanged.
type SweetPatch struct {
	Name     *string
	Category *string
	Price    *float64
	Quantity *int64
}

// SweetService encapsulates catalog use-cases: listing, searching, and
// the admin CRUD surface. Stock mutations live in InventoryService.
type SweetService struct {
	repo SweetRepository
}

func NewSweetService(repo SweetRepository) *SweetService {
	return &SweetService{repo: repo}
}

func (s *SweetService) List(ctx context.Context) ([]types.Sweet, error) {
	return s.repo.List(ctx)
}

func (s *SweetService) Search(ctx context.Context, term string) ([]types.Sweet, error) {
	return s.repo.Search(ctx, term)
}

func (s *SweetService) Get(ctx context.Context, id int64) (types.Sweet, error) {
	return s.repo.Get(ctx, id)
}

func (s *SweetService) Create(ctx context.Context, sweet types.Sweet) (types.Sweet, error) {
	if err := validateSweet(sweet); err != nil {
		return types.Sweet{}, err
	}
	return s.repo.Create(ctx, sweet)
}

// Update applies a partial update to an existing sweet. The patched
// record is validated as a whole before anything is written, so a bad
// payload never results in a partial write.
func (s *SweetService) Update(ctx context.Context, id int64, patch SweetPatch) (types.Sweet, error) {
	sweet, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Sweet{}, err
	}

	if patch.Name != nil {
		sweet.Name = *patch.Name
	}
	if patch.Category != nil {
		sweet.Category = *patch.Category
	}
	if patch.Price != nil {
		sweet.Price = *patch.Price
	}
	if patch.Quantity != nil {
		sweet.Quantity = *patch.Quantity
	}

	if err := validateSweet(sweet); err != nil {
		return types.Sweet{}, err
	}
	return s.repo.Update(ctx, sweet)
}

func (s *SweetService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validateSweet(sweet types.Sweet) error {
	if strings.TrimSpace(sweet.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(sweet.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	if sweet.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if sweet.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}
	return nil
}
