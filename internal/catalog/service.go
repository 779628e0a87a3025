package catalog

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ledgerline/ledgerline/internal/documents/calc"
	"github.com/ledgerline/ledgerline/internal/shared"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) Create(ctx context.Context, req CreateItemRequest) (*Item, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	id, err := s.repo.Create(ctx, Item{
		SKU:               req.SKU,
		Name:              req.Name,
		Unit:              req.Unit,
		SalesUnitPrice:    req.SalesUnitPrice,
		PurchaseUnitPrice: req.PurchaseUnitPrice,
		Description:       req.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateItemRequest) (*Item, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Unit != nil {
		existing.Unit = *req.Unit
	}
	if req.SalesUnitPrice != nil {
		existing.SalesUnitPrice = *req.SalesUnitPrice
	}
	if req.PurchaseUnitPrice != nil {
		existing.PurchaseUnitPrice = *req.PurchaseUnitPrice
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Item, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListItemsRequest) ([]Item, int, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// LookupFor resolves the given item ids once and returns a calc.Lookup view
// over the batch, for use by the document calculation engine.
func (s *Service) LookupFor(ctx context.Context, ids []int64) (calc.Lookup, error) {
	items, err := s.repo.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog items: %w", err)
	}
	return func(id int64) (calc.Item, bool) {
		it, ok := items[id]
		if !ok {
			return calc.Item{}, false
		}
		return toCalcItem(it), true
	}, nil
}

func toCalcItem(it Item) calc.Item {
	ci := calc.Item{
		ID:                it.ID,
		Unit:              it.Unit,
		SalesUnitPrice:    it.SalesUnitPrice,
		PurchaseUnitPrice: it.PurchaseUnitPrice,
	}
	if it.Description != nil {
		ci.Description = *it.Description
	}
	return ci
}
