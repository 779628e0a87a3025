package contacts

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ledgerline/ledgerline/internal/shared"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) Create(ctx context.Context, partyType PartyType, req CreatePartyRequest) (*Party, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	id, err := s.repo.Create(ctx, Party{
		Type:    partyType,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		TaxID:   req.TaxID,
		Address: req.Address,
		City:    req.City,
		Country: req.Country,
		Notes:   req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create party: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdatePartyRequest) (*Party, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get party: %w", err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Email != nil {
		existing.Email = req.Email
	}
	if req.Phone != nil {
		existing.Phone = req.Phone
	}
	if req.TaxID != nil {
		existing.TaxID = req.TaxID
	}
	if req.Address != nil {
		existing.Address = req.Address
	}
	if req.City != nil {
		existing.City = req.City
	}
	if req.Country != nil {
		existing.Country = req.Country
	}
	if req.Notes != nil {
		existing.Notes = req.Notes
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update party: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Party, error) {
	return s.repo.Get(ctx, id)
}

// GetOfType fetches a party and checks it has the expected type, so a vendor
// id cannot be attached to a client-facing document.
func (s *Service) GetOfType(ctx context.Context, id int64, partyType PartyType) (*Party, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Type != partyType {
		return nil, fmt.Errorf("%w: party %d is not a %s", shared.ErrValidation, id, partyType)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, req ListPartiesRequest) ([]Party, int, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
