package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	"github.com/ramuneri/tillpoint-api/internal/domain/repository"
	infraRepo "github.com/ramuneri/tillpoint-api/internal/infrastructure/repository"
	"github.com/ramuneri/tillpoint-api/pkg/apperror"
	"github.com/ramuneri/tillpoint-api/pkg/pagination"
)

// IssueGiftcardInput creates a new gift card.
type IssueGiftcardInput struct {
	Code                string
	InitialBalanceCents int64
	ExpiresAt           *time.Time
}

// GiftcardService issues and administers gift cards. Balance changes during
// settlement and refunds go through the repositories directly, inside those
// engines' transactions.
type GiftcardService struct {
	giftcardRepo repository.GiftcardRepository
}

// NewGiftcardService creates a new gift card service
func NewGiftcardService(giftcardRepo repository.GiftcardRepository) *GiftcardService {
	return &GiftcardService{giftcardRepo: giftcardRepo}
}

// Issue creates an active gift card with its full initial balance.
func (s *GiftcardService) Issue(ctx context.Context, input *IssueGiftcardInput) (*entity.Giftcard, error) {
	merchantID, ok := infraRepo.GetMerchantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Merchant context required")
	}
	if input.Code == "" {
		return nil, apperror.NewValidationError("Gift card code is required")
	}
	if input.InitialBalanceCents <= 0 {
		return nil, apperror.NewValidationError("Initial balance must be positive")
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(time.Now().UTC()) {
		return nil, apperror.NewValidationError("Expiry must be in the future")
	}

	existing, err := s.giftcardRepo.GetByCode(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("A gift card with this code already exists")
	}

	card := &entity.Giftcard{
		MerchantID:          merchantID,
		Code:                input.Code,
		BalanceCents:        input.InitialBalanceCents,
		InitialBalanceCents: input.InitialBalanceCents,
		Active:              true,
		IssuedAt:            time.Now().UTC(),
		ExpiresAt:           input.ExpiresAt,
	}
	if err := s.giftcardRepo.Create(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// GetByCode looks a card up by its code.
func (s *GiftcardService) GetByCode(ctx context.Context, code string) (*entity.Giftcard, error) {
	card, err := s.giftcardRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, apperror.NewNotFoundError("Gift card")
	}
	return card, nil
}

// Deactivate takes a card out of circulation. Its balance is preserved.
func (s *GiftcardService) Deactivate(ctx context.Context, id uuid.UUID) error {
	card, err := s.giftcardRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if card == nil {
		return apperror.NewNotFoundError("Gift card")
	}
	return s.giftcardRepo.Deactivate(ctx, id)
}

// List returns a paginated gift card listing.
func (s *GiftcardService) List(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Giftcard], error) {
	params.Validate()
	cards, total, err := s.giftcardRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(cards, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}
