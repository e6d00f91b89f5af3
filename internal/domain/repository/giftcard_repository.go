package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	"github.com/ramuneri/tillpoint-api/pkg/pagination"
)

// GiftcardRepository defines the interface for gift card data operations.
// Balance mutations happen only inside settlement (Debit) and refund
// (Credit) transactions; the row lock taken by GetByCodeForUpdate is the
// sole concurrency guard.
type GiftcardRepository interface {
	Create(ctx context.Context, card *entity.Giftcard) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Giftcard, error)
	GetByCode(ctx context.Context, code string) (*entity.Giftcard, error)
	// GetByCodeForUpdate locks the card row for the surrounding transaction.
	GetByCodeForUpdate(ctx context.Context, code string) (*entity.Giftcard, error)
	// Debit decrements the balance; returns false when the balance would go
	// negative.
	Debit(ctx context.Context, id uuid.UUID, amountCents int64) (bool, error)
	// Credit increments the balance.
	Credit(ctx context.Context, id uuid.UUID, amountCents int64) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Giftcard, int64, error)
}
