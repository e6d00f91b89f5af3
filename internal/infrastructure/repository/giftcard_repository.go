package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	domainRepo "github.com/ramuneri/tillpoint-api/internal/domain/repository"
	"github.com/ramuneri/tillpoint-api/pkg/pagination"
)

type giftcardRepository struct {
	db *gorm.DB
}

// NewGiftcardRepository creates a new giftcard repository
func NewGiftcardRepository(db *gorm.DB) domainRepo.GiftcardRepository {
	return &giftcardRepository{db: db}
}

func (r *giftcardRepository) Create(ctx context.Context, card *entity.Giftcard) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Create(card).Error
}

func (r *giftcardRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Giftcard, error) {
	var card entity.Giftcard
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(MerchantScope(ctx)).
		First(&card, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &card, err
}

func (r *giftcardRepository) GetByCode(ctx context.Context, code string) (*entity.Giftcard, error) {
	var card entity.Giftcard
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(MerchantScope(ctx)).
		First(&card, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &card, err
}

func (r *giftcardRepository) GetByCodeForUpdate(ctx context.Context, code string) (*entity.Giftcard, error) {
	var card entity.Giftcard
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Scopes(MerchantScope(ctx)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&card, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &card, err
}

// Debit is guarded so the balance can never go negative even if the caller's
// balance check raced another writer.
func (r *giftcardRepository) Debit(ctx context.Context, id uuid.UUID, amountCents int64) (bool, error) {
	res := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Giftcard{}).
		Where("id = ? AND balance_cents >= ?", id, amountCents).
		Update("balance_cents", gorm.Expr("balance_cents - ?", amountCents))
	return res.RowsAffected == 1, res.Error
}

func (r *giftcardRepository) Credit(ctx context.Context, id uuid.UUID, amountCents int64) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Giftcard{}).
		Where("id = ?", id).
		Update("balance_cents", gorm.Expr("balance_cents + ?", amountCents)).Error
}

func (r *giftcardRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Giftcard{}).
		Where("id = ?", id).
		Update("active", false).Error
}

func (r *giftcardRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Giftcard, int64, error) {
	var cards []entity.Giftcard
	var total int64

	query := dbFrom(ctx, r.db).WithContext(ctx).Model(&entity.Giftcard{}).Scopes(MerchantScope(ctx))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("created_at DESC").
		Find(&cards).Error
	return cards, total, err
}
