package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	"github.com/ramuneri/tillpoint-api/internal/domain/enum"
	"github.com/ramuneri/tillpoint-api/internal/domain/repository"
	"github.com/ramuneri/tillpoint-api/pkg/apperror"
	"github.com/ramuneri/tillpoint-api/pkg/money"
)

// ChargePolicy can contribute an order-level service charge. The default
// engine applies no policy of its own; charges come from the order or the
// settlement request.
type ChargePolicy interface {
	ServiceChargeCents(ctx context.Context, order *entity.Order, subtotalCents int64) (int64, error)
}

// NoChargePolicy is the default: no automatic service charge.
type NoChargePolicy struct{}

func (NoChargePolicy) ServiceChargeCents(ctx context.Context, order *entity.Order, subtotalCents int64) (int64, error) {
	return 0, nil
}

// TaxLine is the tax collected under one category.
type TaxLine struct {
	CategoryID  uuid.UUID       `json:"category_id"`
	Percent     decimal.Decimal `json:"percent"`
	AmountCents int64           `json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (l TaxLine) MarshalJSON() ([]byte, error) {
	type Alias TaxLine
	return json.Marshal(&struct {
		Alias
		Amount float64 `json:"amount"`
	}{
		Alias:  Alias(l),
		Amount: money.Float(l.AmountCents),
	})
}

// Totals is the derived money view of an order. The tip is reported but
// never part of Total; Remaining floors at zero.
type Totals struct {
	SubtotalCents      int64     `json:"-"`
	DiscountCents      int64     `json:"-"`
	TaxCents           int64     `json:"-"`
	ServiceChargeCents int64     `json:"-"`
	TipCents           int64     `json:"-"`
	TotalCents         int64     `json:"-"`
	PaidCents          int64     `json:"-"`
	RemainingCents     int64     `json:"-"`
	TaxBreakdown       []TaxLine `json:"tax_breakdown"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (t Totals) MarshalJSON() ([]byte, error) {
	type Alias Totals
	return json.Marshal(&struct {
		Alias
		Subtotal      float64 `json:"subtotal"`
		Discount      float64 `json:"discount"`
		Tax           float64 `json:"tax"`
		ServiceCharge float64 `json:"service_charge"`
		Tip           float64 `json:"tip"`
		Total         float64 `json:"total"`
		Paid          float64 `json:"paid"`
		Remaining     float64 `json:"remaining"`
	}{
		Alias:         Alias(t),
		Subtotal:      money.Float(t.SubtotalCents),
		Discount:      money.Float(t.DiscountCents),
		Tax:           money.Float(t.TaxCents),
		ServiceCharge: money.Float(t.ServiceChargeCents),
		Tip:           money.Float(t.TipCents),
		Total:         money.Float(t.TotalCents),
		Paid:          money.Float(t.PaidCents),
		Remaining:     money.Float(t.RemainingCents),
	})
}

// ItemCharge is the priced view of one order item: its extended price, the
// tax on it (rounded per item), and the category the tax was resolved under.
type ItemCharge struct {
	TotalCents    int64
	TaxCents      int64
	TaxCategoryID *uuid.UUID
	Percent       decimal.Decimal
}

// ChargeOverrides optionally replaces the order's stored discount and
// service charge for one computation. Nil fields keep the stored values.
type ChargeOverrides struct {
	DiscountCents      *int64
	ServiceChargeCents *int64
}

// TotalsCalculator derives subtotal, tax, total, paid and remaining for an
// order. It is a pure read over the catalog and tax tables; it never writes.
type TotalsCalculator struct {
	productRepo repository.ProductRepository
	serviceRepo repository.ServiceRepository
	rates       RateResolver
	policy      ChargePolicy
}

// NewTotalsCalculator creates a new totals calculator
func NewTotalsCalculator(productRepo repository.ProductRepository, serviceRepo repository.ServiceRepository, rates RateResolver, policy ChargePolicy) *TotalsCalculator {
	if policy == nil {
		policy = NoChargePolicy{}
	}
	return &TotalsCalculator{
		productRepo: productRepo,
		serviceRepo: serviceRepo,
		rates:       rates,
		policy:      policy,
	}
}

// ItemCharges prices every item on the order at the instant the order was
// opened. Tax is computed and rounded per item so that per-item figures sum
// exactly to the order's tax. Returns the charges keyed by item id together
// with the item subtotal.
func (c *TotalsCalculator) ItemCharges(ctx context.Context, order *entity.Order) (map[uuid.UUID]ItemCharge, int64, error) {
	var productIDs, serviceIDs []uuid.UUID
	for i := range order.Items {
		item := &order.Items[i]
		switch {
		case item.ProductID != nil:
			productIDs = append(productIDs, *item.ProductID)
		case item.ServiceID != nil:
			serviceIDs = append(serviceIDs, *item.ServiceID)
		}
	}

	products := make(map[uuid.UUID]*entity.Product, len(productIDs))
	if len(productIDs) > 0 {
		rows, err := c.productRepo.GetByIDs(ctx, productIDs)
		if err != nil {
			return nil, 0, err
		}
		for i := range rows {
			products[rows[i].ID] = &rows[i]
		}
	}

	services := make(map[uuid.UUID]*entity.Service, len(serviceIDs))
	if len(serviceIDs) > 0 {
		rows, err := c.serviceRepo.GetByIDs(ctx, serviceIDs)
		if err != nil {
			return nil, 0, err
		}
		for i := range rows {
			services[rows[i].ID] = &rows[i]
		}
	}

	charges := make(map[uuid.UUID]ItemCharge, len(order.Items))
	var subtotal int64
	rateCache := make(map[uuid.UUID]decimal.Decimal)

	for i := range order.Items {
		item := &order.Items[i]

		var unitPrice int64
		var categoryID *uuid.UUID
		switch {
		case item.ProductID != nil:
			product, ok := products[*item.ProductID]
			if !ok {
				return nil, 0, apperror.NewNotFoundError("Product")
			}
			unitPrice = product.PriceCents
			categoryID = product.TaxCategoryID
		case item.ServiceID != nil:
			svc, ok := services[*item.ServiceID]
			if !ok {
				return nil, 0, apperror.NewNotFoundError("Service")
			}
			unitPrice = svc.DefaultPriceCents
			categoryID = svc.TaxCategoryID
		default:
			return nil, 0, apperror.NewValidationError("Order item references neither a product nor a service")
		}

		lineTotal := unitPrice * int64(item.Quantity)
		subtotal += lineTotal

		charge := ItemCharge{TotalCents: lineTotal, TaxCategoryID: categoryID}
		if categoryID != nil {
			percent, cached := rateCache[*categoryID]
			if !cached {
				var err error
				percent, err = c.rates.RatePercentAt(ctx, *categoryID, order.OpenedAt)
				if err != nil {
					return nil, 0, err
				}
				rateCache[*categoryID] = percent
			}
			charge.Percent = percent
			charge.TaxCents = money.Percent(lineTotal, percent)
		}
		charges[item.ID] = charge
	}

	return charges, subtotal, nil
}

// Compute derives the full totals for an order. Overrides, when given,
// replace the order's stored discount and service charge. Total is
// subtotal - discount + tax + service charge; the tip is carried separately
// and never enters Total.
func (c *TotalsCalculator) Compute(ctx context.Context, order *entity.Order, overrides *ChargeOverrides) (*Totals, error) {
	charges, subtotal, err := c.ItemCharges(ctx, order)
	if err != nil {
		return nil, err
	}

	var tax int64
	byCategory := make(map[uuid.UUID]*TaxLine)
	var categoryOrder []uuid.UUID
	for i := range order.Items {
		charge := charges[order.Items[i].ID]
		tax += charge.TaxCents
		if charge.TaxCategoryID == nil || charge.TaxCents == 0 {
			continue
		}
		line, ok := byCategory[*charge.TaxCategoryID]
		if !ok {
			line = &TaxLine{CategoryID: *charge.TaxCategoryID, Percent: charge.Percent}
			byCategory[*charge.TaxCategoryID] = line
			categoryOrder = append(categoryOrder, *charge.TaxCategoryID)
		}
		line.AmountCents += charge.TaxCents
	}
	breakdown := make([]TaxLine, 0, len(categoryOrder))
	for _, id := range categoryOrder {
		breakdown = append(breakdown, *byCategory[id])
	}

	discount := order.DiscountCents
	serviceCharge := order.ServiceChargeCents
	if overrides != nil {
		if overrides.DiscountCents != nil {
			discount = *overrides.DiscountCents
		}
		if overrides.ServiceChargeCents != nil {
			serviceCharge = *overrides.ServiceChargeCents
		}
	}
	if serviceCharge == 0 {
		serviceCharge, err = c.policy.ServiceChargeCents(ctx, order, subtotal)
		if err != nil {
			return nil, err
		}
	}

	var tip int64
	for i := range order.Tips {
		tip += order.Tips[i].AmountCents
	}

	var paid int64
	for i := range order.Payments {
		if order.Payments[i].Status == enum.PaymentStatusSucceeded {
			paid += order.Payments[i].AmountCents
		}
	}

	total := subtotal - discount + tax + serviceCharge
	remaining := total - paid
	if remaining < 0 {
		remaining = 0
	}

	return &Totals{
		SubtotalCents:      subtotal,
		DiscountCents:      discount,
		TaxCents:           tax,
		ServiceChargeCents: serviceCharge,
		TipCents:           tip,
		TotalCents:         total,
		PaidCents:          paid,
		RemainingCents:     remaining,
		TaxBreakdown:       breakdown,
	}, nil
}
