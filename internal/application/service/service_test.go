package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ramuneri/tillpoint-api/internal/domain/entity"
	"github.com/ramuneri/tillpoint-api/internal/domain/enum"
	"github.com/ramuneri/tillpoint-api/internal/domain/repository"
	"github.com/ramuneri/tillpoint-api/internal/infrastructure/gateway"
	"github.com/ramuneri/tillpoint-api/pkg/pagination"
)

// In-memory stubs backing the service tests. The tx stub restores a snapshot
// on error, mirroring what the database transaction does in production.

type stubStore struct {
	orders    map[uuid.UUID]*entity.Order
	payments  []entity.Payment
	tips      []entity.OrderTip
	refunds   []entity.Refund
	giftcards map[uuid.UUID]*entity.Giftcard
	products  map[uuid.UUID]*entity.Product
	services  map[uuid.UUID]*entity.Service
	taxCats   map[uuid.UUID]*entity.TaxCategory
	taxRates  []entity.TaxRate
	customers map[uuid.UUID]*entity.Customer
}

func newStubStore() *stubStore {
	return &stubStore{
		orders:    make(map[uuid.UUID]*entity.Order),
		giftcards: make(map[uuid.UUID]*entity.Giftcard),
		products:  make(map[uuid.UUID]*entity.Product),
		services:  make(map[uuid.UUID]*entity.Service),
		taxCats:   make(map[uuid.UUID]*entity.TaxCategory),
		customers: make(map[uuid.UUID]*entity.Customer),
	}
}

func (s *stubStore) snapshot() *stubStore {
	cp := newStubStore()
	for id, o := range s.orders {
		oc := *o
		cp.orders[id] = &oc
	}
	cp.payments = append([]entity.Payment(nil), s.payments...)
	cp.tips = append([]entity.OrderTip(nil), s.tips...)
	cp.refunds = append([]entity.Refund(nil), s.refunds...)
	for id, g := range s.giftcards {
		gc := *g
		cp.giftcards[id] = &gc
	}
	cp.products = s.products
	cp.services = s.services
	cp.taxCats = s.taxCats
	cp.taxRates = append([]entity.TaxRate(nil), s.taxRates...)
	cp.customers = s.customers
	return cp
}

func (s *stubStore) restore(from *stubStore) {
	s.orders = from.orders
	s.payments = from.payments
	s.tips = from.tips
	s.refunds = from.refunds
	s.giftcards = from.giftcards
	s.taxRates = from.taxRates
}

type stubTxManager struct {
	store *stubStore
}

func (m *stubTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type stubOrderRepo struct {
	store *stubStore
}

func (r *stubOrderRepo) Create(ctx context.Context, order *entity.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	r.store.orders[order.ID] = order
	return nil
}

func (r *stubOrderRepo) loadWithRelations(id uuid.UUID) *entity.Order {
	order, ok := r.store.orders[id]
	if !ok {
		return nil
	}
	cp := *order
	cp.Payments = nil
	for i := range r.store.payments {
		if r.store.payments[i].OrderID == id {
			cp.Payments = append(cp.Payments, r.store.payments[i])
		}
	}
	cp.Tips = nil
	for i := range r.store.tips {
		if r.store.tips[i].OrderID == id {
			cp.Tips = append(cp.Tips, r.store.tips[i])
		}
	}
	cp.Refunds = nil
	for i := range r.store.refunds {
		if r.store.refunds[i].OrderID == id {
			cp.Refunds = append(cp.Refunds, r.store.refunds[i])
		}
	}
	return &cp
}

func (r *stubOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.loadWithRelations(id), nil
}

func (r *stubOrderRepo) GetForSettlement(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.loadWithRelations(id), nil
}

func (r *stubOrderRepo) Update(ctx context.Context, order *entity.Order) error {
	existing, ok := r.store.orders[order.ID]
	if !ok {
		return nil
	}
	cp := *order
	cp.Items = existing.Items
	r.store.orders[order.ID] = &cp
	return nil
}

func (r *stubOrderRepo) Close(ctx context.Context, id uuid.UUID, closedAt time.Time) (bool, error) {
	order, ok := r.store.orders[id]
	if !ok || order.ClosedAt != nil || order.CancelledAt != nil {
		return false, nil
	}
	order.ClosedAt = &closedAt
	return true, nil
}

func (r *stubOrderRepo) Cancel(ctx context.Context, id uuid.UUID, cancelledAt time.Time) (bool, error) {
	order, ok := r.store.orders[id]
	if !ok || order.ClosedAt != nil || order.CancelledAt != nil {
		return false, nil
	}
	order.CancelledAt = &cancelledAt
	return true, nil
}

func (r *stubOrderRepo) List(ctx context.Context, params *repository.OrderFilterParams) ([]entity.Order, int64, error) {
	var out []entity.Order
	for _, order := range r.store.orders {
		out = append(out, *order)
	}
	return out, int64(len(out)), nil
}

type stubOrderItemRepo struct {
	store *stubStore
}

func (r *stubOrderItemRepo) CreateBatch(ctx context.Context, items []entity.OrderItem) error {
	return nil
}

func (r *stubOrderItemRepo) ReplaceForOrder(ctx context.Context, orderID uuid.UUID, items []entity.OrderItem) error {
	order, ok := r.store.orders[orderID]
	if !ok {
		return nil
	}
	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = orderID
	}
	order.Items = items
	return nil
}

func (r *stubOrderItemRepo) DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error {
	return nil
}

type stubPaymentRepo struct {
	store *stubStore
}

func (r *stubPaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	for i := range payment.GiftcardPayments {
		payment.GiftcardPayments[i].PaymentID = payment.ID
	}
	r.store.payments = append(r.store.payments, *payment)
	return nil
}

type stubTipRepo struct {
	store *stubStore
}

func (r *stubTipRepo) Create(ctx context.Context, tip *entity.OrderTip) error {
	if tip.ID == uuid.Nil {
		tip.ID = uuid.New()
	}
	r.store.tips = append(r.store.tips, *tip)
	return nil
}

type stubRefundRepo struct {
	store *stubStore
}

func (r *stubRefundRepo) Create(ctx context.Context, refund *entity.Refund) error {
	if refund.ID == uuid.Nil {
		refund.ID = uuid.New()
	}
	refund.CreatedAt = time.Now()
	r.store.refunds = append(r.store.refunds, *refund)
	return nil
}

func (r *stubRefundRepo) SumByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var sum int64
	for i := range r.store.refunds {
		if r.store.refunds[i].OrderID == orderID {
			sum += r.store.refunds[i].AmountCents
		}
	}
	return sum, nil
}

type stubGiftcardRepo struct {
	store *stubStore
}

func (r *stubGiftcardRepo) Create(ctx context.Context, card *entity.Giftcard) error {
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	r.store.giftcards[card.ID] = card
	return nil
}

func (r *stubGiftcardRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Giftcard, error) {
	card, ok := r.store.giftcards[id]
	if !ok {
		return nil, nil
	}
	cp := *card
	return &cp, nil
}

func (r *stubGiftcardRepo) GetByCode(ctx context.Context, code string) (*entity.Giftcard, error) {
	for _, card := range r.store.giftcards {
		if card.Code == code {
			cp := *card
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *stubGiftcardRepo) GetByCodeForUpdate(ctx context.Context, code string) (*entity.Giftcard, error) {
	return r.GetByCode(ctx, code)
}

func (r *stubGiftcardRepo) Debit(ctx context.Context, id uuid.UUID, amountCents int64) (bool, error) {
	card, ok := r.store.giftcards[id]
	if !ok || card.BalanceCents < amountCents {
		return false, nil
	}
	card.BalanceCents -= amountCents
	return true, nil
}

func (r *stubGiftcardRepo) Credit(ctx context.Context, id uuid.UUID, amountCents int64) error {
	if card, ok := r.store.giftcards[id]; ok {
		card.BalanceCents += amountCents
	}
	return nil
}

func (r *stubGiftcardRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	if card, ok := r.store.giftcards[id]; ok {
		card.Active = false
	}
	return nil
}

func (r *stubGiftcardRepo) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Giftcard, int64, error) {
	var out []entity.Giftcard
	for _, card := range r.store.giftcards {
		out = append(out, *card)
	}
	return out, int64(len(out)), nil
}

type stubProductRepo struct {
	store *stubStore
}

func (r *stubProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.store.products[product.ID] = product
	return nil
}

func (r *stubProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	cp := *product
	return &cp, nil
}

func (r *stubProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	var out []entity.Product
	seen := make(map[uuid.UUID]bool)
	for _, id := range ids {
		if product, ok := r.store.products[id]; ok && !seen[id] {
			out = append(out, *product)
			seen[id] = true
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(ctx context.Context, product *entity.Product) error {
	r.store.products[product.ID] = product
	return nil
}

func (r *stubProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.store.products, id)
	return nil
}

func (r *stubProductRepo) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Product, int64, error) {
	var out []entity.Product
	for _, product := range r.store.products {
		out = append(out, *product)
	}
	return out, int64(len(out)), nil
}

type stubServiceRepo struct {
	store *stubStore
}

func (r *stubServiceRepo) Create(ctx context.Context, svc *entity.Service) error {
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	r.store.services[svc.ID] = svc
	return nil
}

func (r *stubServiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	svc, ok := r.store.services[id]
	if !ok {
		return nil, nil
	}
	cp := *svc
	return &cp, nil
}

func (r *stubServiceRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Service, error) {
	var out []entity.Service
	seen := make(map[uuid.UUID]bool)
	for _, id := range ids {
		if svc, ok := r.store.services[id]; ok && !seen[id] {
			out = append(out, *svc)
			seen[id] = true
		}
	}
	return out, nil
}

func (r *stubServiceRepo) Update(ctx context.Context, svc *entity.Service) error {
	r.store.services[svc.ID] = svc
	return nil
}

func (r *stubServiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.store.services, id)
	return nil
}

func (r *stubServiceRepo) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Service, int64, error) {
	var out []entity.Service
	for _, svc := range r.store.services {
		out = append(out, *svc)
	}
	return out, int64(len(out)), nil
}

type stubTaxRepo struct {
	store *stubStore
}

func (r *stubTaxRepo) CreateCategory(ctx context.Context, category *entity.TaxCategory) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	r.store.taxCats[category.ID] = category
	return nil
}

func (r *stubTaxRepo) GetCategory(ctx context.Context, id uuid.UUID) (*entity.TaxCategory, error) {
	category, ok := r.store.taxCats[id]
	if !ok {
		return nil, nil
	}
	cp := *category
	return &cp, nil
}

func (r *stubTaxRepo) ListCategories(ctx context.Context) ([]entity.TaxCategory, error) {
	var out []entity.TaxCategory
	for _, category := range r.store.taxCats {
		out = append(out, *category)
	}
	return out, nil
}

func (r *stubTaxRepo) CreateRate(ctx context.Context, rate *entity.TaxRate) error {
	if rate.ID == uuid.Nil {
		rate.ID = uuid.New()
	}
	r.store.taxRates = append(r.store.taxRates, *rate)
	return nil
}

func (r *stubTaxRepo) ListRates(ctx context.Context, categoryID uuid.UUID) ([]entity.TaxRate, error) {
	var out []entity.TaxRate
	for i := range r.store.taxRates {
		if r.store.taxRates[i].CategoryID == categoryID {
			out = append(out, r.store.taxRates[i])
		}
	}
	return out, nil
}

type stubCustomerRepo struct {
	store *stubStore
}

func (r *stubCustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	r.store.customers[customer.ID] = customer
	return nil
}

func (r *stubCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, ok := r.store.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *customer
	return &cp, nil
}

func (r *stubCustomerRepo) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Customer, int64, error) {
	var out []entity.Customer
	for _, customer := range r.store.customers {
		out = append(out, *customer)
	}
	return out, int64(len(out)), nil
}

// stubGateway scripts charge outcomes per idempotency key.
type stubGateway struct {
	results map[string]gateway.ChargeResult
	charges []gateway.ChargeRequest
}

func (g *stubGateway) Charge(ctx context.Context, req gateway.ChargeRequest) (gateway.ChargeResult, error) {
	g.charges = append(g.charges, req)
	if res, ok := g.results[req.IdempotencyKey]; ok {
		return res, nil
	}
	return gateway.ChargeResult{Succeeded: true, IntentID: "pi_test", TransactionID: "ch_test"}, nil
}

// fixture bundles everything a settlement test needs.
type fixture struct {
	store      *stubStore
	orders     *stubOrderRepo
	gateway    *stubGateway
	taxService *TaxService
	calculator *TotalsCalculator
	settlement *SettlementService
	split      *SplitService
	refunds    *RefundService
	merchantID uuid.UUID
}

func newFixture() *fixture {
	store := newStubStore()
	orders := &stubOrderRepo{store: store}
	gw := &stubGateway{results: make(map[string]gateway.ChargeResult)}
	taxService := NewTaxService(&stubTaxRepo{store: store})
	calculator := NewTotalsCalculator(&stubProductRepo{store: store}, &stubServiceRepo{store: store}, taxService, nil)
	validator := NewPaymentValidator("stripe")
	log := zap.NewNop()

	settlement := NewSettlementService(
		&stubTxManager{store: store},
		orders,
		&stubPaymentRepo{store: store},
		&stubTipRepo{store: store},
		&stubGiftcardRepo{store: store},
		calculator,
		validator,
		gw,
		log,
	)

	return &fixture{
		store:      store,
		orders:     orders,
		gateway:    gw,
		taxService: taxService,
		calculator: calculator,
		settlement: settlement,
		split:      NewSplitService(orders, calculator, settlement, log),
		refunds: NewRefundService(
			&stubTxManager{store: store},
			orders,
			&stubRefundRepo{store: store},
			&stubGiftcardRepo{store: store},
			calculator,
			log,
		),
		merchantID: uuid.New(),
	}
}

// addCategory creates a tax category with a single open-ended rate.
func (f *fixture) addCategory(percent string, from time.Time) uuid.UUID {
	category := &entity.TaxCategory{ID: uuid.New(), MerchantID: f.merchantID, Name: "standard"}
	f.store.taxCats[category.ID] = category
	f.store.taxRates = append(f.store.taxRates, entity.TaxRate{
		ID:            uuid.New(),
		CategoryID:    category.ID,
		Percent:       decimal.RequireFromString(percent),
		EffectiveFrom: from,
	})
	return category.ID
}

func (f *fixture) addProduct(priceCents int64, taxCategoryID *uuid.UUID) uuid.UUID {
	product := &entity.Product{
		ID:            uuid.New(),
		MerchantID:    f.merchantID,
		Name:          "espresso",
		PriceCents:    priceCents,
		TaxCategoryID: taxCategoryID,
	}
	f.store.products[product.ID] = product
	return product.ID
}

func (f *fixture) addGiftcard(code string, balanceCents int64) uuid.UUID {
	card := &entity.Giftcard{
		ID:                  uuid.New(),
		MerchantID:          f.merchantID,
		Code:                code,
		BalanceCents:        balanceCents,
		InitialBalanceCents: balanceCents,
		Active:              true,
		IssuedAt:            time.Now().UTC(),
	}
	f.store.giftcards[card.ID] = card
	return card.ID
}

// openOrder creates an open order with one item per (productID, quantity).
func (f *fixture) openOrder(openedAt time.Time, lines ...orderLine) *entity.Order {
	order := &entity.Order{
		ID:         uuid.New(),
		MerchantID: f.merchantID,
		EmployeeID: uuid.New(),
		OpenedAt:   openedAt,
	}
	for _, line := range lines {
		productID := line.productID
		order.Items = append(order.Items, entity.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: &productID,
			Quantity:  line.quantity,
		})
	}
	f.store.orders[order.ID] = order
	return order
}

type orderLine struct {
	productID uuid.UUID
	quantity  int
}

func cashPayment(amountCents int64) PaymentRequest {
	return PaymentRequest{
		Method:      enum.PaymentMethodCash,
		AmountCents: amountCents,
		Currency:    "EUR",
	}
}

func cardPayment(amountCents int64, idempotencyKey string) PaymentRequest {
	return PaymentRequest{
		Method:          enum.PaymentMethodCard,
		AmountCents:     amountCents,
		Currency:        "EUR",
		Provider:        "stripe",
		IdempotencyKey:  idempotencyKey,
		PaymentMethodID: "pm_card_visa",
	}
}

func giftcardPayment(amountCents int64, code string) PaymentRequest {
	return PaymentRequest{
		Method:       enum.PaymentMethodGiftCard,
		AmountCents:  amountCents,
		Currency:     "EUR",
		GiftcardCode: code,
	}
}
