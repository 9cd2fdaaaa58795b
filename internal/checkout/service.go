package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ermiasgashu/suq-backend/internal/cart"
	"github.com/ermiasgashu/suq-backend/internal/orders"
	"github.com/ermiasgashu/suq-backend/pkg/db/models"
	"github.com/ermiasgashu/suq-backend/pkg/enums"
	pkgerrors "github.com/ermiasgashu/suq-backend/pkg/errors"
	"github.com/ermiasgashu/suq-backend/pkg/metrics"
	"github.com/ermiasgashu/suq-backend/pkg/pricing"
	"github.com/ermiasgashu/suq-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type stockDecrementer interface {
	Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (bool, error)
}

// Service drives the guarded checkout flow from an active cart to a placed
// order. Steps advance strictly in order: shipping, payment, review, placed.
type Service interface {
	Start(ctx context.Context, customerID uuid.UUID) (*Session, error)
	Current(ctx context.Context, customerID uuid.UUID) (*Session, error)
	SubmitShipping(ctx context.Context, customerID uuid.UUID, input ShippingInput) (*Session, error)
	SubmitPayment(ctx context.Context, customerID uuid.UUID, method enums.PaymentMethod) (*Session, error)
	Back(ctx context.Context, customerID uuid.UUID) (*Session, error)
	Confirm(ctx context.Context, customerID uuid.UUID) (*models.Order, error)
}

// ShippingInput carries the addresses captured at the shipping step. A nil
// billing address falls back to the shipping address.
type ShippingInput struct {
	ShippingAddress types.Address
	BillingAddress  *types.Address
}

type service struct {
	sessions   SessionStore
	cartRepo   cart.Repository
	ordersRepo orders.Repository
	products   productLoader
	stock      stockDecrementer
	tx         txRunner
	pricing    pricing.Config
	metrics    *metrics.OrderMetrics
}

// NewService builds the checkout service.
func NewService(
	sessions SessionStore,
	cartRepo cart.Repository,
	ordersRepo orders.Repository,
	products productLoader,
	stock stockDecrementer,
	tx txRunner,
	cfg pricing.Config,
	m *metrics.OrderMetrics,
) (Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock decrementer required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pricing config: %w", err)
	}
	return &service{
		sessions:   sessions,
		cartRepo:   cartRepo,
		ordersRepo: ordersRepo,
		products:   products,
		stock:      stock,
		tx:         tx,
		pricing:    cfg,
		metrics:    m,
	}, nil
}

// Start opens a checkout session for the customer's active cart. Calling
// Start with a session already in flight returns that session unchanged.
func (s *service) Start(ctx context.Context, customerID uuid.UUID) (*Session, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	if existing, err := s.sessions.Load(ctx, customerID); err != nil {
		return nil, err
	} else if existing != nil && existing.Step != enums.CheckoutStepPlaced {
		return existing, nil
	}

	record, err := s.loadActiveCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	session := &Session{
		CustomerID: customerID,
		CartID:     record.ID,
		Step:       enums.CheckoutStepShipping,
		StartedAt:  time.Now().UTC(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Current returns the in-flight session.
func (s *service) Current(ctx context.Context, customerID uuid.UUID) (*Session, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	session, err := s.sessions.Load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no checkout session in progress")
	}
	return session, nil
}

// SubmitShipping records the addresses and advances to the payment step.
// The cart is re-checked here: emptying it mid-checkout stops the flow at
// whichever step is entered next.
func (s *service) SubmitShipping(ctx context.Context, customerID uuid.UUID, input ShippingInput) (*Session, error) {
	session, err := s.requireStep(ctx, customerID, enums.CheckoutStepShipping)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadActiveCart(ctx, customerID); err != nil {
		return nil, err
	}

	shipping := input.ShippingAddress.Normalize()
	if field := shipping.Validate(); field != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("shipping address %s is required", field))
	}

	billing := shipping
	if input.BillingAddress != nil {
		billing = input.BillingAddress.Normalize()
		if field := billing.Validate(); field != "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("billing address %s is required", field))
		}
	}

	session.ShippingAddress = &shipping
	session.BillingAddress = &billing
	session.Step = enums.CheckoutStepPayment
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitPayment records the payment method, snapshots the totals for the
// review step, and advances.
func (s *service) SubmitPayment(ctx context.Context, customerID uuid.UUID, method enums.PaymentMethod) (*Session, error) {
	session, err := s.requireStep(ctx, customerID, enums.CheckoutStepPayment)
	if err != nil {
		return nil, err
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	record, err := s.loadActiveCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.computeBreakdown(record)
	if err != nil {
		return nil, err
	}

	session.PaymentMethod = &method
	session.Breakdown = &breakdown
	session.Step = enums.CheckoutStepReview
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Back steps the session one step towards shipping. Collected data is kept
// so moving forward again does not re-enter it.
func (s *service) Back(ctx context.Context, customerID uuid.UUID) (*Session, error) {
	session, err := s.Current(ctx, customerID)
	if err != nil {
		return nil, err
	}

	switch session.Step {
	case enums.CheckoutStepPayment:
		session.Step = enums.CheckoutStepShipping
	case enums.CheckoutStepReview:
		session.Step = enums.CheckoutStepPayment
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "already at the first checkout step")
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Confirm places the order: stock is taken with conditional decrements, the
// order snapshot is written, and the cart flips to converted, all in one
// transaction. Totals are recomputed here and frozen on the order.
func (s *service) Confirm(ctx context.Context, customerID uuid.UUID) (*models.Order, error) {
	session, err := s.requireStep(ctx, customerID, enums.CheckoutStepReview)
	if err != nil {
		return nil, err
	}
	if session.ShippingAddress == nil || session.PaymentMethod == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "checkout session is missing earlier steps")
	}

	var placed *models.Order
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		record, err := cartRepo.FindByIDAndCustomer(ctx, session.CartID, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if record.Status != enums.CartStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart was already processed")
		}
		if len(record.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
		}

		breakdown, err := s.computeBreakdown(record)
		if err != nil {
			return err
		}

		lines := make([]models.OrderLineItem, 0, len(record.Items))
		for _, item := range record.Items {
			ok, err := s.stock.Decrement(ctx, tx, item.ProductID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for an item in the cart").
					WithDetails(map[string]any{"product_id": item.ProductID})
			}

			product, err := s.products.GetProduct(ctx, item.ProductID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}

			productID := item.ProductID
			lines = append(lines, models.OrderLineItem{
				ProductID:         &productID,
				VendorID:          item.VendorID,
				Title:             product.Title,
				SKU:               product.SKU,
				UnitPriceCents:    item.UnitPriceCents,
				Quantity:          item.Quantity,
				LineSubtotalCents: item.LineSubtotalCents,
				CustomizationNote: item.CustomizationNote,
			})
		}

		order := &models.Order{
			CustomerID:      customerID,
			CartID:          record.ID,
			OrderStatus:     enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusPending,
			PaymentMethod:   *session.PaymentMethod,
			Currency:        enums.CurrencyETB,
			ShippingAddress: *session.ShippingAddress,
			BillingAddress:  *session.BillingAddress,
			SubtotalCents:   breakdown.SubtotalCents,
			ShippingCents:   breakdown.ShippingCents,
			TaxCents:        breakdown.TaxCents,
			DiscountCents:   breakdown.DiscountCents,
			TotalCents:      breakdown.TotalCents,
			Items:           lines,
		}
		if _, err := ordersRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		converted, err := cartRepo.MarkConverted(ctx, record.ID, time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "convert cart")
		}
		if converted == 0 {
			// A concurrent Confirm won the conversion; rolling back here
			// returns the stock this transaction took.
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart was already processed")
		}

		placed = order
		return nil
	}); err != nil {
		return nil, err
	}

	s.metrics.IncPlaced()

	// The placed marker lets a polling client observe the outcome; it then
	// ages out with the session TTL.
	session.Step = enums.CheckoutStepPlaced
	if err := s.sessions.Save(ctx, session); err != nil {
		return placed, nil
	}

	return placed, nil
}

func (s *service) requireStep(ctx context.Context, customerID uuid.UUID, step enums.CheckoutStep) (*Session, error) {
	session, err := s.Current(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if session.Step != step {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("checkout is at the %s step, not %s", session.Step, step))
	}
	return session, nil
}

func (s *service) loadActiveCart(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	record, err := s.cartRepo.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart to check out")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}
	return record, nil
}

func (s *service) computeBreakdown(record *models.CartRecord) (pricing.Breakdown, error) {
	var subtotal int64
	for _, item := range record.Items {
		subtotal += item.LineSubtotalCents
	}
	breakdown, err := pricing.Compute(subtotal, 0, s.pricing)
	if err != nil {
		return pricing.Breakdown{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute totals")
	}
	return breakdown, nil
}
