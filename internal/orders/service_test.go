package orders

import (
	"context"
	"testing"
	"time"

	"github.com/ermiasgashu/suq-backend/pkg/db/models"
	"github.com/ermiasgashu/suq-backend/pkg/enums"
	pkgerrors "github.com/ermiasgashu/suq-backend/pkg/errors"
	"github.com/ermiasgashu/suq-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestOrder(status enums.OrderStatus, vendorID uuid.UUID) *models.Order {
	productID := uuid.New()
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   100001,
		CustomerID:    uuid.New(),
		CartID:        uuid.New(),
		OrderStatus:   status,
		PaymentStatus: enums.PaymentStatusPending,
		PaymentMethod: enums.PaymentMethodCashOnDelivery,
		SubtotalCents: 150000,
		TotalCents:    182500,
		Items: []models.OrderLineItem{{
			ID:                uuid.New(),
			ProductID:         &productID,
			VendorID:          vendorID,
			Title:             "Handwoven Basket",
			SKU:               "SKU-1",
			UnitPriceCents:    50000,
			Quantity:          3,
			LineSubtotalCents: 150000,
		}},
	}
}

func newOrderService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, &stubRestorer{}, nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func vendorActor(vendorID uuid.UUID) Actor {
	return Actor{UserID: uuid.New(), VendorID: &vendorID, Role: enums.ActorRoleVendor}
}

func adminActor() Actor {
	return Actor{UserID: uuid.New(), Role: enums.ActorRoleAdmin}
}

func TestAdvanceStatusVendorHappyPath(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	order := newTestOrder(enums.OrderStatusPending, vendorID)
	repo := newStubOrderRepo(order)
	svc := newOrderService(t, repo)

	got, err := svc.AdvanceStatus(context.Background(), AdvanceInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusProcessing,
		Actor:   vendorActor(vendorID),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OrderStatus != enums.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", got.OrderStatus)
	}
}

func TestAdvanceStatusRejectsSkips(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	order := newTestOrder(enums.OrderStatusPending, vendorID)
	repo := newStubOrderRepo(order)
	svc := newOrderService(t, repo)

	tracking := "ET-123"
	_, err := svc.AdvanceStatus(context.Background(), AdvanceInput{
		OrderID:        order.ID,
		Target:         enums.OrderStatusShipped,
		TrackingNumber: &tracking,
		Actor:          vendorActor(vendorID),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for skip, got %v", err)
	}
}

func TestAdvanceStatusShippedWithoutTracking(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	order := newTestOrder(enums.OrderStatusProcessing, vendorID)
	repo := newStubOrderRepo(order)
	svc := newOrderService(t, repo)

	// Not every carrier issues tracking numbers; shipping proceeds without one.
	got, err := svc.AdvanceStatus(context.Background(), AdvanceInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusShipped,
		Actor:   vendorActor(vendorID),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OrderStatus != enums.OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", got.OrderStatus)
	}
	if got.TrackingNumber != nil {
		t.Fatalf("expected no tracking recorded, got %q", *got.TrackingNumber)
	}
	if got.ShippedAt == nil {
		t.Fatal("expected shipped_at stamped")
	}
}

func TestAdvanceStatusShippedRecordsTracking(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	order := newTestOrder(enums.OrderStatusProcessing, vendorID)
	repo := newStubOrderRepo(order)
	svc := newOrderService(t, repo)

	tracking := "ET-123"
	got, err := svc.AdvanceStatus(context.Background(), AdvanceInput{
		OrderID:        order.ID,
		Target:         enums.OrderStatusShipped,
		TrackingNumber: &tracking,
		Actor:          vendorActor(vendorID),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TrackingNumber == nil || *got.TrackingNumber != tracking {
		t.Fatalf("expected tracking recorded, got %v", got.TrackingNumber)
	}
	if got.ShippedAt == nil {
		t.Fatal("expected shipped_at stamped")
	}
}

func TestAdvanceStatusRoleGates(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	order := newTestOrder(enums.OrderStatusShipped, vendorID)
	repo := newStubOrderRepo(order)
	svc := newOrderService(t, repo)

	// Vendors cannot confirm delivery.
	_, err := svc.AdvanceStatus(context.Background(), AdvanceInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusDelivered,
		Actor:   vendorActor(vendorID),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for vendor delivery, got %v", err)
	}

	// Customers cannot advance at all.
	_, err = svc.AdvanceStatus(context.Background(), AdvanceInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusDelivered,
		Actor:   Actor{UserID: order.CustomerID, Role: enums.ActorRoleCustomer},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for customer advance, got %v", err)
	}

	// Admins can.
	got, err := svc.AdvanceStatus(context.Background(), AdvanceInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusDelivered,
		Actor:   adminActor(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DeliveredAt == nil {
		t.Fatal("expected delivered_at stamped")
	}
}

func TestAdvanceStatusVendorNeedsOwnLines(t *testing.T) {
	t.Parallel()

	order := newTestOrder(enums.OrderStatusPending, uuid.New())
	repo := newStubOrderRepo(order)
	svc := newOrderService(t, repo)

	_, err := svc.AdvanceStatus(context.Background(), AdvanceInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusProcessing,
		Actor:   vendorActor(uuid.New()),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign vendor, got %v", err)
	}
}

func TestAdvanceStatusConcurrentLoserGetsConflict(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	order := newTestOrder(enums.OrderStatusPending, vendorID)
	repo := newStubOrderRepo(order)
	repo.failCAS = true
	svc := newOrderService(t, repo)

	_, err := svc.AdvanceStatus(context.Background(), AdvanceInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusProcessing,
		Actor:   vendorActor(vendorID),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for lost race, got %v", err)
	}
}

func TestCancelRestoresStockInsideWindow(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	order := newTestOrder(enums.OrderStatusProcessing, vendorID)
	repo := newStubOrderRepo(order)
	restorer := &stubRestorer{}
	svc, err := NewService(repo, stubTxRunner{}, restorer, nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	got, err := svc.Cancel(context.Background(), CancelInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusCancelled,
		Actor:   Actor{UserID: order.CustomerID, Role: enums.ActorRoleCustomer},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OrderStatus != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.OrderStatus)
	}
	if got.CancelledAt == nil {
		t.Fatal("expected cancelled_at stamped")
	}
	if restorer.restored != 3 {
		t.Fatalf("expected 3 units restored, got %d", restorer.restored)
	}
}

func TestCancelClosedAfterShipping(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	order := newTestOrder(enums.OrderStatusShipped, vendorID)
	repo := newStubOrderRepo(order)
	svc := newOrderService(t, repo)

	_, err := svc.Cancel(context.Background(), CancelInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusCancelled,
		Actor:   adminActor(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict after shipping, got %v", err)
	}
}

func TestCancelReturnedIsAdminOnly(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	order := newTestOrder(enums.OrderStatusProcessing, vendorID)
	repo := newStubOrderRepo(order)
	svc := newOrderService(t, repo)

	_, err := svc.Cancel(context.Background(), CancelInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusReturned,
		Actor:   Actor{UserID: order.CustomerID, Role: enums.ActorRoleCustomer},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for customer return, got %v", err)
	}
}

func TestCancelOtherCustomersOrder(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	order := newTestOrder(enums.OrderStatusPending, vendorID)
	repo := newStubOrderRepo(order)
	svc := newOrderService(t, repo)

	_, err := svc.Cancel(context.Background(), CancelInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusCancelled,
		Actor:   Actor{UserID: uuid.New(), Role: enums.ActorRoleCustomer},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign customer, got %v", err)
	}
}

func TestMarkPaymentStatus(t *testing.T) {
	t.Parallel()

	vendorID := uuid.New()
	order := newTestOrder(enums.OrderStatusPending, vendorID)
	repo := newStubOrderRepo(order)
	svc := newOrderService(t, repo)

	// Non-admins are rejected.
	_, err := svc.MarkPaymentStatus(context.Background(), PaymentInput{
		OrderID: order.ID,
		Target:  enums.PaymentStatusPaid,
		Actor:   vendorActor(vendorID),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	got, err := svc.MarkPaymentStatus(context.Background(), PaymentInput{
		OrderID: order.ID,
		Target:  enums.PaymentStatusPaid,
		Actor:   adminActor(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", got.PaymentStatus)
	}
	if got.PaidAt == nil {
		t.Fatal("expected paid_at stamped")
	}

	// Payment resolves once.
	_, err = svc.MarkPaymentStatus(context.Background(), PaymentInput{
		OrderID: order.ID,
		Target:  enums.PaymentStatusFailed,
		Actor:   adminActor(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on resolved payment, got %v", err)
	}
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRestorer struct {
	restored int
}

func (s *stubRestorer) Restore(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	s.restored += qty
	return nil
}

type stubOrderRepo struct {
	orders  map[uuid.UUID]*models.Order
	failCAS bool
}

func newStubOrderRepo(seed ...*models.Order) *stubOrderRepo {
	repo := &stubOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
	for _, order := range seed {
		repo.orders[order.ID] = order
	}
	return repo
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	var rows []models.Order
	for _, order := range s.orders {
		if order.CustomerID == customerID {
			rows = append(rows, *order)
		}
	}
	return rows, "", nil
}

func (s *stubOrderRepo) ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	var rows []models.Order
	for _, order := range s.orders {
		for _, line := range order.Items {
			if line.VendorID == vendorID {
				rows = append(rows, *order)
				break
			}
		}
	}
	return rows, "", nil
}

func (s *stubOrderRepo) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Order, string, error) {
	var rows []models.Order
	for _, order := range s.orders {
		rows = append(rows, *order)
	}
	return rows, "", nil
}

func (s *stubOrderRepo) ContainsVendorLines(ctx context.Context, orderID, vendorID uuid.UUID) (bool, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return false, nil
	}
	for _, line := range order.Items {
		if line.VendorID == vendorID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubOrderRepo) AdvanceStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus, updates map[string]any) (bool, error) {
	if s.failCAS {
		return false, nil
	}
	order, ok := s.orders[id]
	if !ok || order.OrderStatus != from {
		return false, nil
	}
	order.OrderStatus = to
	for col, val := range updates {
		switch col {
		case "tracking_number":
			tracking := val.(string)
			order.TrackingNumber = &tracking
		case "shipped_at":
			at := val.(time.Time)
			order.ShippedAt = &at
		case "delivered_at":
			at := val.(time.Time)
			order.DeliveredAt = &at
		case "cancelled_at":
			at := val.(time.Time)
			order.CancelledAt = &at
		}
	}
	return true, nil
}

func (s *stubOrderRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, from, to enums.PaymentStatus, paidAt *time.Time) (bool, error) {
	order, ok := s.orders[id]
	if !ok || order.PaymentStatus != from {
		return false, nil
	}
	order.PaymentStatus = to
	order.PaidAt = paidAt
	return true, nil
}

func (s *stubOrderRepo) ListDeliveredBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	var rows []models.Order
	for _, order := range s.orders {
		if order.OrderStatus == enums.OrderStatusDelivered && order.DeliveredAt != nil &&
			!order.DeliveredAt.Before(from) && order.DeliveredAt.Before(to) {
			rows = append(rows, *order)
		}
	}
	return rows, nil
}
