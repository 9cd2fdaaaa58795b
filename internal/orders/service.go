package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ermiasgashu/suq-backend/pkg/db/models"
	"github.com/ermiasgashu/suq-backend/pkg/enums"
	pkgerrors "github.com/ermiasgashu/suq-backend/pkg/errors"
	"github.com/ermiasgashu/suq-backend/pkg/metrics"
	"github.com/ermiasgashu/suq-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// InventoryRestorer returns stock when an order exits the flow early.
type InventoryRestorer interface {
	Restore(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

// Service defines fulfillment operations beyond repository reads.
type Service interface {
	GetForActor(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	ListForVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	ListAll(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Order, string, error)
	AdvanceStatus(ctx context.Context, input AdvanceInput) (*models.Order, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Order, error)
	MarkPaymentStatus(ctx context.Context, input PaymentInput) (*models.Order, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	inventory InventoryRestorer
	metrics   *metrics.OrderMetrics
}

// NewService builds an order fulfillment service with the required dependencies.
func NewService(repo Repository, tx txRunner, inventory InventoryRestorer, m *metrics.OrderMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory restorer required")
	}
	return &service{repo: repo, tx: tx, inventory: inventory, metrics: m}, nil
}

// vendorAdvanceTargets are the forward steps a vendor may drive. Delivery
// confirmation stays with platform staff.
var vendorAdvanceTargets = map[enums.OrderStatus]struct{}{
	enums.OrderStatusProcessing: {},
	enums.OrderStatusShipped:    {},
}

// GetForActor loads an order, scoped by the actor's role.
func (s *service) GetForActor(ctx context.Context, orderID uuid.UUID, actor Actor) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, order, actor); err != nil {
		return nil, err
	}
	return order, nil
}

// ListForCustomer returns the customer's own orders.
func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	if customerID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	rows, next, err := s.repo.ListByCustomer(ctx, customerID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, next, nil
}

// ListForVendor returns orders carrying at least one of the vendor's lines.
func (s *service) ListForVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	if vendorID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	rows, next, err := s.repo.ListByVendor(ctx, vendorID, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor orders")
	}
	return rows, next, nil
}

// ListAll returns all orders matching the filter, for admin views.
func (s *service) ListAll(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Order, string, error) {
	rows, next, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, next, nil
}

// AdvanceStatus moves the order exactly one step along the fulfillment
// chain. Concurrent advances race on a conditional update: the loser gets a
// state conflict rather than a double transition.
func (s *service) AdvanceStatus(ctx context.Context, input AdvanceInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	switch input.Actor.Role {
	case enums.ActorRoleAdmin:
		// Admins may drive any forward step.
	case enums.ActorRoleVendor:
		if _, ok := vendorAdvanceTargets[input.Target]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendors cannot set this status")
		}
		if err := s.requireVendorLines(ctx, order.ID, input.Actor); err != nil {
			return nil, err
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot advance orders")
	}

	from := order.OrderStatus
	if !from.CanAdvanceTo(input.Target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", from, input.Target))
	}

	now := time.Now().UTC()
	updates := map[string]any{}
	switch input.Target {
	case enums.OrderStatusShipped:
		// Tracking is optional; when present it is written once, in the
		// same conditional update that enters shipped.
		if input.TrackingNumber != nil {
			if tracking := strings.TrimSpace(*input.TrackingNumber); tracking != "" {
				updates["tracking_number"] = tracking
			}
		}
		updates["shipped_at"] = now
	case enums.OrderStatusDelivered:
		updates["delivered_at"] = now
	}

	ok, err := s.repo.AdvanceStatus(ctx, order.ID, from, input.Target, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order status")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently; reload and retry")
	}

	s.metrics.IncTransition(from.String(), input.Target.String())
	return s.loadOrder(ctx, order.ID)
}

// Cancel exits the order to cancelled or returned and puts its stock back.
// Both exits share the same early window: once shipped, the order can only
// move forward.
func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.Target != enums.OrderStatusCancelled && input.Target != enums.OrderStatusReturned {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target must be cancelled or returned")
	}
	if input.Target == enums.OrderStatusReturned && input.Actor.Role != enums.ActorRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can mark orders returned")
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, order, input.Actor); err != nil {
		return nil, err
	}

	from := order.OrderStatus
	if !from.CanCancel() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order in status %s can no longer be %s", from, input.Target))
	}

	now := time.Now().UTC()
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		ok, err := txRepo.AdvanceStatus(ctx, order.ID, from, input.Target, map[string]any{
			"cancelled_at": now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently; reload and retry")
		}
		for _, line := range order.Items {
			if line.ProductID == nil {
				continue
			}
			if err := s.inventory.Restore(ctx, tx, *line.ProductID, line.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.metrics.IncTransition(from.String(), input.Target.String())
	return s.loadOrder(ctx, order.ID)
}

// MarkPaymentStatus records the payment outcome. Payment moves once, from
// pending to paid or failed.
func (s *service) MarkPaymentStatus(ctx context.Context, input PaymentInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if input.Actor.Role != enums.ActorRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can update payment status")
	}
	if input.Target != enums.PaymentStatusPaid && input.Target != enums.PaymentStatusFailed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target must be paid or failed")
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus != enums.PaymentStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment already resolved as %s", order.PaymentStatus))
	}

	var paidAt *time.Time
	if input.Target == enums.PaymentStatusPaid {
		now := time.Now().UTC()
		paidAt = &now
	}

	ok, err := s.repo.UpdatePaymentStatus(ctx, order.ID, enums.PaymentStatusPending, input.Target, paidAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment status changed concurrently")
	}

	return s.loadOrder(ctx, order.ID)
}

func (s *service) loadOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) authorize(ctx context.Context, order *models.Order, actor Actor) error {
	switch actor.Role {
	case enums.ActorRoleAdmin:
		return nil
	case enums.ActorRoleCustomer:
		if order.CustomerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
		}
		return nil
	case enums.ActorRoleVendor:
		return s.requireVendorLines(ctx, order.ID, actor)
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}
}

func (s *service) requireVendorLines(ctx context.Context, orderID uuid.UUID, actor Actor) error {
	if actor.VendorID == nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "vendor token missing vendor id")
	}
	has, err := s.repo.ContainsVendorLines(ctx, orderID, *actor.VendorID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check vendor lines")
	}
	if !has {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order has no items from this vendor")
	}
	return nil
}
