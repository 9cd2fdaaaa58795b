package enums

import "testing"

func TestOrderStatusForwardChainIsSingleStep(t *testing.T) {
	steps := []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
	}
	for i := 0; i < len(steps)-1; i++ {
		if !steps[i].CanAdvanceTo(steps[i+1]) {
			t.Fatalf("%s should advance to %s", steps[i], steps[i+1])
		}
	}
	// skipping a state is never permitted
	if OrderStatusPending.CanAdvanceTo(OrderStatusShipped) {
		t.Fatal("pending must not jump to shipped")
	}
	if OrderStatusProcessing.CanAdvanceTo(OrderStatusDelivered) {
		t.Fatal("processing must not jump to delivered")
	}
	// no backward moves
	if OrderStatusShipped.CanAdvanceTo(OrderStatusProcessing) {
		t.Fatal("shipped must not move backward")
	}
}

func TestOrderStatusTerminalStates(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned} {
		if !status.IsTerminal() {
			t.Fatalf("%s should be terminal", status)
		}
		if _, ok := status.Next(); ok {
			t.Fatalf("%s should have no forward successor", status)
		}
	}
}

func TestOrderStatusCancelWindow(t *testing.T) {
	if !OrderStatusPending.CanCancel() || !OrderStatusProcessing.CanCancel() {
		t.Fatal("early states must allow cancellation")
	}
	for _, status := range []OrderStatus{OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned} {
		if status.CanCancel() {
			t.Fatalf("%s must not allow cancellation", status)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("shipped")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != OrderStatusShipped {
		t.Fatalf("unexpected status %s", status)
	}
	if _, err := ParseOrderStatus("teleported"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
