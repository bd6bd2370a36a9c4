package connection

import "testing"

func TestAllowReconnectFalseWhenWired(t *testing.T) {
	c := NewCore(nil)
	c.current = ConnectionInfo{Kind: Ethernet, IP: "192.0.2.10"}
	if c.AllowReconnect() {
		t.Fatal("AllowReconnect must be false while current state is wired")
	}

	c.current = ConnectionInfo{Kind: Wifi, Essid: "home"}
	if !c.AllowReconnect() {
		t.Fatal("AllowReconnect must be true while current state is wifi")
	}
}

// waitForAssociation has no wpa_cli on the test host, so every poll's `run`
// call fails fast and returns "" without ever observing wpa_state=COMPLETED;
// this exercises the budget-exhaustion and abort paths without mocking.
func TestWaitForAssociationExhaustion(t *testing.T) {
	c := NewCore(nil)
	c.tries.Store(1) // decrements straight to 0, returns before any sleep

	associated, aborted := c.waitForAssociation("wlan0")
	if associated {
		t.Fatal("expected association to fail: no wpa_cli present in the test environment")
	}
	if aborted {
		t.Fatal("budget exhaustion is not the same as an external abort")
	}
}

func TestWaitForAssociationAbort(t *testing.T) {
	c := NewCore(nil)
	c.tries.Store(0) // simulates a concurrent disconnect() zeroing the budget

	associated, aborted := c.waitForAssociation("wlan0")
	if associated {
		t.Fatal("expected association to fail when the budget is already zero")
	}
	if !aborted {
		t.Fatal("expected abort to be observed when TryBudget is zero at the first poll")
	}
}

func TestDisconnectZeroesBudgetAndClearsState(t *testing.T) {
	c := NewCore(nil)
	c.tries.Store(AuthMaxTries)
	c.current = ConnectionInfo{Kind: ConnectingWifi, Essid: "corp"}

	c.Disconnect()

	if c.tries.Load() != 0 {
		t.Fatalf("Disconnect must zero TryBudget, got %d", c.tries.Load())
	}
	if c.CurrentState().Kind != NotConnected {
		t.Fatalf("Disconnect must transition to NotConnected, got %v", c.CurrentState().Kind)
	}
}
