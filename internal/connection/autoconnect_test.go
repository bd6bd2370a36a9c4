package connection

import "testing"

func TestAutoConnectPossibleDeterministic(t *testing.T) {
	password := "secret"
	known := map[string]KnownNetwork{
		"corp":  {Auto: true, Password: &password},
		"guest": {Auto: true},
	}

	c := NewCore(nil)
	c.current = ConnectionInfo{Kind: NotConnected}
	c.networks = NetworkList{
		{Essid: "corp", Quality: 90, Encrypted: true},
		{Essid: "guest", Quality: 40, Encrypted: false},
	}

	first := c.AutoConnectPossible(known)
	second := c.AutoConnectPossible(known)

	if first.Kind != second.Kind || first.Setting != second.Setting {
		t.Fatalf("AutoConnectPossible not deterministic: %+v != %+v", first, second)
	}
	if first.Kind != Connect || first.Setting.Essid != "corp" {
		t.Fatalf("expected Connect(corp) (first match, highest quality), got %+v", first)
	}
	if c.CurrentState().Kind != NotConnected {
		t.Fatalf("AutoConnectPossible must not mutate current state, got %v", c.CurrentState().Kind)
	}
}

func TestAutoConnectPossibleEmptyListRescans(t *testing.T) {
	c := NewCore(nil)
	c.current = ConnectionInfo{Kind: NotConnected}

	decision := c.AutoConnectPossible(map[string]KnownNetwork{})
	if decision.Kind != Rescan {
		t.Fatalf("expected Rescan for empty network list, got %+v", decision)
	}
}

func TestAutoConnectPossibleUnknownNetworkDoesNothing(t *testing.T) {
	c := NewCore(nil)
	c.current = ConnectionInfo{Kind: NotConnected}
	c.networks = NetworkList{{Essid: "unknown-ap", Quality: 80, Encrypted: true}}

	decision := c.AutoConnectPossible(map[string]KnownNetwork{})
	if decision.Kind != DoNothing {
		t.Fatalf("expected DoNothing when no scanned essid is known, got %+v", decision)
	}
}

func TestAutoConnectPossibleConnectingIsNoop(t *testing.T) {
	c := NewCore(nil)
	c.current = ConnectionInfo{Kind: ConnectingWifi, Essid: "corp"}

	decision := c.AutoConnectPossible(map[string]KnownNetwork{})
	if decision.Kind != DoNothing {
		t.Fatalf("expected DoNothing while Connecting*, got %+v", decision)
	}
}
