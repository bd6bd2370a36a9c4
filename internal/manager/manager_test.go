package manager

import (
	"path/filepath"
	"testing"

	"github.com/okeri/snmd/internal/connection"
	"github.com/okeri/snmd/internal/known"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	store, err := known.NewStore(filepath.Join(t.TempDir(), "networks.toml"))
	if err != nil {
		t.Fatalf("known.NewStore: %v", err)
	}
	core := connection.NewCore(nil)
	return New(core, store, nil)
}

func TestEnqueueKeepsOnlyLastPendingRequest(t *testing.T) {
	m := newTestManager(t)

	m.Enqueue(connection.ConnectionSetting{Kind: connection.SettingOpenWifi, Essid: "first"})
	m.Enqueue(connection.ConnectionSetting{Kind: connection.SettingOpenWifi, Essid: "second"})
	m.Enqueue(connection.ConnectionSetting{Kind: connection.SettingOpenWifi, Essid: "third"})

	setting, ok := m.drainRequests()
	if !ok {
		t.Fatal("expected a pending request to survive the drain")
	}
	if setting.Essid != "third" {
		t.Fatalf("drainRequests kept %q, want the most recently enqueued (\"third\")", setting.Essid)
	}

	if _, ok := m.drainRequests(); ok {
		t.Fatal("drainRequests should report nothing pending once already drained")
	}
}

func TestMaybeScanTriggersAfterScanEveryTicks(t *testing.T) {
	m := newTestManager(t)

	for i := 0; i < scanEvery-1; i++ {
		m.maybeScan()
		if m.scanCounter != i+1 {
			t.Fatalf("after %d maybeScan calls, scanCounter = %d, want %d", i+1, m.scanCounter, i+1)
		}
	}

	m.maybeScan() // the scanEvery-th call should fire the scan and reset
	if m.scanCounter != 0 {
		t.Fatalf("scanCounter after the due tick = %d, want 0", m.scanCounter)
	}
}

func TestMonitorRefcountNeverGoesNegative(t *testing.T) {
	m := newTestManager(t)

	m.RemoveMonitor() // no AddMonitor yet; must not underflow
	if m.monitors != 0 {
		t.Fatalf("monitors = %d, want 0", m.monitors)
	}

	m.AddMonitor()
	m.AddMonitor()
	m.RemoveMonitor()
	if m.monitors != 1 {
		t.Fatalf("monitors = %d, want 1", m.monitors)
	}
}
