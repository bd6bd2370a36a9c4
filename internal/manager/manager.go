// Package manager implements the orchestrator loop named in spec.md §4.G: a
// dedicated worker that ticks on a fixed interval, merges explicit connect
// requests with auto-connect policy, and drives the connection core.
package manager

import (
	"log"
	"sync"
	"time"

	"github.com/okeri/snmd/internal/connection"
	"github.com/okeri/snmd/internal/known"
)

const (
	checkInterval = connection.NetworkCheckIntervalSeconds * time.Second
	scanEvery     = connection.NetworkScanIntervalSeconds / connection.NetworkCheckIntervalSeconds
)

// Recorder receives connect/scan observations; internal/metrics implements
// it. Nil is a valid no-op value.
type Recorder interface {
	ObserveConnectAttempt(kind string)
	ObserveConnectOutcome(status string)
	ObserveScan()
	SetCurrentQuality(quality uint32)
}

// Manager runs the tick loop described by spec.md §4.G atop a
// connection.Core and a known.Store.
type Manager struct {
	core     *connection.Core
	known    *known.Store
	recorder Recorder

	requests chan connection.ConnectionSetting

	mu          sync.Mutex
	autoConnect bool
	scanCounter int
	monitors    int

	stop chan struct{}
	done chan struct{}
}

// New builds a Manager. Call Run in its own goroutine and Stop to drain it.
// rec may be nil. autoConnect starts true, matching the original daemon
// (_examples/original_source/snm/src/snm.rs's AtomicBool::new(true)): a cold
// start with no queued request must still reach the auto-connect branch of
// the first tick, per spec.md §8 end-to-end scenarios 1/2/5/6.
func New(core *connection.Core, store *known.Store, rec Recorder) *Manager {
	return &Manager{
		core:        core,
		known:       store,
		recorder:    rec,
		autoConnect: true,
		requests:    make(chan connection.ConnectionSetting, 1),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

func settingKind(s connection.ConnectionSetting) string {
	switch s.Kind {
	case connection.SettingEthernet:
		return "ethernet"
	case connection.SettingWifi:
		return "wifi"
	default:
		return "open_wifi"
	}
}

// connect runs core.Connect while recording an attempt/outcome pair.
func (m *Manager) connect(setting connection.ConnectionSetting) bool {
	if m.recorder != nil {
		m.recorder.ObserveConnectAttempt(settingKind(setting))
	}
	ok := m.core.Connect(setting)
	if m.recorder != nil {
		outcome := "success"
		if !ok {
			outcome = "failure"
		}
		m.recorder.ObserveConnectOutcome(outcome)
	}
	return ok
}

func (m *Manager) scan() {
	if m.recorder != nil {
		m.recorder.ObserveScan()
	}
	m.core.Scan()
}

// Enqueue posts a user-requested ConnectionSetting for the next tick,
// matching spec.md §4.H's "single-producer-multi-caller request channel".
// Only the most recent pending request survives a drain.
func (m *Manager) Enqueue(s connection.ConnectionSetting) {
	select {
	case m.requests <- s:
	default:
		select {
		case <-m.requests:
		default:
		}
		m.requests <- s
	}
}

// SetAutoConnect toggles the auto-connect flag, used by the RPC adapter's
// disconnect() (which always disables it) and by a successful connect
// (which always enables it).
func (m *Manager) SetAutoConnect(v bool) {
	m.mu.Lock()
	m.autoConnect = v
	m.mu.Unlock()
}

// AddMonitor/RemoveMonitor implement the monitor reference count from
// spec.md §4.H; a positive count enables the proxy-driven rescan path.
func (m *Manager) AddMonitor() {
	m.mu.Lock()
	m.monitors++
	m.mu.Unlock()
}

func (m *Manager) RemoveMonitor() {
	m.mu.Lock()
	if m.monitors > 0 {
		m.monitors--
	}
	m.mu.Unlock()
}

// Run executes the tick loop until Stop is called. It should be started in
// its own goroutine; Acquire should be called by the caller beforehand.
func (m *Manager) Run() {
	defer close(m.done)
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

// Stop signals Run to drain and exit, and blocks until it has.
func (m *Manager) Stop() {
	close(m.stop)
	<-m.done
}

func (m *Manager) tick() {
	if setting, ok := m.drainRequests(); ok {
		if m.connect(setting) {
			m.SetAutoConnect(true)
			m.resetScanCounter()
		}
	} else {
		m.mu.Lock()
		auto := m.autoConnect
		m.mu.Unlock()

		if auto {
			decision := m.core.AutoConnectPossible(m.known.Snapshot())
			switch decision.Kind {
			case connection.Connect:
				if !m.connect(decision.Setting) {
					m.core.Disconnect()
				}
			case connection.Disconnect:
				m.core.Disconnect()
				m.scan()
				m.resetScanCounter()
			case connection.Rescan:
				m.maybeScan()
			case connection.DoNothing:
				m.incrementScanCounter()
			}
		}
	}

	m.maybeProxyRefresh()
	m.reportCurrentQuality()
}

// reportCurrentQuality publishes the signal quality of the active Wi-Fi
// connection, or 0 when not on Wi-Fi, to the metrics Recorder.
func (m *Manager) reportCurrentQuality() {
	if m.recorder == nil {
		return
	}
	info := m.core.CurrentState()
	var quality uint32
	if info.Kind == connection.Wifi {
		quality = info.Quality
	}
	m.recorder.SetCurrentQuality(quality)
}

func (m *Manager) drainRequests() (connection.ConnectionSetting, bool) {
	var last connection.ConnectionSetting
	got := false
	for {
		select {
		case s := <-m.requests:
			last, got = s, true
		default:
			return last, got
		}
	}
}

// maybeScan implements the Rescan dispatch: scan only once the counter has
// reached NETWORK_SCAN_INTERVAL/NETWORK_CHECK_INTERVAL, else increment.
func (m *Manager) maybeScan() {
	m.mu.Lock()
	m.scanCounter++
	due := m.scanCounter >= scanEvery
	if due {
		m.scanCounter = 0
	}
	m.mu.Unlock()

	if due {
		m.scan()
	}
}

func (m *Manager) maybeProxyRefresh() {
	m.mu.Lock()
	hasMonitor := m.monitors > 0
	due := m.scanCounter >= scanEvery
	if hasMonitor && due {
		m.scanCounter = 0
	}
	m.mu.Unlock()

	if hasMonitor && due {
		m.scan()
	}
}

func (m *Manager) incrementScanCounter() {
	m.mu.Lock()
	m.scanCounter++
	m.mu.Unlock()
}

func (m *Manager) resetScanCounter() {
	m.mu.Lock()
	m.scanCounter = 0
	m.mu.Unlock()
}

// Acquire runs the warm-start path once, before Run's first tick.
func (m *Manager) Acquire() {
	m.core.Registry().Detect()
	m.core.Acquire()
	if m.core.CurrentState().Active() {
		m.SetAutoConnect(true)
	}
	m.reportCurrentQuality()
	log.Printf("manager: warm start complete, state=%v", m.core.CurrentState().Kind)
}
