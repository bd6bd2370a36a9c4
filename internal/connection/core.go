package connection

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// AuthMaxTries and AssocMaxTries bound how many one-second polls a connect
// attempt spends waiting for wpa_supplicant to reach COMPLETED, per
// spec.md §4.C step 3.
const (
	AuthMaxTries  = 30
	AssocMaxTries = 12
)

// NetworkCheckIntervalSeconds and NetworkScanIntervalSeconds are consumed by
// the orchestrator loop (internal/manager); nothing in this package uses them.
const (
	NetworkCheckIntervalSeconds = 2
	NetworkScanIntervalSeconds  = 14
)

// ReachabilityHook is called, best-effort, after a lease is acquired and
// before the connect attempt commits. It must never block the phase machine
// on failure; see internal/probe for the concrete implementation wired in by
// the daemon's main package.
type ReachabilityHook func(corrID, iface, ip string)

// Core owns every piece of shared mutable state in the daemon: the interface
// registry, the current connection, the network list, and the TryBudget. It
// is the "Connection Orchestrator" named in spec.md §1.
type Core struct {
	ifaces *Registry

	tries atomic.Int64 // TryBudget: >0 in-flight, 0 = abort requested

	currentMu sync.RWMutex
	current   ConnectionInfo

	networksMu sync.Mutex
	networks   NetworkList

	emitter Emitter

	// Reachability is an optional post-lease informational probe; nil is a
	// valid no-op value.
	Reachability ReachabilityHook
}

// NewCore builds a Core with an empty interface registry and NotConnected
// state, wired to emitter for every SignalMsg it produces.
func NewCore(emitter Emitter) *Core {
	return &Core{
		ifaces:  NewRegistry(),
		current: ConnectionInfo{Kind: NotConnected},
		emitter: emitter,
	}
}

// SetEmitter (re)binds the emitter after construction, for callers (main)
// that must build the D-Bus service from a live Core before the Core can be
// given its emitter.
func (c *Core) SetEmitter(emitter Emitter) {
	c.emitter = emitter
}

func (c *Core) signal(corrID string, msg SignalMsg) {
	msg.CorrID = corrID
	if c.emitter != nil {
		c.emitter.Emit(msg)
	}
}

func newCorrelationID() string {
	return uuid.NewString()[:8]
}

// changeState atomically replaces the current state and emits exactly one
// StateChanged, per spec.md §4.C step 7 / §5 ordering guarantee.
func (c *Core) changeState(corrID string, info ConnectionInfo) {
	c.currentMu.Lock()
	c.current = info
	c.currentMu.Unlock()
	c.signal(corrID, SignalMsg{StateChanged: &info})
}

// CurrentState returns a snapshot of the current connection info.
func (c *Core) CurrentState() ConnectionInfo {
	c.currentMu.RLock()
	defer c.currentMu.RUnlock()
	return c.current
}

// GetNetworks returns a snapshot of the current network list.
func (c *Core) GetNetworks() NetworkList {
	c.networksMu.Lock()
	defer c.networksMu.Unlock()
	return c.networks.Clone()
}

// AllowReconnect is false only while wired, per spec.md §4.H.
func (c *Core) AllowReconnect() bool {
	return !c.CurrentState().Wired()
}

// Registry exposes the interface registry for callers (the manager's warm
// start path, the netlink watcher) that need to trigger detection directly.
func (c *Core) Registry() *Registry {
	return c.ifaces
}

func (c *Core) getNetwork(essid string) (NetworkInfo, bool) {
	c.networksMu.Lock()
	defer c.networksMu.Unlock()
	for _, n := range c.networks {
		if !n.IsEthernet && n.Essid == essid {
			return n, true
		}
	}
	return NetworkInfo{}, false
}

func (c *Core) setNetworks(list NetworkList) {
	c.networksMu.Lock()
	c.networks = list
	c.networksMu.Unlock()
}
