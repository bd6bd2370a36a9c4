// Package dbus is the RPC surface adapter named in spec.md §4.H: it
// translates external desktop-bus calls into operations on the connection
// core and the known-network store, and fans out Core's SignalMsg stream as
// D-Bus signals to whatever proxies are currently alive.
package dbus

import (
	"fmt"
	"log"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/okeri/snmd/internal/connection"
	"github.com/okeri/snmd/internal/known"
)

const (
	ServiceName = "org.snm.Manager"
	ObjectPath  = "/org/snm/Manager"
	Interface   = "org.snm.Manager"
)

// Enqueuer is the subset of *manager.Manager the adapter drives; kept as an
// interface so this package does not import manager (which imports this
// one's sibling, connection, but never dbus).
type Enqueuer interface {
	Enqueue(connection.ConnectionSetting)
	SetAutoConnect(bool)
	AddMonitor()
	RemoveMonitor()
}

// Service is the exported D-Bus object implementing org.snm.Manager.
type Service struct {
	conn *dbus.Conn
	core *connection.Core
	mgr  Enqueuer
	known *known.Store

	emitMu sync.Mutex

	monitorMu sync.Mutex
	owners    map[string]struct{} // bus names currently holding a monitor reference
}

// NewService connects to the system bus, registers ServiceName, and exports
// the object, its introspection data, and a NameOwnerChanged watch used to
// auto-decrement the monitor reference count on client death.
func NewService(core *connection.Core, mgr Enqueuer, store *known.Store) (*Service, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect to system bus: %w", err)
	}

	s := &Service{
		conn:   conn,
		core:   core,
		mgr:    mgr,
		known:  store,
		owners: make(map[string]struct{}),
	}

	reply, err := conn.RequestName(ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request name %s: %w", ServiceName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("name %s already taken", ServiceName)
	}

	if err := conn.Export(s, ObjectPath, Interface); err != nil {
		conn.Close()
		return nil, fmt.Errorf("export %s: %w", Interface, err)
	}

	node := &introspect.Node{
		Name: ObjectPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: s.methods(),
				Signals: s.signals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ObjectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("export introspectable: %w", err)
	}

	if err := s.watchNameOwnerChanged(); err != nil {
		log.Printf("dbus: monitor liveness tracking unavailable: %v", err)
	}

	return s, nil
}

// Close releases the bus connection.
func (s *Service) Close() {
	s.conn.Close()
}

func (s *Service) methods() []introspect.Method {
	return []introspect.Method{
		{Name: "Connect", Args: []introspect.Arg{
			{Name: "tp", Type: "u", Direction: "in"},
			{Name: "essid", Type: "s", Direction: "in"},
			{Name: "enc", Type: "b", Direction: "in"},
		}},
		{Name: "Disconnect"},
		{Name: "GetState", Args: []introspect.Arg{
			{Name: "tag", Type: "u", Direction: "out"},
			{Name: "essid", Type: "s", Direction: "out"},
			{Name: "encrypted", Type: "b", Direction: "out"},
			{Name: "quality", Type: "u", Direction: "out"},
			{Name: "ip", Type: "s", Direction: "out"},
		}},
		{Name: "GetNetworks", Args: []introspect.Arg{
			{Name: "networks", Type: "a(usbu)", Direction: "out"},
		}},
		{Name: "GetProps", Args: []introspect.Arg{
			{Name: "essid", Type: "s", Direction: "in"},
			{Name: "password", Type: "s", Direction: "out"},
			{Name: "threshold", Type: "i", Direction: "out"},
			{Name: "auto", Type: "b", Direction: "out"},
			{Name: "hasPassword", Type: "b", Direction: "out"},
			{Name: "hasThreshold", Type: "b", Direction: "out"},
		}},
		{Name: "SetProps", Args: []introspect.Arg{
			{Name: "essid", Type: "s", Direction: "in"},
			{Name: "password", Type: "s", Direction: "in"},
			{Name: "threshold", Type: "i", Direction: "in"},
			{Name: "auto", Type: "b", Direction: "in"},
			{Name: "hasPassword", Type: "b", Direction: "in"},
			{Name: "hasThreshold", Type: "b", Direction: "in"},
		}},
		{Name: "Monitor", Args: []introspect.Arg{
			{Name: "enable", Type: "b", Direction: "in"},
		}},
	}
}

func (s *Service) signals() []introspect.Signal {
	return []introspect.Signal{
		{Name: "StateChanged", Args: []introspect.Arg{
			{Name: "tag", Type: "u"},
			{Name: "essid", Type: "s"},
			{Name: "encrypted", Type: "b"},
			{Name: "quality", Type: "u"},
			{Name: "ip", Type: "s"},
		}},
		{Name: "ConnectStatusChanged", Args: []introspect.Arg{{Name: "status", Type: "u"}}},
		{Name: "NetworkList", Args: []introspect.Arg{{Name: "networks", Type: "a(usbu)"}}},
	}
}
