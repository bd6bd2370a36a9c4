package dbus

import (
	"github.com/godbus/dbus/v5"

	"github.com/okeri/snmd/internal/connection"
)

// Connect implements spec.md §4.H: enforces allow_reconnect, disconnects any
// in-flight Connecting* state, resolves the password for Wi-Fi from the
// known-network store, and enqueues the resulting ConnectionSetting.
func (s *Service) Connect(tp uint32, essid string, enc bool) *dbus.Error {
	if !s.core.AllowReconnect() {
		return dbus.NewError(Interface+".PolicyViolation", []interface{}{"reconnect not allowed while wired"})
	}

	if s.core.CurrentState().Connecting() {
		s.core.Disconnect()
	}

	var setting connection.ConnectionSetting
	switch tp {
	case 1:
		setting = connection.ConnectionSetting{Kind: connection.SettingEthernet}
	case 2:
		if enc {
			password, _, _, hasPassword, _ := s.known.GetProps(essid)
			if !hasPassword {
				return dbus.NewError(Interface+".PolicyViolation", []interface{}{"no stored password for " + essid})
			}
			setting = connection.ConnectionSetting{Kind: connection.SettingWifi, Essid: essid, Password: password}
		} else {
			setting = connection.ConnectionSetting{Kind: connection.SettingOpenWifi, Essid: essid}
		}
	default:
		return dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", []interface{}{"tp must be 1 (Ethernet) or 2 (Wifi)"})
	}

	s.mgr.Enqueue(setting)
	return nil
}

// Disconnect invokes the driver and disables auto-connect, per spec.md §4.H.
func (s *Service) Disconnect() *dbus.Error {
	s.mgr.SetAutoConnect(false)
	s.core.Disconnect()
	return nil
}

// GetState is a snapshot read of the current connection state.
func (s *Service) GetState() (uint32, string, bool, uint32, string, *dbus.Error) {
	info := s.core.CurrentState()
	return infoToDBus(info)
}

// GetNetworks is a snapshot read of the current network list.
func (s *Service) GetNetworks() ([]NetworkDBus, *dbus.Error) {
	return networksToDBus(s.core.GetNetworks()), nil
}

// GetProps reads a known network's persisted policy.
func (s *Service) GetProps(essid string) (string, int32, bool, bool, bool, *dbus.Error) {
	password, threshold, auto, hasPassword, hasThreshold := s.known.GetProps(essid)
	return password, threshold, auto, hasPassword, hasThreshold, nil
}

// SetProps writes a known network's persisted policy through to disk.
func (s *Service) SetProps(essid, password string, threshold int32, auto, hasPassword, hasThreshold bool) *dbus.Error {
	var passwordPtr *string
	if hasPassword {
		passwordPtr = &password
	}
	var thresholdPtr *int32
	if hasThreshold {
		thresholdPtr = &threshold
	}
	if err := s.known.SetProps(essid, passwordPtr, thresholdPtr, auto); err != nil {
		return dbus.NewError(Interface+".ConfigWriteFailed", []interface{}{err.Error()})
	}
	return nil
}

// Monitor increments or decrements the active-proxy counter. The caller's
// unique bus name is captured via the dbus.Sender argument so a later
// NameOwnerChanged can auto-decrement it on client death.
func (s *Service) Monitor(enable bool, sender dbus.Sender) *dbus.Error {
	if enable {
		s.trackMonitor(string(sender))
		s.mgr.AddMonitor()
	} else {
		s.untrackMonitor(string(sender))
		s.mgr.RemoveMonitor()
	}
	return nil
}
