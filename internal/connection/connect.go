package connection

import (
	"fmt"
	"log"
	"strings"
	"time"
)

const wpaCtrlDir = "/var/run/wpa"

// Connect executes the phase machine of spec.md §4.C for setting, returning
// true iff a terminal active state was reached. If a connect (or connecting)
// attempt is already active it is torn down first.
func (c *Core) Connect(setting ConnectionSetting) bool {
	corrID := newCorrelationID()
	log.Printf("[%s] connect requested: kind=%v essid=%q", corrID, setting.Kind, setting.Essid)

	if c.CurrentState().Active() {
		c.Disconnect()
	}

	iface, ok := c.ifaces.FromSetting(setting)
	if !ok {
		log.Printf("[%s] connect failed: no interface for setting", corrID)
		return false
	}

	var network NetworkInfo
	if setting.Kind == SettingEthernet {
		c.changeState(corrID, ConnectionInfo{Kind: ConnectingEth})
		if !PluggedIn(iface.Name) {
			log.Printf("[%s] connect failed: ethernet unplugged", corrID)
			c.changeState(corrID, ConnectionInfo{Kind: NotConnected})
			return false
		}
		if wlan, ok := c.ifaces.MostUsedWifi(); ok {
			bringDown(wlan.Name)
		}
	} else {
		c.changeState(corrID, ConnectionInfo{Kind: ConnectingWifi, Essid: setting.Essid})
		network, ok = c.getNetwork(setting.Essid)
		if !ok {
			log.Printf("[%s] connect failed: essid %q not in scan list", corrID, setting.Essid)
			c.changeState(corrID, ConnectionInfo{Kind: NotConnected})
			return false
		}
	}
	bringUp(iface.Name)

	c.tries.Store(AuthMaxTries)
	c.signalStatus(corrID, StatusInitializing)

	if setting.Kind != SettingEthernet {
		configPath, err := genWPAConfig(setting.Essid, settingPassword(setting), setting.Threshold)
		if err != nil {
			log.Printf("[%s] connect failed: %v", corrID, err)
			c.changeState(corrID, ConnectionInfo{Kind: NotConnected})
			return false
		}
		defer eraseWPAConfig(configPath)

		if setting.NeedAuth() {
			c.signalStatus(corrID, StatusAuthenticating)
		} else {
			c.tries.Store(AssocMaxTries)
			c.signalStatus(corrID, StatusConnecting)
		}

		run(fmt.Sprintf("wpa_supplicant -B -i%s -c%s -Dnl80211 -C%s", iface.Name, configPath, wpaCtrlDir))

		associated, aborted := c.waitForAssociation(iface.Name)
		if !associated {
			switch {
			case aborted:
				c.signalStatus(corrID, StatusAborted)
			case setting.NeedAuth():
				c.signalStatus(corrID, StatusAuthFail)
			default:
				c.signalStatus(corrID, StatusConnectFail)
			}
			c.changeState(corrID, ConnectionInfo{Kind: NotConnected})
			return false
		}
	}

	c.signalStatus(corrID, StatusGettingIP)
	ip, ok := acquireLease(iface.Name)
	if !ok {
		log.Printf("[%s] connect failed: no DHCP lease", corrID)
		c.changeState(corrID, ConnectionInfo{Kind: NotConnected})
		return false
	}

	if c.Reachability != nil {
		go c.Reachability(corrID, iface.Name, ip)
	}

	var info ConnectionInfo
	if setting.Kind == SettingEthernet {
		info = ConnectionInfo{Kind: Ethernet, IP: ip}
	} else {
		info = ConnectionInfo{Kind: Wifi, Essid: setting.Essid, Quality: network.Quality, Encrypted: network.Encrypted, IP: ip}
	}
	c.changeState(corrID, info)
	log.Printf("[%s] connect succeeded", corrID)
	return true
}

// waitForAssociation polls wpa_cli status once per second until COMPLETED is
// observed, the budget is exhausted by our own countdown (associated=false,
// aborted=false), or it is found already zeroed by a concurrent disconnect
// (associated=false, aborted=true), per spec.md §4.C step 5.
func (c *Core) waitForAssociation(iface string) (associated, aborted bool) {
	cmd := fmt.Sprintf("wpa_cli -i %s -p %s status", iface, wpaCtrlDir)
	for {
		if strings.Contains(run(cmd), "wpa_state=COMPLETED") {
			return true, false
		}

		prev := c.tries.Load()
		if prev <= 0 {
			return false, true
		}
		if !c.tries.CompareAndSwap(prev, prev-1) {
			continue
		}
		if prev-1 == 0 {
			return false, false
		}
		time.Sleep(time.Second)
	}
}

// Disconnect implements spec.md §4.C abort semantics: zero the budget so any
// in-flight poll observes it at its next iteration, tear down every known
// interface, release leases, and transition to NotConnected.
func (c *Core) Disconnect() {
	corrID := newCorrelationID()
	c.tries.Store(0)
	c.ifaces.Disconnect()
	c.changeState(corrID, ConnectionInfo{Kind: NotConnected})
}

// settingPassword returns the password genWPAConfig should derive a PSK
// from, or nil for an open network (key_mgmt=NONE).
func settingPassword(s ConnectionSetting) *string {
	if s.Kind != SettingWifi {
		return nil
	}
	p := s.Password
	return &p
}

func (c *Core) signalStatus(corrID string, status ConnectionStatus) {
	c.signal(corrID, SignalMsg{ConnectStatusChanged: &status})
}
