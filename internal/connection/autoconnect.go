package connection

// AutoConnectPossible implements the pure decision function from spec.md
// §4.G. It never changes the current connection state. The network-list
// adjustments (phantom Ethernet, vanished-wifi removal) are made here through
// helpers that emit the resulting NetworkList signal before releasing the
// list lock, per the ordering note in spec.md §9.
func (c *Core) AutoConnectPossible(known map[string]KnownNetwork) CouldConnect {
	current := c.CurrentState()
	ethPlugged := c.ifaces.EthPluggedIn()
	wifiPlugged := c.ifaces.WifiPluggedIn()

	switch current.Kind {
	case NotConnected:
		if ethPlugged {
			c.publishPhantomEthernet()
			return CouldConnect{Kind: Connect, Setting: ConnectionSetting{Kind: SettingEthernet}}
		}
		list := c.GetNetworks()
		if len(list) == 0 {
			return CouldConnect{Kind: Rescan}
		}
		for _, n := range list {
			if n.IsEthernet {
				continue
			}
			k, ok := known[n.Essid]
			if !ok || !k.Auto {
				continue
			}
			if (n.Encrypted && k.Password != nil) || (!n.Encrypted && k.Password == nil) {
				return CouldConnect{Kind: Connect, Setting: k.ToSetting(n.Essid)}
			}
		}
		return CouldConnect{Kind: DoNothing}

	case Wifi:
		if ethPlugged {
			return CouldConnect{Kind: Connect, Setting: ConnectionSetting{Kind: SettingEthernet}}
		}
		if !wifiPlugged {
			c.removeNetwork(current.Essid)
			return CouldConnect{Kind: Disconnect}
		}
		return CouldConnect{Kind: DoNothing}

	case Ethernet:
		if !ethPlugged {
			c.removePhantomEthernet()
			return CouldConnect{Kind: Disconnect}
		}
		return CouldConnect{Kind: DoNothing}

	default: // ConnectingEth, ConnectingWifi
		return CouldConnect{Kind: DoNothing}
	}
}

// publishPhantomEthernet prepends a synthetic Ethernet entry (spec.md
// Glossary) so subscribers that render only the list can see the wired link,
// without waiting for the next real scan.
func (c *Core) publishPhantomEthernet() {
	c.networksMu.Lock()
	if len(c.networks) == 0 || !c.networks[0].IsEthernet {
		list := append(NetworkList{{IsEthernet: true}}, c.networks...)
		c.networks = list
	}
	out := c.networks.Clone()
	c.signal(newCorrelationID(), SignalMsg{NetworkList: &out})
	c.networksMu.Unlock()
}

// removePhantomEthernet drops a previously-published phantom Ethernet entry.
func (c *Core) removePhantomEthernet() {
	c.networksMu.Lock()
	if len(c.networks) > 0 && c.networks[0].IsEthernet {
		c.networks = c.networks[1:].Clone()
	}
	out := c.networks.Clone()
	c.signal(newCorrelationID(), SignalMsg{NetworkList: &out})
	c.networksMu.Unlock()
}

// removeNetwork drops the entry for essid (the connected wifi, once the wlan
// has lost carrier) and publishes the adjusted list.
func (c *Core) removeNetwork(essid string) {
	c.networksMu.Lock()
	out := make(NetworkList, 0, len(c.networks))
	for _, n := range c.networks {
		if !n.IsEthernet && n.Essid == essid {
			continue
		}
		out = append(out, n)
	}
	c.networks = out
	published := out.Clone()
	c.signal(newCorrelationID(), SignalMsg{NetworkList: &published})
	c.networksMu.Unlock()
}

// Acquire runs once at orchestrator start (spec.md §4.G "acquire()"): if an
// interface already carries an address, synthesize the matching
// ConnectionInfo and publish it without running the connect driver.
func (c *Core) Acquire() {
	corrID := newCorrelationID()
	if eth, ok := c.ifaces.MostUsedEth(); ok && PluggedIn(eth.Name) {
		if ip, ok := currentAddress(eth.Name); ok {
			c.changeState(corrID, ConnectionInfo{Kind: Ethernet, IP: ip})
			return
		}
	}
	if wlan, ok := c.ifaces.MostUsedWifi(); ok && IsUp(wlan.Name) {
		if ip, ok := currentAddress(wlan.Name); ok {
			essid := currentEssid(wlan.Name)
			network, _ := c.getNetwork(essid)
			c.changeState(corrID, ConnectionInfo{Kind: Wifi, Essid: essid, Quality: network.Quality, Encrypted: network.Encrypted, IP: ip})
		}
	}
}
