package connection

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	reSignal = regexp.MustCompile(`(?s).*signal: ([^.]+)\.`)
	reSSID   = regexp.MustCompile(`(?s).*SSID: ([^\n]*)\n`)
	reCap    = regexp.MustCompile(`(?s).*capability: ([^\n]*)\n`)
)

// Scan runs `iw dev <wlan> scan` on the preferred wifi interface, parses the
// output per spec.md §4.B, merges it with a synthetic Ethernet entry when the
// preferred ethernet link is plugged in, and returns the sorted NetworkList.
// If no wifi interface is known, only the (possibly empty) Ethernet entry is
// returned.
func (c *Core) Scan() NetworkList {
	corrID := newCorrelationID()
	var list NetworkList

	if eth, ok := c.ifaces.MostUsedEth(); ok && PluggedIn(eth.Name) {
		list = append(list, NetworkInfo{IsEthernet: true})
	}

	if wlan, ok := c.ifaces.MostUsedWifi(); ok {
		wasDown := !IsUp(wlan.Name)
		if wasDown {
			bringUp(wlan.Name)
		}
		output := run(fmt.Sprintf("iw dev %s scan", wlan.Name))
		if wasDown {
			bringDown(wlan.Name)
		}

		for _, chunk := range strings.Split(output, fmt.Sprintf("(on %s)", wlan.Name)) {
			net, ok := parseScanChunk(chunk)
			if ok {
				list = addWifi(list, net)
			}
		}
	}

	list.Sort()

	c.networksMu.Lock()
	c.networks = list.Clone()
	c.networksMu.Unlock()

	c.signal(corrID, SignalMsg{NetworkList: &list})
	return list
}

// parseScanChunk extracts one NetworkInfo from a single per-BSS scan chunk.
// Empty-SSID chunks (hidden networks) are discarded, per spec.md §4.B.
func parseScanChunk(chunk string) (NetworkInfo, bool) {
	var quality uint32
	encrypted := true
	var essid string

	if m := reSignal.FindStringSubmatch(chunk); m != nil {
		if dbm, err := strconv.Atoi(strings.TrimSpace(m[1])); err == nil {
			quality = dbm2perc(dbm)
		}
	}

	if m := reSSID.FindStringSubmatch(chunk); m != nil {
		essid = string(decodeEssid(m[1]))
	}

	if m := reCap.FindStringSubmatch(chunk); m != nil {
		encrypted = strings.Contains(m[1], "Privacy")
	}

	if essid == "" {
		return NetworkInfo{}, false
	}
	return NetworkInfo{Essid: essid, Quality: quality, Encrypted: encrypted}, true
}
