package connection

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// InterfaceKind classifies a physical L2 device.
type InterfaceKind int

const (
	KindEthernet InterfaceKind = iota
	KindWifi
)

// Interface is a named L2 device, classified per spec.md §3: Wifi if its name
// starts with 'w', Ethernet if with 'e'; anything else is ignored at detect time.
type Interface struct {
	Name string
	Kind InterfaceKind
}

const sysClassNet = "/sys/class/net"

// Registry tracks every ethernet/wifi interface seen since startup. Detection
// is idempotent and additive: interfaces are never dropped within a run.
type Registry struct {
	mu    sync.Mutex
	eths  map[string]Interface
	wlans map[string]Interface
}

// NewRegistry returns an empty registry; call Detect to populate it.
func NewRegistry() *Registry {
	return &Registry{
		eths:  make(map[string]Interface),
		wlans: make(map[string]Interface),
	}
}

// Detect enumerates /sys/class/net and merges any newly-seen interfaces into
// the registry. Ethernet interfaces are brought up on first insert.
func (r *Registry) Detect() {
	entries, err := os.ReadDir(sysClassNet)
	if err != nil {
		log.Printf("interface detect: %v", err)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		name := e.Name()
		if name == "" {
			continue
		}
		switch name[0] {
		case 'e':
			if _, ok := r.eths[name]; !ok {
				r.eths[name] = Interface{Name: name, Kind: KindEthernet}
				log.Printf("detected ethernet interface: %s", name)
				bringUp(name)
			}
		case 'w':
			if _, ok := r.wlans[name]; !ok {
				r.wlans[name] = Interface{Name: name, Kind: KindWifi}
				log.Printf("detected wifi interface: %s", name)
			}
		}
	}
}

// mostUsed implements the selection rule from spec.md §3: empty -> none;
// singleton -> that one; else prefer plugged-in, else up, else any.
func mostUsed(set map[string]Interface) (Interface, bool) {
	if len(set) == 0 {
		return Interface{}, false
	}
	if len(set) == 1 {
		for _, v := range set {
			return v, true
		}
	}

	var anyIface, upIface, plugged Interface
	haveUp, havePlugged := false, false
	for _, v := range set {
		anyIface = v
		if PluggedIn(v.Name) {
			plugged = v
			havePlugged = true
			break
		}
		if IsUp(v.Name) && !haveUp {
			upIface = v
			haveUp = true
		}
	}
	if havePlugged {
		return plugged, true
	}
	if haveUp {
		return upIface, true
	}
	return anyIface, true
}

// MostUsedEth returns the preferred ethernet interface, if any.
func (r *Registry) MostUsedEth() (Interface, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return mostUsed(r.eths)
}

// MostUsedWifi returns the preferred wifi interface, if any.
func (r *Registry) MostUsedWifi() (Interface, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return mostUsed(r.wlans)
}

// Names returns every interface name seen so far, for callers (metrics
// sampling) that want to iterate all of them rather than just the preferred
// one.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.eths)+len(r.wlans))
	for n := range r.eths {
		out = append(out, n)
	}
	for n := range r.wlans {
		out = append(out, n)
	}
	return out
}

// FromSetting resolves the interface a ConnectionSetting should use: the
// most-used ethernet for Ethernet settings, the most-used wlan otherwise.
func (r *Registry) FromSetting(s ConnectionSetting) (Interface, bool) {
	if s.Kind == SettingEthernet {
		return r.MostUsedEth()
	}
	return r.MostUsedWifi()
}

// EthPluggedIn reports whether the preferred ethernet interface has carrier.
func (r *Registry) EthPluggedIn() bool {
	iface, ok := r.MostUsedEth()
	return ok && PluggedIn(iface.Name)
}

// WifiPluggedIn reports whether the preferred wlan has carrier (radio link up).
func (r *Registry) WifiPluggedIn() bool {
	iface, ok := r.MostUsedWifi()
	return ok && PluggedIn(iface.Name)
}

// Disconnect tears down every known interface: flushes its DHCP lease and
// addresses and terminates its supplicant control socket. Errors from the
// underlying shell-outs are swallowed; this is best-effort cleanup.
func (r *Registry) Disconnect() {
	r.mu.Lock()
	names := make([]string, 0, len(r.eths)+len(r.wlans))
	for n := range r.eths {
		names = append(names, n)
	}
	for n := range r.wlans {
		names = append(names, n)
	}
	r.mu.Unlock()

	for _, name := range names {
		teardownInterface(name)
	}
	run("dhcpcd -x")
}

func teardownInterface(iface string) {
	run(fmt.Sprintf("dhcpcd -k %s", iface))
	run(fmt.Sprintf("ip addr flush dev %s", iface))
	run(fmt.Sprintf("wpa_cli -i %s -p /var/run/wpa terminate", iface))
}

func bringUp(iface string) {
	run(fmt.Sprintf("ip l set %s up", iface))
}

func bringDown(iface string) {
	run(fmt.Sprintf("ip l set %s down", iface))
}

// PluggedIn reports whether iface currently carries a link, tolerating an
// absent sysfs file (returns false) per spec.md §4.A.
func PluggedIn(iface string) bool {
	return readSysfsTrimmed(iface, "carrier") == "1"
}

// IsUp reports whether iface's operstate is "up", tolerating an absent file.
func IsUp(iface string) bool {
	return readSysfsTrimmed(iface, "operstate") == "up"
}

func readSysfsTrimmed(iface, attr string) string {
	data, err := os.ReadFile(fmt.Sprintf("%s/%s/%s", sysClassNet, iface, attr))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
