package connection

import (
	"fmt"
	"regexp"
)

var (
	reInetAddr = regexp.MustCompile(`inet ([0-9]+\.[0-9]+\.[0-9]+\.[0-9]+)`)
	reLinkSSID = regexp.MustCompile(`SSID: ([^\n]*)`)
)

// currentAddress reports the IPv4 address already assigned to iface, if
// any, used by Acquire's warm-start path to avoid re-running the connect
// driver for a link that was already up before the daemon started.
func currentAddress(iface string) (string, bool) {
	out := run(fmt.Sprintf("ip addr show dev %s", iface))
	m := reInetAddr.FindStringSubmatch(out)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// currentEssid reads the SSID iface is currently associated with.
func currentEssid(iface string) string {
	out := run(fmt.Sprintf("iw dev %s link", iface))
	m := reLinkSSID.FindStringSubmatch(out)
	if m == nil {
		return ""
	}
	return string(decodeEssid(m[1]))
}
