package connection

import (
	"fmt"
	"regexp"
)

// dhcpTimeoutSeconds bounds how long dhcpcd is given to obtain a lease before
// it gives up and reports failure, per spec.md §4.D.
const dhcpTimeoutSeconds = 20

var reLeasedAddress = regexp.MustCompile(`bound to ([0-9]+\.[0-9]+\.[0-9]+\.[0-9]+)`)

// acquireLease runs dhcpcd against iface in wait-for-lease mode and returns
// the leased IPv4 address. This is the external-process variant of the
// pluggable DHCP client adapter named in spec.md §4.D: dhcpcd itself keeps
// the lease renewed as a background process once this call returns.
func acquireLease(iface string) (string, bool) {
	out := run(fmt.Sprintf("dhcpcd -4 -w -t %d %s", dhcpTimeoutSeconds, iface))
	m := reLeasedAddress.FindStringSubmatch(out)
	if m == nil {
		return "", false
	}
	return m[1], true
}
