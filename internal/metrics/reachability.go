package metrics

import "github.com/okeri/snmd/internal/probe"

// RecordReachability implements probe.Recorder.
func (m *Metrics) RecordReachability(res probe.Result) {
	if res.GatewayOK {
		m.gatewayReachable.Set(1)
	} else {
		m.gatewayReachable.Set(0)
	}
	if res.DNSResolves {
		m.dnsResolvable.Set(1)
	} else {
		m.dnsResolvable.Set(0)
	}
}
