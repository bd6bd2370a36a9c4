// Package probe runs a best-effort reachability check after a DHCP lease is
// acquired. It is purely informational: results are logged and counted in
// metrics only, and never feed back into the connect phase machine or its
// success/failure decision — that would smuggle in captive-portal detection,
// which is an explicit non-goal.
package probe

import (
	"context"
	"fmt"
	"log"
	"net"
	"os/exec"
	"time"

	"github.com/miekg/dns"
	ping "github.com/prometheus-community/pro-bing"
)

const (
	pingTimeout = 2 * time.Second
	pingCount   = 2
	dnsTimeout  = 2 * time.Second
	dnsQuery    = "."
	dnsServer   = "1.1.1.1:53"
)

// Result is what a single reachability check observed.
type Result struct {
	Iface       string
	IP          string
	GatewayOK   bool
	GatewayRTT  time.Duration
	DNSResolves bool
}

// Recorder receives completed Results; the metrics package implements it.
type Recorder interface {
	RecordReachability(Result)
}

// Check pings the default gateway for iface and issues one DNS query,
// logging and recording the outcome through rec. It never returns an error
// to the caller — every failure mode is folded into a false field.
func Check(corrID, iface, ip string, rec Recorder) {
	res := Result{Iface: iface, IP: ip}

	if gw, ok := defaultGateway(iface); ok {
		if ok, rtt := pingHost(gw); ok {
			res.GatewayOK = true
			res.GatewayRTT = rtt
		}
	}

	res.DNSResolves = queryDNS()

	log.Printf("[%s] reachability: gateway_ok=%v rtt=%s dns_ok=%v", corrID, res.GatewayOK, res.GatewayRTT, res.DNSResolves)
	if rec != nil {
		rec.RecordReachability(res)
	}
}

func pingHost(host string) (bool, time.Duration) {
	pinger, err := ping.NewPinger(host)
	if err != nil {
		return false, 0
	}
	pinger.SetPrivileged(true)
	pinger.Count = pingCount
	pinger.Timeout = pingTimeout

	if err := pinger.Run(); err != nil {
		return false, 0
	}
	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return false, 0
	}
	return true, stats.AvgRtt
}

func queryDNS() bool {
	client := &dns.Client{Timeout: dnsTimeout}
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(dnsQuery), dns.TypeNS)

	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	defer cancel()

	in, _, err := client.ExchangeContext(ctx, msg, dnsServer)
	return err == nil && in != nil && len(in.Answer) > 0
}

func defaultGateway(iface string) (string, bool) {
	out, err := exec.Command("ip", "route", "show", "dev", iface, "default").Output()
	if err != nil {
		return "", false
	}
	return parseGatewayLine(string(out))
}

func parseGatewayLine(out string) (string, bool) {
	var via string
	if _, err := fmt.Sscanf(out, "default via %s", &via); err != nil {
		return "", false
	}
	if net.ParseIP(via) == nil {
		return "", false
	}
	return via, true
}
