package dbus

import (
	"github.com/godbus/dbus/v5"

	"github.com/okeri/snmd/internal/connection"
)

// NetworkDBus is the wire shape of one NetworkList entry, per spec.md §6:
// tag 1 for the synthetic Ethernet entry, 2 for Wifi.
type NetworkDBus struct {
	Tag       uint32
	Essid     string
	Encrypted bool
	Quality   uint32
}

func networksToDBus(list connection.NetworkList) []NetworkDBus {
	out := make([]NetworkDBus, 0, len(list))
	for _, n := range list {
		if n.IsEthernet {
			out = append(out, NetworkDBus{Tag: 1, Essid: "Ethernet connection"})
			continue
		}
		out = append(out, NetworkDBus{Tag: 2, Essid: n.Essid, Encrypted: n.Encrypted, Quality: n.Quality})
	}
	return out
}

// infoToDBus translates a ConnectionInfo into the get_state tuple shape of
// spec.md §6. InfoKind's iota ordering already matches the documented tag
// values (0..4), so the tag is a direct cast.
func infoToDBus(info connection.ConnectionInfo) (uint32, string, bool, uint32, string, *dbus.Error) {
	tag := uint32(info.Kind)

	switch info.Kind {
	case connection.Ethernet:
		return tag, "Ethernet connection", false, 100, info.IP, nil
	case connection.ConnectingEth:
		return tag, "Ethernet connection", false, 0, "", nil
	case connection.Wifi:
		return tag, info.Essid, info.Encrypted, info.Quality, info.IP, nil
	case connection.ConnectingWifi:
		return tag, info.Essid, false, 0, "", nil
	default:
		return tag, "", false, 0, "", nil
	}
}
