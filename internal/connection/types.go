// Package connection implements the connection orchestrator core: interface
// discovery, scan parsing, the connect phase machine, and the in-memory state
// (current connection, network list, known-network lookups) that the rest of
// the daemon reads and drives.
package connection

import "sort"

// ConnectionStatus is the status enum carried by ConnectStatusChanged signals.
type ConnectionStatus int

const (
	StatusInitializing ConnectionStatus = iota
	StatusConnecting
	StatusAuthenticating
	StatusGettingIP
	StatusAuthFail
	StatusAborted
	StatusConnectFail
)

func (s ConnectionStatus) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusConnecting:
		return "connecting"
	case StatusAuthenticating:
		return "authenticating"
	case StatusGettingIP:
		return "getting_ip"
	case StatusAuthFail:
		return "auth_fail"
	case StatusAborted:
		return "aborted"
	case StatusConnectFail:
		return "connect_fail"
	default:
		return "unknown"
	}
}

// InfoKind tags the variant held by a ConnectionInfo.
type InfoKind int

const (
	NotConnected InfoKind = iota
	Ethernet
	Wifi
	ConnectingEth
	ConnectingWifi
)

// ConnectionInfo is the current connection state. Only the fields relevant to
// Kind are meaningful; it plays the role of the tagged union from spec.md §3.
type ConnectionInfo struct {
	Kind      InfoKind
	Essid     string
	Quality   uint32
	Encrypted bool
	IP        string
}

func (i ConnectionInfo) Active() bool {
	return i.Kind != NotConnected
}

func (i ConnectionInfo) Connecting() bool {
	return i.Kind == ConnectingEth || i.Kind == ConnectingWifi
}

func (i ConnectionInfo) Wired() bool {
	return i.Kind == ConnectingEth || i.Kind == Ethernet
}

// SettingKind tags the variant held by a ConnectionSetting.
type SettingKind int

const (
	SettingEthernet SettingKind = iota
	SettingWifi
	SettingOpenWifi
)

// ConnectionSetting is the user intent passed to Connect.
type ConnectionSetting struct {
	Kind      SettingKind
	Essid     string
	Password  string
	Threshold *int32 // roaming threshold in dBm, nil when unset
}

func (s ConnectionSetting) NeedAuth() bool {
	return s.Kind == SettingWifi
}

// KnownNetwork is a persisted user policy for one SSID.
type KnownNetwork struct {
	Auto      bool
	Password  *string
	Threshold *int32
}

// ToSetting builds the ConnectionSetting implied by this policy for essid.
func (k KnownNetwork) ToSetting(essid string) ConnectionSetting {
	if k.Password != nil {
		return ConnectionSetting{Kind: SettingWifi, Essid: essid, Password: *k.Password, Threshold: k.Threshold}
	}
	return ConnectionSetting{Kind: SettingOpenWifi, Essid: essid, Threshold: k.Threshold}
}

// NetworkInfo is one entry in a scan result / network list.
type NetworkInfo struct {
	IsEthernet bool
	Essid      string
	Quality    uint32
	Encrypted  bool
}

// Equal implements the dedup equality rule from spec.md §3: two Wifi entries
// are equal iff their essid matches; Ethernet never equals anything.
func (n NetworkInfo) Equal(other NetworkInfo) bool {
	if n.IsEthernet || other.IsEthernet {
		return false
	}
	return n.Essid == other.Essid
}

// NetworkList is an ordered, deduplicated sequence of NetworkInfo.
type NetworkList []NetworkInfo

// less implements the ordering from spec.md §3: Ethernet first, then Wifi by
// (-quality, essid).
func less(a, b NetworkInfo) bool {
	if a.IsEthernet != b.IsEthernet {
		return a.IsEthernet
	}
	if a.IsEthernet && b.IsEthernet {
		return false
	}
	if a.Quality != b.Quality {
		return a.Quality > b.Quality
	}
	return a.Essid < b.Essid
}

// Sort reorders the list per the invariant in spec.md §3.
func (l NetworkList) Sort() {
	sort.SliceStable(l, func(i, j int) bool { return less(l[i], l[j]) })
}

// Clone returns an independent copy, safe to hand out after releasing a lock.
func (l NetworkList) Clone() NetworkList {
	out := make(NetworkList, len(l))
	copy(out, l)
	return out
}

// addWifi implements the merge/dedup rule from spec.md §4.B: a strictly
// higher-quality duplicate overwrites quality+encryption in place; otherwise
// the incoming record is dropped.
func addWifi(list NetworkList, incoming NetworkInfo) NetworkList {
	for i := range list {
		if list[i].Equal(incoming) {
			if incoming.Quality > list[i].Quality {
				list[i].Quality = incoming.Quality
				list[i].Encrypted = incoming.Encrypted
			}
			return list
		}
	}
	return append(list, incoming)
}

// CouldConnectKind tags the decision returned by auto_connect_possible.
type CouldConnectKind int

const (
	DoNothing CouldConnectKind = iota
	Connect
	Disconnect
	Rescan
)

// CouldConnect is the auto-connect decision: Kind, plus Setting when Kind == Connect.
type CouldConnect struct {
	Kind    CouldConnectKind
	Setting ConnectionSetting
}
