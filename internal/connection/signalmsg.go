package connection

import "log"

// SignalMsg is one event produced by the orchestrator core. Component E
// (the event emitter) serializes these, in emission order, to RPC subscribers.
// CorrID carries the correlation ID of the connect attempt (or other
// operation) that produced this signal, for log grouping; it is not part of
// the RPC wire shape.
type SignalMsg struct {
	CorrID               string
	NetworkList          *NetworkList
	ConnectStatusChanged *ConnectionStatus
	StateChanged         *ConnectionInfo
}

// Emitter is implemented by the D-Bus adapter; Core calls it synchronously
// for every SignalMsg it produces, in order.
type Emitter interface {
	Emit(SignalMsg)
}

// Log writes a human-readable line for a signal, matching the verbosity the
// original daemon logged at each phase transition. Called by the emitter
// just before putting the signal on the wire.
func (s SignalMsg) Log() {
	switch {
	case s.NetworkList != nil:
		log.Printf("[%s] scan complete: %d networks", s.CorrID, len(*s.NetworkList))
	case s.ConnectStatusChanged != nil:
		log.Printf("[%s] connect status: %s", s.CorrID, s.ConnectStatusChanged.String())
	case s.StateChanged != nil:
		info := *s.StateChanged
		switch info.Kind {
		case NotConnected:
			log.Printf("[%s] disconnected", s.CorrID)
		case ConnectingEth, ConnectingWifi:
			log.Printf("[%s] connecting (essid=%q)", s.CorrID, info.Essid)
		case Ethernet:
			log.Printf("[%s] connected: ethernet ip=%s", s.CorrID, info.IP)
		case Wifi:
			log.Printf("[%s] connected: wifi essid=%q quality=%d ip=%s", s.CorrID, info.Essid, info.Quality, info.IP)
		}
	}
}
