package dbus

import (
	"log"

	"github.com/okeri/snmd/internal/connection"
)

// Emit implements connection.Emitter: signals are serialized behind emitMu,
// per the single shared transport-handle lock spec.md §4.E/§5 call for, and
// failures are logged and swallowed rather than propagated.
func (s *Service) Emit(msg connection.SignalMsg) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	msg.Log()

	switch {
	case msg.StateChanged != nil:
		tag, essid, encrypted, quality, ip, _ := infoToDBus(*msg.StateChanged)
		s.emit("StateChanged", tag, essid, encrypted, quality, ip)
	case msg.ConnectStatusChanged != nil:
		s.emit("ConnectStatusChanged", uint32(*msg.ConnectStatusChanged))
	case msg.NetworkList != nil:
		s.emit("NetworkList", networksToDBus(*msg.NetworkList))
	}
}

func (s *Service) emit(signalName string, values ...interface{}) {
	if err := s.conn.Emit(ObjectPath, Interface+"."+signalName, values...); err != nil {
		log.Printf("dbus: emit %s failed: %v", signalName, err)
	}
}
