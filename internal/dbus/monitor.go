package dbus

import (
	"github.com/godbus/dbus/v5"
)

// trackMonitor/untrackMonitor record which bus names currently hold an
// active monitor reference, so watchNameOwnerChanged can auto-decrement the
// manager's count when one of them disappears without calling Monitor(false)
// itself (the "proxy death" case named in spec.md §4.H).
func (s *Service) trackMonitor(name string) {
	s.monitorMu.Lock()
	s.owners[name] = struct{}{}
	s.monitorMu.Unlock()
}

func (s *Service) untrackMonitor(name string) {
	s.monitorMu.Lock()
	delete(s.owners, name)
	s.monitorMu.Unlock()
}

// watchNameOwnerChanged subscribes to org.freedesktop.DBus.NameOwnerChanged
// and removes a monitor reference whenever its owning bus name's new owner
// goes empty (the name has no owner left, i.e. the client process exited).
func (s *Service) watchNameOwnerChanged() error {
	rule := "type='signal',interface='org.freedesktop.DBus',member='NameOwnerChanged'"
	if call := s.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule); call.Err != nil {
		return call.Err
	}

	ch := make(chan *dbus.Signal, 8)
	s.conn.Signal(ch)

	go func() {
		for sig := range ch {
			if sig.Name != "org.freedesktop.DBus.NameOwnerChanged" || len(sig.Body) != 3 {
				continue
			}
			name, _ := sig.Body[0].(string)
			newOwner, _ := sig.Body[2].(string)
			if newOwner != "" {
				continue
			}

			s.monitorMu.Lock()
			_, tracked := s.owners[name]
			if tracked {
				delete(s.owners, name)
			}
			s.monitorMu.Unlock()

			if tracked {
				s.mgr.RemoveMonitor()
			}
		}
	}()
	return nil
}
