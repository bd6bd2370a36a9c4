// Package netlink is the additive link-change watcher named in spec.md §9's
// redesign note: it supplements, rather than replaces, the sysfs-polling
// Interface Registry contract with faster carrier/operstate edge detection
// via rtnetlink. Nothing here is load-bearing for correctness — the
// registry's own sysfs reads remain authoritative.
package netlink

import (
	"fmt"
	"log"
	"syscall"

	"github.com/jsimonetti/rtnetlink"
	"github.com/mdlayher/netlink"
)

const (
	rtmNewlink = syscall.RTM_NEWLINK
	rtmDellink = syscall.RTM_DELLINK
)

// OnChange is invoked, best-effort, whenever a link's presence or carrier
// state may have changed. The watcher does no debouncing; callers are
// expected to re-run their own idempotent detection (e.g. Registry.Detect).
type OnChange func(iface string)

// Watcher wraps a raw rtnetlink socket subscribed to link events.
type Watcher struct {
	conn   *netlink.Conn
	stopCh chan struct{}
	onChange OnChange
}

// NewWatcher dials netlink and subscribes to RTMGRP_LINK. Returns an error
// if the socket cannot be opened (e.g. missing CAP_NET_ADMIN); callers
// should treat this as non-fatal and fall back to sysfs polling alone.
func NewWatcher(onChange OnChange) (*Watcher, error) {
	conn, err := netlink.Dial(syscall.NETLINK_ROUTE, &netlink.Config{
		Groups: 0x1, // RTMGRP_LINK
	})
	if err != nil {
		return nil, fmt.Errorf("dial netlink: %w", err)
	}
	return &Watcher{conn: conn, stopCh: make(chan struct{}), onChange: onChange}, nil
}

// Close shuts down the watcher.
func (w *Watcher) Close() {
	close(w.stopCh)
	w.conn.Close()
}

// Run reads link events until Close is called. Intended to run in its own
// goroutine.
func (w *Watcher) Run() {
	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		msgs, err := w.conn.Receive()
		if err != nil {
			select {
			case <-w.stopCh:
				return
			default:
			}
			log.Printf("netlink: receive error: %v", err)
			continue
		}
		for _, msg := range msgs {
			w.handle(msg)
		}
	}
}

func (w *Watcher) handle(msg netlink.Message) {
	switch msg.Header.Type {
	case rtmNewlink, rtmDellink:
		var link rtnetlink.LinkMessage
		if err := link.UnmarshalBinary(msg.Data); err != nil {
			return
		}
		if link.Attributes == nil || link.Attributes.Name == "" || link.Attributes.Name == "lo" {
			return
		}
		if w.onChange != nil {
			w.onChange(link.Attributes.Name)
		}
	}
}
