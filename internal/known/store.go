// Package known holds the in-memory, read-mostly map of SSID to persisted
// connection policy, backed by a TOML file on disk.
package known

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/okeri/snmd/internal/connection"
)

const defaultThreshold = -65

// entry is the on-disk shape of one known network; it mirrors
// connection.KnownNetwork but uses plain zero values instead of pointers
// since TOML has no native null.
type entry struct {
	Auto         bool   `toml:"auto"`
	Password     string `toml:"password"`
	HasPassword  bool   `toml:"has_password"`
	Threshold    int32  `toml:"threshold"`
	HasThreshold bool   `toml:"has_threshold"`
}

type document struct {
	Networks map[string]entry `toml:"networks"`
}

// Store is the known-network collaborator named in spec.md §4.F: loaded
// once at startup, mutated only through SetProps, write-through to disk on
// every mutation.
type Store struct {
	mu   sync.Mutex
	path string
	nets map[string]connection.KnownNetwork
}

// NewStore loads path, treating a missing file as an empty store.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path, nets: make(map[string]connection.KnownNetwork)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	var doc document
	if _, err := toml.DecodeFile(s.path, &doc); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load known networks: %w", err)
	}
	for essid, e := range doc.Networks {
		s.nets[essid] = fromEntry(e)
	}
	return nil
}

func fromEntry(e entry) connection.KnownNetwork {
	k := connection.KnownNetwork{Auto: e.Auto}
	if e.HasPassword {
		p := e.Password
		k.Password = &p
	}
	if e.HasThreshold {
		t := e.Threshold
		k.Threshold = &t
	}
	return k
}

func toEntry(k connection.KnownNetwork) entry {
	e := entry{Auto: k.Auto}
	if k.Password != nil {
		e.Password = *k.Password
		e.HasPassword = true
	}
	if k.Threshold != nil {
		e.Threshold = *k.Threshold
		e.HasThreshold = true
	}
	return e
}

// Snapshot returns a copy of the known-network map, suitable for passing to
// connection.Core.AutoConnectPossible.
func (s *Store) Snapshot() map[string]connection.KnownNetwork {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]connection.KnownNetwork, len(s.nets))
	for k, v := range s.nets {
		out[k] = v
	}
	return out
}

// GetProps returns the stored policy for essid, or the documented defaults
// when absent (spec.md §6: default threshold −65).
func (s *Store) GetProps(essid string) (password string, threshold int32, auto, hasPassword, hasThreshold bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	threshold = defaultThreshold
	k, ok := s.nets[essid]
	if !ok {
		return "", threshold, false, false, false
	}
	auto = k.Auto
	if k.Password != nil {
		password = *k.Password
		hasPassword = true
	}
	if k.Threshold != nil {
		threshold = *k.Threshold
		hasThreshold = true
	}
	return password, threshold, auto, hasPassword, hasThreshold
}

// SetProps applies the spec.md §4.F mutation rule: an incoming record with
// neither password nor auto set removes the entry; otherwise it is
// inserted or replaced. Every mutation writes through to disk; a write
// failure is returned without rolling back the in-memory change.
func (s *Store) SetProps(essid string, password *string, threshold *int32, auto bool) error {
	s.mu.Lock()
	if !auto && password == nil {
		delete(s.nets, essid)
	} else {
		s.nets[essid] = connection.KnownNetwork{Auto: auto, Password: password, Threshold: threshold}
	}
	snapshot := make(map[string]connection.KnownNetwork, len(s.nets))
	for k, v := range s.nets {
		snapshot[k] = v
	}
	s.mu.Unlock()

	if err := s.persist(snapshot); err != nil {
		log.Printf("known networks: write-through failed: %v", err)
		return err
	}
	return nil
}

func (s *Store) persist(nets map[string]connection.KnownNetwork) error {
	doc := document{Networks: make(map[string]entry, len(nets))}
	for essid, k := range nets {
		doc.Networks[essid] = toEntry(k)
	}

	f, err := os.CreateTemp(filepath.Dir(s.path), "networks-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := f.Name()
	defer os.Remove(tmpName)

	if err := toml.NewEncoder(f).Encode(doc); err != nil {
		f.Close()
		return fmt.Errorf("encode known networks: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("install known networks: %w", err)
	}
	return nil
}
