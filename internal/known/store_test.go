package known

import (
	"path/filepath"
	"testing"
)

func TestSetPropsThenGetPropsRoundtrips(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "networks.toml"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	password := "hunter2"
	threshold := int32(-70)
	if err := store.SetProps("corp", &password, &threshold, true); err != nil {
		t.Fatalf("SetProps: %v", err)
	}

	gotPassword, gotThreshold, auto, hasPassword, hasThreshold := store.GetProps("corp")
	if gotPassword != password || gotThreshold != threshold || !auto || !hasPassword || !hasThreshold {
		t.Fatalf("GetProps = (%q, %d, %v, %v, %v), want (%q, %d, true, true, true)",
			gotPassword, gotThreshold, auto, hasPassword, hasThreshold, password, threshold)
	}
}

func TestGetPropsDefaultThreshold(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "networks.toml"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	_, threshold, auto, hasPassword, hasThreshold := store.GetProps("never-seen")
	if threshold != defaultThreshold || auto || hasPassword || hasThreshold {
		t.Fatalf("GetProps for unknown essid = threshold %d auto %v hasPassword %v hasThreshold %v, want default %d, all false",
			threshold, auto, hasPassword, hasThreshold, defaultThreshold)
	}
}

func TestSetPropsRemovesEntryWhenNeitherAutoNorPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "networks.toml")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	password := "hunter2"
	if err := store.SetProps("corp", &password, nil, true); err != nil {
		t.Fatalf("SetProps insert: %v", err)
	}
	if err := store.SetProps("corp", nil, nil, false); err != nil {
		t.Fatalf("SetProps remove: %v", err)
	}

	_, _, auto, hasPassword, _ := store.GetProps("corp")
	if auto || hasPassword {
		t.Fatalf("expected corp to be removed, got auto=%v hasPassword=%v", auto, hasPassword)
	}

	reloaded, err := NewStore(path)
	if err != nil {
		t.Fatalf("reload NewStore: %v", err)
	}
	if _, _, auto, hasPassword, _ := reloaded.GetProps("corp"); auto || hasPassword {
		t.Fatal("removal must write through to disk")
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "networks.toml"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	password := "x"
	if err := store.SetProps("home", &password, nil, true); err != nil {
		t.Fatalf("SetProps: %v", err)
	}

	snap := store.Snapshot()
	delete(snap, "home")

	if _, _, auto, hasPassword, _ := store.GetProps("home"); !auto || !hasPassword {
		t.Fatal("mutating a Snapshot must not affect the store")
	}
}
