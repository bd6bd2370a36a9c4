package connection

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseScanChunk(t *testing.T) {
	cases := []struct {
		name  string
		chunk string
		want  NetworkInfo
		ok    bool
	}{
		{
			name:  "open network",
			chunk: "signal: -60.00 dBm\n\tSSID: homewifi\n\tcapability: ESS (0x0411)\n",
			want:  NetworkInfo{Essid: "homewifi", Quality: dbm2perc(-60), Encrypted: false},
			ok:    true,
		},
		{
			name:  "encrypted network",
			chunk: "signal: -45.00 dBm\n\tSSID: corpnet\n\tcapability: ESS Privacy (0x0431)\n",
			want:  NetworkInfo{Essid: "corpnet", Quality: dbm2perc(-45), Encrypted: true},
			ok:    true,
		},
		{
			name:  "hidden network discarded",
			chunk: "signal: -45.00 dBm\n\tSSID: \n\tcapability: ESS Privacy (0x0431)\n",
			want:  NetworkInfo{},
			ok:    false,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := parseScanChunk(c.chunk)
			if ok != c.ok {
				t.Fatalf("ok = %v, want %v", ok, c.ok)
			}
			if ok && !cmp.Equal(got, c.want) {
				t.Errorf("parseScanChunk() = %+v, want %+v", got, c.want)
			}
		})
	}
}

func TestAddWifiDedupPrefersHigherQuality(t *testing.T) {
	var list NetworkList
	list = addWifi(list, NetworkInfo{Essid: "guest", Quality: 40, Encrypted: true})
	list = addWifi(list, NetworkInfo{Essid: "guest", Quality: 70, Encrypted: false})

	want := NetworkList{{Essid: "guest", Quality: 70, Encrypted: false}}
	if !cmp.Equal(list, want) {
		t.Errorf("addWifi merge = %+v, want %+v", list, want)
	}

	// A strictly lower-quality duplicate must be dropped, not replace the stored entry.
	list = addWifi(list, NetworkInfo{Essid: "guest", Quality: 10, Encrypted: true})
	if !cmp.Equal(list, want) {
		t.Errorf("addWifi should have dropped the lower-quality duplicate, got %+v", list)
	}
}

func TestAddWifiIdempotentOnRepeatedInput(t *testing.T) {
	raw := []NetworkInfo{
		{Essid: "home", Quality: 80, Encrypted: true},
		{Essid: "guest", Quality: 50, Encrypted: false},
	}

	build := func() NetworkList {
		var list NetworkList
		for _, n := range raw {
			list = addWifi(list, n)
		}
		for _, n := range raw {
			list = addWifi(list, n) // scan the same input twice
		}
		list.Sort()
		return list
	}

	first, second := build(), build()
	if !cmp.Equal(first, second) {
		t.Errorf("merge is not idempotent: %+v != %+v", first, second)
	}
}

func TestNetworkListSortOrder(t *testing.T) {
	list := NetworkList{
		{Essid: "bbb", Quality: 50},
		{IsEthernet: true},
		{Essid: "aaa", Quality: 50},
		{Essid: "zzz", Quality: 90},
	}
	list.Sort()

	want := NetworkList{
		{IsEthernet: true},
		{Essid: "zzz", Quality: 90},
		{Essid: "aaa", Quality: 50},
		{Essid: "bbb", Quality: 50},
	}
	if !cmp.Equal(list, want) {
		t.Errorf("Sort() = %+v, want %+v", list, want)
	}
}
