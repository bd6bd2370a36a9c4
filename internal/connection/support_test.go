package connection

import "testing"

func TestDbm2PercMonotonic(t *testing.T) {
	prev := uint32(0)
	for dbm := -100; dbm <= 0; dbm++ {
		q := dbm2perc(dbm)
		if q < 1 || q > 100 {
			t.Fatalf("dbm2perc(%d) = %d, want in [1,100]", dbm, q)
		}
		if q < prev {
			t.Fatalf("dbm2perc(%d) = %d is lower than previous %d; must be monotonic", dbm, q, prev)
		}
		prev = q
	}
}

func TestDbm2PercClamps(t *testing.T) {
	if got := dbm2perc(-120); got != 1 {
		t.Errorf("dbm2perc(-120) = %d, want 1", got)
	}
	if got := dbm2perc(0); got != 100 {
		t.Errorf("dbm2perc(0) = %d, want 100", got)
	}
}

func TestDecodeEssid(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "homewifi", "homewifi"},
		{"escaped tab", `a\tb`, "a\tb"},
		{"escaped quote", `it\'s`, "it's"},
		{"escaped backslash", `a\\b`, "a\\b"},
		{"hex escape", `caf\x65`, "cafe"},
		{"unknown escape truncates", `ab\zcd`, "ab"},
		{"trailing backslash truncates", `ab\`, "ab"},
		{"incomplete hex truncates", `ab\x4`, "ab"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := string(decodeEssid(c.input))
			if got != c.want {
				t.Errorf("decodeEssid(%q) = %q, want %q", c.input, got, c.want)
			}
		})
	}
}

func TestGenWPAConfigOpenVsPSK(t *testing.T) {
	path, err := genWPAConfig("testnet", nil, nil)
	if err != nil {
		t.Fatalf("genWPAConfig open: %v", err)
	}
	defer eraseWPAConfig(path)

	password := "supersecret"
	threshold := int32(-60)
	pskPath, err := genWPAConfig("testnet", &password, &threshold)
	if err != nil {
		t.Fatalf("genWPAConfig psk: %v", err)
	}
	defer eraseWPAConfig(pskPath)

	if path == pskPath {
		t.Fatal("expected distinct temp files for distinct configs")
	}
}
