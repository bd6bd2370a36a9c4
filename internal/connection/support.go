package connection

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// run executes cmd through the shell and returns stdout, swallowing the exit
// code per spec.md §7 (transient shell failure is best-effort, never fatal).
func run(cmd string) string {
	out, _ := exec.Command("sh", "-c", cmd).Output()
	return string(out)
}

const (
	shortBgscanInterval = 30
	longBgscanInterval  = 1800
	roamingDBPath       = "/etc/snm/roaming.db"
	pbkdf2Iterations    = 4096
	pbkdf2KeyLen        = 32
)

// genWPAConfig writes a one-network wpa_supplicant config file to a fresh
// temp path and returns that path. password == nil means an open network
// (key_mgmt=NONE); otherwise a WPA2-PSK is derived via PBKDF2-HMAC-SHA1 with
// the SSID as salt, per spec.md §4.C step 4.
func genWPAConfig(essid string, password *string, threshold *int32) (string, error) {
	f, err := os.CreateTemp("", "snmd-wpa-*.conf")
	if err != nil {
		return "", fmt.Errorf("create wpa config: %w", err)
	}
	defer f.Close()

	var b bytes.Buffer
	fmt.Fprintf(&b, "network={\n\tssid=\"%s\"\n", essid)
	if password != nil {
		key := pbkdf2.Key([]byte(*password), []byte(essid), pbkdf2Iterations, pbkdf2KeyLen, sha1.New)
		fmt.Fprintf(&b, "\tpsk=%s\n", hex.EncodeToString(key))
	} else {
		b.WriteString("\tkey_mgmt=NONE\n")
	}
	if threshold != nil {
		fmt.Fprintf(&b, "\tbgscan=\"learn:%d:%d:%d:%s\"\n", shortBgscanInterval, *threshold, longBgscanInterval, roamingDBPath)
	}
	b.WriteString("}\n")

	if _, err := f.Write(b.Bytes()); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write wpa config: %w", err)
	}
	return f.Name(), nil
}

func eraseWPAConfig(path string) {
	if path != "" {
		os.Remove(path)
	}
}

// dbm2perc maps a dBm signal reading to a 1..100 quality percentage, per
// spec.md §8 invariant 1.
func dbm2perc(dbm int) uint32 {
	switch {
	case dbm < -92:
		return 1
	case dbm > -21:
		return 100
	default:
		x := float64(dbm)
		v := -0.0154*x*x - 0.3794*x + 98.182
		return uint32(math.Round(v))
	}
}

// decodeEssid turns a raw scan-output ESSID string into bytes, undoing the
// escapes iw emits for non-printable bytes. Unknown escapes truncate the
// result at that point, matching the lenient behavior spec.md §9 pins down.
func decodeEssid(input string) []byte {
	runes := []rune(input)
	result := make([]byte, 0, len(runes))
	i := 0
	for i < len(runes) {
		c := runes[i]
		if c != '\\' {
			result = append(result, byte(c))
			i++
			continue
		}
		i++
		if i >= len(runes) {
			return result
		}
		switch runes[i] {
		case 't':
			result = append(result, 0x09)
			i++
		case '\'':
			result = append(result, 0x27)
			i++
		case '"':
			result = append(result, 0x22)
			i++
		case '\\':
			result = append(result, 0x5c)
			i++
		case 'x':
			if i+2 >= len(runes) {
				return result
			}
			hexStr := string(runes[i+1 : i+3])
			b, err := parseHexByte(hexStr)
			if err != nil {
				return result
			}
			result = append(result, b)
			i += 3
		default:
			return result
		}
	}
	return result
}

func parseHexByte(s string) (byte, error) {
	s = strings.ToLower(s)
	var v byte
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= byte(c - '0')
		case c >= 'a' && c <= 'f':
			v |= byte(c-'a') + 10
		default:
			return 0, fmt.Errorf("bad hex digit %q", c)
		}
	}
	return v, nil
}
