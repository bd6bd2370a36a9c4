// Package diag runs startup diagnostics that never gate daemon operation —
// currently, a wpa_supplicant version check logged as a warning.
package diag

import (
	"log"
	"os/exec"
	"regexp"

	"github.com/blang/semver/v4"
)

// MinSupplicantVersion is the oldest wpa_supplicant release this daemon has
// been exercised against; older releases are logged, not rejected.
var MinSupplicantVersion = semver.MustParse("2.9.0")

var reVersion = regexp.MustCompile(`v(\d+\.\d+(?:\.\d+)?)`)

// CheckSupplicantVersion shells out to `wpa_supplicant -v`, parses the
// version line, and logs a warning if it is older than MinSupplicantVersion.
// Any failure to determine the version is itself just a warning.
func CheckSupplicantVersion() {
	out, err := exec.Command("wpa_supplicant", "-v").CombinedOutput()
	if err != nil && len(out) == 0 {
		log.Printf("diag: wpa_supplicant version check failed: %v", err)
		return
	}

	m := reVersion.FindStringSubmatch(string(out))
	if m == nil {
		log.Printf("diag: could not parse wpa_supplicant version from %q", out)
		return
	}

	raw := m[1]
	if len(regexp.MustCompile(`\.`).FindAllString(raw, -1)) < 2 {
		raw += ".0"
	}

	v, err := semver.Parse(raw)
	if err != nil {
		log.Printf("diag: unparseable wpa_supplicant version %q: %v", raw, err)
		return
	}

	if v.LT(MinSupplicantVersion) {
		log.Printf("diag: wpa_supplicant %s is older than the tested minimum %s", v, MinSupplicantVersion)
	}
}
