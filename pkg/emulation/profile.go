package emulation

import (
	"fmt"
	"strings"
)

// Profile names a browser or HTTP client identity presented on the wire.
type Profile string

// DefaultProfile is used whenever a caller does not name a profile, or
// names one that is not supported.
const DefaultProfile Profile = "chrome_137"

// profiles lists every supported profile in canonical order.
var profiles = []Profile{
	// Chrome
	"chrome_100", "chrome_101", "chrome_104", "chrome_105", "chrome_106", "chrome_107",
	"chrome_108", "chrome_109", "chrome_110", "chrome_114", "chrome_116", "chrome_117",
	"chrome_118", "chrome_119", "chrome_120", "chrome_123", "chrome_124", "chrome_126",
	"chrome_127", "chrome_128", "chrome_129", "chrome_130", "chrome_131", "chrome_132",
	"chrome_133", "chrome_134", "chrome_135", "chrome_136", "chrome_137",
	// Edge
	"edge_101", "edge_122", "edge_127", "edge_131", "edge_134",
	// Safari
	"safari_ios_17_2", "safari_ios_17_4_1", "safari_ios_16_5",
	"safari_15_3", "safari_15_5", "safari_15_6_1", "safari_16", "safari_16_5",
	"safari_17_0", "safari_17_2_1", "safari_17_4_1", "safari_17_5", "safari_18",
	"safari_ipad_18", "safari_18_2", "safari_ios_18_1_1",
	"safari_18_3", "safari_18_3_1", "safari_18_5",
	// Firefox
	"firefox_109", "firefox_117", "firefox_128", "firefox_133", "firefox_135",
	"firefox_private_135", "firefox_android_135",
	"firefox_136", "firefox_private_136", "firefox_139",
	// Opera
	"opera_116", "opera_117", "opera_118", "opera_119",
	// OkHttp
	"okhttp_3_9", "okhttp_3_11", "okhttp_3_13", "okhttp_3_14",
	"okhttp_4_9", "okhttp_4_10", "okhttp_4_12", "okhttp_5",
}

var profileSet = func() map[Profile]struct{} {
	set := make(map[Profile]struct{}, len(profiles))
	for _, p := range profiles {
		set[p] = struct{}{}
	}
	return set
}()

// Profiles returns the supported profile names in canonical order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// Known reports whether name is a supported profile.
func Known(name string) bool {
	_, ok := profileSet[Profile(name)]
	return ok
}

// Resolve maps a requested profile name to a supported Profile. Empty and
// unknown names fall back to DefaultProfile.
func Resolve(name string) Profile {
	if Known(name) {
		return Profile(name)
	}
	return DefaultProfile
}

// UserAgent returns the User-Agent string the profile presents.
func (p Profile) UserAgent() string {
	return p.spec().userAgent
}

// BaselineHeaders returns the ordered headers the profile attaches to every
// request before caller headers are applied.
func (p Profile) BaselineHeaders() []Header {
	s := p.spec()
	var out []Header
	if s.secChUA != "" {
		out = append(out,
			Header{Name: "sec-ch-ua", Value: s.secChUA},
			Header{Name: "sec-ch-ua-mobile", Value: "?0"},
			Header{Name: "sec-ch-ua-platform", Value: `"` + s.platform + `"`},
		)
	}
	out = append(out, Header{Name: "User-Agent", Value: s.userAgent})
	if s.accept != "" {
		out = append(out, Header{Name: "Accept", Value: s.accept})
	}
	if s.acceptLanguage != "" {
		out = append(out, Header{Name: "Accept-Language", Value: s.acceptLanguage})
	}
	return out
}

// headerSpec is the request identity of one profile.
type headerSpec struct {
	userAgent      string
	secChUA        string
	platform       string
	accept         string
	acceptLanguage string
	alpn           []string
}

const (
	chromiumAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7"
	firefoxAccept  = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/png,image/svg+xml,*/*;q=0.8"
	safariAccept   = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

var (
	alpnH2   = []string{"h2", "http/1.1"}
	alpnHTTP = []string{"http/1.1"}
)

// operaChromiumBase maps each Opera version to the Chromium major it ships.
var operaChromiumBase = map[string]string{
	"opera_116": "131",
	"opera_117": "132",
	"opera_118": "133",
	"opera_119": "134",
}

func (p Profile) spec() headerSpec {
	name := string(p)
	v := versionOf(name)

	switch {
	case strings.HasPrefix(name, "chrome_"):
		return chromiumSpec("Google Chrome", v, v, "")
	case strings.HasPrefix(name, "edge_"):
		return chromiumSpec("Microsoft Edge", v, v, " Edg/"+v+".0.0.0")
	case strings.HasPrefix(name, "opera_"):
		base := operaChromiumBase[name]
		if base == "" {
			base = v
		}
		return chromiumSpec("Opera", v, base, " OPR/"+v+".0.0.0")
	case strings.HasPrefix(name, "safari_ios_"):
		return safariMobileSpec("iPhone; CPU iPhone OS "+underscored(v)+" like Mac OS X", v)
	case strings.HasPrefix(name, "safari_ipad_"):
		return safariMobileSpec("iPad; CPU OS "+underscored(padVersion(v, 2))+" like Mac OS X", padVersion(v, 2))
	case strings.HasPrefix(name, "safari_"):
		return headerSpec{
			userAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/" + v + " Safari/605.1.15",
			accept:         safariAccept,
			acceptLanguage: "en-US,en;q=0.9",
			alpn:           alpnH2,
		}
	case strings.HasPrefix(name, "firefox_android_"):
		return headerSpec{
			userAgent:      "Mozilla/5.0 (Android 13; Mobile; rv:" + v + ".0) Gecko/" + v + ".0 Firefox/" + v + ".0",
			accept:         firefoxAccept,
			acceptLanguage: "en-US,en;q=0.5",
			alpn:           alpnH2,
		}
	case strings.HasPrefix(name, "firefox_"):
		return headerSpec{
			userAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:" + v + ".0) Gecko/20100101 Firefox/" + v + ".0",
			accept:         firefoxAccept,
			acceptLanguage: "en-US,en;q=0.5",
			alpn:           alpnH2,
		}
	case strings.HasPrefix(name, "okhttp_"):
		alpn := alpnH2
		if strings.HasPrefix(name, "okhttp_3_") {
			alpn = alpnHTTP
		}
		return headerSpec{
			userAgent: "okhttp/" + padVersion(v, 3),
			alpn:      alpn,
		}
	default:
		return DefaultProfile.spec()
	}
}

func chromiumSpec(brand, brandVersion, chromeVersion, uaSuffix string) headerSpec {
	return headerSpec{
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/" +
			chromeVersion + ".0.0.0 Safari/537.36" + uaSuffix,
		secChUA: fmt.Sprintf(`"%s";v="%s", "Chromium";v="%s", "Not/A)Brand";v="24"`,
			brand, brandVersion, chromeVersion),
		platform:       "Windows",
		accept:         chromiumAccept,
		acceptLanguage: "en-US,en;q=0.9",
		alpn:           alpnH2,
	}
}

func safariMobileSpec(device, version string) headerSpec {
	return headerSpec{
		userAgent: "Mozilla/5.0 (" + device +
			") AppleWebKit/605.1.15 (KHTML, like Gecko) Version/" + version + " Mobile/15E148 Safari/604.1",
		accept:         safariAccept,
		acceptLanguage: "en-US,en;q=0.9",
		alpn:           alpnH2,
	}
}

// versionOf joins the trailing digit groups of a profile name with dots:
// "safari_18_3_1" yields "18.3.1", "firefox_private_136" yields "136".
func versionOf(name string) string {
	var nums []string
	for _, part := range strings.Split(name, "_") {
		if part != "" && part[0] >= '0' && part[0] <= '9' {
			nums = append(nums, part)
		}
	}
	return strings.Join(nums, ".")
}

// underscored renders a dotted version the way platform strings spell it:
// "17.4.1" becomes "17_4_1".
func underscored(version string) string {
	return strings.ReplaceAll(version, ".", "_")
}

// padVersion extends a version to at least n dotted components:
// padVersion("4.12", 3) yields "4.12.0".
func padVersion(version string, n int) string {
	parts := strings.Split(version, ".")
	for len(parts) < n {
		parts = append(parts, "0")
	}
	return strings.Join(parts, ".")
}
