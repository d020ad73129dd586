package http

import (
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/pedro-fs-garcia/filmmash-api/models"
)

// clientHintBrandPattern matches one `"Brand";v="123"` entry of sec-ch-ua.
var clientHintBrandPattern = regexp.MustCompile(`"(?P<brand>[^"]+)";v="(?P<version>\d+)"`)

// deviceFromRequest reads the client hints and connection data of r.
// Headers that are missing or unparsable leave their field empty.
func deviceFromRequest(r *http.Request) models.DeviceInfo {
	device := models.DeviceInfo{
		UserAgent: r.Header.Get("User-Agent"),
		IPAddress: clientIP(r.RemoteAddr),
		OS:        strings.Trim(strings.TrimSpace(r.Header.Get("Sec-CH-UA-Platform")), `"`),
	}

	device.Browser, device.AppVersion = parseClientHintBrand(r.Header.Get("Sec-CH-UA"))

	switch strings.TrimSpace(r.Header.Get("Sec-CH-UA-Mobile")) {
	case "?1":
		device.DeviceType = models.DeviceTypeMobile
	case "?0":
		device.DeviceType = models.DeviceTypeDesktop
	}

	return device
}

// parseClientHintBrand returns the first real browser brand of a sec-ch-ua
// value and its major version. GREASE brands such as "Not A(Brand" are only
// used when nothing else is listed.
func parseClientHintBrand(value string) (brand, version string) {
	matches := clientHintBrandPattern.FindAllStringSubmatch(value, -1)
	if len(matches) == 0 {
		return "", ""
	}
	for _, m := range matches {
		if !isGreaseBrand(m[1]) {
			return m[1], m[2]
		}
	}
	return matches[0][1], matches[0][2]
}

// isGreaseBrand reports whether brand is one of the randomized placeholders
// ("Not A(Brand", "Not/A)Brand", "Not_A Brand", ...).
func isGreaseBrand(brand string) bool {
	return strings.HasPrefix(brand, "Not") && strings.Contains(brand, "Brand")
}

// clientIP strips the port from a RemoteAddr already rewritten by
// middleware.RealIP. Forwarded lists keep their first hop.
func clientIP(remoteAddr string) string {
	addr := strings.TrimSpace(strings.Split(remoteAddr, ",")[0])
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
