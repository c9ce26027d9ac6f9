package detector

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gamassss/utm-tracker/internal/domain"
)

// Edge headers consulted for geolocation, in order of preference.
var (
	countryHeaders = []string{"CF-IPCountry", "X-Vercel-IP-Country", "X-Country-Code"}
	cityHeaders    = []string{"CF-IPCity", "X-Vercel-IP-City"}
)

type Location struct {
	City    string
	Country string
}

// DetectLocation reads the geolocation headers set by the CDN in front of the
// service. cityOverride wins over the headers when the landing page supplied
// one. Missing values become "Unknown".
func DetectLocation(h http.Header, cityOverride string) Location {
	loc := Location{
		City:    strings.TrimSpace(cityOverride),
		Country: firstHeader(h, countryHeaders),
	}

	if loc.City == "" {
		loc.City = firstHeader(h, cityHeaders)
	}

	// Cloudflare reports XX for unknown and T1 for Tor.
	if loc.Country == "" || loc.Country == "XX" {
		loc.Country = domain.UnknownLocation
	}
	if loc.City == "" {
		loc.City = domain.UnknownLocation
	}

	return loc
}

func firstHeader(h http.Header, names []string) string {
	for _, name := range names {
		v := strings.TrimSpace(h.Get(name))
		if v == "" {
			continue
		}
		// Vercel URL-encodes city names.
		if decoded, err := url.QueryUnescape(v); err == nil {
			v = decoded
		}
		return v
	}
	return ""
}

func GetClientIP(remoteAddr, xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xRealIP != "" {
		return xRealIP
	}

	if idx := strings.LastIndex(remoteAddr, ":"); idx != -1 {
		return remoteAddr[:idx]
	}

	return remoteAddr
}
