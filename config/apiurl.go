package config

import (
	"net"
	"strings"
)

// Environment variables consulted for the marketplace API base URL, in precedence order.
var apiURLOverrideKeys = []string{"SAUBIO_API_URL", "NEXT_PUBLIC_API_URL"}

const (
	platformHostKey    = "VERCEL_URL"
	FallbackAPIBaseURL = "http://localhost:3001/api"
)

// ResolveAPIBaseURL picks the marketplace API base URL.
//
// Precedence: explicit overrides, then the hosting platform's deployment host,
// then a guess from the host this service runs behind, then FallbackAPIBaseURL.
func ResolveAPIBaseURL(lookup func(string) string, runtimeHost string) string {
	for _, key := range apiURLOverrideKeys {
		if v := lookup(key); v != "" {
			return normalizeBaseURL(v)
		}
	}

	if host := lookup(platformHostKey); host != "" {
		return normalizeBaseURL(host) + "/api"
	}

	if guessed := apiURLFromHost(runtimeHost); guessed != "" {
		return guessed
	}

	return FallbackAPIBaseURL
}

// apiURLFromHost maps a public host such as "www.saubio.de" to "https://api.saubio.de".
// Local hosts yield "" so the fallback applies.
func apiURLFromHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || net.ParseIP(host) != nil {
		return ""
	}
	host = strings.TrimPrefix(host, "www.")
	if strings.HasPrefix(host, "api.") {
		return "https://" + host
	}
	return "https://api." + host
}

func normalizeBaseURL(raw string) string {
	v := strings.TrimSpace(raw)
	if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
		v = "https://" + v
	}
	return strings.TrimRight(v, "/")
}
