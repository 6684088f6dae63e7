package common

import (
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP returns the caller address used to key per-client limits.
//
// Proxy headers are not read here: the router runs chi's RealIP first, which rewrites RemoteAddr.
// IPv4-mapped IPv6 addresses are unmapped so both forms share a key.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if ap, err := netip.ParseAddrPort(addr); err == nil {
		return ap.Addr().Unmap().String()
	}
	if ip, err := netip.ParseAddr(addr); err == nil {
		return ip.Unmap().String()
	}
	return addr
}
