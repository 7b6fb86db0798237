package wsinterface

import (
	"net"
	"strings"
)

// ClientVerifier decides whether a prospective connection is accepted,
// based on the remote ip and the Origin header of the handshake.
type ClientVerifier struct {
	ips     map[string]bool
	origins map[string]bool
}

func NewClientVerifier(ipWhitelist, originWhitelist []string) *ClientVerifier {
	ips := make(map[string]bool, len(ipWhitelist))
	for _, ip := range ipWhitelist {
		ips[canonicalIP(ip)] = true
	}
	origins := make(map[string]bool, len(originWhitelist))
	for _, origin := range originWhitelist {
		origins[strings.TrimSpace(origin)] = true
	}
	return &ClientVerifier{ips, origins}
}

// VerifyClient returns true iff both the ip and the origin are whitelisted.
func (v *ClientVerifier) VerifyClient(remoteIP, origin string) bool {
	return v.ips[canonicalIP(remoteIP)] && v.origins[origin]
}

// canonicalIP strips any port and zone and returns the canonical form of
// the ip, so that for example ::ffff:127.0.0.1 matches 127.0.0.1.
func canonicalIP(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if i := strings.LastIndex(addr, "%"); i >= 0 {
		addr = addr[:i]
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return addr
	}
	if ip4 := ip.To4(); ip4 != nil {
		return ip4.String()
	}
	return ip.String()
}
