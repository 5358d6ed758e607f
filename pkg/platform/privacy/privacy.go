// Package privacy reduces personal identifiers to forms safe for logs,
// spans and metrics.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
)

// AnonymizeIP zeroes the host part of an address: /24 for IPv4, /48 for IPv6.
// Empty or unparseable input yields "".
func AnonymizeIP(raw string) string {
	ip := net.ParseIP(raw)
	if ip == nil {
		return ""
	}
	if v4 := ip.To4(); v4 != nil {
		return v4.Mask(net.CIDRMask(24, 32)).String()
	}
	return ip.Mask(net.CIDRMask(48, 128)).String()
}

// HashIdentifier returns a short SHA-256 prefix of an identifier. External
// IDs are often emails, so only this form leaves the request.
func HashIdentifier(id string) string {
	if id == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(id))
	return hex.EncodeToString(hash[:8])
}
