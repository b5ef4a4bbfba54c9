package config

import (
	"crypto/tls"
	"fmt"
	"strings"
)

// tlsVersions maps accepted protocol names to their minimum TLS version.
// The PROTOCOL_* spellings are what saved connection profiles carry.
var tlsVersions = map[string]uint16{
	"":                    tls.VersionTLS12,
	"TLS":                 tls.VersionTLS12,
	"PROTOCOL_TLS":        tls.VersionTLS12,
	"PROTOCOL_TLS_CLIENT": tls.VersionTLS12,
	"TLSV1":               tls.VersionTLS10,
	"TLSV1.0":             tls.VersionTLS10,
	"PROTOCOL_TLSV1":      tls.VersionTLS10,
	"TLSV1.1":             tls.VersionTLS11,
	"PROTOCOL_TLSV1_1":    tls.VersionTLS11,
	"TLSV1.2":             tls.VersionTLS12,
	"PROTOCOL_TLSV1_2":    tls.VersionTLS12,
	"TLSV1.3":             tls.VersionTLS13,
	"PROTOCOL_TLSV1_3":    tls.VersionTLS13,
}

// ParseTLSVersion resolves a protocol name such as "TLSv1.2" or
// "PROTOCOL_TLS" to a crypto/tls version constant. Empty selects TLS 1.2.
func ParseTLSVersion(name string) (uint16, error) {
	v, ok := tlsVersions[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown TLS protocol %q", name)
	}
	return v, nil
}
