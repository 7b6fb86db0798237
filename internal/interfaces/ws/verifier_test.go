package wsinterface_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	wsinterface "github.com/idwallet/lwsd/internal/interfaces/ws"
)

func TestVerifyClient(t *testing.T) {
	verifier := wsinterface.NewClientVerifier(
		[]string{"127.0.0.1", "::1"}, []string{extensionOrigin},
	)

	tests := []struct {
		name     string
		ip       string
		origin   string
		expected bool
	}{
		{"ipv4", "127.0.0.1", extensionOrigin, true},
		{"ipv6", "::1", extensionOrigin, true},
		{"ipv4 mapped ipv6", "::ffff:127.0.0.1", extensionOrigin, true},
		{"ip with port", "127.0.0.1:51234", extensionOrigin, true},
		{"unknown ip", "192.168.1.10", extensionOrigin, false},
		{"unknown origin", "127.0.0.1", "https://evil.example.com", false},
		{"missing origin", "127.0.0.1", "", false},
		{"both unknown", "10.0.0.1", "null", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, verifier.VerifyClient(tt.ip, tt.origin))
		})
	}
}
