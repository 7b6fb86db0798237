package wsinterface

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/idwallet/lwsd/internal/core/domain"
)

var (
	connectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lwsd",
			Subsystem: "ws",
			Name:      "connections_total",
			Help:      "Prospective WebSocket connections by outcome.",
		},
		[]string{"outcome"},
	)
	openSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lwsd",
			Subsystem: "ws",
			Name:      "open_sessions",
			Help:      "Currently open sessions.",
		},
	)
	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lwsd",
			Subsystem: "ws",
			Name:      "messages_total",
			Help:      "Messages handled by direction and type.",
		},
		[]string{"direction", "type"},
	)
)

const (
	outcomeAccepted    = "accepted"
	outcomeRejected    = "rejected"
	outcomeRateLimited = "rate_limited"

	directionIn  = "in"
	directionOut = "out"

	unknownType = "unknown"
)

var knownTypes = map[string]bool{
	domain.MessageTypeWallets:    true,
	domain.MessageTypeUnlock:     true,
	domain.MessageTypeAttributes: true,
	domain.MessageTypeAuth:       true,
	domain.MessageTypeSignup:     true,
	domain.MessageTypeVersion:    true,
	domain.MessageTypeError:      true,
}

// typeLabel bounds the type label to the message types of the protocol,
// since request types are chosen by the client.
func typeLabel(msgType string) string {
	if knownTypes[msgType] {
		return msgType
	}
	return unknownType
}

func init() {
	prometheus.MustRegister(connectionsTotal, openSessions, messagesTotal)
}
