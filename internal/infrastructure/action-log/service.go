// Package actionlog implements an ports.ActionLogger that forwards entries
// to the desktop application over HTTP.
package actionlog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/sony/gobreaker"

	"github.com/idwallet/lwsd/internal/core/domain"
	"github.com/idwallet/lwsd/internal/core/ports"
	"github.com/idwallet/lwsd/pkg/circuitbreaker"
)

const defaultRequestTimeout = 15 * time.Second

type entry struct {
	Kind   string           `json:"kind"`
	Source string           `json:"source"`
	Action string           `json:"action"`
	Data   domain.ActionLog `json:"data"`
}

type service struct {
	endpoint   string
	secret     string
	httpClient *client
	cb         *gobreaker.CircuitBreaker
}

// NewService returns an action logger that POSTs every entry as JSON to the
// given endpoint. If secret is not empty, requests carry a HS256 signed
// bearer token.
func NewService(
	endpoint, secret string, requestTimeout time.Duration,
) (ports.ActionLogger, error) {
	if len(endpoint) <= 0 {
		return nil, ErrMissingEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrInvalidEndpoint
	}
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	return &service{
		endpoint:   endpoint,
		secret:     secret,
		httpClient: newHTTPClient(requestTimeout),
		cb:         circuitbreaker.NewCircuitBreaker("action log"),
	}, nil
}

func (s *service) Append(
	ctx context.Context, kind, source, action string, data domain.ActionLog,
) error {
	payload, err := json.Marshal(entry{kind, source, action, data})
	if err != nil {
		return err
	}

	_, err = s.cb.Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		if len(s.secret) > 0 {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
				IssuedAt: time.Now().Unix(),
				Subject:  data.WalletID,
			})
			tokenString, err := token.SignedString([]byte(s.secret))
			if err != nil {
				return nil, err
			}
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		status, resp, err := s.httpClient.post(
			ctx, s.endpoint, string(payload), headers,
		)
		if err != nil {
			return nil, err
		}
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return nil, fmt.Errorf("action log rejected with status %d: %s", status, resp)
		}
		return nil, nil
	})

	return err
}
