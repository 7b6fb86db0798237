// Package relyingparty implements the HTTP client used to authenticate and
// sign up wallets with relying party websites.
package relyingparty

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"

	"github.com/idwallet/lwsd/internal/core/domain"
	"github.com/idwallet/lwsd/internal/core/ports"
	"github.com/idwallet/lwsd/pkg/circuitbreaker"
	"github.com/idwallet/lwsd/pkg/idattribute"
)

const (
	defaultRequestTimeout    = 30 * time.Second
	defaultRequestsPerSecond = 10

	challengeClaim = "challenge"
)

type Opts struct {
	RequestTimeout    time.Duration
	RequestsPerSecond int
	UserAgent         string
}

func (o Opts) withDefaults() Opts {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = defaultRequestTimeout
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = defaultRequestsPerSecond
	}
	return o
}

type service struct {
	httpClient *client
	limiter    ratelimit.Limiter

	breakers map[string]*gobreaker.CircuitBreaker
	lock     *sync.Mutex
}

// NewClient returns a RelyingPartyClient. All requests share a rate limiter,
// every relying party host gets its own circuit breaker.
func NewClient(opts Opts) ports.RelyingPartyClient {
	opts = opts.withDefaults()
	return &service{
		httpClient: newHTTPClient(opts.RequestTimeout, opts.UserAgent),
		limiter:    ratelimit.New(opts.RequestsPerSecond),
		breakers:   make(map[string]*gobreaker.CircuitBreaker),
		lock:       &sync.Mutex{},
	}
}

// rejection carries a 4xx reply through the breaker without counting it as a
// failure of the relying party.
type rejection struct {
	err error
}

type tokenReply struct {
	JWT string `json:"jwt"`
}

type signatureRequest struct {
	Signature struct {
		Value string `json:"value"`
	} `json:"signature"`
}

type userAttribute struct {
	ID     string                 `json:"id"`
	Schema map[string]interface{} `json:"schema,omitempty"`
	Data   interface{}            `json:"data"`
}

func (s *service) GetChallenge(
	ctx context.Context, cfg domain.RelyingPartyConfig, address string,
) (*ports.Challenge, error) {
	endpoint, err := endpointURL(cfg, endpointChallenge)
	if err != nil {
		return nil, err
	}

	body, err := s.execute(endpoint, func() ([]byte, error) {
		return s.httpClient.get(ctx, fmt.Sprintf("%s/%s", endpoint, address), nil)
	})
	if err != nil {
		return nil, err
	}

	token, err := parseTokenReply(body)
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidChallenge, err)
	}
	value, ok := claims[challengeClaim].(string)
	if !ok || len(value) <= 0 {
		return nil, ErrInvalidChallenge
	}

	return &ports.Challenge{Token: token, Value: value}, nil
}

func (s *service) SubmitChallenge(
	ctx context.Context, cfg domain.RelyingPartyConfig,
	challengeToken, signature string,
) (string, error) {
	endpoint, err := endpointURL(cfg, endpointChallenge)
	if err != nil {
		return "", err
	}

	req := signatureRequest{}
	req.Signature.Value = signature
	payload, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	header := bearer(challengeToken)
	header["Content-Type"] = "application/json"

	body, err := s.execute(endpoint, func() ([]byte, error) {
		return s.httpClient.post(ctx, endpoint, bytes.NewReader(payload), header)
	})
	if err != nil {
		return "", err
	}

	return parseTokenReply(body)
}

func (s *service) GetUserLoginPayload(
	ctx context.Context, cfg domain.RelyingPartyConfig, sessionToken string,
) (interface{}, error) {
	endpoint, err := endpointURL(cfg, endpointToken)
	if err != nil {
		return nil, err
	}

	body, err := s.execute(endpoint, func() ([]byte, error) {
		return s.httpClient.get(ctx, endpoint, bearer(sessionToken))
	})
	if err != nil {
		return nil, err
	}

	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *service) CreateUser(
	ctx context.Context, cfg domain.RelyingPartyConfig, sessionToken string,
	attributes []ports.RelyingPartyAttribute,
) error {
	endpoint, err := endpointURL(cfg, endpointUsers)
	if err != nil {
		return err
	}

	form, contentType, err := encodeUserForm(attributes)
	if err != nil {
		return err
	}

	header := bearer(sessionToken)
	header["Content-Type"] = contentType

	_, err = s.execute(endpoint, func() ([]byte, error) {
		return s.httpClient.post(ctx, endpoint, bytes.NewReader(form), header)
	})
	return err
}

func (s *service) execute(
	endpoint string, fn func() ([]byte, error),
) ([]byte, error) {
	s.limiter.Take()

	res, err := s.breaker(endpoint).Execute(func() (interface{}, error) {
		body, err := fn()
		var statusErr *statusError
		if errors.As(err, &statusErr) && statusErr.rejected() {
			return rejection{err}, nil
		}
		return body, err
	})
	if err == nil {
		if r, ok := res.(rejection); ok {
			err = r.err
		}
	}
	if err != nil {
		log.WithError(err).Debug("relying party request failed")
		return nil, err
	}
	return res.([]byte), nil
}

// breaker returns the circuit breaker of the host the endpoint points to.
func (s *service) breaker(endpoint string) *gobreaker.CircuitBreaker {
	host := endpoint
	if u, err := url.Parse(endpoint); err == nil && len(u.Host) > 0 {
		host = u.Host
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	cb, ok := s.breakers[host]
	if !ok {
		cb = circuitbreaker.NewCircuitBreaker(fmt.Sprintf("relying party %s", host))
		s.breakers[host] = cb
	}
	return cb
}

func parseTokenReply(body []byte) (string, error) {
	reply := tokenReply{}
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", err
	}
	if len(reply.JWT) <= 0 {
		return "", ErrMissingToken
	}
	return reply.JWT, nil
}

// encodeUserForm builds the multipart signup body: an "attributes" json
// field plus one file part per document, named after the reference used in
// the attribute data.
func encodeUserForm(
	attributes []ports.RelyingPartyAttribute,
) ([]byte, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	list := make([]userAttribute, 0, len(attributes))
	for _, attr := range attributes {
		list = append(list, userAttribute{attr.ID, attr.Schema, attr.Data})
	}
	attrs, err := json.Marshal(list)
	if err != nil {
		return nil, "", err
	}
	if err := w.WriteField("attributes", string(attrs)); err != nil {
		return nil, "", err
	}

	for _, attr := range attributes {
		for _, doc := range attr.Documents {
			name := idattribute.DocumentRef(doc.ID)
			filename := doc.Name
			if len(filename) <= 0 {
				filename = name
			}
			mimeType := doc.MimeType
			if len(mimeType) <= 0 {
				mimeType = "application/octet-stream"
			}

			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", fmt.Sprintf(
				`form-data; name="%s"; filename="%s"`, name, filename,
			))
			h.Set("Content-Type", mimeType)

			part, err := w.CreatePart(h)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(doc.Buffer); err != nil {
				return nil, "", err
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
