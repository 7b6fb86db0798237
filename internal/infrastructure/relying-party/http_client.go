package relyingparty

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type client struct {
	*http.Client
	userAgent string
}

func newHTTPClient(requestTimeout time.Duration, userAgent string) *client {
	return &client{&http.Client{Timeout: requestTimeout}, userAgent}
}

func (c *client) get(
	ctx context.Context, url string, header map[string]string,
) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.doRequest(req, header)
}

func (c *client) post(
	ctx context.Context, url string, body io.Reader, header map[string]string,
) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	return c.doRequest(req, header)
}

func (c *client) doRequest(
	req *http.Request, header map[string]string,
) ([]byte, error) {
	if len(c.userAgent) > 0 {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for key, value := range header {
		req.Header.Set(key, value)
	}

	rs, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer rs.Body.Close()

	body, err := io.ReadAll(rs.Body)
	if err != nil {
		return nil, err
	}
	if rs.StatusCode < http.StatusOK || rs.StatusCode >= http.StatusMultipleChoices {
		return nil, &statusError{rs.StatusCode, string(body)}
	}
	return body, nil
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": fmt.Sprintf("Bearer %s", token)}
}

// statusError is returned for non 2xx replies, it matches ErrUnexpectedStatus.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: %d %s", ErrUnexpectedStatus, e.code, e.body)
}

func (e *statusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// rejected tells whether the relying party answered but refused the request.
func (e *statusError) rejected() bool {
	return e.code >= http.StatusBadRequest && e.code < http.StatusInternalServerError
}
