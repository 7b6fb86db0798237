package actionlog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"

	"github.com/idwallet/lwsd/internal/core/domain"
	"github.com/idwallet/lwsd/internal/core/ports"
	actionlog "github.com/idwallet/lwsd/internal/infrastructure/action-log"
)

const secret = "supersecret"

var entry = domain.ActionLog{
	WalletID: "wallet-1",
	Title:    "Login to https://rp.example.com",
	Content:  "Login to https://rp.example.com was successful",
}

func TestAppend(t *testing.T) {
	received := make(chan map[string]interface{}, 1)
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			token, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			var body map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			received <- body
			w.WriteHeader(http.StatusOK)
		},
	))
	defer server.Close()

	svc, err := actionlog.NewService(server.URL, secret, time.Second)
	require.NoError(t, err)

	err = svc.Append(
		context.Background(), ports.ActionLogKindRPC, "", ports.ActionLogAdd, entry,
	)
	require.NoError(t, err)

	body := <-received
	require.Equal(t, ports.ActionLogKindRPC, body["kind"])
	require.Equal(t, ports.ActionLogAdd, body["action"])
	data := body["data"].(map[string]interface{})
	require.Equal(t, entry.WalletID, data["walletId"])
	require.Equal(t, entry.Content, data["content"])
}

func TestFailingAppend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	))
	defer server.Close()

	svc, err := actionlog.NewService(server.URL, "wrongsecret", time.Second)
	require.NoError(t, err)

	err = svc.Append(
		context.Background(), ports.ActionLogKindRPC, "", ports.ActionLogAdd, entry,
	)
	require.Error(t, err)
}

func TestNewServiceValidation(t *testing.T) {
	_, err := actionlog.NewService("", "", 0)
	require.Equal(t, actionlog.ErrMissingEndpoint, err)

	_, err = actionlog.NewService("ftp://localhost", "", 0)
	require.Equal(t, actionlog.ErrInvalidEndpoint, err)
}
