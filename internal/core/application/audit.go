package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/idwallet/lwsd/internal/core/domain"
	"github.com/idwallet/lwsd/internal/core/ports"
)

// AuditLogger records the outcome of every relying party auth or signup
// flow against the owning wallet. Recording never fails from the caller
// point of view: errors are logged and dropped.
type AuditLogger struct {
	walletRepository domain.WalletRepository
	actionLogger     ports.ActionLogger
}

// NewAuditLogger returns a new AuditLogger. actionLogger is optional.
func NewAuditLogger(
	walletRepository domain.WalletRepository, actionLogger ports.ActionLogger,
) *AuditLogger {
	return &AuditLogger{walletRepository, actionLogger}
}

// RecordAttempt derives a LoginAttempt from the request and the reply that
// completed it, persists it and emits the related action log entry.
func (a *AuditLogger) RecordAttempt(
	ctx context.Context, req domain.RelyingPartyRequest, resp domain.Response,
) {
	w, err := a.walletRepository.FindByAddress(
		ctx, domain.NormalizeAddress(req.Address),
	)
	if err != nil {
		log.WithError(err).Warnf(
			"failed to record login attempt for %s", req.Address,
		)
		return
	}

	attempt := newLoginAttempt(w.ID, req, resp)
	if err := a.walletRepository.AddLoginAttempt(ctx, attempt); err != nil {
		log.WithError(err).Warn("failed to store login attempt")
		return
	}

	if a.actionLogger == nil {
		return
	}
	if err := a.actionLogger.Append(
		ctx, ports.ActionLogKindRPC, "", ports.ActionLogAdd, attempt.ActionLog(),
	); err != nil {
		log.WithError(err).Warn("failed to append action log")
	}
}

func newLoginAttempt(
	walletID string, req domain.RelyingPartyRequest, resp domain.Response,
) domain.LoginAttempt {
	attempt := domain.LoginAttempt{
		ID:          uuid.New().String(),
		WalletID:    walletID,
		WebsiteName: req.Config.Website.Name,
		WebsiteURL:  req.Config.Website.URL,
		Signup:      req.IsSignup(),
		Success:     !resp.Error,
		CreatedAt:   time.Now().Unix(),
	}
	if resp.Error {
		payload, _ := resp.ErrorPayload()
		attempt.ErrorCode = payload.Code
		attempt.ErrorMessage = payload.Message
		if len(attempt.ErrorCode) <= 0 {
			attempt.ErrorCode = domain.DefaultErrorCode
		}
		if len(attempt.ErrorMessage) <= 0 {
			attempt.ErrorMessage = domain.DefaultErrorMessage
		}
	}
	return attempt
}
