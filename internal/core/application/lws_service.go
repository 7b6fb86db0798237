package application

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strconv"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/idwallet/lwsd/internal/core/domain"
	"github.com/idwallet/lwsd/internal/core/ports"
	"github.com/idwallet/lwsd/pkg/idattribute"
)

// Connection is the per-connection context a request is handled within.
// Unlocked identities live here and are never shared between connections.
type Connection interface {
	AddIdentity(address string, identity Identity)
	GetIdentity(address string) Identity
	Send(resp domain.Response, req *domain.Request)
}

// LWSService dispatches inbound requests to the handler registered for
// their type and replies through the originating connection.
type LWSService interface {
	HandleRequest(ctx context.Context, req domain.Request, conn Connection)
}

// LWSServiceOpts defines the collaborators of the LWSService.
type LWSServiceOpts struct {
	WalletRepository    domain.WalletRepository
	AttributeRepository domain.AttributeRepository
	KeyStore            ports.KeyStore
	Transports          ports.TransportOpener
	RelyingPartyClient  ports.RelyingPartyClient
	// ActionLogger is optional.
	ActionLogger ports.ActionLogger
	Version      string
}

func (o LWSServiceOpts) validate() error {
	if o.WalletRepository == nil {
		return ErrMissingWalletRepository
	}
	if o.AttributeRepository == nil {
		return ErrMissingAttributeRepository
	}
	if o.KeyStore == nil {
		return ErrMissingKeyStore
	}
	if o.RelyingPartyClient == nil {
		return ErrMissingRelyingPartyClient
	}
	return nil
}

type handlerFunc func(ctx context.Context, req domain.Request, conn Connection)

type lwsService struct {
	walletRepository domain.WalletRepository
	identityOpts     IdentityOpts
	rpClient         ports.RelyingPartyClient
	audit            *AuditLogger
	version          string

	handlers map[string]handlerFunc
}

func NewLWSService(opts LWSServiceOpts) (LWSService, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	svc := &lwsService{
		walletRepository: opts.WalletRepository,
		identityOpts: IdentityOpts{
			KeyStore:            opts.KeyStore,
			Transports:          opts.Transports,
			AttributeRepository: opts.AttributeRepository,
		},
		rpClient: opts.RelyingPartyClient,
		audit:    NewAuditLogger(opts.WalletRepository, opts.ActionLogger),
		version:  opts.Version,
	}
	svc.handlers = map[string]handlerFunc{
		domain.MessageTypeWallets:    svc.reqWallets,
		domain.MessageTypeUnlock:     svc.reqUnlock,
		domain.MessageTypeAttributes: svc.reqAttributes,
		domain.MessageTypeAuth:       svc.reqAuth,
		domain.MessageTypeSignup:     svc.reqSignup,
		domain.MessageTypeVersion:    svc.reqVersion,
	}
	return svc, nil
}

func (s *lwsService) HandleRequest(
	ctx context.Context, req domain.Request, conn Connection,
) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("type", req.Type).Errorf(
				"recovered from panic while handling request: %v\n%s",
				r, debug.Stack(),
			)
			conn.Send(domain.NewErrorResponse(
				domain.DefaultErrorCode, domain.DefaultErrorMessage,
			), &req)
		}
	}()

	log.WithField("type", req.Type).Debugf("lws req %s", req.Meta.ID)

	handler, ok := s.handlers[req.Type]
	if !ok {
		s.reqUnknown(ctx, req, conn)
		return
	}
	handler(ctx, req, conn)
}

func (s *lwsService) reqWallets(
	ctx context.Context, req domain.Request, conn Connection,
) {
	var payload domain.WalletsRequest
	if err := req.DecodePayload(&payload); err != nil {
		sendInvalidMessage(conn, req, err)
		return
	}

	wallets, err := s.walletRepository.FindAll(ctx)
	if err != nil {
		log.WithError(err).Error("failed to list wallets")
		conn.Send(domain.NewErrorResponse(domain.DefaultErrorCode, err.Error()), &req)
		return
	}

	infos := make([]domain.WalletInfo, len(wallets))
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range wallets {
		i, w := i, wallets[i]
		eg.Go(func() (err error) {
			// The handler recover does not reach errgroup goroutines.
			defer func() {
				if r := recover(); r != nil {
					log.WithField("wallet", w.ID).Errorf(
						"recovered from panic while listing wallet: %v\n%s",
						r, debug.Stack(),
					)
					err = fmt.Errorf("%w: %v", ErrWalletListing, r)
				}
			}()

			info := domain.WalletInfo{
				Address: w.Address,
				Name:    w.Name,
				Profile: w.Profile,
			}
			identity := conn.GetIdentity(domain.NormalizeAddress(w.Address))
			if identity != nil && identity.IsUnlocked() {
				info.Unlocked = true
				signedUp, err := s.walletRepository.HasSignedUpTo(
					egCtx, w.ID, payload.Config.Website.URL,
				)
				if err != nil {
					return err
				}
				info.SignedUp = signedUp
			}
			infos[i] = info
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		log.WithError(err).Error("failed to list wallets")
		conn.Send(domain.NewErrorResponse(domain.DefaultErrorCode, err.Error()), &req)
		return
	}

	conn.Send(domain.Response{Payload: infos}, &req)
}

func (s *lwsService) reqUnlock(
	ctx context.Context, req domain.Request, conn Connection,
) {
	var payload domain.UnlockRequest
	if err := req.DecodePayload(&payload); err != nil {
		sendInvalidMessage(conn, req, err)
		return
	}

	address := domain.NormalizeAddress(payload.Address)
	reply := domain.UnlockReply{Address: payload.Address}

	w, err := s.walletRepository.FindByAddress(ctx, address)
	if err != nil {
		log.WithError(err).Warnf("failed to unlock wallet %s", address)
		conn.Send(domain.Response{Payload: reply}, &req)
		return
	}
	reply.Profile = w.Profile

	identity, err := NewIdentity(*w, s.identityOpts)
	if err == nil {
		err = identity.Unlock(ctx, payload.Password)
	}
	if err != nil {
		log.WithError(err).Warnf("failed to unlock wallet %s", address)
		conn.Send(domain.Response{Payload: reply}, &req)
		return
	}

	conn.AddIdentity(address, identity)
	reply.Unlocked = true

	signedUp, err := s.walletRepository.HasSignedUpTo(
		ctx, w.ID, payload.Config.Website.URL,
	)
	if err != nil {
		log.WithError(err).Warnf("failed to get signup status for %s", address)
	}
	reply.SignedUp = signedUp

	conn.Send(domain.Response{Payload: reply}, &req)
}

func (s *lwsService) reqAttributes(
	ctx context.Context, req domain.Request, conn Connection,
) {
	var payload domain.AttributesRequest
	if err := req.DecodePayload(&payload); err != nil {
		sendInvalidMessage(conn, req, err)
		return
	}

	identity := unlockedIdentity(conn, payload.Address)
	if identity == nil {
		conn.Send(domain.NewErrorResponse(
			domain.ErrCodeNotAuthorized,
			"Wallet is locked, cannot request attributes",
		), &req)
		return
	}

	infos, err := s.getAttributes(ctx, identity, payload.AttributeURLs())
	if err != nil {
		log.WithError(err).Error("failed to fetch attributes")
		conn.Send(
			domain.NewErrorResponse(domain.ErrCodeAttributes, err.Error()), &req,
		)
		return
	}

	conn.Send(domain.Response{Payload: domain.AttributesReply{
		Address:    payload.Address,
		Attributes: infos,
	}}, &req)
}

func (s *lwsService) getAttributes(
	ctx context.Context, identity Identity, urls []string,
) ([]domain.AttributeInfo, error) {
	attributes, err := identity.GetAttributesByTypes(ctx, urls)
	if err != nil {
		return nil, err
	}
	return denormalizeAttributes(attributes)
}

func (s *lwsService) reqAuth(
	ctx context.Context, req domain.Request, conn Connection,
) {
	var payload domain.RelyingPartyRequest
	if err := req.DecodePayload(&payload); err != nil {
		s.invalidRelyingPartyRequest(ctx, req, conn, false, err)
		return
	}

	identity := unlockedIdentity(conn, payload.Address)
	if identity == nil {
		s.authResp(ctx, domain.NewErrorResponse(
			domain.ErrCodeNotAuthorized,
			"Wallet is locked, cannot auth with relying party",
		), req, payload, conn)
		return
	}

	session := NewRelyingPartySession(payload.Config, identity, s.rpClient)
	if err := session.Establish(ctx); err != nil {
		log.WithError(err).Warn("failed to establish relying party session")
		s.authResp(ctx, domain.NewErrorResponse(
			domain.ErrCodeSessionEstablish, err.Error(),
		), req, payload, conn)
		return
	}

	loginPayload, err := session.GetUserLoginPayload(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to get user login payload")
		s.authResp(ctx, domain.NewErrorResponse(
			domain.ErrCodeToken, "User authentication failed",
		), req, payload, conn)
		return
	}

	s.authResp(ctx, domain.Response{Payload: loginPayload}, req, payload, conn)
}

func (s *lwsService) reqSignup(
	ctx context.Context, req domain.Request, conn Connection,
) {
	var payload domain.RelyingPartyRequest
	if err := req.DecodePayload(&payload); err != nil {
		s.invalidRelyingPartyRequest(ctx, req, conn, true, err)
		return
	}
	payload.Signup = true

	identity := unlockedIdentity(conn, payload.Address)
	if identity == nil {
		s.authResp(ctx, domain.NewErrorResponse(
			domain.ErrCodeNotAuthorized,
			"Wallet is locked, cannot signup with relying party",
		), req, payload, conn)
		return
	}

	session := NewRelyingPartySession(payload.Config, identity, s.rpClient)
	if err := session.Establish(ctx); err != nil {
		log.WithError(err).Warn("failed to establish relying party session")
		s.authResp(ctx, domain.NewErrorResponse(
			domain.ErrCodeSessionEstablish, err.Error(),
		), req, payload, conn)
		return
	}

	attributes, err := normalizeAttributes(payload.Attributes)
	if err == nil {
		err = session.CreateUser(ctx, attributes)
	}
	if err != nil {
		log.WithError(err).Warn("failed to create relying party user")
		s.authResp(ctx, domain.NewErrorResponse(
			domain.ErrCodeUserCreate, err.Error(),
		), req, payload, conn)
		return
	}

	s.authResp(ctx, domain.Response{Payload: "ok"}, req, payload, conn)
}

func (s *lwsService) reqVersion(
	_ context.Context, req domain.Request, conn Connection,
) {
	conn.Send(domain.Response{Payload: domain.VersionReply{
		Version:  s.version,
		Protocol: domain.ProtocolVersion,
	}}, &req)
}

func (s *lwsService) reqUnknown(
	_ context.Context, req domain.Request, conn Connection,
) {
	log.Errorf("unknown request %s", req.Type)
	conn.Send(domain.Response{
		Error:   true,
		Payload: domain.ErrorPayload{Message: domain.UnknownRequestMessage},
	}, &req)
}

// authResp records the outcome of an auth or signup flow and then replies.
func (s *lwsService) authResp(
	ctx context.Context, resp domain.Response, req domain.Request,
	payload domain.RelyingPartyRequest, conn Connection,
) {
	s.audit.RecordAttempt(ctx, payload, resp)
	conn.Send(resp, &req)
}

// invalidRelyingPartyRequest replies invalid_message to a malformed auth or
// signup request. The failure is recorded as a login attempt whenever the
// payload still names the wallet and the relying party.
func (s *lwsService) invalidRelyingPartyRequest(
	ctx context.Context, req domain.Request, conn Connection,
	signup bool, err error,
) {
	log.WithError(err).Warnf("invalid %s payload", req.Type)
	resp := domain.NewErrorResponse(
		domain.ErrCodeInvalidMessage, "Invalid Message",
	)

	var partial struct {
		Address string          `json:"address"`
		Config  json.RawMessage `json:"config"`
	}
	if json.Unmarshal(req.Payload, &partial) != nil || partial.Address == "" {
		conn.Send(resp, &req)
		return
	}

	payload := domain.RelyingPartyRequest{Address: partial.Address, Signup: signup}
	// Fields of the right type are kept even if others don't decode.
	// nolint
	json.Unmarshal(partial.Config, &payload.Config)
	s.authResp(ctx, resp, req, payload, conn)
}

func unlockedIdentity(conn Connection, address string) Identity {
	identity := conn.GetIdentity(domain.NormalizeAddress(address))
	if identity == nil || !identity.IsUnlocked() {
		return nil
	}
	return identity
}

func sendInvalidMessage(conn Connection, req domain.Request, err error) {
	log.WithError(err).Warnf("invalid %s payload", req.Type)
	conn.Send(domain.NewErrorResponse(
		domain.ErrCodeInvalidMessage, "Invalid Message",
	), &req)
}

func denormalizeAttributes(
	attributes []domain.Attribute,
) ([]domain.AttributeInfo, error) {
	infos := make([]domain.AttributeInfo, 0, len(attributes))
	for _, attr := range attributes {
		if attr.Type == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingAttributeType, attr.ID)
		}
		schema, err := attr.Type.Schema()
		if err != nil {
			return nil, fmt.Errorf("invalid schema for %s: %w", attr.Type.URL, err)
		}
		value, err := attr.Value()
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", attr.ID, err)
		}
		value, err = idattribute.Denormalize(schema, value, attr.CodecDocuments())
		if err != nil {
			return nil, fmt.Errorf("failed to denormalize %s: %w", attr.ID, err)
		}

		infos = append(infos, domain.AttributeInfo{
			ID:     attr.ID,
			URL:    attr.Type.URL,
			Name:   attr.Name,
			Value:  value,
			Schema: schema,
		})
	}
	return infos, nil
}

func normalizeAttributes(
	attributes []domain.SignupAttribute,
) ([]ports.RelyingPartyAttribute, error) {
	// Document ids name multipart parts, they must be unique per signup.
	seq := 0
	nextID := func() string {
		seq++
		return strconv.Itoa(seq)
	}

	out := make([]ports.RelyingPartyAttribute, 0, len(attributes))
	for _, attr := range attributes {
		normalized, err := idattribute.NormalizeWithIDs(
			attr.Schema, attr.Value, nextID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize %s: %w", attr.URL, err)
		}

		docs := make([]domain.Document, 0, len(normalized.Documents))
		for _, d := range normalized.Documents {
			doc, err := domain.DocumentFromCodec("", d)
			if err != nil {
				return nil, fmt.Errorf("invalid document for %s: %w", attr.URL, err)
			}
			docs = append(docs, *doc)
		}

		out = append(out, ports.RelyingPartyAttribute{
			ID:        attr.URL,
			Schema:    attr.Schema,
			Data:      normalized.Value,
			Documents: docs,
		})
	}
	return out, nil
}
