// Package wsinterface exposes the LWS application service over a local
// WebSocket listener.
package wsinterface

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/netutil"
	"golang.org/x/time/rate"

	"github.com/idwallet/lwsd/internal/core/application"
	interfaces "github.com/idwallet/lwsd/internal/interfaces"
)

const (
	defaultHost              = "127.0.0.1"
	defaultPortRetryInterval = time.Second
	readBufferSize           = 1024
	writeBufferSize          = 1024
)

type ServiceOpts struct {
	Host              string
	Port              int
	PortRetryInterval time.Duration

	IPWhitelist     []string
	OriginWhitelist []string

	// MaxConnections caps the number of simultaneously open connections if
	// greater than zero.
	MaxConnections int
	// AcceptRate limits the number of handshakes per second if greater than
	// zero.
	AcceptRate  float64
	AcceptBurst int

	TLSKey  string
	TLSCert string

	LWSSvc application.LWSService
}

func (o ServiceOpts) validate() error {
	if o.LWSSvc == nil {
		return ErrMissingLWSService
	}
	if o.Port < 0 || o.Port > 65535 {
		return ErrInvalidPort
	}
	if (o.TLSKey == "") != (o.TLSCert == "") {
		return ErrInvalidTLSConfig
	}
	return nil
}

func (o ServiceOpts) host() string {
	if len(o.Host) <= 0 {
		return defaultHost
	}
	return o.Host
}

func (o ServiceOpts) portRetryInterval() time.Duration {
	if o.PortRetryInterval <= 0 {
		return defaultPortRetryInterval
	}
	return o.PortRetryInterval
}

type service struct {
	opts     ServiceOpts
	verifier *ClientVerifier
	limiter  *rate.Limiter
	upgrader websocket.Upgrader

	server   *http.Server
	address  string
	sessions map[*session]struct{}
	lock     *sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
}

func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %w", err)
	}

	var limiter *rate.Limiter
	if opts.AcceptRate > 0 {
		burst := opts.AcceptBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.AcceptRate), burst)
	}

	ctx, cancel := context.WithCancel(context.Background())
	svc := &service{
		opts:     opts,
		verifier: NewClientVerifier(opts.IPWhitelist, opts.OriginWhitelist),
		limiter:  limiter,
		sessions: make(map[*session]struct{}),
		lock:     &sync.Mutex{},
		ctx:      ctx,
		cancel:   cancel,
	}
	svc.upgrader = websocket.Upgrader{
		ReadBufferSize:  readBufferSize,
		WriteBufferSize: writeBufferSize,
		// Origin is already checked against the whitelist.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	return svc, nil
}

// Start binds the listener and serves connections in background. If the
// port is in use, the next one is tried after the retry interval until one
// is available or the service is stopped.
func (s *service) Start() error {
	lis, err := s.listen()
	if err != nil {
		return err
	}

	if s.opts.MaxConnections > 0 {
		lis = netutil.LimitListener(lis, s.opts.MaxConnections)
	}

	if s.opts.TLSKey != "" {
		certificate, err := tls.LoadX509KeyPair(s.opts.TLSCert, s.opts.TLSKey)
		if err != nil {
			lis.Close()
			return err
		}
		config := &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{certificate},
		}
		config.Rand = rand.Reader

		lis = tls.NewListener(lis, config)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleConn)
	server := &http.Server{Handler: mux}

	s.lock.Lock()
	s.server = server
	s.address = lis.Addr().String()
	s.lock.Unlock()

	go func() {
		if err := server.Serve(lis); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("ws server stopped unexpectedly")
		}
	}()

	log.Infof("ws interface listening on %s", s.address)
	return nil
}

func (s *service) Stop() {
	s.cancel()

	s.lock.Lock()
	server := s.server
	sessions := make([]*session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.lock.Unlock()

	if server != nil {
		if err := server.Close(); err != nil {
			log.WithError(err).Warn("failed to close ws server")
		}
	}
	for _, sess := range sessions {
		sess.close()
	}

	log.Debug("disabled ws interface")
}

func (s *service) Address() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.address
}

func (s *service) listen() (net.Listener, error) {
	port := s.opts.Port
	for {
		address := net.JoinHostPort(s.opts.host(), strconv.Itoa(port))
		lis, err := net.Listen("tcp", address)
		if err == nil {
			return lis, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, err
		}

		interval := s.opts.portRetryInterval()
		log.Warnf(
			"address %s already in use, retrying on port %d in %s",
			address, port+1, interval,
		)
		port++

		select {
		case <-s.ctx.Done():
			return nil, ErrServiceStopped
		case <-time.After(interval):
		}
	}
}

func (s *service) handleConn(w http.ResponseWriter, r *http.Request) {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}
	origin := r.Header.Get("Origin")
	logger := log.WithFields(log.Fields{"ip": remoteIP, "origin": origin})

	if s.limiter != nil && !s.limiter.Allow() {
		logger.Warn("rate limiting ws connection")
		connectionsTotal.WithLabelValues(outcomeRateLimited).Inc()
		http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		return
	}

	if !s.verifier.VerifyClient(remoteIP, origin) {
		logger.Info("rejecting ws connection")
		connectionsTotal.WithLabelValues(outcomeRejected).Inc()
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithError(err).Warn("failed to upgrade ws connection")
		return
	}
	logger.Info("accepting ws connection")
	connectionsTotal.WithLabelValues(outcomeAccepted).Inc()

	sess := newSession(conn, s.opts.LWSSvc)
	if !s.addSession(sess) {
		sess.close()
		return
	}
	openSessions.Inc()

	go func() {
		defer func() {
			s.removeSession(sess)
			openSessions.Dec()
		}()
		sess.listen(s.ctx)
	}()
}

func (s *service) addSession(sess *session) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.ctx.Err() != nil {
		return false
	}
	s.sessions[sess] = struct{}{}
	return true
}

func (s *service) removeSession(sess *session) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.sessions, sess)
}
