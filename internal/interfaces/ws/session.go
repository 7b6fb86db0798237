package wsinterface

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/thanhpk/randstr"

	"github.com/idwallet/lwsd/internal/core/application"
	"github.com/idwallet/lwsd/internal/core/domain"
)

const invalidMessage = "Invalid Message"

// session is bound 1:1 to a WebSocket connection. It owns the identities
// unlocked through the connection and the counter used to mint message ids.
type session struct {
	tag    string
	conn   *websocket.Conn
	lwsSvc application.LWSService

	identities map[string]application.Identity
	msgID      uint64
	lock       *sync.Mutex
	writeLock  *sync.Mutex
	closed     bool
}

func newSession(
	conn *websocket.Conn, lwsSvc application.LWSService,
) *session {
	return &session{
		tag:        randstr.Hex(8),
		conn:       conn,
		lwsSvc:     lwsSvc,
		identities: make(map[string]application.Identity),
		lock:       &sync.Mutex{},
		writeLock:  &sync.Mutex{},
	}
}

func (s *session) AddIdentity(address string, identity application.Identity) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.identities[domain.NormalizeAddress(address)] = identity
}

func (s *session) GetIdentity(address string) application.Identity {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.identities[domain.NormalizeAddress(address)]
}

// Send completes the envelope of the reply and writes it to the connection.
// Writes on a closed connection are logged and dropped.
func (s *session) Send(resp domain.Response, req *domain.Request) {
	if req == nil {
		req = &domain.Request{}
	}

	if len(resp.Type) <= 0 {
		resp.Type = req.Type
	}
	if len(resp.Meta.ID) <= 0 {
		resp.Meta.ID = req.Meta.ID
	}
	if len(resp.Meta.ID) <= 0 {
		resp.Meta.ID = s.nextID()
	}
	if len(resp.Meta.Src) <= 0 {
		resp.Meta.Src = domain.MessageSource
	}
	if len(resp.Type) <= 0 && resp.Error {
		resp.Type = domain.MessageTypeError
	}

	msg, err := json.Marshal(resp)
	if err != nil {
		s.log().WithError(err).Error("failed to serialize response")
		return
	}

	if err := s.write(msg); err != nil {
		s.log().WithError(err).Error("cannot send message")
		return
	}
	messagesTotal.WithLabelValues(directionOut, typeLabel(resp.Type)).Inc()
	s.log().WithField("type", resp.Type).Debugf("lws resp %s", msg)
}

// Receive parses a raw message and hands it to the router on its own
// goroutine.
func (s *session) Receive(ctx context.Context, raw []byte) {
	var req domain.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		s.log().WithError(err).Warn("failed to parse message")
		messagesTotal.WithLabelValues(directionIn, domain.MessageTypeError).Inc()
		s.Send(domain.NewErrorResponse(
			domain.ErrCodeInvalidMessage, invalidMessage,
		), nil)
		return
	}

	messagesTotal.WithLabelValues(directionIn, typeLabel(req.Type)).Inc()
	s.log().WithField("type", req.Type).Debugf("lws req %s", raw)

	go s.lwsSvc.HandleRequest(ctx, req, s)
}

// listen reads messages until the connection is closed.
func (s *session) listen(ctx context.Context) {
	defer s.close()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err, websocket.CloseGoingAway, websocket.CloseNormalClosure,
			) {
				s.log().WithError(err).Warn("connection dropped unexpectedly")
			}
			return
		}
		s.Receive(ctx, raw)
	}
}

// close closes the connection and drops every cached identity. Handlers
// still running can't write anymore.
func (s *session) close() {
	s.writeLock.Lock()
	if s.closed {
		s.writeLock.Unlock()
		return
	}
	s.closed = true
	if err := s.conn.Close(); err != nil {
		s.log().WithError(err).Debug("failed to close connection")
	}
	s.writeLock.Unlock()

	s.lock.Lock()
	s.identities = make(map[string]application.Identity)
	s.lock.Unlock()

	s.log().Info("ws connection closed")
}

func (s *session) write(msg []byte) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	if s.conn == nil || s.closed {
		return ErrNoConnection
	}
	return s.conn.WriteMessage(websocket.TextMessage, msg)
}

func (s *session) nextID() string {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := fmt.Sprintf("local-%d", s.msgID)
	s.msgID++
	return id
}

func (s *session) log() *log.Entry {
	return log.WithField("session", s.tag)
}
