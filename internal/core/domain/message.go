package domain

import (
	"encoding/json"
	"strings"
)

const (
	// MessageSource identifies this service in the meta of every reply.
	MessageSource = "idw"
	// ProtocolVersion is the version of the wire protocol spoken by the
	// service.
	ProtocolVersion = "2"

	MessageTypeWallets    = "wallets"
	MessageTypeUnlock     = "unlock"
	MessageTypeAttributes = "attributes"
	MessageTypeAuth       = "auth"
	MessageTypeSignup     = "signup"
	MessageTypeVersion    = "version"
	MessageTypeError      = "error"

	ErrCodeInvalidMessage   = "invalid_message"
	ErrCodeNotAuthorized    = "not_authorized"
	ErrCodeAttributes       = "attributes_error"
	ErrCodeSessionEstablish = "session_establish"
	ErrCodeToken            = "token_error"
	ErrCodeUserCreate       = "user_create_error"

	// UnknownRequestMessage is the reply message for unsupported types.
	UnknownRequestMessage = "unknown request"
)

// Meta correlates a reply with its request.
type Meta struct {
	ID  string `json:"id,omitempty"`
	Src string `json:"src,omitempty"`
}

// Request is an inbound message. Its payload is decoded by the handler
// selected by Type.
type Request struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Meta    Meta            `json:"meta"`
}

// DecodePayload decodes the request payload into v.
func (r Request) DecodePayload(v interface{}) error {
	if len(r.Payload) <= 0 {
		return nil
	}
	return json.Unmarshal(r.Payload, v)
}

// Response is an outbound message.
type Response struct {
	Type    string      `json:"type,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
	Meta    Meta        `json:"meta"`
	Error   bool        `json:"error,omitempty"`
}

// ErrorPayload is the payload of every error reply.
type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// NewErrorResponse returns an error reply with the given code and message.
func NewErrorResponse(code, message string) Response {
	return Response{
		Error:   true,
		Payload: ErrorPayload{Code: code, Message: message},
	}
}

// ErrorPayload returns the error code and message of an error reply, if
// any.
func (r Response) ErrorPayload() (ErrorPayload, bool) {
	switch p := r.Payload.(type) {
	case ErrorPayload:
		return p, true
	case *ErrorPayload:
		if p != nil {
			return *p, true
		}
	}
	return ErrorPayload{}, false
}

// Website identifies the relying party a request is made on behalf of.
type Website struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// RelyingPartyConfig is the relying party configuration sent by the browser
// extension along with every request.
type RelyingPartyConfig struct {
	Website      Website           `json:"website"`
	RootEndpoint string            `json:"rootEndpoint"`
	Endpoints    map[string]string `json:"endpoints,omitempty"`
}

// WalletsRequest is the payload of a wallets request.
type WalletsRequest struct {
	Config RelyingPartyConfig `json:"config"`
}

// UnlockRequest is the payload of an unlock request.
type UnlockRequest struct {
	Address  string             `json:"address"`
	Password string             `json:"password"`
	Config   RelyingPartyConfig `json:"config"`
}

// RequestedAttribute is an attribute type URL. On the wire it is either a
// plain string or an object with an id (or attribute) field.
type RequestedAttribute string

func (r *RequestedAttribute) UnmarshalJSON(data []byte) error {
	var url string
	if err := json.Unmarshal(data, &url); err == nil {
		*r = RequestedAttribute(url)
		return nil
	}

	var obj struct {
		ID        string `json:"id"`
		Attribute string `json:"attribute"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if len(obj.ID) > 0 {
		*r = RequestedAttribute(obj.ID)
	} else {
		*r = RequestedAttribute(obj.Attribute)
	}
	return nil
}

// AttributesRequest is the payload of an attributes request.
type AttributesRequest struct {
	Address               string               `json:"address"`
	RequestedAttributeIDs []string             `json:"requestedAttributeIds,omitempty"`
	RequestedAttributes   []RequestedAttribute `json:"requestedAttributes,omitempty"`
}

// AttributeURLs returns the de-duplicated list of requested type URLs.
func (r AttributesRequest) AttributeURLs() []string {
	seen := make(map[string]bool)
	urls := make([]string, 0, len(r.RequestedAttributeIDs)+len(r.RequestedAttributes))
	add := func(url string) {
		url = strings.TrimSpace(url)
		if len(url) <= 0 || seen[url] {
			return
		}
		seen[url] = true
		urls = append(urls, url)
	}
	for _, url := range r.RequestedAttributeIDs {
		add(url)
	}
	for _, url := range r.RequestedAttributes {
		add(string(url))
	}
	return urls
}

// SignupAttribute is an attribute value submitted for a relying party signup.
type SignupAttribute struct {
	URL    string                 `json:"url"`
	Schema map[string]interface{} `json:"schema"`
	Value  interface{}            `json:"value"`
}

// RelyingPartyRequest is the payload of both auth and signup requests. A
// non empty list of attributes makes it a signup.
type RelyingPartyRequest struct {
	Address    string             `json:"address"`
	Config     RelyingPartyConfig `json:"config"`
	Attributes []SignupAttribute  `json:"attributes,omitempty"`
	// Signup is set by the signup handler, it is not part of the payload.
	Signup bool `json:"-"`
}

// IsSignup ...
func (r RelyingPartyRequest) IsSignup() bool {
	return r.Signup || len(r.Attributes) > 0
}

// WalletInfo is one entry of the wallets reply.
type WalletInfo struct {
	Address  string `json:"address"`
	Name     string `json:"name,omitempty"`
	Profile  string `json:"profile"`
	Unlocked bool   `json:"unlocked"`
	SignedUp bool   `json:"signedUp"`
}

// UnlockReply is the payload of the unlock reply.
type UnlockReply struct {
	Address  string `json:"address"`
	Profile  string `json:"profile,omitempty"`
	Unlocked bool   `json:"unlocked"`
	SignedUp bool   `json:"signedUp"`
}

// AttributeInfo is one entry of the attributes reply.
type AttributeInfo struct {
	ID     string      `json:"id"`
	URL    string      `json:"url"`
	Name   string      `json:"name"`
	Value  interface{} `json:"value"`
	Schema interface{} `json:"schema"`
}

// AttributesReply is the payload of the attributes reply.
type AttributesReply struct {
	Address    string          `json:"address"`
	Attributes []AttributeInfo `json:"attributes"`
}

// VersionReply is the payload of the version reply.
type VersionReply struct {
	Version  string `json:"version"`
	Protocol string `json:"protocol"`
}
