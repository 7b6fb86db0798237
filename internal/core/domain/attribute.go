package domain

import (
	"encoding/base64"
	"encoding/json"

	"github.com/idwallet/lwsd/pkg/idattribute"
)

// AttributeType is the JSON schema that describes one kind of identity
// attribute, identified by its URL.
type AttributeType struct {
	ID      string
	URL     string
	Content json.RawMessage
}

// Validate ...
func (t AttributeType) Validate() error {
	if len(t.URL) <= 0 {
		return ErrInvalidAttributeType
	}
	if _, err := t.Schema(); err != nil {
		return ErrInvalidAttributeType
	}
	return nil
}

// Schema returns the decoded JSON schema of the attribute type.
func (t AttributeType) Schema() (idattribute.Schema, error) {
	var schema idattribute.Schema
	if err := json.Unmarshal(t.Content, &schema); err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, ErrInvalidAttributeType
	}
	return schema, nil
}

// Attribute is an identity attribute value owned by a wallet. Data holds the
// inline part of the value, documents are referenced from it.
type Attribute struct {
	ID        string
	WalletID  string
	TypeURL   string
	Name      string
	Data      json.RawMessage
	Documents []Document
	// Type is populated by repositories when loading attributes.
	Type *AttributeType
}

// Value returns the decoded inline value.
func (a Attribute) Value() (interface{}, error) {
	if len(a.Data) <= 0 {
		return nil, nil
	}
	var value interface{}
	if err := json.Unmarshal(a.Data, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// CodecDocuments returns the attribute documents in their textual form.
func (a Attribute) CodecDocuments() []idattribute.Document {
	docs := make([]idattribute.Document, 0, len(a.Documents))
	for _, d := range a.Documents {
		docs = append(docs, d.ToCodec())
	}
	return docs
}

// Document is a binary file belonging exclusively to one Attribute.
type Document struct {
	ID          string
	AttributeID string
	Name        string
	MimeType    string
	Size        int64
	Buffer      []byte
	// Fields are the file object keys other than content, as submitted.
	Fields map[string]interface{}
}

// ToCodec converts the document to its base64 form.
func (d Document) ToCodec() idattribute.Document {
	return idattribute.Document{
		ID:       d.ID,
		Name:     d.Name,
		MimeType: d.MimeType,
		Size:     d.Size,
		Content:  base64.StdEncoding.EncodeToString(d.Buffer),
		Fields:   d.Fields,
	}
}

// DocumentFromCodec converts a base64 document into its binary form.
func DocumentFromCodec(attributeID string, doc idattribute.Document) (*Document, error) {
	buf, err := base64.StdEncoding.DecodeString(doc.Content)
	if err != nil {
		return nil, err
	}
	size := doc.Size
	if size <= 0 {
		size = int64(len(buf))
	}
	return &Document{
		ID:          doc.ID,
		AttributeID: attributeID,
		Name:        doc.Name,
		MimeType:    doc.MimeType,
		Size:        size,
		Buffer:      buf,
		Fields:      doc.Fields,
	}, nil
}
