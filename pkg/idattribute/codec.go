// Package idattribute converts identity attribute values between their
// logical form, where documents (files, images) are inlined as base64 file
// objects, and their normalized storage form, where every document is
// replaced by a "$document-<id>" reference and carried in a separate list.
//
// A schema position holds a document when it declares "format": "file".
// Objects are walked through "properties" and arrays through "items"; every
// other position is treated as an inline value and left untouched.
package idattribute

import (
	"encoding/base64"
	"strconv"
	"strings"
)

const (
	documentRefPrefix = "$document-"
	fileFormat        = "file"
	maxDepth          = 10
)

// Schema is a JSON schema describing the shape of an attribute value.
type Schema map[string]interface{}

// Document is the textual form of a document attached to an attribute.
// Content is always base64 encoded.
type Document struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size,omitempty"`
	Content  string `json:"content"`
	// Fields holds the file object as given, content excluded. When set it
	// is what Denormalize emits back, so unknown keys survive a round trip.
	Fields map[string]interface{} `json:"fields,omitempty"`
}

// Normalized is the storage split of a logical attribute value.
type Normalized struct {
	Value     interface{}
	Documents []Document
}

// DocumentRef returns the inline reference for the document with given id.
func DocumentRef(id string) string {
	return documentRefPrefix + id
}

// ParseDocumentRef returns the id of the referenced document if v is a
// document reference.
func ParseDocumentRef(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, documentRefPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(s, documentRefPrefix)
	return id, id != ""
}

// Normalize splits value into its inline part and the list of documents
// found at file positions of schema. Document ids are assigned sequentially
// starting from "1".
func Normalize(schema Schema, value interface{}) (*Normalized, error) {
	n := &normalizer{}
	return n.normalize(schema, value)
}

// NormalizeWithIDs is like Normalize but lets the caller assign document ids.
func NormalizeWithIDs(
	schema Schema, value interface{}, nextID func() string,
) (*Normalized, error) {
	n := &normalizer{nextID: nextID}
	return n.normalize(schema, value)
}

// Denormalize merges documents back into value at the file positions of
// schema, returning the logical value.
func Denormalize(
	schema Schema, value interface{}, documents []Document,
) (interface{}, error) {
	docsByID := make(map[string]Document, len(documents))
	for _, d := range documents {
		docsByID[d.ID] = d
	}
	d := &denormalizer{docsByID}
	return d.walk(schema, value, 0)
}

type normalizer struct {
	docs   []Document
	seq    int
	nextID func() string
}

func (n *normalizer) normalize(
	schema Schema, value interface{},
) (*Normalized, error) {
	v, err := n.walk(schema, value, 0)
	if err != nil {
		return nil, err
	}
	docs := n.docs
	if docs == nil {
		docs = []Document{}
	}
	return &Normalized{Value: v, Documents: docs}, nil
}

func (n *normalizer) id() string {
	if n.nextID != nil {
		return n.nextID()
	}
	n.seq++
	return strconv.Itoa(n.seq)
}

func (n *normalizer) walk(
	schema Schema, value interface{}, depth int,
) (interface{}, error) {
	if depth > maxDepth {
		return nil, ErrMaxDepthExceeded
	}
	if value == nil || schema == nil {
		return value, nil
	}

	if isFileSchema(schema) {
		if _, ok := ParseDocumentRef(value); ok {
			return value, nil
		}
		doc, err := fileToDocument(value)
		if err != nil {
			return nil, err
		}
		doc.ID = n.id()
		n.docs = append(n.docs, *doc)
		return DocumentRef(doc.ID), nil
	}

	return walkContainer(schema, value, depth, n.walk)
}

type denormalizer struct {
	docsByID map[string]Document
}

func (d *denormalizer) walk(
	schema Schema, value interface{}, depth int,
) (interface{}, error) {
	if depth > maxDepth {
		return nil, ErrMaxDepthExceeded
	}
	if value == nil || schema == nil {
		return value, nil
	}

	if isFileSchema(schema) {
		id, ok := ParseDocumentRef(value)
		if !ok {
			return value, nil
		}
		doc, ok := d.docsByID[id]
		if !ok {
			return nil, ErrDocumentNotFound
		}
		return documentToFile(doc), nil
	}

	return walkContainer(schema, value, depth, d.walk)
}

type walkFn func(schema Schema, value interface{}, depth int) (interface{}, error)

// walkContainer descends into objects and arrays, copying them so that the
// caller's value is never mutated.
func walkContainer(
	schema Schema, value interface{}, depth int, walk walkFn,
) (interface{}, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		props, _ := asSchema(schema["properties"])
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			propSchema, ok := asSchema(props[key])
			if !ok {
				out[key] = val
				continue
			}
			res, err := walk(propSchema, val, depth+1)
			if err != nil {
				return nil, err
			}
			out[key] = res
		}
		return out, nil
	case []interface{}:
		items, ok := asSchema(schema["items"])
		if !ok {
			return v, nil
		}
		out := make([]interface{}, 0, len(v))
		for _, val := range v {
			res, err := walk(items, val, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, res)
		}
		return out, nil
	default:
		return value, nil
	}
}

func isFileSchema(schema Schema) bool {
	format, _ := schema["format"].(string)
	return format == fileFormat
}

func asSchema(v interface{}) (Schema, bool) {
	switch s := v.(type) {
	case Schema:
		return s, true
	case map[string]interface{}:
		return Schema(s), true
	default:
		return nil, false
	}
}

func fileToDocument(value interface{}) (*Document, error) {
	file, ok := value.(map[string]interface{})
	if !ok {
		return nil, ErrInvalidFile
	}
	content, ok := file["content"].(string)
	if !ok {
		return nil, ErrInvalidFile
	}
	if _, err := base64.StdEncoding.DecodeString(content); err != nil {
		return nil, ErrInvalidFileContent
	}
	mimeType, _ := file["mimeType"].(string)
	name, _ := file["name"].(string)

	var size int64
	switch s := file["size"].(type) {
	case float64:
		size = int64(s)
	case int:
		size = int64(s)
	case int64:
		size = s
	}

	fields := make(map[string]interface{}, len(file)-1)
	for k, v := range file {
		if k != "content" {
			fields[k] = v
		}
	}

	return &Document{
		Name:     name,
		MimeType: mimeType,
		Size:     size,
		Content:  content,
		Fields:   fields,
	}, nil
}

func documentToFile(doc Document) map[string]interface{} {
	if doc.Fields != nil {
		file := make(map[string]interface{}, len(doc.Fields)+1)
		for k, v := range doc.Fields {
			file[k] = v
		}
		file["content"] = doc.Content
		return file
	}

	file := map[string]interface{}{"content": doc.Content}
	if doc.MimeType != "" {
		file["mimeType"] = doc.MimeType
	}
	if doc.Name != "" {
		file["name"] = doc.Name
	}
	if doc.Size > 0 {
		file["size"] = float64(doc.Size)
	}
	return file
}
