package idattribute_test

import (
	"encoding/json"
	"testing"

	"github.com/idwallet/lwsd/pkg/idattribute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passportSchema = `{
	"type": "object",
	"properties": {
		"number": {"type": "string"},
		"front": {"type": "object", "format": "file"},
		"pages": {
			"type": "array",
			"items": {"type": "object", "format": "file"}
		}
	}
}`

const passportValue = `{
	"number": "X1234",
	"front": {"name": "front.png", "mimeType": "image/png", "size": 3, "content": "AQID"},
	"pages": [
		{"mimeType": "image/jpeg", "content": "BAUG"},
		{"mimeType": "image/jpeg", "content": "BwgJ"}
	]
}`

func decode(t *testing.T, str string) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(str), &out))
	return out
}

func TestNormalize(t *testing.T) {
	schema := idattribute.Schema(decode(t, passportSchema))
	value := decode(t, passportValue)

	normalized, err := idattribute.Normalize(schema, value)
	require.NoError(t, err)
	require.Len(t, normalized.Documents, 3)

	v := normalized.Value.(map[string]interface{})
	assert.Equal(t, "X1234", v["number"])
	assert.Equal(t, "$document-1", v["front"])
	assert.Equal(t, []interface{}{"$document-2", "$document-3"}, v["pages"])

	front := normalized.Documents[0]
	assert.Equal(t, "1", front.ID)
	assert.Equal(t, "front.png", front.Name)
	assert.Equal(t, "image/png", front.MimeType)
	assert.Equal(t, int64(3), front.Size)
	assert.Equal(t, "AQID", front.Content)

	// the input value is left untouched
	_, isMap := value["front"].(map[string]interface{})
	assert.True(t, isMap)
}

func TestNormalizeDenormalize(t *testing.T) {
	schema := idattribute.Schema(decode(t, passportSchema))
	value := decode(t, passportValue)

	normalized, err := idattribute.Normalize(schema, value)
	require.NoError(t, err)

	denormalized, err := idattribute.Denormalize(
		schema, normalized.Value, normalized.Documents,
	)
	require.NoError(t, err)
	assert.Equal(t, value, denormalized)
}

func TestRoundTrip(t *testing.T) {
	fileSchema := `{"type": "object", "format": "file"}`

	tests := []struct {
		name   string
		schema string
		value  string
	}{
		{"content only", fileSchema, `{"content": "AQID"}`},
		{"extra keys", fileSchema, `{"content": "AQID", "mimeType": "image/png", "lastModified": 1700000000, "tags": ["id"]}`},
		{"zero size", fileSchema, `{"content": "", "size": 0}`},
		{"fractional size", fileSchema, `{"content": "AQID", "size": 2.5}`},
		{"empty mime type", fileSchema, `{"content": "AQID", "mimeType": ""}`},
		{"nested", passportSchema, passportValue},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			schema := idattribute.Schema(decode(t, tt.schema))
			value := decode(t, tt.value)

			normalized, err := idattribute.Normalize(schema, value)
			require.NoError(t, err)

			// documents travel as JSON between normalize and denormalize
			buf, err := json.Marshal(normalized.Documents)
			require.NoError(t, err)
			var docs []idattribute.Document
			require.NoError(t, json.Unmarshal(buf, &docs))

			denormalized, err := idattribute.Denormalize(
				schema, normalized.Value, docs,
			)
			require.NoError(t, err)
			assert.Equal(t, value, denormalized)
		})
	}
}

func TestDenormalizeWithoutFields(t *testing.T) {
	schema := idattribute.Schema(decode(t, `{"type": "object", "format": "file"}`))
	docs := []idattribute.Document{{ID: "1", Content: "AQID"}}

	value, err := idattribute.Denormalize(schema, "$document-1", docs)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"content": "AQID"}, value)

	docs[0].MimeType = "image/png"
	docs[0].Size = 3
	value, err = idattribute.Denormalize(schema, "$document-1", docs)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"content": "AQID", "mimeType": "image/png", "size": float64(3),
	}, value)
}

func TestNormalizeWithIDs(t *testing.T) {
	schema := idattribute.Schema(decode(t, passportSchema))
	ids := []string{"a", "b", "c"}
	i := 0
	nextID := func() string {
		id := ids[i]
		i++
		return id
	}

	normalized, err := idattribute.NormalizeWithIDs(
		schema, decode(t, passportValue), nextID,
	)
	require.NoError(t, err)
	v := normalized.Value.(map[string]interface{})
	assert.Equal(t, "$document-a", v["front"])
	assert.Equal(t, "c", normalized.Documents[2].ID)
}

func TestNormalizeWithoutDocuments(t *testing.T) {
	schema := idattribute.Schema{"type": "string", "format": "email"}

	normalized, err := idattribute.Normalize(schema, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", normalized.Value)
	assert.NotNil(t, normalized.Documents)
	assert.Empty(t, normalized.Documents)

	value, err := idattribute.Denormalize(schema, "alice@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", value)
}

func TestFailingNormalize(t *testing.T) {
	schema := idattribute.Schema(decode(t, passportSchema))

	tests := []struct {
		name  string
		value map[string]interface{}
		err   error
	}{
		{
			name:  "file_not_an_object",
			value: map[string]interface{}{"front": "picture"},
			err:   idattribute.ErrInvalidFile,
		},
		{
			name: "missing_content",
			value: map[string]interface{}{
				"front": map[string]interface{}{"mimeType": "image/png"},
			},
			err: idattribute.ErrInvalidFile,
		},
		{
			name: "content_not_base64",
			value: map[string]interface{}{
				"front": map[string]interface{}{"content": "%%%"},
			},
			err: idattribute.ErrInvalidFileContent,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := idattribute.Normalize(schema, tt.value)
			assert.Equal(t, tt.err, err)
		})
	}
}

func TestFailingDenormalize(t *testing.T) {
	schema := idattribute.Schema(decode(t, passportSchema))
	value := map[string]interface{}{"front": "$document-99"}

	_, err := idattribute.Denormalize(schema, value, nil)
	assert.Equal(t, idattribute.ErrDocumentNotFound, err)
}

func TestParseDocumentRef(t *testing.T) {
	id, ok := idattribute.ParseDocumentRef("$document-7")
	assert.True(t, ok)
	assert.Equal(t, "7", id)

	_, ok = idattribute.ParseDocumentRef("$document-")
	assert.False(t, ok)
	_, ok = idattribute.ParseDocumentRef(7)
	assert.False(t, ok)
}
