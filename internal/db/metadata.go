package db

import (
	"bytes"
	sqldriver "database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Metadata is the free-form JSON object attached to every entity. It holds
// the caller's bytes unchanged; an empty value is stored as "{}".
type Metadata []byte

const emptyMetadata = "{}"

var errMetadataNotObject = errors.New("metadata must be a JSON object")

// EmptyMetadata returns the stored form of "no metadata".
func EmptyMetadata() Metadata {
	return Metadata(emptyMetadata)
}

// NewMetadata encodes v as a metadata document. v must encode to an object.
func NewMetadata(v any) (Metadata, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	m := Metadata(bytes.TrimRight(buf.Bytes(), "\n"))
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that the document is a JSON object. Empty is valid.
func (m Metadata) Validate() error {
	if len(m) == 0 {
		return nil
	}
	if !json.Valid(m) {
		return errors.New("metadata is not valid JSON")
	}
	if !gjson.ParseBytes(m).IsObject() {
		return errMetadataNotObject
	}
	return nil
}

// orEmpty returns m, or "{}" when m is empty.
func (m Metadata) orEmpty() Metadata {
	if len(m) == 0 {
		return EmptyMetadata()
	}
	return m
}

// Decode unmarshals the document into a map, keeping numbers as json.Number.
func (m Metadata) Decode() (map[string]any, error) {
	out := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(m.orEmpty()))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return out, nil
}

// MarshalJSON writes the stored bytes.
func (m Metadata) MarshalJSON() ([]byte, error) {
	return m.orEmpty(), nil
}

// UnmarshalJSON keeps a copy of the raw object. null means no metadata.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	raw := Metadata(bytes.Clone(data))
	if err := raw.Validate(); err != nil {
		return err
	}
	*m = raw
	return nil
}

// MarshalYAML renders the document in block style without going through
// float64, so large integers print exactly.
func (m Metadata) MarshalYAML() (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(m.orEmpty(), &doc); err != nil {
		return nil, fmt.Errorf("render metadata: %w", err)
	}
	if len(doc.Content) == 0 {
		return map[string]any{}, nil
	}
	root := doc.Content[0]
	blockStyle(root)
	return root, nil
}

// blockStyle drops the flow and quoting styles the JSON source implies;
// the encoder still quotes strings that would otherwise read as another type.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// Value implements driver.Valuer.
func (m Metadata) Value() (sqldriver.Value, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return string(m.orEmpty()), nil
}

// Scan implements sql.Scanner. NULL and empty columns scan as "{}".
func (m *Metadata) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = EmptyMetadata()
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = bytes.Clone(v)
	default:
		return fmt.Errorf("scan metadata: unsupported type %T", src)
	}
	if len(data) == 0 {
		*m = EmptyMetadata()
		return nil
	}
	if !json.Valid(data) {
		return errors.New("scan metadata: column is not valid JSON")
	}
	*m = Metadata(data)
	return nil
}

// Lookup resolves a gjson path ("shot.camera", "tags.0") inside the document.
func (m Metadata) Lookup(path string) gjson.Result {
	return gjson.GetBytes(m.orEmpty(), path)
}

// Matches reports whether every path in criteria resolves to a value whose
// string form equals the expected one. An empty criteria set matches all.
func (m Metadata) Matches(criteria map[string]string) bool {
	for path, want := range criteria {
		got := m.Lookup(path)
		if !got.Exists() || got.String() != want {
			return false
		}
	}
	return true
}
