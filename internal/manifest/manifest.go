// Package manifest reads and rewrites the top-level version field of JSON
// project documents such as package.json and tauri.conf.json.
//
// Edits are applied to the raw document bytes, so members other than the
// version keep their order and literal text. Only indentation is
// normalized when the document is serialized.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	jsoniter "github.com/json-iterator/go"
)

// VersionKey is the top-level member holding the version string.
const VersionKey = "version"

// Indent is the per-level indentation used by Marshal.
const Indent = "  "

// Sentinel errors for document operations.
var (
	ErrMalformed   = errors.New("malformed JSON document")
	ErrNotObject   = errors.New("document is not a JSON object")
	ErrNoVersion   = errors.New("document has no version field")
	ErrVersionType = errors.New("version field is not a string")
	ErrDuplicate   = errors.New("version field appears more than once")
)

// encoder writes JSON strings without HTML escaping, so versions like
// "1.0.0+<build>" survive verbatim.
var encoder = jsoniter.Config{EscapeHTML: false}.Froze()

// Document is a parsed JSON object.
type Document struct {
	raw             []byte
	trailingNewline bool
}

// Parse validates data as a JSON object and returns a Document for it.
func Parse(data []byte) (*Document, error) {
	if !json.Valid(data) {
		return nil, ErrMalformed
	}

	_, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if dataType != jsonparser.Object {
		return nil, fmt.Errorf("%w: top-level value is %s", ErrNotObject, dataType)
	}

	// JSON parsers disagree on which duplicate wins, so a document with
	// two versions has no single version to compare or replace.
	seen := 0
	err = jsonparser.ObjectEach(data, func(key, _ []byte, _ jsonparser.ValueType, _ int) error {
		if string(key) == VersionKey {
			seen++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if seen > 1 {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, ErrDuplicate)
	}

	raw := make([]byte, len(data))
	copy(raw, data)

	return &Document{
		raw:             raw,
		trailingNewline: bytes.HasSuffix(data, []byte("\n")),
	}, nil
}

// Version returns the decoded top-level version string.
// Returns ErrNoVersion if the member is absent and ErrVersionType if it
// holds anything other than a string.
func (d *Document) Version() (string, error) {
	value, dataType, _, err := jsonparser.Get(d.raw, VersionKey)
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return "", ErrNoVersion
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if dataType != jsonparser.String {
		return "", fmt.Errorf("%w: found %s", ErrVersionType, dataType)
	}

	version, err := jsonparser.ParseString(value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return version, nil
}

// SetVersion replaces the top-level version value, or appends it as the
// last member if it is absent.
func (d *Document) SetVersion(version string) error {
	encoded, err := encoder.Marshal(version)
	if err != nil {
		return fmt.Errorf("encode version: %w", err)
	}

	// jsonparser.Set may append into the input's backing array.
	src := make([]byte, len(d.raw))
	copy(src, d.raw)

	updated, err := jsonparser.Set(src, encoded, VersionKey)
	if err != nil {
		return fmt.Errorf("set version: %w", err)
	}
	if !json.Valid(updated) {
		return fmt.Errorf("set version: %w", ErrMalformed)
	}

	d.raw = updated
	return nil
}

// Marshal returns the document indented with Indent per level.
// A trailing newline is written if the parsed source ended with one.
func (d *Document) Marshal() ([]byte, error) {
	var out bytes.Buffer
	if err := json.Indent(&out, bytes.TrimSpace(d.raw), "", Indent); err != nil {
		return nil, fmt.Errorf("indent document: %w", err)
	}
	if d.trailingNewline {
		out.WriteByte('\n')
	}
	return out.Bytes(), nil
}
