package security

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Validation limits for model output. The model is an untrusted producer;
// its text is bounded before any JSON decoding happens.
const (
	DefaultMaxActionSize = 256 << 10 // 256 KiB
	DefaultMaxJSONDepth  = 16
)

// Validation errors.
var (
	ErrActionTooLarge = errors.New("model output exceeds maximum size")
	ErrJSONTooDeep    = errors.New("JSON nesting exceeds maximum depth")
	ErrInvalidJSON    = errors.New("invalid JSON")
)

// ValidateActionSize checks that data does not exceed limit bytes.
// If limit is <= 0, DefaultMaxActionSize is used.
func ValidateActionSize(data []byte, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxActionSize
	}
	if len(data) > limit {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrActionTooLarge, len(data), limit)
	}
	return nil
}

// ValidateJSONDepth checks that the JSON in data does not nest deeper than
// limit levels. This protects the action parser against JSON bombs.
// If limit is <= 0, DefaultMaxJSONDepth is used.
func ValidateJSONDepth(data []byte, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxJSONDepth
	}
	if len(data) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	depth := 0

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
		}

		switch tok {
		case json.Delim('{'), json.Delim('['):
			depth++
			if depth > limit {
				return fmt.Errorf("%w: depth %d (max %d)", ErrJSONTooDeep, depth, limit)
			}
		case json.Delim('}'), json.Delim(']'):
			depth--
		}
	}
}
