package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// MaxJSONSize bounds request bodies at 1MB. The API's payloads are a few
// hundred bytes at most.
const MaxJSONSize = 1 << 20

// JSON decodes the request body into v. Unknown fields are rejected so a
// renamed client field fails loudly instead of silently binding nothing.
func JSON(r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return fmt.Errorf("%w: got %q, expected application/json", ErrUnsupportedMediaType, ct)
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxJSONSize+1))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToParseJSON, err)
	}
	if len(body) > MaxJSONSize {
		return ErrBodyTooLarge
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
		}
		return fmt.Errorf("%w: %w", ErrFailedToParseJSON, err)
	}
	return nil
}
