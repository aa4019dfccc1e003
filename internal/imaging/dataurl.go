// Package imaging decodes submitted signature payloads and normalizes raster
// image bytes into PNG files the document layout engine can embed.
package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedDataURL reports a signature payload that is not a decodable
// data URL.
var ErrMalformedDataURL = errors.New("malformed data url")

// DecodeDataURL extracts the binary payload of a data URL of the form
// "<descriptor>,<base64 payload>". The value is split on the first comma
// only; everything before it is ignored.
func DecodeDataURL(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	_, payload, found := strings.Cut(raw, ",")
	if !found {
		return nil, fmt.Errorf("%w: missing comma separator", ErrMalformedDataURL)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataURL, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedDataURL)
	}
	return data, nil
}
