package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/imageboard/internal/model"
)

// encodeDocument renders v as the pretty-printed JSON written to every document:
// two-space indent, HTML characters left unescaped, trailing newline.
func encodeDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return buf.Bytes(), nil
}

// clock returns the current time; repositories swap it in tests.
type clock func() time.Time

// usernameOrAnonymous returns name, or the anonymous label when name is blank.
func usernameOrAnonymous(name string) string {
	if strings.TrimSpace(name) == "" {
		return model.AnonymousUsername
	}
	return name
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
