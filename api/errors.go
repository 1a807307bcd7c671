package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// HTTPError is returned for every non-2xx response
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	// Body is the decoded JSON body, the raw text when it is not JSON, or nil
	Body any
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: request failed with status code %d", e.Method, e.Path, e.StatusCode)
}

// ResponseBody exposes the body to store.NormalizeError
func (e *HTTPError) ResponseBody() any {
	return e.Body
}

func decodeBody(raw []byte) any {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return text
	}
	return v
}
