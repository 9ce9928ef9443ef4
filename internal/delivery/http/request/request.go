package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB

	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ErrBodyTooLarge is returned when a request body exceeds the size limit
var ErrBodyTooLarge = errors.New("request body too large")

// DecodeJSON decodes the JSON request body into v. Bodies over the size limit
// fail with ErrBodyTooLarge and an empty body is an error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return decode(w, r, v, false)
}

// DecodeOptionalJSON is DecodeJSON for endpoints whose fields are all optional:
// an empty body leaves v untouched.
func DecodeOptionalJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return decode(w, r, v, true)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}, allowEmpty bool) error {
	defer r.Body.Close()

	body := http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	err := json.NewDecoder(body).Decode(v)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &tooLarge):
		return ErrBodyTooLarge
	case errors.Is(err, io.EOF) && allowEmpty:
		return nil
	}
	return fmt.Errorf("failed to decode JSON: %w", err)
}

// StringOrNumber returns the text of a JSON field that clients may send either as a
// number or as a string. Missing and null fields give "".
func StringOrNumber(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return text
}

// GetUUIDParam extracts a UUID parameter from the URL
func GetUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	param := chi.URLParam(r, key)
	if param == "" {
		return uuid.Nil, fmt.Errorf("missing parameter: %s", key)
	}

	id, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid UUID: %w", err)
	}

	return id, nil
}

// GetIntQuery returns the integer query parameter key, or defaultValue when it is
// missing or not a number
func GetIntQuery(r *http.Request, key string, defaultValue int) int {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// GetPaginationParams reads limit and offset. Out of range values fall back to the defaults.
func GetPaginationParams(r *http.Request) (limit, offset int) {
	limit = GetIntQuery(r, "limit", defaultPageLimit)
	offset = GetIntQuery(r, "offset", 0)

	if limit <= 0 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
