// Package http provides the front-end HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ledger/internal/ledger"
)

const maxFormBytes = 1 << 16

var (
	errInvalidID    = errors.New("invalid record id")
	errInvalidDelta = errors.New("invalid month delta")
)

// ParseRecordID reads the {id} path value.
func ParseRecordID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// ParseDelta reads a month offset such as "-1" or "+1".
func ParseDelta(v string) (int, error) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "+")
	d, err := strconv.Atoi(v)
	if err != nil {
		return 0, errInvalidDelta
	}
	return d, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, and reads bodies of DELETE
// requests that http.Request.ParseForm ignores.
type RequestBodyParser struct {
	body     []byte
	query    url.Values
	jsonData map[string]interface{}
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{query: r.URL.Query()}

	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxFormBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the body, falling back to the query string.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
	}
	if p.formData != nil {
		if v := p.formData.Get(key); v != "" {
			return sanitizeInput(v)
		}
	}
	return sanitizeInput(p.query.Get(key))
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ConfirmFrom maps the confirm value sent after the browser's confirmation
// dialog to a Confirmer. Only "yes" confirms.
func ConfirmFrom(value string) ledger.Confirmer {
	return ledger.Answer(strings.EqualFold(strings.TrimSpace(value), "yes"))
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	r.Body = http.MaxBytesReader(nil, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
