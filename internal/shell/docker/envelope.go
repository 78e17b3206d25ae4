package docker

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// =============================================================================
// HTTP Envelope
// =============================================================================

var statusLinePattern = regexp.MustCompile(`^HTTP/[0-9.]+ ([0-9]{3})`)

// Envelope is the decoded response: status code, the headers of interest and
// the JSON payload line. Created once per request and discarded after the
// caller extracts what it needs.
type Envelope struct {
	StatusCode  int
	ContentType string
	APIVersion  string
	Payload     json.RawMessage
}

// ParseEnvelope decodes the raw buffer accumulated by the transport. Lines
// that are empty or hold only "0" are artifacts of the daemon's minimal
// framing and dropped before scanning; the last remaining line is the JSON
// payload.
func ParseEnvelope(endpoint string, raw []byte) (Envelope, error) {
	var lines []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || line == "0" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return Envelope{}, &ProtocolError{Endpoint: endpoint, Reason: "empty response"}
	}

	var env Envelope
	for _, line := range lines {
		if m := statusLinePattern.FindStringSubmatch(line); m != nil {
			env.StatusCode, _ = strconv.Atoi(m[1])
			continue
		}
		if v, ok := headerValue(line, "Content-Type"); ok {
			env.ContentType = v
		}
		if v, ok := headerValue(line, "Api-Version"); ok {
			env.APIVersion = v
		}
	}
	if env.StatusCode == 0 {
		return Envelope{}, &ProtocolError{Endpoint: endpoint, Reason: "no HTTP status line in response"}
	}

	payload := lines[len(lines)-1]
	if !json.Valid([]byte(payload)) {
		return Envelope{}, &ProtocolError{
			Endpoint: endpoint,
			Reason:   fmt.Sprintf("payload line is not valid JSON: %.60q", payload),
		}
	}
	env.Payload = json.RawMessage(payload)

	return env, nil
}

// headerValue matches a header line against name, case-insensitively;
// last-seen wins at the call site.
func headerValue(line, name string) (string, bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 || !strings.EqualFold(line[:i], name) {
		return "", false
	}
	return strings.TrimSpace(line[i+1:]), true
}

// ResponseComplete reports whether buf already contains a whole response:
// past the header/body boundary there must be a line holding a syntactically
// valid JSON value. Shared by the transport read loop, because a zero-byte
// read does not by itself imply end-of-stream on this socket — this predicate
// is what actually ends the read.
func ResponseComplete(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}

	lines := strings.Split(string(buf), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], "\r")
	}

	// The first blank line separates headers from body.
	body := -1
	for i, line := range lines {
		if line == "" {
			body = i + 1
			break
		}
	}
	if body < 0 {
		return false
	}

	// Find the payload line; chunk-size lines precede it under chunked
	// framing and are skipped.
	for _, line := range lines[body:] {
		if strings.HasPrefix(line, "{") || strings.HasPrefix(line, "[") {
			return json.Valid([]byte(line))
		}
	}
	return false
}
