package runtime

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Response is the wire-contract response returned by every adapter. The
// production adapter wraps the live upstream body; the deterministic adapter
// wraps an in-memory one. Both expose the same accessors so callers treat
// them uniformly.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// OK reports whether the call succeeded at the transport level.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the response content type, either application/json
// for whole-body calls or text/event-stream for streaming calls.
func (r *Response) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

// DecodeJSON reads the whole body, closes it, and unmarshals into v. Use
// for non-streaming responses only.
func (r *Response) DecodeJSON(v any) error {
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}
	return nil
}

// Text reads the whole body, closes it, and returns the raw text. For a
// streaming response this is the full data:-framed event stream including
// the terminating "data: [DONE]" line.
func (r *Response) Text() (string, error) {
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// StreamResult wraps one streaming data frame or a read error.
type StreamResult struct {
	Data json.RawMessage
	Err  error
}

// Events consumes a text/event-stream body incrementally, emitting one
// result per "data: <json>" frame. The channel is closed by the reader on
// the literal "data: [DONE]" sentinel or end of stream. The body is closed
// when the stream ends.
func (r *Response) Events() <-chan StreamResult {
	out := make(chan StreamResult)
	go r.streamReader(out)
	return out
}

func (r *Response) streamReader(out chan<- StreamResult) {
	defer close(out)
	defer r.Body.Close()

	scanner := bufio.NewScanner(r.Body)
	// Increase buffer size for potentially large chunks
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return
		}

		out <- StreamResult{Data: json.RawMessage(data)}
	}

	if err := scanner.Err(); err != nil {
		out <- StreamResult{Err: fmt.Errorf("stream read error: %w", err)}
	}
}

// Close releases the underlying body without reading it.
func (r *Response) Close() error {
	return r.Body.Close()
}
