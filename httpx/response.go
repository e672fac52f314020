package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mbolis/agriquest/log"
)

// ResponseBuffer holds a response in memory so a handler's answer can be
// inspected before it is sent, as when relaying the token endpoint.
type ResponseBuffer interface {
	http.ResponseWriter
	Status() int
	Body() []byte
	Flush(w http.ResponseWriter) error
	Relay(w http.ResponseWriter, code string) error
}

type responseBuffer struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func NewResponseBuffer() ResponseBuffer {
	return &responseBuffer{}
}

// Status is the recorded status; a handler that never called WriteHeader
// counts as 200.
func (resp *responseBuffer) Status() int {
	if resp.status == 0 {
		return http.StatusOK
	}
	return resp.status
}

func (resp *responseBuffer) Header() http.Header {
	if resp.header == nil {
		resp.header = http.Header{}
	}
	return resp.header
}

func (resp *responseBuffer) Body() []byte {
	return resp.body.Bytes()
}

func (resp *responseBuffer) Write(body []byte) (int, error) {
	return resp.body.Write(body)
}

func (resp *responseBuffer) WriteHeader(statusCode int) {
	if resp.status == 0 {
		resp.status = statusCode
	}
}

func (resp *responseBuffer) Flush(w http.ResponseWriter) error {
	header := w.Header()
	for key, value := range resp.header {
		header[key] = value
	}
	w.WriteHeader(resp.Status())
	_, err := w.Write(resp.body.Bytes())
	return err
}

// Relay sends a successful response as recorded. A failed one is logged under
// code and rewritten as an ErrorBody.
func (resp *responseBuffer) Relay(w http.ResponseWriter, code string) error {
	status := resp.Status()
	if status < http.StatusBadRequest {
		return resp.Flush(w)
	}

	msg := bufferedMessage(resp.body.Bytes())
	if msg == "" {
		msg = http.StatusText(status)
	}
	log.Debugf("%s: %d %s", code, status, msg)
	WriteError(w, status, msg)
	return nil
}

// bufferedMessage reads a message written either as a bare JSON string, as a
// JSON object with an error field, or as plain text.
func bufferedMessage(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ""
	}

	var msg string
	if json.Unmarshal(data, &msg) == nil {
		return msg
	}
	var body struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if json.Unmarshal(data, &body) == nil {
		if body.Description != "" {
			return body.Description
		}
		return body.Error
	}
	return strings.TrimSpace(string(data))
}
