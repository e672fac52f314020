package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/mbolis/agriquest/backend"
	"github.com/mbolis/agriquest/log"
)

// ErrorBody is the JSON document sent with every error status.
type ErrorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// WriteError sends status with msg wrapped in an ErrorBody.
func WriteError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorBody{Error: msg})
}

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	WriteError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	WriteError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	WriteError(w, status, http.StatusText(status))
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	WriteError(w, status, errMsg)
}

// LogInvalid answers 400 with the message of a validation failure. Each
// error of a multierror becomes one detail line.
func LogInvalid(w http.ResponseWriter, code string, err error) {
	log.Debugf("%s: %s", code, err)

	body := ErrorBody{Error: err.Error()}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		body.Error = "validation failed"
		for _, e := range merr.Errors {
			body.Details = append(body.Details, e.Error())
		}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(body)
}

// LogBackendError reports a failed backend call. Not found, conflict and bad
// request answers reach the caller as they are; anything else is a bad
// gateway.
func LogBackendError(w http.ResponseWriter, code string, err error) {
	status := backend.StatusOf(err)
	switch status {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict:
		log.Debugf("%s: %s", code, err)
		WriteError(w, status, BackendMessage(err))
	default:
		log.Errorf("%s: %s", code, err)
		WriteError(w, http.StatusBadGateway, "the questionnaire service is not available")
	}
}

// BackendMessage digs the human readable part out of a backend error body.
func BackendMessage(err error) string {
	var se *backend.StatusError
	if !errors.As(err, &se) || se.Body == "" {
		return http.StatusText(backend.StatusOf(err))
	}

	var body map[string]any
	if json.Unmarshal([]byte(se.Body), &body) != nil {
		return se.Body
	}
	for _, key := range []string{"error", "message", "title", "detail"} {
		if msg, ok := body[key].(string); ok && msg != "" {
			return msg
		}
	}
	return http.StatusText(se.Status)
}
