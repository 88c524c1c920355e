package errors

import (
	"net/http"
	"strings"

	"github.com/serveease/admin/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// ErrorLogger logs handler failures with request context and answers the
// client: a friendly page for browsers, plain text for HTMX and API calls.
type ErrorLogger struct {
	Log  *zap.Logger
	Site *viewdata.Site
}

// NewErrorLogger builds an ErrorLogger. site may be nil, in which case every
// client gets the plain-text answer.
func NewErrorLogger(logger *zap.Logger, site *viewdata.Site) *ErrorLogger {
	return &ErrorLogger{Log: logger, Site: site}
}

// LogServerError logs err at error level and answers 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Error(msg, e.fields(r, err)...)
	e.respond(w, r, http.StatusInternalServerError, "error.server.title", userMsg)
}

// LogBadRequest logs err at warn level and answers 400.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg string) {
	e.Log.Warn(msg, e.fields(r, err)...)
	e.respond(w, r, http.StatusBadRequest, "error.badrequest.title", userMsg)
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
}

func (e *ErrorLogger) respond(w http.ResponseWriter, r *http.Request, status int, titleKey, userMsg string) {
	if e.Site == nil || r.Header.Get("HX-Request") == "true" || !strings.Contains(r.Header.Get("Accept"), "text/html") {
		if userMsg == "" {
			userMsg = http.StatusText(status)
		}
		http.Error(w, userMsg, status)
		return
	}
	renderPage(w, r, e.Site, status, titleKey, "error.server.message", userMsg)
}
