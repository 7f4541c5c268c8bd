package web

// errors.go turns failures that happen outside the list orchestrator
// (bad ids, unreadable bodies, reset, audit queries) into responses.
//
// The technical error is logged with the request id; the client gets the
// mapped message, action and support code, as HTML or JSON depending on
// the request.

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/trainer/internal/core"
	"github.com/JonMunkholm/trainer/internal/logging"
	"github.com/JonMunkholm/trainer/internal/web/templates"
)

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if wantsJSON(r) {
		writeJSON(w, status, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
		return
	}
	s.render(w, r, status, templates.ErrorPage("Something went wrong", msg.Message, msg.Action, msg.Code))
}

// respondBanner reports an orchestrator failure over JSON. Its banner is
// already user-facing so it is returned as is.
func respondBanner(w http.ResponseWriter, status int, banner, code string) {
	writeJSON(w, status, ErrorResponse{Error: banner, Message: banner, Code: code})
}

func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
