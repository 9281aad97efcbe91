package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"finboard/internal/auth"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/middleware/trace"

	"github.com/getsentry/sentry-go"
)

const (
	msgUnauthorized = "Unauthorized"
	msgInternal     = "Internal server error"
	msgNotFound     = "Not found"
	msgConflict     = "An overlapping budget already exists for this category"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps the error taxonomy to a status code and a client-safe message.
// ok is false for internal failures, whose detail must not reach the client.
func statusFor(err error) (status int, msg string, ok bool) {
	var verr *core.ValidationError
	switch {
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized, msgUnauthorized, true
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Error(), true
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest, "Invalid request", true
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, msgNotFound, true
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict, msgConflict, true
	default:
		return http.StatusInternalServerError, msgInternal, false
	}
}

// writeError matches the auth gate's failure callback.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.fail(w, r, err, msgInternal)
}

// fail writes err as {"error": msg}. Internal failures are logged, reported
// and answered with internalMsg.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, internalMsg string) {
	status, msg, ok := statusFor(err)
	if !ok {
		s.internalErrors.Add(1)
		log.FromContext(r.Context()).ErrorContextErr(r.Context(), "Request failed", err,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		s.report(r, err)
		msg = internalMsg
	}
	writeJSONError(w, status, msg)
}

// report sends err to Sentry. Without a configured client this is a no-op.
func (s *Server) report(r *http.Request, err error) {
	hub := sentry.GetHubFromContext(r.Context())
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(r)
		scope.SetTag("request_id", trace.GetRequestID(r.Context()))
		if userID := auth.UserID(r.Context()); userID != "" {
			scope.SetUser(sentry.User{ID: userID})
		}
		hub.CaptureException(err)
	})
}

// recoverer turns a handler panic into a 500 and a Sentry event.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.panics.Add(1)
			s.logger.ErrorContext(r.Context(), "Handler panicked",
				"panic", fmt.Sprint(rec),
				"stack", string(debug.Stack()),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)

			hub := sentry.GetHubFromContext(r.Context())
			if hub == nil {
				hub = sentry.CurrentHub().Clone()
			}
			hub.RecoverWithContext(r.Context(), rec)

			writeJSONError(w, http.StatusInternalServerError, msgInternal)
		}()
		next.ServeHTTP(w, r)
	})
}
