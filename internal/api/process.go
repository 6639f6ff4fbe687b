package api

import (
	"crypto/subtle"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/reelsmith/reelsmith/internal/delivery"
	"github.com/reelsmith/reelsmith/internal/job"
	"github.com/reelsmith/reelsmith/internal/logging"
)

// maxBodyBytes bounds the inbound request body. Sources arrive by URL, so
// request bodies are metadata only.
const maxBodyBytes = 1 << 20

// processHandler runs one render job synchronously. Order matters: the body
// is parsed, the credential checked, and only then is the request validated
// and any pipeline work started.
func processHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID, _ := r.Context().Value(RequestIDKey).(string)
		logger := logging.WithRequestID(cfg.Logger, requestID)

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			WriteError(w, http.StatusBadRequest, "Bad payload", "BAD_REQUEST")
			return
		}

		auth, req, jerr := job.DecodeJSON(body)
		if jerr != nil {
			// Form-encoded fallback for callers that cannot send JSON.
			values, perr := url.ParseQuery(string(body))
			if perr != nil || len(values) == 0 {
				WriteError(w, http.StatusBadRequest, "Bad payload", "BAD_REQUEST")
				return
			}
			auth, req = job.DecodeForm(values)
		}

		if auth == "" {
			auth = bearerToken(r)
		}
		if subtle.ConstantTimeCompare([]byte(auth), []byte(cfg.AuthToken)) != 1 {
			logger.Warn("rejected request credential", "provided", logging.SanitizeToken(auth))
			WriteError(w, http.StatusUnauthorized, "invalid credential", "UNAUTHORIZED")
			return
		}

		if err := req.Validate(); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		logger = logging.WithVideoID(logger, req.VideoID)
		logger.Info("processing render request", "captions", req.Captions)

		res, err := cfg.Runner.Process(r.Context(), req)
		if err != nil {
			msg := delivery.Truncate(err.Error())
			if cfg.Notifier != nil {
				if derr := cfg.Notifier.DeliverFailed(r.Context(), req.VideoID, msg); derr != nil {
					logger.Error("failure notice delivery failed", "error", derr)
				}
			}
			WriteError(w, http.StatusInternalServerError, msg, "PROCESSING_FAILED")
			return
		}

		logger.Info("render complete", "title_hook", res.TitleHook)
		WriteJSON(w, http.StatusOK, ProcessResponse{OK: true})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) >= 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
