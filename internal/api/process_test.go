package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/reelsmith/reelsmith/internal/job"
	"github.com/reelsmith/reelsmith/internal/pipeline"
)

type fakeRunner struct {
	called bool
	req    job.Request
	res    pipeline.Result
	err    error
}

func (f *fakeRunner) Process(_ context.Context, req job.Request) (pipeline.Result, error) {
	f.called = true
	f.req = req
	return f.res, f.err
}

type fakeFailureNotifier struct {
	called  bool
	videoID string
	errMsg  string
}

func (f *fakeFailureNotifier) DeliverFailed(_ context.Context, videoID, errMsg string) error {
	f.called = true
	f.videoID = videoID
	f.errMsg = errMsg
	return nil
}

func testServerConfig(runner *fakeRunner, notifier *fakeFailureNotifier) ServerConfig {
	return ServerConfig{
		Port:      0,
		AuthToken: "s3cret",
		Runner:    runner,
		Notifier:  notifier,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		StartTime: time.Now(),
		Version:   "test",
	}
}

func postProcess(t *testing.T, cfg ServerConfig, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	r := NewRouter(cfg)
	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestProcessRejectsBadCredentialBeforeAnyWork(t *testing.T) {
	runner := &fakeRunner{}
	notifier := &fakeFailureNotifier{}
	rec := postProcess(t, testServerConfig(runner, notifier),
		`{"auth":"wrong","video_id":"v1","raw_url":"https://example.com/a.mp4"}`, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if runner.called {
		t.Error("pipeline must not run for a rejected credential")
	}
	if notifier.called {
		t.Error("no failure notice for auth rejections")
	}
}

func TestProcessAuthBeforeValidation(t *testing.T) {
	runner := &fakeRunner{}
	// Missing video_id AND bad credential: auth failure must win.
	rec := postProcess(t, testServerConfig(runner, nil), `{"auth":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 before field validation", rec.Code)
	}
}

func TestProcessBearerHeaderCredential(t *testing.T) {
	runner := &fakeRunner{}
	rec := postProcess(t, testServerConfig(runner, nil),
		`{"video_id":"v1","raw_url":"https://example.com/a.mp4"}`,
		map[string]string{"Authorization": "Bearer s3cret"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if !runner.called {
		t.Error("pipeline should run for a bearer-authenticated request")
	}
}

func TestProcessMissingRequiredField(t *testing.T) {
	runner := &fakeRunner{}
	rec := postProcess(t, testServerConfig(runner, nil), `{"auth":"s3cret","video_id":"v1"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if runner.called {
		t.Error("pipeline must not run for an invalid request")
	}
}

func TestProcessSuccess(t *testing.T) {
	runner := &fakeRunner{res: pipeline.Result{TitleHook: "Watch this"}}
	rec := postProcess(t, testServerConfig(runner, nil),
		`{"auth":"s3cret","video_id":"v1","video_url":"https://example.com/a.mp4"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if runner.req.RawURL != "https://example.com/a.mp4" {
		t.Errorf("video_url alias not normalized, runner saw %q", runner.req.RawURL)
	}
}

func TestProcessPipelineFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("acquire: download source: HTTP 404")}
	notifier := &fakeFailureNotifier{}
	rec := postProcess(t, testServerConfig(runner, notifier),
		`{"auth":"s3cret","video_id":"v9","raw_url":"https://example.com/a.mp4"}`, nil)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "HTTP 404") {
		t.Errorf("response should carry the error detail: %s", rec.Body.String())
	}
	if !notifier.called || notifier.videoID != "v9" {
		t.Errorf("failure notice = %+v", notifier)
	}
}

func TestProcessFailureMessageTruncated(t *testing.T) {
	longErr := errors.New(strings.Repeat("x", 2000))
	runner := &fakeRunner{err: longErr}
	notifier := &fakeFailureNotifier{}
	postProcess(t, testServerConfig(runner, notifier),
		`{"auth":"s3cret","video_id":"v1","raw_url":"u"}`, nil)

	if len(notifier.errMsg) != 800 {
		t.Errorf("failure notice message length = %d, want 800", len(notifier.errMsg))
	}
}

func TestProcessFormFallback(t *testing.T) {
	runner := &fakeRunner{}
	values := url.Values{}
	values.Set("auth", "s3cret")
	values.Set("video_id", "v1")
	values.Set("raw_url", "https://example.com/a.mp4")
	values.Set("has_captions", "false")

	rec := postProcess(t, testServerConfig(runner, nil), values.Encode(),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if runner.req.Captions {
		t.Error("form has_captions=false should disable captions")
	}
}

func TestProcessEmptyBody(t *testing.T) {
	rec := postProcess(t, testServerConfig(&fakeRunner{}, nil), "", nil)
	if rec.Code != http.StatusBadRequest && rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want rejection", rec.Code)
	}
}
