package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/reelsmith/reelsmith/internal/job"
	"github.com/reelsmith/reelsmith/internal/transcribe"
)

type fakeVideoTool struct {
	calls   []string
	burnVF  string
	failOp  string
	failErr error
}

func (f *fakeVideoTool) touch(path string) error {
	return os.WriteFile(path, []byte("artifact"), 0o644)
}

func (f *fakeVideoTool) op(name, out string) error {
	f.calls = append(f.calls, name)
	if f.failOp == name {
		return f.failErr
	}
	return f.touch(out)
}

func (f *fakeVideoTool) ExtractAudioMono16k(_ context.Context, _, out string) error {
	return f.op("extract", out)
}

func (f *fakeVideoTool) TightenSilence(_ context.Context, _, out string, _ time.Duration) error {
	return f.op("tighten", out)
}

func (f *fakeVideoTool) BurnFilters(_ context.Context, _, out, vf string) error {
	f.burnVF = vf
	return f.op("burn", out)
}

func (f *fakeVideoTool) NormalizeLoudness(_ context.Context, _, out string, _, _ float64) error {
	return f.op("normalize", out)
}

type fakeEngine struct {
	tr  transcribe.Transcript
	err error
}

func (f *fakeEngine) Transcribe(_ context.Context, _, _ string) (transcribe.Transcript, error) {
	return f.tr, f.err
}

type fakeNotifier struct {
	videoID     string
	titleHook   string
	finalExists bool
	err         error
}

func (f *fakeNotifier) DeliverReady(_ context.Context, videoID, titleHook, finalPath string) error {
	f.videoID = videoID
	f.titleHook = titleHook
	_, statErr := os.Stat(finalPath)
	f.finalExists = statErr == nil
	return f.err
}

func sampleTranscript() transcribe.Transcript {
	return transcribe.Transcript{
		Text: "How do you fix this? It was a long day.",
		Segments: []transcribe.Segment{
			{Words: []transcribe.Word{
				{Word: "How", Start: 0, End: 0.3},
				{Word: "do", Start: 0.3, End: 0.5},
				{Word: "you", Start: 0.5, End: 0.7},
				{Word: "fix", Start: 0.7, End: 1.0},
				{Word: "this", Start: 1.0, End: 1.4},
			}},
		},
	}
}

func sourceServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "video bytes")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testRunner(t *testing.T, tool *fakeVideoTool, engine transcribe.Engine, notify ResultNotifier) (*Runner, string) {
	t.Helper()
	root := t.TempDir()
	r := NewRunner(Config{
		Video:           tool,
		Engine:          func() (transcribe.Engine, error) { return engine, nil },
		Notify:          notify,
		WorkRoot:        root,
		DownloadTimeout: 5 * time.Second,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return r, root
}

func testRequest(url string, captionsOn bool) job.Request {
	return job.Request{
		VideoID:  "vid-1",
		RawURL:   url,
		Captions: captionsOn,
		Settings: job.DefaultSettings(),
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read work root: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("workspace not cleaned, %d entries remain", len(entries))
	}
}

func TestProcessSuccessWithCaptions(t *testing.T) {
	srv := sourceServer(t)
	tool := &fakeVideoTool{}
	notify := &fakeNotifier{}
	r, root := testRunner(t, tool, &fakeEngine{tr: sampleTranscript()}, notify)

	res, err := r.Process(context.Background(), testRequest(srv.URL, true))
	if err != nil {
		t.Fatalf("Process error = %v", err)
	}

	wantCalls := []string{"extract", "tighten", "burn", "normalize"}
	if strings.Join(tool.calls, ",") != strings.Join(wantCalls, ",") {
		t.Errorf("tool calls = %v, want %v", tool.calls, wantCalls)
	}
	if res.TitleHook != "How do you fix this?" {
		t.Errorf("title hook = %q", res.TitleHook)
	}
	if !strings.Contains(tool.burnVF, "subtitles=") {
		t.Errorf("burn filter graph missing subtitle burn:\n%s", tool.burnVF)
	}
	if !strings.Contains(tool.burnVF, "drawtext=") {
		t.Errorf("burn filter graph missing hook overlay:\n%s", tool.burnVF)
	}
	if notify.videoID != "vid-1" || notify.titleHook != "How do you fix this?" {
		t.Errorf("delivery metadata = %q/%q", notify.videoID, notify.titleHook)
	}
	if !notify.finalExists {
		t.Error("final artifact must still exist at delivery time")
	}
	assertEmptyDir(t, root)
}

func TestProcessCaptionsDisabled(t *testing.T) {
	srv := sourceServer(t)
	tool := &fakeVideoTool{}
	r, root := testRunner(t, tool, &fakeEngine{tr: sampleTranscript()}, &fakeNotifier{})

	if _, err := r.Process(context.Background(), testRequest(srv.URL, false)); err != nil {
		t.Fatalf("Process error = %v", err)
	}
	if strings.Contains(tool.burnVF, "subtitles=") {
		t.Errorf("caption-disabled run must omit subtitle burn:\n%s", tool.burnVF)
	}
	if !strings.Contains(tool.burnVF, "drawtext=") {
		t.Errorf("hook overlay must remain:\n%s", tool.burnVF)
	}
	assertEmptyDir(t, root)
}

func TestProcessNoWordsSkipsCaptions(t *testing.T) {
	srv := sourceServer(t)
	tool := &fakeVideoTool{}
	tr := transcribe.Transcript{Text: "Some narration."}
	r, root := testRunner(t, tool, &fakeEngine{tr: tr}, &fakeNotifier{})

	if _, err := r.Process(context.Background(), testRequest(srv.URL, true)); err != nil {
		t.Fatalf("Process error = %v", err)
	}
	if strings.Contains(tool.burnVF, "subtitles=") {
		t.Errorf("run without word timings must omit subtitle burn:\n%s", tool.burnVF)
	}
	assertEmptyDir(t, root)
}

func TestProcessStageFailureAborts(t *testing.T) {
	srv := sourceServer(t)
	tool := &fakeVideoTool{failOp: "tighten", failErr: errors.New("silenceremove blew up")}
	notify := &fakeNotifier{}
	r, root := testRunner(t, tool, &fakeEngine{tr: sampleTranscript()}, notify)

	_, err := r.Process(context.Background(), testRequest(srv.URL, true))
	if err == nil {
		t.Fatal("expected stage failure")
	}
	if !strings.Contains(err.Error(), "tighten_silence:") {
		t.Errorf("error should name the failing stage: %v", err)
	}
	for _, later := range []string{"burn", "normalize"} {
		for _, c := range tool.calls {
			if c == later {
				t.Errorf("stage %q ran after a failure", later)
			}
		}
	}
	if notify.videoID != "" {
		t.Error("READY delivery must not run after a stage failure")
	}
	assertEmptyDir(t, root)
}

func TestProcessDownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	tool := &fakeVideoTool{}
	r, root := testRunner(t, tool, &fakeEngine{tr: sampleTranscript()}, &fakeNotifier{})

	_, err := r.Process(context.Background(), testRequest(srv.URL, true))
	if err == nil || !strings.Contains(err.Error(), "acquire:") {
		t.Fatalf("error = %v, want acquire failure", err)
	}
	if len(tool.calls) != 0 {
		t.Errorf("no tool should run after a failed download, got %v", tool.calls)
	}
	assertEmptyDir(t, root)
}

func TestProcessDeliveryFailureDoesNotFailJob(t *testing.T) {
	srv := sourceServer(t)
	tool := &fakeVideoTool{}
	notify := &fakeNotifier{err: errors.New("webhook down")}
	r, root := testRunner(t, tool, &fakeEngine{tr: sampleTranscript()}, notify)

	if _, err := r.Process(context.Background(), testRequest(srv.URL, true)); err != nil {
		t.Fatalf("delivery failure must not fail the job, got %v", err)
	}
	assertEmptyDir(t, root)
}

func TestProcessEngineFailure(t *testing.T) {
	srv := sourceServer(t)
	tool := &fakeVideoTool{}
	r, root := testRunner(t, tool, &fakeEngine{err: errors.New("model missing")}, &fakeNotifier{})

	_, err := r.Process(context.Background(), testRequest(srv.URL, true))
	if err == nil || !strings.Contains(err.Error(), "transcribe:") {
		t.Fatalf("error = %v, want transcribe failure", err)
	}
	assertEmptyDir(t, root)
}
