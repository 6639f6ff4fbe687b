// Package pipeline sequences the render stages that turn a source URL into a
// delivered vertical video. Stages run in a fixed order and the first failure
// aborts the job.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/reelsmith/reelsmith/internal/captions"
	"github.com/reelsmith/reelsmith/internal/ffmpeg"
	"github.com/reelsmith/reelsmith/internal/hook"
	"github.com/reelsmith/reelsmith/internal/job"
	"github.com/reelsmith/reelsmith/internal/transcribe"
)

// Output frame dimensions for the vertical derivative.
const (
	frameWidth  = 1080
	frameHeight = 1920
)

// VideoTool is the transcoder surface the stages need. ffmpeg.Adapter is the
// production implementation.
type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, in, outWav string) error
	TightenSilence(ctx context.Context, in, out string, threshold time.Duration) error
	BurnFilters(ctx context.Context, in, out, vf string) error
	NormalizeLoudness(ctx context.Context, in, out string, lufs, peakDB float64) error
}

// EngineProvider resolves the shared transcription engine. Resolution happens
// per job so the engine can stay lazily initialized process-wide.
type EngineProvider func() (transcribe.Engine, error)

// ResultNotifier receives the final artifact. Delivery errors are logged by
// the runner, never surfaced as job failures.
type ResultNotifier interface {
	DeliverReady(ctx context.Context, videoID, titleHook, finalPath string) error
}

// Config assembles a Runner's collaborators.
type Config struct {
	Video           VideoTool
	Engine          EngineProvider
	Notify          ResultNotifier
	WorkRoot        string
	DownloadTimeout time.Duration
	Logger          *slog.Logger
}

// Result is what survives a job after its workspace is gone.
type Result struct {
	TitleHook string
}

type Runner struct {
	cfg      Config
	download *http.Client
}

func NewRunner(cfg Config) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{
		cfg:      cfg,
		download: &http.Client{Timeout: cfg.DownloadTimeout},
	}
}

// jobState carries artifacts between stages. Every path lives inside the
// job's workspace.
type jobState struct {
	req job.Request
	ws  *Workspace

	src    string
	wav    string
	tight  string
	ass    string // empty when captions are disabled or absent
	staged string
	final  string

	transcript transcribe.Transcript
	words      []job.Word
	titleHook  string
}

type stage struct {
	name string
	fn   func(context.Context, *jobState) error
}

// stages is the explicit, ordered chain. Delivery of the READY outcome is the
// last stage so the artifact is still on disk when it is posted.
func (r *Runner) stages() []stage {
	return []stage{
		{"acquire", r.acquire},
		{"transcribe", r.transcribeAudio},
		{"select_hook", r.selectHook},
		{"tighten_silence", r.tightenSilence},
		{"build_captions", r.buildCaptions},
		{"compose_burn", r.composeBurn},
		{"normalize", r.normalize},
		{"deliver", r.deliver},
	}
}

// Process runs one job to completion. The workspace is removed on every exit
// path before Process returns.
func (r *Runner) Process(ctx context.Context, req job.Request) (Result, error) {
	ws, err := NewWorkspace(r.cfg.WorkRoot)
	if err != nil {
		return Result{}, fmt.Errorf("workspace: %w", err)
	}
	defer ws.Cleanup()

	logger := r.cfg.Logger.With("video_id", req.VideoID)
	st := &jobState{req: req, ws: ws}

	for _, s := range r.stages() {
		start := time.Now()
		if err := s.fn(ctx, st); err != nil {
			logger.Error("stage failed", "stage", s.name, "error", err)
			return Result{}, fmt.Errorf("%s: %w", s.name, err)
		}
		logger.Info("stage complete", "stage", s.name, "duration_ms", time.Since(start).Milliseconds())
	}

	return Result{TitleHook: st.titleHook}, nil
}

func (r *Runner) acquire(ctx context.Context, st *jobState) error {
	st.src = st.ws.Path("input.mp4")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, st.req.RawURL, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	resp, err := r.download.Do(req)
	if err != nil {
		return fmt.Errorf("download source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download source: HTTP %d", resp.StatusCode)
	}

	f, err := os.Create(st.src)
	if err != nil {
		return fmt.Errorf("create source file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("stream source: %w", err)
	}
	return nil
}

func (r *Runner) transcribeAudio(ctx context.Context, st *jobState) error {
	st.wav = st.ws.Path("audio.wav")
	if err := r.cfg.Video.ExtractAudioMono16k(ctx, st.src, st.wav); err != nil {
		return err
	}

	engine, err := r.cfg.Engine()
	if err != nil {
		return err
	}
	tr, err := engine.Transcribe(ctx, st.wav, st.ws.Dir())
	if err != nil {
		return err
	}
	st.transcript = tr
	st.words = tr.Words()
	return nil
}

func (r *Runner) selectHook(_ context.Context, st *jobState) error {
	st.titleHook = hook.Select(st.transcript.FullText())
	return nil
}

func (r *Runner) tightenSilence(ctx context.Context, st *jobState) error {
	st.tight = st.ws.Path("tight.mp4")
	return r.cfg.Video.TightenSilence(ctx, st.src, st.tight, st.req.Settings.PauseTrim)
}

func (r *Runner) buildCaptions(_ context.Context, st *jobState) error {
	if !st.req.Captions || len(st.words) == 0 {
		r.cfg.Logger.Info("captions skipped",
			"video_id", st.req.VideoID,
			"enabled", st.req.Captions,
			"words", len(st.words),
		)
		return nil
	}

	chunks := captions.BuildChunks(st.words, captions.DefaultGroupSize)
	if len(chunks) == 0 {
		return nil
	}

	st.ass = st.ws.Path("captions.ass")
	if err := os.WriteFile(st.ass, []byte(captions.RenderASS(chunks)), 0o644); err != nil {
		return fmt.Errorf("write subtitle document: %w", err)
	}
	return nil
}

func (r *Runner) composeBurn(ctx context.Context, st *jobState) error {
	g := ffmpeg.NewFilterGraph().
		ScaleFill(frameWidth, frameHeight).
		CenterCrop(frameWidth, frameHeight)
	if st.ass != "" {
		g.BurnSubtitles(st.ass)
	}
	g.DrawHook(st.titleHook, st.req.Settings.HookStart, st.req.Settings.HookDuration)

	st.staged = st.ws.Path("staged.mp4")
	return r.cfg.Video.BurnFilters(ctx, st.tight, st.staged, g.String())
}

func (r *Runner) normalize(ctx context.Context, st *jobState) error {
	st.final = st.ws.Path("final.mp4")
	return r.cfg.Video.NormalizeLoudness(ctx, st.staged, st.final, st.req.Settings.LUFS, st.req.Settings.PeakDB)
}

func (r *Runner) deliver(ctx context.Context, st *jobState) error {
	if r.cfg.Notify == nil {
		return nil
	}
	if err := r.cfg.Notify.DeliverReady(ctx, st.req.VideoID, st.titleHook, st.final); err != nil {
		// Best-effort: a delivery failure does not change the job outcome.
		r.cfg.Logger.Error("result delivery failed", "video_id", st.req.VideoID, "error", err)
	}
	return nil
}
