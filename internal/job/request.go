package job

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// FlexBool accepts JSON booleans as well as the string forms automation
// platforms tend to send ("true", "True", "1").
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = FlexBool(t)
	case string:
		*b = FlexBool(parseBoolish(t))
	case float64:
		*b = FlexBool(t != 0)
	default:
		return fmt.Errorf("cannot interpret %T as boolean", v)
	}
	return nil
}

func parseBoolish(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// requestWire is the inbound JSON shape. Pointer fields distinguish absent
// values from zero values so defaults apply only when a field is missing.
type requestWire struct {
	Auth        string       `json:"auth"`
	VideoID     string       `json:"video_id"`
	RawURL      string       `json:"raw_url"`
	VideoURL    string       `json:"video_url"`
	HasCaptions *FlexBool    `json:"has_captions"`
	Settings    settingsWire `json:"settings"`
}

type settingsWire struct {
	PauseTrimMS *int `json:"pause_trim_ms"`
	Audio       struct {
		LUFS   *float64 `json:"lufs"`
		PeakDB *float64 `json:"peak_db"`
	} `json:"audio"`
	Export struct {
		HookStartMinSec *float64 `json:"hook_start_min_sec"`
		HookDurationSec *float64 `json:"hook_duration_sec"`
	} `json:"export"`
}

func (w settingsWire) resolve() Settings {
	s := DefaultSettings()
	if w.PauseTrimMS != nil {
		s.PauseTrim = time.Duration(*w.PauseTrimMS) * time.Millisecond
	}
	if w.Audio.LUFS != nil {
		s.LUFS = *w.Audio.LUFS
	}
	if w.Audio.PeakDB != nil {
		s.PeakDB = *w.Audio.PeakDB
	}
	if w.Export.HookStartMinSec != nil {
		s.HookStart = *w.Export.HookStartMinSec
	}
	if w.Export.HookDurationSec != nil {
		s.HookDuration = *w.Export.HookDurationSec
	}
	return s
}

func (w requestWire) resolve() (auth string, req Request) {
	req = Request{
		VideoID:  strings.TrimSpace(w.VideoID),
		RawURL:   strings.TrimSpace(w.RawURL),
		Captions: true,
		Settings: w.Settings.resolve(),
	}
	// Some upstream automations send video_url instead of raw_url.
	if req.RawURL == "" && w.VideoURL != "" {
		req.RawURL = strings.TrimSpace(w.VideoURL)
	}
	if w.HasCaptions != nil {
		req.Captions = bool(*w.HasCaptions)
	}
	return w.Auth, req
}

// DecodeJSON parses a JSON request body. The returned auth credential is
// checked by the caller before the request itself is validated.
func DecodeJSON(body []byte) (auth string, req Request, err error) {
	var w requestWire
	if err := json.Unmarshal(body, &w); err != nil {
		return "", Request{}, fmt.Errorf("decode request: %w", err)
	}
	auth, req = w.resolve()
	return auth, req, nil
}

// DecodeForm parses a form-encoded request body. Nested settings arrive as a
// JSON string in the settings field, if at all.
func DecodeForm(values url.Values) (auth string, req Request) {
	w := requestWire{
		Auth:     values.Get("auth"),
		VideoID:  values.Get("video_id"),
		RawURL:   values.Get("raw_url"),
		VideoURL: values.Get("video_url"),
	}
	if v := values.Get("has_captions"); v != "" {
		fb := FlexBool(parseBoolish(v))
		w.HasCaptions = &fb
	}
	if v := values.Get("settings"); v != "" {
		// Best effort: unparseable settings fall back to defaults.
		_ = json.Unmarshal([]byte(v), &w.Settings)
	}
	auth, req = w.resolve()
	return auth, req
}

// Validate reports the first missing required field.
func (r Request) Validate() error {
	if r.VideoID == "" {
		return fmt.Errorf("video_id is required")
	}
	if r.RawURL == "" {
		return fmt.Errorf("raw_url is required")
	}
	return nil
}
