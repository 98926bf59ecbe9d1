// Package media resolves source video metadata for sessions created without
// explicit dimensions.
package media

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// SourceInfo is the subset of probe output the session service needs.
type SourceInfo struct {
	Width    int
	Height   int
	Duration float64
}

// Prober resolves a source reference (file path or URL) into its dimensions.
type Prober interface {
	Probe(ctx context.Context, source string) (SourceInfo, error)
}

// FFProbe probes sources with ffprobe via ffmpeg-go.
type FFProbe struct{}

// Probe implements Prober. A context deadline, when present, bounds the
// ffprobe invocation.
func (FFProbe) Probe(ctx context.Context, source string) (SourceInfo, error) {
	var (
		raw string
		err error
	)
	if deadline, ok := ctx.Deadline(); ok {
		raw, err = ffmpeg.ProbeWithTimeout(source, time.Until(deadline), nil)
	} else {
		raw, err = ffmpeg.Probe(source)
	}
	if err != nil {
		return SourceInfo{}, errors.Wrapf(err, "probe %q", source)
	}
	return parseProbe(raw)
}

// parseProbe extracts the first video stream's dimensions from ffprobe JSON.
func parseProbe(raw string) (SourceInfo, error) {
	var data struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
			Duration  string `json:"duration"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return SourceInfo{}, errors.Wrap(err, "decode probe output")
	}

	for _, s := range data.Streams {
		if s.CodecType != "video" {
			continue
		}
		info := SourceInfo{Width: s.Width, Height: s.Height}
		if d, ok := parseSeconds(s.Duration); ok {
			info.Duration = d
		} else if d, ok := parseSeconds(data.Format.Duration); ok {
			info.Duration = d
		}
		if info.Width <= 0 || info.Height <= 0 {
			return SourceInfo{}, errors.New("video stream has no dimensions")
		}
		return info, nil
	}
	return SourceInfo{}, errors.New("no video stream found")
}

func parseSeconds(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	var d float64
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return 0, false
	}
	return d, true
}
