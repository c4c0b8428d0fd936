// Package pipeline turns a validated option bundle into the ordered filter
// stages of the output command.
//
// Ordering rules: the trim window is applied first and defines the output
// time base, geometric operations run in literal user order, fades are timed
// against the trimmed output, and range conversion comes last so it is
// unaffected by resampling. Audio stages form an independent chain.
package pipeline

import (
	"errors"
	"fmt"

	"ffauto/ffprobe"
	"ffauto/internal/timeutil"
	"ffauto/options"
)

// ErrInvalidFadeWindow is returned when a fade-out is longer than the output.
var ErrInvalidFadeWindow = errors.New("invalid fade window")

// Pipeline is the ordered stage plan for one invocation. Built once,
// read-only afterwards.
type Pipeline struct {
	// Trim window in canonical seconds. Duration falls back to the probed
	// source duration when neither -t nor -to was given.
	Start            float64
	Duration         float64
	DurationExplicit bool

	Video []Stage
	Audio []Stage

	Mute bool
	// ConvertAudio reports whether the audio stream needs re-encoding
	// (forced, volume change, or fades). Otherwise the stream is copied.
	ConvertAudio bool
}

// Build computes the stage plan from the validated bundle and the probed
// source facts.
func Build(b *options.Bundle, info *ffprobe.Info) (*Pipeline, error) {
	p := &Pipeline{
		Start: b.Trim.Start,
		Mute:  b.Audio.Mute,
	}

	switch b.Trim.End.Kind {
	case options.TrimEndPosition:
		p.Duration = timeutil.Round4(b.Trim.End.Seconds - b.Trim.Start)
		p.DurationExplicit = true
	case options.TrimEndDuration:
		p.Duration = b.Trim.End.Seconds
		p.DurationExplicit = true
	default:
		p.Duration = timeutil.Round4(info.Duration - b.Trim.Start)
	}

	// Input-side seeking resets the output time base to zero, so fade-in
	// starts at 0 and fade-out ends exactly at the trimmed end.
	fadeOutStart := timeutil.Round4(p.Duration - b.Fade.Out)
	if b.Fade.Out > 0 && (p.DurationExplicit || info.DurationKnown) && b.Fade.Out > p.Duration {
		return nil, fmt.Errorf("%w: fade-out of %ss exceeds the %ss output", ErrInvalidFadeWindow, num(b.Fade.Out), num(p.Duration))
	}

	if b.FramerateSet {
		p.Video = append(p.Video, Stage{Kind: StageFPS, Rate: b.Framerate})
	}

	for _, op := range b.Geometry {
		switch op.Kind {
		case options.GeometryCrop:
			p.Video = append(p.Video, Stage{Kind: StageCrop, Crop: op.Crop})
		case options.GeometryScale:
			p.Video = append(p.Video, Stage{
				Kind:     StageScale,
				Height:   targetHeight(op.Scale, info),
				Hardware: b.Profile == options.ProfileHardware,
			})
		}
	}

	if b.Profile == options.ProfileGIF {
		p.Video = append(p.Video, Stage{Kind: StageSharpen})
	}

	if b.Fade.In > 0 {
		p.Video = append(p.Video, Stage{Kind: StageFadeIn, Start: 0, Duration: b.Fade.In})
	}
	if b.Fade.Out > 0 {
		p.Video = append(p.Video, Stage{Kind: StageFadeOut, Start: fadeOutStart, Duration: b.Fade.Out})
	}

	if b.Color == options.ColorRangeFull {
		p.Video = append(p.Video, Stage{Kind: StageRangeConvert})
	}

	p.ConvertAudio = b.Audio.ForceReencode || b.Audio.VolumeSet || b.Fade.In > 0 || b.Fade.Out > 0

	if !p.Mute {
		if b.Audio.VolumeSet {
			p.Audio = append(p.Audio, Stage{Kind: StageVolume, Volume: b.Audio.Volume})
		}
		if b.Fade.In > 0 {
			p.Audio = append(p.Audio, Stage{Kind: StageAudioFadeIn, Start: 0, Duration: b.Fade.In})
		}
		if b.Fade.Out > 0 {
			p.Audio = append(p.Audio, Stage{Kind: StageAudioFadeOut, Start: fadeOutStart, Duration: b.Fade.Out})
		}
	}

	return p, nil
}

// targetHeight resolves a scale request against the probed source height.
// Absolute heights and computed factors are both rounded up to the nearest
// even integer.
func targetHeight(s options.ScaleSpec, info *ffprobe.Info) int {
	if s.Relative {
		return timeutil.CeilEven(int(float64(info.Height) * s.Factor))
	}
	return timeutil.CeilEven(s.Height)
}
