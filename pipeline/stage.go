package pipeline

import (
	"fmt"
	"strconv"

	"ffauto/internal/timeutil"
	"ffauto/options"
)

// StageKind identifies one discrete transformation step.
type StageKind string

const (
	StageFPS          StageKind = "fps"
	StageCrop         StageKind = "crop"
	StageScale        StageKind = "scale"
	StageSharpen      StageKind = "sharpen"
	StageFadeIn       StageKind = "fade-in"
	StageFadeOut      StageKind = "fade-out"
	StageRangeConvert StageKind = "range-convert"
	StageVolume       StageKind = "volume"
	StageAudioFadeIn  StageKind = "afade-in"
	StageAudioFadeOut StageKind = "afade-out"
	StagePaletteGen   StageKind = "palettegen"
	StagePaletteUse   StageKind = "paletteuse"
)

// Stage is one filter-stage descriptor. Kind selects which parameter fields
// are meaningful; Filter renders the exact ffmpeg filter expression.
type Stage struct {
	Kind StageKind

	Rate     string           // StageFPS: raw frame rate text
	Crop     options.CropSpec // StageCrop
	Height   int              // StageScale: resolved even target height
	Hardware bool             // StageScale: use the CUDA scaler

	Start    float64 // fades: start offset in the output time base
	Duration float64 // fades: fade length

	Volume string // StageVolume: raw factor text

	MaxColors int    // StagePaletteGen
	Dither    string // StagePaletteUse
}

// Filter renders the stage into ffmpeg filter syntax. The filter names and
// parameter strings are contractual; ffmpeg must receive them exactly.
func (s Stage) Filter() string {
	switch s.Kind {
	case StageFPS:
		return "fps=fps=" + s.Rate
	case StageCrop:
		return fmt.Sprintf("crop=%d:%d:%d:%d", s.Crop.Width, s.Crop.Height, s.Crop.X, s.Crop.Y)
	case StageScale:
		if s.Hardware {
			return fmt.Sprintf("scale_cuda=-2:%d", s.Height)
		}
		return fmt.Sprintf("scale=-2:%d:flags=spline+accurate_rnd+full_chroma_int+full_chroma_inp", s.Height)
	case StageSharpen:
		return "unsharp"
	case StageFadeIn:
		return fmt.Sprintf("fade=t=in:st=%s:d=%s", num(s.Start), num(s.Duration))
	case StageFadeOut:
		return fmt.Sprintf("fade=t=out:st=%s:d=%s", num(s.Start), num(s.Duration))
	case StageRangeConvert:
		return "scale=in_range=tv:out_range=pc"
	case StageVolume:
		return "volume=" + s.Volume
	case StageAudioFadeIn:
		return fmt.Sprintf("afade=t=in:st=%s:d=%s:curve=ihsin", num(s.Start), num(s.Duration))
	case StageAudioFadeOut:
		return fmt.Sprintf("afade=t=out:st=%s:d=%s:curve=ihsin", num(s.Start), num(s.Duration))
	case StagePaletteGen:
		return fmt.Sprintf("palettegen=stats_mode=diff:reserve_transparent=0:max_colors=%d", s.MaxColors)
	case StagePaletteUse:
		return fmt.Sprintf("paletteuse=diff_mode=rectangle:bayer_scale=0:dither=%s", s.Dither)
	}
	return ""
}

// num renders a time value with up to 4 decimals and no trailing zeros.
func num(f float64) string {
	return strconv.FormatFloat(timeutil.Round4(f), 'f', -1, 64)
}
