// Package options defines the CLI surface of ffauto, the typed option bundle
// produced by the validation gate, and the encoder tunables loaded from the
// optional config file.
//
// Raw flag values are collected into a Flags struct and turned into an
// immutable Bundle by Validate. Nothing downstream ever sees an unvalidated
// value, and the bundle is never mutated after the gate completes.
package options

import "errors"

// Validation-class errors. Every failure produced by the gate wraps one of
// these, so callers can map them to exit codes with errors.Is.
var (
	// ErrConflictingOptions reports two mutually exclusive options set at once.
	ErrConflictingOptions = errors.New("conflicting options")

	// ErrInvalidArgument reports an out-of-range or malformed option value.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Profile is a named bundle of codec/container/acceleration choices.
// Exactly one profile is active per invocation.
type Profile string

const (
	ProfileDefault  Profile = ""
	ProfileYouTube  Profile = "youtube"
	ProfileHardware Profile = "hardware"
	ProfileX264     Profile = "x264"
	ProfileX265     Profile = "x265"
	ProfileGIF      Profile = "gif"
	ProfileAPNG     Profile = "apng"
	ProfileWebP     Profile = "webp"
)

// Animated reports whether the profile produces an animated image. Animated
// outputs carry no audio regardless of the audio options.
func (p Profile) Animated() bool {
	return p == ProfileGIF || p == ProfileAPNG || p == ProfileWebP
}

// TrimEndKind distinguishes how the end of the trim window was given.
type TrimEndKind int

const (
	TrimEndUnset    TrimEndKind = iota // neither -t nor -to
	TrimEndPosition                    // -to: absolute end position
	TrimEndDuration                    // -t: duration from the start
)

// TrimEnd is the sum type for the -t / -to pair. At most one of the two can
// be set; the validator rejects both.
type TrimEnd struct {
	Kind    TrimEndKind
	Seconds float64
}

// TrimWindow is the validated trim selection in canonical seconds.
type TrimWindow struct {
	Start float64
	End   TrimEnd
}

// FadeSpec holds fade durations in seconds. Zero means no fade; the validator
// guarantees any set value is positive. A combined -f request populates both
// fields identically and overrides individual -fi / -fo values.
type FadeSpec struct {
	In  float64
	Out float64
}

// GeometryKind tags one geometric operation.
type GeometryKind int

const (
	GeometryCrop GeometryKind = iota
	GeometryScale
)

// CropSpec is a validated -c w:h:x:y region.
type CropSpec struct {
	Width  int
	Height int
	X      int
	Y      int
}

// ScaleSpec is a validated -vh request. Either an absolute pixel height or a
// multiplicative factor of the source height (trailing "x" marker).
type ScaleSpec struct {
	Height   int
	Factor   float64
	Relative bool
}

// GeometryOp is one crop or scale operation. Operations apply in the literal
// order the user specified them on the command line, never in a fixed
// canonical order.
type GeometryOp struct {
	Kind  GeometryKind
	Crop  CropSpec
	Scale ScaleSpec
}

// ColorRange selects TV-to-PC RGB range handling (-fixrgb).
type ColorRange int

const (
	ColorRangeNone     ColorRange = 0 // untouched
	ColorRangeMetadata ColorRange = 1 // tag output streams only
	ColorRangeFull     ColorRange = 2 // tag and force a full-range conversion
)

// AudioSpec holds the audio intent. Mute wins over volume in effect; both may
// be recorded but a muted output never carries a volume filter.
type AudioSpec struct {
	Mute          bool
	Volume        string // raw factor text, validated positive
	VolumeSet     bool
	ForceReencode bool
}

// Bundle is the validated, immutable option set for one invocation. It is
// threaded explicitly through pipeline building and command synthesis.
type Bundle struct {
	Input  string
	Output string

	Trim     TrimWindow
	Fade     FadeSpec
	Geometry []GeometryOp
	Color    ColorRange
	Audio    AudioSpec
	Profile  Profile

	Title        string
	Framerate    string // raw rate text, validated positive
	FramerateSet bool

	// GIF palette settings, resolved against the encoder tunables. Only
	// meaningful when Profile is ProfileGIF.
	GIFPalette int
	GIFDither  string

	Passthrough []string
	Debug       bool
}
