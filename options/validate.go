package options

import (
	"fmt"
	"strconv"
	"strings"

	"ffauto/internal/timeutil"
)

// gifDithers are the palette dither algorithms ffmpeg's paletteuse accepts.
var gifDithers = []string{"bayer", "heckbert", "floyd_steinberg", "sierra2", "sierra2_4a"}

// Validate runs the full option gate and produces the immutable Bundle.
//
// Every mutual-exclusion and range check lives here, and the gate runs to
// completion before any filter building starts. enc supplies defaults for the
// GIF palette settings when the flags leave them unset.
func (f *Flags) Validate(enc *Encoding) (*Bundle, error) {
	if f.Input == "" {
		return nil, fmt.Errorf("%w: -i input file is required", ErrInvalidArgument)
	}
	if f.Output == "" {
		return nil, fmt.Errorf("%w: output path is required", ErrInvalidArgument)
	}

	profile, err := f.profile()
	if err != nil {
		return nil, err
	}

	trim, err := f.trimWindow()
	if err != nil {
		return nil, err
	}

	fade, err := f.fadeSpec()
	if err != nil {
		return nil, err
	}

	geometry, err := f.geometry()
	if err != nil {
		return nil, err
	}

	color, err := parseColorRange(f.FixRGB)
	if err != nil {
		return nil, err
	}

	if f.FramerateSet() {
		if err := requirePositive("-r", f.Framerate); err != nil {
			return nil, err
		}
	}

	audio := AudioSpec{
		Mute:          f.Mute,
		Volume:        f.Volume,
		VolumeSet:     f.Volume != "",
		ForceReencode: f.AudioForce,
	}
	if audio.VolumeSet {
		if err := requirePositive("-av", f.Volume); err != nil {
			return nil, err
		}
	}

	// The hardware path has no GPU equivalent for crop, frame rate
	// resampling, or the full-range conversion filter.
	if profile == ProfileHardware {
		switch {
		case f.Crop != "":
			return nil, fmt.Errorf("%w: -nv has no hardware crop path, drop -c", ErrConflictingOptions)
		case f.FramerateSet():
			return nil, fmt.Errorf("%w: -nv has no hardware frame rate path, drop -r", ErrConflictingOptions)
		case color == ColorRangeFull:
			return nil, fmt.Errorf("%w: -nv cannot force a full-range conversion, drop -fixrgb 2", ErrConflictingOptions)
		}
	}

	palette, dither, err := f.gifSettings(profile, enc)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Input:        f.Input,
		Output:       f.Output,
		Trim:         trim,
		Fade:         fade,
		Geometry:     geometry,
		Color:        color,
		Audio:        audio,
		Profile:      profile,
		Title:        f.Title,
		Framerate:    f.Framerate,
		FramerateSet: f.FramerateSet(),
		GIFPalette:   palette,
		GIFDither:    dither,
		Passthrough:  strings.Fields(f.Passthrough),
		Debug:        f.Debug,
	}, nil
}

// FramerateSet reports whether -r was supplied.
func (f *Flags) FramerateSet() bool { return f.Framerate != "" }

// profile resolves the exclusive format-profile group. Overlapping profile
// flags are an error, never silent last-wins.
func (f *Flags) profile() (Profile, error) {
	var set []string
	profile := ProfileDefault

	pick := func(on bool, flagName string, p Profile) {
		if on {
			set = append(set, flagName)
			profile = p
		}
	}
	pick(f.YouTube, "-yt", ProfileYouTube)
	pick(f.Hardware, "-nv", ProfileHardware)
	pick(f.X264, "-x264", ProfileX264)
	pick(f.X265, "-x265", ProfileX265)
	pick(f.GIF, "-gif", ProfileGIF)
	pick(f.APNG, "-apng", ProfileAPNG)
	pick(f.WebP, "-webp", ProfileWebP)

	if len(set) > 1 {
		return ProfileDefault, fmt.Errorf("%w: %s are mutually exclusive", ErrConflictingOptions, strings.Join(set, " and "))
	}
	return profile, nil
}

func (f *Flags) trimWindow() (TrimWindow, error) {
	if f.Duration != "" && f.End != "" {
		return TrimWindow{}, fmt.Errorf("%w: -t and -to are mutually exclusive", ErrConflictingOptions)
	}

	start, err := timeutil.ParseTimestamp(f.Start)
	if err != nil {
		return TrimWindow{}, fmt.Errorf("-ss: %w", err)
	}

	trim := TrimWindow{Start: start}
	switch {
	case f.End != "":
		end, err := timeutil.ParseTimestamp(f.End)
		if err != nil {
			return TrimWindow{}, fmt.Errorf("-to: %w", err)
		}
		if end <= start {
			return TrimWindow{}, fmt.Errorf("%w: -to %s is not after -ss %s", ErrInvalidArgument, f.End, f.Start)
		}
		trim.End = TrimEnd{Kind: TrimEndPosition, Seconds: end}
	case f.Duration != "":
		dur, err := timeutil.ParseTimestamp(f.Duration)
		if err != nil {
			return TrimWindow{}, fmt.Errorf("-t: %w", err)
		}
		if dur <= 0 {
			return TrimWindow{}, fmt.Errorf("%w: -t must be positive, got %s", ErrInvalidArgument, f.Duration)
		}
		trim.End = TrimEnd{Kind: TrimEndDuration, Seconds: dur}
	}
	return trim, nil
}

// fadeSpec resolves the fade options. A combined -f populates both directions
// identically and overrides -fi / -fo.
func (f *Flags) fadeSpec() (FadeSpec, error) {
	var fade FadeSpec
	var err error

	if f.FadeIn != "" {
		if fade.In, err = parsePositive("-fi", f.FadeIn); err != nil {
			return FadeSpec{}, err
		}
	}
	if f.FadeOut != "" {
		if fade.Out, err = parsePositive("-fo", f.FadeOut); err != nil {
			return FadeSpec{}, err
		}
	}
	if f.Fade != "" {
		both, err := parsePositive("-f", f.Fade)
		if err != nil {
			return FadeSpec{}, err
		}
		fade.In = both
		fade.Out = both
	}
	return fade, nil
}

// geometry builds the ordered operation list from -c and -vh.
func (f *Flags) geometry() ([]GeometryOp, error) {
	var ops []GeometryOp

	appendCrop := func() error {
		if f.Crop == "" {
			return nil
		}
		crop, err := parseCrop(f.Crop)
		if err != nil {
			return err
		}
		ops = append(ops, GeometryOp{Kind: GeometryCrop, Crop: crop})
		return nil
	}
	appendScale := func() error {
		if f.Height == "" {
			return nil
		}
		scale, err := parseScale(f.Height)
		if err != nil {
			return err
		}
		ops = append(ops, GeometryOp{Kind: GeometryScale, Scale: scale})
		return nil
	}

	if f.CropFirst {
		if err := appendCrop(); err != nil {
			return nil, err
		}
		if err := appendScale(); err != nil {
			return nil, err
		}
	} else {
		if err := appendScale(); err != nil {
			return nil, err
		}
		if err := appendCrop(); err != nil {
			return nil, err
		}
	}
	return ops, nil
}

func (f *Flags) gifSettings(profile Profile, enc *Encoding) (int, string, error) {
	palette := enc.GIFPalette
	dither := enc.GIFDither

	if f.GIFDither != "" {
		ok := false
		for _, d := range gifDithers {
			if f.GIFDither == d {
				ok = true
				break
			}
		}
		if !ok {
			return 0, "", fmt.Errorf("%w: -gd must be one of %s", ErrInvalidArgument, strings.Join(gifDithers, ", "))
		}
		dither = f.GIFDither
	}

	// -gp without -gif is a documented no-op, not an error.
	if f.GIFPalette != "" && profile == ProfileGIF {
		n, err := strconv.Atoi(f.GIFPalette)
		if err != nil || n < 2 || n > 256 {
			return 0, "", fmt.Errorf("%w: -gp must be an integer between 2 and 256, got %q", ErrInvalidArgument, f.GIFPalette)
		}
		palette = n
	}
	return palette, dither, nil
}

func parseCrop(s string) (CropSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return CropSpec{}, fmt.Errorf("%w: -c expects w:h:x:y, got %q", ErrInvalidArgument, s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return CropSpec{}, fmt.Errorf("%w: -c expects non-negative integers, got %q", ErrInvalidArgument, s)
		}
		vals[i] = v
	}
	if vals[0] == 0 || vals[1] == 0 {
		return CropSpec{}, fmt.Errorf("%w: -c width and height must be positive, got %q", ErrInvalidArgument, s)
	}
	return CropSpec{Width: vals[0], Height: vals[1], X: vals[2], Y: vals[3]}, nil
}

func parseScale(s string) (ScaleSpec, error) {
	relative := false
	num := s
	switch {
	case strings.HasSuffix(strings.ToLower(s), "x"):
		relative = true
		num = s[:len(s)-1]
	case strings.HasSuffix(s, "×"):
		relative = true
		num = strings.TrimSuffix(s, "×")
	}

	if relative {
		factor, err := strconv.ParseFloat(num, 64)
		if err != nil || factor <= 0 {
			return ScaleSpec{}, fmt.Errorf("%w: -vh factor must be a positive number, got %q", ErrInvalidArgument, s)
		}
		return ScaleSpec{Factor: factor, Relative: true}, nil
	}

	height, err := strconv.Atoi(num)
	if err != nil || height <= 0 {
		return ScaleSpec{}, fmt.Errorf("%w: -vh must be a positive height, got %q", ErrInvalidArgument, s)
	}
	return ScaleSpec{Height: height}, nil
}

func parseColorRange(s string) (ColorRange, error) {
	switch s {
	case "", "0":
		return ColorRangeNone, nil
	case "1":
		return ColorRangeMetadata, nil
	case "2":
		return ColorRangeFull, nil
	}
	return ColorRangeNone, fmt.Errorf("%w: -fixrgb must be 0, 1 or 2, got %q", ErrInvalidArgument, s)
}

// parsePositive parses a strictly positive number for the named option.
func parsePositive(flagName, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive number, got %q", ErrInvalidArgument, flagName, s)
	}
	return v, nil
}

// requirePositive validates without keeping the parsed value; the raw text is
// forwarded into the filter expression untouched.
func requirePositive(flagName, s string) error {
	_, err := parsePositive(flagName, s)
	return err
}
