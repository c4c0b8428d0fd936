package command

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"ffauto/ffprobe"
	"ffauto/options"
	"ffauto/pipeline"
)

// globalArgs precede every synthesized invocation.
var globalArgs = []string{"-loglevel", "warning", "-hide_banner"}

// ytBitrateLadder is the YouTube recommended upload bitrate per frame-rate
// tier and height tier. Lookups pick the smallest tier at or above the probed
// value and clamp at the top.
var (
	ytFrameRateTiers = []float64{30, 60}
	ytHeightTiers    = []int{360, 480, 720, 1080, 1440, 2160, 2880}
	ytBitrateLadder  = map[float64]map[int]string{
		30: {360: "1M", 480: "3M", 720: "5M", 1080: "8M", 1440: "16M", 2160: "45M", 2880: "64M"},
		60: {360: "2M", 480: "4M", 720: "8M", 1080: "12M", 1440: "24M", 2160: "64M", 2880: "80M"},
	}
)

// Synthesize merges the validated bundle, the filter-stage plan, the encoder
// tunables and the probed source facts into the final invocation plan.
//
// palettePath is the temp file shared by the two GIF passes; it must be set
// when the GIF profile is active. The result is deterministic: the same
// inputs always produce byte-identical argument lists.
func Synthesize(b *options.Bundle, enc *options.Encoding, info *ffprobe.Info, palettePath string) (*Plan, error) {
	p, err := pipeline.Build(b, info)
	if err != nil {
		return nil, err
	}

	codec := resolveCodec(b.Profile)
	input := inputArgs(b, p)
	codecOpts := codecArgs(codec, b, enc, info)
	audio, audioFilter := audioArgs(b, p, enc)

	var meta []string
	if b.Title != "" {
		meta = []string{"-metadata", "title=" + b.Title}
	}

	if b.Profile == options.ProfileGIF {
		return gifPlan(b, p, input, codecOpts, meta, palettePath)
	}

	var args []string
	args = append(args, globalArgs...)
	if b.Profile == options.ProfileHardware {
		args = append(args, "-hwaccel", "cuvid")
	}
	args = append(args, input...)
	args = append(args, "-c:v", codec)
	args = append(args, codecOpts...)
	args = append(args, audio...)
	args = append(args, audioFilter...)
	if chain := renderVideoChain(p.Video, b.Profile == options.ProfileHardware); chain != "" {
		args = append(args, "-vf", chain)
	}
	args = append(args, meta...)
	args = append(args, b.Passthrough...)
	args = append(args, "-y", b.Output)

	return &Plan{Commands: []Compiled{{
		Args:       args,
		OutputPath: b.Output,
		Note:       "Encoding output file…",
	}}}, nil
}

// gifPlan emits the dependent two-pass GIF pipeline: palette generation into
// the temp palette file, then the paletted encode with the palette as a
// second input. Animated outputs never carry audio.
func gifPlan(b *options.Bundle, p *pipeline.Pipeline, input, codecOpts, meta []string, palettePath string) (*Plan, error) {
	if palettePath == "" {
		return nil, fmt.Errorf("gif profile requires a palette path")
	}

	genStages := append(append([]pipeline.Stage{}, p.Video...), pipeline.Stage{
		Kind:      pipeline.StagePaletteGen,
		MaxColors: b.GIFPalette,
	})

	// The sharpen stage only feeds palette statistics; the encode pass
	// drops it and maps through paletteuse instead.
	var useStages []pipeline.Stage
	for _, s := range p.Video {
		if s.Kind != pipeline.StageSharpen {
			useStages = append(useStages, s)
		}
	}
	useStages = append(useStages, pipeline.Stage{
		Kind:   pipeline.StagePaletteUse,
		Dither: b.GIFDither,
	})

	var gen []string
	gen = append(gen, globalArgs...)
	gen = append(gen, input...)
	gen = append(gen, "-c:v", "gif")
	gen = append(gen, codecOpts...)
	gen = append(gen, "-an")
	gen = append(gen, "-vf", renderVideoChain(genStages, false))
	gen = append(gen, meta...)
	gen = append(gen, b.Passthrough...)
	gen = append(gen, "-y", palettePath)

	var use []string
	use = append(use, globalArgs...)
	use = append(use, input...)
	use = append(use, "-i", palettePath)
	use = append(use, "-c:v", "gif")
	use = append(use, codecOpts...)
	use = append(use, "-an")
	use = append(use, "-lavfi", renderVideoChain(useStages, false))
	use = append(use, meta...)
	use = append(use, b.Passthrough...)
	use = append(use, "-y", b.Output)

	return &Plan{Commands: []Compiled{
		{Args: gen, OutputPath: palettePath, Note: "Creating GIF palette…"},
		{Args: use, OutputPath: b.Output, Note: "Creating GIF…"},
	}}, nil
}

// inputArgs seeks on the input side so the output time base starts at zero,
// then limits the duration when the trim end was given explicitly.
func inputArgs(b *options.Bundle, p *pipeline.Pipeline) []string {
	args := []string{"-ss", fmt.Sprintf("%.4f", p.Start), "-i", b.Input}
	if p.DurationExplicit {
		args = append(args, "-t", fmt.Sprintf("%.4f", p.Duration))
	}
	return args
}

// resolveCodec maps the active profile onto the output codec.
func resolveCodec(p options.Profile) string {
	switch p {
	case options.ProfileYouTube, options.ProfileX264:
		return "libx264"
	case options.ProfileX265:
		return "libx265"
	case options.ProfileHardware:
		return "h264_cuvid"
	case options.ProfileGIF:
		return "gif"
	case options.ProfileAPNG:
		return "apng"
	case options.ProfileWebP:
		return "libwebp"
	}
	return "libx264"
}

// codecArgs returns the per-codec option table entry. The range metadata tags
// and the YouTube arguments ride on the libx264 entry only.
func codecArgs(codec string, b *options.Bundle, enc *options.Encoding, info *ffprobe.Info) []string {
	switch codec {
	case "libx264":
		args := []string{
			"-crf", strconv.Itoa(enc.CRFX264),
			"-preset", enc.Preset,
			"-tune", "film",
			"-profile:v", "high",
			"-level", "5.2",
		}
		if b.Color >= options.ColorRangeMetadata {
			args = append(args,
				"-colorspace", "bt709",
				"-color_range", "jpeg",
				"-color_primaries", "bt709",
				"-color_trc", "bt709",
			)
		}
		if b.Profile == options.ProfileYouTube {
			args = append(args, youtubeArgs(info)...)
		}
		return args
	case "libx265":
		return []string{
			"-crf", strconv.Itoa(enc.CRFX265),
			"-preset", enc.Preset,
			"-tune", "film",
			"-profile:v", "high",
			"-level", "5.2",
		}
	case "h264_cuvid":
		return []string{
			"-preset", enc.Preset,
			"-profile:v", "high",
			"-level", "5.2",
			"-rc", "constqp",
			"-qp", strconv.Itoa(enc.QPNvenc),
			"-strict_gop", "true",
			"-rc-lookahead", "48",
			"-spatial-aq", "true",
			"-temporal-aq", "true",
			"-aq-strength", "8",
		}
	case "gif":
		return []string{"-f", "gif", "-loop", "0"}
	case "apng":
		return []string{"-f", "apng", "-plays", "0"}
	case "libwebp":
		return []string{"-f", "webp", "-loop", "0"}
	}
	return nil
}

// youtubeArgs picks the upload bitrate from the ladder and emits the
// container flags YouTube wants.
func youtubeArgs(info *ffprobe.Info) []string {
	fpsTier := ytFrameRateTiers[len(ytFrameRateTiers)-1]
	for _, t := range ytFrameRateTiers {
		if info.FrameRate <= t {
			fpsTier = t
			break
		}
	}
	heightTier := ytHeightTiers[len(ytHeightTiers)-1]
	for _, t := range ytHeightTiers {
		if info.Height <= t {
			heightTier = t
			break
		}
	}

	bitrate := ytBitrateLadder[fpsTier][heightTier]
	megabits, _ := strconv.Atoi(strings.TrimSuffix(bitrate, "M"))
	bufsize := int(math.Round(float64(megabits) * 1.5))

	return []string{
		"-movflags", "faststart",
		"-maxrate", bitrate,
		"-bufsize", fmt.Sprintf("%dM", bufsize),
		"-g", strconv.FormatFloat(info.FrameRate/2, 'g', -1, 64),
		"-bf", "2",
		"-pix_fmt", "yuv420p",
	}
}

// audioArgs resolves the audio codec and filter arguments. Mute and animated
// profiles drop the stream outright; otherwise the stream is re-encoded only
// when an audio filter or the force flag demands it.
func audioArgs(b *options.Bundle, p *pipeline.Pipeline, enc *options.Encoding) (codec, filter []string) {
	if p.Mute || b.Profile.Animated() {
		return []string{"-an"}, nil
	}

	if p.ConvertAudio {
		codec = []string{"-c:a", "aac", "-b:a", enc.AudioBitrate}
	} else {
		codec = []string{"-c:a", "copy"}
	}

	if len(p.Audio) > 0 {
		parts := make([]string, len(p.Audio))
		for i, s := range p.Audio {
			parts[i] = s.Filter()
		}
		filter = []string{"-af", strings.Join(parts, ",")}
	}
	return codec, filter
}

// renderVideoChain joins the video stages into one filter expression. On the
// hardware path fade stages run on the CPU, so they are bracketed with a
// hwdownload/hwupload pair; adjoining fades share a single round trip.
func renderVideoChain(stages []pipeline.Stage, hardware bool) string {
	hasIn, hasOut := false, false
	for _, s := range stages {
		switch s.Kind {
		case pipeline.StageFadeIn:
			hasIn = true
		case pipeline.StageFadeOut:
			hasOut = true
		}
	}

	var parts []string
	for _, s := range stages {
		f := s.Filter()
		if hardware {
			switch s.Kind {
			case pipeline.StageFadeIn:
				f = "hwdownload,format=nv12," + f
				if !hasOut {
					f += ",hwupload"
				}
			case pipeline.StageFadeOut:
				if !hasIn {
					f = "hwdownload,format=nv12," + f
				}
				f += ",hwupload"
			}
		}
		parts = append(parts, f)
	}
	return strings.Join(parts, ",")
}
