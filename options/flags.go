package options

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// Flags holds the raw option tokens exactly as typed. No interpretation
// happens here beyond flag parsing; Validate turns a Flags into a Bundle.
type Flags struct {
	Input  string
	Output string

	Start    string // -ss
	Duration string // -t
	End      string // -to

	Title      string
	Mute       bool
	Fade       string
	FadeIn     string
	FadeOut    string
	Crop       string
	Height     string
	Framerate  string
	FixRGB     string
	Volume     string
	AudioForce bool

	YouTube  bool
	Hardware bool
	X264     bool
	X265     bool
	GIF      bool
	APNG     bool
	WebP     bool

	GIFPalette string
	GIFDither  string

	Passthrough string
	Debug       bool

	// CropFirst records whether -c appeared before -vh on the command line.
	// Geometric operations apply in literal user order.
	CropFirst bool
}

// ParseArgs parses the command line into a raw Flags struct. The output path
// is the single positional argument and must follow all flags.
func ParseArgs(argv []string) (*Flags, error) {
	f := &Flags{}

	fs := flag.NewFlagSet("ffauto", flag.ContinueOnError)
	fs.Usage = printUsage

	fs.StringVar(&f.Input, "i", "", "Input file")
	fs.StringVar(&f.Start, "ss", "0", "Start time")
	fs.StringVar(&f.Duration, "t", "", "Duration")
	fs.StringVar(&f.End, "to", "", "End position")

	fs.StringVar(&f.Title, "vt", "", "Video title")
	fs.StringVar(&f.Title, "title", "", "Video title")

	fs.BoolVar(&f.Mute, "m", false, "Mute audio")
	fs.BoolVar(&f.Mute, "mute", false, "Mute audio")
	fs.BoolVar(&f.AudioForce, "af", false, "Force convert audio")
	fs.BoolVar(&f.AudioForce, "audio-force", false, "Force convert audio")
	fs.StringVar(&f.Volume, "av", "", "Audio volume adjustment factor")
	fs.StringVar(&f.Volume, "volume", "", "Audio volume adjustment factor")

	fs.StringVar(&f.Fade, "f", "", "Fade in/out duration in seconds (overrides -fi and -fo)")
	fs.StringVar(&f.FadeIn, "fi", "", "Fade in duration in seconds")
	fs.StringVar(&f.FadeOut, "fo", "", "Fade out duration in seconds")

	fs.StringVar(&f.Crop, "c", "", "New video region as w:h:x:y")
	fs.StringVar(&f.Crop, "crop", "", "New video region as w:h:x:y")
	fs.StringVar(&f.Height, "vh", "", "New video height, trailing x = factor of source height")
	fs.StringVar(&f.Height, "height", "", "New video height, trailing x = factor of source height")
	fs.StringVar(&f.Framerate, "r", "", "New video frame rate")
	fs.StringVar(&f.Framerate, "framerate", "", "New video frame rate")
	fs.StringVar(&f.FixRGB, "fixrgb", "0", "Convert TV RGB range to PC RGB range (1=tag, 2=tag+convert)")

	fs.BoolVar(&f.YouTube, "yt", false, "YouTube mode")
	fs.BoolVar(&f.YouTube, "youtube", false, "YouTube mode")
	fs.BoolVar(&f.Hardware, "nv", false, "Hardware accelerated encoding (Nvidia)")
	fs.BoolVar(&f.Hardware, "hardware", false, "Hardware accelerated encoding (Nvidia)")
	fs.BoolVar(&f.X264, "x264", false, "Use libx264")
	fs.BoolVar(&f.X265, "x265", false, "Use libx265")
	fs.BoolVar(&f.GIF, "gif", false, "Create an animated GIF")
	fs.BoolVar(&f.APNG, "apng", false, "Create an animated PNG")
	fs.BoolVar(&f.WebP, "webp", false, "Create an animated WebP image")

	fs.StringVar(&f.GIFPalette, "gp", "", "Number of colors in the GIF palette")
	fs.StringVar(&f.GIFPalette, "gif-palette", "", "Number of colors in the GIF palette")
	fs.StringVar(&f.GIFDither, "gd", "", "GIF dither algorithm")
	fs.StringVar(&f.GIFDither, "gif-dither", "", "GIF dither algorithm")

	fs.StringVar(&f.Passthrough, "ff", "", "Passthrough arguments for ffmpeg")
	fs.StringVar(&f.Passthrough, "ffmpeg", "", "Passthrough arguments for ffmpeg")
	fs.BoolVar(&f.Debug, "debug", false, "Debug mode (print and confirm the synthesized command)")

	if err := fs.Parse(argv); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) != 1 {
		return nil, fmt.Errorf("%w: exactly one output path expected after the options, got %d", ErrInvalidArgument, len(rest))
	}
	f.Output = rest[0]

	f.CropFirst = flagIndex(argv, "c", "crop") < flagIndex(argv, "vh", "height")

	return f, nil
}

// flagIndex returns the position of the first occurrence of any alias on the
// command line, or the argv length when absent.
func flagIndex(argv []string, names ...string) int {
	for i, arg := range argv {
		trimmed := strings.TrimLeft(arg, "-")
		if trimmed == arg { // not a flag token
			continue
		}
		if eq := strings.IndexByte(trimmed, '='); eq >= 0 {
			trimmed = trimmed[:eq]
		}
		for _, name := range names {
			if trimmed == name {
				return i
			}
		}
	}
	return len(argv)
}

// printUsage prints help text.
func printUsage() {
	fmt.Fprintf(os.Stderr, `ffauto - compile editing intents into one ffmpeg command

USAGE:
  ffauto -i FILE [OPTIONS] OUT

  All options must come before the positional output path.

INPUT / TRIM:
  -i string          Input file (required)
  -ss time           Start time (default "0")
  -t time            Duration (mutually exclusive with -to)
  -to time           End position (mutually exclusive with -t)

  Times accept plain seconds ("90", "35.5") or clock form ("2:35", "1:02:03.5").

VIDEO:
  -vt, -title string   Set the title metadata field
  -c,  -crop w:h:x:y   Crop to a region
  -vh, -height value   New height; trailing x means a factor ("0.5x")
  -r,  -framerate fps  New frame rate
  -f  seconds          Fade in and out (overrides -fi/-fo)
  -fi seconds          Fade in
  -fo seconds          Fade out
  -fixrgb {0,1,2}      TV-to-PC RGB range: 1 tags streams, 2 also converts

  Crop and scale apply in the order they appear on the command line.

AUDIO:
  -m,  -mute           Drop the audio stream
  -av, -volume factor  Volume adjustment factor
  -af, -audio-force    Re-encode audio even without audio filters

FORMAT PROFILES (mutually exclusive):
  -yt, -youtube        YouTube-friendly H.264 output
  -nv, -hardware       Nvidia hardware accelerated path
  -x264, -x265         Explicit software codec
  -gif, -apng, -webp   Animated image output

  -gp, -gif-palette n      GIF palette size (2-256, only with -gif)
  -gd, -gif-dither name    GIF dither: bayer, heckbert, floyd_steinberg,
                           sierra2, sierra2_4a

OTHER:
  -ff, -ffmpeg "args"  Raw arguments appended verbatim after synthesis
  -debug               Print the synthesized command and wait for confirmation

EXAMPLES:
  ffauto -i in.mp4 -ss 2:35 -t 35.5 -vh 720 -fo 0.5 -vt "title" out.mp4
  ffauto -i clip.mkv -gif -gp 64 -r 15 -vh 0.5x out.gif

CONFIGURATION:
  Encoder tunables (CRF, preset, audio bitrate, GIF defaults) are read from
  ./ffauto.yaml, ~/.config/ffauto/config.yaml or /etc/ffauto/config.yaml.
`)
}
