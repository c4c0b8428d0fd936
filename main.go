package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"ffauto/command"
	"ffauto/ffmpeg"
	"ffauto/ffprobe"
	"ffauto/options"
)

// Exit codes: 0 success, 2 validation failure, otherwise the engine's own
// exit code so calling scripts can tell bad input from a failed transcode.
const exitValidation = 2

func main() {
	os.Exit(run())
}

func run() int {
	enc, err := options.LoadEncoding()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ffauto: %v\n", err)
		return exitValidation
	}

	flags, err := options.ParseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "ffauto: %v\n", err)
		return exitValidation
	}

	bundle, err := flags.Validate(enc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ffauto: %v\n", err)
		return exitValidation
	}

	level := zerolog.InfoLevel
	if bundle.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	info, err := ffprobe.Probe(bundle.Input)
	if err != nil {
		logger.Error().Err(err).Str("input", bundle.Input).Msg("probe failed")
		return 1
	}
	if !info.DurationKnown {
		logger.Warn().Msg("source reports no duration; -t and -to may not do what you expect")
	}
	logger.Debug().
		Int("width", info.Width).
		Int("height", info.Height).
		Float64("duration", info.Duration).
		Float64("frame_rate", info.FrameRate).
		Msg("probed input")

	palettePath := ""
	if bundle.Profile == options.ProfileGIF {
		palette, err := os.CreateTemp("", "palette_*.png")
		if err != nil {
			logger.Error().Err(err).Msg("failed to create palette temp file")
			return 1
		}
		palette.Close()
		palettePath = palette.Name()
		defer os.Remove(palettePath)
	}

	plan, err := command.Synthesize(bundle, enc, info, palettePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ffauto: %v\n", err)
		return exitValidation
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &ffmpeg.Runner{Logger: logger, Confirm: bundle.Debug}
	for _, c := range plan.Commands {
		logger.Debug().Str("command", c.CommandLine()).Msg("running")
		if err := runner.Run(ctx, c); err != nil {
			var engineErr *ffmpeg.EngineError
			if errors.As(err, &engineErr) {
				logger.Error().Err(err).Msg("transcode failed")
				return engineErr.ExitCode
			}
			logger.Error().Err(err).Msg("transcode failed")
			return 1
		}
	}

	return 0
}
