// Package ffprobe extracts the few source-stream facts the option compiler
// needs: frame geometry, duration and frame rate of the first video stream.
package ffprobe

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FallbackDuration is assumed when the container reports no duration (seen
// with some WEBM files). Fade-window checks are skipped in that case.
const FallbackDuration = 1000.0

// Info holds the probed facts about the first video stream.
type Info struct {
	Width         int
	Height        int
	Duration      float64
	DurationKnown bool
	FrameRate     float64
}

// stream mirrors the ffprobe JSON for the selected entries.
type stream struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Duration   string `json:"duration,omitempty"`
	RFrameRate string `json:"r_frame_rate"`
}

type probeOutput struct {
	Streams []stream `json:"streams"`
}

// Probe runs ffprobe against the input file and returns the parsed stream
// facts.
func Probe(input string) (*Info, error) {
	args := []string{
		"-i", input,
		"-select_streams", "v:0",
		"-hide_banner",
		"-print_format", "json",
		"-show_entries", "stream=width,height,duration,r_frame_rate",
	}

	out, err := exec.Command("ffprobe", args...).Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseOutput(out)
}

// parseOutput decodes the ffprobe JSON. Split out from Probe so the decode
// logic is testable without a media file.
func parseOutput(data []byte) (*Info, error) {
	var probed probeOutput
	if err := json.Unmarshal(data, &probed); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(probed.Streams) == 0 {
		return nil, fmt.Errorf("no video stream found in ffprobe output")
	}

	s := probed.Streams[0]
	info := &Info{Width: s.Width, Height: s.Height}

	rate, err := parseFrameRate(s.RFrameRate)
	if err != nil {
		return nil, err
	}
	info.FrameRate = rate

	if s.Duration == "" {
		info.Duration = FallbackDuration
		return info, nil
	}

	duration, err := strconv.ParseFloat(s.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse duration %q: %w", s.Duration, err)
	}
	info.Duration = duration
	info.DurationKnown = true
	return info, nil
}

// parseFrameRate parses the r_frame_rate field, either a plain number or a
// "num/den" ratio like "30000/1001".
func parseFrameRate(s string) (float64, error) {
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, fmt.Errorf("failed to parse frame rate %q", s)
		}
		return n / d, nil
	}

	rate, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse frame rate %q: %w", s, err)
	}
	return rate, nil
}
