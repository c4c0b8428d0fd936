package ffprobe

import (
	"math"
	"testing"
)

func TestParseOutput(t *testing.T) {
	data := []byte(`{
		"streams": [
			{
				"width": 1920,
				"height": 1080,
				"duration": "120.500000",
				"r_frame_rate": "30000/1001"
			}
		]
	}`)

	info, err := parseOutput(data)
	if err != nil {
		t.Fatalf("parseOutput returned error: %v", err)
	}

	if info.Width != 1920 || info.Height != 1080 {
		t.Errorf("Geometry = %dx%d; want 1920x1080", info.Width, info.Height)
	}
	if info.Duration != 120.5 {
		t.Errorf("Duration = %v; want 120.5", info.Duration)
	}
	if !info.DurationKnown {
		t.Error("Expected DurationKnown true")
	}
	if math.Abs(info.FrameRate-29.97) > 0.01 {
		t.Errorf("FrameRate = %v; want ~29.97", info.FrameRate)
	}
}

func TestParseOutput_MissingDuration(t *testing.T) {
	// Some WEBM files report no stream duration.
	data := []byte(`{
		"streams": [
			{"width": 640, "height": 360, "r_frame_rate": "30/1"}
		]
	}`)

	info, err := parseOutput(data)
	if err != nil {
		t.Fatalf("parseOutput returned error: %v", err)
	}

	if info.DurationKnown {
		t.Error("Expected DurationKnown false")
	}
	if info.Duration != FallbackDuration {
		t.Errorf("Duration = %v; want fallback %v", info.Duration, FallbackDuration)
	}
	if info.FrameRate != 30 {
		t.Errorf("FrameRate = %v; want 30", info.FrameRate)
	}
}

func TestParseOutput_NoStreams(t *testing.T) {
	if _, err := parseOutput([]byte(`{"streams": []}`)); err == nil {
		t.Fatal("Expected error for missing video stream, got nil")
	}
	if _, err := parseOutput([]byte(`not json`)); err == nil {
		t.Fatal("Expected error for invalid JSON, got nil")
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
		ok       bool
	}{
		{"30/1", 30, true},
		{"60", 60, true},
		{"24000/1001", 23.976023976023978, true},
		{"30/0", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFrameRate(tt.in)
			if tt.ok && (err != nil || got != tt.expected) {
				t.Errorf("parseFrameRate(%q) = %v, %v; want %v", tt.in, got, err, tt.expected)
			}
			if !tt.ok && err == nil {
				t.Errorf("parseFrameRate(%q) expected error", tt.in)
			}
		})
	}
}
