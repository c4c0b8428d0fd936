package options

import (
	"errors"
	"testing"
)

// validate is a test helper running the full parse+validate gate.
func validate(t *testing.T, argv ...string) (*Bundle, error) {
	t.Helper()
	f, err := ParseArgs(argv)
	if err != nil {
		t.Fatalf("ParseArgs(%v) returned error: %v", argv, err)
	}
	return f.Validate(DefaultEncoding())
}

func TestValidate_TrimConflict(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{"Duration then position", []string{"-i", "in.mp4", "-t", "10", "-to", "20", "out.mp4"}},
		{"Position then duration", []string{"-i", "in.mp4", "-to", "20", "-t", "10", "out.mp4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validate(t, tt.argv...)
			if !errors.Is(err, ErrConflictingOptions) {
				t.Errorf("Expected ErrConflictingOptions, got %v", err)
			}
		})
	}
}

func TestValidate_TrimWindow(t *testing.T) {
	b, err := validate(t, "-i", "in.mp4", "-ss", "2:35", "-t", "35.5", "out.mp4")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.Trim.Start != 155 {
		t.Errorf("Start = %v; want 155", b.Trim.Start)
	}
	if b.Trim.End.Kind != TrimEndDuration || b.Trim.End.Seconds != 35.5 {
		t.Errorf("End = %+v; want duration 35.5", b.Trim.End)
	}

	b, err = validate(t, "-i", "in.mp4", "-ss", "10", "-to", "1:00", "out.mp4")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.Trim.End.Kind != TrimEndPosition || b.Trim.End.Seconds != 60 {
		t.Errorf("End = %+v; want position 60", b.Trim.End)
	}
}

func TestValidate_EndBeforeStart(t *testing.T) {
	_, err := validate(t, "-i", "in.mp4", "-ss", "60", "-to", "30", "out.mp4")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestValidate_ProfileConflicts(t *testing.T) {
	profiles := []string{"-yt", "-nv", "-x264", "-x265", "-gif", "-apng", "-webp"}

	for i, a := range profiles {
		for _, b := range profiles[i+1:] {
			t.Run(a+"_"+b, func(t *testing.T) {
				_, err := validate(t, "-i", "in.mp4", a, b, "out.mp4")
				if !errors.Is(err, ErrConflictingOptions) {
					t.Errorf("%s with %s: expected ErrConflictingOptions, got %v", a, b, err)
				}
			})
		}
	}
}

func TestValidate_SingleProfile(t *testing.T) {
	tests := []struct {
		flagName string
		profile  Profile
	}{
		{"-yt", ProfileYouTube},
		{"-nv", ProfileHardware},
		{"-x264", ProfileX264},
		{"-x265", ProfileX265},
		{"-gif", ProfileGIF},
		{"-apng", ProfileAPNG},
		{"-webp", ProfileWebP},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			b, err := validate(t, "-i", "in.mp4", tt.flagName, "out.mp4")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if b.Profile != tt.profile {
				t.Errorf("Profile = %q; want %q", b.Profile, tt.profile)
			}
		})
	}
}

func TestValidate_Height(t *testing.T) {
	b, err := validate(t, "-i", "in.mp4", "-vh", "0.5x", "out.mp4")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(b.Geometry) != 1 {
		t.Fatalf("Expected 1 geometry op, got %d", len(b.Geometry))
	}
	scale := b.Geometry[0].Scale
	if !scale.Relative || scale.Factor != 0.5 {
		t.Errorf("Scale = %+v; want relative factor 0.5", scale)
	}

	b, err = validate(t, "-i", "in.mp4", "-vh", "721", "out.mp4")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	scale = b.Geometry[0].Scale
	if scale.Relative || scale.Height != 721 {
		t.Errorf("Scale = %+v; want absolute height 721", scale)
	}
}

func TestValidate_HeightInvalid(t *testing.T) {
	for _, h := range []string{"0", "-720", "0x", "-0.5x", "abc", "x"} {
		t.Run(h, func(t *testing.T) {
			_, err := validate(t, "-i", "in.mp4", "-vh", h, "out.mp4")
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("-vh %s: expected ErrInvalidArgument, got %v", h, err)
			}
		})
	}
}

func TestValidate_CombinedFadeOverridesIndividual(t *testing.T) {
	b, err := validate(t, "-i", "in.mp4", "-f", "0.5", "-fi", "1", "out.mp4")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.Fade.In != 0.5 || b.Fade.Out != 0.5 {
		t.Errorf("Fade = %+v; want both 0.5", b.Fade)
	}
}

func TestValidate_PositiveNumbers(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{"Zero fade", []string{"-i", "in.mp4", "-f", "0", "out.mp4"}},
		{"Negative fade in", []string{"-i", "in.mp4", "-fi", "-1", "out.mp4"}},
		{"Zero volume", []string{"-i", "in.mp4", "-av", "0", "out.mp4"}},
		{"Negative framerate", []string{"-i", "in.mp4", "-r", "-30", "out.mp4"}},
		{"Non-numeric volume", []string{"-i", "in.mp4", "-av", "loud", "out.mp4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validate(t, tt.argv...)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestValidate_PaletteWithoutGIF(t *testing.T) {
	// -gp without -gif is a documented no-op, never an error.
	b, err := validate(t, "-i", "in.mp4", "-gp", "64", "out.mp4")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.GIFPalette != DefaultEncoding().GIFPalette {
		t.Errorf("GIFPalette = %d; want default %d", b.GIFPalette, DefaultEncoding().GIFPalette)
	}
}

func TestValidate_PaletteWithGIF(t *testing.T) {
	b, err := validate(t, "-i", "in.mp4", "-gif", "-gp", "64", "out.gif")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.GIFPalette != 64 {
		t.Errorf("GIFPalette = %d; want 64", b.GIFPalette)
	}

	_, err = validate(t, "-i", "in.mp4", "-gif", "-gp", "1000", "out.gif")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for -gp 1000, got %v", err)
	}
}

func TestValidate_Dither(t *testing.T) {
	b, err := validate(t, "-i", "in.mp4", "-gif", "-gd", "sierra2", "out.gif")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.GIFDither != "sierra2" {
		t.Errorf("GIFDither = %q; want sierra2", b.GIFDither)
	}

	_, err = validate(t, "-i", "in.mp4", "-gif", "-gd", "nope", "out.gif")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for bad dither, got %v", err)
	}
}

func TestValidate_HardwareSoftwareOnlyFilters(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{"Crop", []string{"-i", "in.mp4", "-nv", "-c", "640:480:0:0", "out.mp4"}},
		{"Framerate", []string{"-i", "in.mp4", "-nv", "-r", "30", "out.mp4"}},
		{"Full range convert", []string{"-i", "in.mp4", "-nv", "-fixrgb", "2", "out.mp4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validate(t, tt.argv...)
			if !errors.Is(err, ErrConflictingOptions) {
				t.Errorf("Expected ErrConflictingOptions, got %v", err)
			}
		})
	}

	// Fades and scaling have hardware paths and stay allowed.
	if _, err := validate(t, "-i", "in.mp4", "-nv", "-f", "0.5", "-vh", "720", "out.mp4"); err != nil {
		t.Errorf("Hardware with fade and scale should validate, got %v", err)
	}
}

func TestValidate_CropMalformed(t *testing.T) {
	for _, c := range []string{"640:480", "a:b:c:d", "640:480:0:0:0", "0:480:0:0", "640:-480:0:0"} {
		t.Run(c, func(t *testing.T) {
			_, err := validate(t, "-i", "in.mp4", "-c", c, "out.mp4")
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("-c %s: expected ErrInvalidArgument, got %v", c, err)
			}
		})
	}
}

func TestValidate_FixRGB(t *testing.T) {
	for _, v := range []string{"3", "-1", "full"} {
		t.Run(v, func(t *testing.T) {
			_, err := validate(t, "-i", "in.mp4", "-fixrgb", v, "out.mp4")
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("-fixrgb %s: expected ErrInvalidArgument, got %v", v, err)
			}
		})
	}

	b, err := validate(t, "-i", "in.mp4", "-fixrgb", "2", "out.mp4")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.Color != ColorRangeFull {
		t.Errorf("Color = %v; want ColorRangeFull", b.Color)
	}
}

func TestValidate_GeometryOrder(t *testing.T) {
	b, err := validate(t, "-i", "in.mp4", "-vh", "720", "-c", "640:480:0:0", "out.mp4")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(b.Geometry) != 2 {
		t.Fatalf("Expected 2 geometry ops, got %d", len(b.Geometry))
	}
	if b.Geometry[0].Kind != GeometryScale || b.Geometry[1].Kind != GeometryCrop {
		t.Errorf("Geometry order = [%v %v]; want [scale crop]", b.Geometry[0].Kind, b.Geometry[1].Kind)
	}
}

func TestValidate_MuteRecordsVolume(t *testing.T) {
	b, err := validate(t, "-i", "in.mp4", "-m", "-av", "0.5", "out.mp4")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !b.Audio.Mute {
		t.Error("Expected mute set")
	}
	if !b.Audio.VolumeSet {
		t.Error("Volume should still be recorded; mute wins downstream")
	}
}
