// Package command synthesizes validated options, filter stages and format
// profiles into final ffmpeg argument lists.
package command

import "strings"

// Compiled is one fully-synthesized ffmpeg invocation. Immutable once
// produced; the execution shim consumes it without further interpretation.
type Compiled struct {
	Args       []string
	OutputPath string
	// Note is a short progress line printed before the run.
	Note string
}

// CommandLine renders the invocation for diagnostics.
func (c Compiled) CommandLine() string {
	return "ffmpeg " + strings.Join(c.Args, " ")
}

// Plan is the ordered list of invocations for one compile. A single command
// for most outputs; the animated-GIF profile produces a dependent two-pass
// plan (palette generation, then the paletted encode).
type Plan struct {
	Commands []Compiled
}
