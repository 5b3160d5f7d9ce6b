package state

import (
	"fmt"
	"strings"

	"github.com/madkinsz/jrsonnet/internal/errors"
)

// FormatTrace renders err's accumulated frames the way cmd/jsonnet's
// `--trace-format` flag selects (spec §6 "set_trace_format"; names and
// shapes carried over from the original implementation's trace.rs
// CompactFormat/ExplainingFormat). maxTrace truncates to the innermost N
// frames; 0 means unbounded, matching errors.Error.Format.
//
// Compact lists `filename:line:column` per frame, four-space indented.
// Explaining additionally prints each frame's description, since this
// core has no access to original source text to annotate (the AST
// carries no source spans beyond Location) — a host with the source
// available may re-render richer output itself from err.Frames.
func FormatTrace(err *errors.Error, format TraceFormat, maxTrace int) string {
	var sb strings.Builder
	sb.WriteString(err.Kind.String())
	sb.WriteString(": ")
	sb.WriteString(err.Message)

	frames := err.Frames
	if len(frames) == 0 {
		return sb.String()
	}
	truncated := 0
	if maxTrace > 0 && len(frames) > maxTrace {
		truncated = len(frames) - maxTrace
		frames = frames[:maxTrace]
	}

	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		sb.WriteByte('\n')
		switch format {
		case TraceFormatExplaining:
			sb.WriteString(fmt.Sprintf("    %s\n\tat %s", f.Desc, f.Loc))
		default:
			sb.WriteString("    at ")
			sb.WriteString(f.Loc.String())
		}
	}
	if truncated > 0 {
		sb.WriteString(fmt.Sprintf("\n    ... %d more frame(s) elided", truncated))
	}
	return sb.String()
}
