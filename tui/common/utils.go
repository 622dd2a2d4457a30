package common

import (
	"fmt"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// RelativeTime renders a timestamp the way feeds do: recent things in
// coarse units, older ones as a date. A zero time (the server timestamp
// has not round-tripped yet) renders as "now".
func RelativeTime(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "now"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
	return t.Format("Jan 2, 2006")
}

// Clip truncates s to the given display width, appending an ellipsis
// when something was cut. Width is measured in terminal cells, not
// bytes, so wide runes and ANSI sequences are handled correctly.
func Clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return ansi.Cut(s, 0, width-1) + "…"
}

// avatarGlyphs maps the fixed avatar set to terminal glyphs.
var avatarGlyphs = map[string]string{
	"avatar_1": "●",
	"avatar_2": "◆",
	"avatar_3": "▲",
	"avatar_4": "■",
}

// AvatarGlyph renders an avatar reference as a single glyph. Uploaded
// photo URLs cannot be shown in a terminal, so they get a camera marker.
func AvatarGlyph(ref string) string {
	if g, ok := avatarGlyphs[ref]; ok {
		return g
	}
	if ref == "" {
		return avatarGlyphs["avatar_1"]
	}
	return "◉"
}
