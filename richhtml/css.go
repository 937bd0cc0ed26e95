package richhtml

import (
	"fmt"
	"strconv"
	"strings"

	"9fans.net/go/draw"

	"github.com/rjkroege/richtext/rich"
)

const misspelledClass = "misspelled"

// styleCSS returns the inline CSS for the attributes of st that have no
// element of their own: colors, size and explicit cancellation.
func styleCSS(st rich.Style) string {
	var decls []string
	add := func(prop, val string) {
		decls = append(decls, prop+":"+val)
	}
	if st.Color != 0 {
		add("color", cssColor(st.Color))
	}
	if st.Background != 0 {
		add("background-color", cssColor(st.Background))
	}
	if st.Scale != 0 && st.Heading == 0 {
		add("font-size", strconv.FormatFloat(st.Scale, 'g', -1, 64)+"em")
	}
	if st.Bold == rich.Off {
		add("font-weight", "normal")
	}
	if st.Italic == rich.Off {
		add("font-style", "normal")
	}
	if st.Underline == rich.Off || st.Strikethrough == rich.Off {
		add("text-decoration", "none")
	}
	return strings.Join(decls, ";")
}

func cssColor(c draw.Color) string {
	if c == rich.NoColor {
		return "initial"
	}
	return fmt.Sprintf("#%06x", uint32(c)>>8)
}

// parseCSS applies the declarations of an inline style attribute that
// styleCSS writes, plus the element-free forms of bold, italic and the
// text decorations. Unknown declarations are ignored.
func parseCSS(css string) rich.Style {
	var st rich.Style
	for _, decl := range strings.Split(css, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.ToLower(strings.TrimSpace(val))
		switch prop {
		case "color":
			if c, ok := parseColor(val); ok {
				st.Color = c
			}
		case "background-color", "background":
			if c, ok := parseColor(val); ok {
				st.Background = c
			}
		case "font-size":
			if f, err := strconv.ParseFloat(strings.TrimSuffix(val, "em"), 64); err == nil && f > 0 {
				st.Scale = f
			}
		case "font-weight":
			switch val {
			case "normal", "400":
				st.Bold = rich.Off
			case "bold", "bolder", "600", "700", "800", "900":
				st.Bold = rich.On
			}
		case "font-style":
			switch val {
			case "normal":
				st.Italic = rich.Off
			case "italic", "oblique":
				st.Italic = rich.On
			}
		case "text-decoration", "text-decoration-line":
			switch {
			case val == "none":
				st.Underline = rich.Off
				st.Strikethrough = rich.Off
			case strings.Contains(val, "underline"):
				st.Underline = rich.On
			case strings.Contains(val, "line-through"):
				st.Strikethrough = rich.On
			}
		}
	}
	return st
}

// parseColor parses #rgb, #rrggbb and the keywords that reset a color.
func parseColor(val string) (draw.Color, bool) {
	switch val {
	case "initial", "inherit", "unset":
		return rich.NoColor, true
	}
	hex, ok := strings.CutPrefix(val, "#")
	if !ok {
		return 0, false
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, false
	}
	return draw.Color(uint32(v)<<8 | 0xFF), true
}
