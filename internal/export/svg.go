package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// SVG renders the contours of r as filled paths through the pixel centres.
// Holes are drawn into their component's path with the even-odd rule.
func SVG(r *blob.Result, color string) (string, error) {
	var sb strings.Builder
	if err := WriteSVG(&sb, r, color); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteSVG writes the SVG document for r to w.
func WriteSVG(w io.Writer, r *blob.Result, color string) error {
	if color == "" {
		color = "#000000"
	}
	fmt.Fprintf(w, `<?xml version="1.0" standalone="no"?>
<svg version="1.1" xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<g fill="%s" fill-rule="evenodd" stroke="none">%s`,
		r.Width, r.Height, r.Width, r.Height, color, "\n")

	byLabel := map[int][]blob.Contour{}
	var order []int
	for _, c := range r.Contours {
		if _, ok := byLabel[c.Label]; !ok {
			order = append(order, c.Label)
		}
		byLabel[c.Label] = append(byLabel[c.Label], c)
	}

	for _, label := range order {
		fmt.Fprintf(w, `<path data-label="%d" d="`, label)
		for i, c := range byLabel[label] {
			if i > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprint(w, svgPath(c.Points))
		}
		fmt.Fprintln(w, `"/>`)
	}
	_, err := fmt.Fprintln(w, `</g></svg>`)
	return err
}

func svgPath(points trace.Contour) string {
	if len(points) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, p := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&sb, "%s%g %g ", cmd, float64(p.X)+0.5, float64(p.Y)+0.5)
	}
	sb.WriteString("Z")
	return sb.String()
}
