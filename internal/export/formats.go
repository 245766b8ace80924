package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

var title = cases.Title(language.English)

func formatJSON(v any) (string, error) {
	bts, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bts) + "\n", nil
}

func formatYAML(v any) (string, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeCSV(rows [][]string) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)
	if err := writer.WriteAll(rows); err != nil {
		return "", err
	}
	return output.String(), nil
}

// formatBlobCSV writes one row per contour point.
func formatBlobCSV(docs []Document) (string, error) {
	rows := [][]string{{"file", "contour", "label", "polarity", "index", "x", "y"}}
	for _, doc := range docs {
		if doc.Result == nil {
			continue
		}
		for ci, c := range doc.Result.Contours {
			for pi, p := range c.Points {
				rows = append(rows, []string{
					doc.File,
					strconv.Itoa(ci),
					strconv.Itoa(c.Label),
					c.Polarity.String(),
					strconv.Itoa(pi),
					strconv.Itoa(p.X),
					strconv.Itoa(p.Y),
				})
			}
		}
	}
	return writeCSV(rows)
}

func formatTraceCSV(doc TraceDocument) (string, error) {
	rows := [][]string{{"index", "x", "y"}}
	for i, p := range doc.Points {
		rows = append(rows, []string{strconv.Itoa(i), strconv.Itoa(p.X), strconv.Itoa(p.Y)})
	}
	return writeCSV(rows)
}

func formatBlobText(docs []Document) string {
	var output strings.Builder
	for i, doc := range docs {
		if i > 0 {
			output.WriteString("\n")
		}
		if doc.File != "" {
			output.WriteString(fmt.Sprintf("# %s\n", doc.File))
		}
		if doc.Error != "" {
			output.WriteString(fmt.Sprintf("error: %s\n", doc.Error))
			continue
		}
		if doc.Result == nil {
			continue
		}
		r := doc.Result
		output.WriteString(fmt.Sprintf("%dx%d, %d components, %d contours\n",
			r.Width, r.Height, r.Components, len(r.Contours)))
		for _, c := range r.Contours {
			output.WriteString(fmt.Sprintf("%s %d: %d points, length %d, turns %+d, area %.1f, bounds (%d,%d)-(%d,%d)\n",
				title.String(c.Polarity.String()), c.Label, len(c.Points), c.Length, c.Turns, c.Area,
				c.Bounds.MinX, c.Bounds.MinY, c.Bounds.MaxX, c.Bounds.MaxY))
		}
	}
	return output.String()
}

func formatTraceText(doc TraceDocument) string {
	var output strings.Builder
	if doc.File != "" {
		output.WriteString(fmt.Sprintf("# %s\n", doc.File))
	}
	state := "stopped"
	if doc.Complete {
		state = "complete"
	}
	output.WriteString(fmt.Sprintf("%s contour: start %s, stop %s, length %d, turns %+d, %s\n",
		title.String(polarityOf(doc.Turns).String()), doc.Start, doc.Stop, doc.Length, doc.Turns, state))
	output.WriteString(pointList(doc.Points))
	output.WriteString("\n")
	return output.String()
}

func pointList(points trace.Contour) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

// Summary is a one-line description of a blob result for logs.
func Summary(r *blob.Result) string {
	if r == nil {
		return "no result"
	}
	return fmt.Sprintf("%d components, %d outer, %d holes", r.Components, len(r.Outer()), len(r.Holes()))
}
