package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/kamilpajak/leafcheck/pkg/advisory"
	"github.com/kamilpajak/leafcheck/pkg/models"
)

const barWidth = 24

// PrintDiagnosis writes the verdict header to stderr and the diagnosis body
// to stdout.
func PrintDiagnosis(stderr, stdout io.Writer, m *models.DisplayModel) {
	dim := color.New(color.FgHiBlack)
	bold := color.New(color.Bold)

	fmt.Fprintln(stderr)
	_, _ = dim.Fprintln(stderr, "  "+strings.Repeat("━", 50))
	printBadge(stderr, m.Badge)
	printConfidenceBar(stderr, m.Prediction.Primary.Confidence, m.Risk)
	fmt.Fprintln(stderr)

	_, _ = bold.Fprintln(stdout, m.Prediction.Primary.DisplayLabel)
	if m.ImageURL != "" {
		_, _ = dim.Fprintf(stdout, "Image: %s\n", m.ImageURL)
	}
	fmt.Fprintln(stdout)

	if len(m.Prediction.Alternatives) > 0 {
		_, _ = bold.Fprintln(stdout, "OTHER POSSIBILITIES")
		for _, alt := range m.Prediction.Alternatives {
			fmt.Fprintf(stdout, "  %-40s %5.1f%%\n", alt.DisplayLabel, alt.Confidence)
		}
		fmt.Fprintln(stdout)
	}

	if m.Advisory == nil {
		_, _ = dim.Fprintln(stdout, "No treatment advisory was returned for this diagnosis.")
		return
	}
	printAdvisory(stdout, m.Advisory)
}

func printBadge(w io.Writer, b models.Badge) {
	if b.Healthy {
		_, _ = color.New(color.FgGreen, color.Bold).Fprintf(w, "  ✓ %s\n", b.Text)
		return
	}
	_, _ = color.New(color.FgRed, color.Bold).Fprintf(w, "  ✗ %s\n", b.Text)
}

func printConfidenceBar(w io.Writer, confidence float64, risk models.Risk) {
	filled := int(confidence * barWidth / 100)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	var barColor *color.Color
	switch {
	case confidence >= 80:
		barColor = color.New(color.FgGreen)
	case confidence >= 40:
		barColor = color.New(color.FgYellow)
	default:
		barColor = color.New(color.FgRed)
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(w, "  Confidence: %.1f%% ", confidence)
	_, _ = barColor.Fprint(w, bar)
	dim := color.New(color.FgHiBlack)
	_, _ = dim.Fprintf(w, " (%s risk)\n", strings.ToLower(string(risk)))
}

func printAdvisory(w io.Writer, v *models.AdvisoryView) {
	for _, s := range advisory.Sections {
		printSection(w, s.Title(), v.Bulleted(s))
	}
}

func printSection(w io.Writer, title string, body advisory.Formatted) {
	bold := color.New(color.Bold)
	_, _ = bold.Fprintln(w, strings.ToUpper(title))
	if body.IsList() {
		for _, p := range body.Points {
			fmt.Fprintf(w, "  • %s\n", p)
		}
	} else {
		fmt.Fprintln(w, body.Text)
	}
	fmt.Fprintln(w)
}
