package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"lampcode-go/services/config"
	"lampcode-go/services/lamp/anim"
)

var previewFlags struct {
	span   time.Duration
	step   time.Duration
	width  int
	height int
}

var previewCmd = &cobra.Command{
	Use:   "preview <effect[:k=v,...]>",
	Short: "Plot an effect's brightness and colour over time",
	Example: `  lampd preview sunrise:duration=5
  lampd preview breathe:cycle=3,min=20 --for 12s`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	f := previewCmd.Flags()
	f.DurationVar(&previewFlags.span, "for", 0, "how long to simulate (default: a finite effect's full run, else 20s)")
	f.DurationVar(&previewFlags.step, "step", 0, "sample period (default span/width)")
	f.IntVar(&previewFlags.width, "width", 72, "plot width")
	f.IntVar(&previewFlags.height, "height", 12, "plot height")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	profile, err := config.LoadProfile(s.Profile)
	if err != nil {
		return err
	}
	eff, p, err := anim.ParseSpec(args[0])
	if err != nil {
		return err
	}
	span := previewFlags.span
	if span <= 0 {
		span = defaultSpan(profile.Device, eff, p)
	}
	step := previewFlags.step
	if step <= 0 {
		step = max(span/time.Duration(max(previewFlags.width, 1)), 10*time.Millisecond)
	}
	samples := anim.Simulate(profile.Device, eff, p, span, step)
	fmt.Fprintln(cmd.OutOrStdout(), renderPreview(eff, samples, previewFlags.width, previewFlags.height))
	return nil
}

// defaultSpan covers a ramp's whole duration, or a few loops otherwise.
func defaultSpan(cfg config.Device, eff anim.Effect, p anim.Params) time.Duration {
	if eff != anim.Sunrise && eff != anim.Sunset {
		return 20 * time.Second
	}
	minutes := cfg.SunriseMinutes
	if p.Duration != nil {
		minutes = *p.Duration
	}
	return time.Duration(minutes)*time.Minute + time.Second
}

func renderPreview(eff anim.Effect, samples []anim.Sample, width, height int) string {
	if len(samples) < 2 {
		return "not enough samples"
	}
	var bri, r, g, b []float64
	for _, s := range samples {
		bri = append(bri, float64(s.Brightness))
		r = append(r, float64(s.Color.R)*100/255)
		g = append(g, float64(s.Color.G)*100/255)
		b = append(b, float64(s.Color.B)*100/255)
	}
	last := samples[len(samples)-1]
	var buf strings.Builder
	buf.WriteString(asciigraph.PlotMany([][]float64{bri, r, g, b},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.SeriesColors(asciigraph.Default, asciigraph.Red, asciigraph.Green, asciigraph.Blue),
		asciigraph.Caption(fmt.Sprintf("%s over %s: brightness, R, G, B (%%)", eff, last.At))))
	fmt.Fprintf(&buf, "\nend: power=%t brightness=%d color=%s progress=%d",
		last.Power, last.Brightness, last.Color, last.Progress)
	return buf.String()
}
