package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jmylchreest/decodechain/internal/decoder"
	"github.com/jmylchreest/decodechain/internal/insights"
	"github.com/jmylchreest/decodechain/pkg/format"
)

// theme holds the styles used for terminal output. Colors are dropped
// automatically when w is not a terminal.
type theme struct {
	title    lipgloss.Style
	name     lipgloss.Style
	subtle   lipgloss.Style
	selected lipgloss.Style
	avail    lipgloss.Style
	unavail  lipgloss.Style
	badge    lipgloss.Style
}

func newTheme(w io.Writer) theme {
	r := lipgloss.NewRenderer(w)
	return theme{
		title:    r.NewStyle().Bold(true),
		name:     r.NewStyle().Bold(true),
		subtle:   r.NewStyle().Foreground(lipgloss.Color("8")),
		selected: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		avail:    r.NewStyle().Foreground(lipgloss.Color("11")),
		unavail:  r.NewStyle().Foreground(lipgloss.Color("9")),
		badge:    r.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

func (t theme) stateIcon(s decoder.FallbackState) string {
	switch s {
	case decoder.StateSelected:
		return t.selected.Render("✓")
	case decoder.StateAvailable:
		return t.avail.Render("●")
	case decoder.StateUnavailable:
		return t.unavail.Render("✗")
	default:
		return t.subtle.Render("?")
	}
}

func (t theme) kindBadge(hardware bool) string {
	if hardware {
		return t.badge.Render("[hw]")
	}
	return t.subtle.Render("[sw]")
}

// renderChain writes the pipeline, one line per decoder and the known parts
// of the format chain:
//
//	✓ avdec_mjpeg [sw] FFmpeg MJPEG (Software) - Selected
func renderChain(w io.Writer, title string, st insights.State) {
	t := newTheme(w)

	fmt.Fprintln(w, t.title.Render(title))
	fmt.Fprintln(w, t.subtle.Render(st.PipelineText()))
	if len(st.DecoderChain) == 0 {
		fmt.Fprintln(w, t.subtle.Render("no decoder needed"))
	}
	for i, row := range st.ChainRows() {
		s := st.DecoderChain[i]
		fmt.Fprintf(w, "%s %s %s %s\n",
			t.stateIcon(s.State), t.name.Render(row.Label), t.kindBadge(s.Hardware), row.Value)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, t.title.Render("Format chain"))
	for _, row := range st.FormatChain.Rows() {
		if row.Value == "" {
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", t.subtle.Render(row.Label+":"), row.Value)
	}
}

// renderSummary writes the installed decoder count after a catalog check.
func renderSummary(w io.Writer, installed, total int, queries int64) {
	t := newTheme(w)
	pct := 0.0
	if total > 0 {
		pct = float64(installed) / float64(total) * 100
	}
	fmt.Fprintf(w, "%s of %s decoders installed (%s), %s registry queries\n",
		t.name.Render(format.Number(int64(installed))), format.Number(int64(total)),
		format.Percentage(pct, 1), format.Number(queries))
}

// renderCatalog writes a numbered list of a catalog's decoders.
func renderCatalog(w io.Writer, cat decoder.Catalog, avail decoder.Availability) {
	t := newTheme(w)
	fmt.Fprintf(w, "%s %s\n", t.title.Render(cat.Codec.DisplayName()), t.subtle.Render("("+cat.Codec.String()+")"))
	for i, def := range cat.Decoders {
		line := fmt.Sprintf("  %d. %s %s %s", i+1, t.name.Render(decoder.AsElementDescriptor(def)),
			t.kindBadge(def.Hardware), def.Description)
		if avail != nil {
			state := decoder.StateUnavailable
			if avail.At(i) {
				state = decoder.StateAvailable
			}
			line = t.stateIcon(state) + line
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

// writeJSON encodes v to w, indented when pretty is set.
func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return nil
}
