package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/multialbum/internal/logging"
	"github.com/handiism/multialbum/internal/renumber"
	"github.com/schollz/progressbar/v3"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8DADC"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
)

// Reporter writes progress events to a writer.
//
// On a terminal each phase gets a progress bar; otherwise every step is
// printed as "<label>: n of N" and each renumbered file gets its own line.
type Reporter struct {
	out     io.Writer
	verbose bool
	styled  bool
	bars    bool

	mu    sync.Mutex
	bar   *progressbar.ProgressBar
	phase renumber.Phase
}

// NewReporter creates a Reporter. Styling and bars are enabled when out
// is a terminal.
func NewReporter(out io.Writer, verbose bool) *Reporter {
	tty := logging.IsTerminal(out)
	return &Reporter{out: out, verbose: verbose, styled: tty, bars: tty}
}

// Handle renders one event. It is safe to pass as a progress callback.
func (r *Reporter) Handle(event renumber.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.Level == renumber.LevelVerbose && !r.showVerbose(event) {
		if event.IsStep() {
			r.step(event)
		}
		return
	}

	r.clearBar()
	r.println(r.render(event.Level, event.Message))
	if event.IsStep() {
		r.step(event)
	}
}

// showVerbose reports whether a verbose event is printed. Without a bar,
// the per-file renumber lines are always shown.
func (r *Reporter) showVerbose(event renumber.ProgressEvent) bool {
	return r.verbose || (!r.bars && event.Phase == renumber.PhaseRenumber)
}

// Finish completes any bar still on screen.
func (r *Reporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeBar()
}

func (r *Reporter) step(event renumber.ProgressEvent) {
	label := StepLabel(event.Phase)
	if !r.bars {
		r.println(fmt.Sprintf("%s: %d of %d", label, event.Current, event.Total))
		return
	}

	if r.bar == nil || r.phase != event.Phase {
		r.closeBar()
		r.phase = event.Phase
		r.bar = progressbar.NewOptions(event.Total,
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionSetDescription(label),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetPredictTime(false),
		)
	}
	_ = r.bar.Set(event.Current)
	if event.Current >= event.Total {
		r.closeBar()
	}
}

func (r *Reporter) clearBar() {
	if r.bar != nil {
		_ = r.bar.Clear()
	}
}

func (r *Reporter) closeBar() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	fmt.Fprintln(r.out)
	r.bar = nil
}

func (r *Reporter) println(s string) {
	fmt.Fprintln(r.out, s)
}

func (r *Reporter) render(level renumber.ProgressLevel, msg string) string {
	var style lipgloss.Style
	prefix := "•"
	switch level {
	case renumber.LevelError:
		style = errorStyle
		prefix = "✗"
	case renumber.LevelWarning:
		style = warningStyle
		prefix = "!"
	case renumber.LevelSuccess:
		style = successStyle
		prefix = "✓"
	case renumber.LevelInfo:
		style = infoStyle
		prefix = "›"
	default:
		style = dimStyle
	}
	line := prefix + " " + msg
	if !r.styled {
		return line
	}
	return style.Render(line)
}

// StepLabel names the counter shown for a phase.
func StepLabel(p renumber.Phase) string {
	switch p {
	case renumber.PhaseCopy:
		return "Copied"
	case renumber.PhaseRenumber:
		return "Metadata Updated"
	case renumber.PhaseVerify:
		return "Verified"
	default:
		return "Done"
	}
}
