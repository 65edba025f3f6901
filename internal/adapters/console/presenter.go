// Package console renders job session views to a terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/batchblast/batchblast/internal/core"
	"github.com/batchblast/batchblast/internal/domain/model"
)

// Presenter writes each distinct view to w and publishes terminal views on Done.
type Presenter struct {
	mu   sync.Mutex
	w    io.Writer
	last string
	done chan model.SessionView
}

var _ core.Presenter = (*Presenter)(nil)

// NewPresenter constructs a Presenter that writes to w.
func NewPresenter(w io.Writer) *Presenter {
	return &Presenter{w: w, done: make(chan model.SessionView, 1)}
}

// Render prints view unless it is identical to the previous output.
// It never blocks; the session calls it while holding its lock.
func (p *Presenter) Render(view model.SessionView) {
	out := Format(view)

	p.mu.Lock()
	if out != p.last {
		p.last = out
		_, _ = io.WriteString(p.w, out)
	}
	p.mu.Unlock()

	if view.State.Phase.Terminal() {
		select {
		case p.done <- view:
		default:
		}
	}
}

// Done delivers views that reached a terminal phase. Only the oldest undelivered one is kept.
func (p *Presenter) Done() <-chan model.SessionView {
	return p.done
}

// Format renders view as plain text.
func Format(view model.SessionView) string {
	var b strings.Builder
	st := view.State

	fmt.Fprintf(&b, "[%s] %s", st.ConnectionStatus, phaseLabel(st.Phase))
	if st.Title != "" {
		fmt.Fprintf(&b, ": %s", st.Title)
	}
	b.WriteByte('\n')
	for _, line := range st.Description {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	if st.ErrorDetail != "" {
		fmt.Fprintf(&b, "  error: %s\n", st.ErrorDetail)
	}
	if st.SessionID != "" {
		fmt.Fprintf(&b, "  folder: %s\n", st.SessionID)
	}

	if len(view.Preview) > 0 {
		b.WriteString("Submitted sequences:\n")
		tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		for i, e := range view.Preview {
			fmt.Fprintf(tw, "  %d.\t%s\t%d bp\n", i+1, e.Title, len(e.Sequence))
		}
		_ = tw.Flush()
	}
	writeLocators(&b, "Downloads:", view.Downloads)
	writeLocators(&b, "Previews:", view.Previews)
	return b.String()
}

func writeLocators(b *strings.Builder, heading string, locs []model.Locator) {
	if len(locs) == 0 {
		return
	}
	b.WriteString(heading)
	b.WriteByte('\n')
	tw := tabwriter.NewWriter(b, 0, 4, 2, ' ', 0)
	for _, l := range locs {
		fmt.Fprintf(tw, "  %s\t%s\n", l.Artifact, l.URL)
	}
	_ = tw.Flush()
}

func phaseLabel(p model.Phase) string {
	switch p {
	case model.PhaseIdle:
		return "idle"
	case model.PhaseSubmitting:
		return "submitting"
	case model.PhaseInProgress:
		return "in progress"
	case model.PhaseComplete:
		return "complete"
	case model.PhaseError:
		return "error"
	default:
		return string(p)
	}
}
