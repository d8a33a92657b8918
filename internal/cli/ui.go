package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/phanxgames/canopy"
)

var (
	colorCyan   = lipgloss.Color("36")  // Teal - headings
	colorGreen  = lipgloss.Color("35")  // Green - start
	colorYellow = lipgloss.Color("220") // Amber - end
	colorDim    = lipgloss.Color("240") // Dim gray - borders, progress
)

var (
	styleHeader   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	styleCell     = lipgloss.NewStyle().Padding(0, 1)
	styleStart    = styleCell.Foreground(colorGreen)
	styleEnd      = styleCell.Foreground(colorYellow)
	styleProgress = styleCell.Foreground(colorDim)
	styleSuccess  = lipgloss.NewStyle().Foreground(colorGreen)
)

const iconSuccess = "✓"

// timelineRow is one queue event observed at a virtual time.
type timelineRow struct {
	At    time.Duration
	Layer string
	Event canopy.QueueEvent
}

// printTimeline renders rows as a bordered table.
func printTimeline(w io.Writer, rows []timelineRow) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Time", "Layer", "Queue", "Member", "Priority", "State").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			switch rows[row].Event.State {
			case canopy.EventStart:
				return styleStart
			case canopy.EventEnd:
				return styleEnd
			case canopy.EventProcess:
				return styleProgress
			}
			return styleCell
		})
	for _, r := range rows {
		state := r.Event.State
		if state == canopy.EventProcess {
			state = fmt.Sprintf("%s %3.0f%%", state, r.Event.Progress*100)
		}
		t.Row(
			r.At.String(),
			r.Layer,
			shortID(r.Event.Queue),
			shortID(r.Event.ID),
			strconv.Itoa(r.Event.Priority),
			state,
		)
	}
	fmt.Fprintln(w, t.Render())
}

// shortID trims generated ids to their first eight characters.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}
