package canopy

import (
	"encoding/json"
	"fmt"
	"time"
)

// FrameDuration is the frame step scripts advance by between actions.
const FrameDuration = time.Second / 60

// scriptStep represents a single action in an automation script.
type scriptStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Ms     float64 `json:"ms,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// scriptFile is the top-level JSON structure for a script.
type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// SnapshotFunc captures the chart under a label. The CLI writes an SVG,
// ebitenview writes a PNG.
type SnapshotFunc func(label string) error

// ScriptInput receives the pointer input a script injects. Scene
// implements it; so does the svg backend's hit tester.
type ScriptInput interface {
	InjectClick(x, y float64)
	InjectMove(x, y float64)
	PendingInput() int
	Update()
}

// Script sequences time advances, injected pointer input, redraws and
// snapshots against a chart. Each Step call is one frame.
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON script of the form
//
//	{"steps": [{"action": "advance", "ms": 600}, {"action": "snapshot", "label": "settled"}]}
//
// Actions: advance (ms), wait (frames), click, hover (x, y), redraw,
// snapshot (label).
func LoadScript(data []byte) (*Script, error) {
	var f scriptFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range f.Steps {
		switch st.Action {
		case "advance", "wait", "click", "hover", "redraw", "snapshot":
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// Done reports whether every step has executed.
func (r *Script) Done() bool {
	return r.done
}

// Step advances the script by one frame. It waits for injected input to
// drain and for wait frames to elapse before running the next action.
func (r *Script) Step(c *Chart, s ScriptInput, snap SnapshotFunc) error {
	if r.done {
		return nil
	}
	if s.PendingInput() > 0 {
		return nil
	}
	if r.waitCount > 0 {
		r.waitCount--
		return nil
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return nil
	}

	st := r.steps[r.cursor]
	r.cursor++

	var err error
	switch st.Action {
	case "advance":
		c.Tick(time.Duration(st.Ms * float64(time.Millisecond)))
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "click":
		s.InjectClick(st.X, st.Y)
	case "hover":
		s.InjectMove(st.X, st.Y)
	case "redraw":
		c.Draw()
	case "snapshot":
		if snap != nil {
			err = snap(st.Label)
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && s.PendingInput() == 0 {
		r.done = true
	}
	return err
}

// Run drives the script to completion headlessly, ticking the chart by
// FrameDuration and updating the input once per frame.
func (r *Script) Run(c *Chart, s ScriptInput, snap SnapshotFunc) error {
	for !r.done {
		c.Tick(FrameDuration)
		s.Update()
		if err := r.Step(c, s, snap); err != nil {
			return err
		}
	}
	// Let input queued by the final step land.
	for s.PendingInput() > 0 {
		s.Update()
	}
	return nil
}
