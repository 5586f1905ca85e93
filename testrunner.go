package litebrite

import (
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
	Color  int     `json:"color,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

// knownActions lists the step actions LoadTestScript accepts.
var knownActions = map[string]bool{
	"click": true, "erase": true, "drag": true, "color": true,
	"clear": true, "wait": true, "screenshot": true,
}

// TestRunner sequences injected pointer events, color changes and
// screenshots across ticks for scripted visual runs. Attach it with
// Session.SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script such as
//
//	{"steps": [
//	  {"action": "color", "color": 3},
//	  {"action": "click", "x": 20, "y": 20},
//	  {"action": "drag", "fromX": 20, "fromY": 60, "toX": 300, "toY": 60, "frames": 10},
//	  {"action": "wait", "frames": 30},
//	  {"action": "screenshot", "label": "stroke"},
//	  {"action": "clear"}
//	]}
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner to the session. Its step method runs
// at the start of every tick before input processing.
func (s *Session) SetTestRunner(runner *TestRunner) {
	s.mu.Lock()
	s.testRunner = runner
	s.mu.Unlock()
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the test runner by one tick.
func (r *TestRunner) step(s *Session) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if s.PendingInjections() > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "screenshot":
		s.Screenshot(st.Label)
	case "click":
		s.InjectClick(st.X, st.Y)
	case "erase":
		s.InjectErase(st.X, st.Y)
		s.InjectRelease(st.X, st.Y)
	case "drag":
		s.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "color":
		s.SelectColor(st.Color)
	case "clear":
		s.RequestClear()
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this tick counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && s.PendingInjections() == 0 {
		r.done = true
	}
}

// stepTestRunner runs the attached runner, if any.
func (s *Session) stepTestRunner() {
	s.mu.Lock()
	r := s.testRunner
	s.mu.Unlock()
	if r != nil {
		r.step(s)
	}
}
