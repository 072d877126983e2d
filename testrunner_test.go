package trellis

import (
	"strings"
	"testing"
)

func TestLoadScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not json", `{`, "parse script"},
		{"no steps", `{"steps": []}`, "no steps"},
		{"unknown action", `{"steps": [{"action": "jump"}]}`, `unknown action "jump"`},
		{"unknown key", `{"steps": [{"action": "key", "key": "F13"}]}`, `unknown key "F13"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScript([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestScriptDragsNode(t *testing.T) {
	f := newTwoNodes(t)
	e := newTestEditor(t, f.g, &softBackend{})
	runner, err := LoadScript([]byte(`{"steps": [
		{"action": "move", "x": 150, "y": 150},
		{"action": "wait", "frames": 2},
		{"action": "press", "x": 150, "y": 150},
		{"action": "move", "x": 170, "y": 160},
		{"action": "release", "x": 170, "y": 160}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	e.SetScriptRunner(runner)

	for tick := 0; tick < 20 && !runner.Done(); tick++ {
		e.tick(frame)
	}
	if !runner.Done() {
		t.Fatal("script did not finish")
	}
	n, _ := f.g.Node(f.a.ID)
	assertVec(t, "node A", n.Position, Vec2{120, 110})
	if got := e.Interactor().Tool().Kind(); got != ToolBase {
		t.Errorf("tool after release = %v, want base", got)
	}
}

func TestScriptKeyAndScreenshot(t *testing.T) {
	e := newTestEditor(t, NewGraph(), &softBackend{})
	runner, err := LoadScript([]byte(`{"steps": [
		{"action": "key", "key": "shift"},
		{"action": "screenshot", "label": "held"},
		{"action": "key", "key": "Shift", "down": false}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	e.SetScriptRunner(runner)

	tickN(e, 2)
	if e.Interactor().Modifiers()&ModShift == 0 {
		t.Error("key without down should press")
	}
	if len(e.screenshotQueue) != 1 || e.screenshotQueue[0] != "held" {
		t.Errorf("screenshot queue = %v", e.screenshotQueue)
	}
	tickN(e, 2)
	if !runner.Done() {
		t.Error("runner should be done")
	}
	if e.Interactor().Modifiers()&ModShift != 0 {
		t.Error("shift should be released")
	}
}
