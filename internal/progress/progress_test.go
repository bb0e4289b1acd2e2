package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func applyMsg(t *testing.T, m boardModel, msg tea.Msg) (boardModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	bm, ok := next.(boardModel)
	if !ok {
		t.Fatalf("Update returned %T, want boardModel", next)
	}
	return bm, cmd
}

func TestBoardShowsOneLinePerTarget(t *testing.T) {
	m := newBoardModel([]string{"corne_left-zmk", "corne_right-zmk", "settings_reset-zmk"})

	view := m.View()
	lines := strings.Split(strings.TrimRight(view, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), view)
	}
	for _, name := range []string{"corne_left-zmk", "corne_right-zmk", "settings_reset-zmk"} {
		if !strings.Contains(view, name) {
			t.Errorf("view missing target %q", name)
		}
	}
	if !strings.Contains(view, "waiting") {
		t.Error("pending targets should show as waiting")
	}
}

func TestBoardStateNeverMovesBackward(t *testing.T) {
	m := newBoardModel([]string{"a", "b"})

	m, _ = applyMsg(t, m, updateMsg{index: 0, state: StateRunning, msg: "[10/200]"})
	m, _ = applyMsg(t, m, updateMsg{index: 0, state: StateStarting, msg: "configuring"})

	if m.rows[0].state != StateRunning {
		t.Errorf("row regressed to %v after stale update", m.rows[0].state)
	}
	if m.rows[0].msg != "[10/200]" {
		t.Errorf("stale update overwrote message: %q", m.rows[0].msg)
	}
}

func TestBoardIgnoresUpdatesAfterFinish(t *testing.T) {
	m := newBoardModel([]string{"a", "b"})

	m, _ = applyMsg(t, m, finishMsg{index: 0, success: true, artifact: "a.uf2", duration: time.Second})
	m, _ = applyMsg(t, m, updateMsg{index: 0, state: StateRunning, msg: "[5/10]"})
	m, _ = applyMsg(t, m, finishMsg{index: 0, success: false, duration: 2 * time.Second})

	if m.rows[0].state != StateSuccess {
		t.Errorf("finished row changed state to %v", m.rows[0].state)
	}
	if m.done != 1 {
		t.Errorf("double finish counted twice: done=%d", m.done)
	}
}

func TestBoardQuitsWhenAllTargetsFinish(t *testing.T) {
	m := newBoardModel([]string{"a", "b"})

	m, cmd := applyMsg(t, m, finishMsg{index: 0, success: true, duration: time.Second})
	if cmd != nil {
		if msg := cmd(); msg != nil {
			if _, quit := msg.(tea.QuitMsg); quit {
				t.Fatal("board quit before all targets finished")
			}
		}
	}

	_, cmd = applyMsg(t, m, finishMsg{index: 1, success: false, duration: time.Second})
	if cmd == nil {
		t.Fatal("expected quit command after last finish")
	}
	if _, quit := cmd().(tea.QuitMsg); !quit {
		t.Fatal("expected tea.Quit after last finish")
	}
}

func TestBoardTruncatesToWidth(t *testing.T) {
	m := newBoardModel([]string{strings.Repeat("x", 200)})
	m, _ = applyMsg(t, m, tea.WindowSizeMsg{Width: 40, Height: 24})

	for _, line := range strings.Split(strings.TrimRight(m.View(), "\n"), "\n") {
		if n := len([]rune(line)); n > 40 {
			t.Errorf("line not truncated: %d columns", n)
		}
	}
}

func TestBoardIgnoresOutOfRangeIndexes(t *testing.T) {
	m := newBoardModel([]string{"a"})
	m, _ = applyMsg(t, m, updateMsg{index: 5, state: StateRunning})
	m, _ = applyMsg(t, m, finishMsg{index: -1, success: true})
	if m.done != 0 {
		t.Errorf("out-of-range finish counted: done=%d", m.done)
	}
}

func TestPlainReporterEmitsTransitionsOnce(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf, []string{"corne_left-zmk"})

	p.Update(0, StateStarting, "configuring")
	p.Update(0, StateRunning, "[1/500]")
	p.Update(0, StateRunning, "[2/500]")
	p.Update(0, StateRunning, "[3/500]")
	p.Finish(0, true, "corne_left-zmk.uf2", 90*time.Second)
	p.Close()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines (configuring, building, ok), got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "configuring") {
		t.Errorf("first line = %q, want configuring", lines[0])
	}
	if !strings.Contains(lines[1], "building") {
		t.Errorf("second line = %q, want building", lines[1])
	}
	if !strings.Contains(lines[2], "ok corne_left-zmk.uf2 (1m 30s)") {
		t.Errorf("final line = %q", lines[2])
	}
}

func TestPlainReporterFailureLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlain(&buf, []string{"a", "b"})

	p.Finish(1, false, "", 4200*time.Millisecond)
	p.Finish(1, true, "late.uf2", time.Second)

	out := buf.String()
	if !strings.Contains(out, "b: failed (4.2s)") {
		t.Errorf("missing failure line in %q", out)
	}
	if strings.Contains(out, "late.uf2") {
		t.Error("reporter accepted a second finish for the same target")
	}
}

func TestNewReporterSelection(t *testing.T) {
	var buf bytes.Buffer

	if _, ok := NewReporter(&buf, true, []string{"a"}).(nopReporter); !ok {
		t.Error("quiet mode should select the no-op reporter")
	}
	if _, ok := NewReporter(&buf, false, []string{"a"}).(*Plain); !ok {
		t.Error("non-terminal writer should select the plain reporter")
	}
}
