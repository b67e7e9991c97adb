package preview

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/soypat/flyby"
	"github.com/soypat/glgl/math/ms3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func started(t *testing.T) (*flyby.Choreographer, *flyby.BasicCamera) {
	t.Helper()
	cam := &flyby.BasicCamera{}
	ch := flyby.NewChoreographer(cam, nil)
	require.True(t, ch.Start(flyby.Choreography{
		flyby.MoveTo("slide", 2*time.Second, nil, flyby.MoveParams{Target: ms3.Vec{X: 10}}),
	}))
	return ch, cam
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestFramesTickChoreography(t *testing.T) {
	ch, cam := started(t)
	m := New(ch, cam, 30)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	m, cmd := update(t, m, frameMsg(t0))
	require.NotNil(t, cmd)
	assert.Zero(t, ch.Elapsed(), "first frame only sets the clock")

	m, cmd = update(t, m, frameMsg(t0.Add(time.Second)))
	require.NotNil(t, cmd)
	assert.Equal(t, time.Second, ch.Elapsed())
	assert.InDelta(t, 5, cam.Pos.X, 1e-5)
	assert.Contains(t, m.View(), "slide")
	assert.Contains(t, m.View(), " 50%")

	m, cmd = update(t, m, frameMsg(t0.Add(3*time.Second)))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, ch.Done())
	assert.False(t, m.Cancelled())
	assert.Equal(t, float32(10), cam.Pos.X)
	assert.Contains(t, m.View(), "done")
}

func TestQuitCancels(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	} {
		ch, cam := started(t)
		m, cmd := update(t, New(ch, cam, 0), key)
		require.NotNil(t, cmd, key.String())
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.True(t, m.Cancelled(), key.String())
		assert.False(t, ch.Running())
		assert.False(t, ch.Done())
		assert.Contains(t, m.View(), "stopped")
	}
}

func TestOtherKeysIgnored(t *testing.T) {
	ch, cam := started(t)
	m, cmd := update(t, New(ch, cam, 60), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
	assert.False(t, m.Cancelled())
	assert.True(t, ch.Running())
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░", progressBar(0, 4))
	assert.Equal(t, "██░░", progressBar(0.5, 4))
	assert.Equal(t, "████", progressBar(1, 4))
	assert.Equal(t, "████", progressBar(2, 4))
}
