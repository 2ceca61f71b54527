package livedash

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestDashboard(src *fakeSource) dashboardModel {
	s := newTestSession(src, nil)
	return NewDashboard(context.Background(), s, time.Hour)
}

// batchCmds runs a batched command and returns its parts without running them
func batchCmds(t *testing.T, cmd tea.Cmd) []tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok, "expected a batch")
	return batch
}

func update(t *testing.T, m dashboardModel, msg tea.Msg) (dashboardModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(dashboardModel)
	require.True(t, ok)
	return model, cmd
}

func TestDashboardLoadsHistoryBeforePolling(t *testing.T) {
	src := &fakeSource{history: []Snapshot{snapshot(t1, metric("CPU", 10, ""))}}
	src.push(snapshot(t2, metric("CPU", 20, "")), nil)
	m := newTestDashboard(src)

	msg := m.Init()()
	hist, ok := msg.(historyMsg)
	require.True(t, ok)
	assert.Len(t, hist.dataset, 1)

	latest, history := src.calls()
	assert.Equal(t, 0, latest)
	assert.Equal(t, 1, history)

	m, cmd := update(t, m, hist)
	assert.True(t, m.polling)
	assert.True(t, m.session.Store().HistoryLoaded())

	cmds := batchCmds(t, cmd)
	require.Len(t, cmds, 2)
	snap, ok := cmds[0]().(snapshotMsg)
	require.True(t, ok)
	assert.Equal(t, uint64(1), snap.seq)

	m, _ = update(t, m, snap)
	h, ok := m.session.Charts().Handle("chart-cpu")
	require.True(t, ok)
	assert.Equal(t, []float64{10, 20}, h.Object.Data().Datasets[0].Values)
	assert.Equal(t, 1, m.tabs.Len())
}

func TestDashboardHistoryFailureStillPolls(t *testing.T) {
	src := &fakeSource{historyErr: errNetwork}
	m := newTestDashboard(src)

	m, cmd := update(t, m, m.Init()())
	assert.True(t, m.polling)
	assert.False(t, m.session.Store().HistoryLoaded())
	assert.Len(t, batchCmds(t, cmd), 2)
}

func TestDashboardIgnoresRepeatedHistory(t *testing.T) {
	m := newTestDashboard(&fakeSource{})
	m, _ = update(t, m, historyMsg{})
	_, cmd := update(t, m, historyMsg{dataset: []Snapshot{snapshot(t1)}})
	assert.Nil(t, cmd)
}

func TestDashboardTickStartsFetch(t *testing.T) {
	src := &fakeSource{}
	src.push(snapshot(t1, metric("CPU", 1, "")), nil)
	m := newTestDashboard(src)
	m, _ = update(t, m, historyMsg{})

	_, cmd := update(t, m, tickMsg(time.Now()))
	cmds := batchCmds(t, cmd)
	require.Len(t, cmds, 2)
	snap, ok := cmds[0]().(snapshotMsg)
	require.True(t, ok)
	// the first fetch was numbered when history arrived
	assert.Equal(t, uint64(2), snap.seq)
}

func TestDashboardDropsStaleSnapshot(t *testing.T) {
	m := newTestDashboard(&fakeSource{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = update(t, m, snapshotMsg{seq: 2, snap: snapshot(t2, metric("CPU", 20, ""))})
	m, _ = update(t, m, snapshotMsg{seq: 1, snap: snapshot(t1, metric("CPU", 10, ""))})

	assert.Equal(t, "20", m.session.Document().GetElementByID("stat-cpu-value").Text())
}

func TestDashboardFailedSnapshotShowsInFooter(t *testing.T) {
	m := newTestDashboard(&fakeSource{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, historyMsg{})
	m, _ = update(t, m, snapshotMsg{seq: 1, snap: snapshot(t1, metric("CPU", 10, ""))})
	doc := m.session.Document().String()

	m, _ = update(t, m, snapshotMsg{seq: 2, err: errNetwork})
	assert.Equal(t, doc, m.session.Document().String())
	assert.Contains(t, m.View(), "fetch failed (1 so far)")
}

func TestDashboardView(t *testing.T) {
	m := newTestDashboard(&fakeSource{})
	assert.Equal(t, "Initializing...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	assert.Contains(t, view, "livedash")
	assert.Contains(t, view, "Waiting for data...")
	assert.Contains(t, view, "loading history...")
}

func TestDashboardKeys(t *testing.T) {
	m := newTestDashboard(&fakeSource{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = update(t, m, historyMsg{})
	m, _ = update(t, m, snapshotMsg{seq: 1, snap: snapshot(t1,
		metric("a", 1, ""), metric("b", 2, ""), metric("c", 3, ""))})

	m, _ = update(t, m, keyPress("l"))
	assert.Equal(t, 1, m.selectedPane)
	m, _ = update(t, m, keyPress("h"))
	m, _ = update(t, m, keyPress("h"))
	assert.Equal(t, 0, m.selectedPane)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.focusMode)
	m, _ = update(t, m, keyPress("]"))
	assert.Equal(t, 1, m.selectedPane)
	assert.Equal(t, "b", m.tabs.Selected().Name)
	assert.Contains(t, m.View(), "b")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.focusMode)

	m, _ = update(t, m, keyPress("t"))
	assert.True(t, m.showTree)
	assert.Contains(t, m.View(), "Elements")
	m, _ = update(t, m, keyPress("t"))
	assert.False(t, m.showTree)

	_, cmd := update(t, m, keyPress("r"))
	require.NotNil(t, cmd)
	_, ok := cmd().(snapshotMsg)
	assert.True(t, ok)

	_, cmd = update(t, m, keyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestDashboardRefreshKeyWaitsForHistory(t *testing.T) {
	m := newTestDashboard(&fakeSource{})
	_, cmd := update(t, m, keyPress("r"))
	assert.Nil(t, cmd)
}
