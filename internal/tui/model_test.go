package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eugenenazirov/smartpack/internal/catalog"
	"github.com/eugenenazirov/smartpack/internal/engine"
	"github.com/eugenenazirov/smartpack/internal/session"
)

func newTestModel(t *testing.T, size int) (Model, *session.MemoryStore) {
	t.Helper()
	cat := catalog.Default()
	store := session.NewMemoryStore(cat, engine.New(cat))
	seed := uint64(42)
	m, err := NewModel(store, cat, size, &seed)
	require.NoError(t, err)
	return m, store
}

func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestNewModelRequiresDependencies(t *testing.T) {
	_, err := NewModel(nil, catalog.Default(), 5, nil)
	assert.Error(t, err)
}

func TestNewModelPropagatesCreateErrors(t *testing.T) {
	cat := catalog.Default()
	store := session.NewMemoryStore(cat, engine.New(cat), session.WithMaxDatasetSize(10))
	_, err := NewModel(store, cat, 11, nil)
	assert.Error(t, err)
}

func TestScanKnownCodeAwardsPoints(t *testing.T) {
	m, _ := newTestModel(t, 10)
	first := m.Session().Dataset().At(0)

	m.input.SetValue("1")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, m.Outcome())
	assert.Equal(t, first.ID, m.Outcome().RecordID)
	assert.Equal(t, m.City(), m.Outcome().City)
	assert.Empty(t, m.Status())
	assert.Empty(t, m.input.Value())

	stats := m.Session().Stats()
	assert.Equal(t, 1, stats.Scans)
	assert.Equal(t, m.Outcome().Points, stats.Points)
}

func TestScanUnknownCodeShowsHint(t *testing.T) {
	m, _ := newTestModel(t, 10)

	m.input.SetValue("PACK-0999")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, m.Outcome())
	assert.Contains(t, m.Status(), "PACK-0999")
	assert.Contains(t, m.Status(), "PACK-0010")
	assert.Zero(t, m.Session().Stats().Scans)
}

func TestScanEmptyCode(t *testing.T) {
	m, _ := newTestModel(t, 10)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Ingresa un código de empaque.", m.Status())
}

func TestCitySelectionWraps(t *testing.T) {
	m, _ := newTestModel(t, 3)
	cities := m.catalog.Cities

	assert.Equal(t, cities[0], m.City())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, cities[1], m.City())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, cities[len(cities)-1], m.City())
}

func TestTypingReachesInput(t *testing.T) {
	m, _ := newTestModel(t, 3)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("7")})
	assert.Equal(t, "7", m.input.Value())
}

func TestTabSwitchesToAdminView(t *testing.T) {
	m, _ := newTestModel(t, 20)
	require.Equal(t, ViewUser, m.Active())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ViewAdmin, m.Active())

	view := m.View()
	assert.Contains(t, view, "Tasa de reciclaje")
	assert.Contains(t, view, "Escaneos por material")
	assert.Contains(t, view, "PACK-0001")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, ViewUser, m.Active())
	assert.Contains(t, m.View(), "Puntos acumulados")
}

func TestRegenerateReplacesSession(t *testing.T) {
	m, store := newTestModel(t, 5)
	oldID := m.Session().ID()

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.NotEqual(t, oldID, m.Session().ID())
	assert.Equal(t, 1, store.Len())
	_, err := store.Get(oldID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestQuitKeys(t *testing.T) {
	m, _ := newTestModel(t, 1)
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		_, cmd := m.Update(tea.KeyMsg{Type: key})
		require.NotNil(t, cmd)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok)
	}
}

func TestWindowResizeKeepsOutcome(t *testing.T) {
	m, _ := newTestModel(t, 4)
	m.input.SetValue("2")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.Outcome())

	m = press(t, m, tea.WindowSizeMsg{Width: 120, Height: 50})
	assert.NotEmpty(t, m.rendered)
	assert.Equal(t, 120, m.width)
}

func TestNotFoundMessageForEmptySession(t *testing.T) {
	assert.True(t, strings.HasPrefix(notFoundMessage("PACK-0001", 0), "La sesión no tiene empaques"))
}
