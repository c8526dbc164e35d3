package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/eugenenazirov/smartpack/internal/catalog"
	"github.com/eugenenazirov/smartpack/internal/dataset"
	"github.com/eugenenazirov/smartpack/internal/engine"
	"github.com/eugenenazirov/smartpack/internal/session"
)

// View identifies the active dashboard tab.
type View int

const (
	ViewUser View = iota
	ViewAdmin
)

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	store   session.Store
	catalog *catalog.Catalog
	size    int
	sess    *session.Session

	active   View
	input    textinput.Model
	cityIdx  int
	records  table.Model
	renderer *glamour.TermRenderer

	outcome  *engine.ScanOutcome
	rendered string
	status   string

	width  int
	height int
}

// NewModel creates the dashboard with a fresh session of size packages.
// A nil seed lets the store choose one.
func NewModel(store session.Store, cat *catalog.Catalog, size int, seed *uint64) (Model, error) {
	if store == nil || cat == nil {
		return Model{}, errors.New("tui: store and catalog are required")
	}

	ti := textinput.New()
	ti.Placeholder = "PACK-0001 o 0001"
	ti.Focus()
	ti.CharLimit = 20
	ti.Width = 24

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Código", Width: 10},
			{Title: "Producto", Width: 20},
			{Title: "Material", Width: 10},
			{Title: "Ciudad", Width: 10},
			{Title: "Reciclado", Width: 9},
		}),
		table.WithHeight(10),
	)

	m := Model{
		store:    store,
		catalog:  cat,
		size:     size,
		input:    ti,
		records:  t,
		renderer: newRenderer(80),
	}
	if err := m.newSession(seed); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Session returns the session currently displayed.
func (m Model) Session() *session.Session { return m.sess }

// Active returns the visible tab.
func (m Model) Active() View { return m.active }

// City returns the city currently selected for scans.
func (m Model) City() string {
	if len(m.catalog.Cities) == 0 {
		return ""
	}
	return m.catalog.Cities[m.cityIdx]
}

// Outcome returns the last successful scan, or nil.
func (m Model) Outcome() *engine.ScanOutcome { return m.outcome }

// Status returns the last scan error or notice.
func (m Model) Status() string { return m.status }

func (m *Model) newSession(seed *uint64) error {
	sess, err := m.store.Create(m.size, seed)
	if err != nil {
		return err
	}
	if m.sess != nil {
		_ = m.store.Delete(m.sess.ID())
	}
	m.sess = sess
	m.outcome = nil
	m.rendered = ""
	m.status = ""
	m.records.SetRows(recordRows(sess.Dataset()))
	return nil
}

func recordRows(ds *dataset.Dataset) []table.Row {
	rows := make([]table.Row, 0, ds.Len())
	for _, r := range ds.All() {
		recycled := "No"
		if r.Recycled {
			recycled = "Sí"
		}
		rows = append(rows, table.Row{r.ID, r.Product, r.Material, r.City, recycled})
	}
	return rows
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.renderer = newRenderer(min(msg.Width-4, 100))
		if m.outcome != nil {
			m.rendered = renderMarkdown(m.renderer, OutcomeMarkdown(*m.outcome))
		}
		m.records.SetHeight(max(msg.Height-30, 5))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab", "shift+tab":
			m.toggleView()
			return m, nil

		case "ctrl+r":
			if err := m.newSession(nil); err != nil {
				m.status = err.Error()
			}
			return m, nil
		}

		if m.active == ViewAdmin {
			m.records, cmd = m.records.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "enter":
			m.scan()
			return m, nil
		case "up":
			m.moveCity(-1)
			return m, nil
		case "down":
			m.moveCity(1)
			return m, nil
		}
	}

	if m.active == ViewUser {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleView() {
	if m.active == ViewUser {
		m.active = ViewAdmin
		m.input.Blur()
		m.records.Focus()
		return
	}
	m.active = ViewUser
	m.records.Blur()
	m.input.Focus()
}

func (m *Model) moveCity(delta int) {
	n := len(m.catalog.Cities)
	if n == 0 {
		return
	}
	m.cityIdx = (m.cityIdx + delta + n) % n
}

func (m *Model) scan() {
	res, err := m.sess.Scan(m.input.Value(), m.City())
	if err != nil {
		m.outcome = nil
		m.rendered = ""
		m.status = err.Error()
		return
	}
	if !res.Found {
		m.outcome = nil
		m.rendered = ""
		m.status = notFoundMessage(res.Code, m.sess.Dataset().Len())
		return
	}

	m.outcome = res.Outcome
	m.rendered = renderMarkdown(m.renderer, OutcomeMarkdown(*res.Outcome))
	m.status = ""
	m.input.SetValue("")
}

func notFoundMessage(code string, size int) string {
	switch {
	case size == 0:
		return "La sesión no tiene empaques. Presiona ctrl+r para generar otra."
	case code == "":
		return "Ingresa un código de empaque."
	default:
		return fmt.Sprintf("Código %s no reconocido. Usa %s a %s.", code, dataset.FormatID(1), dataset.FormatID(size))
	}
}

// View renders the UI.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("♻ SmartPack"))
	sb.WriteString("  ")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("sesión %s · %d empaques · semilla %d",
		shortID(m.sess.ID()), m.sess.Dataset().Len(), m.sess.Seed())))
	sb.WriteString("\n\n")
	sb.WriteString(m.tabs())
	sb.WriteString("\n\n")

	if m.active == ViewAdmin {
		sb.WriteString(m.adminView())
	} else {
		sb.WriteString(m.userView())
	}

	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("tab: cambiar vista · ↑/↓: ciudad o registros · enter: escanear · ctrl+r: nueva sesión · esc: salir"))
	return sb.String()
}

func (m Model) tabs() string {
	user, admin := tabStyle, tabStyle
	if m.active == ViewAdmin {
		admin = activeTabStyle
	} else {
		user = activeTabStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, user.Render("Usuario"), admin.Render("Administrador"))
}

func (m Model) userView() string {
	var sb strings.Builder

	sb.WriteString("Código: ")
	sb.WriteString(m.input.View())
	sb.WriteString("\n\nCiudad:\n")
	for i, c := range m.catalog.Cities {
		if i == m.cityIdx {
			sb.WriteString(selectedStyle.Render("▸ " + c))
		} else {
			sb.WriteString(dimStyle.Render("  " + c))
		}
		sb.WriteString("\n")
	}

	stats := m.sess.Stats()
	sb.WriteString("\n")
	sb.WriteString(successStyle.Render(fmt.Sprintf("Puntos acumulados: %d (%d escaneos)", stats.Points, stats.Scans)))
	sb.WriteString("\n")

	if m.status != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.status))
		sb.WriteString("\n")
	}
	if m.rendered != "" {
		sb.WriteString(m.rendered)
	}
	return sb.String()
}

func (m Model) adminView() string {
	report := m.sess.Report()

	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(BarChart("Escaneos por ciudad", engine.Rank(report.ScansByCity))),
		boxStyle.Render(BarChart("Escaneos por material", engine.Rank(report.ScansByMaterial))),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		MetricTiles(report),
		"",
		recommendationLine(report.Recommendation),
		"",
		charts,
		boxStyle.Render(BarChart("Escaneos por producto", engine.Rank(report.ScansByProduct))),
		"",
		m.records.View(),
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Run starts the interactive dashboard and blocks until the user quits or ctx is done.
func Run(ctx context.Context, store session.Store, cat *catalog.Catalog, size int, seed *uint64) error {
	m, err := NewModel(store, cat, size, seed)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
