package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/wasm-contract/contract"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	spaceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	bindingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type binding struct {
	space string // "import" or "export"
	key   string // display identity
	def   string // rendered definition
}

type browserModel struct {
	title     string
	bindings  []binding
	visible   []binding
	filter    textinput.Model
	selected  int
	filtering bool
}

func newBrowserModel(title string, c *contract.Contract) *browserModel {
	var bindings []binding
	for _, key := range sortedImportKeys(c) {
		bindings = append(bindings, binding{
			space: "import",
			key:   key.Namespace + "." + key.Name,
			def:   c.Imports[key].String(),
		})
	}
	for _, name := range sortedExportNames(c) {
		bindings = append(bindings, binding{
			space: "export",
			key:   name,
			def:   c.Exports[name].String(),
		})
	}

	filter := textinput.New()
	filter.Placeholder = "filter bindings"
	filter.Prompt = "/ "
	filter.Width = 40

	return &browserModel{
		title:    title,
		bindings: bindings,
		visible:  bindings,
		filter:   filter,
	}
}

func (m *browserModel) Init() tea.Cmd {
	return nil
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filtering {
		switch key.String() {
		case "enter", "esc":
			m.filtering = false
			m.filter.Blur()
			if key.String() == "esc" {
				m.filter.SetValue("")
				m.applyFilter()
			}
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.visible)-1 {
			m.selected++
		}

	case "/":
		m.filtering = true
		m.filter.Focus()

	case "esc":
		m.filter.SetValue("")
		m.applyFilter()
	}

	return m, nil
}

func (m *browserModel) applyFilter() {
	query := strings.ToLower(m.filter.Value())
	if query == "" {
		m.visible = m.bindings
	} else {
		m.visible = nil
		for _, b := range m.bindings {
			if strings.Contains(strings.ToLower(b.key), query) ||
				strings.Contains(strings.ToLower(b.def), query) {
				m.visible = append(m.visible, b)
			}
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = 0
	}
}

func (m *browserModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Contract Browser"))
	b.WriteString(" ")
	b.WriteString(m.title)
	b.WriteString("\n\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	if len(m.visible) == 0 {
		b.WriteString(helpStyle.Render("no bindings"))
		b.WriteString("\n")
	}

	for i, binding := range m.visible {
		line := spaceStyle.Render(binding.space) + " " + bindingStyle.Render(binding.key)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> "))
			b.WriteString(line)
		} else {
			b.WriteString("  ")
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	if m.selected < len(m.visible) {
		b.WriteString("\n")
		b.WriteString(detailStyle.Render(m.visible[m.selected].def))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • / filter • q quit"))

	return b.String()
}

func runInteractive(title string, c *contract.Contract) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}
	p := tea.NewProgram(newBrowserModel(title, c), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
