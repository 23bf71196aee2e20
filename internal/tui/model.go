package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"skillalign/internal/domain"
)

// AnalyzerPort is the TUI-facing subset of the skill service.
type AnalyzerPort interface {
	Analyze(text, taxonomy string) (domain.DocumentResult, error)
	Taxonomies() []string
}

// Model is the Bubble Tea model for the browse command.
type Model struct {
	service    AnalyzerPort
	input      textinput.Model
	viewport   viewport.Model
	taxonomies []string
	taxonomy   int
	result     domain.DocumentResult
	lastText   string
	status     string
	cursor     int
	ready      bool
}

// New creates a model aligning against defaultTaxonomy first.
func New(service AnalyzerPort, defaultTaxonomy string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Paste a job posting or course description and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)

	names := service.Taxonomies()
	current := 0
	for i, n := range names {
		if strings.EqualFold(n, defaultTaxonomy) {
			current = i
		}
	}
	if len(names) == 0 {
		names = []string{defaultTaxonomy}
	}
	return Model{
		service:    service,
		input:      ti,
		viewport:   vp,
		taxonomies: names,
		taxonomy:   current,
		status:     "Type text to extract skills. Tab switches taxonomy.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Taxonomy returns the taxonomy currently aligned against.
func (m Model) Taxonomy() string { return m.taxonomies[m.taxonomy] }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, skills, status, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderMatches())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				m.analyze(text)
				return m, nil
			}
		case "tab":
			m.taxonomy = (m.taxonomy + 1) % len(m.taxonomies)
			if m.lastText != "" {
				m.analyze(m.lastText)
			} else {
				m.status = "Taxonomy: " + m.Taxonomy()
			}
			return m, nil
		case "down":
			if len(m.result.Matches) > 0 {
				m.cursor = (m.cursor + 1) % len(m.result.Matches)
				m.viewport.SetContent(m.renderMatches())
				return m, nil
			}
		case "up":
			if len(m.result.Matches) > 0 {
				m.cursor = (m.cursor - 1 + len(m.result.Matches)) % len(m.result.Matches)
				m.viewport.SetContent(m.renderMatches())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) analyze(text string) {
	res, err := m.service.Analyze(text, m.Taxonomy())
	if err != nil {
		m.status = "Error: " + err.Error()
		m.result = domain.DocumentResult{}
	} else {
		m.status = fmt.Sprintf("%d skills, %d aligned to %s", len(res.Skills), len(res.Matches), m.Taxonomy())
		m.result = res
		m.cursor = 0
		m.lastText = text
	}
	m.viewport.SetContent(m.renderMatches())
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Skill Alignment") +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("  ["+m.Taxonomy()+"]")
	skills := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.renderSkills())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + skills + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderSkills() string {
	if m.lastText == "" {
		return "No text analyzed yet."
	}
	if len(m.result.Skills) == 0 {
		return "No skills extracted."
	}
	return "Skills: " + strings.Join(m.result.Skills, ", ")
}

func (m Model) renderMatches() string {
	if len(m.result.Matches) == 0 {
		return "No matches yet."
	}
	lines := make([]string, 0, len(m.result.Matches)+2)
	for i, r := range m.result.Matches {
		line := fmt.Sprintf("%-40s %-24s %.3f", r.SkillName, r.SkillID, r.Similarity)
		if i == m.cursor {
			line = highlightStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	selected := m.result.Matches[m.cursor]
	lines = append(lines, "", highlightSkills(m.lastText, selected.SkillName))
	return strings.Join(lines, "\n")
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// highlightSkills emphasizes the words of text that also occur in name.
func highlightSkills(text, name string) string {
	wanted := toTokenSet(name)
	if len(wanted) == 0 {
		return text
	}
	return unicodeWordRe.ReplaceAllStringFunc(text, func(w string) string {
		if _, ok := wanted[strings.ToLower(w)]; ok {
			return highlightStyle.Render(w)
		}
		return w
	})
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}
