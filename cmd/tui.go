package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Lepied/DiceSoul-sub001/internal/dice"
	"github.com/Lepied/DiceSoul-sub001/internal/parser"
	"github.com/Lepied/DiceSoul-sub001/internal/session"
)

// dieMsg reports a die update coming from the engine.
type dieMsg struct {
	index int
	value int
	state dice.State
}

type handMsg struct{}

// outcomeMsg carries the result of a command run off the update loop.
type outcomeMsg struct {
	out session.Outcome
	err error
}

// teaPresenter forwards engine notifications to a running program. Updates
// sent before the program starts are dropped.
type teaPresenter struct {
	prog atomic.Pointer[tea.Program]
}

func (p *teaPresenter) send(msg tea.Msg) {
	if prog := p.prog.Load(); prog != nil {
		prog.Send(msg)
	}
}

func (p *teaPresenter) DiceStateChanged(i int, s dice.State) {
	p.send(dieMsg{index: i, value: -1, state: s})
}

func (p *teaPresenter) DiceValueChanged(i, v int) {
	p.send(dieMsg{index: i, value: v, state: -1})
}

func (p *teaPresenter) HandRepositioned([]float64) { p.send(handMsg{}) }

type suggestion string

func (s suggestion) Title() string       { return string(s) }
func (s suggestion) Description() string { return "" }
func (s suggestion) FilterValue() string { return string(s) }

type playModel struct {
	ctx         context.Context
	app         *session.Session
	textInput   textinput.Model
	viewport    viewport.Model
	suggestions list.Model
	spin        spinner.Model
	commands    []string
	relicIDs    []string
	history     []string
	historyIdx  int
	logContent  string
	width       int
	height      int
	showList    bool
	busy        bool
	// lastDie describes the latest die update while a command runs.
	lastDie string
}

func newPlayModel(ctx context.Context, app *session.Session) *playModel {
	ti := textinput.New()
	ti.Placeholder = "Enter command (e.g., deal 5d6)..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	welcome := "Welcome to DiceSoul!\nType 'help' for commands and 'quit' to leave."
	vp := viewport.New(0, 0)
	vp.SetContent(welcome)

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.SetSpacing(0)
	sugList := list.New([]list.Item{}, delegate, 50, 7)
	sugList.SetShowTitle(false)
	sugList.SetShowStatusBar(false)
	sugList.SetFilteringEnabled(false)
	sugList.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	commands := make([]string, 0, len(parser.Usage))
	for k := range parser.Usage {
		commands = append(commands, k+" ")
	}
	sort.Strings(commands)

	var relicIDs []string
	if defs, err := app.Catalog().List(); err == nil {
		for _, d := range defs {
			relicIDs = append(relicIDs, d.ID)
		}
	}

	return &playModel{
		ctx:         ctx,
		app:         app,
		textInput:   ti,
		viewport:    vp,
		suggestions: sugList,
		spin:        sp,
		commands:    commands,
		relicIDs:    relicIDs,
		historyIdx:  -1,
		logContent:  welcome,
	}
}

func (m *playModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

func (m *playModel) updateSuggestions() {
	val := strings.ToLower(m.textInput.Value())
	var items []list.Item

	defer func() {
		m.suggestions.SetItems(items)
		m.showList = len(items) > 0
		if m.showList {
			h := min(len(items), 10)
			m.suggestions.SetHeight(max(h, 4))
			m.suggestions.ResetSelected()
		}
	}()

	if val == "" {
		return
	}
	if prefix, ok := strings.CutPrefix(val, "relic "); ok {
		for _, id := range m.relicIDs {
			if strings.HasPrefix(id, prefix) && len(prefix) < len(id) {
				items = append(items, suggestion("relic "+id))
			}
		}
		return
	}
	for _, c := range m.commands {
		if strings.HasPrefix(c, val) && len(val) < len(c) {
			items = append(items, suggestion(c))
		}
	}
}

func (m *playModel) appendLog(lines ...string) {
	for _, l := range lines {
		m.logContent += l + "\n"
	}
	m.viewport.SetContent(m.logContent)
	m.viewport.GotoBottom()
}

func (m *playModel) run(input string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.app.Execute(m.ctx, input)
		return outcomeMsg{out: out, err: err}
	}
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		lsCmd tea.Cmd
		spCmd tea.Cmd
		exCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyUp:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else if len(m.history) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.history) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.history[m.historyIdx])
				m.updateSuggestions()
			}

		case tea.KeyDown:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else if len(m.history) > 0 && m.historyIdx != -1 {
				if m.historyIdx < len(m.history)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.history[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.updateSuggestions()
			}

		case tea.KeyTab:
			if m.showList {
				if i, ok := m.suggestions.SelectedItem().(suggestion); ok {
					m.textInput.SetValue(string(i))
					m.textInput.SetCursor(len(string(i)))
					m.updateSuggestions()
				}
			}

		case tea.KeyEnter:
			val := strings.TrimSpace(m.textInput.Value())
			if val == "" || m.busy {
				break
			}
			if len(m.history) == 0 || m.history[len(m.history)-1] != val {
				m.history = append(m.history, val)
			}
			m.historyIdx = -1
			m.textInput.SetValue("")
			m.updateSuggestions()

			m.appendLog("", "> "+val)
			m.busy = true
			m.lastDie = ""
			exCmd = m.run(val)

		default:
			m.textInput, tiCmd = m.textInput.Update(msg)
			m.updateSuggestions()
		}

	case outcomeMsg:
		m.busy = false
		if msg.err != nil {
			m.appendLog(errorStyle.Render("Error: " + msg.err.Error()))
		} else {
			m.appendLog(msg.out.Messages...)
			if msg.out.Quit {
				return m, tea.Quit
			}
		}

	case dieMsg:
		if msg.value >= 0 {
			m.lastDie = fmt.Sprintf("die #%d shows %d", msg.index, msg.value)
		} else {
			m.lastDie = fmt.Sprintf("die #%d is %s", msg.index, msg.state)
		}

	case handMsg:
		// redraw only

	case spinner.TickMsg:
		m.spin, spCmd = m.spin.Update(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.suggestions.SetWidth(msg.Width - 6)
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	titleH := lipgloss.Height(titleStyle.Render("Dummy"))
	stateH := lipgloss.Height(renderView(m.app.View(), m.width))
	listAreaHeight := 0
	if m.showList {
		listAreaHeight = m.suggestions.Height() + 2
	}
	infoH := lipgloss.Height(infoStyle.Render("Dummy"))
	overhead := titleH + stateH + 1 + listAreaHeight + infoH + 6

	m.viewport.Height = max(m.height-overhead, 4)

	return m, tea.Batch(tiCmd, vpCmd, lsCmd, spCmd, exCmd)
}

func (m *playModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	title := titleStyle.Render(fmt.Sprintf(" DiceSoul | run %s ", shortID(m.app.RunID())))
	stateBox := renderView(m.app.View(), m.width)
	logBox := logBoxStyle.Width(m.width - 4).Render(m.viewport.View())

	inputArea := m.textInput.View()
	if m.busy {
		inputArea = m.spin.View() + " resolving... " + infoStyle.Render(m.lastDie)
	} else if m.showList {
		inputArea = fmt.Sprintf("%s\n%s", inputArea, autocompleteStyle.Render(m.suggestions.View()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		stateBox,
		logBox,
		"",
		inputArea,
		infoStyle.Render("(esc to quit, tab to complete, up/down history)"),
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RunTUI drives a session from an interactive terminal.
func RunTUI(ctx context.Context, app *session.Session, presenter *teaPresenter) error {
	m := newPlayModel(ctx, app)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	presenter.prog.Store(p)
	defer presenter.prog.Store(nil)
	_, err := p.Run()
	return err
}
