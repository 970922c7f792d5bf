package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"regchat-cli/internal/api"
	"regchat-cli/internal/config"
	"regchat-cli/internal/service"
)

const inputPlaceholder = "Ajukan pertanyaan tentang regulasi BPS..."

// ─── App mode ───────────────────────────────────────────────────────────────

type appMode int

const (
	modeIdle appMode = iota
	modeResponding
	modeNewTitle
)

// ─── Slash command registry ─────────────────────────────────────────────────

type slashCmd struct {
	name string
	desc string
}

var slashCommands = []slashCmd{
	{"/clear", "Clear the screen"},
	{"/config", "Show current configuration"},
	{"/go", "Open the thread with a waiting reply"},
	{"/help", "Show all commands"},
	{"/new", "Create a new chat"},
	{"/open", "Switch to a thread"},
	{"/quit", "Exit"},
	{"/sidebar", "Show or hide the thread panel"},
	{"/theme", "Switch dark/light theme"},
	{"/threads", "List chat threads"},
}

// ─── Model ──────────────────────────────────────────────────────────────────

type model struct {
	width  int
	height int

	// Bubble Tea components
	input   textinput.Model
	spinner spinner.Model

	// App state
	mode     appMode
	cfg      *config.Config
	client   api.ChatAPI
	log      *zap.Logger
	version  string
	profile  string
	server   string
	filesURL string
	theme    string

	threads  *service.ThreadStore
	conv     *service.Conversation
	relay    *service.Relay
	renderer messageRenderer
	now      func() time.Time

	// UI state
	ready        bool
	cmdMenuIdx   int    // selected index in command menu
	cmdMenuOpen  bool   // whether the command menu is visible
	lastInputVal string // track input changes to reset menu index

	// Command history
	history      []string // stored input history
	historyIdx   int      // current position in history (-1 = not browsing)
	historySaved string   // saved input value when entering history mode
}

func initialModel(version, profile string, cfg *config.Config, client api.ChatAPI, log *zap.Logger) model {
	ti := textinput.New()
	ti.Placeholder = inputPlaceholder
	ti.Focus()
	ti.CharLimit = 4096
	ti.Prompt = "❯ "
	ti.PromptStyle = promptSymbol
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(colorTeal)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorTeal)

	if cfg == nil {
		cfg = &config.Config{Profile: profile}
	}
	if log == nil {
		log = zap.NewNop()
	}
	eff := cfg.Effective()

	conv := service.NewConversation("")
	conv.Switch(cfg.LastThread)

	return model{
		input:      ti,
		spinner:    sp,
		mode:       modeIdle,
		cfg:        cfg,
		client:     client,
		log:        log,
		version:    version,
		profile:    profile,
		server:     eff.Server,
		filesURL:   eff.FilesURL,
		theme:      eff.Theme,
		threads:    service.NewThreadStore(cfg.LastThread, !cfg.SidebarHidden),
		conv:       conv,
		relay:      service.NewRelay(),
		renderer:   newMessageRenderer(eff.Theme, eff.FilesURL, 80),
		now:        time.Now,
		history:    make([]string, 0),
		historyIdx: -1,
	}
}

// ─── Init ───────────────────────────────────────────────────────────────────

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.spinner.Tick,
		loadThreads(m.client, false),
	}
	if id := m.conv.ThreadID(); id != "" {
		cmds = append(cmds, loadHistory(m.client, id, false))
	}
	return tea.Batch(cmds...)
}

// ─── Update ─────────────────────────────────────────────────────────────────

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = m.width - 6
		m.renderer = newMessageRenderer(m.theme, m.filesURL, m.width)

		if !m.ready {
			m.ready = true
			welcome := renderWelcome(m.version, m.server, m.threads.Title(m.conv.ThreadID()))
			cmds = append(cmds, tea.Println(welcome))
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyCtrlG:
			return m.cmdGo()

		case tea.KeyEsc:
			if m.mode == modeNewTitle {
				m.mode = modeIdle
				m.input.Placeholder = inputPlaceholder
				m.input.SetValue("")
				return m, tea.Println(warnMsgStyle.Render("  ! Cancelled."))
			}
			if m.cmdMenuOpen {
				m.cmdMenuOpen = false
				m.cmdMenuIdx = 0
				return m, nil
			}

		case tea.KeyUp:
			if m.cmdMenuOpen {
				matches := matchCommands(m.input.Value())
				if len(matches) > 0 {
					m.cmdMenuIdx--
					if m.cmdMenuIdx < 0 {
						m.cmdMenuIdx = len(matches) - 1
					}
					return m, nil
				}
			} else if m.mode != modeNewTitle && len(m.history) > 0 {
				if m.historyIdx == -1 {
					m.historySaved = m.input.Value()
					m.historyIdx = len(m.history) - 1
				} else {
					m.historyIdx--
					if m.historyIdx < 0 {
						m.historyIdx = 0
					}
				}
				m.input.SetValue(m.history[m.historyIdx])
				m.input.CursorEnd()
				return m, nil
			}

		case tea.KeyDown:
			if m.cmdMenuOpen {
				matches := matchCommands(m.input.Value())
				if len(matches) > 0 {
					m.cmdMenuIdx++
					if m.cmdMenuIdx >= len(matches) {
						m.cmdMenuIdx = 0
					}
					return m, nil
				}
			} else if m.historyIdx != -1 {
				m.historyIdx++
				if m.historyIdx >= len(m.history) {
					m.historyIdx = -1
					m.input.SetValue(m.historySaved)
					m.historySaved = ""
				} else {
					m.input.SetValue(m.history[m.historyIdx])
				}
				m.input.CursorEnd()
				return m, nil
			}

		case tea.KeyTab:
			if m.cmdMenuOpen {
				matches := matchCommands(m.input.Value())
				if len(matches) > 0 {
					idx := m.cmdMenuIdx
					if idx < 0 || idx >= len(matches) {
						idx = 0
					}
					m.input.SetValue(matches[idx].name + " ")
					m.input.CursorEnd()
					m.cmdMenuOpen = false
					m.cmdMenuIdx = 0
				}
				return m, nil
			}

		case tea.KeyEnter:
			// Enter completes a partially typed command name; a complete
			// name or one with arguments runs.
			if m.cmdMenuOpen {
				typed := strings.TrimSpace(m.input.Value())
				matches := matchCommands(typed)
				if !strings.Contains(typed, " ") && m.cmdMenuIdx < len(matches) && matches[m.cmdMenuIdx].name != typed {
					m.input.SetValue(matches[m.cmdMenuIdx].name + " ")
					m.input.CursorEnd()
					m.cmdMenuOpen = false
					m.cmdMenuIdx = 0
					return m, nil
				}
			}

			value := strings.TrimSpace(m.input.Value())
			if m.mode == modeNewTitle {
				m.input.SetValue("")
				return m.handleNewTitleSubmit(value)
			}
			if value == "" {
				return m, nil
			}

			if len(m.history) == 0 || m.history[len(m.history)-1] != value {
				m.history = append(m.history, value)
				if len(m.history) > 1000 {
					m.history = m.history[len(m.history)-1000:]
				}
			}
			m.historyIdx = -1
			m.historySaved = ""

			m.input.SetValue("")
			m.cmdMenuOpen = false
			m.cmdMenuIdx = 0

			return m.dispatchInput(value)
		}

	// ── Async results ─────────────────────────────────────────────────
	case threadsLoadedMsg:
		return m.handleThreadsLoaded(msg)

	case threadCreatedMsg:
		return m.handleThreadCreated(msg)

	case historyLoadedMsg:
		return m.handleHistoryLoaded(msg)

	case chatReplyMsg:
		return m.handleChatReply(msg)

	case noticeExpiredMsg:
		// Pending drops the notice once its deadline has passed.
		m.relay.Pending(m.now())
		return m, nil
	}

	// Update sub-components
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	newVal := m.input.Value()
	if newVal != m.lastInputVal {
		m.lastInputVal = newVal
		if m.historyIdx != -1 {
			if m.historyIdx < len(m.history) && m.history[m.historyIdx] != newVal {
				m.historyIdx = -1
				m.historySaved = ""
			}
		}
		m.cmdMenuOpen = m.mode != modeNewTitle && strings.HasPrefix(newVal, "/")
		m.cmdMenuIdx = 0
	}

	return m, tea.Batch(cmds...)
}

func (m model) modeFromConversation() appMode {
	if m.conv.Responding() {
		return modeResponding
	}
	return modeIdle
}

// ─── View ───────────────────────────────────────────────────────────────────
//
// Inline mode: View() only shows the notice, thread panel, input and hints.
// The transcript is printed above via tea.Println.

func (m model) View() string {
	if !m.ready {
		return ""
	}

	var s strings.Builder

	if n, ok := m.relay.Pending(m.now()); ok {
		s.WriteString(renderToast(n))
		s.WriteString("\n")
	}

	if m.threads.SidebarOpen() {
		s.WriteString(renderSidebar(m.threads, m.width, m.now()))
		s.WriteString("\n\n")
	}

	if m.mode == modeResponding {
		s.WriteString(m.spinner.View() + " " + statusStyle.Render("Thinking..."))
		s.WriteString("\n")
	}
	s.WriteString(m.input.View())
	s.WriteString("\n")

	sepWidth := min(m.width, 80)
	if sepWidth < 20 {
		sepWidth = 20
	}
	s.WriteString(separatorStyle.Render(strings.Repeat("─", sepWidth)))
	s.WriteString("\n")

	s.WriteString(m.renderHints())

	return s.String()
}

// ─── Hint bar ───────────────────────────────────────────────────────────────

func (m model) renderHints() string {
	if m.mode == modeNewTitle {
		return hintBarStyle.Render("  Enter create   Esc cancel")
	}

	if m.cmdMenuOpen {
		matches := matchCommands(m.input.Value())
		if len(matches) > 0 {
			return m.renderCommandMenu(matches)
		}
	}

	if m.mode == modeResponding {
		return hintBarStyle.Render("  waiting for answer · /open switches thread · Ctrl+C quit")
	}
	return hintBarStyle.Render("  ? for help")
}

// renderCommandMenu renders a vertical list of matching commands.
func (m model) renderCommandMenu(matches []slashCmd) string {
	maxLen := 0
	for _, c := range matches {
		if len(c.name) > maxLen {
			maxLen = len(c.name)
		}
	}

	var lines []string
	for i, c := range matches {
		padded := c.name
		for len(padded) < maxLen {
			padded += " "
		}

		var line string
		if i == m.cmdMenuIdx {
			line = "  " + cmdSelectedNameStyle.Render(padded) + "  " + cmdSelectedDescStyle.Render(c.desc)
		} else {
			line = "  " + cmdNameStyle.Render(padded) + "  " + cmdDescStyle.Render(c.desc)
		}
		lines = append(lines, line)
	}

	lines = append(lines, hintBarStyle.Render("  ↑↓ navigate  Tab/Enter select"))

	return strings.Join(lines, "\n")
}

// matchCommands returns all slash commands matching a prefix. Arguments
// after the command name are ignored.
func matchCommands(input string) []slashCmd {
	prefix := strings.ToLower(input)
	if i := strings.IndexByte(prefix, ' '); i >= 0 {
		prefix = prefix[:i]
	}
	if prefix == "/" {
		return slashCommands
	}
	var matches []slashCmd
	for _, c := range slashCommands {
		if strings.HasPrefix(c.name, prefix) {
			matches = append(matches, c)
		}
	}
	return matches
}
