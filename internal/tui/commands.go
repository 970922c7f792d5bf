package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"regchat-cli/internal/api"
	"regchat-cli/internal/config"
	"regchat-cli/internal/service"
)

// ─── Async messages ─────────────────────────────────────────────────────────

type threadsLoadedMsg struct {
	threads []api.Thread
	show    bool // print the list, not only refresh the sidebar
	err     error
}

type threadCreatedMsg struct {
	thread *api.Thread
	err    error
}

type historyLoadedMsg struct {
	threadID  string
	messages  []api.Message
	reconcile bool // follow-up fetch after a reply; nothing new to print
	err       error
}

type chatReplyMsg struct {
	req  service.PendingRequest
	resp *api.ChatResponse
	err  error
}

type noticeExpiredMsg struct{}

func loadThreads(client api.ChatAPI, show bool) tea.Cmd {
	return func() tea.Msg {
		threads, err := client.ListThreads()
		return threadsLoadedMsg{threads: threads, show: show, err: err}
	}
}

func createThread(client api.ChatAPI, title string) tea.Cmd {
	return func() tea.Msg {
		t, err := client.CreateThread(title)
		return threadCreatedMsg{thread: t, err: err}
	}
}

func loadHistory(client api.ChatAPI, threadID string, reconcile bool) tea.Cmd {
	return func() tea.Msg {
		msgs, err := client.ListMessages(threadID)
		return historyLoadedMsg{threadID: threadID, messages: msgs, reconcile: reconcile, err: err}
	}
}

func sendChat(client api.ChatAPI, req service.PendingRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.Chat(req.ThreadID, req.Query)
		return chatReplyMsg{req: req, resp: resp, err: err}
	}
}

// ─── Input dispatcher ───────────────────────────────────────────────────────

func (m model) dispatchInput(input string) (tea.Model, tea.Cmd) {
	if input == "?" {
		return m.cmdHelp()
	}
	if strings.HasPrefix(input, "/") {
		return m.dispatchCommand(input)
	}
	return m.cmdAsk(input)
}

func (m model) dispatchCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "/help", "/h":
		return m.cmdHelp()
	case "/threads":
		return m.cmdThreads()
	case "/new":
		return m.cmdNew(strings.Join(args, " "))
	case "/open":
		return m.cmdOpen(args)
	case "/go":
		return m.cmdGo()
	case "/sidebar":
		return m.cmdSidebar()
	case "/theme":
		return m.cmdTheme(args)
	case "/config":
		return m.cmdConfig()
	case "/clear":
		return m.cmdClear()
	case "/quit", "/exit", "/q":
		return m, tea.Quit
	default:
		return m, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ Unknown command: %s (type /help)", cmd)))
	}
}

// ─── /help ──────────────────────────────────────────────────────────────────

func (m model) cmdHelp() (tea.Model, tea.Cmd) {
	pad := func(s string, w int) string {
		for len(s) < w {
			s += " "
		}
		return s
	}

	lines := []tea.Cmd{
		tea.Println(""),
		tea.Println(dimStyle.Render("  Shortcuts:")),
		tea.Println(""),
		tea.Println("  " + pad(hintKeyStyle.Render("/threads"), 30) + dimStyle.Render("List chat threads")),
		tea.Println("  " + pad(hintKeyStyle.Render("/new [title]"), 30) + dimStyle.Render("Create a chat and switch to it")),
		tea.Println("  " + pad(hintKeyStyle.Render("/open <n|id>"), 30) + dimStyle.Render("Switch to a listed thread")),
		tea.Println("  " + pad(hintKeyStyle.Render("/go"), 30) + dimStyle.Render("Open the thread with a waiting reply (Ctrl+G)")),
		tea.Println("  " + pad(hintKeyStyle.Render("/sidebar"), 30) + dimStyle.Render("Show or hide the thread panel")),
		tea.Println("  " + pad(hintKeyStyle.Render("/theme [dark|light]"), 30) + dimStyle.Render("Switch the markdown theme")),
		tea.Println("  " + pad(hintKeyStyle.Render("/config"), 30) + dimStyle.Render("Show current configuration")),
		tea.Println("  " + pad(hintKeyStyle.Render("/clear"), 30) + dimStyle.Render("Clear the screen")),
		tea.Println("  " + pad(hintKeyStyle.Render("/quit"), 30) + dimStyle.Render("Exit")),
		tea.Println(""),
		tea.Println(dimStyle.Render("  Anything else is sent as a question to the active thread.")),
		tea.Println(""),
	}
	return m, tea.Sequence(lines...)
}

// ─── /threads ───────────────────────────────────────────────────────────────

func (m model) cmdThreads() (tea.Model, tea.Cmd) {
	return m, tea.Sequence(
		tea.Println(statusStyle.Render("  ⟳ Loading threads...")),
		loadThreads(m.client, true),
	)
}

func (m model) handleThreadsLoaded(msg threadsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Error("list_threads_failed", zap.Error(msg.err))
		return m, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ Failed to load threads: %s", api.Describe(msg.err))))
	}

	m.threads.Set(msg.threads)
	if !msg.show {
		return m, nil
	}

	if len(msg.threads) == 0 {
		return m, tea.Println(warnMsgStyle.Render("  ! No threads yet. Use /new to start one."))
	}

	now := m.now()
	cmds := []tea.Cmd{
		tea.Println(""),
		tea.Println(dimStyle.Render(fmt.Sprintf("  Threads (%d):", len(msg.threads)))),
	}
	for i, t := range msg.threads {
		row := service.FormatThreadRow(t, m.threads.ActiveID(), 0, now)
		cmds = append(cmds,
			tea.Println(renderThreadRow(i+1, row)),
			tea.Println(dimStyle.Render("        "+t.ID)),
		)
	}
	cmds = append(cmds,
		tea.Println(""),
		tea.Println(dimStyle.Render("  Use /open <n> to switch")),
		tea.Println(""),
	)
	return m, tea.Sequence(cmds...)
}

// ─── /new ───────────────────────────────────────────────────────────────────

func (m model) cmdNew(title string) (tea.Model, tea.Cmd) {
	title = strings.TrimSpace(title)
	if title == "" {
		m.mode = modeNewTitle
		m.input.Placeholder = "Your new chat title"
		m.input.SetValue("")
		return m, tea.Println(dimStyle.Render("  Chat title:"))
	}
	return m.submitNewThread(title)
}

func (m model) handleNewTitleSubmit(value string) (tea.Model, tea.Cmd) {
	m.mode = modeIdle
	m.input.Placeholder = inputPlaceholder
	return m.submitNewThread(value)
}

func (m model) submitNewThread(title string) (tea.Model, tea.Cmd) {
	return m, tea.Sequence(
		tea.Println(statusStyle.Render("  ⟳ Creating chat...")),
		createThread(m.client, title),
	)
}

func (m model) handleThreadCreated(msg threadCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Error("create_thread_failed", zap.Error(msg.err))
		return m, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ Failed to create chat: %s", api.Describe(msg.err))))
	}

	m.threads.Prepend(*msg.thread)
	m.log.Info("thread_created", zap.String("thread_id", msg.thread.ID))
	next, cmd := m.switchThread(msg.thread.ID)
	return next, tea.Sequence(
		tea.Println(successMsgStyle.Render(fmt.Sprintf("  ✓ Created %q", msg.thread.Title))),
		cmd,
	)
}

// ─── /open, /go ─────────────────────────────────────────────────────────────

func (m model) cmdOpen(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m, tea.Println(errorMsgStyle.Render("  ✗ Usage: /open <number|thread-id>"))
	}
	t, ok := m.threads.Find(args[0])
	if !ok {
		return m, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ No thread matches %q (see /threads)", args[0])))
	}
	return m.switchThread(t.ID)
}

func (m model) cmdGo() (tea.Model, tea.Cmd) {
	n, ok := m.relay.Take(m.now())
	if !ok {
		return m, tea.Println(dimStyle.Render("  No reply waiting in another thread."))
	}
	return m.switchThread(n.ThreadID)
}

// switchThread activates id. A change clears the view and starts exactly
// one history fetch; re-selecting the active thread does nothing.
func (m model) switchThread(id string) (tea.Model, tea.Cmd) {
	m.relay.Clear(id)
	m.threads.Activate(id)
	if !m.conv.Switch(id) {
		return m, nil
	}
	m.mode = modeIdle

	if m.cfg != nil && m.cfg.LastThread != id {
		m.cfg.LastThread = id
		if err := m.cfg.Save(); err != nil {
			m.log.Warn("save_last_thread_failed", zap.Error(err))
		}
	}

	return m, tea.Sequence(
		tea.Println(renderThreadHeader(m.threads.Title(id), m.width)),
		loadHistory(m.client, id, false),
	)
}

func (m model) handleHistoryLoaded(msg historyLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.threadID != m.conv.ThreadID() {
		return m, nil
	}
	if msg.err != nil {
		m.log.Error("list_messages_failed", zap.String("thread_id", msg.threadID), zap.Error(msg.err))
		return m, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ Failed to load messages: %s", api.Describe(msg.err))))
	}

	m.conv.Reconcile(msg.threadID, msg.messages)
	if msg.reconcile {
		return m, nil
	}
	if len(msg.messages) == 0 {
		return m, tea.Println(dimStyle.Render("  No messages yet. Ask something!"))
	}

	var cmds []tea.Cmd
	for _, hm := range msg.messages {
		cmds = append(cmds, tea.Println(m.renderer.render(hm)), tea.Println(""))
	}
	return m, tea.Sequence(cmds...)
}

// ─── Asking ─────────────────────────────────────────────────────────────────

func (m model) cmdAsk(input string) (tea.Model, tea.Cmd) {
	if m.conv.ThreadID() == "" {
		return m, tea.Println(errorMsgStyle.Render("  ✗ No chat selected. Use /new <title> or /open <n>."))
	}
	if m.conv.Responding() {
		return m, tea.Println(warnMsgStyle.Render("  ! Still waiting for the previous answer."))
	}

	req, ok := m.conv.Submit(input)
	if !ok {
		return m, nil
	}
	m.mode = modeResponding
	msgs := m.conv.Messages()
	return m, tea.Sequence(
		tea.Println(m.renderer.render(msgs[len(msgs)-1])),
		tea.Println(""),
		sendChat(m.client, req),
	)
}

func (m model) handleChatReply(msg chatReplyMsg) (tea.Model, tea.Cmd) {
	log := m.log.With(zap.String("thread_id", msg.req.ThreadID))

	if msg.err != nil {
		log.Error("chat_failed", zap.Error(msg.err))
		m.conv.Fail(msg.req)
		m.mode = m.modeFromConversation()
		return m, tea.Println(errorMsgStyle.Render(fmt.Sprintf("  ✗ No answer: %s", api.Describe(msg.err))))
	}

	if service.Route(msg.req.ThreadID, m.conv.ThreadID()) {
		n := m.relay.Queue(msg.req.ThreadID, m.threads.Title(msg.req.ThreadID), m.now())
		log.Info("reply_for_inactive_thread")
		return m, tea.Tick(n.Expires.Sub(m.now()), func(time.Time) tea.Msg { return noticeExpiredMsg{} })
	}

	reply := msg.resp.Message()
	m.conv.Settle(msg.req, reply)
	m.mode = modeIdle
	return m, tea.Sequence(
		tea.Println(m.renderer.render(reply)),
		tea.Println(""),
		loadHistory(m.client, msg.req.ThreadID, true),
	)
}

// ─── /sidebar, /theme ───────────────────────────────────────────────────────

func (m model) cmdSidebar() (tea.Model, tea.Cmd) {
	if m.threads.ToggleSidebar() {
		return m, tea.Sequence(
			tea.Println(dimStyle.Render("  Thread panel shown")),
			loadThreads(m.client, false),
		)
	}
	return m, tea.Println(dimStyle.Render("  Thread panel hidden"))
}

func (m model) cmdTheme(args []string) (tea.Model, tea.Cmd) {
	next := config.ThemeDark
	if m.theme == config.ThemeDark {
		next = config.ThemeLight
	}
	if len(args) > 0 {
		next = strings.ToLower(args[0])
		if next != config.ThemeDark && next != config.ThemeLight {
			return m, tea.Println(errorMsgStyle.Render("  ✗ Usage: /theme [dark|light]"))
		}
	}
	m.theme = next
	m.renderer = newMessageRenderer(m.theme, m.filesURL, m.width)
	return m, tea.Println(successMsgStyle.Render(fmt.Sprintf("  ✓ Theme: %s", next)))
}

// ─── /config ────────────────────────────────────────────────────────────────

func (m model) cmdConfig() (tea.Model, tea.Cmd) {
	val := func(s string) string {
		if s == "" {
			return dimStyle.Render("(not set)")
		}
		return s
	}
	sidebar := "shown"
	if !m.threads.SidebarOpen() {
		sidebar = "hidden"
	}
	timeout := config.DefaultTimeout
	if m.cfg != nil {
		timeout = m.cfg.Timeout()
	}

	return m, tea.Sequence(
		tea.Println(""),
		tea.Println(dimStyle.Render("  Configuration:")),
		tea.Println(fmt.Sprintf("    Profile:  %s", config.ProfileName(m.profile))),
		tea.Println(fmt.Sprintf("    Server:   %s", val(m.server))),
		tea.Println(fmt.Sprintf("    Files:    %s", val(m.filesURL))),
		tea.Println(fmt.Sprintf("    Thread:   %s", val(m.conv.ThreadID()))),
		tea.Println(fmt.Sprintf("    Theme:    %s", m.theme)),
		tea.Println(fmt.Sprintf("    Sidebar:  %s", sidebar)),
		tea.Println(fmt.Sprintf("    Timeout:  %s", timeout)),
		tea.Println(""),
	)
}

// ─── /clear ─────────────────────────────────────────────────────────────────

func (m model) cmdClear() (tea.Model, tea.Cmd) {
	return m, tea.ClearScreen
}
