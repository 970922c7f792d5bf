package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"regchat-cli/internal/api"
	"regchat-cli/internal/config"
	"regchat-cli/internal/service"
)

// mockAPI implements api.ChatAPI for testing.
type mockAPI struct {
	threads []api.Thread
	history map[string][]api.Message
	reply   *api.ChatResponse

	err error // if set, all methods return this error

	historyCalls map[string]int
	chatCalls    []service.PendingRequest
	created      []string
}

func newMockAPI() *mockAPI {
	return &mockAPI{
		history:      make(map[string][]api.Message),
		historyCalls: make(map[string]int),
		reply:        &api.ChatResponse{Response: "Jawaban. Sumber: DocA"},
	}
}

func (m *mockAPI) ListThreads() ([]api.Thread, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.threads, nil
}

func (m *mockAPI) CreateThread(title string) (*api.Thread, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, title)
	return &api.Thread{ID: "new-thread", Title: title}, nil
}

func (m *mockAPI) ListMessages(threadID string) ([]api.Message, error) {
	m.historyCalls[threadID]++
	if m.err != nil {
		return nil, m.err
	}
	return m.history[threadID], nil
}

func (m *mockAPI) Chat(threadID, query string) (*api.ChatResponse, error) {
	m.chatCalls = append(m.chatCalls, service.PendingRequest{ThreadID: threadID, Query: query})
	if m.err != nil {
		return nil, m.err
	}
	return m.reply, nil
}

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (model, *mockAPI) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvServer, "")
	t.Setenv(config.EnvFilesURL, "")
	t.Setenv(config.EnvTheme, "")

	mock := newMockAPI()
	mock.threads = []api.Thread{
		{ID: "t1", Title: "Inflasi"},
		{ID: "t2", Title: "Susenas"},
	}
	cfg := &config.Config{Server: "http://localhost:8080"}
	m := initialModel("test", "", cfg, mock, nil)
	m.threads.Set(mock.threads)
	m.now = func() time.Time { return testNow }
	m.ready = true
	m.width = 80
	m.height = 24
	return m, mock
}

// open switches the model to id and delivers the resulting history fetch.
func open(t *testing.T, m model, id string) model {
	t.Helper()
	result, _ := m.switchThread(id)
	rm := result.(model)
	msg := loadHistory(rm.client, id, false)()
	result, _ = rm.Update(msg)
	return result.(model)
}

func TestDispatchCommand(t *testing.T) {
	tests := []struct {
		input    string
		wantMode appMode
	}{
		{"/help", modeIdle},
		{"/config", modeIdle},
		{"/clear", modeIdle},
		{"/threads", modeIdle},
		{"/sidebar", modeIdle},
		{"/theme", modeIdle},
		{"/go", modeIdle},
		{"/new", modeNewTitle},
		{"/quit", modeIdle}, // quit returns tea.Quit cmd
		{"/unknown", modeIdle},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, _ := newTestModel(t)
			result, cmd := m.dispatchCommand(tt.input)
			rm := result.(model)
			if rm.mode != tt.wantMode {
				t.Errorf("mode = %d, want %d", rm.mode, tt.wantMode)
			}
			if cmd == nil {
				t.Error("expected a command, got nil")
			}
		})
	}
}

func TestAskWithoutThread(t *testing.T) {
	m, mock := newTestModel(t)
	result, cmd := m.dispatchInput("Apa itu inflasi?")
	rm := result.(model)

	if cmd == nil {
		t.Error("expected error message cmd, got nil")
	}
	if rm.mode != modeIdle {
		t.Errorf("mode = %d, want modeIdle", rm.mode)
	}
	if len(mock.chatCalls) != 0 {
		t.Errorf("chat calls = %d, want 0", len(mock.chatCalls))
	}
}

func TestAskBlankIsIgnored(t *testing.T) {
	m, mock := newTestModel(t)
	m = open(t, m, "t1")

	result, cmd := m.cmdAsk("   \t")
	rm := result.(model)
	if cmd != nil {
		t.Error("blank input should produce no command")
	}
	if len(rm.conv.Messages()) != 0 {
		t.Errorf("messages = %d, want 0", len(rm.conv.Messages()))
	}
	if len(mock.chatCalls) != 0 {
		t.Errorf("chat calls = %d, want 0", len(mock.chatCalls))
	}
}

func TestAskSuccess(t *testing.T) {
	m, mock := newTestModel(t)
	m = open(t, m, "t1")

	result, cmd := m.dispatchInput("Apa itu inflasi?")
	rm := result.(model)
	if cmd == nil {
		t.Fatal("expected chat command")
	}
	if rm.mode != modeResponding {
		t.Errorf("mode = %d, want modeResponding", rm.mode)
	}
	msgs := rm.conv.Messages()
	if len(msgs) != 1 || msgs[0].Role != api.RoleUser || !msgs[0].Local {
		t.Fatalf("want one optimistic user message, got %+v", msgs)
	}

	reply := sendChat(rm.client, service.PendingRequest{ThreadID: "t1", Query: "Apa itu inflasi?"})()
	if len(mock.chatCalls) != 1 || mock.chatCalls[0].ThreadID != "t1" {
		t.Fatalf("chat calls = %+v", mock.chatCalls)
	}

	result, cmd = rm.Update(reply)
	rm = result.(model)
	if cmd == nil {
		t.Error("expected print + reconcile command")
	}
	if rm.mode != modeIdle {
		t.Errorf("mode = %d, want modeIdle", rm.mode)
	}
	msgs = rm.conv.Messages()
	if len(msgs) != 2 || msgs[1].Role != api.RoleAssistant {
		t.Fatalf("want user + assistant, got %+v", msgs)
	}

	// Follow-up fetch reconciles without duplicating the exchange.
	mock.history["t1"] = []api.Message{
		{ID: "1", Role: api.RoleUser, Content: "Apa itu inflasi?"},
		{ID: "2", Role: api.RoleAssistant, Content: "Jawaban. Sumber: DocA"},
	}
	result, _ = rm.Update(loadHistory(rm.client, "t1", true)())
	rm = result.(model)
	if got := len(rm.conv.Messages()); got != 2 {
		t.Errorf("messages after reconcile = %d, want 2", got)
	}
}

func TestAskWhileResponding(t *testing.T) {
	m, _ := newTestModel(t)
	m = open(t, m, "t1")

	result, _ := m.cmdAsk("pertama")
	rm := result.(model)
	result, cmd := rm.cmdAsk("kedua")
	rm = result.(model)

	if cmd == nil {
		t.Error("expected warning cmd")
	}
	if got := len(rm.conv.Messages()); got != 1 {
		t.Errorf("messages = %d, want 1", got)
	}
}

func TestAskFailure(t *testing.T) {
	m, mock := newTestModel(t)
	m = open(t, m, "t1")
	mock.err = &api.StatusError{Code: 500, Body: "boom"}

	result, _ := m.cmdAsk("halo")
	rm := result.(model)
	result, cmd := rm.Update(sendChat(rm.client, service.PendingRequest{ThreadID: "t1", Query: "halo"})())
	rm = result.(model)

	if cmd == nil {
		t.Error("expected error line cmd")
	}
	if rm.mode != modeIdle {
		t.Errorf("mode = %d, want modeIdle", rm.mode)
	}
	msgs := rm.conv.Messages()
	if len(msgs) != 1 || msgs[0].Role != api.RoleUser {
		t.Errorf("optimistic message should remain alone, got %+v", msgs)
	}
}

func TestSwitchThreadFetchesOnce(t *testing.T) {
	m, mock := newTestModel(t)
	m = open(t, m, "t1")
	if mock.historyCalls["t1"] != 1 {
		t.Fatalf("history calls for t1 = %d, want 1", mock.historyCalls["t1"])
	}

	result, _ := m.cmdAsk("halo")
	m = result.(model)

	result, cmd := m.switchThread("t1")
	if cmd != nil {
		t.Error("re-selecting the active thread should not fetch")
	}
	m = result.(model)
	if !m.conv.Responding() {
		t.Error("re-selecting the active thread should keep the request pending")
	}

	m = open(t, m, "t2")
	if mock.historyCalls["t2"] != 1 {
		t.Errorf("history calls for t2 = %d, want 1", mock.historyCalls["t2"])
	}
	if m.mode != modeIdle || m.conv.Responding() {
		t.Error("switching should clear the responding indicator")
	}
	if len(m.conv.Messages()) != 0 {
		t.Errorf("messages = %d, want 0", len(m.conv.Messages()))
	}
	if m.threads.ActiveID() != "t2" {
		t.Errorf("active = %q, want t2", m.threads.ActiveID())
	}
	if m.cfg.LastThread != "t2" {
		t.Errorf("LastThread = %q, want t2", m.cfg.LastThread)
	}
}

func TestStaleHistoryIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	m = open(t, m, "t2")

	stale := historyLoadedMsg{threadID: "t1", messages: []api.Message{{Role: api.RoleUser, Content: "lama"}}}
	result, cmd := m.Update(stale)
	rm := result.(model)
	if cmd != nil {
		t.Error("stale history should print nothing")
	}
	if len(rm.conv.Messages()) != 0 {
		t.Errorf("messages = %d, want 0", len(rm.conv.Messages()))
	}
}

func TestReplyForInactiveThreadQueuesNotice(t *testing.T) {
	m, _ := newTestModel(t)
	m = open(t, m, "t1")

	result, _ := m.cmdAsk("halo")
	m = result.(model)
	m = open(t, m, "t2")

	reply := sendChat(m.client, service.PendingRequest{ThreadID: "t1", Query: "halo"})()
	result, cmd := m.Update(reply)
	m = result.(model)
	if cmd == nil {
		t.Error("expected expiry tick")
	}
	if len(m.conv.Messages()) != 0 {
		t.Errorf("reply leaked into the active thread: %+v", m.conv.Messages())
	}
	n, ok := m.relay.Pending(testNow)
	if !ok || n.ThreadID != "t1" || n.Title != "Inflasi" {
		t.Fatalf("notice = %+v, %v", n, ok)
	}
	if !strings.Contains(m.View(), service.NoticeText) {
		t.Error("View should show the notice")
	}

	result, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = result.(model)
	if m.conv.ThreadID() != "t1" {
		t.Errorf("thread = %q, want t1", m.conv.ThreadID())
	}
	if _, ok := m.relay.Pending(testNow); ok {
		t.Error("navigating should consume the notice")
	}
}

func TestNoticeExpires(t *testing.T) {
	m, _ := newTestModel(t)
	m.relay.Queue("t1", "Inflasi", testNow)

	m.now = func() time.Time { return testNow.Add(service.NoticeTTL) }
	result, _ := m.Update(noticeExpiredMsg{})
	m = result.(model)

	if strings.Contains(m.View(), service.NoticeText) {
		t.Error("expired notice should not be shown")
	}
	result, _ = m.cmdGo()
	if result.(model).conv.ThreadID() != "" {
		t.Error("/go after expiry should not navigate")
	}
}

func TestNewThreadFlow(t *testing.T) {
	m, mock := newTestModel(t)

	result, _ := m.dispatchCommand("/new")
	m = result.(model)
	if m.mode != modeNewTitle {
		t.Fatalf("mode = %d, want modeNewTitle", m.mode)
	}

	result, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = result.(model)
	if m.mode != modeIdle {
		t.Errorf("Esc should cancel, mode = %d", m.mode)
	}

	result, _ = m.dispatchCommand("/new Metodologi Survei")
	m = result.(model)
	msg := createThread(m.client, "Metodologi Survei")()
	result, cmd := m.Update(msg)
	m = result.(model)

	if cmd == nil {
		t.Error("expected history fetch cmd")
	}
	if len(mock.created) != 1 || mock.created[0] != "Metodologi Survei" {
		t.Errorf("created = %v", mock.created)
	}
	if m.threads.Threads()[0].ID != "new-thread" {
		t.Errorf("new thread should be prepended, got %+v", m.threads.Threads())
	}
	if m.conv.ThreadID() != "new-thread" || m.threads.ActiveID() != "new-thread" {
		t.Error("new thread should become active")
	}

	saved, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if saved.LastThread != "new-thread" {
		t.Errorf("saved LastThread = %q, want new-thread", saved.LastThread)
	}
}

func TestCreateThreadFailure(t *testing.T) {
	m, mock := newTestModel(t)
	mock.err = errors.New("refused")

	result, cmd := m.Update(createThread(m.client, "x")())
	m = result.(model)
	if cmd == nil {
		t.Error("expected error line cmd")
	}
	if m.threads.Len() != 2 {
		t.Errorf("threads = %d, want 2", m.threads.Len())
	}
}

func TestOpenCommand(t *testing.T) {
	m, _ := newTestModel(t)

	result, cmd := m.dispatchCommand("/open 2")
	m = result.(model)
	if cmd == nil {
		t.Fatal("expected fetch cmd")
	}
	if m.conv.ThreadID() != "t2" {
		t.Errorf("thread = %q, want t2", m.conv.ThreadID())
	}

	result, _ = m.dispatchCommand("/open nope")
	if result.(model).conv.ThreadID() != "t2" {
		t.Error("unknown ref should not switch")
	}
}

func TestThemeToggle(t *testing.T) {
	m, _ := newTestModel(t)
	if m.theme != config.ThemeDark {
		t.Fatalf("default theme = %q", m.theme)
	}

	result, _ := m.dispatchCommand("/theme")
	m = result.(model)
	if m.theme != config.ThemeLight || m.renderer.md.Theme() != config.ThemeLight {
		t.Errorf("theme = %q, renderer = %q", m.theme, m.renderer.md.Theme())
	}

	result, _ = m.dispatchCommand("/theme neon")
	if result.(model).theme != config.ThemeLight {
		t.Error("invalid theme should be rejected")
	}
}

func TestSidebarToggle(t *testing.T) {
	m, _ := newTestModel(t)
	if !strings.Contains(m.View(), "Recent Chat") {
		t.Error("sidebar should be shown by default")
	}

	result, _ := m.dispatchCommand("/sidebar")
	m = result.(model)
	if strings.Contains(m.View(), "Recent Chat") {
		t.Error("sidebar should be hidden after toggle")
	}
}

func TestRespondingView(t *testing.T) {
	m, _ := newTestModel(t)
	m = open(t, m, "t1")
	result, _ := m.cmdAsk("halo")
	m = result.(model)

	if !strings.Contains(m.View(), "Thinking...") {
		t.Error("View should show the thinking indicator")
	}
}

func TestMatchCommands(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"/", len(slashCommands)},
		{"/th", 2},
		{"/open 3", 1},
		{"/xyz", 0},
	}
	for _, tt := range tests {
		if got := len(matchCommands(tt.input)); got != tt.want {
			t.Errorf("matchCommands(%q) = %d matches, want %d", tt.input, got, tt.want)
		}
	}
}

func TestHistoryNavigation(t *testing.T) {
	m, _ := newTestModel(t)
	m.history = []string{"/threads", "/config"}

	result, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = result.(model)
	if m.input.Value() != "/config" {
		t.Errorf("input = %q, want /config", m.input.Value())
	}
	result, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = result.(model)
	if m.input.Value() != "/threads" {
		t.Errorf("input = %q, want /threads", m.input.Value())
	}
	result, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	result, _ = result.(model).Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := result.(model).input.Value(); got != "" {
		t.Errorf("input = %q, want restored empty input", got)
	}
}
