package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"regchat-cli/internal/api"
	"regchat-cli/internal/service"
)

const appTitle = "Chat Dashboard BPS"

// ─── Welcome Screen ─────────────────────────────────────────────────────────

func renderWelcome(version, server, threadTitle string) string {
	titleLine := logoTitleStyle.Render(appTitle) + " " + versionStyle.Render("v"+version)

	serverDisplay := server
	if len(serverDisplay) > 40 {
		serverDisplay = serverDisplay[:37] + "..."
	}
	infoLine := welcomeInfoLabel.Render(serverDisplay)
	if threadTitle != "" {
		infoLine = welcomeInfoLabel.Render(fmt.Sprintf("%s · %s", serverDisplay, threadTitle))
	}

	hint := welcomeHintStyle.Render("Type a question, /new to start a chat, or /help")
	return fmt.Sprintf("\n%s\n%s\n%s\n", titleLine, infoLine, hint)
}

func renderThreadHeader(title string, width int) string {
	label := " " + title + " "
	ruleWidth := min(width, 80) - lipgloss.Width(label) - 4
	if ruleWidth < 2 {
		ruleWidth = 2
	}
	return "\n" + separatorStyle.Render("──") + threadHeaderStyle.Render(label) +
		separatorStyle.Render(strings.Repeat("─", ruleWidth)) + "\n"
}

// ─── Messages ───────────────────────────────────────────────────────────────

// messageRenderer draws messages for the transcript. It is rebuilt when the
// terminal width or the theme changes.
type messageRenderer struct {
	md       *api.MarkdownRenderer
	styles   bubbleStyles
	filesURL string
	width    int
}

func newMessageRenderer(theme, filesURL string, width int) messageRenderer {
	if width <= 0 {
		width = 80
	}
	return messageRenderer{
		md:       api.NewMarkdownRenderer(theme, bubbleWidth(width)),
		styles:   stylesFor(theme),
		filesURL: filesURL,
		width:    width,
	}
}

func bubbleWidth(width int) int {
	w := width * 3 / 4
	if w < 20 {
		w = 20
	}
	return min(w, 100)
}

func (r messageRenderer) render(msg api.Message) string {
	if msg.Role == api.RoleUser {
		return r.renderUser(msg)
	}
	return r.renderAssistant(msg)
}

// renderUser right-aligns the question in a filled bubble.
func (r messageRenderer) renderUser(msg api.Message) string {
	text := strings.TrimSpace(msg.Content)
	style := r.styles.user
	if lipgloss.Width(text)+2 > bubbleWidth(r.width) {
		style = style.Width(bubbleWidth(r.width))
	}
	return lipgloss.PlaceHorizontal(r.width, lipgloss.Right, style.Render(text))
}

// renderAssistant left-aligns thought, markdown body and cited sources.
func (r messageRenderer) renderAssistant(msg api.Message) string {
	parsed := service.ResolveContent(msg)

	var blocks []string
	if thought := strings.TrimSpace(msg.Thought); thought != "" {
		blocks = append(blocks,
			thoughtHeaderStyle.Render("Thought")+"\n"+
				r.styles.thought.Width(bubbleWidth(r.width)).Render(thought))
	}
	if body := strings.TrimSpace(parsed.Body); body != "" {
		blocks = append(blocks, r.md.Render(body))
	}
	if len(parsed.Citations) > 0 {
		blocks = append(blocks, renderCitations(parsed.Citations, r.filesURL))
	}
	if len(blocks) == 0 {
		blocks = append(blocks, dimStyle.Render("(empty reply)"))
	}
	return r.styles.assistant.Render(strings.Join(blocks, "\n\n"))
}

func renderCitations(cites []api.Citation, filesURL string) string {
	lines := []string{sourceHeaderStyle.Render(service.SourceMarker)}
	for _, c := range cites {
		line := "  • " + hyperlink(service.FileURL(filesURL, c.Name), c.Name)
		if c.Status != "" {
			line += dimStyle.Render(" · " + service.StatusMarker + " " + c.Status)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// hyperlink wraps text in an OSC 8 link; terminals without support show the
// text alone.
func hyperlink(url, text string) string {
	return termenv.Hyperlink(url, text)
}

// ─── Threads ────────────────────────────────────────────────────────────────

const maxSidebarRows = 6

// renderSidebar is the thread panel shown above the prompt.
func renderSidebar(store *service.ThreadStore, width int, now time.Time) string {
	threads := store.Threads()
	if len(threads) == 0 {
		return sidebarHeaderStyle.Render("  Recent Chat") + "\n" + dimStyle.Render("    (no threads yet, /new to create one)")
	}

	titleWidth := max(min(width, 80)-24, 12)
	lines := []string{sidebarHeaderStyle.Render("  Recent Chat")}
	for i, t := range threads {
		if i == maxSidebarRows {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("    … %d more (/threads)", len(threads)-maxSidebarRows)))
			break
		}
		lines = append(lines, renderThreadRow(i+1, service.FormatThreadRow(t, store.ActiveID(), titleWidth, now)))
	}
	return strings.Join(lines, "\n")
}

func renderThreadRow(n int, row service.ThreadDisplay) string {
	marker := "  "
	title := sidebarItemStyle.Render(row.Title)
	if row.Active {
		marker = sidebarActiveStyle.Render("● ")
		title = sidebarActiveStyle.Render(row.Title)
	}
	line := fmt.Sprintf("  %s%s %s", marker, dimStyle.Render(fmt.Sprintf("%2d.", n)), title)
	if row.Updated != "" {
		line += dimStyle.Render("  " + row.Updated)
	}
	return line
}

// ─── Notice ─────────────────────────────────────────────────────────────────

func renderToast(n service.Notice) string {
	title := n.Title
	if title == "" {
		title = n.ThreadID
	}
	body := service.NoticeText + "\n" +
		dimStyle.Render(title) + "  " + toastActionStyle.Render("[Lihat]") + dimStyle.Render(" Ctrl+G or /go")
	return toastStyle.Render(body)
}
