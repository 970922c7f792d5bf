package tui

import (
	"github.com/charmbracelet/lipgloss"

	"regchat-cli/internal/config"
)

// ─── Colors ─────────────────────────────────────────────────────────────────

var (
	colorTeal    = lipgloss.Color("#2BB3A3") // primary accent
	colorGreen   = lipgloss.Color("78")
	colorYellow  = lipgloss.Color("220")
	colorRed     = lipgloss.Color("196")
	colorMagenta = lipgloss.Color("213")
	colorBlue    = lipgloss.Color("111")
	colorGray    = lipgloss.Color("242")
	colorDimGray = lipgloss.Color("238")
	colorWhite   = lipgloss.Color("255")
)

// ─── Welcome ────────────────────────────────────────────────────────────────

var logoTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorWhite)

var versionStyle = lipgloss.NewStyle().
	Foreground(colorGray)

var welcomeHintStyle = lipgloss.NewStyle().
	Foreground(colorGray).
	Italic(true)

var welcomeInfoLabel = lipgloss.NewStyle().
	Foreground(colorGray)

// ─── Input / Prompt ─────────────────────────────────────────────────────────

var promptSymbol = lipgloss.NewStyle().
	Foreground(colorTeal).
	Bold(true)

// ─── Hint Bar ───────────────────────────────────────────────────────────────

var hintBarStyle = lipgloss.NewStyle().
	Foreground(colorGray)

var hintKeyStyle = lipgloss.NewStyle().
	Foreground(colorGray).
	Bold(true)

// Command menu styles
var cmdNameStyle = lipgloss.NewStyle().
	Foreground(colorTeal)

var cmdDescStyle = lipgloss.NewStyle().
	Foreground(colorGray)

// Selected/highlighted command in the menu
var cmdSelectedNameStyle = lipgloss.NewStyle().
	Foreground(colorTeal).
	Bold(true).
	Reverse(true)

var cmdSelectedDescStyle = lipgloss.NewStyle().
	Foreground(colorWhite).
	Bold(true)

// ─── Sidebar ────────────────────────────────────────────────────────────────

var sidebarHeaderStyle = lipgloss.NewStyle().
	Foreground(colorGray).
	Bold(true)

var sidebarActiveStyle = lipgloss.NewStyle().
	Foreground(colorTeal).
	Bold(true)

var sidebarItemStyle = lipgloss.NewStyle().
	Foreground(colorWhite)

// ─── Toast ──────────────────────────────────────────────────────────────────

var toastStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorBlue).
	Padding(0, 1)

var toastActionStyle = lipgloss.NewStyle().
	Foreground(colorBlue).
	Bold(true)

// ─── Messages ───────────────────────────────────────────────────────────────

// bubbleStyles holds the per-theme message layout. User text is plain so it
// can carry a background; assistant bodies are glamour output, which resets
// attributes, so they get a border instead.
type bubbleStyles struct {
	user      lipgloss.Style
	assistant lipgloss.Style
	thought   lipgloss.Style
}

func stylesFor(theme string) bubbleStyles {
	userBg, userFg := lipgloss.Color("24"), colorWhite
	edge := colorDimGray
	if theme == config.ThemeLight {
		userBg, userFg = lipgloss.Color("153"), lipgloss.Color("16")
		edge = lipgloss.Color("250")
	}
	return bubbleStyles{
		user: lipgloss.NewStyle().
			Background(userBg).
			Foreground(userFg).
			Padding(0, 1),
		assistant: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(edge).
			PaddingLeft(1),
		thought: lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true),
	}
}

// ─── Output Styles ──────────────────────────────────────────────────────────

var successMsgStyle = lipgloss.NewStyle().
	Foreground(colorGreen)

var errorMsgStyle = lipgloss.NewStyle().
	Foreground(colorRed)

var warnMsgStyle = lipgloss.NewStyle().
	Foreground(colorYellow)

var statusStyle = lipgloss.NewStyle().
	Foreground(colorYellow)

var threadHeaderStyle = lipgloss.NewStyle().
	Foreground(colorTeal).
	Bold(true)

var thoughtHeaderStyle = lipgloss.NewStyle().
	Foreground(colorMagenta).
	Bold(true)

var sourceHeaderStyle = lipgloss.NewStyle().
	Foreground(colorBlue).
	Bold(true)

var dimStyle = lipgloss.NewStyle().
	Foreground(colorGray)

var separatorStyle = lipgloss.NewStyle().
	Foreground(colorDimGray)
