package display

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Gray    = "\033[90m"
)

func Header(text string) {
	fmt.Printf("\n%s%s%s\n", Bold+Cyan, text, Reset)
	fmt.Println(strings.Repeat("─", min(len(text)+4, 80)))
}

func SubHeader(text string) {
	fmt.Printf("%s%s%s\n", Bold+White, text, Reset)
}

func Success(text string) {
	fmt.Printf("%s✓%s %s\n", Green, Reset, text)
}

func Error(text string) {
	fmt.Fprintf(os.Stderr, "%s✗%s %s\n", Red, Reset, text)
}

func Warn(text string) {
	fmt.Printf("%s!%s %s\n", Yellow, Reset, text)
}

func Info(label, value string) {
	fmt.Printf("  %s%-20s%s %s\n", Dim, label, Reset, value)
}

func Spinner(text string) {
	fmt.Printf("\r%s⟳%s %s", Yellow, Reset, text)
}

func ClearLine() {
	fmt.Print("\r\033[K")
}

// RoleLabel colors a message author for plain CLI transcripts.
func RoleLabel(role string) string {
	switch strings.ToUpper(role) {
	case "USER":
		return Bold + Cyan + "You" + Reset
	case "ASSISTANT":
		return Bold + Green + "Assistant" + Reset
	default:
		return Gray + role + Reset
	}
}

// StatusLabel colors a regulation status: in force green, revoked or
// replaced red, anything else yellow.
func StatusLabel(status string) string {
	switch s := strings.ToLower(strings.TrimSpace(status)); {
	case s == "":
		return ""
	case strings.Contains(s, "tidak berlaku"), strings.Contains(s, "dicabut"), strings.Contains(s, "diganti"):
		return Red + status + Reset
	case strings.Contains(s, "berlaku"):
		return Green + status + Reset
	default:
		return Yellow + status + Reset
	}
}

func FormatTime(ts string) string {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return ts
		}
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
