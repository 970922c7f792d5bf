package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"regchat-cli/internal/api"
	"regchat-cli/internal/config"
	"regchat-cli/internal/display"
	"regchat-cli/internal/logging"
	"regchat-cli/internal/service"
	"regchat-cli/internal/tui"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	activeProfile string
	debugMode     bool
	jsonOutput    bool
	logger        = logging.Nop()
)

func main() {
	args := os.Args[1:]

	// Parse global flags first (--profile, --debug)
	args = parseGlobalFlags(args)

	if err := config.LoadDotEnv(); err != nil {
		display.Warn(err.Error())
	}
	if dir, err := config.Dir(); err == nil {
		if l, err := logging.New(dir, debugMode); err == nil {
			logger = l
		}
	}
	defer logger.Sync()

	// No args → launch interactive mode (default)
	if len(args) == 0 || args[0] == "-i" || args[0] == "--interactive" || args[0] == "interactive" {
		if err := runInteractive(); err != nil {
			display.Error(err.Error())
			os.Exit(1)
		}
		return
	}

	var err error

	switch args[0] {
	case "threads":
		err = cmdThreads()
	case "new":
		err = cmdNew(args[1:])
	case "history":
		err = cmdHistory(args[1:])
	case "ask":
		err = cmdAsk(args[1:])
	case "cite":
		err = cmdCite(args[1:])
	case "set":
		err = cmdSet(args[1:])
	case "config":
		err = cmdConfig()
	case "profiles":
		err = cmdProfiles()
	case "help", "--help", "-h":
		printUsage()
	case "version", "--version", "-v":
		fmt.Println(versionString())
	default:
		display.Error(fmt.Sprintf("Unknown command: %s", args[0]))
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command_failed", zap.String("command", args[0]), zap.Error(err))
		display.Error(err.Error())
		os.Exit(1)
	}
}

func runInteractive() error {
	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}
	eff := cfg.Effective()
	if err := eff.Validate(); err != nil {
		return err
	}
	return tui.Run(version, activeProfile, cfg, logger, debugMode)
}

// loadClient returns the saved config (for Save) and a client built from
// its effective view.
func loadClient() (*config.Config, *api.Client, error) {
	cfg, err := config.Load(activeProfile)
	if err != nil {
		return nil, nil, err
	}
	eff := cfg.Effective()
	if err := eff.Validate(); err != nil {
		return nil, nil, err
	}
	client := api.NewClient(cfg)
	client.SetLogger(logger)
	client.SetDebug(debugMode)
	return cfg, client, nil
}

// ─── threads ────────────────────────────────────────────────────────────────

func cmdThreads() error {
	cfg, client, err := loadClient()
	if err != nil {
		return err
	}

	if !jsonOutput {
		display.Spinner("Loading threads...")
	}
	threads, err := client.ListThreads()
	if !jsonOutput {
		display.ClearLine()
	}
	if err != nil {
		return fmt.Errorf("listing threads: %w", err)
	}
	if jsonOutput {
		return printJSON(threads)
	}

	display.Header(fmt.Sprintf("Threads (%d)", len(threads)))

	if len(threads) == 0 {
		display.Warn("No threads found.")
		return nil
	}

	for i, t := range threads {
		title := t.Title
		if title == "" {
			title = display.Dim + "(untitled)" + display.Reset
		}
		marker := " "
		if t.ID == cfg.LastThread {
			marker = display.Green + "●" + display.Reset
		}
		updated := t.UpdatedAt
		if updated == "" {
			updated = t.CreatedAt
		}

		fmt.Printf("\n  %s %s%2d.%s %s%s%s\n", marker, display.Dim, i+1, display.Reset, display.Bold, title, display.Reset)
		fmt.Printf("      %sID:%s      %s\n", display.Dim, display.Reset, t.ID)
		if updated != "" {
			fmt.Printf("      %sUpdated:%s %s\n", display.Dim, display.Reset, display.FormatTime(updated))
		}
	}

	fmt.Println()
	fmt.Println(strings.Repeat("─", 80))
	fmt.Printf("  %sTip:%s Run %sregchat history <thread-id>%s to read a thread.\n\n",
		display.Dim, display.Reset, display.Cyan, display.Reset)

	return nil
}

// ─── new ────────────────────────────────────────────────────────────────────

func cmdNew(args []string) error {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Println("Usage: regchat new <title>")
		return nil
	}

	cfg, client, err := loadClient()
	if err != nil {
		return err
	}

	t, err := client.CreateThread(title)
	if err != nil {
		return fmt.Errorf("creating thread: %w", err)
	}

	cfg.LastThread = t.ID
	if err := cfg.Save(); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(t)
	}

	display.Success(fmt.Sprintf("Created %q", t.Title))
	display.Info("Thread:", t.ID)
	fmt.Println()
	return nil
}

// ─── history ────────────────────────────────────────────────────────────────

func cmdHistory(args []string) error {
	cfg, client, err := loadClient()
	if err != nil {
		return err
	}

	threadID := cfg.LastThread
	if len(args) > 0 {
		threadID = args[0]
	}
	if threadID == "" {
		eff := cfg.Effective()
		return eff.ValidateThread()
	}

	if !jsonOutput {
		display.Spinner("Loading messages...")
	}
	msgs, err := client.ListMessages(threadID)
	if !jsonOutput {
		display.ClearLine()
	}
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}
	if jsonOutput {
		return printJSON(msgs)
	}

	display.Header(fmt.Sprintf("Thread %s (%d messages)", threadID, len(msgs)))
	if len(msgs) == 0 {
		display.Warn("No messages yet.")
		return nil
	}

	out := newPrinter(cfg)
	for _, m := range msgs {
		out.message(m)
	}
	return nil
}

// ─── ask ────────────────────────────────────────────────────────────────────

func cmdAsk(args []string) error {
	var threadID string
	var positional []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-t", "--thread":
			if i+1 < len(args) {
				i++
				threadID = args[i]
			} else {
				return fmt.Errorf("--thread requires a value")
			}
		default:
			positional = append(positional, args[i])
		}
	}

	query := strings.TrimSpace(strings.Join(positional, " "))
	if query == "" {
		fmt.Println("Usage: regchat ask \"<question>\" [-t <thread-id>]")
		return nil
	}

	cfg, client, err := loadClient()
	if err != nil {
		return err
	}
	if threadID == "" {
		eff := cfg.Effective()
		if err := eff.ValidateThread(); err != nil {
			return err
		}
		threadID = cfg.LastThread
	}

	if !jsonOutput {
		display.Spinner("Thinking...")
	}
	resp, err := client.Chat(threadID, query)
	if !jsonOutput {
		display.ClearLine()
	}
	if err != nil {
		return fmt.Errorf("asking: %s: %w", api.Describe(err), err)
	}
	if jsonOutput {
		return printJSON(resp)
	}

	newPrinter(cfg).message(resp.Message())
	return nil
}

// ─── cite ───────────────────────────────────────────────────────────────────

func cmdCite(args []string) error {
	content := strings.Join(args, " ")
	if strings.TrimSpace(content) == "" {
		fmt.Println("Usage: regchat cite \"<assistant reply text>\"")
		return nil
	}

	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}
	eff := cfg.Effective()

	parsed := service.ParseContent(content)
	if jsonOutput {
		return printJSON(citeResult(parsed, eff.FilesURL))
	}

	display.Header("Body")
	fmt.Println(parsed.Body)

	display.Header(fmt.Sprintf("Citations (%d)", len(parsed.Citations)))
	if len(parsed.Citations) == 0 {
		display.Warn("No citation marker found.")
		return nil
	}
	for _, c := range parsed.Citations {
		printCitation(c, eff.FilesURL)
	}
	fmt.Println()
	return nil
}

type citedSource struct {
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
	URL    string `json:"url"`
}

type citeOutput struct {
	Body      string        `json:"body"`
	Citations []citedSource `json:"citations"`
}

func citeResult(parsed service.ParsedContent, filesURL string) citeOutput {
	out := citeOutput{Body: parsed.Body, Citations: []citedSource{}}
	for _, c := range parsed.Citations {
		out.Citations = append(out.Citations, citedSource{
			Name:   c.Name,
			Status: c.Status,
			URL:    service.FileURL(filesURL, c.Name),
		})
	}
	return out
}

// ─── set ────────────────────────────────────────────────────────────────────

func cmdSet(args []string) error {
	if len(args) < 2 {
		fmt.Println("Usage: regchat set <key> <value>")
		fmt.Println()
		fmt.Println("Keys:")
		fmt.Println("  server   Chat server URL  (e.g. http://localhost:8080)")
		fmt.Println("  files    Base URL for cited documents (default <server>/files)")
		fmt.Println("  thread   Thread used by ask/history")
		fmt.Println("  theme    dark | light")
		fmt.Println("  timeout  HTTP timeout in seconds (0 = default)")
		return nil
	}

	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	display.Success(fmt.Sprintf("%s set to %s", key, value))
	return nil
}

// ─── config ─────────────────────────────────────────────────────────────────

func cmdConfig() error {
	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}
	eff := cfg.Effective()

	display.Header("regchat Configuration")

	notSet := func(s string) string {
		if s == "" {
			return display.Dim + "(not set)" + display.Reset
		}
		return s
	}

	display.Info("Profile:", config.ProfileName(activeProfile))
	display.Info("Server:", eff.Server)
	display.Info("Files:", eff.FilesURL)
	display.Info("Thread:", notSet(cfg.LastThread))
	display.Info("Theme:", eff.Theme)
	sidebar := "shown"
	if cfg.SidebarHidden {
		sidebar = "hidden"
	}
	display.Info("Sidebar:", sidebar)
	display.Info("Timeout:", cfg.Timeout().String())
	if dir, err := config.Dir(); err == nil {
		display.Info("Log:", dir+"/regchat.log")
	}
	fmt.Println()

	return nil
}

// ─── profiles ───────────────────────────────────────────────────────────────

func cmdProfiles() error {
	profiles, err := config.ListProfiles()
	if err != nil {
		return err
	}

	display.Header(fmt.Sprintf("Profiles (%d)", len(profiles)))

	if len(profiles) == 0 {
		display.Warn("No profiles found.")
		return nil
	}

	for _, p := range profiles {
		marker := " "
		if p == config.ProfileName(activeProfile) {
			marker = display.Green + "●" + display.Reset
		}
		fmt.Printf("  %s %s\n", marker, p)
	}
	fmt.Println()

	return nil
}

// ─── message output ─────────────────────────────────────────────────────────

// printer writes messages to stdout. Markdown is rendered with glamour only
// when stdout is a terminal so piped output stays plain.
type printer struct {
	md       *api.MarkdownRenderer
	filesURL string
	width    int
}

func newPrinter(cfg *config.Config) printer {
	eff := cfg.Effective()
	p := printer{filesURL: eff.FilesURL, width: 80}
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			p.width = min(w-4, 100)
		}
		p.md = api.NewMarkdownRenderer(eff.Theme, p.width)
	}
	return p
}

func (p printer) message(m api.Message) {
	fmt.Printf("\n%s\n", display.RoleLabel(string(m.Role)))

	if m.Role == api.RoleUser {
		for _, line := range wrapText(m.Content, p.width) {
			fmt.Println("  " + line)
		}
		return
	}

	if thought := strings.TrimSpace(m.Thought); thought != "" {
		fmt.Printf("  %sThought:%s\n", display.Magenta, display.Reset)
		for _, line := range wrapText(thought, p.width) {
			fmt.Printf("  %s%s%s\n", display.Dim, line, display.Reset)
		}
		fmt.Println()
	}

	parsed := service.ResolveContent(m)
	body := parsed.Body
	if p.md != nil {
		body = p.md.Render(body)
		fmt.Println(body)
	} else {
		for _, line := range wrapText(body, p.width) {
			fmt.Println("  " + line)
		}
	}

	if len(parsed.Citations) > 0 {
		fmt.Printf("\n  %s%s%s\n", display.Blue+display.Bold, service.SourceMarker, display.Reset)
		for _, c := range parsed.Citations {
			printCitation(c, p.filesURL)
		}
	}
}

func printCitation(c api.Citation, filesURL string) {
	fmt.Printf("  • %s\n", truncate(c.Name, 72))
	fmt.Printf("    %s%s%s\n", display.Cyan, service.FileURL(filesURL, c.Name), display.Reset)
	if c.Status != "" {
		fmt.Printf("    %s %s\n", service.StatusMarker, display.StatusLabel(c.Status))
	}
}

// ─── helpers ────────────────────────────────────────────────────────────────

func wrapText(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		if paragraph == "" {
			lines = append(lines, "")
			continue
		}
		words := strings.Fields(paragraph)
		current := ""
		for _, word := range words {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}

func parseGlobalFlags(args []string) []string {
	var remaining []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--profile":
			if i+1 < len(args) {
				i++
				activeProfile = args[i]
			}
			continue
		case "--debug":
			debugMode = true
			continue
		case "-j", "--json":
			jsonOutput = true
			continue
		}
		remaining = append(remaining, args[i])
	}
	return remaining
}

func versionString() string {
	if commit == "none" {
		return "regchat " + version
	}
	return fmt.Sprintf("regchat %s\n  commit: %s\n  built:  %s", version, commit, date)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// ─── usage ──────────────────────────────────────────────────────────────────

func printUsage() {
	fmt.Printf(`%sregchat%s, terminal client for the BPS regulation assistant (v%s)

%sUsage:%s
  regchat                                            Launch interactive mode (default)
  regchat [--profile <name>] [--debug] <command>     Run a specific command

%sGetting Started:%s
  set server <url>          Chat server URL (default http://localhost:8080)
  threads                   List chat threads
  new <title>               Create a thread and make it the current one
  config                    Show current configuration

%sChatting:%s
  ask "<question>"          Ask in the current thread
    -t, --thread <id>       Ask in a specific thread
  history [thread-id]       Print a thread's messages (defaults to current)
  cite "<text>"             Parse "Sumber:" citations out of a reply

%sSettings:%s
  set files <url>           Base URL for cited documents
  set thread <id>           Select the current thread
  set theme dark|light      Markdown theme
  set timeout <seconds>     HTTP timeout (default 5m)

%sProfiles:%s
  profiles                  List all config profiles
  --profile <name>          Use a named config profile (default: unnamed)
  --debug                   Log request/response bodies to ~/.regchat/regchat.log
  -j, --json                Print threads/new/history/ask/cite results as JSON

%sEnvironment:%s
  REGCHAT_SERVER, REGCHAT_FILES_URL, REGCHAT_THEME override the saved config
  (a .env file in the working directory is loaded first)

%sExamples:%s
  regchat                                            # Start interactive mode
  regchat new "Inflasi 2024"
  regchat ask "Apa dasar hukum Susenas?"
  regchat history
  regchat --profile staging threads

`, display.Bold, display.Reset, version,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset)
}
