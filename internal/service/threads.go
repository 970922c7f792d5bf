package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"regchat-cli/internal/api"
)

// ThreadStore holds the thread list in server order and the active thread.
type ThreadStore struct {
	threads     []api.Thread
	active      string
	sidebarOpen bool
}

func NewThreadStore(active string, sidebarOpen bool) *ThreadStore {
	return &ThreadStore{active: active, sidebarOpen: sidebarOpen}
}

// Set replaces the list with a freshly fetched one. Server order is kept.
func (s *ThreadStore) Set(threads []api.Thread) {
	s.threads = append([]api.Thread(nil), threads...)
}

// Prepend adds a newly created thread at the top, replacing any stale copy.
func (s *ThreadStore) Prepend(t api.Thread) {
	out := make([]api.Thread, 0, len(s.threads)+1)
	out = append(out, t)
	for _, existing := range s.threads {
		if existing.ID != t.ID {
			out = append(out, existing)
		}
	}
	s.threads = out
}

func (s *ThreadStore) Threads() []api.Thread {
	return s.threads
}

func (s *ThreadStore) Len() int {
	return len(s.threads)
}

// Activate makes id the active thread and reports whether it changed.
func (s *ThreadStore) Activate(id string) bool {
	if id == s.active {
		return false
	}
	s.active = id
	return true
}

func (s *ThreadStore) ActiveID() string {
	return s.active
}

// Active returns the active thread if it is in the list.
func (s *ThreadStore) Active() (api.Thread, bool) {
	return s.byID(s.active)
}

// Title returns the title of thread id, or the id itself when unknown.
func (s *ThreadStore) Title(id string) string {
	if t, ok := s.byID(id); ok && t.Title != "" {
		return t.Title
	}
	return id
}

func (s *ThreadStore) byID(id string) (api.Thread, bool) {
	if id == "" {
		return api.Thread{}, false
	}
	for _, t := range s.threads {
		if t.ID == id {
			return t, true
		}
	}
	return api.Thread{}, false
}

// Find resolves a user reference: a 1-based list position, an exact id,
// or a unique id prefix.
func (s *ThreadStore) Find(ref string) (api.Thread, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return api.Thread{}, false
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(s.threads) {
		return s.threads[n-1], true
	}
	if t, ok := s.byID(ref); ok {
		return t, true
	}
	var match api.Thread
	count := 0
	for _, t := range s.threads {
		if strings.HasPrefix(t.ID, ref) {
			match = t
			count++
		}
	}
	return match, count == 1
}

func (s *ThreadStore) SidebarOpen() bool {
	return s.sidebarOpen
}

func (s *ThreadStore) ToggleSidebar() bool {
	s.sidebarOpen = !s.sidebarOpen
	return s.sidebarOpen
}

// ThreadDisplay holds display-ready thread info.
type ThreadDisplay struct {
	ID      string
	Title   string
	Updated string
	Active  bool
}

// FormatThreadRow maps a thread to display strings. The title is cut to
// maxTitle terminal cells; updated is relative to now.
func FormatThreadRow(t api.Thread, activeID string, maxTitle int, now time.Time) ThreadDisplay {
	title := t.Title
	if title == "" {
		title = "(untitled)"
	}
	if maxTitle > 0 {
		title = runewidth.Truncate(title, maxTitle, "…")
	}
	ts := t.UpdatedAt
	if ts == "" {
		ts = t.CreatedAt
	}
	return ThreadDisplay{
		ID:      t.ID,
		Title:   title,
		Updated: RelativeTime(ts, now),
		Active:  t.ID == activeID,
	}
}

// RelativeTime renders an RFC 3339 timestamp as "3 hours ago". Unparseable
// input is returned unchanged.
func RelativeTime(ts string, now time.Time) string {
	if ts == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
