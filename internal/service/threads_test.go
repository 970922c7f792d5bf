package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regchat-cli/internal/api"
)

func sampleThreads() []api.Thread {
	return []api.Thread{
		{ID: "c3f1", Title: "Inflasi Oktober", UpdatedAt: "2025-03-01T10:00:00Z"},
		{ID: "a9b2", Title: "Metodologi Susenas", UpdatedAt: "2025-02-27T08:00:00Z"},
		{ID: "a9c7", Title: "Perka 5", CreatedAt: "2025-02-01T08:00:00Z"},
	}
}

func TestThreadStorePrepend(t *testing.T) {
	s := NewThreadStore("", true)
	s.Set(sampleThreads())

	s.Prepend(api.Thread{ID: "new1", Title: "Baru"})
	require.Equal(t, 4, s.Len())
	assert.Equal(t, "new1", s.Threads()[0].ID)
	assert.Equal(t, "c3f1", s.Threads()[1].ID)

	// Re-prepending an existing id moves it instead of duplicating.
	s.Prepend(api.Thread{ID: "a9b2", Title: "Metodologi Susenas (renamed)"})
	require.Equal(t, 4, s.Len())
	assert.Equal(t, "Metodologi Susenas (renamed)", s.Threads()[0].Title)
}

func TestThreadStoreSetCopies(t *testing.T) {
	src := sampleThreads()
	s := NewThreadStore("", true)
	s.Set(src)
	src[0].Title = "mutated"

	assert.Equal(t, "Inflasi Oktober", s.Threads()[0].Title)
}

func TestThreadStoreActivate(t *testing.T) {
	s := NewThreadStore("c3f1", true)
	s.Set(sampleThreads())

	assert.False(t, s.Activate("c3f1"), "same id is not a change")
	assert.True(t, s.Activate("a9b2"))
	assert.Equal(t, "a9b2", s.ActiveID())

	active, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "Metodologi Susenas", active.Title)

	s.Activate("gone")
	_, ok = s.Active()
	assert.False(t, ok)
	assert.Equal(t, "gone", s.Title("gone"))
}

func TestThreadStoreFind(t *testing.T) {
	s := NewThreadStore("", true)
	s.Set(sampleThreads())

	tests := []struct {
		ref    string
		wantID string
		wantOK bool
	}{
		{"1", "c3f1", true},
		{"3", "a9c7", true},
		{"4", "", false},
		{"0", "", false},
		{"a9b2", "a9b2", true},
		{"c3", "c3f1", true},
		{"a9", "", false}, // ambiguous prefix
		{"zz", "", false},
		{"  ", "", false},
	}
	for _, tt := range tests {
		got, ok := s.Find(tt.ref)
		assert.Equal(t, tt.wantOK, ok, "Find(%q)", tt.ref)
		if tt.wantOK {
			assert.Equal(t, tt.wantID, got.ID, "Find(%q)", tt.ref)
		}
	}
}

func TestThreadStoreSidebar(t *testing.T) {
	s := NewThreadStore("", false)
	assert.False(t, s.SidebarOpen())
	assert.True(t, s.ToggleSidebar())
	assert.False(t, s.ToggleSidebar())
}

func TestFormatThreadRow(t *testing.T) {
	now := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)
	threads := sampleThreads()

	row := FormatThreadRow(threads[0], "c3f1", 0, now)
	assert.Equal(t, "Inflasi Oktober", row.Title)
	assert.Equal(t, "3 hours ago", row.Updated)
	assert.True(t, row.Active)

	row = FormatThreadRow(threads[1], "c3f1", 10, now)
	assert.Equal(t, "Metodolog…", row.Title)
	assert.False(t, row.Active)

	// Falls back to createdAt.
	row = FormatThreadRow(threads[2], "", 0, now)
	assert.Contains(t, row.Updated, "ago")

	row = FormatThreadRow(api.Thread{ID: "x"}, "", 0, now)
	assert.Equal(t, "(untitled)", row.Title)
	assert.Empty(t, row.Updated)
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)

	assert.Equal(t, "2 days ago", RelativeTime("2025-02-27T13:00:00Z", now))
	assert.Equal(t, "not a time", RelativeTime("not a time", now))
	assert.Equal(t, "", RelativeTime("", now))
}
