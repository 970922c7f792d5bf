package service

import (
	"strings"

	"github.com/google/uuid"

	"regchat-cli/internal/api"
)

// ConversationState is the per-thread submission state.
type ConversationState int

const (
	StateIdle ConversationState = iota
	StateSubmitting
)

// PendingRequest is a chat request issued for a specific thread. The reply
// is routed by ThreadID, not by whatever thread is active when it lands.
type PendingRequest struct {
	ThreadID string
	Query    string
}

// Conversation is the message view for the active thread.
//
// Submit appends an optimistic user entry before the network confirms it;
// Reconcile later replaces local state with server history while keeping
// local entries the server has not recorded yet.
type Conversation struct {
	threadID string
	messages []api.Message
	state    ConversationState
}

func NewConversation(threadID string) *Conversation {
	return &Conversation{threadID: threadID}
}

func (c *Conversation) ThreadID() string {
	return c.threadID
}

func (c *Conversation) State() ConversationState {
	return c.state
}

func (c *Conversation) Responding() bool {
	return c.state == StateSubmitting
}

// Messages returns a copy of the visible message list.
func (c *Conversation) Messages() []api.Message {
	return append([]api.Message(nil), c.messages...)
}

// Switch moves the view to threadID, dropping in-memory messages and the
// responding indicator. It reports whether a history fetch is needed,
// which is exactly when the thread changed.
func (c *Conversation) Switch(threadID string) bool {
	if threadID == c.threadID {
		return false
	}
	c.threadID = threadID
	c.messages = nil
	c.state = StateIdle
	return threadID != ""
}

// Submit validates input and, when it is non-blank and a thread is active,
// appends the optimistic user message and enters StateSubmitting.
func (c *Conversation) Submit(input string) (PendingRequest, bool) {
	query := strings.TrimSpace(input)
	if query == "" || c.threadID == "" {
		return PendingRequest{}, false
	}
	c.messages = append(c.messages, api.Message{
		ID:      localID(),
		Role:    api.RoleUser,
		Content: query,
		Local:   true,
	})
	c.state = StateSubmitting
	return PendingRequest{ThreadID: c.threadID, Query: query}, true
}

// Settle appends the assistant reply for req. It returns false, leaving the
// view untouched, when the reply belongs to a thread that is no longer
// active.
func (c *Conversation) Settle(req PendingRequest, reply api.Message) bool {
	if req.ThreadID != c.threadID {
		return false
	}
	if reply.ID == "" {
		reply.ID = localID()
	}
	reply.Local = true
	c.messages = append(c.messages, reply)
	c.state = StateIdle
	return true
}

// Fail clears the responding indicator for req's thread. The optimistic
// user entry is kept.
func (c *Conversation) Fail(req PendingRequest) {
	if req.ThreadID == c.threadID {
		c.state = StateIdle
	}
}

// Reconcile applies fetched history for threadID. Server entries replace
// confirmed ones; a local entry survives only while the history has no
// unclaimed entry with the same role and content. History for another
// thread is ignored.
func (c *Conversation) Reconcile(threadID string, history []api.Message) bool {
	if threadID != c.threadID {
		return false
	}

	// Entries the view already showed as confirmed cannot vouch for a
	// local one; only the new part of history can.
	available := make(map[messageKey]int)
	for _, m := range history {
		available[keyOf(m)]++
	}
	for _, m := range c.messages {
		if !m.Local {
			if available[keyOf(m)] > 0 {
				available[keyOf(m)]--
			}
		}
	}

	merged := make([]api.Message, 0, len(history))
	for _, m := range history {
		m.Local = false
		merged = append(merged, m)
	}
	for _, m := range c.messages {
		if !m.Local {
			continue
		}
		if available[keyOf(m)] > 0 {
			available[keyOf(m)]--
			continue
		}
		merged = append(merged, m)
	}

	c.messages = merged
	return true
}

type messageKey struct {
	role    api.Role
	content string
}

func keyOf(m api.Message) messageKey {
	return messageKey{role: m.Role, content: strings.TrimSpace(m.Content)}
}

func localID() string {
	return "local-" + uuid.NewString()
}
