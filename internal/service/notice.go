package service

import "time"

// NoticeTTL is how long an unread reply notice stays on screen.
const NoticeTTL = 5 * time.Second

// Notice tells the user that a reply landed in a thread they have left.
type Notice struct {
	ThreadID string
	Title    string
	Expires  time.Time
}

// NoticeText is shown next to the notice action.
const NoticeText = "Jawaban di ruang chat sebelumnya sudah tersedia."

// Relay holds at most one pending notice. A newer one replaces the older.
type Relay struct {
	notice *Notice
	ttl    time.Duration
}

func NewRelay() *Relay {
	return &Relay{ttl: NoticeTTL}
}

// Route reports whether a reply for requestThread must go through the relay
// instead of the visible list.
func Route(requestThread, activeThread string) bool {
	return requestThread != activeThread
}

// Queue stores a notice for threadID, replacing any pending one.
func (r *Relay) Queue(threadID, title string, now time.Time) Notice {
	n := Notice{ThreadID: threadID, Title: title, Expires: now.Add(r.ttl)}
	r.notice = &n
	return n
}

// Pending returns the notice if it has not expired by now. Expired notices
// are dropped.
func (r *Relay) Pending(now time.Time) (Notice, bool) {
	if r.notice == nil {
		return Notice{}, false
	}
	if !now.Before(r.notice.Expires) {
		r.notice = nil
		return Notice{}, false
	}
	return *r.notice, true
}

// Take consumes the pending notice.
func (r *Relay) Take(now time.Time) (Notice, bool) {
	n, ok := r.Pending(now)
	r.notice = nil
	return n, ok
}

// Clear drops the notice when the user reaches threadID by other means.
func (r *Relay) Clear(threadID string) {
	if r.notice != nil && r.notice.ThreadID == threadID {
		r.notice = nil
	}
}
