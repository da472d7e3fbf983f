package model

// NoticeKind classifies a user-visible notice.
type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient, non-blocking message for the user.
type Notice struct {
	Kind  NoticeKind
	Title string
	Body  string
}

type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) {
	f(n)
}

// NoticeQueue collects notices until the UI drains them.
type NoticeQueue struct {
	pending []Notice
}

func (q *NoticeQueue) Notify(n Notice) {
	q.pending = append(q.pending, n)
}

// Drain returns and forgets the queued notices.
func (q *NoticeQueue) Drain() []Notice {
	out := q.pending
	q.pending = nil
	return out
}
