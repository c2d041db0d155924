// Package messages carries the one-line user notices produced by every
// entry action: an interactive request queues them in its session, the
// command line prints them.
package messages

import (
	"context"
	"encoding/gob"
	"log"

	"github.com/alexedwards/scs/v2"
)

type Class string

const (
	ClassSuccess Class = "success"
	ClassInfo    Class = "info"
	ClassWarning Class = "warning"
	ClassError   Class = "error"
)

type Message struct {
	Class Class  `json:"class"`
	Text  string `json:"text"`
}

func Success(text string) Message { return Message{Class: ClassSuccess, Text: text} }
func Info(text string) Message    { return Message{Class: ClassInfo, Text: text} }
func Warning(text string) Message { return Message{Class: ClassWarning, Text: text} }
func Error(text string) Message   { return Message{Class: ClassError, Text: text} }

// Queue accepts messages for later display to the owner.
type Queue interface {
	Add(ctx context.Context, msg Message)
}

const sessionKey = "flash_messages"

func init() {
	gob.Register([]Message{})
}

// SessionQueue stores messages in the request session until they are drained.
type SessionQueue struct {
	sessions *scs.SessionManager
}

func NewSessionQueue(sessions *scs.SessionManager) *SessionQueue {
	return &SessionQueue{sessions: sessions}
}

// Add appends msg. Contexts without a loaded session are logged instead.
func (q *SessionQueue) Add(ctx context.Context, msg Message) {
	if !hasSession(q.sessions, ctx) {
		log.Printf("[%s] %s", msg.Class, msg.Text)
		return
	}
	pending, _ := q.sessions.Get(ctx, sessionKey).([]Message)
	q.sessions.Put(ctx, sessionKey, append(pending, msg))
}

// Drain returns and forgets every queued message.
func (q *SessionQueue) Drain(ctx context.Context) []Message {
	if !hasSession(q.sessions, ctx) {
		return nil
	}
	pending, _ := q.sessions.Pop(ctx, sessionKey).([]Message)
	return pending
}

// hasSession reports whether LoadAndSave ran for ctx. scs panics otherwise.
func hasSession(sm *scs.SessionManager, ctx context.Context) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	sm.Status(ctx)
	return true
}

// LogQueue prints messages through the standard logger.
type LogQueue struct{}

func (LogQueue) Add(_ context.Context, msg Message) {
	log.Printf("[%s] %s", msg.Class, msg.Text)
}

// Recorder keeps messages in memory, in order.
type Recorder struct {
	Messages []Message
}

func (r *Recorder) Add(_ context.Context, msg Message) {
	r.Messages = append(r.Messages, msg)
}
