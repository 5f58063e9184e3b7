// Package eventlog is the text formatter that serializes simulation
// events to an output stream, and a companion in-process bus so tests
// (and any future consumer) can observe the same events structurally
// instead of re-parsing formatted text.
//
// The text formatter sits outside the core engine, but every event it
// emits must still flow through a single, mutex-serialized writer to
// preserve line atomicity. The dual print+publish shape is a
// non-blocking broadcast bus whose Publish is safe to call even with
// no subscribers.
package eventlog

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"time"
)

// Event is a single emitted simulation event, published alongside its
// formatted text.
type Event struct {
	// At is the event's simulation time, relative to emulation begin.
	At time.Duration
	// Text is the event's message, without the time prefix or newline.
	Text string
}

// Log formats and writes timestamped events to an underlying writer,
// and republishes each one on an internal bus. All writes go through
// Emit, so callers that already hold the simulation's single mutex
// get atomic, ordered lines for free.
type Log struct {
	w    *bufio.Writer
	subs map[chan Event]struct{}
	// recvToSend maps the receive-only channel handed to subscribers
	// back to the bidirectional channel stored in subs, so Unsubscribe
	// can accept the caller's <-chan Event view directly.
	recvToSend map[<-chan Event]chan Event
	mu         sync.Mutex // guards subs/recvToSend only; callers serialize Emit themselves
}

// New returns a Log writing formatted lines to w.
func New(w io.Writer) *Log {
	return &Log{
		w:          bufio.NewWriter(w),
		subs:       make(map[chan Event]struct{}),
		recvToSend: make(map[<-chan Event]chan Event),
	}
}

// Emit formats "HHHHHHHH.dddms: text\n" — milliseconds zero-padded to
// 8 digits, a 3-digit microsecond-derived fraction — and writes it,
// then republishes the event on the bus.
// Callers are responsible for calling this only while holding the
// simulation's shared-state mutex.
func (l *Log) Emit(at time.Duration, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	us := at.Microseconds()
	ms := us / 1000
	frac := us % 1000
	fmt.Fprintf(l.w, "%08d.%03dms: %s\n", ms, frac, text)
	l.w.Flush()
	l.publish(Event{At: at, Text: text})
}

// Subscribe returns a channel receiving every event published from
// this point on. bufSize controls how many events may queue before
// the subscriber starts missing events (once its buffer is full,
// further events are dropped for that subscriber rather than blocking —
// publishers never stall on a subscriber).
func (l *Log) Subscribe(bufSize int) <-chan Event {
	ch := make(chan Event, bufSize)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.recvToSend[ch] = ch
	l.mu.Unlock()
	return ch
}

// Unsubscribe stops and closes a previously subscribed channel. Safe
// to call more than once for the same channel.
func (l *Log) Unsubscribe(ch <-chan Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sendCh, ok := l.recvToSend[ch]
	if !ok {
		return
	}
	delete(l.subs, sendCh)
	delete(l.recvToSend, ch)
	close(sendCh)
}

func (l *Log) publish(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ch := range l.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
