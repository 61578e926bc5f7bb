// Package hotkey provides a global hotkey listener using gohook. It
// supports "hold" mode (press to capture, release to stop) and "toggle"
// mode (press to start, press again to stop).
package hotkey

import (
	"sync"

	hook "github.com/robotn/gohook"

	"github.com/auriga-voice/auriga/internal/config"
)

// EventType indicates whether capture should start or stop.
type EventType int

const (
	// EventStart signals that the hotkey was activated.
	EventStart EventType = iota
	// EventStop signals that the hotkey was deactivated.
	EventStop
)

// Event is emitted on the channel returned by [Listener.Events].
type Event struct {
	Type EventType
}

// Listener manages a global hotkey and emits start/stop events.
type Listener struct {
	keys []string
	mode config.HotkeyMode
	ch   chan Event
	done chan struct{}
	once sync.Once
}

// NewListener creates a Listener for the configured key and mode.
func NewListener(cfg config.HotkeyConfig) *Listener {
	return &Listener{
		keys: []string{cfg.Key},
		mode: cfg.Mode,
		ch:   make(chan Event, 16),
		done: make(chan struct{}),
	}
}

// Events returns the channel that receives hotkey events. The channel is
// closed when [Listener.Stop] is called.
func (l *Listener) Events() <-chan Event {
	return l.ch
}

// Start begins listening for the global hotkey. It blocks until
// [Listener.Stop] is called; run it in a goroutine.
func (l *Listener) Start() {
	if l.mode == config.HotkeyHold {
		l.startHold()
		return
	}
	l.startToggle()
}

// startHold implements push-to-talk: KeyDown starts, KeyUp stops.
func (l *Listener) startHold() {
	down, up := l.holdHandlers()
	hook.Register(hook.KeyDown, l.keys, down)
	hook.Register(hook.KeyUp, l.keys, up)
	l.run()
}

// holdHandlers builds the hold-mode callbacks. OS key auto-repeat delivers
// KeyDown continuously while the key is held, so only the first KeyDown of
// a press may start capture.
func (l *Listener) holdHandlers() (down, up func(hook.Event)) {
	var mu sync.Mutex
	held := false

	down = func(hook.Event) {
		mu.Lock()
		defer mu.Unlock()
		if held {
			return
		}
		held = true
		l.emit(EventStart)
	}
	up = func(hook.Event) {
		mu.Lock()
		defer mu.Unlock()
		if !held {
			return
		}
		held = false
		l.emit(EventStop)
	}
	return down, up
}

// startToggle alternates start and stop on successive presses.
func (l *Listener) startToggle() {
	down, up := l.toggleHandlers()
	hook.Register(hook.KeyDown, l.keys, down)
	hook.Register(hook.KeyUp, l.keys, up)
	l.run()
}

// toggleHandlers builds the toggle-mode callbacks. Auto-repeated KeyDowns
// within one physical press are ignored; the key must be released before
// the next press toggles again.
func (l *Listener) toggleHandlers() (down, up func(hook.Event)) {
	var mu sync.Mutex
	held := false
	active := false

	down = func(hook.Event) {
		mu.Lock()
		defer mu.Unlock()
		if held {
			return
		}
		held = true
		if active {
			l.emit(EventStop)
		} else {
			l.emit(EventStart)
		}
		active = !active
	}
	up = func(hook.Event) {
		mu.Lock()
		defer mu.Unlock()
		held = false
	}
	return down, up
}

func (l *Listener) run() {
	evChan := hook.Start()
	go func() {
		<-l.done
		hook.End()
	}()
	<-hook.Process(evChan)
	close(l.ch)
}

// emit delivers without blocking; if the consumer lags, the event is
// dropped rather than wedging the hook callback.
func (l *Listener) emit(t EventType) {
	select {
	case l.ch <- Event{Type: t}:
	default:
	}
}

// Stop terminates the hotkey listener. Safe to call multiple times.
func (l *Listener) Stop() {
	l.once.Do(func() {
		close(l.done)
	})
}
