// Package app wires the capture, transcription, correction, repair, and
// matching stages into the assistant's session loop.
//
// A session is asleep until the wake word is heard. Awake, each utterance
// is matched against the command triggers; the best match runs its action,
// and anything unmatched is typed out as dictation. Utterances are
// processed strictly one at a time in arrival order, so repaired text is
// always injected in the order it was spoken.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/auriga-voice/auriga/internal/config"
	"github.com/auriga-voice/auriga/internal/hotkey"
	"github.com/auriga-voice/auriga/internal/observe"
	"github.com/auriga-voice/auriga/internal/phrasematch"
	"github.com/auriga-voice/auriga/internal/textnorm"
	"github.com/auriga-voice/auriga/internal/textrepair"
	"github.com/auriga-voice/auriga/pkg/provider/stt"
)

// Recorder captures one utterance per Start/Stop cycle.
type Recorder interface {
	Start() error
	Stop() []float32
}

// Corrector fixes grammar in an utterance. Implemented by grammar.Client.
type Corrector interface {
	Correct(ctx context.Context, text string) (string, error)
}

// ActionRunner executes matched command actions and types dictation.
// Implemented by actions.Executor.
type ActionRunner interface {
	Execute(ctx context.Context, action string) error
	TypeDictation(text string)
}

// Deps are the collaborators a [Session] is built from. Transcriber,
// Repair, Wake, Commands, and Executor are required; Grammar may be nil to
// disable correction.
type Deps struct {
	Transcriber stt.Transcriber
	Grammar     Corrector
	Repair      *textrepair.Engine
	Wake        *phrasematch.WakeDetector
	Commands    *phrasematch.Matcher
	CommandList []config.Command
	Executor    ActionRunner
	Metrics     *observe.Metrics
	MaxMerge    int
}

// Session drives the utterance pipeline. Not safe for concurrent
// ProcessUtterance calls; the Run loop is the single intended caller.
type Session struct {
	deps     Deps
	triggers []string
	awake    bool
}

// NewSession validates deps and builds a Session, initially asleep.
func NewSession(deps Deps) (*Session, error) {
	switch {
	case deps.Transcriber == nil:
		return nil, fmt.Errorf("app: transcriber is required")
	case deps.Repair == nil:
		return nil, fmt.Errorf("app: repair engine is required")
	case deps.Wake == nil:
		return nil, fmt.Errorf("app: wake detector is required")
	case deps.Commands == nil:
		return nil, fmt.Errorf("app: command matcher is required")
	case deps.Executor == nil:
		return nil, fmt.Errorf("app: action executor is required")
	}
	if deps.Metrics == nil {
		deps.Metrics = observe.DefaultMetrics()
	}
	if deps.MaxMerge == 0 {
		deps.MaxMerge = textrepair.DefaultMaxMerge
	}
	return &Session{
		deps:     deps,
		triggers: config.Triggers(deps.CommandList),
	}, nil
}

// Awake reports whether the wake word has been heard.
func (s *Session) Awake() bool { return s.awake }

// Run consumes hotkey events until ctx is cancelled: EventStart begins a
// capture, EventStop transcribes and processes it. Processing happens
// inline so utterances never interleave.
func (s *Session) Run(ctx context.Context, rec Recorder, events <-chan hotkey.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Type {
			case hotkey.EventStart:
				if err := rec.Start(); err != nil {
					slog.Error("failed to start capture", "error", err)
				}
			case hotkey.EventStop:
				samples := rec.Stop()
				if len(samples) == 0 {
					continue
				}
				if err := s.ProcessUtterance(ctx, samples); err != nil {
					slog.Error("utterance processing failed", "error", err)
				}
			}
		}
	}
}

// ProcessUtterance runs one captured utterance through the full pipeline.
func (s *Session) ProcessUtterance(ctx context.Context, samples []float32) error {
	text, err := s.transcribe(ctx, samples)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	slog.Info("transcribed", "text", text)

	text = s.correct(ctx, text)
	text = s.repair(ctx, text)

	if !s.awake {
		return s.handleAsleep(ctx, text)
	}
	return s.handleAwake(ctx, text)
}

func (s *Session) transcribe(ctx context.Context, samples []float32) (string, error) {
	start := time.Now()
	raw, err := s.deps.Transcriber.Transcribe(ctx, samples)
	s.deps.Metrics.TranscriptionDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("app: transcribe: %w", err)
	}
	return textnorm.Clean(raw), nil
}

// correct applies grammar correction, keeping the original text when the
// service is unavailable.
func (s *Session) correct(ctx context.Context, text string) string {
	if s.deps.Grammar == nil {
		return text
	}
	start := time.Now()
	corrected, err := s.deps.Grammar.Correct(ctx, text)
	s.deps.Metrics.GrammarDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		slog.Warn("grammar correction unavailable, keeping original text", "error", err)
		return text
	}
	return corrected
}

func (s *Session) repair(ctx context.Context, text string) string {
	start := time.Now()
	repaired := s.deps.Repair.Repair(ctx, text, s.deps.MaxMerge)
	s.deps.Metrics.RepairDuration.Record(ctx, time.Since(start).Seconds())
	if repaired != text {
		slog.Info("repaired fragments", "before", text, "after", repaired)
	}
	return repaired
}

// handleAsleep only listens for the wake word.
func (s *Session) handleAsleep(ctx context.Context, text string) error {
	woke, err := s.deps.Wake.Detect(ctx, strings.ToLower(text))
	if err != nil {
		return fmt.Errorf("app: wake detection: %w", err)
	}
	if !woke {
		s.deps.Metrics.RecordUtterance(ctx, "ignored")
		return nil
	}
	s.awake = true
	s.deps.Metrics.WakeDetections.Add(ctx, 1)
	s.deps.Metrics.Listening.Add(ctx, 1)
	s.deps.Metrics.RecordUtterance(ctx, "wake")
	slog.Info("assistant awake")
	return nil
}

// handleAwake routes an utterance to the best-matching command, falling
// back to dictation.
func (s *Session) handleAwake(ctx context.Context, text string) error {
	if len(s.triggers) > 0 {
		match, err := s.deps.Commands.BestMatch(ctx, strings.ToLower(text), s.triggers)
		if err != nil {
			return fmt.Errorf("app: command match: %w", err)
		}
		if match != nil {
			cmd := s.commandFor(match.Phrase)
			slog.Info("dispatching command", "trigger", cmd.Trigger, "score", match.Score)
			s.deps.Metrics.RecordCommand(ctx, cmd.Trigger)
			s.deps.Metrics.RecordUtterance(ctx, "command")
			if err := s.deps.Executor.Execute(ctx, cmd.Action); err != nil {
				return fmt.Errorf("app: dispatch %q: %w", cmd.Trigger, err)
			}
			return nil
		}
	}

	s.deps.Metrics.RecordUtterance(ctx, "dictation")
	s.deps.Executor.TypeDictation(text)
	return nil
}

func (s *Session) commandFor(trigger string) config.Command {
	for _, c := range s.deps.CommandList {
		if c.Trigger == trigger {
			return c
		}
	}
	// Triggers are derived from CommandList, so this is unreachable.
	return config.Command{Trigger: trigger}
}
