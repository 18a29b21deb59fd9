package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/Bertii1/Audio-Recording-Library/internal/speech"
)

// Progress milestones: a run starts at 5, reaches 15 once the model is
// ready, advances with segment end times up to 95 and reports 100 only on
// completion.
const (
	progressStarted    = 5
	progressModelReady = 15
	progressCeiling    = 95
	progressDone       = 100
)

type EventType string

const (
	// EventProgress carries a non-decreasing percentage in [5, 100].
	EventProgress EventType = "progress"
	// EventSegment carries one transcribed segment, in chronological order.
	EventSegment EventType = "segment"
	// EventCompleted is terminal and carries the final Result.
	EventCompleted EventType = "completed"
	// EventError is terminal; a cancelled run emits no terminal event at all.
	EventError EventType = "error"
)

type Event struct {
	Type     EventType
	Progress int
	Segment  Segment
	Result   *Result
	Err      error
}

const eventChBuffer = 32

// Engine starts transcription runs. Each run is independent: the engine
// keeps no state across runs and does not guard against concurrent runs over
// the same file.
type Engine struct {
	cfg speech.Config

	// newBackend is swappable in tests.
	newBackend func(speech.Config) (speech.Transcriber, error)
}

func NewEngine(cfg speech.Config) *Engine {
	cfg.SetDefaults()
	return &Engine{
		cfg:        cfg,
		newBackend: speech.NewTranscriber,
	}
}

// Run is the handle for one transcription of one file.
type Run struct {
	ID string

	events chan Event
	doneCh chan struct{}
	err    error
	result *Result
}

// Events streams progress, segment and terminal events in emission order.
// The channel is closed once the run reaches a terminal state; callers must
// drain it until then or the run goroutine stalls on a full buffer.
func (r *Run) Events() <-chan Event {
	return r.events
}

// Done is closed when the run has fully stopped.
func (r *Run) Done() <-chan struct{} {
	return r.doneCh
}

// Err reports the terminal error after Done: nil on success, the context
// error on cancellation, otherwise the failure.
func (r *Run) Err() error {
	select {
	case <-r.doneCh:
		return r.err
	default:
		return nil
	}
}

// Result returns the final result after Done, nil unless the run completed.
func (r *Run) Result() *Result {
	select {
	case <-r.doneCh:
		return r.result
	default:
		return nil
	}
}

// Start begins transcribing the file at path on a background goroutine and
// returns immediately. Cancel the context to request a cooperative stop; the
// request is honored at segment boundaries only.
func (e *Engine) Start(ctx context.Context, path string) *Run {
	r := &Run{
		ID:     uuid.NewString(),
		events: make(chan Event, eventChBuffer),
		doneCh: make(chan struct{}),
	}
	go e.run(ctx, r, path)
	return r
}

func (e *Engine) run(ctx context.Context, r *Run, path string) {
	defer func() {
		close(r.events)
		close(r.doneCh)
	}()

	slog.Info("transcription run started",
		slog.String("runID", r.ID),
		slog.String("path", path),
		slog.String("model", string(e.cfg.ModelSize)))

	// emit blocks until the consumer takes the event or the run is cancelled,
	// so a stalled consumer can never pin the goroutine past a cancellation
	// request. Reports whether the event was delivered.
	emit := func(ev Event) bool {
		if ctx.Err() != nil {
			return false
		}
		select {
		case r.events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	lastProgress := 0
	progress := func(pct int) bool {
		if pct <= lastProgress {
			return true
		}
		lastProgress = pct
		return emit(Event{Type: EventProgress, Progress: pct})
	}

	fail := func(err error) {
		r.err = err
		emit(Event{Type: EventError, Err: err})
		slog.Error("transcription run failed", slog.String("runID", r.ID), slog.String("err", err.Error()))
	}

	cancelled := func() {
		r.err = ctx.Err()
		slog.Info("transcription run cancelled", slog.String("runID", r.ID))
	}

	if !progress(progressStarted) {
		cancelled()
		return
	}

	backend, err := e.newBackend(e.cfg)
	if err != nil {
		if errors.Is(err, speech.ErrBackendUnavailable) {
			fail(err)
		} else {
			fail(fmt.Errorf("transcription failed: %w", err))
		}
		return
	}
	defer func() {
		if err := backend.Close(); err != nil {
			slog.Error("failed to close speech backend", slog.String("err", err.Error()))
		}
	}()

	if !progress(progressModelReady) {
		cancelled()
		return
	}

	var (
		segments []Segment
		total    float64
	)

	onDuration := func(seconds float64) {
		total = seconds
	}

	onSegment := func(s speech.Segment) error {
		// Cooperative cancellation: checked at the top of each per-segment
		// step, so the segment being processed is never emitted.
		if err := ctx.Err(); err != nil {
			return err
		}

		seg := Segment{
			Start: round2(s.Start),
			End:   round2(s.End),
			Text:  strings.TrimSpace(s.Text),
		}
		segments = append(segments, seg)
		if !emit(Event{Type: EventSegment, Segment: seg}) {
			return ctx.Err()
		}

		if total > 0 {
			pct := int(float64(progressModelReady) + (seg.End/total)*80)
			if pct > progressCeiling {
				pct = progressCeiling
			}
			if !progress(pct) {
				return ctx.Err()
			}
		}
		return nil
	}

	lang, err := backend.Transcribe(ctx, path, onDuration, onSegment)
	if ctx.Err() != nil {
		// Cancellation is a normal terminal outcome: no result, no terminal
		// event.
		cancelled()
		return
	}
	if err != nil {
		if errors.Is(err, speech.ErrBackendUnavailable) {
			fail(err)
		} else {
			fail(fmt.Errorf("transcription failed: %w", err))
		}
		return
	}

	if lang == "" {
		lang = e.cfg.Language
	}

	result := &Result{
		FullText: joinText(segments),
		Language: lang,
		Model:    string(e.cfg.ModelSize),
		Segments: segments,
	}

	progress(progressDone)
	r.result = result
	emit(Event{Type: EventCompleted, Result: result})

	slog.Info("transcription run completed",
		slog.String("runID", r.ID),
		slog.String("language", lang),
		slog.Int("segments", len(segments)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
