package transcribe

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Bertii1/Audio-Recording-Library/internal/speech"
)

// fakeBackend feeds canned segments through the engine.
type fakeBackend struct {
	language string
	duration float64
	segments []speech.Segment
	err      error
	closed   bool

	// afterSegment runs after each accepted segment, for cancellation tests.
	afterSegment func(i int)
}

func (f *fakeBackend) Transcribe(_ context.Context, _ string, onDuration func(float64), onSegment speech.SegmentFunc) (string, error) {
	if onDuration != nil {
		onDuration(f.duration)
	}
	for i, s := range f.segments {
		if err := onSegment(s); err != nil {
			return f.language, err
		}
		if f.afterSegment != nil {
			f.afterSegment(i)
		}
	}
	return f.language, f.err
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func newTestEngine(backend speech.Transcriber, backendErr error) *Engine {
	e := NewEngine(speech.Config{ModelSize: speech.ModelSizeBase, Language: "auto"})
	e.newBackend = func(speech.Config) (speech.Transcriber, error) {
		return backend, backendErr
	}
	return e
}

func collect(t *testing.T, r *Run) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-r.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("timed out waiting for run events")
		}
	}
}

func TestEngineCompletedRun(t *testing.T) {
	backend := &fakeBackend{
		language: "en",
		duration: 100,
		segments: []speech.Segment{
			{Start: 0.004, End: 10.344, Text: "  hello there "},
			{Start: 10.5, End: 50, Text: "general transcription"},
			{Start: 50.1, End: 100, Text: " bye "},
		},
	}
	e := newTestEngine(backend, nil)
	r := e.Start(context.Background(), "/tmp/sample.mp3")

	events := collect(t, r)
	<-r.Done()
	require.NoError(t, r.Err())
	require.True(t, backend.closed)

	// Progress milestones, in order: 5, 15, then per-segment values, then 100.
	var progress []int
	var segs []Segment
	var completed *Result
	for _, ev := range events {
		switch ev.Type {
		case EventProgress:
			progress = append(progress, ev.Progress)
		case EventSegment:
			segs = append(segs, ev.Segment)
		case EventCompleted:
			require.Nil(t, completed, "more than one terminal event")
			completed = ev.Result
		case EventError:
			t.Fatalf("unexpected error event: %v", ev.Err)
		}
	}

	require.Equal(t, []int{5, 15, 23, 55, 95, 100}, progress)
	for i := 1; i < len(progress); i++ {
		require.GreaterOrEqual(t, progress[i], progress[i-1])
	}

	require.Equal(t, []Segment{
		{Start: 0, End: 10.34, Text: "hello there"},
		{Start: 10.5, End: 50, Text: "general transcription"},
		{Start: 50.1, End: 100, Text: "bye"},
	}, segs)

	require.NotNil(t, completed)
	require.Equal(t, "hello there general transcription bye", completed.FullText)
	require.Equal(t, "en", completed.Language)
	require.Equal(t, "base", completed.Model)
	require.Equal(t, segs, completed.Segments)
	require.Equal(t, completed, r.Result())
}

func TestEngineProgressFormula(t *testing.T) {
	// A segment ending at 50s of a 100s file reports min(95, 15+80*0.5) = 55.
	backend := &fakeBackend{
		language: "en",
		duration: 100,
		segments: []speech.Segment{{Start: 40, End: 50, Text: "midway"}},
	}
	r := newTestEngine(backend, nil).Start(context.Background(), "x")

	var progress []int
	for _, ev := range collect(t, r) {
		if ev.Type == EventProgress {
			progress = append(progress, ev.Progress)
		}
	}
	require.Contains(t, progress, 55)
}

func TestEngineUnknownDurationSkipsProgress(t *testing.T) {
	backend := &fakeBackend{
		language: "en",
		duration: 0,
		segments: []speech.Segment{{Start: 0, End: 5, Text: "a"}, {Start: 5, End: 9, Text: "b"}},
	}
	r := newTestEngine(backend, nil).Start(context.Background(), "x")

	var progress []int
	for _, ev := range collect(t, r) {
		if ev.Type == EventProgress {
			progress = append(progress, ev.Progress)
		}
	}
	require.Equal(t, []int{5, 15, 100}, progress)
}

func TestEngineCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	segments := make([]speech.Segment, 10)
	for i := range segments {
		segments[i] = speech.Segment{Start: float64(i), End: float64(i + 1), Text: fmt.Sprintf("s%d", i)}
	}
	backend := &fakeBackend{language: "en", duration: 10, segments: segments}
	// Cancel right after the third segment clears the emission step: the
	// fourth is the in-flight one and must never surface.
	backend.afterSegment = func(i int) {
		if i == 2 {
			cancel()
		}
	}
	r := newTestEngine(backend, nil).Start(ctx, "x")

	var emitted int
	var sawTerminal bool
	for _, ev := range collect(t, r) {
		switch ev.Type {
		case EventSegment:
			emitted++
		case EventCompleted, EventError:
			sawTerminal = true
		}
	}

	<-r.Done()
	require.Equal(t, 3, emitted)
	require.False(t, sawTerminal)
	require.ErrorIs(t, r.Err(), context.Canceled)
	require.Nil(t, r.Result())
}

func TestEngineCancellationWithStalledConsumer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	segments := make([]speech.Segment, 200)
	for i := range segments {
		segments[i] = speech.Segment{Start: float64(i), End: float64(i + 1), Text: fmt.Sprintf("s%d", i)}
	}
	backend := &fakeBackend{language: "en", segments: segments}
	r := newTestEngine(backend, nil).Start(ctx, "x")

	// Read nothing: the run goroutine fills the event buffer and blocks on
	// the next send. Cancellation must still terminate the run.
	require.Eventually(t, func() bool {
		return len(r.events) == eventChBuffer
	}, 5*time.Second, time.Millisecond)
	cancel()

	select {
	case <-r.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled run did not stop")
	}

	require.ErrorIs(t, r.Err(), context.Canceled)
	require.Nil(t, r.Result())
	require.True(t, backend.closed)
}

func TestEngineBackendUnavailable(t *testing.T) {
	wantErr := fmt.Errorf("%w: not built in", speech.ErrBackendUnavailable)
	r := newTestEngine(nil, wantErr).Start(context.Background(), "x")

	events := collect(t, r)
	<-r.Done()

	var terminal []Event
	for _, ev := range events {
		if ev.Type == EventError || ev.Type == EventCompleted {
			terminal = append(terminal, ev)
		}
	}
	require.Len(t, terminal, 1)
	require.Equal(t, EventError, terminal[0].Type)
	require.ErrorIs(t, terminal[0].Err, speech.ErrBackendUnavailable)
	require.ErrorIs(t, r.Err(), speech.ErrBackendUnavailable)
}

func TestEngineRuntimeFailure(t *testing.T) {
	backend := &fakeBackend{
		language: "en",
		duration: 10,
		segments: []speech.Segment{{Start: 0, End: 2, Text: "partial"}},
		err:      errors.New("inference exploded"),
	}
	r := newTestEngine(backend, nil).Start(context.Background(), "x")

	events := collect(t, r)
	<-r.Done()

	var errEv *Event
	for i, ev := range events {
		if ev.Type == EventError {
			errEv = &events[i]
		}
		require.NotEqual(t, EventCompleted, ev.Type)
	}
	require.NotNil(t, errEv)
	require.NotErrorIs(t, errEv.Err, speech.ErrBackendUnavailable)
	require.Contains(t, errEv.Err.Error(), "transcription failed")
	require.Contains(t, errEv.Err.Error(), "inference exploded")
}

func TestEngineRunIDsAreUnique(t *testing.T) {
	e := newTestEngine(&fakeBackend{language: "en"}, nil)
	r1 := e.Start(context.Background(), "x")
	r2 := e.Start(context.Background(), "x")
	collect(t, r1)
	collect(t, r2)
	require.NotEqual(t, r1.ID, r2.ID)
}
