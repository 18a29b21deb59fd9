package editor

import "github.com/Bertii1/Audio-Recording-Library/internal/audio"

// MaxUndo is the number of snapshots retained for undo.
const MaxUndo = 20

type snapshot struct {
	desc string
	buf  audio.Buffer
}

// history is the two-stack snapshot model: each stack holds the states that
// popping it would restore, and popping one stack donates the current state
// to the other. Recording a new edit clears the redo stack, so there is no
// branching history.
type history struct {
	undo []snapshot
	redo []snapshot
}

func (h *history) reset() {
	h.undo = nil
	h.redo = nil
}

// record pushes the pre-edit state onto the undo stack, evicting the oldest
// entry once the bound is reached, and invalidates any undone futures.
func (h *history) record(desc string, buf audio.Buffer) {
	if len(h.undo) >= MaxUndo {
		h.undo = h.undo[1:]
	}
	h.undo = append(h.undo, snapshot{desc: desc, buf: buf})
	h.redo = nil
}

func (h *history) popUndo(current audio.Buffer) (audio.Buffer, bool) {
	if len(h.undo) == 0 {
		return audio.Buffer{}, false
	}
	s := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, snapshot{desc: s.desc, buf: current})
	return s.buf, true
}

func (h *history) popRedo(current audio.Buffer) (audio.Buffer, bool) {
	if len(h.redo) == 0 {
		return audio.Buffer{}, false
	}
	s := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, snapshot{desc: s.desc, buf: current})
	return s.buf, true
}

func (h *history) canUndo() bool { return len(h.undo) > 0 }
func (h *history) canRedo() bool { return len(h.redo) > 0 }
