package editor

// History is a linear undo/redo container. Push records the state that was
// current before a transition and clears the redo stack; Undo and Redo are
// mirror operations. There is no branching.
type History[T any] struct {
	undo []T
	redo []T
}

// Push records prev as the most recent undoable state and clears redo.
func (h *History[T]) Push(prev T) {
	h.undo = append(h.undo, prev)
	h.redo = nil
}

// Undo pops the most recent undo state, pushing current onto redo.
// ok is false when there is nothing to undo.
func (h *History[T]) Undo(current T) (T, bool) {
	if len(h.undo) == 0 {
		var zero T
		return zero, false
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	return top, true
}

// Redo pops the most recent redo state, pushing current onto undo.
func (h *History[T]) Redo(current T) (T, bool) {
	if len(h.redo) == 0 {
		var zero T
		return zero, false
	}
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	return top, true
}

// Reset drops both stacks. Used when the upstream source data changes, so
// history from a different clip can never be revived.
func (h *History[T]) Reset() {
	h.undo = nil
	h.redo = nil
}

// CanUndo reports whether Undo would succeed.
func (h *History[T]) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would succeed.
func (h *History[T]) CanRedo() bool { return len(h.redo) > 0 }
