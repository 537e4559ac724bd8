package protocol

import (
	"fmt"

	"github.com/zeusync/deltasync/pkg/encoding"
)

// InputKind identifies an input event. The values follow the window event
// numbering used by the game clients.
type InputKind int32

const (
	InputKeyPressed          InputKind = 5
	InputKeyReleased         InputKind = 6
	InputMouseWheelScrolled  InputKind = 8
	InputMouseButtonPressed  InputKind = 9
	InputMouseButtonReleased InputKind = 10
	InputMouseMoved          InputKind = 11
)

func (k InputKind) String() string {
	switch k {
	case InputKeyPressed:
		return "KeyPressed"
	case InputKeyReleased:
		return "KeyReleased"
	case InputMouseWheelScrolled:
		return "MouseWheelScrolled"
	case InputMouseButtonPressed:
		return "MouseButtonPressed"
	case InputMouseButtonReleased:
		return "MouseButtonReleased"
	case InputMouseMoved:
		return "MouseMoved"
	default:
		return fmt.Sprintf("InputKind(%d)", int32(k))
	}
}

// Modifiers are the modifier keys held during a key event.
type Modifiers struct {
	Alt, Ctrl, Shift, System bool
}

// InputEvent is one user input forwarded from a client to the server. Only
// the fields relevant to Kind are serialized.
type InputEvent struct {
	Kind InputKind

	Code      int32
	Modifiers Modifiers

	Button int32
	Wheel  int32
	Delta  float32
	X, Y   int32
}

func KeyPressed(code int32, mods Modifiers) InputEvent {
	return InputEvent{Kind: InputKeyPressed, Code: code, Modifiers: mods}
}

func KeyReleased(code int32, mods Modifiers) InputEvent {
	return InputEvent{Kind: InputKeyReleased, Code: code, Modifiers: mods}
}

func MouseButtonPressed(button, x, y int32) InputEvent {
	return InputEvent{Kind: InputMouseButtonPressed, Button: button, X: x, Y: y}
}

func MouseButtonReleased(button, x, y int32) InputEvent {
	return InputEvent{Kind: InputMouseButtonReleased, Button: button, X: x, Y: y}
}

func MouseMoved(x, y int32) InputEvent {
	return InputEvent{Kind: InputMouseMoved, X: x, Y: y}
}

func MouseWheelScrolled(wheel int32, delta float32, x, y int32) InputEvent {
	return InputEvent{Kind: InputMouseWheelScrolled, Wheel: wheel, Delta: delta, X: x, Y: y}
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func (ev InputEvent) encode(w *encoding.Writer) {
	w.Int32(int32(ev.Kind))
	switch ev.Kind {
	case InputKeyPressed, InputKeyReleased:
		w.Int32(ev.Code)
		w.Int32(boolToInt32(ev.Modifiers.Alt))
		w.Int32(boolToInt32(ev.Modifiers.Ctrl))
		w.Int32(boolToInt32(ev.Modifiers.Shift))
		w.Int32(boolToInt32(ev.Modifiers.System))
	case InputMouseButtonPressed, InputMouseButtonReleased:
		w.Int32(ev.Button)
		w.Int32(ev.X)
		w.Int32(ev.Y)
	case InputMouseMoved:
		w.Int32(ev.X)
		w.Int32(ev.Y)
	case InputMouseWheelScrolled:
		w.Int32(ev.Wheel)
		w.Float32(ev.Delta)
		w.Int32(ev.X)
		w.Int32(ev.Y)
	}
}

func decodeInput(r *encoding.Reader) (InputEvent, error) {
	ev := InputEvent{Kind: InputKind(r.Int32())}
	switch ev.Kind {
	case InputKeyPressed, InputKeyReleased:
		ev.Code = r.Int32()
		ev.Modifiers = Modifiers{
			Alt:    r.Int32() != 0,
			Ctrl:   r.Int32() != 0,
			Shift:  r.Int32() != 0,
			System: r.Int32() != 0,
		}
	case InputMouseButtonPressed, InputMouseButtonReleased:
		ev.Button, ev.X, ev.Y = r.Int32(), r.Int32(), r.Int32()
	case InputMouseMoved:
		ev.X, ev.Y = r.Int32(), r.Int32()
	case InputMouseWheelScrolled:
		ev.Wheel, ev.Delta = r.Int32(), r.Float32()
		ev.X, ev.Y = r.Int32(), r.Int32()
	default:
		if r.Err() == nil {
			return ev, fmt.Errorf("%w: %d", ErrUnknownInput, int32(ev.Kind))
		}
	}
	if err := r.Err(); err != nil {
		return ev, malformed("input event: %v", err)
	}
	return ev, nil
}
