package trellis

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// inputState remembers what the previous poll reported.
type inputState struct {
	cursor Vec2
	primed bool
}

// editorKeys maps the Ebitengine keys the editor reacts to.
var editorKeys = [...]struct {
	ebiten ebiten.Key
	key    Key
}{
	{ebiten.KeyShiftLeft, KeyShift},
	{ebiten.KeyShiftRight, KeyShift},
	{ebiten.KeyDelete, KeyDelete},
	{ebiten.KeyBackspace, KeyBackspace},
	{ebiten.KeyEscape, KeyEscape},
}

// readModifiers reads the current keyboard modifier state.
func readModifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) || ebiten.IsKeyPressed(ebiten.KeyAltLeft) || ebiten.IsKeyPressed(ebiten.KeyAltRight) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) || ebiten.IsKeyPressed(ebiten.KeyMetaLeft) || ebiten.IsKeyPressed(ebiten.KeyMetaRight) {
		mods |= ModMeta
	}
	return mods
}

// pollInput converts this frame's Ebitengine input into interactor events.
// The move is dispatched before presses so tools see the press position.
func (e *Editor) pollInput() {
	mods := readModifiers()
	cx, cy := ebiten.CursorPosition()
	cursor := Vec2{float64(cx), float64(cy)}

	if !e.input.primed || cursor != e.input.cursor {
		e.interactor.PointerMove(PointerEvent{Screen: cursor, Modifiers: mods})
		e.input.cursor = cursor
		e.input.primed = true
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		e.interactor.PointerDown(PointerEvent{Screen: cursor, Button: MouseButtonLeft, Modifiers: mods})
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		e.interactor.PointerUp(PointerEvent{Screen: cursor, Button: MouseButtonLeft, Modifiers: mods})
	}

	for _, k := range editorKeys {
		if inpututil.IsKeyJustPressed(k.ebiten) {
			e.interactor.KeyDown(KeyEvent{Key: k.key, Modifiers: mods})
		}
		if inpututil.IsKeyJustReleased(k.ebiten) {
			e.interactor.KeyUp(KeyEvent{Key: k.key, Modifiers: mods})
		}
	}

	// Ebitengine reports positive Y for scrolling up; WheelEvent uses the
	// opposite sign.
	if wx, wy := ebiten.Wheel(); wx != 0 || wy != 0 {
		e.interactor.Wheel(WheelEvent{Screen: cursor, DeltaX: -wx, DeltaY: -wy, Modifiers: mods})
	}
}
