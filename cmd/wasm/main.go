//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/engine"
	"github.com/wattline/wattline/backend-go/internal/export"
	"github.com/wattline/wattline/backend-go/internal/geom"
)

var (
	eng      *engine.Engine
	viewport geom.Viewport
)

func main() {
	eng = engine.NewEngine()

	// Create the engine API object
	wattlineEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	wattlineEngine.Set("loadDocument", js.FuncOf(loadDocument))
	wattlineEngine.Set("setViewport", js.FuncOf(setViewport))
	wattlineEngine.Set("pointerDown", js.FuncOf(pointerDown))
	wattlineEngine.Set("pointerMove", js.FuncOf(pointerMove))
	wattlineEngine.Set("pointerUp", js.FuncOf(pointerUp))
	wattlineEngine.Set("blur", js.FuncOf(blur))
	wattlineEngine.Set("handleKey", js.FuncOf(handleKey))
	wattlineEngine.Set("setTool", js.FuncOf(setTool))
	wattlineEngine.Set("setZoom", js.FuncOf(setZoom))
	wattlineEngine.Set("setGridSize", js.FuncOf(setGridSize))
	wattlineEngine.Set("setGridVisible", js.FuncOf(setGridVisible))
	wattlineEngine.Set("setSnap", js.FuncOf(setSnap))
	wattlineEngine.Set("setOrigin", js.FuncOf(setOrigin))
	wattlineEngine.Set("setReferenceOverlay", js.FuncOf(setReferenceOverlay))
	wattlineEngine.Set("setSelection", js.FuncOf(setSelection))
	wattlineEngine.Set("setStyle", js.FuncOf(setStyle))
	wattlineEngine.Set("updateText", js.FuncOf(updateText))
	wattlineEngine.Set("importPathData", js.FuncOf(importPathData))
	wattlineEngine.Set("deleteSelection", js.FuncOf(deleteSelection))
	wattlineEngine.Set("clearAll", js.FuncOf(clearAll))
	wattlineEngine.Set("undo", js.FuncOf(undo))
	wattlineEngine.Set("onChange", js.FuncOf(onChange))

	// --- Queries (frontend ← engine) ---
	wattlineEngine.Set("render", js.FuncOf(render))
	wattlineEngine.Set("hitTest", js.FuncOf(hitTest))
	wattlineEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	wattlineEngine.Set("getDocument", js.FuncOf(getDocument))
	wattlineEngine.Set("getSelection", js.FuncOf(getSelection))
	wattlineEngine.Set("exportSymbol", js.FuncOf(exportSymbol))

	// Register on global scope
	js.Global().Set("wattlineEngine", wattlineEngine)

	// Signal that WASM is ready
	js.Global().Set("wattlineWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okResult() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func toJSON(v any) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return js.ValueOf("")
	}
	return js.ValueOf(string(data))
}

// logical maps pixel arguments x, y at args[0], args[1] to logical space.
func logical(args []js.Value) document.Point {
	p := document.Point{X: args[0].Float(), Y: args[1].Float()}
	return geom.ToLogical(p, viewport, eng.Origin(), eng.Zoom())
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}
	data := []byte(args[0].String())
	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return errorResult(err)
	}
	eng.LoadDocument(doc)

	// An explicitly saved origin, even (0,0), is never migrated.
	var wire struct {
		Origin *document.Point `json:"origin"`
	}
	migrated := false
	if json.Unmarshal(data, &wire) == nil && wire.Origin == nil {
		migrated = eng.Layout()
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "migrated": migrated})
}

func setViewport(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return nil
	}
	viewport = geom.Viewport{
		Left:   args[0].Float(),
		Top:    args[1].Float(),
		Width:  args[2].Float(),
		Height: args[3].Float(),
	}
	return nil
}

// pointerEvent reads (x, y, shift, target) where target is an optional JSON
// object {shapeId, handle} reported by the renderer.
func pointerEvent(args []js.Value) (engine.PointerEvent, bool) {
	if len(args) < 2 {
		return engine.PointerEvent{}, false
	}
	ev := engine.PointerEvent{Point: logical(args)}
	if len(args) > 2 && args[2].Type() == js.TypeBoolean {
		ev.Shift = args[2].Bool()
	}
	if len(args) > 3 && args[3].Type() == js.TypeString {
		var t engine.Target
		if err := json.Unmarshal([]byte(args[3].String()), &t); err == nil {
			ev.Target = &t
		}
	}
	return ev, true
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if ev, ok := pointerEvent(args); ok {
		eng.PointerDown(ev)
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if ev, ok := pointerEvent(args); ok {
		eng.PointerMove(ev)
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if ev, ok := pointerEvent(args); ok {
		eng.PointerUp(ev)
	}
	return nil
}

func blur(this js.Value, args []js.Value) interface{} {
	eng.Blur()
	return nil
}

func handleKey(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	var ev engine.KeyEvent
	if err := json.Unmarshal([]byte(args[0].String()), &ev); err != nil {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.HandleKey(ev))
}

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	if err := eng.SetTool(engine.Tool(args[0].String())); err != nil {
		return errorResult(err)
	}
	return okResult()
}

func setZoom(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetZoom(args[0].Float())
	return nil
}

func setGridSize(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetGridSize(args[0].Float())
	return nil
}

func setGridVisible(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetGridVisible(args[0].Bool())
	return nil
}

func setSnap(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetSnap(args[0].Bool())
	return nil
}

func setOrigin(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.SetOrigin(document.Point{X: args[0].Float(), Y: args[1].Float()})
	return nil
}

func setReferenceOverlay(this js.Value, args []js.Value) interface{} {
	d := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		d = args[0].String()
	}
	eng.SetReferenceOverlay(d)
	return nil
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	if arr.Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	length := arr.Length()
	ids := make([]string, length)
	for i := 0; i < length; i++ {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

func setStyle(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	var patch engine.StylePatch
	if err := json.Unmarshal([]byte(args[0].String()), &patch); err != nil {
		return errorResult(err)
	}
	return js.ValueOf(eng.SetStyle(patch))
}

func updateText(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.UpdateText(args[0].String(), args[1].String()))
}

func importPathData(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	n, err := eng.Import(args[0].String())
	result := map[string]interface{}{"imported": n}
	if err != nil {
		result["error"] = err.Error()
	}
	return js.ValueOf(result)
}

func deleteSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.DeleteSelection())
}

func clearAll(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.ClearAll())
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Undo())
}

// onChange registers a callback that receives the document JSON after every
// committed change.
func onChange(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		eng.OnChange(nil)
		return nil
	}
	fn := args[0]
	eng.OnChange(func(doc document.Document) {
		data, err := json.Marshal(doc)
		if err != nil {
			return
		}
		fn.Invoke(string(data))
	})
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	s, _ := engine.FrameToJSON(eng.Render())
	return js.ValueOf(s)
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("{}")
	}
	return toJSON(eng.HitTest(logical(args)))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	b, ok := eng.SelectionBounds()
	if !ok {
		return js.ValueOf("")
	}
	return toJSON(b)
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.Document())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.Selection())
}

// exportSymbol takes (format, relative, width, height); all are optional.
func exportSymbol(this js.Value, args []js.Value) interface{} {
	opts := export.Options{Relative: true}
	if len(args) > 0 && args[0].Type() == js.TypeString {
		f, err := export.ParseFormat(args[0].String())
		if err != nil {
			return errorResult(err)
		}
		opts.Format = f
	}
	if len(args) > 1 && args[1].Type() == js.TypeBoolean {
		opts.Relative = args[1].Bool()
	}
	if len(args) > 3 {
		opts.Width, opts.Height = args[2].Float(), args[3].Float()
	} else {
		opts.Width, opts.Height = viewport.Width, viewport.Height
	}
	res, err := export.Render(eng, opts)
	if err != nil {
		return errorResult(err)
	}
	return js.ValueOf(res.Body)
}
