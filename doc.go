// Package canopy is the coordination core of a layered 2D charting library.
//
// A [Chart] owns a list of layers, a virtual-time [Scheduler] and a drawing
// [Backend]. Layers turn data into geometry; the chart reconciles the scales
// they propose into one coordinate system and hands each sublayer's geometry
// to the backend, which renders it and reports pointer interactions back.
// Animations run on the scheduler, never on wall-clock timers, so a chart
// can be driven headlessly and deterministically.
//
// # Quick start
//
// Layer kinds live in canopy/layers and register themselves on import:
//
//	scene := canopy.NewScene()
//	chart := canopy.NewChart(canopy.ChartOptions{Width: 640, Height: 400, Backend: scene})
//
//	chart.CreateLayer(layers.KindAxis, canopy.LayerOptions{ID: "axis"})
//	bars, _ := chart.CreateLayer(layers.KindRect, canopy.LayerOptions{ID: "sales"})
//	bars.SetData(table)
//	chart.Draw()
//
//	for {
//		chart.Tick(canopy.FrameDuration)
//		scene.Update()
//	}
//
// ebitenview runs that loop in a window; the svg package renders the same
// chart to markup.
//
// # Layers
//
// A [Layer] wraps a [LayerImpl] and fires "before:X" and "X" events around
// every lifecycle step (setData, setScale, setStyle, update, draw, destroy).
// Update recomputes geometry only when something changed since the last
// one. Errors and panics raised by an implementation are logged and
// reported through [ChartOptions.OnError] as [ErrCodeLayerFailure]; they
// never reach sibling layers.
//
// # Scales
//
// [Linear], [Band] and [Angular] build immutable [Scale] values. When data
// changes, [Chart.BindCoordinate] gathers each layer's proposals, merges
// them with [MergeScale] into the axis layer and scatters the result back.
// The axis layer's [CoordinateSystem] decides which slots take part.
//
// # Animation
//
// An [Animation] applies an effect (fade, zoom, scan, breathe, move) to its
// targets over a duration. An [AnimationQueue] plays members in priority
// groups: a group starts once every member of the previous one has ended.
// Each sublayer keeps one live queue holding its enter and loop animations,
// rebuilt on every draw.
//
// # Backends
//
// [Scene] is the retained node-tree backend. It emits [RenderCommand]
// values in paint order and hit-tests pointer input against node shapes.
// Transitions between draws tween reused elements with [TweenGroup], which
// is built on [gween].
//
// [gween]: https://github.com/tanema/gween
package canopy
