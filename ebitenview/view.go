// Package ebitenview presents a canopy chart in an Ebitengine window: it
// ticks the chart's scheduler, feeds mouse input to the scene and draws the
// scene's render commands as triangles.
package ebitenview

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/canopy"
)

// RunConfig configures the window and optional automation.
type RunConfig struct {
	Title      string
	Width      int
	Height     int
	Background canopy.Color
	// Script, when set, is stepped once per frame.
	Script *canopy.Script
	// ScreenshotDir receives script snapshots. Defaults to "screenshots".
	ScreenshotDir string
	// ExitOnDone ends the game loop once Script has finished.
	ExitOnDone bool
}

// View is the ebiten.Game driving one chart.
type View struct {
	chart *canopy.Chart
	scene *canopy.Scene
	cfg   RunConfig
	mesh  mesh
	white *ebiten.Image
	shots []string
	err   error
}

// New creates a view over chart, which must draw into scene.
func New(chart *canopy.Chart, scene *canopy.Scene, cfg RunConfig) *View {
	if cfg.ScreenshotDir == "" {
		cfg.ScreenshotDir = "screenshots"
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		cfg.Width, cfg.Height = int(chart.Width()), int(chart.Height())
	}
	return &View{chart: chart, scene: scene, cfg: cfg}
}

// Run opens a window and blocks until it is closed.
func Run(chart *canopy.Chart, scene *canopy.Scene, cfg RunConfig) error {
	v := New(chart, scene, cfg)
	ebiten.SetWindowTitle(v.cfg.Title)
	ebiten.SetWindowSize(v.cfg.Width, v.cfg.Height)
	return ebiten.RunGame(v)
}

// Update implements ebiten.Game.
func (v *View) Update() error {
	if v.err != nil {
		return v.err
	}
	v.chart.Tick(time.Second / time.Duration(ebiten.TPS()))
	pending := v.scene.PendingInput() > 0
	v.scene.Update()
	if !pending {
		x, y := ebiten.CursorPosition()
		v.scene.Pointer(float64(x), float64(y), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft), canopy.MouseButtonLeft)
	}
	if r := v.cfg.Script; r != nil {
		if err := r.Step(v.chart, v.scene, v.queueShot); err != nil {
			return err
		}
		if r.Done() && v.cfg.ExitOnDone && len(v.shots) == 0 {
			return ebiten.Termination
		}
	}
	return nil
}

func (v *View) queueShot(label string) error {
	v.shots = append(v.shots, label)
	return nil
}

// Draw implements ebiten.Game.
func (v *View) Draw(screen *ebiten.Image) {
	screen.Fill(v.cfg.Background.RGBA())
	if v.white == nil {
		v.white = ebiten.NewImage(1, 1)
		v.white.Fill(color.White)
	}

	v.mesh.reset()
	cmds := v.scene.Commands()
	for _, cmd := range cmds {
		v.mesh.add(cmd)
	}
	if len(v.mesh.inds) > 0 {
		var op ebiten.DrawTrianglesOptions
		op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
		screen.DrawTriangles32(v.mesh.verts, v.mesh.inds, v.white, &op)
	}
	for _, cmd := range cmds {
		if cmd.Shape == canopy.ShapeText && cmd.Text != "" {
			x, y := canopy.TransformPoint(cmd.Transform, 0, 0)
			ebitenutil.DebugPrintAt(screen, cmd.Text, int(x), int(y)-8)
		}
	}
	if len(v.shots) > 0 {
		if err := writeScreenshots(screen, v.cfg.ScreenshotDir, v.shots); err != nil {
			v.chart.Logger().Error("screenshot failed", "err", err)
		}
		v.shots = v.shots[:0]
	}
}

// Layout implements ebiten.Game.
func (v *View) Layout(_, _ int) (int, int) {
	return v.cfg.Width, v.cfg.Height
}
