// Package reticle renders the crosshair overlay onto an svg surface: an outer circle,
// a centre dot or box and four cross arms, with optional continuous spin of the cross.
package reticle

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rook-computer/reticle/internal/settings"
	"github.com/rook-computer/reticle/internal/svg"
)

var ErrSurfaceNotFound = errors.New("surface element not found")

type RotationMode int

const (
	Static RotationMode = iota
	Spinning
)

func (m RotationMode) String() string {
	if m == Spinning {
		return "spinning"
	}
	return "static"
}

// RotationState describes what the cross group is doing right now.
type RotationState struct {
	Mode   RotationMode
	Period int     // milliseconds per revolution when spinning
	Angle  float64 // current rotation in degrees
}

type Reticle struct {
	surfaceID string
	surface   *svg.Surface

	reticleGroup *svg.Element
	cross        *svg.Element

	outerCircle *Shape
	centerDot   *Shape
	centerBox   *Shape
	crossTop    *Shape
	crossBottom *Shape
	crossLeft   *Shape
	crossRight  *Shape

	currentPeriod int
}

// New builds the reticle shapes on the surface with the given element id.
func New(doc *svg.Document, surfaceID string) (*Reticle, error) {
	surface, ok := doc.Surface(surfaceID)
	if !ok {
		return nil, fmt.Errorf("reticle %q: %w", surfaceID, ErrSurfaceNotFound)
	}
	r := &Reticle{surfaceID: surfaceID, surface: surface}

	r.reticleGroup = surface.Group()
	r.cross = surface.Group()

	r.outerCircle = NewShape(surface, ShapeCircle)
	r.outerCircle.AddToGroup(r.reticleGroup)
	r.centerDot = NewShape(surface, ShapeCircle)
	r.centerDot.AddToGroup(r.reticleGroup)
	r.centerBox = NewShape(surface, ShapeRectangle)
	r.centerBox.AddToGroup(r.reticleGroup)

	r.reticleGroup.Add(r.cross)
	r.crossTop = NewShape(surface, ShapeRectangle)
	r.crossTop.AddToGroup(r.cross)
	r.crossBottom = NewShape(surface, ShapeRectangle)
	r.crossBottom.AddToGroup(r.cross)
	r.crossLeft = NewShape(surface, ShapeRectangle)
	r.crossLeft.AddToGroup(r.cross)
	r.crossRight = NewShape(surface, ShapeRectangle)
	r.crossRight.AddToGroup(r.cross)

	return r, nil
}

func (r *Reticle) Surface() *svg.Surface { return r.surface }
func (r *Reticle) Group() *svg.Element   { return r.reticleGroup }
func (r *Reticle) Cross() *svg.Element   { return r.cross }

func (r *Reticle) OuterCircle() *Shape { return r.outerCircle }
func (r *Reticle) CenterDot() *Shape   { return r.centerDot }
func (r *Reticle) CenterBox() *Shape   { return r.centerBox }

// Arms returns the cross arms in top, bottom, left, right order.
func (r *Reticle) Arms() [4]*Shape {
	return [4]*Shape{r.crossTop, r.crossBottom, r.crossLeft, r.crossRight}
}

// Rotation reports the current state of the cross rotation.
func (r *Reticle) Rotation() RotationState {
	state := RotationState{Mode: Static, Angle: r.cross.Rotation()}
	if r.currentPeriod > 0 {
		state.Mode = Spinning
		state.Period = r.currentPeriod
	}
	return state
}

// Render lays out every shape from the settings snapshot and reconciles the spin state.
func (r *Reticle) Render(data settings.Settings) {
	// The <svg> element has no layout box; size comes from its container.
	width, height := r.surface.Parent().Size()

	r.surface.Element().Attr(svg.Attrs{"shape-rendering": data.ShapeRendering})

	// Opacity on the whole group avoids blending between overlapping shapes.
	r.reticleGroup.Attr(svg.Attrs{
		"opacity":   data.Opacity,
		"transform": svg.Translate{X: float64(width) / 2, Y: float64(height) / 2},
	})

	r.outerCircle.SetAttributes(svg.Attrs{
		"r":            data.CircleDiameter / 2,
		"fill":         "none",
		"stroke":       data.CircleColor,
		"visibility":   toVisibility(data.CircleEnabled),
		"stroke-width": data.CircleThickness,
	})
	r.outerCircle.SetOutline(data.CircleStrokeColor, data.CircleStrokeSize)

	halfCenterDiameter := data.CenterDiameter / 2
	r.centerDot.SetAttributes(svg.Attrs{
		"r":          halfCenterDiameter,
		"fill":       data.CenterColor,
		"visibility": toVisibility(data.CenterEnabled && data.CenterShape == settings.CenterCircle),
	})
	r.centerDot.SetOutline(data.CenterStrokeColor, data.CenterStrokeSize)
	r.centerBox.SetAttributes(svg.Attrs{
		"width":      data.CenterDiameter,
		"height":     data.CenterDiameter,
		"fill":       data.CenterColor,
		"visibility": toVisibility(data.CenterEnabled && data.CenterShape == settings.CenterSquare),
		"transform":  svg.Translate{X: -halfCenterDiameter, Y: -halfCenterDiameter},
	})
	r.centerBox.SetOutline(data.CenterStrokeColor, data.CenterStrokeSize)

	// Top and left arms start this far from the centre.
	negativeOffset := -(data.CrossLength + data.CrossSpread)
	halfThickness := -data.CrossThickness / 2
	arms := []struct {
		shape         *Shape
		width, height float64
		at            svg.Translate
	}{
		{r.crossTop, data.CrossThickness, data.CrossLength, svg.Translate{X: halfThickness, Y: negativeOffset}},
		{r.crossBottom, data.CrossThickness, data.CrossLength, svg.Translate{X: halfThickness, Y: data.CrossSpread}},
		{r.crossLeft, data.CrossLength, data.CrossThickness, svg.Translate{X: negativeOffset, Y: halfThickness}},
		{r.crossRight, data.CrossLength, data.CrossThickness, svg.Translate{X: data.CrossSpread, Y: halfThickness}},
	}
	for _, arm := range arms {
		arm.shape.SetAttributes(svg.Attrs{
			"width":      arm.width,
			"height":     arm.height,
			"fill":       data.CrossColor,
			"visibility": toVisibility(data.CrossEnabled),
			"transform":  arm.at,
		})
		arm.shape.SetOutline(data.CrossStrokeColor, data.CrossStrokeSize)
	}

	r.reconcileRotation(data.CrossSpinPeriod, data.CrossRotation)
}

// reconcileRotation moves between the Static and Spinning states. A new non-zero
// period always restarts the spin from 0 degrees; while static the angle is
// re-applied on every call. Periods past settings.MaxSpinPeriod spin at that rate.
func (r *Reticle) reconcileRotation(period int, angle float64) {
	period = max(0, min(period, settings.MaxSpinPeriod))
	if period != r.currentPeriod {
		if period > 0 {
			r.currentPeriod = period
			r.startSpin()
			return
		}
		r.currentPeriod = 0
	}
	if r.currentPeriod == 0 {
		r.setRotation(angle)
	}
}

// setRotation stops any spin and holds the cross at degree (mod 360).
func (r *Reticle) setRotation(degree float64) {
	degree = math.Mod(degree, 360)
	r.cross.Stop().Attr(svg.Attrs{"transform": svg.Rotate{Deg: degree}})
}

func (r *Reticle) startSpin() {
	r.setRotation(0)
	r.cross.Animate(svg.Animation{
		Rotate:   360,
		Duration: time.Duration(r.currentPeriod) * time.Millisecond,
		Repeat:   true,
	})
}
