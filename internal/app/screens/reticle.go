package screens

import (
	"context"

	"github.com/rook-computer/reticle/internal/render"
	"github.com/rook-computer/reticle/internal/state"
	"github.com/rook-computer/reticle/internal/svg"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// ReticleScreen shows only the crosshair. It is the screen while a game runs.
type ReticleScreen struct {
	Surface *svg.Surface
}

func (*ReticleScreen) Start(ctx context.Context) error { return nil }
func (*ReticleScreen) Stop() error                     { return nil }

func (screen *ReticleScreen) Draw(drawer render.Drawer, currentState state.State) {
	drawer.FillBackground()
	drawer.DrawSurface(screen.Surface)
}
