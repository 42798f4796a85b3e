package screens

import (
	"context"
	"fmt"
	"image"

	"github.com/rook-computer/reticle/internal/render"
	"github.com/rook-computer/reticle/internal/render/layout"
	"github.com/rook-computer/reticle/internal/state"
	"github.com/rook-computer/reticle/internal/svg"
)

const (
	menuMaxWidth   = 520
	menuMargin     = 24
	menuHeaderPx   = 150
	menuFooterPx   = 40
	qrCodeSourcePx = 256
)

// MenuScreen draws the reticle with a side panel pointing at the settings window:
// the active profile and a QR code of the settings URL.
type MenuScreen struct {
	Surface     *svg.Surface
	Logger      Logger
	HotkeyLabel string

	qrURL   string
	qrImage image.Image
}

func NewMenuScreen(surface *svg.Surface, logger Logger) *MenuScreen {
	return &MenuScreen{Surface: surface, Logger: logger, HotkeyLabel: "F10"}
}

func (*MenuScreen) Start(ctx context.Context) error { return nil }
func (*MenuScreen) Stop() error                     { return nil }

func (screen *MenuScreen) Draw(drawer render.Drawer, currentState state.State) {
	drawer.FillBackground()
	drawer.DrawSurface(screen.Surface)

	width, height := drawer.Size()
	panel := layout.Inset(layout.SidePanel(image.Rect(0, 0, width, height), 1.0/3, menuMaxWidth), menuMargin)
	drawer.FillRect(panel, render.PanelBackground)

	content := layout.Inset(panel, menuMargin)
	header, body := layout.SplitHorizontal(content, menuHeaderPx)
	qrArea, footer := layout.SplitHorizontal(body, body.Dy()-menuFooterPx)

	y := header.Min.Y
	title := drawer.DrawText("Reticle settings", header.Min.X, y, render.TextStyle{Color: render.Accent, Size: 36})
	y += title.LineHeight + 8
	profile := currentState.Profile
	if profile == "" {
		profile = "(unsaved)"
	}
	line := drawer.DrawText("Profile: "+profile, header.Min.X, y, render.TextStyle{Size: 24})
	y += line.LineHeight + 4
	drawer.DrawText(fmt.Sprintf("Press %s to close", screen.HotkeyLabel), header.Min.X, y, render.TextStyle{Size: 18})

	if currentState.SettingsURL == "" {
		return
	}
	if qr := screen.qrCode(currentState.SettingsURL); qr != nil {
		drawer.DrawImageInRect(qr, layout.FitSquare(qrArea), render.ScaleModeFit)
	}
	drawer.DrawText(currentState.SettingsURL, footer.Min.X, footer.Min.Y+8, render.TextStyle{Size: 18})
}

func (screen *MenuScreen) qrCode(url string) image.Image {
	if url == screen.qrURL {
		return screen.qrImage
	}
	img, err := render.QRCode(url, qrCodeSourcePx)
	if err != nil && screen.Logger != nil {
		screen.Logger.Errorf("menu", "qr code for %q failed: %v", url, err)
	}
	screen.qrURL, screen.qrImage = url, img
	return img
}
