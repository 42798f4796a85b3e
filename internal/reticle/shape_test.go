package reticle

import (
	"testing"

	"github.com/rook-computer/reticle/internal/svg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShapeSurface() *svg.Surface {
	return svg.NewDocument(100, 100).AddSurface("s")
}

func TestShape_OutlineCreatedLazily(t *testing.T) {
	surface := newShapeSurface()
	group := surface.Group()
	shape := NewShape(surface, ShapeRectangle)
	shape.AddToGroup(group)

	shape.SetOutline("", 0)
	assert.Nil(t, shape.Outline())

	shape.SetOutline("#000", 0)
	assert.Nil(t, shape.Outline())

	shape.SetOutline("#000", 2)
	require.NotNil(t, shape.Outline())
	assert.Equal(t, []*svg.Element{shape.Outline(), shape.Element()}, group.Children())
	assert.Equal(t, svg.KindRect, shape.Outline().Kind())
	assert.Equal(t, "none", shape.Outline().AttrString("fill"))
	assert.Equal(t, "#000", shape.Outline().AttrString("stroke"))
	assert.Equal(t, "4", shape.Outline().AttrString("stroke-width"))
}

func TestShape_OutlineToggleKeepsElement(t *testing.T) {
	surface := newShapeSurface()
	group := surface.Group()
	shape := NewShape(surface, ShapeCircle)
	shape.AddToGroup(group)
	shape.SetAttributes(svg.Attrs{"r": 5.0, "visibility": "visible"})

	shape.SetOutline("#fff", 1)
	outline := shape.Outline()
	require.NotNil(t, outline)
	assert.True(t, outline.Visible())

	shape.SetOutline("", 0)
	assert.Same(t, outline, shape.Outline())
	assert.False(t, outline.Visible())
	assert.Len(t, group.Children(), 2)

	shape.SetOutline("#f00", 3)
	assert.Same(t, outline, shape.Outline())
	assert.True(t, outline.Visible())
	assert.Equal(t, "#f00", outline.AttrString("stroke"))
	assert.Len(t, group.Children(), 2)
}

func TestShape_OutlineMirrorsGeometry(t *testing.T) {
	surface := newShapeSurface()
	group := surface.Group()
	shape := NewShape(surface, ShapeCircle)
	shape.AddToGroup(group)
	shape.SetAttributes(svg.Attrs{"r": 20.0, "fill": "none", "stroke": "#0f0", "stroke-width": 2.0})
	shape.SetOutline("#000", 1)

	outline := shape.Outline()
	assert.Equal(t, "20", outline.AttrString("r"))
	// ring width plus one unit on each side
	assert.Equal(t, "4", outline.AttrString("stroke-width"))

	shape.SetAttributes(svg.Attrs{"r": 30.0, "visibility": "hidden"})
	assert.Equal(t, "30", outline.AttrString("r"))
	assert.False(t, outline.Visible())
}

func TestShape_AddToGroupIsIdempotent(t *testing.T) {
	surface := newShapeSurface()
	group := surface.Group()
	shape := NewShape(surface, ShapeRectangle)

	shape.AddToGroup(group)
	shape.AddToGroup(group)

	assert.Len(t, group.Children(), 1)
}

func TestShape_AddToGroupMovesOutline(t *testing.T) {
	surface := newShapeSurface()
	first := surface.Group()
	second := surface.Group()
	shape := NewShape(surface, ShapeRectangle)
	shape.AddToGroup(first)
	shape.SetOutline("#000", 1)

	shape.AddToGroup(second)

	assert.Empty(t, first.Children())
	assert.Equal(t, []*svg.Element{shape.Outline(), shape.Element()}, second.Children())
}
