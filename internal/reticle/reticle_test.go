package reticle

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rook-computer/reticle/internal/settings"
	"github.com/rook-computer/reticle/internal/svg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newTestReticle(t *testing.T, width, height int) (*Reticle, *svg.Document, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Unix(5000, 0)}
	doc := svg.NewDocument(width, height)
	doc.SetClock(clock.Now)
	doc.AddSurface("reticle")
	r, err := New(doc, "reticle")
	require.NoError(t, err)
	return r, doc, clock
}

func TestNew_MissingSurface(t *testing.T) {
	doc := svg.NewDocument(800, 600)
	doc.AddSurface("other")

	r, err := New(doc, "reticle")
	require.Error(t, err)
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, ErrSurfaceNotFound))
	assert.Contains(t, err.Error(), `"reticle"`)
}

func TestNew_GroupStructure(t *testing.T) {
	r, _, _ := newTestReticle(t, 800, 600)

	children := r.Group().Children()
	require.Len(t, children, 4)
	assert.Same(t, r.OuterCircle().Element(), children[0])
	assert.Same(t, r.CenterDot().Element(), children[1])
	assert.Same(t, r.CenterBox().Element(), children[2])
	assert.Same(t, r.Cross(), children[3])
	assert.Len(t, r.Cross().Children(), 4)

	// only the reticle group is left at the surface root
	assert.Equal(t, []*svg.Element{r.Group()}, r.Surface().Element().Children())
}

func TestRender_Geometry(t *testing.T) {
	r, _, _ := newTestReticle(t, 800, 600)
	s := settings.Defaults()
	s.CircleDiameter = 40
	s.CircleEnabled = true
	s.Opacity = 0.75
	s.ShapeRendering = "geometricPrecision"

	r.Render(s)

	assert.Equal(t, "geometricPrecision", r.Surface().Element().AttrString("shape-rendering"))
	assert.Equal(t, svg.Translate{X: 400, Y: 300}, r.Group().Transform())
	assert.Equal(t, "0.75", r.Group().AttrString("opacity"))

	circle := r.OuterCircle().Element()
	assert.Equal(t, "20", circle.AttrString("r"))
	assert.Equal(t, "none", circle.AttrString("fill"))
	assert.Equal(t, s.CircleColor, circle.AttrString("stroke"))
	assert.Equal(t, "2", circle.AttrString("stroke-width"))
	assert.True(t, circle.Visible())
}

func TestRender_CrossPlacement(t *testing.T) {
	r, _, _ := newTestReticle(t, 800, 600)
	s := settings.Defaults()
	s.CrossLength = 20
	s.CrossSpread = 5
	s.CrossThickness = 4

	r.Render(s)

	arms := r.Arms()
	want := []svg.Translate{{X: -2, Y: -25}, {X: -2, Y: 5}, {X: -25, Y: -2}, {X: 5, Y: -2}}
	for i, arm := range arms {
		assert.Equal(t, want[i], arm.Element().Transform(), "arm %d", i)
		assert.Equal(t, s.CrossColor, arm.Element().AttrString("fill"))
		assert.True(t, arm.Element().Visible())
	}
	assert.Equal(t, "4", arms[0].Element().AttrString("width"))
	assert.Equal(t, "20", arms[0].Element().AttrString("height"))
	assert.Equal(t, "20", arms[2].Element().AttrString("width"))
	assert.Equal(t, "4", arms[2].Element().AttrString("height"))

	s.CrossEnabled = false
	r.Render(s)
	for _, arm := range r.Arms() {
		assert.False(t, arm.Element().Visible())
	}
}

func TestRender_CenterExclusivity(t *testing.T) {
	r, _, _ := newTestReticle(t, 800, 600)

	cases := []struct {
		enabled bool
		shape   settings.CenterShape
		dot     bool
		box     bool
	}{
		{true, settings.CenterCircle, true, false},
		{true, settings.CenterSquare, false, true},
		{false, settings.CenterCircle, false, false},
		{false, settings.CenterSquare, false, false},
		{true, "triangle", false, false},
	}
	for _, tc := range cases {
		s := settings.Defaults()
		s.CenterEnabled = tc.enabled
		s.CenterShape = tc.shape
		r.Render(s)

		assert.Equal(t, tc.dot, r.CenterDot().Element().Visible(), "dot %+v", tc)
		assert.Equal(t, tc.box, r.CenterBox().Element().Visible(), "box %+v", tc)
	}
}

func TestRender_CenterBoxCentered(t *testing.T) {
	r, _, _ := newTestReticle(t, 800, 600)
	s := settings.Defaults()
	s.CenterDiameter = 6
	s.CenterShape = settings.CenterSquare

	r.Render(s)

	box := r.CenterBox().Element()
	assert.Equal(t, svg.Translate{X: -3, Y: -3}, box.Transform())
	assert.Equal(t, "6", box.AttrString("width"))
	assert.Equal(t, "3", r.CenterDot().Element().AttrString("r"))
	// both variants always carry an outline
	require.NotNil(t, r.CenterDot().Outline())
	require.NotNil(t, r.CenterBox().Outline())
	assert.False(t, r.CenterDot().Outline().Visible())
	assert.True(t, r.CenterBox().Outline().Visible())
}

func TestRender_Idempotent(t *testing.T) {
	r, _, _ := newTestReticle(t, 800, 600)
	s := settings.Defaults()
	s.CircleEnabled = true
	s.CrossRotation = 45

	r.Render(s)
	var first bytes.Buffer
	_, err := r.Surface().WriteTo(&first)
	require.NoError(t, err)

	r.Render(s)
	var second bytes.Buffer
	_, err = r.Surface().WriteTo(&second)
	require.NoError(t, err)

	assert.Equal(t, first.String(), second.String())
}

func TestRender_FollowsResize(t *testing.T) {
	r, doc, _ := newTestReticle(t, 800, 600)
	r.Render(settings.Defaults())

	doc.Resize(1920, 1080)
	r.Render(settings.Defaults())

	assert.Equal(t, svg.Translate{X: 960, Y: 540}, r.Group().Transform())
}

func TestRotation_StaticAngleModulo(t *testing.T) {
	r, _, _ := newTestReticle(t, 800, 600)
	s := settings.Defaults()
	s.CrossRotation = 405

	r.Render(s)

	state := r.Rotation()
	assert.Equal(t, Static, state.Mode)
	assert.InDelta(t, 45, state.Angle, 1e-9)
	assert.Nil(t, r.Cross().Animation())
}

func TestRotation_StaticAngleReappliedEveryRender(t *testing.T) {
	r, _, _ := newTestReticle(t, 800, 600)
	s := settings.Defaults()
	s.CrossRotation = 10
	r.Render(s)

	s.CrossRotation = 30
	r.Render(s)

	assert.InDelta(t, 30, r.Rotation().Angle, 1e-9)
}

func TestRotation_SpinStartsAtZero(t *testing.T) {
	r, doc, clock := newTestReticle(t, 800, 600)
	s := settings.Defaults()
	s.CrossRotation = 45
	r.Render(s)

	s.CrossSpinPeriod = 2000
	r.Render(s)

	state := r.Rotation()
	assert.Equal(t, Spinning, state.Mode)
	assert.Equal(t, 2000, state.Period)
	assert.InDelta(t, 0, state.Angle, 1e-9)
	require.NotNil(t, r.Cross().Animation())

	clock.now = clock.now.Add(500 * time.Millisecond)
	doc.Tick(clock.now)
	assert.InDelta(t, 90, r.Rotation().Angle, 1e-9)

	// a full revolution later the spin is still running
	clock.now = clock.now.Add(2 * time.Second)
	doc.Tick(clock.now)
	assert.InDelta(t, 90, r.Rotation().Angle, 1e-9)
	assert.True(t, r.Cross().Animation().Active())
}

func TestRotation_SamePeriodKeepsSpinning(t *testing.T) {
	r, doc, clock := newTestReticle(t, 800, 600)
	s := settings.Defaults()
	s.CrossSpinPeriod = 1000
	r.Render(s)
	anim := r.Cross().Animation()

	clock.now = clock.now.Add(250 * time.Millisecond)
	doc.Tick(clock.now)
	r.Render(s)

	assert.Same(t, anim, r.Cross().Animation())
	assert.InDelta(t, 90, r.Rotation().Angle, 1e-9)
}

func TestRotation_PeriodChangeRestartsFromZero(t *testing.T) {
	r, doc, clock := newTestReticle(t, 800, 600)
	s := settings.Defaults()
	s.CrossSpinPeriod = 1000
	r.Render(s)
	first := r.Cross().Animation()

	clock.now = clock.now.Add(250 * time.Millisecond)
	doc.Tick(clock.now)
	require.InDelta(t, 90, r.Rotation().Angle, 1e-9)

	s.CrossSpinPeriod = 4000
	r.Render(s)

	assert.False(t, first.Active())
	assert.InDelta(t, 0, r.Rotation().Angle, 1e-9)
	assert.Equal(t, 4000, r.Rotation().Period)

	clock.now = clock.now.Add(time.Second)
	doc.Tick(clock.now)
	assert.InDelta(t, 90, r.Rotation().Angle, 1e-9)
}

func TestRotation_SpinToStatic(t *testing.T) {
	r, doc, clock := newTestReticle(t, 800, 600)
	s := settings.Defaults()
	s.CrossSpinPeriod = 1000
	r.Render(s)
	clock.now = clock.now.Add(100 * time.Millisecond)
	doc.Tick(clock.now)

	s.CrossSpinPeriod = 0
	s.CrossRotation = 15
	r.Render(s)

	state := r.Rotation()
	assert.Equal(t, Static, state.Mode)
	assert.InDelta(t, 15, state.Angle, 1e-9)
	assert.Nil(t, r.Cross().Animation())

	clock.now = clock.now.Add(time.Second)
	doc.Tick(clock.now)
	assert.InDelta(t, 15, r.Rotation().Angle, 1e-9)
}

func TestRotation_NegativePeriodIsStatic(t *testing.T) {
	r, _, _ := newTestReticle(t, 800, 600)
	s := settings.Defaults()
	s.CrossSpinPeriod = -100
	s.CrossRotation = 20

	r.Render(s)

	assert.Equal(t, Static, r.Rotation().Mode)
	assert.InDelta(t, 20, r.Rotation().Angle, 1e-9)
}

func TestRotation_HugePeriodStillSpins(t *testing.T) {
	r, doc, clock := newTestReticle(t, 800, 600)
	s := settings.Defaults()
	s.CrossSpinPeriod = math.MaxInt

	r.Render(s)

	state := r.Rotation()
	assert.Equal(t, Spinning, state.Mode)
	assert.Equal(t, settings.MaxSpinPeriod, state.Period)
	anim := r.Cross().Animation()
	require.NotNil(t, anim)
	assert.Equal(t, time.Duration(settings.MaxSpinPeriod)*time.Millisecond, anim.Duration)

	clock.now = clock.now.Add(time.Hour)
	doc.Tick(clock.now)
	assert.True(t, anim.Active())
	assert.InDelta(t, 15, r.Rotation().Angle, 1e-6)
}
