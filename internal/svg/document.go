// Package svg is an in-memory vector drawing surface: a small SVG scene graph with
// attribute batches, groups, rotation animations and XML serialisation.
package svg

import (
	"encoding/xml"
	"io"
	"sort"
	"time"
)

// Container is the layout box hosting one or more surfaces. SVG elements have no
// layout box of their own, so surface size is always read from here.
type Container struct {
	width  int
	height int
}

func (c *Container) Size() (width int, height int) { return c.width, c.height }

// Document owns the layout container and the surfaces inside it.
type Document struct {
	container *Container
	surfaces  map[string]*Surface
	order     []string
	clock     func() time.Time
}

func NewDocument(width, height int) *Document {
	return &Document{
		container: &Container{width: width, height: height},
		surfaces:  map[string]*Surface{},
		clock:     time.Now,
	}
}

// SetClock replaces the time source used to start and advance animations.
func (d *Document) SetClock(clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}
	d.clock = clock
}

func (d *Document) Container() *Container { return d.container }

// Resize changes the layout container size.
func (d *Document) Resize(width, height int) {
	d.container.width = width
	d.container.height = height
}

// AddSurface creates a surface with the given element id. An existing surface with the
// same id is returned unchanged.
func (d *Document) AddSurface(id string) *Surface {
	if s, ok := d.surfaces[id]; ok {
		return s
	}
	s := &Surface{doc: d}
	s.root = newElement(s, KindSVG)
	s.root.id = id
	d.surfaces[id] = s
	d.order = append(d.order, id)
	return s
}

// Surface looks up a surface by element id.
func (d *Document) Surface(id string) (*Surface, bool) {
	s, ok := d.surfaces[id]
	return s, ok
}

// Tick advances animations on every surface.
func (d *Document) Tick(now time.Time) {
	for _, id := range d.order {
		d.surfaces[id].Tick(now)
	}
}

// Surface is one <svg> element and the factory for its shapes and groups.
type Surface struct {
	doc  *Document
	root *Element
}

// Element returns the raw <svg> element.
func (s *Surface) Element() *Element { return s.root }

// Parent returns the layout container that actually has box dimensions.
func (s *Surface) Parent() *Container { return s.doc.container }

func (s *Surface) Now() time.Time { return s.doc.clock() }

func (s *Surface) Group() *Element  { return s.create(KindGroup) }
func (s *Surface) Circle() *Element { return s.create(KindCircle) }
func (s *Surface) Rect() *Element   { return s.create(KindRect) }

func (s *Surface) create(kind Kind) *Element {
	e := newElement(s, kind)
	s.root.Add(e)
	return e
}

// Tick advances every in-flight animation to now. Completion callbacks may start new
// animations; those are first stepped on the next tick.
func (s *Surface) Tick(now time.Time) {
	var running []*Animation
	s.root.walk(func(e *Element) {
		if e.anim != nil {
			running = append(running, e.anim)
		}
	})
	for _, a := range running {
		if a.Active() {
			a.step(now)
		}
	}
}

// Animating reports whether any element on the surface has an in-flight animation.
func (s *Surface) Animating() bool {
	found := false
	s.root.walk(func(e *Element) {
		if e.anim != nil {
			found = true
		}
	})
	return found
}

// WriteTo serialises the surface as a standalone SVG document.
func (s *Surface) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	enc := xml.NewEncoder(cw)
	width, height := s.Parent().Size()
	root := s.root
	extra := []xml.Attr{
		{Name: xml.Name{Local: "xmlns"}, Value: "http://www.w3.org/2000/svg"},
		{Name: xml.Name{Local: "width"}, Value: formatValue(width)},
		{Name: xml.Name{Local: "height"}, Value: formatValue(height)},
	}
	if err := encodeElement(enc, root, extra); err != nil {
		return cw.n, err
	}
	if err := enc.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

func encodeElement(enc *xml.Encoder, e *Element, extra []xml.Attr) error {
	start := xml.StartElement{Name: xml.Name{Local: string(e.kind)}}
	start.Attr = append(start.Attr, extra...)
	if e.id != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "id"}, Value: e.id})
	}
	names := make([]string, 0, len(e.attrs))
	for name := range e.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: name}, Value: formatValue(e.attrs[name])})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, c := range e.children {
		if err := encodeElement(enc, c, nil); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
