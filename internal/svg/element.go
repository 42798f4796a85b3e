package svg

import (
	"fmt"
	"strconv"
)

type Kind string

const (
	KindSVG    Kind = "svg"
	KindGroup  Kind = "g"
	KindCircle Kind = "circle"
	KindRect   Kind = "rect"
)

// Attrs is a batch of attribute values keyed by SVG attribute name.
// Values may be strings, numbers, bools or fmt.Stringer (see Translate, Rotate).
type Attrs map[string]any

// Translate is a transform value rendered as "translate(x,y)".
type Translate struct {
	X float64
	Y float64
}

func (t Translate) String() string {
	return "translate(" + formatFloat(t.X) + "," + formatFloat(t.Y) + ")"
}

// Rotate is a transform value rendered as "rotate(deg)" around the local origin.
type Rotate struct {
	Deg float64
}

func (r Rotate) String() string {
	return "rotate(" + formatFloat(r.Deg) + ")"
}

// Element is a node of the drawing surface tree.
type Element struct {
	kind     Kind
	id       string
	attrs    map[string]any
	parent   *Element
	children []*Element
	surface  *Surface
	anim     *Animation
}

func newElement(surface *Surface, kind Kind) *Element {
	return &Element{kind: kind, attrs: map[string]any{}, surface: surface}
}

func (e *Element) Kind() Kind        { return e.kind }
func (e *Element) ID() string        { return e.id }
func (e *Element) Parent() *Element  { return e.parent }
func (e *Element) Surface() *Surface { return e.surface }

func (e *Element) Children() []*Element {
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// Attr applies a batch of attributes in one call. A nil value removes the attribute.
func (e *Element) Attr(batch Attrs) *Element {
	for name, value := range batch {
		if value == nil {
			delete(e.attrs, name)
			continue
		}
		e.attrs[name] = value
	}
	return e
}

// Get returns the raw attribute value.
func (e *Element) Get(name string) (any, bool) {
	value, ok := e.attrs[name]
	return value, ok
}

// AttrString returns the attribute formatted the way it is serialised.
func (e *Element) AttrString(name string) string {
	value, ok := e.attrs[name]
	if !ok {
		return ""
	}
	return formatValue(value)
}

// Transform returns the element's transform value, if any.
func (e *Element) Transform() fmt.Stringer {
	value, ok := e.attrs["transform"]
	if !ok {
		return nil
	}
	if s, ok := value.(fmt.Stringer); ok {
		return s
	}
	return nil
}

// Rotation returns the current rotation in degrees, or 0 if the element is not rotated.
func (e *Element) Rotation() float64 {
	if r, ok := e.attrs["transform"].(Rotate); ok {
		return r.Deg
	}
	return 0
}

// Visible reports whether visibility is not "hidden".
func (e *Element) Visible() bool {
	return e.AttrString("visibility") != "hidden"
}

// Add appends child to e, detaching it from its previous parent.
// Adding a child to the parent it already belongs to is a no-op.
func (e *Element) Add(child *Element) *Element {
	if child == nil || child == e || child.parent == e {
		return e
	}
	child.detach()
	child.parent = e
	e.children = append(e.children, child)
	return e
}

// InsertBefore places child directly before ref among e's children.
// When ref is not a child of e, child is appended.
func (e *Element) InsertBefore(child, ref *Element) *Element {
	if child == nil || child == e {
		return e
	}
	child.detach()
	child.parent = e
	for i, c := range e.children {
		if c == ref {
			e.children = append(e.children, nil)
			copy(e.children[i+1:], e.children[i:])
			e.children[i] = child
			return e
		}
	}
	e.children = append(e.children, child)
	return e
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	e.Stop()
	e.detach()
}

func (e *Element) detach() {
	if e.parent == nil {
		return
	}
	siblings := e.parent.children
	for i, c := range siblings {
		if c == e {
			e.parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	e.parent = nil
}

func (e *Element) walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.children {
		c.walk(fn)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
