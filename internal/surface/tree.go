package surface

import (
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ziadkadry99/gazeoverlay/internal/geom"
)

// Node is one element in a Tree.
type Node struct {
	ID     string
	Kind   string
	Label  string
	Bounds geom.Rect
	Attrs  map[string]string
	// OnActivate runs when the node is activated.
	OnActivate func()

	parent   *Node
	children []*Node
}

func (n *Node) ElementID() string { return n.ID }

// Append adds children on top of any existing ones and returns n.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// Children returns n's children in paint order.
func (n *Node) Children() []*Node { return n.children }

// Attr returns the attribute value and whether it is set.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// Tree is an in-memory Surface. Later siblings paint over earlier ones.
type Tree struct {
	Root           *Node
	Size           geom.Size
	Marker         string
	TextInputKinds []string

	focused     *Node
	marked      map[*Node]bool
	activations map[*Node]int
}

// NewTree creates a Tree whose root spans size.
func NewTree(size geom.Size, marker string, textInputKinds []string) *Tree {
	return &Tree{
		Root: &Node{
			ID:     "root",
			Kind:   "body",
			Bounds: geom.Rect{Width: size.Width, Height: size.Height},
		},
		Size:           size,
		Marker:         marker,
		TextInputKinds: textInputKinds,
		marked:         make(map[*Node]bool),
		activations:    make(map[*Node]int),
	}
}

// Resize changes the viewport and root bounds.
func (t *Tree) Resize(size geom.Size) {
	t.Size = size
	t.Root.Bounds = geom.Rect{Width: size.Width, Height: size.Height}
}

// Find returns the node with the given ID, or nil.
func (t *Tree) Find(id string) *Node {
	var walk func(n *Node) *Node
	walk = func(n *Node) *Node {
		if n.ID == id {
			return n
		}
		for _, c := range n.children {
			if f := walk(c); f != nil {
				return f
			}
		}
		return nil
	}
	return walk(t.Root)
}

func (t *Tree) Viewport() geom.Size { return t.Size }

func (t *Tree) HitTest(p geom.Point) Element {
	if n := hit(t.Root, p); n != nil {
		return n
	}
	return nil
}

func hit(n *Node, p geom.Point) *Node {
	if !n.Bounds.Contains(p) {
		return nil
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if h := hit(n.children[i], p); h != nil {
			return h
		}
	}
	return n
}

func (t *Tree) Parent(e Element) Element {
	n, ok := e.(*Node)
	if !ok || n == nil || n.parent == nil {
		return nil
	}
	return n.parent
}

func (t *Tree) Classify(e Element) Class {
	n, ok := e.(*Node)
	if !ok || n == nil {
		return Class{}
	}
	var c Class
	if _, ok := n.Attrs[t.Marker]; ok {
		c.Activatable = true
	}
	if n.Attrs["contenteditable"] == "true" {
		c.TextInput = true
	}
	for _, pattern := range t.TextInputKinds {
		if matched, _ := doublestar.Match(pattern, n.Kind); matched {
			c.TextInput = true
			break
		}
	}
	return c
}

// Focus gives keyboard focus to n; nil clears focus.
func (t *Tree) Focus(n *Node) { t.focused = n }

func (t *Tree) Focused() Element {
	if t.focused == nil {
		return nil
	}
	return t.focused
}

func (t *Tree) Mark(e Element) {
	if n, ok := e.(*Node); ok && n != nil {
		t.marked[n] = true
	}
}

func (t *Tree) Unmark(e Element) {
	if n, ok := e.(*Node); ok && n != nil {
		delete(t.marked, n)
	}
}

// IsMarked reports whether n currently carries the highlight marker.
func (t *Tree) IsMarked(n *Node) bool { return t.marked[n] }

// Marked returns the IDs of all marked nodes, sorted.
func (t *Tree) Marked() []string {
	ids := make([]string, 0, len(t.marked))
	for n := range t.marked {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)
	return ids
}

func (t *Tree) Activate(e Element) {
	n, ok := e.(*Node)
	if !ok || n == nil {
		return
	}
	t.activations[n]++
	if n.OnActivate != nil {
		n.OnActivate()
	}
}

// Activations returns how many times n has been activated.
func (t *Tree) Activations(n *Node) int { return t.activations[n] }
