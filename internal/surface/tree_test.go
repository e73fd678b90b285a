package surface

import (
	"testing"

	"github.com/ziadkadry99/gazeoverlay/internal/geom"
)

const marker = "data-gaze-activatable"

func testTree() (*Tree, *Node, *Node, *Node) {
	tree := NewTree(geom.Size{Width: 800, Height: 600}, marker, []string{"input", "input/*", "textarea"})
	card := &Node{ID: "card", Kind: "div", Bounds: geom.Rect{X: 100, Y: 100, Width: 300, Height: 200}, Attrs: map[string]string{marker: ""}}
	label := &Node{ID: "label", Kind: "span", Bounds: geom.Rect{X: 120, Y: 120, Width: 100, Height: 20}}
	field := &Node{ID: "field", Kind: "input/text", Bounds: geom.Rect{X: 500, Y: 100, Width: 200, Height: 30}}
	card.Append(label)
	tree.Root.Append(card, field)
	return tree, card, label, field
}

func TestHitTestTopmost(t *testing.T) {
	tree, card, label, _ := testTree()

	if got := tree.HitTest(geom.Point{X: 130, Y: 125}); got != Element(label) {
		t.Errorf("HitTest inside label = %v, want label", got)
	}
	if got := tree.HitTest(geom.Point{X: 300, Y: 250}); got != Element(card) {
		t.Errorf("HitTest inside card = %v, want card", got)
	}
	if got := tree.HitTest(geom.Point{X: 10, Y: 10}); got != Element(tree.Root) {
		t.Errorf("HitTest on background = %v, want root", got)
	}
	if got := tree.HitTest(geom.Point{X: 900, Y: 10}); got != nil {
		t.Errorf("HitTest outside viewport = %v, want nil", got)
	}
}

func TestHitTestLaterSiblingWins(t *testing.T) {
	tree := NewTree(geom.Size{Width: 100, Height: 100}, marker, nil)
	under := &Node{ID: "under", Bounds: geom.Rect{Width: 50, Height: 50}}
	over := &Node{ID: "over", Bounds: geom.Rect{X: 25, Y: 25, Width: 50, Height: 50}}
	tree.Root.Append(under, over)

	if got := tree.HitTest(geom.Point{X: 30, Y: 30}); got != Element(over) {
		t.Errorf("overlap HitTest = %v, want over", got)
	}
}

func TestParentNilAtRoot(t *testing.T) {
	tree, card, label, _ := testTree()

	if got := tree.Parent(label); got != Element(card) {
		t.Errorf("Parent(label) = %v, want card", got)
	}
	// Must be an untyped nil so callers can compare against nil.
	if got := tree.Parent(tree.Root); got != nil {
		t.Errorf("Parent(root) = %#v, want nil", got)
	}
	if got := tree.Parent(nil); got != nil {
		t.Errorf("Parent(nil) = %#v, want nil", got)
	}
}

func TestClassify(t *testing.T) {
	tree, card, label, field := testTree()
	editable := &Node{ID: "editor", Kind: "div", Attrs: map[string]string{"contenteditable": "true"}}

	tests := []struct {
		n    *Node
		want Class
	}{
		{card, Class{Activatable: true}},
		{label, Class{}},
		{field, Class{TextInput: true}},
		{editable, Class{TextInput: true}},
	}
	for _, tt := range tests {
		if got := tree.Classify(tt.n); got != tt.want {
			t.Errorf("Classify(%s) = %+v, want %+v", tt.n.ID, got, tt.want)
		}
	}
	if got := tree.Classify(nil); got != (Class{}) {
		t.Errorf("Classify(nil) = %+v", got)
	}
}

func TestMarkUnmarkAndActivate(t *testing.T) {
	tree, card, _, _ := testTree()

	tree.Mark(card)
	if !tree.IsMarked(card) || len(tree.Marked()) != 1 {
		t.Fatalf("expected card marked, got %v", tree.Marked())
	}
	tree.Unmark(card)
	if len(tree.Marked()) != 0 {
		t.Errorf("expected no marks, got %v", tree.Marked())
	}

	fired := 0
	card.OnActivate = func() { fired++ }
	tree.Activate(card)
	if fired != 1 || tree.Activations(card) != 1 {
		t.Errorf("activation fired=%d count=%d, want 1/1", fired, tree.Activations(card))
	}
}

func TestFocus(t *testing.T) {
	tree, _, _, field := testTree()
	if tree.Focused() != nil {
		t.Error("expected no focus initially")
	}
	tree.Focus(field)
	if tree.Focused() != Element(field) {
		t.Error("expected focus on field")
	}
	tree.Focus(nil)
	if tree.Focused() != nil {
		t.Error("expected focus cleared")
	}
}

func TestFindAndResize(t *testing.T) {
	tree, _, label, _ := testTree()
	if tree.Find("label") != label {
		t.Error("Find(label) mismatch")
	}
	if tree.Find("missing") != nil {
		t.Error("Find(missing) should be nil")
	}
	tree.Resize(geom.Size{Width: 1000, Height: 700})
	if tree.Viewport().Width != 1000 || tree.HitTest(geom.Point{X: 950, Y: 10}) == nil {
		t.Error("Resize did not grow the root")
	}
}
