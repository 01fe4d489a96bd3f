package entities

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Direction is the axis along which an area lays out its children
type Direction string

const (
	// DirectionNone means the area has no children to lay out
	DirectionNone Direction = ""
	// DirectionHorizontal places children left to right
	DirectionHorizontal Direction = "horizontal"
	// DirectionVertical stacks children top to bottom
	DirectionVertical Direction = "vertical"
	// DirectionFill gives the single child the full area (box semantics)
	DirectionFill Direction = "fill"
)

// ParseDirection accepts "horizontal", "h", "vertical" or "v" in any case
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return DirectionHorizontal, nil
	case "vertical", "v":
		return DirectionVertical, nil
	default:
		return DirectionNone, newLayoutError(ErrorKindLayout,
			"split must be 'horizontal' or 'vertical'", fmt.Sprintf("got %q", s))
	}
}

// Area is a node of the layout tree. The root area spans the whole slide;
// every other area receives its rectangle from its parent during Layout.
type Area struct {
	// Length is the size of this area along the parent's split axis.
	// A nil length behaves like Auto().
	Length Unit

	// Name is an optional label used in logs and previews
	Name string

	children  []*Area
	parent    *Area
	direction Direction
	rect      *Rect
	root      *rootArea
}

type rootArea struct {
	width  Length
	height Length
	logger *slog.Logger
}

// NewArea creates a detached area with the given length
func NewArea(length Unit) *Area {
	return &Area{Length: length}
}

// NewRootArea creates the root of a layout tree spanning width x height.
// Until it is split, the root behaves like a box.
func NewRootArea(width, height Length) *Area {
	return &Area{
		direction: DirectionFill,
		root:      &rootArea{width: width, height: height, logger: slog.Default()},
	}
}

// NewRow creates an area whose children are laid out left to right
func NewRow(length Unit) *Area {
	return &Area{Length: length, direction: DirectionHorizontal}
}

// NewColumn creates an area whose children are stacked top to bottom
func NewColumn(length Unit) *Area {
	return &Area{Length: length, direction: DirectionVertical}
}

// NewBox creates an area holding at most one child that fills it
func NewBox(length Unit) *Area {
	return &Area{Length: length, direction: DirectionFill}
}

// SetLogger sets the logger used for layout tracing. Only meaningful on a root.
func (a *Area) SetLogger(logger *slog.Logger) {
	if a.root != nil && logger != nil {
		a.root.logger = logger
	}
}

// IsRoot reports whether the area is the root of its tree
func (a *Area) IsRoot() bool {
	return a.root != nil
}

// Direction returns the split direction of the area
func (a *Area) Direction() Direction {
	return a.direction
}

// Children returns the child areas in layout order
func (a *Area) Children() []*Area {
	out := make([]*Area, len(a.children))
	copy(out, a.children)
	return out
}

// Len returns the number of children
func (a *Area) Len() int {
	return len(a.children)
}

// AddChild appends item to the children and returns it
func (a *Area) AddChild(item *Area) *Area {
	item.parent = a
	a.children = append(a.children, item)
	return item
}

// AddBox creates a box child with the given length (Auto when nil)
func (a *Area) AddBox(length Unit) *Area {
	if length == nil {
		length = Auto()
	}
	return a.AddChild(NewBox(length))
}

// WithLength sets the length and returns the area for chaining
func (a *Area) WithLength(length Unit) *Area {
	a.Length = length
	return a
}

// Split replaces the children with one new area per length, laid out along
// direction ("horizontal", "h", "vertical" or "v").
func (a *Area) Split(direction string, lengths []Unit) ([]*Area, error) {
	dir, err := ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	return a.split(dir, lengths)
}

// SplitHorizontal splits the area into columns with the given widths
func (a *Area) SplitHorizontal(lengths ...Unit) ([]*Area, error) {
	return a.split(DirectionHorizontal, lengths)
}

// SplitVertical splits the area into rows with the given heights
func (a *Area) SplitVertical(lengths ...Unit) ([]*Area, error) {
	return a.split(DirectionVertical, lengths)
}

func (a *Area) split(dir Direction, lengths []Unit) ([]*Area, error) {
	if len(lengths) == 0 {
		return nil, NewSpecMismatchError(fmt.Sprintf("must provide at least one %s length", dir))
	}
	for _, c := range a.children {
		c.parent = nil
	}
	a.children = make([]*Area, 0, len(lengths))
	for _, l := range lengths {
		a.AddChild(NewArea(l))
	}
	a.direction = dir
	return a.Children(), nil
}

// Child returns the descendant at path; an empty path returns the area itself
func (a *Area) Child(path ...int) (*Area, error) {
	node := a
	for depth, idx := range path {
		if idx < 0 || idx >= len(node.children) {
			return nil, newLayoutError(ErrorKindIndex, "index out of range",
				fmt.Sprintf("index %d at depth %d, %d children", idx, depth, len(node.children)))
		}
		node = node.children[idx]
	}
	return node, nil
}

// Walk visits the area and its descendants in pre-order, stopping at the
// first error returned by fn.
func (a *Area) Walk(fn func(*Area) error) error {
	if err := fn(a); err != nil {
		return err
	}
	for _, c := range a.children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// WalkUp visits the area and its ancestors up to the root
func (a *Area) WalkUp(fn func(*Area) error) error {
	for node := a; node != nil; node = node.parent {
		if err := fn(node); err != nil {
			return err
		}
		if node.root != nil {
			return nil
		}
	}
	return nil
}

// Parent returns the parent area
func (a *Area) Parent() (*Area, error) {
	if a.parent == nil {
		return nil, NewStateError("area has no parent")
	}
	return a.parent, nil
}

// Root returns the root of the tree the area belongs to
func (a *Area) Root() (*Area, error) {
	node := a
	for node.root == nil {
		if node.parent == nil {
			return nil, NewStateError("no root area found in hierarchy")
		}
		node = node.parent
	}
	return node, nil
}

// Depth returns the number of ancestors of the area
func (a *Area) Depth() int {
	depth := 0
	for node := a; node.parent != nil && node.root == nil; node = node.parent {
		depth++
	}
	return depth
}

// ParentPos returns the index of the area among its siblings
func (a *Area) ParentPos() (int, error) {
	parent, err := a.Parent()
	if err != nil {
		return 0, err
	}
	for i, c := range parent.children {
		if c == a {
			return i, nil
		}
	}
	return 0, NewStateError("area is not a child of its parent")
}

// Pos returns the path of child indices from the root to the area
func (a *Area) Pos() ([]int, error) {
	var idx []int
	node := a
	for node.root == nil {
		i, err := node.ParentPos()
		if err != nil {
			return nil, fmt.Errorf("resolving position: %w", err)
		}
		idx = append(idx, i)
		node = node.parent
	}
	for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx, nil
}

// FormatPos formats a position path as a tuple: "()", "(1,)" or "(1, 0)"
func FormatPos(pos []int) string {
	parts := make([]string, len(pos))
	for i, p := range pos {
		parts[i] = strconv.Itoa(p)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Rect returns the resolved rectangle of the area
func (a *Area) Rect() (Rect, error) {
	if a.rect == nil {
		return Rect{}, NewStateError("area has no rect; call Resolve() first")
	}
	return *a.rect, nil
}

// HasRect reports whether the area has been laid out
func (a *Area) HasRect() bool {
	return a.rect != nil
}

// Size returns the slide size spanned by a root area
func (a *Area) Size() (Length, Length, error) {
	if a.root == nil {
		return 0, 0, NewStateError("size is only defined for the root area")
	}
	return a.root.width, a.root.height, nil
}

// Resolve lays the whole tree out, starting from the root rectangle
func (a *Area) Resolve() error {
	if a.root == nil {
		return NewStateError("Resolve() must be called on the root area")
	}
	return a.Layout(Rect{X: 0, Y: 0, Width: a.root.width, Height: a.root.height})
}

// Layout assigns rect to the area and lays its children out
func (a *Area) Layout(rect Rect) error {
	a.logger().Debug("area layout",
		slog.Int("depth", a.Depth()),
		slog.String("name", a.Name),
		slog.String("rect", rect.String()))

	r := rect
	a.rect = &r
	return a.layoutChildren()
}

func (a *Area) layoutChildren() error {
	if len(a.children) == 0 {
		return nil
	}

	var rects []Rect
	var err error
	switch a.direction {
	case DirectionFill:
		if len(a.children) != 1 {
			return NewSpecMismatchError(fmt.Sprintf("box supports exactly one child, has %d", len(a.children)))
		}
		rects = []Rect{*a.rect}
	case DirectionHorizontal:
		rects, err = a.rect.SplitHorizontal(a.childLengths())
	case DirectionVertical:
		rects, err = a.rect.SplitVertical(a.childLengths())
	default:
		return nil
	}
	if err != nil {
		return err
	}

	for i, child := range a.children {
		if err := child.Layout(rects[i]); err != nil {
			return err
		}
	}
	return nil
}

func (a *Area) childLengths() []Unit {
	lengths := make([]Unit, len(a.children))
	for i, c := range a.children {
		if c.Length == nil {
			lengths[i] = Auto()
		} else {
			lengths[i] = c.Length
		}
	}
	return lengths
}

func (a *Area) logger() *slog.Logger {
	root, err := a.Root()
	if err != nil || root.root.logger == nil {
		return slog.Default()
	}
	return root.root.logger
}
