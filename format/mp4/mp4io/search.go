package mp4io

type walkFrame struct {
	box   *Box
	depth int
}

// Walk visits every box depth first in pre-order, siblings in file order.
// It uses an explicit stack, so deeply nested input cannot exhaust the
// goroutine stack. Returning false from fn stops the walk.
func (f Forest) Walk(fn func(b *Box, depth int) bool) {
	stack := make([]walkFrame, 0, len(f))
	for i := len(f) - 1; i >= 0; i-- {
		stack = append(stack, walkFrame{box: f[i]})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.box == nil || top.box.Kind == nil {
			continue
		}
		if !fn(top.box, top.depth) {
			return
		}
		children := top.box.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, walkFrame{box: children[i], depth: top.depth + 1})
		}
	}
}

// Find returns the first box with the given tag in pre-order, or nil.
// The box is shared with the tree: edits through it show up on the next
// WriteAll.
func (f Forest) Find(tag Tag) *Box {
	var found *Box
	f.Walk(func(b *Box, _ int) bool {
		if b.Tag() == tag {
			found = b
			return false
		}
		return true
	})
	return found
}

func (f Forest) FindByName(tag string) *Box {
	return f.Find(StringToTag(tag))
}

// FindAll returns every box with the given tag in pre-order.
func (f Forest) FindAll(tag Tag) []*Box {
	var out []*Box
	f.Walk(func(b *Box, _ int) bool {
		if b.Tag() == tag {
			out = append(out, b)
		}
		return true
	})
	return out
}
