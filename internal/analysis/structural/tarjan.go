package structural

// Strongly connected components via Tarjan's algorithm, rewritten with an
// explicit frame stack. Documents come out of a free-form drawing tool, so a
// pathological chain of thousands of nodes is valid input and must not be
// able to exhaust a goroutine stack through recursion.

type sccFrame struct {
	id       string
	childIdx int
}

type sccState struct {
	adjacency map[string][]string

	index   map[string]int
	lowlink map[string]int
	onStack map[string]bool
	stack   []string
	next    int

	components [][]string
}

// stronglyConnected returns every SCC of the id universe. Roots are taken in
// the given order and neighbors in edge load order, so the component list is
// reproducible for a given document.
func stronglyConnected(order []string, adjacency map[string][]string) [][]string {
	st := &sccState{
		adjacency: adjacency,
		index:     make(map[string]int, len(order)),
		lowlink:   make(map[string]int, len(order)),
		onStack:   make(map[string]bool, len(order)),
	}
	for _, id := range order {
		if _, visited := st.index[id]; !visited {
			st.visit(id)
		}
	}
	return st.components
}

// visit runs the textbook recursive formulation on a manual frame stack.
// Each frame remembers how many of its neighbors it has already expanded, so
// a frame is revisited exactly where it left off after a child closes.
func (st *sccState) visit(root string) {
	st.push(root)
	frames := []sccFrame{{id: root}}

	for len(frames) > 0 {
		f := &frames[len(frames)-1]
		neighbors := st.adjacency[f.id]

		if f.childIdx < len(neighbors) {
			child := neighbors[f.childIdx]
			f.childIdx++

			if _, visited := st.index[child]; !visited {
				st.push(child)
				frames = append(frames, sccFrame{id: child})
			} else if st.onStack[child] {
				if st.index[child] < st.lowlink[f.id] {
					st.lowlink[f.id] = st.index[child]
				}
			}
			continue
		}

		if st.lowlink[f.id] == st.index[f.id] {
			st.popComponent(f.id)
		}
		frames = frames[:len(frames)-1]
		if len(frames) > 0 {
			parent := frames[len(frames)-1].id
			if st.lowlink[f.id] < st.lowlink[parent] {
				st.lowlink[parent] = st.lowlink[f.id]
			}
		}
	}
}

func (st *sccState) push(id string) {
	st.index[id] = st.next
	st.lowlink[id] = st.next
	st.next++
	st.stack = append(st.stack, id)
	st.onStack[id] = true
}

func (st *sccState) popComponent(root string) {
	var comp []string
	for {
		top := st.stack[len(st.stack)-1]
		st.stack = st.stack[:len(st.stack)-1]
		st.onStack[top] = false
		comp = append(comp, top)
		if top == root {
			break
		}
	}
	st.components = append(st.components, comp)
}
