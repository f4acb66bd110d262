package book

// Unreachable returns the IDs of states that no path from the initial state leads to,
// in book order. Every transition kind counts as an edge.
func (b *Book) Unreachable() []string {
	if len(b.states) == 0 {
		return nil
	}

	visited := make([]bool, len(b.states))
	queue := []int{0}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		st := &b.states[current]
		var targets []int
		if st.Timeout != nil {
			targets = append(targets, st.Timeout.To)
		}
		if to, ok := st.TransitionEnd(); ok {
			targets = append(targets, to)
		}
		for _, to := range st.Inputs {
			targets = append(targets, to)
		}
		for _, to := range targets {
			if to >= 0 && to < len(b.states) && !visited[to] {
				queue = append(queue, to)
			}
		}
	}

	var out []string
	for i, ok := range visited {
		if !ok {
			out = append(out, b.states[i].ID)
		}
	}
	return out
}
