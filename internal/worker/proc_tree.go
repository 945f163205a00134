package worker

import (
	ps "github.com/mitchellh/go-ps"
)

// descendants lists every process below pid, deepest first, so killing them in order
// never leaves an orphan to be reparented mid-walk.
func descendants(pid int) ([]int, error) {
	procs, err := ps.Processes()
	if err != nil {
		return nil, err
	}
	children := make(map[int][]int)
	for _, p := range procs {
		children[p.PPid()] = append(children[p.PPid()], p.Pid())
	}

	var out []int
	var walk func(int)
	walk = func(parent int) {
		for _, child := range children[parent] {
			walk(child)
			out = append(out, child)
		}
	}
	walk(pid)
	return out, nil
}
