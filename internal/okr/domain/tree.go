package domain

import "sort"

// OkrNode wraps an Okr with its children for the tree view.
type OkrNode struct {
	Okr      Okr
	Children []*OkrNode
	Depth    int
}

// BuildTree arranges okrs into a forest using ParentID.
//
// An OKR whose parent is absent from the list becomes a root. Parent cycles
// are broken at the member with the smallest id. Later entries that repeat
// an id are dropped. Siblings are ordered by objective, then id.
func BuildTree(okrs []Okr) []*OkrNode {
	nodes := make([]*OkrNode, 0, len(okrs))
	byID := make(map[string]*OkrNode, len(okrs))
	for _, o := range okrs {
		if o.ID != "" {
			if _, dup := byID[o.ID]; dup {
				continue
			}
		}
		n := &OkrNode{Okr: o}
		nodes = append(nodes, n)
		if o.ID != "" {
			byID[o.ID] = n
		}
	}

	parent := make(map[string]string, len(byID))
	for id, n := range byID {
		p := n.Okr.ParentID
		if _, ok := byID[p]; ok && p != id {
			parent[id] = p
		}
	}
	breakCycles(parent, byID)

	var roots []*OkrNode
	for _, n := range nodes {
		p, ok := parent[n.Okr.ID]
		if n.Okr.ID == "" || !ok {
			roots = append(roots, n)
			continue
		}
		pn := byID[p]
		pn.Children = append(pn.Children, n)
	}

	sortNodes(roots)
	for _, r := range roots {
		setDepth(r, 0)
	}
	return roots
}

// Flatten walks the forest depth-first in display order.
func Flatten(roots []*OkrNode) []*OkrNode {
	var out []*OkrNode
	var walk func([]*OkrNode)
	walk = func(ns []*OkrNode) {
		for _, n := range ns {
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(roots)
	return out
}

func breakCycles(parent map[string]string, byID map[string]*OkrNode) {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	const (
		unvisited = iota
		inPath
		done
	)
	state := make(map[string]int, len(ids))

	for _, id := range ids {
		var path []string
		cur := id
		for cur != "" && state[cur] == unvisited {
			state[cur] = inPath
			path = append(path, cur)
			cur = parent[cur]
		}

		if cur != "" && state[cur] == inPath {
			start := 0
			for i, p := range path {
				if p == cur {
					start = i
					break
				}
			}
			minID := path[start]
			for _, p := range path[start:] {
				if p < minID {
					minID = p
				}
			}
			delete(parent, minID)
		}

		for _, p := range path {
			state[p] = done
		}
	}
}

func sortNodes(ns []*OkrNode) {
	sort.SliceStable(ns, func(i, j int) bool {
		if ns[i].Okr.Objective != ns[j].Okr.Objective {
			return ns[i].Okr.Objective < ns[j].Okr.Objective
		}
		return ns[i].Okr.ID < ns[j].Okr.ID
	})
	for _, n := range ns {
		sortNodes(n.Children)
	}
}

func setDepth(n *OkrNode, depth int) {
	n.Depth = depth
	for _, c := range n.Children {
		setDepth(c, depth+1)
	}
}
