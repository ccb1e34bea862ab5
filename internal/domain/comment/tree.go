package comment

// Node is a comment with its direct replies in arrival order.
type Node struct {
	Comment
	Children []*Node
}

type entry struct {
	node   *Node
	parent *entry
	pos    int
	seen   bool
}

// Organize turns a flat, arrival-ordered list into a forest.
//
// Comments whose parent is absent or unknown become roots. Siblings keep input order.
// When an ID repeats, the first occurrence wins and later ones are skipped (see DuplicateIDs).
// Comments caught in a parent cycle are promoted to roots so nothing is dropped.
func Organize(comments []Comment) []*Node {
	index := make(map[string]*entry, len(comments))
	entries := make([]*entry, 0, len(comments))

	for i := range comments {
		if _, dup := index[comments[i].ID]; dup {
			continue
		}
		e := &entry{node: &Node{Comment: comments[i]}, pos: len(entries)}
		index[comments[i].ID] = e
		entries = append(entries, e)
	}

	var roots []*entry
	for _, e := range entries {
		parentID := e.node.ParentID
		if p, ok := index[parentID]; ok && parentID != "" {
			e.parent = p
			p.node.Children = append(p.node.Children, e.node)
			continue
		}
		roots = append(roots, e)
	}

	reached := 0
	for _, r := range roots {
		reached += markReachable(r, index)
	}
	if reached < len(entries) {
		breakCycles(entries, index)
	}

	forest := make([]*Node, 0, len(roots))
	for _, e := range entries {
		if e.parent == nil {
			forest = append(forest, e.node)
		}
	}
	return forest
}

// breakCycles promotes one member of every unreachable cycle to root.
// The member chosen is the one that arrived first.
func breakCycles(entries []*entry, index map[string]*entry) {
	onPath := make(map[*entry]int)
	for _, start := range entries {
		if start.seen {
			continue
		}
		var path []*entry
		clear(onPath)
		cur := start
		for cur != nil && !cur.seen {
			if at, ok := onPath[cur]; ok {
				promote(firstArrived(path[at:]))
				break
			}
			onPath[cur] = len(path)
			path = append(path, cur)
			cur = cur.parent
		}
		markReachable(root(start), index)
	}
}

func firstArrived(cycle []*entry) *entry {
	first := cycle[0]
	for _, e := range cycle[1:] {
		if e.pos < first.pos {
			first = e
		}
	}
	return first
}

func promote(e *entry) {
	siblings := e.parent.node.Children
	for i, c := range siblings {
		if c == e.node {
			e.parent.node.Children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	e.parent = nil
}

func root(e *entry) *entry {
	for e.parent != nil && !e.parent.seen {
		e = e.parent
	}
	return e
}

// markReachable flags every node under e and returns how many were newly flagged.
func markReachable(e *entry, index map[string]*entry) int {
	if e.seen {
		return 0
	}
	n := 0
	stack := []*entry{e}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.seen {
			continue
		}
		cur.seen = true
		n++
		for _, child := range cur.node.Children {
			stack = append(stack, index[child.ID])
		}
	}
	return n
}

// CountAll returns the number of nodes in the forest, replies included.
func CountAll(forest []*Node) int {
	total := 0
	for _, n := range forest {
		total += 1 + CountAll(n.Children)
	}
	return total
}

// DuplicateIDs lists IDs that occur more than once, in order of their first repeat.
func DuplicateIDs(comments []Comment) []string {
	seen := make(map[string]int, len(comments))
	var dups []string
	for i := range comments {
		id := comments[i].ID
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}
