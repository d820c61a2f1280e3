package symbols

// spanSize orders spans by line count first and by the column distance on the final line second.
type spanSize struct {
	lines   int
	columns int
}

func sizeOf(span Span) spanSize {
	return spanSize{
		lines:   span.End.Line - span.Start.Line,
		columns: span.End.Column - span.Start.Column,
	}
}

func (size spanSize) smallerThan(other spanSize) bool {
	if size.lines != other.lines {
		return size.lines < other.lines
	}
	return size.columns < other.columns
}

// FindSmallestEnclosing returns the smallest node whose span contains position and whose kind is wanted.
// Subtrees of nodes that do not contain position are skipped. Equal sizes keep the first node visited.
func FindSmallestEnclosing(forest []Node, position Position, wanted KindSet) (Node, bool) {
	var best *Node
	var bestSize spanSize

	var visit func(node *Node)
	visit = func(node *Node) {
		if !node.Span.Contains(position) {
			return
		}
		if wanted.Contains(node.Kind) {
			candidateSize := sizeOf(node.Span)
			if best == nil || candidateSize.smallerThan(bestSize) {
				best = node
				bestSize = candidateSize
			}
		}
		for childIndex := range node.Children {
			visit(&node.Children[childIndex])
		}
	}

	for rootIndex := range forest {
		visit(&forest[rootIndex])
	}
	if best == nil {
		return Node{}, false
	}
	return *best, true
}

// FindEnclosingCallable returns the smallest function, method or constructor containing position.
func FindEnclosingCallable(forest []Node, position Position) (Node, bool) {
	return FindSmallestEnclosing(forest, position, CallableKinds)
}

// FindEnclosingType returns the smallest class, struct or interface containing position.
func FindEnclosingType(forest []Node, position Position) (Node, bool) {
	return FindSmallestEnclosing(forest, position, TypeKinds)
}
