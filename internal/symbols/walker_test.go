package symbols

import "testing"

func span(startLine, startColumn, endLine, endColumn int) Span {
	return Span{
		Start: Position{Line: startLine, Column: startColumn},
		End:   Position{Line: endLine, Column: endColumn},
	}
}

func sampleForest() []Node {
	return []Node{
		{
			Name: "Widget",
			Kind: KindClass,
			Span: span(0, 0, 40, 1),
			Children: []Node{
				{Name: "constructor", Kind: KindConstructor, Span: span(2, 2, 6, 3)},
				{
					Name: "render",
					Kind: KindMethod,
					Span: span(8, 2, 30, 3),
					Children: []Node{
						{Name: "helper", Kind: KindFunction, Span: span(10, 4, 14, 5)},
						{Name: "count", Kind: KindVariable, Span: span(16, 4, 16, 20)},
					},
				},
			},
		},
		{Name: "topLevel", Kind: KindFunction, Span: span(42, 0, 50, 1)},
	}
}

func TestFindSmallestEnclosingSelectsInnermostCallable(t *testing.T) {
	testCases := []struct {
		name         string
		position     Position
		wanted       KindSet
		expectFound  bool
		expectedName string
	}{
		{
			name:         "nested_function_inside_method",
			position:     Position{Line: 12, Column: 6},
			wanted:       CallableKinds,
			expectFound:  true,
			expectedName: "helper",
		},
		{
			name:         "method_body_outside_nested_function",
			position:     Position{Line: 16, Column: 8},
			wanted:       CallableKinds,
			expectFound:  true,
			expectedName: "render",
		},
		{
			name:         "constructor",
			position:     Position{Line: 3, Column: 0},
			wanted:       CallableKinds,
			expectFound:  true,
			expectedName: "constructor",
		},
		{
			name:        "class_body_without_callable",
			position:    Position{Line: 7, Column: 0},
			wanted:      CallableKinds,
			expectFound: false,
		},
		{
			name:         "type_lookup_returns_class",
			position:     Position{Line: 12, Column: 6},
			wanted:       TypeKinds,
			expectFound:  true,
			expectedName: "Widget",
		},
		{
			name:         "end_boundary_is_contained",
			position:     Position{Line: 50, Column: 1},
			wanted:       CallableKinds,
			expectFound:  true,
			expectedName: "topLevel",
		},
		{
			name:         "start_boundary_is_contained",
			position:     Position{Line: 42, Column: 0},
			wanted:       CallableKinds,
			expectFound:  true,
			expectedName: "topLevel",
		},
		{
			name:        "past_end_boundary",
			position:    Position{Line: 50, Column: 2},
			wanted:      CallableKinds,
			expectFound: false,
		},
		{
			name:        "between_roots",
			position:    Position{Line: 41, Column: 0},
			wanted:      CallableKinds,
			expectFound: false,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			node, found := FindSmallestEnclosing(sampleForest(), testCase.position, testCase.wanted)
			if found != testCase.expectFound {
				t.Fatalf("expected found=%t, got %t (%s)", testCase.expectFound, found, Describe(node))
			}
			if !found {
				return
			}
			if node.Name != testCase.expectedName {
				t.Fatalf("expected %s, got %s", testCase.expectedName, node.Name)
			}
			if !node.Span.Contains(testCase.position) {
				t.Fatalf("result span %+v does not contain %+v", node.Span, testCase.position)
			}
			if !testCase.wanted.Contains(node.Kind) {
				t.Fatalf("result kind %s not wanted", node.Kind)
			}
		})
	}
}

func TestFindSmallestEnclosingEmptyForest(t *testing.T) {
	if _, found := FindSmallestEnclosing(nil, Position{}, CallableKinds); found {
		t.Fatalf("expected no match for nil forest")
	}
	if _, found := FindSmallestEnclosing([]Node{}, Position{Line: 3}, TypeKinds); found {
		t.Fatalf("expected no match for empty forest")
	}
}

func TestFindSmallestEnclosingPrefersFewerLinesOverColumns(t *testing.T) {
	forest := []Node{
		{Name: "wideSingleLine", Kind: KindFunction, Span: span(5, 0, 6, 900)},
		{Name: "narrowManyLines", Kind: KindFunction, Span: span(0, 10, 9, 11)},
	}
	node, found := FindEnclosingCallable(forest, Position{Line: 5, Column: 40})
	if !found {
		t.Fatalf("expected a match")
	}
	if node.Name != "wideSingleLine" {
		t.Fatalf("expected wideSingleLine, got %s", node.Name)
	}
}

func TestFindSmallestEnclosingComparesColumnsForEqualLines(t *testing.T) {
	forest := []Node{
		{Name: "outer", Kind: KindMethod, Span: span(3, 0, 3, 80)},
		{Name: "inner", Kind: KindFunction, Span: span(3, 10, 3, 30)},
	}
	node, found := FindEnclosingCallable(forest, Position{Line: 3, Column: 15})
	if !found || node.Name != "inner" {
		t.Fatalf("expected inner, got %s (found=%t)", node.Name, found)
	}
}

func TestFindSmallestEnclosingKeepsFirstOnTie(t *testing.T) {
	forest := []Node{
		{
			Name: "Host",
			Kind: KindClass,
			Span: span(0, 0, 20, 1),
			Children: []Node{
				{Name: "first", Kind: KindMethod, Span: span(4, 2, 8, 3)},
				{Name: "second", Kind: KindMethod, Span: span(4, 2, 8, 3)},
			},
		},
	}
	for attempt := 0; attempt < 3; attempt++ {
		node, found := FindEnclosingCallable(forest, Position{Line: 6, Column: 0})
		if !found || node.Name != "first" {
			t.Fatalf("attempt %d: expected first, got %s", attempt, node.Name)
		}
	}
}

func TestFindSmallestEnclosingPrunesNonContainingParents(t *testing.T) {
	forest := []Node{
		{
			Name: "Misplaced",
			Kind: KindClass,
			Span: span(0, 0, 2, 0),
			Children: []Node{
				{Name: "escaped", Kind: KindMethod, Span: span(10, 0, 12, 0)},
			},
		},
	}
	if node, found := FindEnclosingCallable(forest, Position{Line: 11}); found {
		t.Fatalf("expected pruned subtree to be skipped, got %s", node.Name)
	}
}

func TestSpanContainsInclusiveEndpoints(t *testing.T) {
	testSpan := span(1, 4, 3, 2)
	testCases := []struct {
		position Position
		expected bool
	}{
		{Position{Line: 1, Column: 4}, true},
		{Position{Line: 1, Column: 3}, false},
		{Position{Line: 2, Column: 0}, true},
		{Position{Line: 3, Column: 2}, true},
		{Position{Line: 3, Column: 3}, false},
		{Position{Line: 0, Column: 100}, false},
	}
	for _, testCase := range testCases {
		if actual := testSpan.Contains(testCase.position); actual != testCase.expected {
			t.Fatalf("Contains(%+v) = %t, expected %t", testCase.position, actual, testCase.expected)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindConstructor.String() != "constructor" {
		t.Fatalf("unexpected label %q", KindConstructor.String())
	}
	if Kind(999).String() != "unknown" {
		t.Fatalf("unexpected label for unknown kind")
	}
}
