package parser

import (
	"encoding/json"
	"testing"
)

func TestNodeKindString(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want string
	}{
		{KindError, "Error"},
		{KindLiteral, "Literal"},
		{KindCurrent, "Current"},
		{KindProperty, "Property"},
		{KindRecursive, "Recursive"},
		{KindMethodCall, "MethodCall"},
		{KindObjectEntry, "ObjectEntry"},
		{KindIn, "In"},
		{NodeKind(9999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("NodeKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestNodeAddChild(t *testing.T) {
	parent := &Node{Kind: KindArray}
	child1 := &Node{Kind: KindLiteral}
	child2 := &Node{Kind: KindCurrent}

	parent.AddChild(child1)
	parent.AddChild(child2)
	parent.AddChild(nil)

	if len(parent.Children) != 2 {
		t.Errorf("Expected 2 children, got %d", len(parent.Children))
	}
	if parent.Child(0) != child1 || parent.Child(1) != child2 {
		t.Error("Child order mismatch")
	}
	if parent.Child(2) != nil || parent.Child(-1) != nil {
		t.Error("Expected nil for out of range child")
	}
}

func TestNodeWalk(t *testing.T) {
	node, err := Parse("a.b + 1")
	if err != nil {
		t.Fatal(err)
	}

	var kinds []NodeKind
	node.Walk(func(n *Node) bool {
		kinds = append(kinds, n.Kind)
		return true
	})
	want := []NodeKind{KindBinary, KindProperty, KindProperty, KindCurrent, KindLiteral}
	if len(kinds) != len(want) {
		t.Fatalf("visited %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("node %d: got %v, want %v", i, kinds[i], want[i])
		}
	}

	visited := 0
	node.Walk(func(n *Node) bool {
		visited++
		return n.Kind != KindProperty
	})
	if visited != 2 {
		t.Errorf("Walk continued after stop: visited %d nodes", visited)
	}
}

func TestNodeSpans(t *testing.T) {
	node, err := Parse("foo.bar[x]")
	if err != nil {
		t.Fatal(err)
	}

	want := "Filter [0-10]\n" +
		"  Property [0-7] bar\n" +
		"    Property [0-3] foo\n" +
		"      Current [0-0] (implicit)\n" +
		"  Property [8-9] x\n" +
		"    Current [8-8] (implicit)\n"
	if got := node.StringWithPositions(); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestNodeJSON(t *testing.T) {
	node, err := Parse("-foo")
	if err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(node)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"kind":"Unary","span":{"start":0,"end":4},"token":"-","op":"-","children":[` +
		`{"kind":"Property","span":{"start":1,"end":4},"token":"foo","name":"foo","children":[` +
		`{"kind":"Current","span":{"start":1,"end":1},"implicit":true}]}]}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}
}

func TestSlotJSON(t *testing.T) {
	p := NewParser(Tokenize("foo."), WithRecovery())
	if _, err := p.Parse(); err != nil {
		t.Fatal(err)
	}

	data, err := json.Marshal(p.Slots())
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"kind":"path","current":"foo","from":0,"to":3,"node":"Property"},` +
		`{"kind":"path","current":"","from":4,"to":4,"node":"Property"}]`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}
}
