package meitree

import "testing"

func el(local string, children ...*Node) *Node {
	n := NewElement("", MEINamespace, local)
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func TestInsertBefore_KeepsOrder(t *testing.T) {
	a, b := el("a"), el("b")
	parent := el("layer", a, b)
	c := el("c")
	if !parent.InsertBefore(c, b) {
		t.Fatal("expected insert to succeed")
	}
	got := names(parent.Children())
	want := []string{"a", "c", "b"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("child[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}
	if c.Parent() != parent {
		t.Error("expected parent pointer to be set")
	}
}

func TestInsertBefore_MovesExistingSibling(t *testing.T) {
	a, b, c := el("a"), el("b"), el("c")
	parent := el("layer", a, b, c)
	parent.InsertBefore(a, c)
	got := names(parent.Children())
	if got[0] != "b" || got[1] != "a" || got[2] != "c" {
		t.Errorf("expected [b a c], got %v", got)
	}
}

func TestDetach_IsIdempotent(t *testing.T) {
	a := el("a")
	parent := el("layer", a)
	if !a.Detach() {
		t.Fatal("expected first detach to succeed")
	}
	if a.Detach() {
		t.Error("expected second detach to be a no-op")
	}
	if len(parent.Children()) != 0 {
		t.Errorf("expected no children, got %d", len(parent.Children()))
	}
}

func TestDetach_KeepsTailText(t *testing.T) {
	lb := el("lb")
	lb.Tail = "Violino"
	label := el("label")
	label.Text = "Primo "
	label.AppendChild(lb)
	lb.Detach()
	if label.TextContent() != "Primo Violino" {
		t.Errorf("expected tail text to survive, got %q", label.TextContent())
	}
}

func TestClosestAndContains(t *testing.T) {
	note := el("note")
	tuplet := el("tuplet", el("beam", note))
	el("layer", tuplet)
	if note.Closest(MEINamespace, "tuplet") != tuplet {
		t.Error("expected closest tuplet")
	}
	if note.Closest(MEINamespace, "staff") != nil {
		t.Error("expected no staff ancestor")
	}
	if !tuplet.Contains(note) || note.Contains(tuplet) {
		t.Error("unexpected containment result")
	}
}

func TestDescendants_IsSnapshot(t *testing.T) {
	a, b := el("a"), el("b")
	parent := el("layer", a, b)
	snap := parent.Descendants()
	a.Detach()
	if len(snap) != 2 {
		t.Errorf("expected snapshot of 2, got %d", len(snap))
	}
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Local
	}
	return out
}
