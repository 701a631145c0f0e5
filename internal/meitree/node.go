// Package meitree is the namespaced element tree the selection engine works on.
//
// Children are owned by their parent. The parent pointer on each node is a
// back reference kept in sync by AppendChild, InsertBefore and Detach; nothing
// in the tree relies on it for ownership.
package meitree

import "strings"

// Common namespaces.
const (
	MEINamespace   = "http://www.music-encoding.org/ns/mei"
	XMLNamespace   = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
)

// Attr is a single attribute. Prefix is kept as written so documents round trip.
type Attr struct {
	Prefix string
	Space  string
	Local  string
	Value  string
}

// Name returns the qualified attribute name as written in the source.
func (a Attr) Name() string {
	if a.Prefix == "" {
		return a.Local
	}
	return a.Prefix + ":" + a.Local
}

// Node is an element. Text holds character data before the first child,
// Tail the character data between this node's end tag and the next sibling.
type Node struct {
	Prefix string
	Space  string
	Local  string
	Attrs  []Attr
	Text   string
	Tail   string

	children []*Node
	parent   *Node
}

// NewElement creates a detached element in the given namespace.
func NewElement(prefix, space, local string) *Node {
	return &Node{Prefix: prefix, Space: space, Local: local}
}

// Name returns the qualified element name as written in the source.
func (n *Node) Name() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// Is reports whether the node has the given namespace and local name.
func (n *Node) Is(space, local string) bool {
	return n != nil && n.Space == space && n.Local == local
}

// Parent returns the parent element; nil for the root and for detached nodes.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child elements. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Attr returns the value of the un-namespaced attribute local, or "".
func (n *Node) Attr(local string) string {
	v, _ := n.LookupAttr(local)
	return v
}

// LookupAttr returns the value of an un-namespaced attribute and whether it exists.
func (n *Node) LookupAttr(local string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Space == "" && a.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether the un-namespaced attribute is present.
func (n *Node) HasAttr(local string) bool {
	_, ok := n.LookupAttr(local)
	return ok
}

// AttrNS returns the value of a namespaced attribute, or "".
func (n *Node) AttrNS(space, local string) string {
	for _, a := range n.Attrs {
		if a.Space == space && a.Local == local {
			return a.Value
		}
	}
	return ""
}

// SetAttr sets an un-namespaced attribute, appending it when absent.
func (n *Node) SetAttr(local, value string) {
	n.SetAttrNS("", "", local, value)
}

// SetAttrNS sets a namespaced attribute, appending it when absent.
func (n *Node) SetAttrNS(prefix, space, local, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Space == space && n.Attrs[i].Local == local {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Prefix: prefix, Space: space, Local: local, Value: value})
}

// ID returns the xml:id of the node.
func (n *Node) ID() string {
	return n.AttrNS(XMLNamespace, "id")
}

// SetID sets xml:id.
func (n *Node) SetID(id string) {
	n.SetAttrNS("xml", XMLNamespace, "id", id)
}

// AppendChild adds c as the last child of n, detaching it from any previous parent.
func (n *Node) AppendChild(c *Node) {
	c.Detach()
	c.parent = n
	n.children = append(n.children, c)
}

// InsertBefore inserts c immediately before ref, which must be a child of n.
// It reports false when ref is not a child.
func (n *Node) InsertBefore(c, ref *Node) bool {
	idx := n.indexOf(ref)
	if idx < 0 {
		return false
	}
	c.Detach()
	// c may have been an earlier sibling of ref.
	idx = n.indexOf(ref)
	n.children = append(n.children, nil)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = c
	c.parent = n
	return true
}

// Detach removes n from its parent. It reports false when n had no parent.
// Non-whitespace tail text is moved to the preceding sibling (or the parent's
// text) so mixed content is not lost.
func (n *Node) Detach() bool {
	p := n.parent
	if p == nil {
		return false
	}
	idx := p.indexOf(n)
	if idx < 0 {
		n.parent = nil
		return false
	}
	if strings.TrimSpace(n.Tail) != "" {
		if idx > 0 {
			p.children[idx-1].Tail += n.Tail
		} else {
			p.Text += n.Tail
		}
	}
	n.Tail = ""
	copy(p.children[idx:], p.children[idx+1:])
	p.children[len(p.children)-1] = nil
	p.children = p.children[:len(p.children)-1]
	n.parent = nil
	return true
}

func (n *Node) indexOf(c *Node) int {
	for i, child := range n.children {
		if child == c {
			return i
		}
	}
	return -1
}

// NextElementSibling returns the element following n under the same parent.
func (n *Node) NextElementSibling() *Node {
	if n.parent == nil {
		return nil
	}
	idx := n.parent.indexOf(n)
	if idx < 0 || idx+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[idx+1]
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the node just visited.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Descendants returns a snapshot of every descendant of n in document order,
// excluding n. Later mutations of the tree do not affect the returned slice.
func (n *Node) Descendants() []*Node {
	var out []*Node
	for _, c := range n.children {
		c.Walk(func(d *Node) bool {
			out = append(out, d)
			return true
		})
	}
	return out
}

// DescendantsNamed returns descendants matching space and local, in document order.
func (n *Node) DescendantsNamed(space, local string) []*Node {
	var out []*Node
	for _, c := range n.children {
		c.Walk(func(d *Node) bool {
			if d.Is(space, local) {
				out = append(out, d)
			}
			return true
		})
	}
	return out
}

// FirstDescendant returns the first descendant matching space and local.
func (n *Node) FirstDescendant(space, local string) *Node {
	var found *Node
	for _, c := range n.children {
		c.Walk(func(d *Node) bool {
			if found != nil {
				return false
			}
			if d.Is(space, local) {
				found = d
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// Closest returns the nearest ancestor-or-self matching space and local.
func (n *Node) Closest(space, local string) *Node {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.Is(space, local) {
			return cur
		}
	}
	return nil
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// TextContent returns the concatenated character data of the subtree.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.collectText(&sb, true)
	return sb.String()
}

func (n *Node) collectText(sb *strings.Builder, root bool) {
	sb.WriteString(n.Text)
	for _, c := range n.children {
		c.collectText(sb, false)
	}
	if !root {
		sb.WriteString(n.Tail)
	}
}

// Document is a parsed document: the root element plus the markup that
// preceded it (processing instructions, comments, doctype).
type Document struct {
	Root   *Node
	Prolog []string
}

// FindFirst returns the first element in document order with the given local
// name in any namespace. Callers check the namespace themselves.
func (d *Document) FindFirst(local string) *Node {
	if d == nil || d.Root == nil {
		return nil
	}
	var found *Node
	d.Root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Local == local {
			found = n
			return false
		}
		return true
	})
	return found
}
