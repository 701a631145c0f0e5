package meitree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"unicode"

	"golang.org/x/net/html/charset"
)

// ErrMalformed reports markup that cannot be turned into a tree.
var ErrMalformed = errors.New("malformed markup")

// Parse reads an XML document into a tree. Namespace prefixes are resolved
// but kept as written. Declared encodings other than UTF-8 are decoded via
// x/net's charset tables. Comments inside the root element are not retained.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	doc := &Document{}
	var stack []*Node
	var scopes nsStack
	rootClosed := false

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return nil, fmt.Errorf("%w: element %s after document end", ErrMalformed, t.Name.Local)
			}
			scopes.push(collectNamespaceScope(t.Attr))
			space, ok := scopes.lookup(t.Name.Space)
			if !ok {
				return nil, fmt.Errorf("%w: unbound prefix %q on <%s>", ErrMalformed, t.Name.Space, t.Name.Local)
			}
			node := &Node{Prefix: t.Name.Space, Space: space, Local: t.Name.Local}
			node.Attrs = make([]Attr, 0, len(t.Attr))
			for _, a := range t.Attr {
				attrSpace, ok := scopes.resolveAttr(a.Name)
				if !ok {
					return nil, fmt.Errorf("%w: unbound prefix %q on @%s", ErrMalformed, a.Name.Space, a.Name.Local)
				}
				node.Attrs = append(node.Attrs, Attr{
					Prefix: a.Name.Space,
					Space:  attrSpace,
					Local:  a.Name.Local,
					Value:  a.Value,
				})
			}
			if len(stack) > 0 {
				stack[len(stack)-1].AppendChild(node)
			} else {
				doc.Root = node
			}
			stack = append(stack, node)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: unexpected end tag </%s>", ErrMalformed, t.Name.Local)
			}
			top := stack[len(stack)-1]
			if top.Prefix != t.Name.Space || top.Local != t.Name.Local {
				return nil, fmt.Errorf("%w: end tag </%s> does not match <%s>", ErrMalformed, qualified(t.Name), top.Name())
			}
			stack = stack[:len(stack)-1]
			scopes.pop()
			if len(stack) == 0 {
				rootClosed = true
			}

		case xml.CharData:
			if len(stack) == 0 {
				if !isIgnorableOutsideRoot(string(t)) {
					return nil, fmt.Errorf("%w: character data outside root element", ErrMalformed)
				}
				continue
			}
			cur := stack[len(stack)-1]
			if n := len(cur.children); n > 0 {
				cur.children[n-1].Tail += string(t)
			} else {
				cur.Text += string(t)
			}

		case xml.ProcInst:
			if doc.Root != nil || t.Target == "xml" {
				continue
			}
			doc.Prolog = append(doc.Prolog, fmt.Sprintf("<?%s %s?>", t.Target, t.Inst))

		case xml.Comment:
			if doc.Root == nil {
				doc.Prolog = append(doc.Prolog, "<!--"+string(t)+"-->")
			}

		case xml.Directive:
			if doc.Root == nil {
				doc.Prolog = append(doc.Prolog, "<!"+string(t)+">")
			}
		}
	}

	if doc.Root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: unclosed element <%s>", ErrMalformed, stack[len(stack)-1].Name())
	}
	return doc, nil
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func isIgnorableOutsideRoot(data string) bool {
	for _, r := range data {
		if r == '\uFEFF' {
			continue
		}
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
