package meitree

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\t", "&#x9;",
		"\n", "&#xA;",
		"\r", "&#xD;",
	)
)

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) str(s string) {
	if c.err != nil {
		return
	}
	n, err := c.w.WriteString(s)
	c.n += int64(n)
	c.err = err
}

// WriteTo serializes the document as UTF-8 XML. The original prolog is
// written after a fresh XML declaration.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	cw.str(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	for _, p := range d.Prolog {
		cw.str(p)
		cw.str("\n")
	}
	if d.Root != nil {
		writeNode(cw, d.Root)
		cw.str("\n")
	}
	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

// Bytes serializes the document into memory.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNode(cw *countingWriter, n *Node) {
	cw.str("<")
	cw.str(n.Name())
	for _, a := range n.Attrs {
		cw.str(" ")
		cw.str(a.Name())
		cw.str(`="`)
		cw.str(attrEscaper.Replace(a.Value))
		cw.str(`"`)
	}
	if len(n.children) == 0 && n.Text == "" {
		cw.str("/>")
		return
	}
	cw.str(">")
	cw.str(textEscaper.Replace(n.Text))
	for _, c := range n.children {
		writeNode(cw, c)
		cw.str(textEscaper.Replace(c.Tail))
	}
	cw.str("</")
	cw.str(n.Name())
	cw.str(">")
}
