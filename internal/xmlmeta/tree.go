// Package xmlmeta reads the small XML documents embedded in XDF header and
// footer chunks.
//
// Only element structure and character data are kept. Lookups are nil-safe:
// a missing element yields a nil *Node whose accessors return zero values,
// so a chain such as
//
//	root.Child("info").Child("desc").Child("channels").Children("channel")
//
// never panics on a sparse header.
package xmlmeta

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Node is one XML element.
type Node struct {
	Name     string
	Children []*Node

	text  strings.Builder
	inner string
}

// Parse builds a tree from data and returns a synthetic document node whose
// children are the top-level elements.
//
// On malformed input Parse returns the tree built so far together with the
// error, so callers may still read the fields that were complete.
func Parse(data []byte) (*Node, error) {
	doc := &Node{Name: ""}
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false

	stack := []*Node{doc}
	starts := []int64{0}

	for {
		before := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return doc, fmt.Errorf("xml metadata: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, n)
			stack = append(stack, n)
			starts = append(starts, dec.InputOffset())
		case xml.EndElement:
			if len(stack) == 1 {
				return doc, fmt.Errorf("xml metadata: unexpected </%s>", t.Name.Local)
			}
			n := stack[len(stack)-1]
			start := starts[len(starts)-1]
			if before >= start && before <= int64(len(data)) {
				n.inner = string(data[start:before])
			}
			stack = stack[:len(stack)-1]
			starts = starts[:len(starts)-1]
		case xml.CharData:
			stack[len(stack)-1].text.Write(t)
		}
	}

	if len(stack) > 1 {
		return doc, fmt.Errorf("xml metadata: unclosed <%s>", stack[len(stack)-1].Name)
	}

	return doc, nil
}

// Child returns the first child element with the given name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// Path follows Child for each name in turn.
func (n *Node) Path(names ...string) *Node {
	for _, name := range names {
		n = n.Child(name)
	}

	return n
}

// ChildrenNamed returns every child element with the given name.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}

	return out
}

// Text returns the element's own character data with surrounding
// whitespace removed.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}

	return strings.TrimSpace(n.text.String())
}

// Float parses Text as a float64, returning 0 when absent or malformed.
func (n *Node) Float() float64 {
	v, err := strconv.ParseFloat(n.Text(), 64)
	if err != nil {
		return 0
	}

	return v
}

// Int parses Text as an integer, returning 0 when absent or malformed.
// Values written as decimals ("32.0") are truncated.
func (n *Node) Int() int {
	s := n.Text()
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}

	return 0
}

// InnerXML returns the raw bytes between the element's start and end tags.
func (n *Node) InnerXML() string {
	if n == nil {
		return ""
	}

	return n.inner
}
