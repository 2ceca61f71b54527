// Package dom is a small retained element tree. Elements are created detached,
// become addressable by id once attached under the document root, and only
// ever have their text replaced or children appended.
package dom

import (
	"errors"
	"fmt"
	"html"
	"strings"
)

var (
	ErrDuplicateID     = errors.New("element id already attached")
	ErrAlreadyAttached = errors.New("element already attached")
)

type Element struct {
	id       string
	class    string
	text     string
	doc      *Document
	parent   *Element
	children []*Element
}

func (e *Element) ID() string    { return e.id }
func (e *Element) Class() string { return e.class }
func (e *Element) Text() string  { return e.text }

func (e *Element) Children() []*Element {
	return e.children
}

// Attached reports whether the element is reachable from the document root
func (e *Element) Attached() bool {
	for n := e; n != nil; n = n.parent {
		if n == e.doc.root {
			return true
		}
	}
	return false
}

// SetText replaces the element's text content
func (e *Element) SetText(text string) {
	e.text = text
	e.doc.writes++
}

// AppendChild attaches child as the last child of e. Ids in the child's
// subtree must not already be attached.
func (e *Element) AppendChild(child *Element) error {
	if child.parent != nil || child == e.doc.root {
		return ErrAlreadyAttached
	}
	if child.doc != e.doc {
		return fmt.Errorf("append %q: element belongs to another document", child.id)
	}
	if e.Attached() {
		var dup string
		child.walk(func(n *Element) {
			if dup == "" && n.id != "" && e.doc.byID[n.id] != nil {
				dup = n.id
			}
		})
		if dup != "" {
			return fmt.Errorf("%w: %q", ErrDuplicateID, dup)
		}
		child.walk(func(n *Element) {
			if n.id != "" {
				e.doc.byID[n.id] = n
			}
		})
	}
	child.parent = e
	e.children = append(e.children, child)
	e.doc.inserts++
	return nil
}

// Find returns the first descendant with the given class, depth first
func (e *Element) Find(class string) *Element {
	var found *Element
	e.walk(func(n *Element) {
		if found == nil && n != e && n.class == class {
			found = n
		}
	})
	return found
}

func (e *Element) walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.children {
		c.walk(fn)
	}
}

func (e *Element) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString("<div")
	if e.id != "" {
		fmt.Fprintf(b, " id=%q", e.id)
	}
	if e.class != "" {
		fmt.Fprintf(b, " class=%q", e.class)
	}
	b.WriteString(">")
	b.WriteString(html.EscapeString(e.text))
	if len(e.children) > 0 {
		b.WriteString("\n")
		for _, c := range e.children {
			c.write(b, depth+1)
		}
		b.WriteString(strings.Repeat("  ", depth))
	}
	b.WriteString("</div>\n")
}

// Document owns the element tree and the id index
type Document struct {
	root    *Element
	byID    map[string]*Element
	inserts int
	writes  int
}

// New creates a document whose root holds one empty container per id
func New(containerIDs ...string) *Document {
	d := &Document{byID: map[string]*Element{}}
	d.root = &Element{doc: d, class: "root"}
	for _, id := range containerIDs {
		c := d.CreateElement("container", id)
		if err := d.root.AppendChild(c); err != nil {
			panic(err)
		}
	}
	d.inserts = 0
	return d
}

// CreateElement returns a detached element owned by d
func (d *Document) CreateElement(class, id string) *Element {
	return &Element{doc: d, class: class, id: id}
}

func (d *Document) Root() *Element {
	return d.root
}

// GetElementByID returns the attached element with the given id, or nil
func (d *Document) GetElementByID(id string) *Element {
	return d.byID[id]
}

// Inserts counts AppendChild calls since the document was created
func (d *Document) Inserts() int {
	return d.inserts
}

// Writes counts SetText calls since the document was created
func (d *Document) Writes() int {
	return d.writes
}

func (d *Document) String() string {
	var b strings.Builder
	for _, c := range d.root.children {
		c.write(&b, 0)
	}
	return b.String()
}
