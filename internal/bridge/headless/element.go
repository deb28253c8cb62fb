package headless

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/previewbridge/internal/bridge/dom"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/protocol"
)

// element wraps an html.Node. Wrappers are cached per node so identity
// comparisons hold across lookups.
type element struct {
	page *Page
	node *html.Node
}

func (p *Page) wrap(n *html.Node) *element {
	if e, ok := p.elements[n]; ok {
		return e
	}
	e := &element{page: p, node: n}
	p.elements[n] = e
	return e
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}

func (e *element) Closest(name string) dom.Element {
	for n := e.node; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if _, ok := attr(n, name); ok {
			return e.page.wrap(n)
		}
	}
	return nil
}

func (e *element) Attribute(name string) (string, bool) {
	return attr(e.node, name)
}

func (e *element) ClassName() string {
	v, _ := attr(e.node, "class")
	return v
}

func (e *element) TextContent() string {
	return goquery.NewDocumentFromNode(e.node).Text()
}

// TagName is upper-case, as the DOM reports it for HTML elements
func (e *element) TagName() string {
	return strings.ToUpper(e.node.Data)
}

func (e *element) BoundingRect() protocol.Rect {
	if r, ok := e.page.rects[e.node]; ok {
		return r
	}
	if id, ok := attr(e.node, dom.IdentityAttribute); ok {
		if box, ok := e.page.layout[id]; ok {
			return box.Rect()
		}
	}
	return protocol.Rect{}
}

func (e *element) Outline() string {
	style, _ := attr(e.node, "style")
	for _, decl := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(prop), "outline") {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// SetOutline rewrites the outline declaration of the inline style, leaving
// other declarations alone. An empty value removes it.
func (e *element) SetOutline(value string) {
	style, _ := attr(e.node, "style")

	var decls []string
	replaced := false
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		prop, _, _ := strings.Cut(decl, ":")
		if strings.EqualFold(strings.TrimSpace(prop), "outline") {
			if value != "" && !replaced {
				decls = append(decls, "outline: "+value)
				replaced = true
			}
			continue
		}
		decls = append(decls, decl)
	}
	if value != "" && !replaced {
		decls = append(decls, "outline: "+value)
	}

	if len(decls) == 0 {
		removeAttr(e.node, "style")
		return
	}
	setAttr(e.node, "style", strings.Join(decls, "; "))
}

func (e *element) ScrollIntoView(opts dom.ScrollOptions) {
	id, _ := attr(e.node, dom.IdentityAttribute)
	e.page.scrolls = append(e.page.scrolls, ScrollRecord{
		ElementID: id,
		TagName:   strings.ToLower(e.node.Data),
		Options:   opts,
	})
}
