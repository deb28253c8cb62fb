package headless

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"

	"github.com/GriffinCanCode/previewbridge/internal/bridge/dom"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/protocol"
)

// maxMapText bounds the text excerpt of a map entry
const maxMapText = 120

// MapEntry describes one pickable element
type MapEntry struct {
	ElementID string        `json:"elementId"`
	TagName   string        `json:"tagName"`
	ClassName string        `json:"className,omitempty"`
	Text      string        `json:"text,omitempty"`
	Rect      protocol.Rect `json:"rect"`
}

// ElementMap lists every element carrying the identity attribute, in
// document order. Hosts rebuild their map from this after map-changed.
func (p *Page) ElementMap() ([]MapEntry, error) {
	p.turn.Lock()
	defer p.turn.Unlock()

	expr := fmt.Sprintf("//*[@%s]", dom.IdentityAttribute)
	nodes, err := htmlquery.QueryAll(p.doc.Get(0), expr)
	if err != nil {
		return nil, fmt.Errorf("query element map: %w", err)
	}

	entries := make([]MapEntry, 0, len(nodes))
	for _, n := range nodes {
		e := p.wrap(n)
		id, _ := e.Attribute(dom.IdentityAttribute)
		entries = append(entries, MapEntry{
			ElementID: id,
			TagName:   strings.ToLower(n.Data),
			ClassName: e.ClassName(),
			Text:      excerpt(htmlquery.InnerText(n)),
			Rect:      e.BoundingRect(),
		})
	}
	return entries, nil
}

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= maxMapText {
		return s
	}
	return string(r[:maxMapText-3]) + "..."
}
