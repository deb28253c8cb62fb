package headless

import (
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/previewbridge/internal/bridge/dom"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/protocol"
)

// DefaultURL is the location of a page parsed without WithURL
const DefaultURL = "http://localhost/"

// Modifiers are the keys held during a pointer event
type Modifiers struct {
	Alt bool
}

// ScrollRecord is one scrollIntoView call
type ScrollRecord struct {
	ElementID string
	TagName   string
	Options   dom.ScrollOptions
}

// Option configures a page
type Option func(*options)

type options struct {
	url      string
	parent   dom.MessagePoster
	clock    Clock
	layout   Layout
	sanitize bool
}

// WithURL sets the page location (query parameters included)
func WithURL(u string) Option {
	return func(o *options) { o.url = u }
}

// WithParent sets the parent frame receiving postMessage calls
func WithParent(parent dom.MessagePoster) Option {
	return func(o *options) { o.parent = parent }
}

// WithClock replaces the real clock
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLayout supplies element geometry
func WithLayout(l Layout) Option {
	return func(o *options) { o.layout = l }
}

// WithSanitize runs the source through the HTML sanitizer before parsing
func WithSanitize(enabled bool) Option {
	return func(o *options) { o.sanitize = enabled }
}

// Page is an in-process browsing context. Every event dispatch and timer
// callback runs inside one turn of the page's event loop, so handlers never
// interleave.
type Page struct {
	turn sync.Mutex

	doc      *goquery.Document
	location *url.URL
	parent   dom.MessagePoster
	clock    Clock

	window   *dom.Listeners
	document *document

	elements    map[*html.Node]*element
	layout      Layout
	rects       map[*html.Node]protocol.Rect
	navigations []string
	scrolls     []ScrollRecord
}

type document struct {
	page      *Page
	listeners *dom.Listeners
}

// Parse builds a page from HTML source
func Parse(data []byte, opts ...Option) (*Page, error) {
	o := options{url: DefaultURL}
	for _, opt := range opts {
		opt(&o)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("html content required")
	}
	if len(data) > MaxHTMLSize {
		return nil, fmt.Errorf("html exceeds maximum size of %d bytes", MaxHTMLSize)
	}
	if err := checkMIME(data); err != nil {
		return nil, err
	}

	loc, err := url.Parse(o.url)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}

	reader := toUTF8(data)
	if o.sanitize {
		reader = sanitizer().SanitizeReader(reader)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	if o.clock == nil {
		o.clock = RealClock{}
	}
	if o.parent == nil {
		o.parent = NewFrame("null")
	}

	p := &Page{
		doc:      doc,
		location: loc,
		parent:   o.parent,
		clock:    o.clock,
		window:   dom.NewListeners(),
		elements: make(map[*html.Node]*element),
		layout:   o.layout,
		rects:    make(map[*html.Node]protocol.Rect),
	}
	p.document = &document{page: p, listeners: dom.NewListeners()}
	return p, nil
}

// ParseString is Parse for string sources
func ParseString(src string, opts ...Option) (*Page, error) {
	return Parse([]byte(src), opts...)
}

// Window interface

// Listen registers a window listener
func (p *Page) Listen(kind dom.EventKind, opts dom.ListenOptions, h dom.Handler) dom.Unsubscribe {
	return p.window.Add(kind, opts, h)
}

// Document returns the page document
func (p *Page) Document() dom.Document { return p.document }

// Location returns a copy of the page URL
func (p *Page) Location() *url.URL {
	u := *p.location
	return &u
}

// Parent returns the parent frame
func (p *Page) Parent() dom.MessagePoster { return p.parent }

// Now returns the page clock time
func (p *Page) Now() time.Time { return p.clock.Now() }

// SetTimeout runs fn after d inside a page turn
func (p *Page) SetTimeout(d time.Duration, fn func()) {
	p.clock.AfterFunc(d, func() {
		p.turn.Lock()
		defer p.turn.Unlock()
		fn()
	})
}

// Document interface

func (d *document) Listen(kind dom.EventKind, opts dom.ListenOptions, h dom.Handler) dom.Unsubscribe {
	return d.listeners.Add(kind, opts, h)
}

func (d *document) QuerySelector(selector string) dom.Element {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil
	}
	n := sel.MatchFirst(d.page.doc.Get(0))
	if n == nil {
		return nil
	}
	return d.page.wrap(n)
}

// Inspection helpers, each in its own turn

// Do runs fn inside a page turn
func (p *Page) Do(fn func()) {
	p.turn.Lock()
	defer p.turn.Unlock()
	fn()
}

// Find resolves a CSS selector, nil when nothing matches
func (p *Page) Find(selector string) dom.Element {
	p.turn.Lock()
	defer p.turn.Unlock()
	return p.document.QuerySelector(selector)
}

// ByID resolves an element by identity attribute value
func (p *Page) ByID(id string) dom.Element {
	p.turn.Lock()
	defer p.turn.Unlock()

	n := p.doc.Find("[" + dom.IdentityAttribute + "]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr(dom.IdentityAttribute)
		return v == id
	}).Get(0)
	if n == nil {
		return nil
	}
	return p.wrap(n)
}

// Body returns the body element
func (p *Page) Body() dom.Element {
	p.turn.Lock()
	defer p.turn.Unlock()
	return p.body()
}

func (p *Page) body() dom.Element {
	n := p.doc.Find("body").Get(0)
	if n == nil {
		return nil
	}
	return p.wrap(n)
}

// SetRect assigns geometry to an element, overriding the layout
func (p *Page) SetRect(el dom.Element, r protocol.Rect) {
	e, ok := el.(*element)
	if !ok || e.page != p {
		return
	}
	p.turn.Lock()
	defer p.turn.Unlock()
	p.rects[e.node] = r
}

// Navigations returns hrefs followed by un-prevented clicks
func (p *Page) Navigations() []string {
	p.turn.Lock()
	defer p.turn.Unlock()
	return append([]string(nil), p.navigations...)
}

// Scrolls returns every scrollIntoView request
func (p *Page) Scrolls() []ScrollRecord {
	p.turn.Lock()
	defer p.turn.Unlock()
	return append([]ScrollRecord(nil), p.scrolls...)
}

// ListenerCount returns window plus document listeners
func (p *Page) ListenerCount() int {
	return p.window.Count() + p.document.listeners.Count()
}

// HTML renders the current document
func (p *Page) HTML() (string, error) {
	p.turn.Lock()
	defer p.turn.Unlock()
	return p.doc.Html()
}

// Dispatch

// MouseMove delivers a pointer-move over target
func (p *Page) MouseMove(target dom.Element) *dom.Event {
	ev := &dom.Event{Kind: dom.KindMouseMove, Target: target}
	p.dispatchDocument(ev)
	return ev
}

// Click delivers a click on target and runs the default action when it was
// not prevented.
func (p *Page) Click(target dom.Element, mods Modifiers) *dom.Event {
	ev := &dom.Event{Kind: dom.KindClick, Target: target, AltKey: mods.Alt}

	p.turn.Lock()
	defer p.turn.Unlock()

	p.deliverDocument(ev)
	if !ev.DefaultPrevented() {
		p.followLink(target)
	}
	return ev
}

// KeyDown delivers a key press to the body
func (p *Page) KeyDown(key string) *dom.Event {
	p.turn.Lock()
	defer p.turn.Unlock()

	ev := &dom.Event{Kind: dom.KindKeyDown, Target: p.body(), Key: key}
	p.deliverDocument(ev)
	return ev
}

// ReceiveMessage delivers a cross-frame message from origin
func (p *Page) ReceiveMessage(origin string, data []byte) {
	ev := &dom.Event{Kind: dom.KindMessage, Origin: origin, Data: append([]byte(nil), data...)}

	p.turn.Lock()
	defer p.turn.Unlock()
	p.deliverWindow(ev)
}

// RaiseError reports an uncaught page error
func (p *Page) RaiseError(message, stack string) {
	ev := &dom.Event{Kind: dom.KindError, Message: message, Stack: stack}

	p.turn.Lock()
	defer p.turn.Unlock()
	p.deliverWindow(ev)
}

func (p *Page) dispatchDocument(ev *dom.Event) {
	p.turn.Lock()
	defer p.turn.Unlock()
	p.deliverDocument(ev)
}

// deliverDocument walks window capture, document capture, document bubble,
// window bubble. StopPropagation ends the walk after the current target group.
func (p *Page) deliverDocument(ev *dom.Event) {
	winCapture, winBubble := p.window.Snapshot(ev.Kind)
	docCapture, docBubble := p.document.listeners.Snapshot(ev.Kind)

	for _, group := range [][]dom.Handler{winCapture, docCapture, docBubble, winBubble} {
		if ev.PropagationStopped() {
			return
		}
		for _, h := range group {
			h(ev)
		}
	}
}

func (p *Page) deliverWindow(ev *dom.Event) {
	capture, bubble := p.window.Snapshot(ev.Kind)
	for _, group := range [][]dom.Handler{capture, bubble} {
		if ev.PropagationStopped() {
			return
		}
		for _, h := range group {
			h(ev)
		}
	}
}

func (p *Page) followLink(target dom.Element) {
	e, ok := target.(*element)
	if !ok || e == nil {
		return
	}
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := attr(n, "href"); ok {
				p.navigations = append(p.navigations, href)
			}
			return
		}
	}
}
