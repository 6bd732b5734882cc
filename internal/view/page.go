// Package view holds the page model the handlers write into and the
// renderers that present it.
package view

import "sync"

// Element ids of the depot pages.
const (
	IDStockRations       = "stock_rations"
	IDStockLaserCrystals = "stock_laser_crystals"
	IDStockDroidSilicon  = "stock_droid_silicon"
	IDStockCapacitors    = "stock_capacitors"
	IDStockFuel          = "stock_fuel"

	IDSignupForm      = "signup-form"
	IDUsername        = "username"
	IDPassword        = "password"
	IDPasswordConfirm = "passwordConfirm"

	IDUploadForm     = "upload-form"
	IDStarshipReport = "starshipReport"
	IDUploadInstruct = "upload-instruct"
)

// Link is a clickable download link.
type Link struct {
	Href string
	Text string
}

// Element is the rendered state of one display target. Text is the whole
// content when Link is nil, otherwise the text in front of the link.
type Element struct {
	ID     string
	Text   string
	Link   *Link
	Hidden bool
}

type UpdateKind int

const (
	UpdateElement UpdateKind = iota + 1
	UpdateAlert
)

// Update describes one change to a Page.
type Update struct {
	Kind    UpdateKind
	Element Element
	Alert   string
}

// Display is the surface handlers render into.
type Display interface {
	SetText(target, text string)
	SetLink(target, prefix string, link Link)
	SetVisible(target string, visible bool)
	Alert(message string)
}

// Page is an in-memory Display. Concurrent writers are serialized; the
// listener is called outside the lock in the writer's goroutine.
type Page struct {
	mu       sync.Mutex
	elements map[string]Element
	order    []string
	alerts   []string
	listener func(Update)
}

func NewPage() *Page {
	return &Page{elements: make(map[string]Element)}
}

// OnUpdate registers fn to observe every subsequent change.
func (p *Page) OnUpdate(fn func(Update)) {
	p.mu.Lock()
	p.listener = fn
	p.mu.Unlock()
}

func (p *Page) SetText(target, text string) {
	p.change(target, func(e *Element) {
		e.Text = text
		e.Link = nil
	})
}

func (p *Page) SetLink(target, prefix string, link Link) {
	p.change(target, func(e *Element) {
		e.Text = prefix
		e.Link = &link
	})
}

func (p *Page) SetVisible(target string, visible bool) {
	p.change(target, func(e *Element) {
		e.Hidden = !visible
	})
}

func (p *Page) Alert(message string) {
	p.mu.Lock()
	p.alerts = append(p.alerts, message)
	fn := p.listener
	p.mu.Unlock()

	if fn != nil {
		fn(Update{Kind: UpdateAlert, Alert: message})
	}
}

func (p *Page) change(target string, mutate func(*Element)) {
	p.mu.Lock()
	e, ok := p.elements[target]
	if !ok {
		e = Element{ID: target}
		p.order = append(p.order, target)
	}
	mutate(&e)
	p.elements[target] = e
	fn := p.listener
	p.mu.Unlock()

	if fn != nil {
		fn(Update{Kind: UpdateElement, Element: e})
	}
}

// Element returns the current state of target.
func (p *Page) Element(target string) (Element, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.elements[target]
	return e, ok
}

// Text returns the visible text of target, link text included.
func (p *Page) Text(target string) string {
	e, _ := p.Element(target)
	if e.Link != nil {
		return e.Text + e.Link.Text
	}
	return e.Text
}

// Elements returns every written element in first-write order.
func (p *Page) Elements() []Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Element, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.elements[id])
	}
	return out
}

func (p *Page) Alerts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.alerts))
	copy(out, p.alerts)
	return out
}
