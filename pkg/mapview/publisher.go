package mapview

import (
	"context"
	"sync"

	"github.com/dynamits/go-delivery-order/pkg/geo"
)

// MarkerSource supplies the current marker position of each side.
type MarkerSource interface {
	Point(side geo.Side) geo.GeoPoint
}

const defaultBuffer = 4

// Publisher owns the map center and fans views out to subscribers. A
// subscriber that falls behind misses frames; publishing never blocks.
type Publisher struct {
	markers MarkerSource
	mapID   string
	buffer  int

	mu     sync.RWMutex
	center geo.GeoPoint
	nextID int
	subs   map[int]chan View
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithMapID overrides DefaultMapID.
func WithMapID(id string) PublisherOption {
	return func(p *Publisher) {
		if id != "" {
			p.mapID = id
		}
	}
}

// WithCenter sets the initial center.
func WithCenter(center geo.GeoPoint) PublisherOption {
	return func(p *Publisher) {
		p.center = center
	}
}

// WithBuffer sets the per-subscriber frame buffer.
func WithBuffer(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.buffer = n
		}
	}
}

// NewPublisher centers on the default point unless WithCenter says otherwise.
func NewPublisher(markers MarkerSource, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		markers: markers,
		mapID:   DefaultMapID,
		buffer:  defaultBuffer,
		center:  geo.DefaultPoint,
		subs:    make(map[int]chan View),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Center returns the current center.
func (p *Publisher) Center() geo.GeoPoint {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.center
}

// Current builds the view for the current center and markers.
func (p *Publisher) Current() View {
	return Build(p.Center(), p.markers.Point(geo.Pickup), p.markers.Point(geo.Destination), p.mapID)
}

// Recenter moves the map to point and publishes the new view.
func (p *Publisher) Recenter(_ context.Context, point geo.GeoPoint) {
	p.mu.Lock()
	p.center = point
	p.mu.Unlock()
	p.Publish()
}

// Publish sends the current view to every subscriber.
func (p *Publisher) Publish() {
	view := p.Current()

	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, ch := range p.subs {
		select {
		case ch <- view:
		default:
		}
	}
}

// Subscribe registers a subscriber. The channel is closed by cancel.
func (p *Publisher) Subscribe() (<-chan View, func()) {
	ch := make(chan View, p.buffer)

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	p.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers reports how many subscribers are registered.
func (p *Publisher) Subscribers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}
