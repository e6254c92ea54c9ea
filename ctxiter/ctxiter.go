// Package ctxiter implements the generic context-window iterator of §4.G:
// given a stream of items sorted by (reference, location), it yields each
// item paired with every other item on the same reference within w/2 of its
// location, for a window width w. It is a bounded-deque pull iterator, not a literal
// translation of a buffer-everything generator: items fall out of the
// window as soon as they can no longer be any later item's neighbour.
package ctxiter

import (
	"io"

	"github.com/pkg/errors"
)

// Item is anything the iterator can window over.
type Item interface {
	Reference() string
	Location() int
}

// Source is a pull-driven stream of Items, sorted by Reference then
// Location. Next returns io.EOF when exhausted.
type Source interface {
	Next() (Item, error)
}

// Pair is one iterator step: Current plus every buffered item on the same
// reference within the configured window (current itself included), in
// stream order.
type Pair struct {
	Current Item
	Context []Item
}

// Iterator yields (current, context) pairs per §4.G. A nil Width means the
// context spans the whole reference; otherwise Context holds items whose
// |location-current.location| <= width/2.
type Iterator struct {
	src     Source
	width   *int
	buf     []Item // window-resident items, oldest first, possibly spanning a reference boundary only at the tail
	pos     int    // index into buf of the next item to emit as Current
	srcDone bool
}

// New constructs an Iterator over src with the given window width, whose
// half (width/2) bounds the context on each side (nil for whole-reference
// context).
func New(src Source, width *int) *Iterator {
	return &Iterator{src: src, width: width}
}

func (it *Iterator) pull() (Item, error) {
	item, err := it.src.Next()
	if err == io.EOF {
		it.srcDone = true
		return nil, io.EOF
	}
	return item, err
}

// inWindow reports whether b lies within half-width w/2 of a, on the same
// reference as a. A nil width means the whole reference is in window.
func (it *Iterator) inWindow(a, b Item) bool {
	if a.Reference() != b.Reference() {
		return false
	}
	if it.width == nil {
		return true
	}
	d := b.Location() - a.Location()
	if d < 0 {
		d = -d
	}
	return d <= *it.width/2
}

// Next returns the next (current, context) pair, or io.EOF when the
// underlying source is exhausted.
func (it *Iterator) Next() (*Pair, error) {
	if it.pos >= len(it.buf) {
		if it.srcDone {
			return nil, io.EOF
		}
		item, err := it.pull()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, err
		}
		it.buf = append(it.buf, item)
	}

	current := it.buf[it.pos]
	if prev := it.pos - 1; prev >= 0 {
		if it.buf[prev].Reference() == current.Reference() && it.buf[prev].Location() > current.Location() {
			return nil, errors.Errorf("ctxiter: item stream not sorted by location on reference %q", current.Reference())
		}
	}
	it.pos++

	// Pull ahead until the tail of buf is out of window, or a new
	// reference starts, or the source is exhausted.
	for !it.srcDone {
		if len(it.buf) > 0 {
			tail := it.buf[len(it.buf)-1]
			if tail.Reference() != current.Reference() {
				break
			}
			if !it.inWindow(current, tail) {
				break
			}
		}
		item, err := it.pull()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		it.buf = append(it.buf, item)
	}

	var ctx []Item
	for _, cand := range it.buf {
		if it.inWindow(current, cand) {
			ctx = append(ctx, cand)
		}
	}

	// Evict window-resident items that are now too far behind current to
	// ever be in a future pair's window (location only increases).
	evict := 0
	for evict < it.pos && evict < len(it.buf) {
		if it.buf[evict].Reference() == current.Reference() && it.inWindow(current, it.buf[evict]) {
			break
		}
		evict++
	}
	if evict > 0 {
		it.buf = append(it.buf[:0:0], it.buf[evict:]...)
		it.pos -= evict
	}

	return &Pair{Current: current, Context: ctx}, nil
}
