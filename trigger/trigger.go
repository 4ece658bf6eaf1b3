// Package trigger defines the listeners notified around the statements a
// session issues for an entity, and the dispatcher that holds them.
//
// Listeners run synchronously on the caller's goroutine, immediately before
// and after the INSERT, UPDATE or DELETE statement:
//
//	type audit struct{ trigger.Adapter }
//
//	func (audit) AfterInsert(ctx context.Context, ev trigger.Event) {
//		slog.InfoContext(ctx, "inserted", "entity", ev.Entity)
//	}
//
//	sess.AddTrigger(&audit{})
package trigger

import (
	"context"
	"reflect"
	"slices"
	"sync"
)

// Type identifies the moment a listener is notified.
type Type uint8

// Trigger types.
const (
	BeforeInsert Type = iota + 1
	AfterInsert
	BeforeUpdate
	AfterUpdate
	BeforeDelete
	AfterDelete
)

var typeNames = [...]string{
	BeforeInsert: "BeforeInsert",
	AfterInsert:  "AfterInsert",
	BeforeUpdate: "BeforeUpdate",
	AfterUpdate:  "AfterUpdate",
	BeforeDelete: "BeforeDelete",
	AfterDelete:  "AfterDelete",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event is passed to listeners.
type Event struct {
	Type Type
	// Entity is the pointer the operation was called with.
	Entity any
	// Session is the *session.Session issuing the statement.
	Session any
}

// Listener is notified around insert, update and delete statements.
type Listener interface {
	BeforeInsert(context.Context, Event)
	AfterInsert(context.Context, Event)
	BeforeUpdate(context.Context, Event)
	AfterUpdate(context.Context, Event)
	BeforeDelete(context.Context, Event)
	AfterDelete(context.Context, Event)
}

// Adapter implements Listener with no-op methods. Embed it to implement
// only the methods of interest.
type Adapter struct{}

func (Adapter) BeforeInsert(context.Context, Event) {}
func (Adapter) AfterInsert(context.Context, Event)  {}
func (Adapter) BeforeUpdate(context.Context, Event) {}
func (Adapter) AfterUpdate(context.Context, Event)  {}
func (Adapter) BeforeDelete(context.Context, Event) {}
func (Adapter) AfterDelete(context.Context, Event)  {}

var _ Listener = Adapter{}

// Dispatcher holds an ordered set of listeners. It is safe for concurrent
// registration; a dispatch sees the listeners registered when it started.
type Dispatcher struct {
	mu        sync.Mutex
	listeners []Listener
}

// Add registers l. Adding a listener that is already registered is a no-op.
func (d *Dispatcher) Add(l Listener) {
	if l == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.indexOf(l) < 0 {
		d.listeners = append(d.listeners, l)
	}
}

// Remove unregisters l and reports whether it was registered.
func (d *Dispatcher) Remove(l Listener) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.indexOf(l)
	if i < 0 {
		return false
	}
	d.listeners = slices.Delete(d.listeners, i, i+1)
	return true
}

// Len returns the number of registered listeners.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

// Dispatch notifies every listener of ev, in registration order.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) {
	d.mu.Lock()
	ls := slices.Clone(d.listeners)
	d.mu.Unlock()
	for _, l := range ls {
		fire(ctx, l, ev)
	}
}

// indexOf compares by identity. Listeners of non-comparable types never
// match, so they can be added more than once and not removed.
func (d *Dispatcher) indexOf(l Listener) int {
	if l == nil || !reflect.TypeOf(l).Comparable() {
		return -1
	}
	return slices.IndexFunc(d.listeners, func(x Listener) bool {
		return reflect.TypeOf(x).Comparable() && x == l
	})
}

func fire(ctx context.Context, l Listener, ev Event) {
	switch ev.Type {
	case BeforeInsert:
		l.BeforeInsert(ctx, ev)
	case AfterInsert:
		l.AfterInsert(ctx, ev)
	case BeforeUpdate:
		l.BeforeUpdate(ctx, ev)
	case AfterUpdate:
		l.AfterUpdate(ctx, ev)
	case BeforeDelete:
		l.BeforeDelete(ctx, ev)
	case AfterDelete:
		l.AfterDelete(ctx, ev)
	}
}
