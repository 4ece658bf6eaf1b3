package trigger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	Adapter
	name  string
	calls *[]string
}

func (r *recorder) BeforeInsert(_ context.Context, ev Event) {
	*r.calls = append(*r.calls, r.name+":"+ev.Type.String())
}

func (r *recorder) AfterDelete(_ context.Context, ev Event) {
	*r.calls = append(*r.calls, r.name+":"+ev.Type.String())
}

func TestDispatcher(t *testing.T) {
	var calls []string
	a := &recorder{name: "a", calls: &calls}
	b := &recorder{name: "b", calls: &calls}

	var d Dispatcher
	d.Add(a)
	d.Add(b)
	d.Add(a)
	d.Add(nil)
	require.Equal(t, 2, d.Len())

	ctx := context.Background()
	d.Dispatch(ctx, Event{Type: BeforeInsert})
	d.Dispatch(ctx, Event{Type: AfterInsert})
	d.Dispatch(ctx, Event{Type: AfterDelete})
	assert.Equal(t, []string{
		"a:BeforeInsert", "b:BeforeInsert",
		"a:AfterDelete", "b:AfterDelete",
	}, calls)

	assert.True(t, d.Remove(a))
	assert.False(t, d.Remove(a))
	calls = nil
	d.Dispatch(ctx, Event{Type: BeforeInsert})
	assert.Equal(t, []string{"b:BeforeInsert"}, calls)
}

type removeSelf struct {
	Adapter
	d *Dispatcher
}

func (r *removeSelf) BeforeUpdate(context.Context, Event) { r.d.Remove(r) }

func TestDispatchSnapshot(t *testing.T) {
	var d Dispatcher
	var calls []string
	r := &removeSelf{d: &d}
	d.Add(r)
	d.Add(&recorder{name: "x", calls: &calls})

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), Event{Type: BeforeUpdate})
	})
	assert.Equal(t, 1, d.Len())
}

func TestConcurrentRegistration(t *testing.T) {
	var d Dispatcher
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := &recorder{calls: new([]string)}
			d.Add(l)
			d.Dispatch(context.Background(), Event{Type: AfterUpdate})
			d.Remove(l)
		}()
	}
	wg.Wait()
	assert.Zero(t, d.Len())
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "AfterUpdate", AfterUpdate.String())
	assert.Equal(t, "Unknown", Type(0).String())
	assert.Equal(t, "Unknown", Type(42).String())
}
