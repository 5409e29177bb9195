package dispatch

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"lrsd/pkg/types"
)

func nopAccept(context.Context, types.Statement) error { return nil }

func TestRegistry_RegisterReportsReplace(t *testing.T) {
	r := NewRegistry()
	existed, err := r.Register(ProviderFunc("p1", nopAccept))
	if err != nil || existed {
		t.Fatalf("first register: existed=%v err=%v", existed, err)
	}
	second := newRecorder("p1")
	existed, err = r.Register(second)
	if err != nil || !existed {
		t.Fatalf("second register: existed=%v err=%v", existed, err)
	}
	got, ok := r.Get("p1")
	if !ok || got != Provider(second) {
		t.Fatalf("expected replacement instance, got %v ok=%v", got, ok)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 provider, got %d", r.Len())
	}
}

// panickyID is a provider whose ID method panics.
type panickyID struct{}

func (panickyID) ID() string                                    { panic("no id") }
func (panickyID) Accept(context.Context, types.Statement) error { return nil }

func TestRegistry_RejectsNilAndEmptyID(t *testing.T) {
	r := NewRegistry()
	_, _ = r.Register(ProviderFunc("keep", nopAccept))
	var typedNil *recorder
	for _, p := range []Provider{nil, typedNil, panickyID{}, ProviderFunc("", nopAccept), ProviderFunc("  \t", nopAccept)} {
		existed, err := r.Register(p)
		if existed || !errors.Is(err, ErrInvalidArgument) || !IsInvalidArgument(err) {
			t.Fatalf("expected invalid argument for %v, got existed=%v err=%v", p, existed, err)
		}
	}
	if ids := r.IDs(); !reflect.DeepEqual(ids, []string{"keep"}) {
		t.Fatalf("registry changed by rejected registrations: %v", ids)
	}
}

func TestRegistry_TrimsID(t *testing.T) {
	r := NewRegistry()
	_, _ = r.Register(ProviderFunc(" spaced ", nopAccept))
	if _, ok := r.Get("spaced"); !ok {
		t.Fatalf("expected provider under trimmed id, ids=%v", r.IDs())
	}
}

func TestRegistry_SnapshotSortedAndDetached(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"c", "a", "b"} {
		_, _ = r.Register(ProviderFunc(id, nopAccept))
	}
	snap := r.Snapshot()
	var ids []string
	for _, p := range snap {
		ids = append(ids, p.ID())
	}
	if !reflect.DeepEqual(ids, []string{"a", "b", "c"}) {
		t.Fatalf("snapshot not sorted: %v", ids)
	}
	_, _ = r.Register(ProviderFunc("d", nopAccept))
	if len(snap) != 3 {
		t.Fatalf("snapshot changed after registration: %d", len(snap))
	}
	r.Clear()
	if r.Len() != 0 || len(snap) != 3 {
		t.Fatalf("clear: len=%d snap=%d", r.Len(), len(snap))
	}
}

func TestRegistry_ConcurrentRegisterAndSnapshot(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = r.Register(ProviderFunc(string(rune('a'+i)), nopAccept))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				for _, p := range r.Snapshot() {
					if p == nil || p.ID() == "" {
						t.Errorf("observed partial entry")
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	if r.Len() != 8 {
		t.Fatalf("expected 8 providers, got %d", r.Len())
	}
}
