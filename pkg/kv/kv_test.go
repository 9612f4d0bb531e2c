package kv_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/haivivi/celebguess/pkg/kv"
)

func stores(t *testing.T) map[string]kv.Store {
	t.Helper()
	b, err := kv.NewBadger(kv.BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return map[string]kv.Store{
		"memory": kv.NewMemory(nil),
		"badger": b,
	}
}

func TestStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			key := kv.Key{"games", "1"}
			if _, err := s.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
				t.Fatalf("Get missing = %v, want ErrNotFound", err)
			}
			if err := s.Set(ctx, key, []byte("v1")); err != nil {
				t.Fatal(err)
			}
			if err := s.Set(ctx, key, []byte("v2")); err != nil {
				t.Fatal(err)
			}
			got, err := s.Get(ctx, key)
			if err != nil || string(got) != "v2" {
				t.Fatalf("Get = %q, %v; want v2", got, err)
			}
			if err := s.Delete(ctx, key); err != nil {
				t.Fatal(err)
			}
			if err := s.Delete(ctx, key); err != nil {
				t.Fatalf("Delete missing = %v", err)
			}
			if _, err := s.Get(ctx, key); !errors.Is(err, kv.ErrNotFound) {
				t.Fatalf("Get after delete = %v", err)
			}
		})
	}
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []kv.Key{
				{"games", "b"},
				{"games", "a"},
				{"games", "c"},
				{"gamesx", "z"},
				{"other", "a"},
			} {
				if err := s.Set(ctx, k, []byte(k.String())); err != nil {
					t.Fatal(err)
				}
			}

			tests := []struct {
				name string
				opts kv.ListOptions
				want []string
			}{
				{"ascending", kv.ListOptions{}, []string{"games:a", "games:b", "games:c"}},
				{"descending", kv.ListOptions{Reverse: true}, []string{"games:c", "games:b", "games:a"}},
				{"limit", kv.ListOptions{Limit: 2}, []string{"games:a", "games:b"}},
				{"reverse limit", kv.ListOptions{Reverse: true, Limit: 1}, []string{"games:c"}},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					var got []string
					for e, err := range s.List(ctx, kv.Key{"games"}, tt.opts) {
						if err != nil {
							t.Fatal(err)
						}
						if e.Key.String() != string(e.Value) {
							t.Errorf("key %v holds %q", e.Key, e.Value)
						}
						got = append(got, e.Key.String())
					}
					if !slices.Equal(got, tt.want) {
						t.Errorf("List = %v, want %v", got, tt.want)
					}
				})
			}
		})
	}
}

func TestStore_ListEarlyStop(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"1", "2", "3"} {
				s.Set(ctx, kv.Key{"games", id}, []byte(id))
			}
			n := 0
			for range s.List(ctx, kv.Key{"games"}, kv.ListOptions{}) {
				n++
				break
			}
			if n != 1 {
				t.Errorf("iterated %d entries after break", n)
			}
		})
	}
}

func TestNewBadger_RequiresDir(t *testing.T) {
	if _, err := kv.NewBadger(kv.BadgerOptions{}); err == nil {
		t.Error("expected error without Dir")
	}
}

func TestBadger_Persists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b, err := kv.NewBadger(kv.BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Set(ctx, kv.Key{"games", "1"}, []byte("x")); err != nil {
		t.Fatal(err)
	}
	b.Close()

	b, err = kv.NewBadger(kv.BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if got, err := b.Get(ctx, kv.Key{"games", "1"}); err != nil || string(got) != "x" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}
