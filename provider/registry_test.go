package provider

import (
	"context"
	"testing"

	apperrors "github.com/skillsenselab/murmur/errors"
)

type fakeProvider struct {
	name      string
	available bool
}

func (f *fakeProvider) Name() string                        { return f.name }
func (f *fakeProvider) IsAvailable(_ context.Context) bool  { return f.available }

func TestRegistry_CreateFromFactory(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	reg.RegisterFactory("fake", func(cfg map[string]any) (*fakeProvider, error) {
		name, _ := cfg["name"].(string)
		return &fakeProvider{name: name, available: true}, nil
	})

	p, err := reg.Create("fake", map[string]any{"name": "whisper"})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "whisper" {
		t.Errorf("Name() = %q, want whisper", p.Name())
	}
}

func TestRegistry_CreateUnknown(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	_, err := reg.Create("missing", nil)
	if err == nil {
		t.Fatal("expected error for unregistered factory")
	}
	if apperrors.CodeOf(err) != apperrors.ErrCodeNotFound {
		t.Errorf("CodeOf(err) = %s, want %s", apperrors.CodeOf(err), apperrors.ErrCodeNotFound)
	}
}

func TestRegistry_ResolveCaches(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	builds := 0
	reg.RegisterFactory("whisper", func(cfg map[string]any) (*fakeProvider, error) {
		builds++
		return &fakeProvider{name: "whisper", available: true}, nil
	})

	first, err := reg.Resolve("whisper", nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := reg.Resolve("whisper", nil)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("Resolve returned different instances for the same name")
	}
	if builds != 1 {
		t.Errorf("factory ran %d times, want 1", builds)
	}
}

func TestRegistry_Available(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	reg.Set("up", &fakeProvider{name: "up", available: true})
	reg.Set("down", &fakeProvider{name: "down", available: false})

	got := reg.Available(context.Background())
	if len(got) != 1 || got[0] != "up" {
		t.Errorf("Available() = %v, want [up]", got)
	}
}

func TestRegistry_GetSet(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	if _, ok := reg.Get("x"); ok {
		t.Error("Get should miss on empty registry")
	}
	reg.Set("x", &fakeProvider{name: "x"})
	p, ok := reg.Get("x")
	if !ok || p.Name() != "x" {
		t.Errorf("Get() = %v, %v; want cached instance", p, ok)
	}
}

func TestRegistry_ListSorted(t *testing.T) {
	reg := NewRegistry[*fakeProvider]()
	factory := func(cfg map[string]any) (*fakeProvider, error) { return &fakeProvider{}, nil }
	reg.RegisterFactory("zeta", factory)
	reg.RegisterFactory("alpha", factory)

	names := reg.List()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("List() = %v, want [alpha zeta]", names)
	}
}
