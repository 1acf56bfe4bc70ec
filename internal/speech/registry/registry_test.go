package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/audiotasks/audiotasks/internal/speech/engine"
)

type nopEngine struct{ name string }

func (n *nopEngine) Transcribe(ctx context.Context, path, language string) (engine.Output, error) {
	return engine.Output{}, nil
}

func (n *nopEngine) Close() error { return nil }

func TestRegisterAndCreate(t *testing.T) {
	r := New()
	r.Register("fake", func(config map[string]string) (engine.Engine, error) {
		return &nopEngine{name: config["name"]}, nil
	})

	if !r.Has("fake") {
		t.Fatal("Has(fake) = false after Register")
	}

	eng, err := r.Create("fake", map[string]string{"name": "a"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if eng.(*nopEngine).name != "a" {
		t.Error("config map not passed to factory")
	}
}

func TestCreateUnknown(t *testing.T) {
	r := New()
	if _, err := r.Create("missing", nil); err == nil {
		t.Fatal("expected error for unknown engine")
	}
}

func TestCreateFactoryError(t *testing.T) {
	r := New()
	wantErr := errors.New("bad config")
	r.Register("broken", func(config map[string]string) (engine.Engine, error) {
		return nil, wantErr
	})

	if _, err := r.Create("broken", nil); !errors.Is(err, wantErr) {
		t.Errorf("Create error = %v, want %v", err, wantErr)
	}
}

func TestList(t *testing.T) {
	r := New()
	r.Register("a", func(map[string]string) (engine.Engine, error) { return &nopEngine{}, nil })
	r.Register("b", func(map[string]string) (engine.Engine, error) { return &nopEngine{}, nil })

	names := r.List()
	if len(names) != 2 {
		t.Fatalf("List returned %d names, want 2", len(names))
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("List = %v, want a and b", names)
	}
}
