package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/oxsci/toolgate/internal/forward"
	"github.com/oxsci/toolgate/internal/schema"
	"github.com/oxsci/toolgate/internal/toolctx"
)

func noopHandler(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error) {
	return map[string]any{}, nil
}

func def(name string, enabled bool) Definition {
	return Definition{
		Name:        name,
		Description: "test tool " + name,
		Version:     "1.0.0",
		Enabled:     enabled,
		Handler:     noopHandler,
	}
}

func TestRegister_And_Lookup(t *testing.T) {
	r := New()

	if err := r.Register(def("alpha", true)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tool, err := r.Lookup("alpha")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if tool.Name != "alpha" || tool.Version != "1.0.0" {
		t.Errorf("unexpected tool: %+v", tool.Definition)
	}
}

func TestLookup_NotFound(t *testing.T) {
	r := New()

	_, err := r.Lookup("ghost")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
	if nf.Name != "ghost" {
		t.Errorf("expected name ghost, got %s", nf.Name)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r := New()

	if err := r.Register(def("alpha", true)); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	err := r.Register(def("alpha", false))
	var dup *DuplicateToolError
	if !errors.As(err, &dup) {
		t.Fatalf("expected *DuplicateToolError, got %v", err)
	}

	// Registry unchanged after the failed attempt.
	if r.Len() != 1 {
		t.Errorf("expected 1 tool after duplicate registration, got %d", r.Len())
	}
	tool, _ := r.Lookup("alpha")
	if !tool.Enabled {
		t.Error("expected original registration to be preserved")
	}
}

func TestRegister_RejectsInvalid(t *testing.T) {
	r := New()

	if err := r.Register(Definition{Name: "", Handler: noopHandler}); err == nil {
		t.Error("expected error for empty name")
	}
	if err := r.Register(Definition{Name: "x"}); err == nil {
		t.Error("expected error for nil handler")
	}

	bad := def("badshape", true)
	bad.Input = schema.Shape{Fields: []schema.Field{{Name: "f", Type: "nonsense"}}}
	if err := r.Register(bad); err == nil {
		t.Error("expected error for invalid input shape")
	}
	if r.Len() != 0 {
		t.Errorf("expected registry unchanged, got %d tools", r.Len())
	}
}

func TestDiscoverable_EnabledSubsetInOrder(t *testing.T) {
	r := New()
	r.Register(def("first", true))
	r.Register(def("hidden", false))
	r.Register(def("second", true))

	discoverable := r.Discoverable()
	if len(discoverable) != 2 {
		t.Fatalf("expected 2 discoverable tools, got %d", len(discoverable))
	}
	if discoverable[0].Name != "first" || discoverable[1].Name != "second" {
		t.Errorf("expected registration order [first second], got [%s %s]",
			discoverable[0].Name, discoverable[1].Name)
	}
}

func TestAll_AnnotatesStatus(t *testing.T) {
	r := New()
	r.Register(def("first", true))
	r.Register(def("hidden", false))

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(all))
	}
	if all[0].Status != "active" {
		t.Errorf("expected first to be active, got %s", all[0].Status)
	}
	if all[1].Status != "disabled" {
		t.Errorf("expected hidden to be disabled, got %s", all[1].Status)
	}
}
