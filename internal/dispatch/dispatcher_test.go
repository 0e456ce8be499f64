package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/oxsci/toolgate/internal/common"
	"github.com/oxsci/toolgate/internal/config"
	"github.com/oxsci/toolgate/internal/forward"
	"github.com/oxsci/toolgate/internal/registry"
	"github.com/oxsci/toolgate/internal/schema"
	"github.com/oxsci/toolgate/internal/toolctx"
)

func testDispatcher(t *testing.T, defs ...registry.Definition) (*Dispatcher, *forward.Forwarder) {
	t.Helper()
	reg := registry.New()
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			t.Fatalf("Register %s failed: %v", def.Name, err)
		}
	}
	fwd := forward.NewForwarder(config.DownstreamConfig{
		DataServiceURL: "http://localhost:0",
		TimeoutSeconds: 5,
	}, common.NewSilentLogger())
	return New(reg, fwd, common.NewSilentLogger()), fwd
}

func echoDef(name string, enabled bool) registry.Definition {
	return registry.Definition{
		Name:        name,
		Description: "echoes its input",
		Version:     "1.0.0",
		Enabled:     enabled,
		Input: schema.Shape{Fields: []schema.Field{
			{Name: "text", Type: "string", Required: true},
			{Name: "repeat", Type: "integer", Default: 1, Minimum: schema.Float(1)},
		}},
		Output: schema.Shape{Fields: []schema.Field{
			{Name: "echoed", Type: "string", Required: true},
		}},
		Handler: func(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error) {
			return map[string]any{"echoed": args["text"].(string)}, nil
		},
	}
}

func TestDispatch_Success(t *testing.T) {
	d, _ := testDispatcher(t, echoDef("echo", true))

	resp := d.Dispatch(context.Background(), Request{
		Tool:      "echo",
		Arguments: map[string]any{"text": "hello"},
	})
	if resp.Status != "success" {
		t.Fatalf("expected success, got %s: %+v", resp.Status, resp.Error)
	}
	if resp.HTTPStatus != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.HTTPStatus)
	}
	if resp.Data["echoed"] != "hello" {
		t.Errorf("unexpected data: %v", resp.Data)
	}
	if resp.Error != nil {
		t.Errorf("expected no error body, got %+v", resp.Error)
	}
}

func TestDispatch_ToolNotFound(t *testing.T) {
	d, _ := testDispatcher(t)

	resp := d.Dispatch(context.Background(), Request{Tool: "ghost"})
	if resp.Status != "error" {
		t.Fatalf("expected error status, got %s", resp.Status)
	}
	if resp.Error.Kind != KindToolNotFound {
		t.Errorf("expected kind %s, got %s", KindToolNotFound, resp.Error.Kind)
	}
	if resp.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.HTTPStatus)
	}
}

func TestDispatch_InvalidArguments(t *testing.T) {
	d, _ := testDispatcher(t, echoDef("echo", true))

	resp := d.Dispatch(context.Background(), Request{
		Tool:      "echo",
		Arguments: map[string]any{"repeat": 0},
	})
	if resp.Error == nil || resp.Error.Kind != KindInvalidArguments {
		t.Fatalf("expected %s, got %+v", KindInvalidArguments, resp.Error)
	}
	if resp.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", resp.HTTPStatus)
	}
	issues, ok := resp.Error.Details.([]schema.Issue)
	if !ok || len(issues) == 0 {
		t.Fatalf("expected issue details, got %v", resp.Error.Details)
	}
}

func TestDispatch_DefaultsApplied(t *testing.T) {
	var gotRepeat any
	def := echoDef("echo", true)
	def.Handler = func(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error) {
		gotRepeat = args["repeat"]
		return map[string]any{"echoed": "x"}, nil
	}
	d, _ := testDispatcher(t, def)

	resp := d.Dispatch(context.Background(), Request{
		Tool:      "echo",
		Arguments: map[string]any{"text": "hi"},
	})
	if resp.Status != "success" {
		t.Fatalf("expected success, got %+v", resp.Error)
	}
	if gotRepeat == nil {
		t.Error("expected default value for repeat to reach the handler")
	}
}

func TestDispatch_OutputContractViolation(t *testing.T) {
	def := echoDef("echo", true)
	def.Handler = func(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error) {
		return map[string]any{"wrong_key": true}, nil
	}
	d, _ := testDispatcher(t, def)

	resp := d.Dispatch(context.Background(), Request{
		Tool:      "echo",
		Arguments: map[string]any{"text": "hi"},
	})
	if resp.Error == nil || resp.Error.Kind != KindInternalContract {
		t.Fatalf("expected %s, got %+v", KindInternalContract, resp.Error)
	}
	if resp.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.HTTPStatus)
	}
}

func TestDispatch_HandlerError(t *testing.T) {
	def := echoDef("echo", true)
	def.Handler = func(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error) {
		return nil, errors.New("something broke")
	}
	d, _ := testDispatcher(t, def)

	resp := d.Dispatch(context.Background(), Request{
		Tool:      "echo",
		Arguments: map[string]any{"text": "hi"},
	})
	if resp.Error == nil || resp.Error.Kind != KindHandler {
		t.Fatalf("expected %s, got %+v", KindHandler, resp.Error)
	}
	if resp.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.HTTPStatus)
	}
}

func TestDispatch_MissingAuthContext(t *testing.T) {
	def := echoDef("echo", true)
	def.Handler = func(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error) {
		_, err := dc.Call(ctx, "GET", "/sections", nil)
		return nil, err
	}
	d, _ := testDispatcher(t, def)

	// No identity provided; the failure surfaces only when the tool
	// actually reaches downstream.
	resp := d.Dispatch(context.Background(), Request{
		Tool:      "echo",
		Arguments: map[string]any{"text": "hi"},
	})
	if resp.Error == nil || resp.Error.Kind != KindMissingAuthContext {
		t.Fatalf("expected %s, got %+v", KindMissingAuthContext, resp.Error)
	}
	if resp.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.HTTPStatus)
	}
}

func TestDispatch_DownstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"detail":"no access"}`))
		default:
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"detail":"bad payload"}`))
		}
	}))
	defer srv.Close()

	makeDef := func(endpoint string) registry.Definition {
		def := echoDef("echo", true)
		def.Handler = func(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error) {
			_, err := dc.Call(ctx, "GET", endpoint, nil)
			return nil, err
		}
		return def
	}

	cases := []struct {
		name       string
		endpoint   string
		wantKind   string
		wantStatus int
	}{
		{"auth error", "/forbidden", KindDownstreamAuth, http.StatusBadGateway},
		{"call error", "/sections", KindDownstream, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := registry.New()
			if err := reg.Register(makeDef(tc.endpoint)); err != nil {
				t.Fatalf("Register failed: %v", err)
			}
			fwd := forward.NewForwarder(config.DownstreamConfig{
				DataServiceURL: srv.URL,
				TimeoutSeconds: 5,
			}, common.NewSilentLogger())
			d := New(reg, fwd, common.NewSilentLogger())

			resp := d.Dispatch(context.Background(), Request{
				Tool:      "echo",
				Arguments: map[string]any{"text": "hi"},
				Identity:  forward.Identity{UserID: "u1", Token: "tok"},
			})
			if resp.Error == nil || resp.Error.Kind != tc.wantKind {
				t.Fatalf("expected %s, got %+v", tc.wantKind, resp.Error)
			}
			if resp.HTTPStatus != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, resp.HTTPStatus)
			}
			details, ok := resp.Error.Details.(map[string]any)
			if !ok {
				t.Fatalf("expected downstream details, got %v", resp.Error.Details)
			}
			if _, ok := details["downstream_status"]; !ok {
				t.Error("expected downstream_status in details")
			}
		})
	}
}

func TestDispatch_DownstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	def := echoDef("echo", true)
	def.Handler = func(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error) {
		_, err := dc.Call(ctx, "GET", "/sections", nil)
		return nil, err
	}
	reg := registry.New()
	if err := reg.Register(def); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	fwd := forward.NewForwarder(config.DownstreamConfig{
		DataServiceURL: url,
		TimeoutSeconds: 5,
	}, common.NewSilentLogger())
	d := New(reg, fwd, common.NewSilentLogger())

	resp := d.Dispatch(context.Background(), Request{
		Tool:      "echo",
		Arguments: map[string]any{"text": "hi"},
		Identity:  forward.Identity{UserID: "u1", Token: "tok"},
	})
	if resp.Error == nil || resp.Error.Kind != KindDownstreamUnavailable {
		t.Fatalf("expected %s, got %+v", KindDownstreamUnavailable, resp.Error)
	}
	if resp.HTTPStatus != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", resp.HTTPStatus)
	}
}

func TestDispatch_DisabledToolStillInvocable(t *testing.T) {
	d, _ := testDispatcher(t, echoDef("draft", false))

	resp := d.Dispatch(context.Background(), Request{
		Tool:      "draft",
		Arguments: map[string]any{"text": "still works"},
	})
	if resp.Status != "success" {
		t.Fatalf("expected disabled tool to be directly invocable, got %+v", resp.Error)
	}
}

func TestDispatch_TeardownOnEveryPath(t *testing.T) {
	failing := echoDef("failing", true)
	failing.Handler = func(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error) {
		return nil, errors.New("boom")
	}
	d, fwd := testDispatcher(t, echoDef("echo", true), failing)

	d.Dispatch(context.Background(), Request{Tool: "echo", Arguments: map[string]any{"text": "hi"}})
	d.Dispatch(context.Background(), Request{Tool: "failing", Arguments: map[string]any{"text": "hi"}})
	d.Dispatch(context.Background(), Request{Tool: "echo", Arguments: map[string]any{"repeat": "bad"}})

	if fwd.ActiveClients() != 0 {
		t.Errorf("expected all downstream clients released, got %d active", fwd.ActiveClients())
	}
}

func TestDispatch_SharedContextIsolation(t *testing.T) {
	def := echoDef("stateful", true)
	def.Handler = func(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error) {
		marker := args["text"].(string)
		if prev := sc.Get("marker", nil); prev != nil {
			return nil, errors.New("saw state from another request")
		}
		sc.Set("marker", marker)
		if got := sc.Get("marker", nil); got != marker {
			return nil, errors.New("lost own state within request")
		}
		return map[string]any{"echoed": marker}, nil
	}
	d, _ := testDispatcher(t, def)

	var wg sync.WaitGroup
	errCh := make(chan string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			resp := d.Dispatch(context.Background(), Request{
				Tool:      "stateful",
				Arguments: map[string]any{"text": string(rune('a' + n%26))},
			})
			if resp.Status != "success" {
				errCh <- resp.Error.Message
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for msg := range errCh {
		t.Errorf("concurrent dispatch failed: %s", msg)
	}
}

func TestDispatch_SeedVisibleToHandler(t *testing.T) {
	def := echoDef("seeded", true)
	def.Handler = func(ctx context.Context, args map[string]any, sc *toolctx.Context, dc *forward.Client) (map[string]any, error) {
		return map[string]any{"echoed": sc.Get("user_id", "unknown").(string)}, nil
	}
	d, _ := testDispatcher(t, def)

	resp := d.Dispatch(context.Background(), Request{
		Tool:      "seeded",
		Arguments: map[string]any{"text": "x"},
		Seed:      map[string]any{"user_id": "user123"},
	})
	if resp.Status != "success" {
		t.Fatalf("expected success, got %+v", resp.Error)
	}
	if resp.Data["echoed"] != "user123" {
		t.Errorf("expected seed visible to handler, got %v", resp.Data["echoed"])
	}
}
