package provider

import (
	"context"
	"errors"
	"testing"
)

func newTestGateway(mocks map[Kind]Provider, defaultKind Kind, defaultModel string) *Gateway {
	return NewGatewayWithProviders(mocks, defaultKind, defaultModel, nil)
}

func TestGenerate_UsesDefaultProvider(t *testing.T) {
	mock := &MockProvider{Response: "once upon a time"}
	g := newTestGateway(map[Kind]Provider{KindOllama: mock}, KindOllama, "llama3")

	got, err := g.Generate(context.Background(), Request{System: "sys", User: "user"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "once upon a time" {
		t.Errorf("got %q", got)
	}
	if mock.LastReq.Model != "llama3" {
		t.Errorf("default model not applied, got %q", mock.LastReq.Model)
	}
}

func TestGenerate_OverrideModelRoutes(t *testing.T) {
	ollama := &MockProvider{Response: "local"}
	router := &MockProvider{Response: "routed"}
	g := newTestGateway(map[Kind]Provider{
		KindOllama:     ollama,
		KindOpenRouter: router,
	}, KindOllama, "llama3")

	got, err := g.Generate(context.Background(), Request{User: "user"}, "qwen/qwq-32b:free")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "routed" {
		t.Errorf("override not routed, got %q", got)
	}
	if ollama.Calls != 0 {
		t.Error("default provider invoked despite override")
	}
	if router.LastReq.Model != "qwen/qwq-32b:free" {
		t.Errorf("routed model = %q", router.LastReq.Model)
	}
}

func TestGenerate_UnknownOverrideFallsBack(t *testing.T) {
	mock := &MockProvider{Response: "fallback"}
	g := newTestGateway(map[Kind]Provider{KindOllama: mock}, KindOllama, "llama3")

	got, err := g.Generate(context.Background(), Request{User: "user"}, "made-up/model")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fallback" {
		t.Errorf("got %q", got)
	}
	if mock.LastReq.Model != "llama3" {
		t.Errorf("unknown override should keep default model, got %q", mock.LastReq.Model)
	}
}

func TestGenerate_UnsupportedKind(t *testing.T) {
	g := newTestGateway(map[Kind]Provider{}, Kind("something_else"), "model")

	_, err := g.Generate(context.Background(), Request{User: "user"}, "")
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("got %v, want ErrUnsupportedKind", err)
	}
}

func TestGenerate_PropagatesProviderError(t *testing.T) {
	mock := &MockProvider{Err: ErrRequestFailed}
	g := newTestGateway(map[Kind]Provider{KindOllama: mock}, KindOllama, "llama3")

	_, err := g.Generate(context.Background(), Request{User: "user"}, "")
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("got %v, want ErrRequestFailed", err)
	}
}

func TestGenerate_ClampsTemperature(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"below range", -0.5, 0.0},
		{"above range", 1.7, 1.0},
		{"in range", 0.7, 0.7},
		{"lower bound", 0.0, 0.0},
		{"upper bound", 1.0, 1.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &MockProvider{Response: "ok"}
			g := newTestGateway(map[Kind]Provider{KindOllama: mock}, KindOllama, "llama3")

			if _, err := g.Generate(context.Background(), Request{User: "u", Temperature: tc.in}, ""); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mock.LastReq.Temperature != tc.want {
				t.Errorf("temperature %v clamped to %v, want %v", tc.in, mock.LastReq.Temperature, tc.want)
			}
		})
	}
}

func TestResolveRoute(t *testing.T) {
	route, ok := ResolveRoute("google/gemini-2.0-flash-exp:free")
	if !ok {
		t.Fatal("expected a route for a known model")
	}
	if route.Kind != KindOpenRouter {
		t.Errorf("kind = %q", route.Kind)
	}
	if route.ModelName != "google/gemini-2.0-flash-exp:free" {
		t.Errorf("model = %q", route.ModelName)
	}

	if _, ok := ResolveRoute("unknown/model"); ok {
		t.Error("expected no route for an unknown model")
	}
}
