package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-navtree/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "navtree.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger.Debug("noop")
}

func TestModuleLoggerAnnotatesModuleField(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = NodesLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != nodesModule {
		t.Fatalf("expected module %s, got %v", nodesModule, provider.requested)
	}
	if len(rec.fields) != 1 {
		t.Fatalf("expected module fields applied once, got %d", len(rec.fields))
	}
	if got := rec.fields[0]["module"]; got != nodesModule {
		t.Fatalf("expected module field %s, got %v", nodesModule, got)
	}
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "")

	if len(provider.requested) != 1 || provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
}

func TestWithNavigationContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}
	_ = WithNavigationContext(rec, "nav-1", " ", "")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	fields := rec.fields[0]
	if fields[fieldNavigationID] != "nav-1" {
		t.Fatalf("expected navigation id field, got %v", fields)
	}
	if _, ok := fields[fieldLocale]; ok {
		t.Fatalf("expected blank locale to be skipped, got %v", fields)
	}
	if _, ok := fields[fieldNodeID]; ok {
		t.Fatalf("expected empty node id to be skipped, got %v", fields)
	}
}

func TestContextFieldsMergeAndCopy(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"request_id": "r-1"})
	ctx = ContextWithFields(ctx, map[string]any{"handle": "main"})

	fields := ContextFields(ctx)
	if fields["request_id"] != "r-1" || fields["handle"] != "main" {
		t.Fatalf("expected merged fields, got %v", fields)
	}

	fields["request_id"] = "mutated"
	if ContextFields(ctx)["request_id"] != "r-1" {
		t.Fatal("expected ContextFields to return a copy")
	}
}
