package dict

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type resolverStub struct{}

func (resolverStub) ResolveLabel(context.Context, string, string) (string, bool, error) {
	return "Plumbing", true, nil
}

func (resolverStub) ListOptions(context.Context, string, string, int) ([]Option, error) {
	return []Option{{Code: "1", Label: "Plumbing"}}, nil
}

type nilResolver struct{}

func (*nilResolver) ResolveLabel(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}

func (*nilResolver) ListOptions(context.Context, string, string, int) ([]Option, error) {
	return nil, nil
}

func TestResolverRegistry(t *testing.T) {
	registry.mu.Lock()
	registry.r = nil
	registry.mu.Unlock()

	if err := RegisterResolver(nil); err == nil {
		t.Fatal("expected error")
	}
	var typedNil *nilResolver
	if err := RegisterResolver(typedNil); err == nil {
		t.Fatal("expected typed nil error")
	}
	if _, _, err := ResolveLabel(context.Background(), "job_types", "1"); !IsNotConfigured(err) {
		t.Fatalf("err=%v", err)
	}
	if _, err := ListOptions(context.Background(), "job_types", "", 10); !errors.Is(err, errResolverNotConfigured) {
		t.Fatalf("err=%v", err)
	}

	if err := RegisterResolver(resolverStub{}); err != nil {
		t.Fatalf("register err=%v", err)
	}
	label, ok, err := ResolveLabel(context.Background(), " job_types ", " 1 ")
	if err != nil || !ok || label != "Plumbing" {
		t.Fatalf("label=%q ok=%v err=%v", label, ok, err)
	}
	options, err := ListOptions(context.Background(), " job_types ", " ", 10)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(options) != 1 || options[0].Code != "1" {
		t.Fatalf("options=%+v", options)
	}
}

const staticYAML = `
version: 1
dicts:
  job_types:
    - {code: "1", label: Plumbing}
    - {code: " 2 ", label: Electrical}
    - {code: "3", label: Roofing, status: disabled}
    - {code: "4", label: HVAC, status: ACTIVE}
  activities: []
`

func TestParseStaticYAML(t *testing.T) {
	r, err := ParseStaticYAML([]byte(staticYAML))
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	ctx := context.Background()

	opts, err := r.ListOptions(ctx, "job_types", "", 0)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	want := []Option{
		{Code: "1", Label: "Plumbing"},
		{Code: "2", Label: "Electrical"},
		{Code: "4", Label: "HVAC", Status: "ACTIVE"},
	}
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	opts, err = r.ListOptions(ctx, "job_types", "elec", 0)
	if err != nil || len(opts) != 1 || opts[0].Code != "2" {
		t.Fatalf("opts=%+v err=%v", opts, err)
	}
	opts, err = r.ListOptions(ctx, "job_types", "", 1)
	if err != nil || len(opts) != 1 {
		t.Fatalf("opts=%+v err=%v", opts, err)
	}
	opts, err = r.ListOptions(ctx, "activities", "", 0)
	if err != nil || len(opts) != 0 {
		t.Fatalf("opts=%+v err=%v", opts, err)
	}
	if _, err := r.ListOptions(ctx, "nope", "", 0); !errors.Is(err, ErrUnknownDict) {
		t.Fatalf("err=%v", err)
	}

	label, ok, err := r.ResolveLabel(ctx, "job_types", "3")
	if err != nil || !ok || label != "Roofing" {
		t.Fatalf("label=%q ok=%v err=%v", label, ok, err)
	}
	if _, ok, err := r.ResolveLabel(ctx, "job_types", "99"); err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if _, _, err := r.ResolveLabel(ctx, "nope", "1"); !errors.Is(err, ErrUnknownDict) {
		t.Fatalf("err=%v", err)
	}
}

func TestParseStaticYAML_Errors(t *testing.T) {
	cases := map[string]string{
		"bad yaml":       "version: [",
		"bad version":    "version: 2\ndicts: {}\n",
		"missing dicts":  "version: 1\n",
		"missing code":   "version: 1\ndicts:\n  a:\n    - {label: x}\n",
		"duplicate code": "version: 1\ndicts:\n  a:\n    - {code: \"1\"}\n    - {code: \"1\"}\n",
	}
	for name, doc := range cases {
		if _, err := ParseStaticYAML([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadStatic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "options.yaml")
	if err := os.WriteFile(path, []byte(staticYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadStatic(path); err != nil {
		t.Fatalf("err=%v", err)
	}
	if _, err := LoadStatic(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error")
	}
}
