package assoctool

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jacksonlee411/jobdesk/modules/association/services"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func run(t *testing.T, logger *zap.Logger, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(logger)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBindings(t *testing.T) {
	out, err := run(t, nil, "", "bindings")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !strings.Contains(out, "collaborator.job_types\tjob_types\tjob_type_ids\tjob_type_id\n") {
		t.Fatalf("out=%q", out)
	}
	if !strings.Contains(out, "client.activities\tactivities\tactivities\t-\n") {
		t.Fatalf("out=%q", out)
	}
}

func TestDecode_CommaSeparatedWithPrimary(t *testing.T) {
	out, err := run(t, nil, "", "decode", "--binding", "collaborator.job_types", "--primary", "7", "3,7")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	var got decodeOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("out=%q err=%v", out, err)
	}
	want := decodeOutput{
		Binding: "collaborator.job_types",
		Members: []string{"7", "3"},
		Primary: "7",
		List:    `["7","3"]`,
		Decoded: "comma_separated",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_EmptyRequiredReportsInvalid(t *testing.T) {
	out, err := run(t, nil, "", "decode", "--binding", "collaborator.roles", "")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	var got decodeOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("err=%v", err)
	}
	if got.List != "[]" || got.Invalid == "" {
		t.Fatalf("got=%+v", got)
	}
}

func TestDecode_UnknownBinding(t *testing.T) {
	_, err := run(t, nil, "", "decode", "--binding", "nope", "[]")
	if !errors.Is(err, services.ErrUnknownBinding) {
		t.Fatalf("err=%v", err)
	}
}

func TestDecode_WithOptionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	doc := "version: 1\ndicts:\n  activities:\n    - {code: \"1\", label: Demolition}\n    - {code: \"2\", label: Framing}\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, nil, "", "decode", "--binding", "job_type.activities", "--options", path, `["1","9"]`)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	var got decodeOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("err=%v", err)
	}
	if got.Invalid == "" {
		t.Fatalf("expected rule failure, got=%+v", got)
	}
}

func TestNormalize(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	in := strings.Join([]string{
		"[\"3\",\"7\"]\t7",
		"5",
		"\t",
		"[1, null, 1]\t",
	}, "\n")
	out, err := run(t, zap.New(core), in, "normalize", "--binding", "company.job_types")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	want := strings.Join([]string{
		"[\"7\",\"3\"]\t7",
		"[\"5\"]\t5",
		"[]\t",
		"[\"1\"]\t1",
	}, "\n") + "\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	entries := logs.FilterMessage("normalized degraded row").All()
	if len(entries) != 1 {
		t.Fatalf("entries=%d", len(entries))
	}
	if got := entries[0].ContextMap()["line"]; got != int64(4) {
		t.Fatalf("line=%v", got)
	}
}

func TestNormalize_LegacyForms(t *testing.T) {
	in := "\"5\"\t\n[1,2]]\t2\n[3, 3.0]\t\n"
	out, err := run(t, nil, in, "normalize", "--binding", "company.job_types")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	want := "[\"5\"]\t5\n[\"2\",\"1\"]\t2\n[\"3\"]\t3\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPerms(t *testing.T) {
	t.Setenv("AUTHZ_MODE", "")
	out, err := run(t, nil, "",
		"perms", "--role", "dispatcher", "--check", "jobs.view_assigned",
		"jobs.view_all,jobs.view_assigned,jobs.edit,legacy.thing",
	)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	var got permsOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("out=%q err=%v", out, err)
	}
	if diff := cmp.Diff([]string{"jobs.view_all", "jobs.edit", "legacy.thing"}, got.Permissions); diff != "" {
		t.Fatalf("permissions (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"jobs.view_assigned"}, got.Dropped); diff != "" {
		t.Fatalf("dropped (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"legacy.thing"}, got.Unknown); diff != "" {
		t.Fatalf("unknown (-want +got):\n%s", diff)
	}
	if got.Encoded != `["jobs.view_all","jobs.edit","legacy.thing"]` {
		t.Fatalf("encoded=%q", got.Encoded)
	}
	if got.Check == nil || got.Check.Allowed || !got.Check.Enforced {
		t.Fatalf("check=%+v", got.Check)
	}
	if len(got.Tables) != 0 {
		t.Fatalf("tables=%d", len(got.Tables))
	}
}

func TestPerms_Tables(t *testing.T) {
	out, err := run(t, nil, "", "perms", "--tables", `["company.view"]`)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	var got permsOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(got.Tables) == 0 || got.Tables[0].Key != "company" {
		t.Fatalf("tables=%+v", got.Tables)
	}
	if !got.Tables[0].Rows[0].Cells[0].Checked {
		t.Fatalf("row=%+v", got.Tables[0].Rows[0])
	}
}

func TestPerms_BadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("version: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, nil, "", "perms", "--catalog", path, "[]"); err == nil {
		t.Fatal("expected error")
	}
}
