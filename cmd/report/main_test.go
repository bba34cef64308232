package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCanCommand(t *testing.T) {
	out, err := execute("can", "admin", "manage:users")
	if err != nil {
		t.Fatalf("Expected admin to manage users: %v", err)
	}
	if !strings.Contains(out, "ADMIN may manage:users") {
		t.Errorf("Unexpected output %q", out)
	}

	if _, err := execute("can", "VIEWER", "manage:users"); err == nil {
		t.Error("Expected viewer to be denied")
	}

	if _, err := execute("can", "VIEWER"); err == nil {
		t.Error("Expected argument error")
	}
}

func TestRolesCommand(t *testing.T) {
	out, err := execute("roles")
	if err != nil {
		t.Fatalf("roles failed: %v", err)
	}
	for _, role := range []string{"ADMIN", "OPERATOR", "INSPECTOR", "VIEWER"} {
		if !strings.Contains(out, role) {
			t.Errorf("Expected %s in output %q", role, out)
		}
	}
}

func TestSummaryCommand(t *testing.T) {
	t.Setenv("DATA_SOURCE", "mock")
	t.Setenv("REFERENCE_DATE", "2026-02-08")

	out, err := execute("summary")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	var got summary
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("Expected JSON summary: %v", err)
	}
	if got.Stats.TotalMachines != 12 || len(got.Lines) != 3 || len(got.Trend) != 7 {
		t.Errorf("Unexpected summary %+v", got)
	}

	out, err = execute("summary", "--table")
	if err != nil {
		t.Fatalf("summary --table failed: %v", err)
	}
	if !strings.Contains(out, "Machines") || !strings.Contains(out, "ALERTS") {
		t.Errorf("Unexpected table %q", out)
	}
}
