package main

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"imgutil/internal/batch"
	"imgutil/internal/testsupport"
)

func TestHistoryListShowPrune(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenHistory(t, env.cfg)
	now := time.Now()
	testsupport.RecordRun(t, store, "11111111-aaaa", batch.OperationResize, now.Add(-60*24*time.Hour), 2, 1)
	testsupport.RecordRun(t, store, "22222222-bbbb", batch.OperationRename, now, 3, 0)
	store.Close()

	out, _, err := runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if strings.Index(out, "22222222") > strings.Index(out, "11111111") {
		t.Fatalf("expected newest run first:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"history", "list", "--operation", "resize", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history list --json failed: %v", err)
	}
	var runs []runView
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "11111111-aaaa" {
		t.Fatalf("unexpected filtered runs %+v", runs)
	}

	out, _, err = runCLI(t, []string{"history", "show", "11111111"}, env.configPath)
	if err != nil {
		t.Fatalf("history show failed: %v", err)
	}
	if !strings.Contains(out, "boom") || !strings.Contains(out, "1 error(s) occurred") {
		t.Fatalf("expected failures in show output:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"history", "prune", "--older-than", "720h"}, env.configPath)
	if err != nil {
		t.Fatalf("history prune failed: %v", err)
	}
	if !strings.Contains(out, "Removed 1 runs older than 30d") {
		t.Fatalf("unexpected prune output %q", out)
	}

	if _, _, err := runCLI(t, []string{"history", "show", "11111111"}, env.configPath); err == nil {
		t.Fatal("expected pruned run to be missing")
	}
}

func TestHistoryListEmptyAndBadOperation(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"history", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if strings.TrimSpace(out) != "No runs recorded" {
		t.Fatalf("unexpected output %q", out)
	}
	if _, _, err := runCLI(t, []string{"history", "list", "--operation", "blur"}, env.configPath); err == nil {
		t.Fatal("expected unknown operation to fail")
	}
}
