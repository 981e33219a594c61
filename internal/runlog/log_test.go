package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestLog(t *testing.T) (*Log, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit_runs.jsonl")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l, path
}

func appendRuns(t *testing.T, l *Log, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := l.Append(Entry{
			RunID:      NewRunID(),
			Datasource: "prod",
			Databases:  2,
			Tables:     10 + i,
			Findings:   i,
			Report:     "prod_20260830_120000.xlsx",
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
}

func TestChainVerifies(t *testing.T) {
	l, path := newTestLog(t)
	appendRuns(t, l, 5)

	res := Verify(path)
	if !res.Valid {
		t.Fatalf("chain should verify: %+v", res)
	}
	if res.Lines != 5 {
		t.Errorf("expected 5 lines, got %d", res.Lines)
	}
}

func TestFirstEntryReferencesGenesis(t *testing.T) {
	l, path := newTestLog(t)
	appendRuns(t, l, 1)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), GenesisHash) {
		t.Error("first entry must carry the genesis prev_hash")
	}
}

func TestTamperDetected(t *testing.T) {
	l, path := newTestLog(t)
	appendRuns(t, l, 3)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tampered := strings.Replace(string(data), `"datasource":"prod"`, `"datasource":"evil"`, 1)
	if tampered == string(data) {
		t.Fatal("tamper replacement did not apply")
	}
	if err := os.WriteFile(path, []byte(tampered), 0o600); err != nil {
		t.Fatal(err)
	}

	res := Verify(path)
	if res.Valid {
		t.Fatal("tampered log must not verify")
	}
	if res.ErrorLine != 2 {
		t.Errorf("expected the break at line 2, got %d (%s)", res.ErrorLine, res.Error)
	}
}

func TestDeletedEntryDetected(t *testing.T) {
	l, path := newTestLog(t)
	appendRuns(t, l, 3)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	// Drop the middle entry
	kept := lines[0] + "\n" + lines[2] + "\n"
	if err := os.WriteFile(path, []byte(kept), 0o600); err != nil {
		t.Fatal(err)
	}

	res := Verify(path)
	if res.Valid {
		t.Fatal("log with a deleted entry must not verify")
	}
}

func TestReopenContinuesChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit_runs.jsonl")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	appendRuns(t, l, 2)
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	l2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l2.Close()
	appendRuns(t, l2, 2)

	res := Verify(path)
	if !res.Valid {
		t.Fatalf("chain should survive reopen: %+v", res)
	}
	if res.Lines != 4 {
		t.Errorf("expected 4 lines, got %d", res.Lines)
	}
}

func TestVerifyMissingFile(t *testing.T) {
	res := Verify(filepath.Join(t.TempDir(), "nope.jsonl"))
	if res.Valid {
		t.Fatal("missing file must not verify")
	}
}

func TestNewRunIDShape(t *testing.T) {
	id := NewRunID()
	if !strings.HasPrefix(id, "r-") {
		t.Errorf("run id must start with r-, got %q", id)
	}
	if len(id) != 14 {
		t.Errorf("expected r- plus 12 hex chars, got %q", id)
	}
	if id == NewRunID() {
		t.Error("run ids should not repeat")
	}
}

func TestAppendSetsTimestamp(t *testing.T) {
	l, path := newTestLog(t)
	if err := l.Append(Entry{RunID: "r-abc", Datasource: "prod"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"ts":"`) || strings.Contains(string(data), `"ts":""`) {
		t.Errorf("timestamp not filled: %s", data)
	}
}
