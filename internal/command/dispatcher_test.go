package command

import (
	"errors"
	"testing"

	"txkv/internal/engine"
	"txkv/internal/model"
)

// recorder wraps a real store and records which transaction calls were made.
type recorder struct {
	engine.Database[string, string]
	calls []string
}

func (r *recorder) BeginTransaction() {
	r.calls = append(r.calls, "begin")
	r.Database.BeginTransaction()
}

func (r *recorder) RollbackTransaction() bool {
	r.calls = append(r.calls, "rollback")
	return r.Database.RollbackTransaction()
}

func (r *recorder) CommitTransactions() bool {
	r.calls = append(r.calls, "commit")
	return r.Database.CommitTransactions()
}

func newRecorder() *recorder {
	return &recorder{Database: engine.New[string, string]()}
}

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want model.Command
	}{
		{"SET foo bar", model.Command{Op: model.SET, Key: "foo", Value: "bar"}},
		{`SET greeting "hello world"`, model.Command{Op: model.SET, Key: "greeting", Value: "hello world"}},
		{`SET empty ""`, model.Command{Op: model.SET, Key: "empty", Value: ""}},
		{"GET foo", model.Command{Op: model.GET, Key: "foo"}},
		{"  DELETE   foo ", model.Command{Op: model.DELETE, Key: "foo"}},
		{"COUNT bar", model.Command{Op: model.COUNT, Value: "bar"}},
		{"BEGIN", model.Command{Op: model.BEGIN}},
		{"ROLLBACK", model.Command{Op: model.ROLLBACK}},
		{"COMMIT", model.Command{Op: model.COMMIT}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.line)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.line, err)
		}
		if got != tt.want {
			t.Fatalf("parse %q: got %+v want %+v", tt.line, got, tt.want)
		}
	}
}

func TestParamCountErrors(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"SET foo", "Recognized command SET, but invalid number of parameters specified"},
		{"SET foo bar baz", "Recognized command SET, but invalid number of parameters specified"},
		{"GET foo bar", "Recognized command GET, but invalid number of parameters specified"},
		{"GET", "Recognized command GET, but invalid number of parameters specified"},
		{"DELETE foo bar", "Recognized command DELETE, but invalid number of parameters specified"},
		{"COUNT foo bar", "Recognized command COUNT, but invalid number of parameters specified"},
		{"BEGIN now", "Recognized command BEGIN, but invalid number of parameters specified"},
	}
	for _, tt := range tests {
		_, err := Parse(tt.line)
		var pce *ParamCountError
		if !errors.As(err, &pce) {
			t.Fatalf("parse %q: expected ParamCountError, got %v", tt.line, err)
		}
		out, ok := Execute(newRecorder(), tt.line)
		if !ok || out != tt.want {
			t.Fatalf("execute %q: got (%q, %v) want %q", tt.line, out, ok, tt.want)
		}
	}
}

func TestUnexpectedInput(t *testing.T) {
	for _, line := range []string{"EMMA foo bar", "set foo bar", "SETX foo bar", `SET foo "bar`} {
		out, ok := Execute(newRecorder(), line)
		if !ok || out != "Unexpected Input. Nothing happened." {
			t.Fatalf("execute %q: got (%q, %v)", line, out, ok)
		}
	}
}

func TestExecuteBlankAndComment(t *testing.T) {
	for _, line := range []string{"", "   ", "# just a note"} {
		if out, ok := Execute(newRecorder(), line); ok {
			t.Fatalf("execute %q: unexpected output %q", line, out)
		}
	}
}

func TestExecuteReadsAndWrites(t *testing.T) {
	db := newRecorder()

	if out, ok := Execute(db, "SET foo bar"); ok {
		t.Fatalf("SET produced output %q", out)
	}
	if v, _ := db.Get("foo"); v != "bar" {
		t.Fatalf("SET did not store value, got %q", v)
	}
	if out, _ := Execute(db, "GET foo"); out != "bar" {
		t.Fatalf("GET: got %q want bar", out)
	}

	Execute(db, "SET emma bar")
	if out, _ := Execute(db, "COUNT bar"); out != "2" {
		t.Fatalf("COUNT: got %q want 2", out)
	}

	Execute(db, "DELETE foo")
	if out, _ := Execute(db, "GET foo"); out != NullOutput {
		t.Fatalf("GET after DELETE: got %q want %q", out, NullOutput)
	}

	Execute(db, `SET blank ""`)
	out, ok := Execute(db, "GET blank")
	if !ok || out != "" {
		t.Fatalf("GET of empty value: got (%q, %v) want (\"\", true)", out, ok)
	}
}

func TestExecuteTransactions(t *testing.T) {
	db := newRecorder()

	Execute(db, "BEGIN")
	Execute(db, "ROLLBACK")
	Execute(db, "BEGIN")
	Execute(db, "COMMIT")

	want := []string{"begin", "rollback", "begin", "commit"}
	if len(db.calls) != len(want) {
		t.Fatalf("calls: got %v want %v", db.calls, want)
	}
	for i := range want {
		if db.calls[i] != want[i] {
			t.Fatalf("calls: got %v want %v", db.calls, want)
		}
	}

	for _, line := range []string{"ROLLBACK", "COMMIT"} {
		if out, ok := Execute(db, line); !ok || out != NoTransactionOutput {
			t.Fatalf("%s while idle: got (%q, %v)", line, out, ok)
		}
	}
}

func TestExecuteNestedSession(t *testing.T) {
	db := newRecorder()
	for _, line := range []string{
		"SET k v2",
		"BEGIN",
		"SET k v1",
		"BEGIN",
		"SET k v3",
		"ROLLBACK",
		"ROLLBACK",
	} {
		Execute(db, line)
	}
	if out, _ := Execute(db, "GET k"); out != "v2" {
		t.Fatalf("GET k: got %q want v2", out)
	}
}

func TestQuotingRules(t *testing.T) {
	tests := []struct {
		line string
		key  string
		want string
	}{
		{`SET k a\b`, "k", "ab"},
		{`SET k 'a\b'`, "k", `a\b`},
		{`SET k "a\\b"`, "k", `a\b`},
		{`SET h '#tag'`, "h", "#tag"},
		{`SET h a#b`, "h", "a#b"},
	}
	for _, tt := range tests {
		db := newRecorder()
		if out, ok := Execute(db, tt.line); ok {
			t.Fatalf("execute %q: unexpected output %q", tt.line, out)
		}
		got, ok := db.Get(tt.key)
		if !ok || got != tt.want {
			t.Fatalf("execute %q: stored (%q, %v) want %q", tt.line, got, ok, tt.want)
		}
	}

	out, ok := Execute(newRecorder(), "SET h #tag")
	if want := "Recognized command SET, but invalid number of parameters specified"; !ok || out != want {
		t.Fatalf("SET h #tag: got (%q, %v) want %q", out, ok, want)
	}
}
