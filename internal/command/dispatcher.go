// Package command maps the line-oriented text protocol onto a store.
//
// Lines are split with shell quoting rules, so `SET greeting "hello world"`
// stores a value containing a space and `SET k ""` stores the empty string.
// Outside single quotes a backslash escapes the next character and is
// dropped: `SET k a\b` stores "ab". A '#' at the start of a token begins a
// comment running to the end of the line, so `SET h #tag` is missing its
// value. Single quotes keep both literal: `SET k 'a\b'`, `SET h '#tag'`.
package command

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/shlex"

	"txkv/internal/engine"
	"txkv/internal/model"
)

const (
	// NullOutput is printed by GET for a key with no value.
	NullOutput = "NULL"
	// NoTransactionOutput is printed by ROLLBACK and COMMIT when idle.
	NoTransactionOutput = "NO TRANSACTION"
	unexpectedInput     = "Unexpected Input. Nothing happened."
)

var ErrUnexpectedInput = errors.New(unexpectedInput)

// ParamCountError reports a recognized command with the wrong number of
// parameters.
type ParamCountError struct {
	Op model.OpsType
}

func (e *ParamCountError) Error() string {
	return fmt.Sprintf("Recognized command %s, but invalid number of parameters specified", e.Op)
}

// ErrEmpty is returned by Parse for lines holding no tokens.
var ErrEmpty = errors.New("empty command")

// Parse splits a line into a command.
func Parse(line string) (model.Command, error) {
	fields, err := shlex.Split(line)
	if err != nil {
		return model.Command{}, ErrUnexpectedInput
	}
	if len(fields) == 0 {
		return model.Command{}, ErrEmpty
	}

	op, ok := model.LookupOp(fields[0])
	if !ok {
		return model.Command{}, ErrUnexpectedInput
	}
	params := fields[1:]
	if len(params) != op.Arity() {
		return model.Command{}, &ParamCountError{Op: op}
	}

	cmd := model.Command{Op: op}
	switch op {
	case model.SET:
		cmd.Key, cmd.Value = params[0], params[1]
	case model.GET, model.DELETE:
		cmd.Key = params[0]
	case model.COUNT:
		cmd.Value = params[0]
	}
	return cmd, nil
}

// Execute parses line and applies it to db. It returns the text to show
// the user and whether there is any. Malformed input is reported through
// the returned text and leaves db untouched.
func Execute(db engine.Database[string, string], line string) (string, bool) {
	cmd, err := Parse(line)
	if errors.Is(err, ErrEmpty) {
		return "", false
	}
	if err != nil {
		return err.Error(), true
	}
	return Apply(db, cmd)
}

// Apply runs an already parsed command.
func Apply(db engine.Database[string, string], cmd model.Command) (string, bool) {
	switch cmd.Op {
	case model.SET:
		db.Set(cmd.Key, cmd.Value)
	case model.GET:
		if v, ok := db.Get(cmd.Key); ok {
			return v, true
		}
		return NullOutput, true
	case model.DELETE:
		db.Delete(cmd.Key)
	case model.COUNT:
		return strconv.Itoa(db.Count(cmd.Value)), true
	case model.BEGIN:
		db.BeginTransaction()
	case model.ROLLBACK:
		if !db.RollbackTransaction() {
			return NoTransactionOutput, true
		}
	case model.COMMIT:
		if !db.CommitTransactions() {
			return NoTransactionOutput, true
		}
	default:
		return unexpectedInput, true
	}
	return "", false
}
