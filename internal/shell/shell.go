// Package shell runs an interactive read-execute-print loop over a store.
package shell

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"txkv/internal/command"
	"txkv/internal/engine"
)

const (
	DefaultPrompt = ">> "
	// EndCommand closes the session without waiting for end of input.
	EndCommand = "END"
	// DefaultMaxLineBytes bounds one input line; longer lines are rejected
	// as unexpected input and skipped.
	DefaultMaxLineBytes = 16 << 20
	farewell            = "Ending connection!"
)

var errLineTooLong = errors.New("input line too long")

type Config struct {
	Prompt       string
	MaxLineBytes int
	Logger       *slog.Logger
}

// Shell feeds lines from a reader to a shared store. Several shells may
// share one StoreManager; every line runs as one exclusive request.
type Shell struct {
	mgr     *engine.StoreManager[string, string]
	prompt  string
	maxLine int
	logger  *slog.Logger
}

func New(mgr *engine.StoreManager[string, string], cfg Config) *Shell {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	maxLine := cfg.MaxLineBytes
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	return &Shell{mgr: mgr, prompt: cfg.Prompt, maxLine: maxLine, logger: logger}
}

// Run processes lines from in until END, end of input, or a store error.
func (s *Shell) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	session := uuid.New()
	logger := s.logger.With("session", session.String())
	logger.Info("session started")

	reader := bufio.NewReader(in)
	lines := 0
	for {
		if s.prompt != "" {
			if _, err := io.WriteString(out, s.prompt); err != nil {
				return fmt.Errorf("write prompt: %w", err)
			}
		}
		line, err := readLine(reader, s.maxLine)
		if errors.Is(err, io.EOF) {
			fmt.Fprintf(out, "\n%s\n", farewell)
			logger.Info("session ended", "reason", "eof", "lines", lines)
			return nil
		}
		if errors.Is(err, errLineTooLong) {
			lines++
			logger.Warn("skipped oversized line", "line", lines, "limit", s.maxLine)
			if _, err := fmt.Fprintln(out, command.ErrUnexpectedInput.Error()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		if line == EndCommand {
			logger.Info("session ended", "reason", "end", "lines", lines)
			return nil
		}
		lines++

		var output string
		var hasOutput bool
		err = s.mgr.Exec(ctx, func(db engine.Database[string, string]) {
			output, hasOutput = command.Execute(db, line)
		})
		if err != nil {
			return fmt.Errorf("execute line %d: %w", lines, err)
		}
		logger.Debug("executed", "line", line, "output", output)
		if hasOutput {
			if _, err := fmt.Fprintln(out, output); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
	}
}

// readLine returns the next line without its trailing "\n" or "\r\n". A
// final line lacking a newline is still returned; io.EOF is reported only
// once nothing is left. A line longer than limit bytes is consumed in full
// and reported as errLineTooLong.
func readLine(r *bufio.Reader, limit int) (string, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			buf = append(buf, chunk...)
			// two bytes of slack for the line terminator
			if len(buf) > limit+2 {
				tooLong = true
				buf = nil
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		if err != nil && len(buf) == 0 && !tooLong {
			return "", io.EOF
		}
		break
	}
	line := bytes.TrimSuffix(buf, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if tooLong || len(line) > limit {
		return "", errLineTooLong
	}
	return string(line), nil
}
