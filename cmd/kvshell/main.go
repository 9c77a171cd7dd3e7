package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	. "github.com/stevegt/goadapt"

	"txkv/internal/engine"
	"txkv/internal/shell"
)

var version = "dev"

type cli struct {
	Prompt         string           `default:">> " env:"KV_PROMPT" help:"Prompt shown before each command."`
	Script         string           `type:"existingfile" env:"KV_SCRIPT" help:"Read commands from this file instead of stdin."`
	LogLevel       string           `default:"warn" enum:"debug,info,warn,error" env:"KV_LOG_LEVEL" help:"Log level (debug, info, warn, error)."`
	EnqueueTimeout time.Duration    `default:"5s" env:"KV_ENQUEUE_TIMEOUT" help:"How long a command waits for the store to accept it."`
	MaxPending     int              `default:"1024" env:"KV_MAX_PENDING" help:"Maximum number of queued store requests."`
	MaxLine        int              `default:"16777216" env:"KV_MAX_LINE" help:"Longest accepted input line in bytes; longer lines are skipped."`
	Version        kong.VersionFlag `help:"Print version and exit."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Exit); err != nil {
		fmt.Fprintf(os.Stderr, "kvshell: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, exit func(int)) (err error) {
	defer Return(&err)

	var c cli
	parser, err := kong.New(&c,
		kong.Name("kvshell"),
		kong.Description("Interactive transactional key-value store."),
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
		kong.Vars{"version": version},
	)
	Ck(err)
	_, err = parser.Parse(args)
	Ck(err)

	var level slog.Level
	err = level.UnmarshalText([]byte(c.LogLevel))
	Ck(err, "invalid log level %q", c.LogLevel)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	mgr, cancel, err := engine.NewStoreManager[string, string](ctx, engine.StoreManagerCfg{
		EnqueueTimeout: c.EnqueueTimeout,
		MaxPending:     c.MaxPending,
		Logger:         logger,
	})
	Ck(err)
	defer cancel()

	in := stdin
	prompt := c.Prompt
	if c.Script != "" {
		f, err := os.Open(c.Script)
		Ck(err)
		defer f.Close()
		in = f
		prompt = ""
		logger.Info("running script", "path", c.Script)
	}

	sh := shell.New(mgr, shell.Config{Prompt: prompt, MaxLineBytes: c.MaxLine, Logger: logger})
	err = sh.Run(ctx, in, stdout)
	Ck(err)
	return
}
