package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/etnz/realized/server"
	"github.com/gin-gonic/gin"
	"github.com/google/subcommands"
)

type serveCmd struct {
	data   dataFlags
	listen string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the realized gains HTTP API" }
func (*serveCmd) Usage() string {
	return `rgc serve [-b <date>] [-listen <addr>]

  Serves GET /api/metrics, GET /api/metrics/:date/symbols, /healthz and the
  Prometheus /metrics until interrupted.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	c.data.SetFlags(f)
	f.StringVar(&c.listen, "listen", "", "Address to listen on. Defaults to the configured listen address.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	baseline, txs, err := c.data.load(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		return subcommands.ExitFailure
	}
	addr := cfg.Listen
	if c.listen != "" {
		addr = c.listen
	}

	gin.SetMode(gin.ReleaseMode)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	srv := server.New(baseline, txs, cfg.ComputePolicy(), slog.Default())
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error serving: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
