package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/Pesokrava/product_reviews/internal/adminclient"
	"github.com/Pesokrava/product_reviews/internal/config"
)

// CLI is the top-level command structure for review-admin.
type CLI struct {
	APIURL  string        `name:"api-url" default:"${api_url}" help:"Base URL of the product reviews API."`
	RPS     int           `name:"rps" default:"${rps}" help:"Maximum requests per second sent to the API."`
	Timeout time.Duration `default:"${timeout}" help:"Timeout of a single API request."`
	Output  string        `short:"o" enum:"table,yaml" default:"table" help:"Output format (table or yaml)."`

	List           ListCmd           `cmd:"" help:"List reviews for moderation."`
	CycleStatus    CycleStatusCmd    `cmd:"" help:"Move reviews to their next status (approved, pending, flagged)."`
	ToggleVerified ToggleVerifiedCmd `cmd:"" help:"Flip the verified flag of reviews."`
	RefreshStats   RefreshStatsCmd   `cmd:"" help:"Recompute review stats for products."`
	Random         RandomCmd         `cmd:"" help:"Draw a random sample of reviews."`
}

// app is bound into every command's Run method.
type app struct {
	ctx    context.Context
	client *adminclient.Client
	out    io.Writer
	format string
}

func main() {
	vars := kong.Vars{
		"api_url": "http://localhost:9000",
		"rps":     "5",
		"timeout": "20s",
	}
	if cfg, err := config.Load(); err == nil {
		vars["api_url"] = cfg.Admin.BaseURL
		vars["rps"] = strconv.Itoa(cfg.Admin.RequestsPerSec)
		vars["timeout"] = cfg.Admin.Timeout.String()
	}

	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name("review-admin"),
		kong.Description("Moderate product reviews through the admin API."),
		kong.UsageOnError(),
		vars,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "review-admin: %v\n", err)
		os.Exit(1)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = kctx.Run(&app{
		ctx:    ctx,
		client: adminclient.New(cli.APIURL, cli.RPS, cli.Timeout),
		out:    os.Stdout,
		format: cli.Output,
	})
	kctx.FatalIfErrorf(err)
}
