package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"twexport/internal/cmdlog"
	"twexport/internal/config"
	"twexport/internal/errs"
	"twexport/internal/jobs"
	"twexport/internal/logging"
	"twexport/internal/metrics"
	"twexport/internal/model"
	"twexport/internal/sink"
	"twexport/internal/theme"
	"twexport/internal/xclient"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "init":
			os.Exit(cmdInit(args[1:]))
		case "help", "-h", "--help":
			printHelp()
			return
		}
	}
	os.Exit(cmdExport(args))
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: twexport [flags]")
	fmt.Println("       twexport init [-path ./twexport.yaml]")
	fmt.Println("Flags:")
	fmt.Println("  -u handle  -p password  -d days (60)  -o output dir  -a account  -t csv|sqlite|xlsx")
	fmt.Println("  -config file  -max-polls n  -poll-interval d  -poll-timeout d  -metrics-addr addr")
	fmt.Println("  -log-level level  -encoding name  -bom  -quiet")
}

func cmdInit(args []string) int {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./twexport.yaml", "path to write config")
	_ = fs.Parse(args)
	if err := config.Save(*path, config.Default()); err != nil {
		theme.Fail(err)
		return 1
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
	return 0
}

func cmdExport(args []string) int {
	cfg, opts, err := loadConfig(args, os.Stderr)
	if err != nil {
		err = errs.Wrap(errs.KindConfig, "load config", err)
		theme.Fail(err)
		return errs.ExitCode(err)
	}
	if err := logging.SetLevel(cfg.Logging.Level); err != nil {
		theme.Fail(err)
		return 2
	}
	logging.SetRunID(uuid.New().String())
	defer logging.Sync()
	metrics.StartServer(cfg.Metrics.Addr)
	if !opts.quiet {
		theme.PrintBanner()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := xclient.NewHTTPClient(xclient.OptionsFromConfig(cfg))
	if err != nil {
		theme.Fail(err)
		return 1
	}
	login := func(ctx context.Context, creds model.Credentials) (jobs.ExportClient, error) {
		sess, err := client.Login(ctx, creds)
		if err != nil {
			return nil, err
		}
		logging.Debug("session_ready", map[string]any{"handle": sess.Handle(), "cookies": len(sess.Cookies())})
		return sess, nil
	}

	var art sink.Artifact
	err = cmdlog.Run("export", func() error {
		var err error
		art, err = jobs.RunExport(ctx, cfg, login, time.Now())
		return err
	})
	if err != nil {
		theme.Fail(err)
		return errs.ExitCode(err)
	}
	theme.Done(os.Stdout, artifactLabel(art.Type), art.Path, art.Rows)
	return 0
}

func artifactLabel(t config.OutputType) string {
	if t == config.OutputSQLite {
		return "Db file"
	}
	return strings.ToUpper(t.Ext())
}
