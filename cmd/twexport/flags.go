package main

import (
	"flag"
	"io"

	"twexport/internal/config"
)

type runOptions struct {
	quiet bool
}

// loadConfig layers defaults, the optional YAML file, TWEXPORT_* env and
// explicitly set flags, in that order, then validates.
func loadConfig(args []string, stderr io.Writer) (config.Config, runOptions, error) {
	fs := flag.NewFlagSet("twexport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath      = fs.String("config", "", "optional YAML config path")
		user         = fs.String("u", "", "handle used to log in (required)")
		pass         = fs.String("p", "", "password (required; or TWEXPORT_CREDENTIALS_PASSWORD)")
		days         = fs.Int("d", 60, "number of previous days to export (provider max 90)")
		outDir       = fs.String("o", "", "output directory (default: current directory)")
		account      = fs.String("a", "", "account to export analytics for (default: -u)")
		outType      = fs.String("t", "csv", "output type: csv, sqlite, xlsx")
		maxPolls     = fs.Int("max-polls", 0, "maximum export status polls (0 = unlimited)")
		pollInterval = fs.Duration("poll-interval", 0, "delay between status polls")
		pollTimeout  = fs.Duration("poll-timeout", 0, "overall polling deadline")
		metricsAddr  = fs.String("metrics-addr", "", "serve /metrics on this address")
		logLevel     = fs.String("log-level", "", "debug, info, warn, error")
		encoding     = fs.String("encoding", "", "csv text encoding (utf-8, windows-1252, utf-16le, ...)")
		bom          = fs.Bool("bom", false, "prefix utf-8 csv output with a byte order mark")
		quiet        = fs.Bool("quiet", false, "suppress the banner")
	)
	if err := fs.Parse(args); err != nil {
		return config.Config{}, runOptions{}, err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return cfg, runOptions{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "u":
			cfg.Account.Username = *user
		case "p":
			cfg.Credentials.Password = *pass
		case "d":
			cfg.Export.Days = *days
		case "o":
			cfg.Output.Dir = *outDir
		case "a":
			cfg.Account.Analytics = *account
		case "t":
			cfg.Output.Type = config.OutputType(*outType)
		case "max-polls":
			cfg.Poll.MaxAttempts = *maxPolls
		case "poll-interval":
			cfg.Poll.Interval = *pollInterval
		case "poll-timeout":
			cfg.Poll.Timeout = *pollTimeout
		case "metrics-addr":
			cfg.Metrics.Addr = *metricsAddr
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "encoding":
			cfg.Output.Encoding = *encoding
		case "bom":
			cfg.Output.BOM = *bom
		}
	})
	if err := cfg.Validate(); err != nil {
		return cfg, runOptions{}, err
	}
	return cfg, runOptions{quiet: *quiet}, nil
}
