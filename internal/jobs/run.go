package jobs

import (
	"context"
	"time"

	"twexport/internal/config"
	"twexport/internal/daterange"
	"twexport/internal/logging"
	"twexport/internal/metrics"
	"twexport/internal/model"
	"twexport/internal/report"
	"twexport/internal/sink"
)

// LoginFunc authenticates and returns a client bound to the new session.
type LoginFunc func(ctx context.Context, creds model.Credentials) (ExportClient, error)

// RunExport performs one full export: login, poll, parse, persist.
func RunExport(ctx context.Context, cfg config.Config, login LoginFunc, now time.Time) (sink.Artifact, error) {
	start := time.Now()
	defer metrics.ObserveRunDuration(start)

	out, err := sink.New(cfg.Output)
	if err != nil {
		return sink.Artifact{}, err
	}
	r := daterange.Compute(now, cfg.Export.Days)
	if cfg.Export.Days > daterange.MaxProviderDays {
		logging.Warn("range_exceeds_provider_max", map[string]any{"days": cfg.Export.Days, "max": daterange.MaxProviderDays})
	}
	account := cfg.AnalyticsAccount()
	logging.Info("export_start", map[string]any{"account": account, "start": r.Start, "end": r.End, "output": string(cfg.Output.Type)})
	logging.Debug("export_range", map[string]any{"from": r.From, "to": r.To, "days": r.Days()})

	sess, err := login(ctx, cfg.Creds())
	if err != nil {
		return sink.Artifact{}, err
	}
	raw, err := NewPoller(sess, PolicyFromConfig(cfg)).FetchExport(ctx, account, r)
	if err != nil {
		return sink.Artifact{}, err
	}
	rows, err := report.Parse(raw)
	if err != nil {
		return sink.Artifact{}, err
	}
	if len(report.Body(rows)) == 0 {
		logging.Warn("export_empty", map[string]any{"account": account, "bytes": len(raw)})
	}
	path := sink.Filename(cfg.Output.Dir, r.Start, r.End, cfg.Output.Type)
	art, err := out.Write(ctx, rows, path)
	if err != nil {
		return art, err
	}
	logging.Info("export_done", map[string]any{"path": art.Path, "rows": art.Rows, "elapsed_ms": time.Since(start).Milliseconds()})
	return art, nil
}
