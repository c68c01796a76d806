package jobs

import (
	"context"
	"errors"
	"time"

	"twexport/internal/config"
	"twexport/internal/daterange"
	"twexport/internal/errs"
	"twexport/internal/logging"
	"twexport/internal/metrics"
	"twexport/internal/model"
)

// ExportClient is the authenticated side of the export protocol.
type ExportClient interface {
	ExportStatus(ctx context.Context, account string, r daterange.Range) (model.ExportStatus, error)
	Bundle(ctx context.Context, account string, r daterange.Range) (string, error)
}

// PollPolicy bounds the status loop.
type PollPolicy struct {
	Interval    time.Duration
	Multiplier  float64
	MaxInterval time.Duration
	// 0 means unlimited
	MaxAttempts int
	// 0 means no deadline beyond the caller's context
	Timeout       time.Duration
	ReadyStatuses []string
}

// PolicyFromConfig maps the poll and export sections of cfg.
func PolicyFromConfig(cfg config.Config) PollPolicy {
	return PollPolicy{
		Interval:      cfg.Poll.Interval,
		Multiplier:    cfg.Poll.Multiplier,
		MaxInterval:   cfg.Poll.MaxInterval,
		MaxAttempts:   cfg.Poll.MaxAttempts,
		Timeout:       cfg.Poll.Timeout,
		ReadyStatuses: cfg.Export.ReadyStatuses,
	}
}

func (p PollPolicy) next(d time.Duration) time.Duration {
	if p.Multiplier > 1 {
		d = time.Duration(float64(d) * p.Multiplier)
	}
	if p.MaxInterval > 0 && d > p.MaxInterval {
		d = p.MaxInterval
	}
	return d
}

// Poller drives submit -> poll -> bundle against one session.
type Poller struct {
	client ExportClient
	policy PollPolicy
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewPoller(client ExportClient, policy PollPolicy) *Poller {
	if len(policy.ReadyStatuses) == 0 {
		policy.ReadyStatuses = model.DefaultReadyStatuses
	}
	return &Poller{client: client, policy: policy, sleep: sleepCtx}
}

// FetchExport polls until the export leaves Pending, then downloads it.
// Statuses outside the ready list fail with KindExportFailed; running out of
// attempts or time fails with KindPollTimeout.
func (p *Poller) FetchExport(ctx context.Context, account string, r daterange.Range) (string, error) {
	pctx := ctx
	if p.policy.Timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, p.policy.Timeout)
		defer cancel()
	}
	wait := p.policy.Interval
	for attempt := 1; ; attempt++ {
		st, err := p.client.ExportStatus(pctx, account, r)
		if err != nil {
			if timedOut(ctx, pctx, err) {
				return "", errs.Wrap(errs.KindPollTimeout, "poll export", err)
			}
			return "", err
		}
		metrics.IncPoll(string(st))
		logging.Info("export_status", map[string]any{"attempt": attempt, "status": string(st), "account": account})

		switch {
		case st.IsReady(p.policy.ReadyStatuses):
			raw, err := p.client.Bundle(pctx, account, r)
			if err != nil && timedOut(ctx, pctx, err) {
				return "", errs.Wrap(errs.KindPollTimeout, "fetch bundle", err)
			}
			return raw, err
		case !st.IsPending():
			return "", errs.New(errs.KindExportFailed, "poll export", "provider returned status %q", st)
		}

		if p.policy.MaxAttempts > 0 && attempt >= p.policy.MaxAttempts {
			return "", errs.New(errs.KindPollTimeout, "poll export", "still pending after %d attempts", attempt)
		}
		if err := p.sleep(pctx, wait); err != nil {
			if timedOut(ctx, pctx, err) {
				return "", errs.Wrap(errs.KindPollTimeout, "poll export", err)
			}
			return "", err
		}
		wait = p.policy.next(wait)
	}
}

// timedOut is true when the poll deadline, not the caller, ended the attempt.
// err counts as well when it reports a deadline pctx would have hit first,
// such as a rate limiter refusing to wait past it.
func timedOut(parent, pctx context.Context, err error) bool {
	if parent.Err() != nil {
		return false
	}
	if errors.Is(pctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	pd, ok := pctx.Deadline()
	if !ok {
		return false
	}
	if d, ok := parent.Deadline(); ok && !d.After(pd) {
		return false
	}
	return true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
