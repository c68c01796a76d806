package cmdlog

import (
	"errors"

	"twexport/internal/errs"
	"twexport/internal/logging"
	"twexport/internal/metrics"
)

func Run(cmd string, f func() error) error {
	metrics.IncCommandRun(cmd)
	err := f()
	if err != nil {
		kind := errs.KindOf(err)
		metrics.IncCommandError(cmd, string(kind))
		fields := map[string]any{"error": err.Error(), "kind": string(kind), "exit_code": errs.ExitCode(err)}
		var te *errs.Error
		if errors.As(err, &te) {
			fields["code"] = te.Code
			fields["correlation_id"] = te.CorrelationID
		}
		logging.Error(cmd+"_error", fields)
	} else {
		logging.Info(cmd+"_ok", nil)
	}
	return err
}
