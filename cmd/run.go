package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kubev2v/offload-agent/internal/config"
	"github.com/kubev2v/offload-agent/pkg/scheduler"
	"github.com/kubev2v/offload-agent/pkg/worker"
)

func newRunCommand(cfg *config.Configuration) *cobra.Command {
	return &cobra.Command{
		Use:   "run <function> [args...]",
		Short: "Run one call on a local pool and print its outcome",
		Long: `Run one call on a local pool and print its outcome.

Arguments of "sum" are parsed as numbers, any other function receives
them as strings.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			callArgs, err := parseArguments(args[0], args[1:])
			if err != nil {
				return err
			}

			value, err := runOnce(cmd, cfg, args[0], callArgs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("ok:"), value)
			return nil
		},
	}
}

func runOnce(cmd *cobra.Command, cfg *config.Configuration, function string, args any) (json.RawMessage, error) {
	sched := scheduler.NewScheduler(worker.NewLocalSpawner(worker.DefaultRegistry()), poolOptions(cfg)...)
	defer sched.Close()

	if err := sched.Start(cmd.Context(), cfg.Pool.Size); err != nil {
		return nil, err
	}

	type outcome struct {
		value json.RawMessage
		err   error
	}
	done := make(chan outcome, 1)

	_, err := sched.Submit(scheduler.Call{
		FunctionName: function,
		Arguments:    args,
		OnSuccess:    func(v json.RawMessage) { done <- outcome{value: v} },
		OnError:      func(err error) { done <- outcome{err: err} },
	})
	if err != nil {
		return nil, err
	}

	select {
	case o := <-done:
		return o.value, o.err
	case <-cmd.Context().Done():
		return nil, cmd.Context().Err()
	}
}

func parseArguments(function string, raw []string) (any, error) {
	if function != worker.FunctionSum {
		return raw, nil
	}

	nums := make([]float64, 0, len(raw))
	for _, s := range raw {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", s, err)
		}
		nums = append(nums, n)
	}
	return nums, nil
}
