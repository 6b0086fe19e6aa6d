package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/kubev2v/offload-agent/pkg/worker"
)

// SumCall builds a call to the sum function.
func SumCall(nums []float64, onSuccess func(total float64), onError func(err error)) Call {
	return Call{
		FunctionName: worker.FunctionSum,
		Arguments:    nums,
		OnSuccess: func(value json.RawMessage) {
			var total float64
			if err := json.Unmarshal(value, &total); err != nil {
				if onError != nil {
					onError(fmt.Errorf("failed to decode sum result: %w", err))
				}
				return
			}
			if onSuccess != nil {
				onSuccess(total)
			}
		},
		OnError: onError,
	}
}

// LogCall builds a call to the log function.
func LogCall(lines []string, onSuccess func(), onError func(err error)) Call {
	return Call{
		FunctionName: worker.FunctionLog,
		Arguments:    lines,
		OnSuccess: func(json.RawMessage) {
			if onSuccess != nil {
				onSuccess()
			}
		},
		OnError: onError,
	}
}
