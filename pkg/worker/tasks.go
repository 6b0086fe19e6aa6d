package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

const (
	FunctionSum = "sum"
	FunctionLog = "log"
)

// Task is the body of a registered function. It receives the raw JSON
// arguments and returns a JSON-encodable value.
type Task func(ctx context.Context, args json.RawMessage) (any, error)

// Registry is the closed set of functions a unit can execute. It is built
// once and never mutated afterwards, so units can share it.
type Registry struct {
	tasks map[string]Task
}

func NewRegistry(tasks map[string]Task) *Registry {
	r := &Registry{tasks: make(map[string]Task, len(tasks))}
	for name, t := range tasks {
		r.tasks[name] = t
	}
	return r
}

// DefaultRegistry holds the built-in functions: sum and log.
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]Task{
		FunctionSum: Sum,
		FunctionLog: Log,
	})
}

func (r *Registry) Lookup(name string) (Task, bool) {
	t, ok := r.tasks[name]
	return t, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sum reduces a list of numbers to their total. An empty list sums to 0.
func Sum(ctx context.Context, args json.RawMessage) (any, error) {
	var nums []float64
	if err := decodeArgs(args, &nums); err != nil {
		return nil, err
	}

	total := 0.0
	for _, n := range nums {
		total += n
	}
	return total, nil
}

// Log writes every value as its own log line and produces no value.
func Log(ctx context.Context, args json.RawMessage) (any, error) {
	var values []string
	if err := decodeArgs(args, &values); err != nil {
		return nil, err
	}

	logger := zap.S().Named("log_task")
	for _, v := range values {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Info(v)
	}
	return nil, nil
}

func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
