package errors

import (
	"errors"
	"fmt"
)

type ResourceNotFoundError struct {
	resource string
	id       string
}

func NewResourceNotFoundError(resource, id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{resource: resource, id: id}
}

func NewCallNotFoundError(id string) *ResourceNotFoundError {
	return NewResourceNotFoundError("call", id)
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.resource, e.id)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

// UnknownFunctionError is reported by a worker unit when the requested
// function is not part of its task registry.
type UnknownFunctionError struct {
	Name string
}

func NewUnknownFunctionError(name string) *UnknownFunctionError {
	return &UnknownFunctionError{Name: name}
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function: %q", e.Name)
}

func IsUnknownFunctionError(err error) bool {
	var e *UnknownFunctionError
	return errors.As(err, &e)
}

// TaskExecutionError carries the failure raised by a task body.
type TaskExecutionError struct {
	Function string
	Message  string
}

func NewTaskExecutionError(function, message string) *TaskExecutionError {
	return &TaskExecutionError{Function: function, Message: message}
}

func (e *TaskExecutionError) Error() string {
	return fmt.Sprintf("task %q failed: %s", e.Function, e.Message)
}

func IsTaskExecutionError(err error) bool {
	var e *TaskExecutionError
	return errors.As(err, &e)
}

type SpawnFailureError struct {
	index int
	err   error
}

func NewSpawnFailureError(index int, err error) *SpawnFailureError {
	return &SpawnFailureError{index: index, err: err}
}

func (e *SpawnFailureError) Error() string {
	return fmt.Sprintf("failed to spawn worker %d: %v", e.index, e.err)
}

func (e *SpawnFailureError) Unwrap() error {
	return e.err
}

func IsSpawnFailureError(err error) bool {
	var e *SpawnFailureError
	return errors.As(err, &e)
}

type QueueFullError struct {
	capacity int
}

func NewQueueFullError(capacity int) *QueueFullError {
	return &QueueFullError{capacity: capacity}
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("task queue is full (capacity %d)", e.capacity)
}

func IsQueueFullError(err error) bool {
	var e *QueueFullError
	return errors.As(err, &e)
}

type SchedulerClosedError struct{}

func NewSchedulerClosedError() *SchedulerClosedError {
	return &SchedulerClosedError{}
}

func (e *SchedulerClosedError) Error() string {
	return "scheduler is closed"
}

func IsSchedulerClosedError(err error) bool {
	var e *SchedulerClosedError
	return errors.As(err, &e)
}

type InvalidPoolSizeError struct {
	size int
}

func NewInvalidPoolSizeError(size int) *InvalidPoolSizeError {
	return &InvalidPoolSizeError{size: size}
}

func (e *InvalidPoolSizeError) Error() string {
	return fmt.Sprintf("invalid pool size %d: must be at least 1", e.size)
}

func IsInvalidPoolSizeError(err error) bool {
	var e *InvalidPoolSizeError
	return errors.As(err, &e)
}
