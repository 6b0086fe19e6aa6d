package scheduler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	srvErrors "github.com/kubev2v/offload-agent/pkg/errors"
	"github.com/kubev2v/offload-agent/pkg/scheduler"
	"github.com/kubev2v/offload-agent/pkg/worker"
)

type outcome struct {
	value json.RawMessage
	err   error
}

// collect returns a call for fn whose outcome lands on the returned channel.
func collect(fn string, args any) (scheduler.Call, chan outcome) {
	c := make(chan outcome, 2)
	return scheduler.Call{
		FunctionName: fn,
		Arguments:    args,
		OnSuccess:    func(v json.RawMessage) { c <- outcome{value: v} },
		OnError:      func(err error) { c <- outcome{err: err} },
	}, c
}

type gate struct {
	release chan struct{}
	running atomic.Int32
	maxSeen atomic.Int32
	mu      sync.Mutex
	order   []string
}

func newGate() *gate {
	return &gate{release: make(chan struct{})}
}

// task blocks until the gate opens, tracking how many bodies run at once and
// in which order they started.
func (g *gate) task(ctx context.Context, args json.RawMessage) (any, error) {
	var name string
	_ = json.Unmarshal(args, &name)

	g.mu.Lock()
	g.order = append(g.order, name)
	g.mu.Unlock()

	n := g.running.Add(1)
	defer g.running.Add(-1)
	for {
		m := g.maxSeen.Load()
		if n <= m || g.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return name, nil
}

func (g *gate) started() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.order...)
}

func testRegistry(g *gate) *worker.Registry {
	return worker.NewRegistry(map[string]worker.Task{
		"sum":  worker.Sum,
		"log":  worker.Log,
		"wait": g.task,
		"throw": func(ctx context.Context, args json.RawMessage) (any, error) {
			panic("task exploded")
		},
	})
}

var _ = Describe("Scheduler", func() {
	var (
		ctx context.Context
		s   *scheduler.Scheduler
		g   *gate
	)

	BeforeEach(func() {
		ctx = context.Background()
		g = newGate()
	})

	AfterEach(func() {
		select {
		case <-g.release:
		default:
			close(g.release)
		}
		if s != nil {
			s.Close()
		}
	})

	newScheduler := func(opts ...scheduler.Option) *scheduler.Scheduler {
		return scheduler.NewScheduler(worker.NewLocalSpawner(testRegistry(g)), opts...)
	}

	Describe("Submit", func() {
		It("should queue the third of three sums on a pool of two until a slot frees", func() {
			release := make(chan struct{})
			gatedSum := func(ctx context.Context, args json.RawMessage) (any, error) {
				select {
				case <-release:
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				return worker.Sum(ctx, args)
			}
			s = scheduler.NewScheduler(worker.NewLocalSpawner(worker.NewRegistry(map[string]worker.Task{"sum": gatedSum})))
			Expect(s.Start(ctx, 2)).To(Succeed())

			results := make(chan float64, 3)
			onErr := func(err error) { Fail(err.Error()) }
			for _, nums := range [][]float64{{1, 2, 3}, {10, 20}, {}} {
				_, err := s.Submit(scheduler.SumCall(nums, func(total float64) { results <- total }, onErr))
				Expect(err).NotTo(HaveOccurred())
			}

			status := func() scheduler.PoolStatus {
				st, err := s.Status(ctx)
				Expect(err).NotTo(HaveOccurred())
				return st
			}
			Eventually(func() int { return status().InFlight }, time.Second).Should(Equal(2))
			Consistently(func() int { return status().Queued }, 100*time.Millisecond).Should(Equal(1))
			Expect(status().Ready()).To(Equal(0))
			Expect(results).NotTo(Receive())

			close(release)

			var got []float64
			for range 3 {
				var total float64
				Eventually(results, 2*time.Second).Should(Receive(&total))
				got = append(got, total)
			}
			Expect(got).To(ConsistOf(6.0, 30.0, 0.0))
			Expect(status().Queued).To(Equal(0))
			Expect(status().Ready()).To(Equal(2))
		})

		It("should assign an ID when none is given", func() {
			s = newScheduler()
			Expect(s.Start(ctx, 1)).To(Succeed())

			call, results := collect("sum", []float64{1})
			id, err := s.Submit(call)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).NotTo(BeEmpty())
			Eventually(results, time.Second).Should(Receive())

			call, results = collect("sum", []float64{1})
			call.ID = "my-call"
			id, err = s.Submit(call)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("my-call"))
			Eventually(results, time.Second).Should(Receive())
		})

		It("should run log calls", func() {
			s = newScheduler()
			Expect(s.Start(ctx, 1)).To(Succeed())

			done := make(chan struct{})
			_, err := s.Submit(scheduler.LogCall([]string{"a", "b"}, func() { close(done) }, func(err error) { Fail(err.Error()) }))
			Expect(err).NotTo(HaveOccurred())
			Eventually(done, time.Second).Should(BeClosed())
		})

		It("should reject arguments that cannot be encoded", func() {
			s = newScheduler()

			_, err := s.Submit(scheduler.Call{FunctionName: "sum", Arguments: make(chan int)})
			Expect(err).To(HaveOccurred())

			_, err = s.Submit(scheduler.Call{FunctionName: "sum", Arguments: json.RawMessage(`[1,`)})
			Expect(err).To(HaveOccurred())
		})

		It("should pass raw JSON arguments through", func() {
			s = newScheduler()
			Expect(s.Start(ctx, 1)).To(Succeed())

			call, results := collect("sum", json.RawMessage(`[4,5]`))
			_, err := s.Submit(call)
			Expect(err).NotTo(HaveOccurred())

			var o outcome
			Eventually(results, time.Second).Should(Receive(&o))
			Expect(o.err).NotTo(HaveOccurred())
			Expect(string(o.value)).To(Equal("9"))
		})
	})

	Describe("Dispatch", func() {
		It("should never run more calls than workers", func() {
			s = newScheduler()
			Expect(s.Start(ctx, 3)).To(Succeed())

			var outcomes []chan outcome
			for range 12 {
				call, c := collect("wait", "x")
				_, err := s.Submit(call)
				Expect(err).NotTo(HaveOccurred())
				outcomes = append(outcomes, c)
			}

			Eventually(g.running.Load, time.Second).Should(BeEquivalentTo(3))
			Consistently(g.running.Load, 200*time.Millisecond).Should(BeEquivalentTo(3))

			st, err := s.Status(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.InFlight).To(Equal(3))
			Expect(st.Queued).To(Equal(9))
			Expect(st.Ready()).To(Equal(0))

			close(g.release)
			for _, c := range outcomes {
				Eventually(c, 2*time.Second).Should(Receive())
			}
			Expect(g.maxSeen.Load()).To(BeEquivalentTo(3))
		})

		It("should dispatch queued calls in FIFO order", func() {
			s = newScheduler()
			Expect(s.Start(ctx, 1)).To(Succeed())

			var outcomes []chan outcome
			for _, name := range []string{"first", "a", "b", "c"} {
				call, c := collect("wait", name)
				_, err := s.Submit(call)
				Expect(err).NotTo(HaveOccurred())
				outcomes = append(outcomes, c)
			}

			Eventually(g.started, time.Second).Should(Equal([]string{"first"}))
			close(g.release)

			for _, c := range outcomes {
				Eventually(c, 2*time.Second).Should(Receive())
			}
			Expect(g.started()).To(Equal([]string{"first", "a", "b", "c"}))
		})

		It("should pick the lowest-index ready slot", func() {
			s = newScheduler()
			Expect(s.Start(ctx, 3)).To(Succeed())

			call, _ := collect("wait", "x")
			_, err := s.Submit(call)
			Expect(err).NotTo(HaveOccurred())

			Eventually(func() []scheduler.SlotStatus {
				st, _ := s.Status(ctx)
				var statuses []scheduler.SlotStatus
				for _, sl := range st.Slots {
					statuses = append(statuses, sl.Status)
				}
				return statuses
			}, time.Second).Should(Equal([]scheduler.SlotStatus{
				scheduler.SlotProcessing, scheduler.SlotReady, scheduler.SlotReady,
			}))
		})

		It("should call back exactly once per call", func() {
			s = newScheduler()
			Expect(s.Start(ctx, 4)).To(Succeed())

			const total = 100
			var mu sync.Mutex
			counts := make(map[string]int)
			var wg sync.WaitGroup
			wg.Add(total)

			record := func(id string) {
				mu.Lock()
				counts[id]++
				mu.Unlock()
				wg.Done()
			}

			for i := range total {
				fn := "sum"
				if i%3 == 0 {
					fn = "frobnicate"
				}
				id := fmt.Sprintf("call-%d", i)
				_, err := s.Submit(scheduler.Call{
					ID:           id,
					FunctionName: fn,
					Arguments:    []float64{float64(i)},
					OnSuccess:    func(json.RawMessage) { record(id) },
					OnError:      func(error) { record(id) },
				})
				Expect(err).NotTo(HaveOccurred())
			}

			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			Eventually(done, 5*time.Second).Should(BeClosed())
			Consistently(func() int {
				mu.Lock()
				defer mu.Unlock()
				n := 0
				for _, c := range counts {
					n += c
				}
				return n
			}, 200*time.Millisecond).Should(Equal(total))
			mu.Lock()
			defer mu.Unlock()
			for id, c := range counts {
				Expect(c).To(Equal(1), "call %s", id)
			}
		})
	})

	Describe("Errors", func() {
		It("should report an unknown function without crashing", func() {
			s = newScheduler()
			Expect(s.Start(ctx, 1)).To(Succeed())

			call, results := collect("frobnicate", []int{1})
			_, err := s.Submit(call)
			Expect(err).NotTo(HaveOccurred())

			var o outcome
			Eventually(results, time.Second).Should(Receive(&o))
			Expect(srvErrors.IsUnknownFunctionError(o.err)).To(BeTrue())
			Expect(o.err.Error()).To(ContainSubstring("unknown function"))

			st, err := s.Status(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Ready()).To(Equal(1))
		})

		It("should recover the slot after a throwing task", func() {
			s = newScheduler()
			Expect(s.Start(ctx, 1)).To(Succeed())

			bad, badResults := collect("throw", nil)
			good, goodResults := collect("sum", []float64{2, 2})
			_, err := s.Submit(bad)
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Submit(good)
			Expect(err).NotTo(HaveOccurred())

			var o outcome
			Eventually(badResults, time.Second).Should(Receive(&o))
			Expect(srvErrors.IsTaskExecutionError(o.err)).To(BeTrue())
			Expect(o.err.Error()).To(ContainSubstring("task exploded"))

			Eventually(goodResults, time.Second).Should(Receive(&o))
			Expect(o.err).NotTo(HaveOccurred())
			Expect(string(o.value)).To(Equal("4"))
		})
	})

	Describe("Pool lifecycle", func() {
		It("should reject a pool size below one", func() {
			s = newScheduler()
			err := s.Start(ctx, 0)
			Expect(srvErrors.IsInvalidPoolSizeError(err)).To(BeTrue())
		})

		It("should keep calls queued until the pool starts", func() {
			s = newScheduler()

			call, results := collect("sum", []float64{1, 1})
			_, err := s.Submit(call)
			Expect(err).NotTo(HaveOccurred())

			Consistently(results, 200*time.Millisecond).ShouldNot(Receive())
			st, err := s.Status(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Size()).To(Equal(0))
			Expect(st.Queued).To(Equal(1))

			Expect(s.Start(ctx, 1)).To(Succeed())
			var o outcome
			Eventually(results, time.Second).Should(Receive(&o))
			Expect(string(o.value)).To(Equal("2"))
		})

		It("should be idempotent on Stop", func() {
			s = newScheduler()
			Expect(s.Start(ctx, 2)).To(Succeed())

			Expect(s.Stop(ctx)).To(Succeed())
			st, err := s.Status(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Size()).To(Equal(0))

			Expect(s.Stop(ctx)).To(Succeed())
			st, err = s.Status(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Size()).To(Equal(0))
		})

		It("should abandon in-flight calls on Stop", func() {
			s = newScheduler()
			Expect(s.Start(ctx, 1)).To(Succeed())

			inflight, inflightResults := collect("wait", "x")
			_, err := s.Submit(inflight)
			Expect(err).NotTo(HaveOccurred())
			Eventually(g.running.Load, time.Second).Should(BeEquivalentTo(1))

			queued, queuedResults := collect("sum", []float64{3})
			_, err = s.Submit(queued)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Stop(ctx)).To(Succeed())
			Consistently(inflightResults, 200*time.Millisecond).ShouldNot(Receive())

			Expect(s.Start(ctx, 1)).To(Succeed())
			var o outcome
			Eventually(queuedResults, time.Second).Should(Receive(&o))
			Expect(string(o.value)).To(Equal("3"))
			Consistently(inflightResults, 200*time.Millisecond).ShouldNot(Receive())
		})

		It("should replace the pool when started again", func() {
			s = newScheduler()
			Expect(s.Start(ctx, 2)).To(Succeed())
			before, err := s.Status(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Start(ctx, 3)).To(Succeed())
			after, err := s.Status(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(after.Size()).To(Equal(3))
			Expect(after.Ready()).To(Equal(3))
			for _, old := range before.Slots {
				for _, cur := range after.Slots {
					Expect(cur.UnitID).NotTo(Equal(old.UnitID))
				}
			}
		})

		It("should fail startup without a partial pool when spawning fails", func() {
			local := worker.NewLocalSpawner(testRegistry(g))
			var spawned []worker.Unit
			spawner := worker.SpawnerFunc(func(replies chan<- worker.Reply) (worker.Unit, error) {
				if len(spawned) == 1 {
					return nil, errors.New("out of workers")
				}
				u, err := local.Spawn(replies)
				spawned = append(spawned, u)
				return u, err
			})
			s = scheduler.NewScheduler(spawner)

			err := s.Start(ctx, 3)
			Expect(srvErrors.IsSpawnFailureError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("out of workers"))

			st, err := s.Status(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Size()).To(Equal(0))

			Expect(spawned).To(HaveLen(1))
			Expect(spawned[0].Post(worker.TaskMessage{FunctionName: "sum"})).To(MatchError(worker.ErrUnitTerminated))
		})

		It("should retry spawning when attempts allow it", func() {
			local := worker.NewLocalSpawner(testRegistry(g))
			var attempts int
			spawner := worker.SpawnerFunc(func(replies chan<- worker.Reply) (worker.Unit, error) {
				attempts++
				if attempts == 1 {
					return nil, errors.New("transient")
				}
				return local.Spawn(replies)
			})
			s = scheduler.NewScheduler(spawner,
				scheduler.WithSpawnAttempts(3),
				scheduler.WithSpawnBackoff(time.Millisecond),
			)

			Expect(s.Start(ctx, 2)).To(Succeed())
			Expect(attempts).To(Equal(3))
		})
	})

	Describe("Queue bound", func() {
		It("should refuse calls once the queue is full", func() {
			s = newScheduler(scheduler.WithMaxQueueSize(1))

			first, _ := collect("sum", nil)
			_, err := s.Submit(first)
			Expect(err).NotTo(HaveOccurred())

			second, _ := collect("sum", nil)
			_, err = s.Submit(second)
			Expect(srvErrors.IsQueueFullError(err)).To(BeTrue())
		})
	})

	Describe("Observer", func() {
		It("should be told which slot took the call", func() {
			obs := &recordingObserver{}
			s = newScheduler(scheduler.WithObserver(obs))
			Expect(s.Start(ctx, 1)).To(Succeed())

			call, results := collect("sum", []float64{1})
			call.ID = "observed"
			_, err := s.Submit(call)
			Expect(err).NotTo(HaveOccurred())
			Eventually(results, time.Second).Should(Receive())

			Expect(obs.dispatched()).To(Equal([]string{"observed@0"}))
		})
	})

	Describe("Close behavior", func() {
		It("should fail queued calls and refuse new ones", func() {
			s = newScheduler()

			call, results := collect("sum", []float64{1})
			_, err := s.Submit(call)
			Expect(err).NotTo(HaveOccurred())

			s.Close()
			s.Close()

			var o outcome
			Eventually(results, time.Second).Should(Receive(&o))
			Expect(srvErrors.IsSchedulerClosedError(o.err)).To(BeTrue())

			_, err = s.Submit(call)
			Expect(srvErrors.IsSchedulerClosedError(err)).To(BeTrue())
			Expect(s.Stop(ctx)).To(Succeed())

			_, err = s.Status(ctx)
			Expect(srvErrors.IsSchedulerClosedError(err)).To(BeTrue())
			s = nil
		})

		It("should let a callback submit follow-up work", func() {
			s = newScheduler()
			Expect(s.Start(ctx, 1)).To(Succeed())

			followUp := make(chan float64, 1)
			_, err := s.Submit(scheduler.SumCall([]float64{1, 2}, func(total float64) {
				_, err := s.Submit(scheduler.SumCall([]float64{total, total}, func(t float64) { followUp <- t }, nil))
				Expect(err).NotTo(HaveOccurred())
			}, nil))
			Expect(err).NotTo(HaveOccurred())

			Eventually(followUp, time.Second).Should(Receive(Equal(6.0)))
		})

		It("should not leak goroutines after Close under load", func() {
			base := runtime.NumGoroutine()
			s = newScheduler()
			Expect(s.Start(ctx, 4)).To(Succeed())

			for range 200 {
				call, _ := collect("wait", "x")
				_, err := s.Submit(call)
				Expect(err).NotTo(HaveOccurred())
			}

			time.Sleep(100 * time.Millisecond)
			s.Close()
			s = nil // prevent AfterEach from closing again

			Eventually(func() int {
				return runtime.NumGoroutine()
			}, 5*time.Second, 100*time.Millisecond).Should(BeNumerically("<=", base+10))
		})
	})
})

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingObserver) CallDispatched(callID string, slot int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, fmt.Sprintf("%s@%d", callID, slot))
}

func (r *recordingObserver) dispatched() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}
