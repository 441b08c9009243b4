// Package concurrent fans identical operations out across goroutines so
// scenarios can probe the service's behavior under genuinely overlapping
// requests, then assert on the aggregated outcomes.
package concurrent

import "sync"

// Outcome is the result of one worker's invocation: a value or an error,
// never retried and never influenced by the other workers.
type Outcome struct {
	Worker int
	Value  interface{}
	Err    error
}

// Outcomes is the full result set of one FanOut call, indexed by worker.
type Outcomes []Outcome

func (o Outcomes) SuccessCount() int {
	n := 0
	for _, r := range o {
		if r.Err == nil {
			n++
		}
	}
	return n
}

func (o Outcomes) ErrorCount() int {
	return len(o) - o.SuccessCount()
}

func (o Outcomes) Errors() []error {
	var errs []error
	for _, r := range o {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}

// Values returns the successful values in worker order.
func (o Outcomes) Values() []interface{} {
	var values []interface{}
	for _, r := range o {
		if r.Err == nil {
			values = append(values, r.Value)
		}
	}
	return values
}

// FanOut invokes op in n goroutines with overlapping lifetimes: every
// worker is launched, and released through a shared start barrier, before
// any of them is awaited. Each worker writes into its own result slot and
// the slots are merged only after all workers have finished, so the
// operation needs no synchronization of its own. Failures are collected,
// not retried, and do not serialize the remaining workers.
func FanOut(n int, op func(worker int) (interface{}, error)) Outcomes {
	outcomes := make(Outcomes, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(worker int) {
			defer wg.Done()
			<-start
			value, err := op(worker)
			outcomes[worker] = Outcome{Worker: worker, Value: value, Err: err}
		}(i)
	}
	close(start)
	wg.Wait()
	return outcomes
}
