package ledger

import (
	"context"
	"fmt"
)

// Observer receives every Summary an Evaluator produces. Observers render,
// log or publish; they must not modify the Summary.
type Observer interface {
	Observe(ctx context.Context, s Summary)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, s Summary)

func (f ObserverFunc) Observe(ctx context.Context, s Summary) { f(ctx, s) }

// Evaluator runs Evaluate and then notifies its observers, in order, after
// every evaluation. A panicking observer is reported to OnObserverFault and
// does not keep the remaining observers from running. Completed, when set,
// runs last on every evaluation, even if an observer panicked.
type Evaluator struct {
	Observers       []Observer
	OnObserverFault func(err error)
	Completed       func(ctx context.Context, s Summary)
}

// NewEvaluator creates an Evaluator with the given observers.
func NewEvaluator(observers ...Observer) *Evaluator {
	return &Evaluator{Observers: observers}
}

// Evaluate evaluates the account and notifies observers. The returned
// Summary is exactly what Evaluate returns.
func (e *Evaluator) Evaluate(ctx context.Context, account AccountDescriptor) Summary {
	s := Evaluate(account)
	if e.Completed != nil {
		defer e.notify(ctx, ObserverFunc(e.Completed), s)
	}
	for _, o := range e.Observers {
		e.notify(ctx, o, s)
	}
	return s
}

func (e *Evaluator) notify(ctx context.Context, o Observer, s Summary) {
	defer func() {
		if r := recover(); r != nil && e.OnObserverFault != nil {
			e.OnObserverFault(fmt.Errorf("observer %T panicked: %s", o, panicMessage(r)))
		}
	}()
	o.Observe(ctx, s)
}
