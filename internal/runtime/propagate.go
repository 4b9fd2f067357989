package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/weft/pkg/domain"
)

// write stores a value on an input and, if it changed, re-evaluates the node.
func (e *Engine) write(ctx context.Context, n *domain.Node, port string, v domain.Value) error {
	changed, err := n.SetInput(port, v)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	e.evaluate(ctx, n)
	return nil
}

// clear unpopulates an input. If the node had an output it is dropped and
// every input it fed is cleared in turn.
func (e *Engine) clear(ctx context.Context, n *domain.Node, port string) {
	had, err := n.ClearInput(port)
	if err != nil || !had {
		return
	}
	if tr := e.track[n.ID()]; tr != nil {
		tr.epoch++
	}

	prev := n.State()
	dropped := n.Reset()
	e.stateChanged(ctx, n, prev)
	if !dropped {
		return
	}
	e.outputChanged(ctx, n, nil)

	for _, c := range e.table.Outgoing(n.ID()) {
		if dst, err := e.table.Node(c.Target); err == nil {
			e.clear(ctx, dst, c.Port)
		}
	}
}

// evaluate issues a compute if the node is fully populated. Sync computes
// resolve and cascade before evaluate returns; async computes resolve when
// their completion is dispatched back.
func (e *Engine) evaluate(ctx context.Context, n *domain.Node) {
	if !n.IsFullyPopulated() {
		return
	}
	tr := e.track[n.ID()]
	e.seq++
	tr.issued = e.seq
	seq, epoch := tr.issued, tr.epoch

	prev := n.State()
	n.MarkComputing()
	e.stateChanged(ctx, n, prev)

	def := n.Definition()
	if !def.Async {
		start := time.Now()
		v, err := n.Compute(ctx)
		e.resolve(ctx, tr, seq, epoch, v, err, time.Since(start), false)
		return
	}

	in, cfg := n.Inputs(), n.Config()
	tr.inflight++
	e.pending++
	e.logger.Debug("async compute issued", "node", n.ID(), "seq", seq)

	go func() {
		start := time.Now()
		v, err := domain.Run(e.asyncCtx, def, in, cfg)
		elapsed := time.Since(start)
		e.dispatcher.Dispatch(func() {
			tr.inflight--
			e.pending--
			e.resolve(e.asyncCtx, tr, seq, epoch, v, err, elapsed, true)
		})
	}()
}

// resolve applies a compute result unless it is stale.
func (e *Engine) resolve(ctx context.Context, tr *tracker, seq, epoch uint64, v domain.Value, err error, elapsed time.Duration, async bool) {
	n := tr.node
	stale := e.track[n.ID()] != tr ||
		epoch != tr.epoch ||
		(e.policy == ResolveLatestIssued && seq != tr.issued)

	if e.hooks.OnCompute != nil {
		e.hooks.OnCompute(ctx, &domain.ComputeEvent{
			EventBase: domain.NewBase(domain.EventComputed),
			NodeID:    n.ID(),
			NodeType:  n.Type(),
			Duration:  elapsed,
			Async:     async,
			Stale:     stale,
			Failed:    err != nil,
		})
	}
	if stale {
		e.logger.Debug("stale result discarded", "node", n.ID(), "seq", seq)
		return
	}

	prev := n.State()
	if err != nil {
		err = fmt.Errorf("%w: %s (%s): %w", domain.ErrComputeFailure, n.ID(), n.Type(), err)
		n.Fail(err)
		e.stateChanged(ctx, n, prev)
		e.logger.Warn("compute failed", "node", n.ID(), "type", n.Type(), "error", err)
		if e.hooks.OnNodeError != nil {
			e.hooks.OnNodeError(ctx, &domain.ErrorEvent{
				EventBase: domain.NewBase(domain.EventNodeError),
				NodeID:    n.ID(),
				Err:       err,
				Message:   err.Error(),
			})
		}
		return
	}

	changed := n.Resolve(v)
	if e.policy == ResolveLatestResolved && tr.inflight > 0 {
		n.MarkComputing()
	}
	e.stateChanged(ctx, n, prev)
	if !changed {
		return
	}
	e.outputChanged(ctx, n, v)

	for _, c := range e.table.Outgoing(n.ID()) {
		dst, err := e.table.Node(c.Target)
		if err != nil {
			continue
		}
		if err := e.write(ctx, dst, c.Port, v); err != nil {
			e.logger.Error("forward failed", "connection", c.String(), "error", err)
		}
	}
}

func (e *Engine) outputChanged(ctx context.Context, n *domain.Node, v domain.Value) {
	e.logger.Debug("output changed", "node", n.ID(), "value", domain.FormatValue(v))
	if e.hooks.OnOutputChanged != nil {
		e.hooks.OnOutputChanged(ctx, &domain.OutputEvent{
			EventBase: domain.NewBase(domain.EventOutputChanged),
			NodeID:    n.ID(),
			Value:     domain.CloneValue(v),
		})
	}
}

func (e *Engine) stateChanged(ctx context.Context, n *domain.Node, prev domain.NodeState) {
	if prev == n.State() || e.hooks.OnStateChange == nil {
		return
	}
	e.hooks.OnStateChange(ctx, &domain.StateEvent{
		EventBase: domain.NewBase(domain.EventStateChanged),
		NodeID:    n.ID(),
		From:      prev,
		To:        n.State(),
	})
}
