package agent

import (
	"fmt"

	"github.com/nstehr/vimy/vimy-macro/buildorder"
	"github.com/nstehr/vimy/vimy-macro/ipc"
	"github.com/nstehr/vimy/vimy-macro/model"
)

// Handlers returns the envelope handlers for a connection driving this agent.
func (a *Agent) Handlers() map[string]ipc.Handler {
	return map[string]ipc.Handler{
		ipc.TypeHello:        a.HandleHello,
		ipc.TypeSnapshot:     a.HandleSnapshot,
		ipc.TypeActionResult: a.HandleActionResult,
	}
}

// HandleHello completes the handshake and tells the simulation which opening
// to run and how often to send snapshots.
func (a *Agent) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return nil, err
	}
	if err := a.Start(hello); err != nil {
		return nil, err
	}

	ack := ipc.AckMessage{
		Status:                "ok",
		DecisionIntervalTicks: a.settings.DecisionIntervalTicks,
	}
	if a.opening != nil {
		ack.Opening = openingMessage(*a.opening, a.deps.BuildOrders.Chain(*a.opening))
	}
	resp, err := ipc.NewEnvelope(ipc.TypeAck, ack)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *Agent) HandleSnapshot(env ipc.Envelope) (*ipc.Envelope, error) {
	if !a.Started() {
		return nil, fmt.Errorf("snapshot before hello")
	}
	var s model.Snapshot
	if err := env.Decode(&s); err != nil {
		return nil, err
	}

	d := a.Decide(&s)
	resp, err := ipc.NewEnvelope(ipc.TypeDecision, ipc.DecisionMessage{
		Tick:    d.Tick,
		RuleID:  d.RuleID,
		Action:  d.Action,
		Target:  d.Target,
		Queue:   d.Queue,
		Count:   d.Count,
		Ranking: d.Ranking,
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// HandleActionResult applies an outcome. It sends no reply.
func (a *Agent) HandleActionResult(env ipc.Envelope) (*ipc.Envelope, error) {
	if !a.Started() {
		return nil, fmt.Errorf("action result before hello")
	}
	var res ipc.ActionResult
	if err := env.Decode(&res); err != nil {
		return nil, err
	}
	a.Report(res)
	return nil, nil
}

// openingMessage flattens an order and its transition chain for the wire.
// chain starts with o itself.
func openingMessage(o buildorder.Order, chain []buildorder.Order) *ipc.OpeningMessage {
	m := &ipc.OpeningMessage{
		ID:    o.ID,
		Name:  o.Name,
		Style: o.Style,
		Steps: make([]ipc.OpeningStep, len(o.Steps)),
	}
	for i, s := range o.Steps {
		m.Steps[i] = ipc.OpeningStep{Type: string(s.Type), ID: s.ID, Supply: s.Supply, Time: s.Time, Count: s.Count}
	}
	for _, next := range chain {
		if next.ID != o.ID {
			m.Then = append(m.Then, next.ID)
		}
	}
	return m
}
