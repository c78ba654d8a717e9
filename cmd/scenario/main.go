// Command scenario drives the call engine through a scripted interaction
// using in-process fakes, printing every event a host application would
// receive. Useful for demos and for eyeballing event payloads without a
// broker or signaling endpoint.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sweeney/softphone-sim/internal/backend"
	"github.com/sweeney/softphone-sim/internal/call"
	"github.com/sweeney/softphone-sim/internal/config"
	"github.com/sweeney/softphone-sim/internal/engine"
	"github.com/sweeney/softphone-sim/internal/gate"
	"github.com/sweeney/softphone-sim/internal/registry"
	"github.com/sweeney/softphone-sim/internal/sched"
	"github.com/sweeney/softphone-sim/internal/transport"
)

func main() {
	name := flag.String("scenario", "inbound", "Scenario to run: inbound, transfer or supervisor")
	verbose := flag.Bool("v", false, "Show engine logs alongside events")
	flag.Parse()

	if err := run(*name, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(name string, verbose bool) error {
	cfg := config.Default()
	cfg.Agent.ID = "agent-100"
	cfg.Agent.FullName = "Demo Agent"

	log := logrus.New()
	log.SetOutput(io.Discard)
	if verbose {
		log.SetOutput(os.Stderr)
		log.SetLevel(logrus.DebugLevel)
	}

	reg, err := registry.New(registry.NewMemStore())
	if err != nil {
		return err
	}

	scheduler := &sched.Manual{}
	eng := engine.New(cfg, reg,
		gate.New(cfg.Caps, cfg.Simulation),
		&printBus{out: os.Stdout},
		transport.NewMock(),
		backend.NewSimulator(backend.WithIDGenerator(&call.SequenceGenerator{Prefix: "vc"})),
		engine.WithScheduler(scheduler),
		engine.WithIDGenerator(&call.SequenceGenerator{Prefix: "call"}),
		engine.WithLogger(logrus.NewEntry(log)),
	)
	eng.SetAvailable(true)

	ctx := context.Background()
	switch name {
	case "inbound":
		err = inbound(ctx, eng)
	case "transfer":
		err = transfer(ctx, eng)
	case "supervisor":
		err = supervisor(ctx, eng)
	default:
		return fmt.Errorf("unknown scenario %q", name)
	}
	if err != nil {
		return err
	}

	// Runs the deferred wrap-up notifications the scenario queued.
	scheduler.Flush()
	return nil
}

func inbound(ctx context.Context, eng *engine.Engine) error {
	res, err := eng.StartInboundCall(ctx, "15555550100", call.Info{})
	if err != nil {
		return fmt.Errorf("starting inbound call: %w", err)
	}
	if _, err := eng.AcceptCall(ctx, call.ByID(res.Call.ID)); err != nil {
		return fmt.Errorf("accepting call: %w", err)
	}
	if _, err := eng.Mute(ctx); err != nil {
		return fmt.Errorf("muting: %w", err)
	}
	if _, err := eng.Unmute(ctx); err != nil {
		return fmt.Errorf("unmuting: %w", err)
	}
	if _, err := eng.Hold(ctx, call.ByID(res.Call.ID)); err != nil {
		return fmt.Errorf("holding: %w", err)
	}
	if _, err := eng.Resume(ctx, call.ByID(res.Call.ID)); err != nil {
		return fmt.Errorf("resuming: %w", err)
	}
	if _, err := eng.Hangup(ctx, call.ReasonEnded, ""); err != nil {
		return fmt.Errorf("hanging up: %w", err)
	}
	return nil
}

func transfer(ctx context.Context, eng *engine.Engine) error {
	res, err := eng.StartInboundCall(ctx, "15555550100", call.Info{})
	if err != nil {
		return fmt.Errorf("starting inbound call: %w", err)
	}
	if _, err := eng.AcceptCall(ctx, call.ByID(res.Call.ID)); err != nil {
		return fmt.Errorf("accepting call: %w", err)
	}

	contact := call.Contact{ID: "agent-200", Type: call.ContactAgent, Name: "Second Agent"}
	added, err := eng.AddParticipant(ctx, contact, call.ByID(res.Call.ID), engine.TransferOptions{})
	if err != nil {
		return fmt.Errorf("adding participant: %w", err)
	}
	if err := eng.ConnectParticipant(ctx, call.Info{}, call.KindAddParticipant); err != nil {
		return fmt.Errorf("connecting participant: %w", err)
	}
	if _, err := eng.SwapCalls(ctx, call.ByID(res.Call.ID), call.ByID(added.CallID)); err != nil {
		return fmt.Errorf("swapping: %w", err)
	}
	if _, err := eng.Conference(ctx, []call.Selector{call.ByID(res.Call.ID), call.ByID(added.CallID)}); err != nil {
		return fmt.Errorf("conferencing: %w", err)
	}
	if _, err := eng.Hangup(ctx, call.ReasonEnded, ""); err != nil {
		return fmt.Errorf("hanging up: %w", err)
	}
	return nil
}

func supervisor(ctx context.Context, eng *engine.Engine) error {
	supervised := call.SupervisedCallInfo{
		CallID:      "monitored-1",
		VoiceCallID: "vc-monitored-1",
		Kind:        call.KindInbound,
		From:        "15555550100",
		To:          "agent-300",
	}
	if _, err := eng.SuperviseCall(ctx, supervised); err != nil {
		return fmt.Errorf("supervising: %w", err)
	}
	if err := eng.ConnectSupervisor(ctx); err != nil {
		return fmt.Errorf("connecting supervisor: %w", err)
	}
	if _, err := eng.SupervisorBargeIn(ctx, supervised); err != nil {
		return fmt.Errorf("barging in: %w", err)
	}
	if _, err := eng.RemoveSupervisor(ctx); err != nil {
		return fmt.Errorf("removing supervisor: %w", err)
	}
	return nil
}

// printBus writes each published event as a single JSON line.
type printBus struct {
	out io.Writer
}

func (b *printBus) Publish(_ context.Context, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(b.out, "%-28s %s\n", eventType, data)
	return err
}

func (b *printBus) Close() error { return nil }
