// Package engine implements the call lifecycle state machine of the
// simulated telephony subsystem. One logical command (a local API call
// or one inbound signaling message) runs to completion before the next;
// suspension happens only at the backend and gate boundaries, where
// continuations re-validate that the calls they touch still exist.
package engine

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sweeney/softphone-sim/internal/backend"
	"github.com/sweeney/softphone-sim/internal/bus"
	"github.com/sweeney/softphone-sim/internal/call"
	"github.com/sweeney/softphone-sim/internal/config"
	"github.com/sweeney/softphone-sim/internal/contacts"
	"github.com/sweeney/softphone-sim/internal/gate"
	"github.com/sweeney/softphone-sim/internal/registry"
	"github.com/sweeney/softphone-sim/internal/sched"
	"github.com/sweeney/softphone-sim/internal/transport"
)

// WrapupStarted is the payload of the after-call-work-started event.
type WrapupStarted struct {
	CallID string `json:"call_id"`
}

// Engine is the per-session state machine. Construct one per agent; there
// are no ambient singletons.
type Engine struct {
	mu sync.Mutex

	agentID       string
	userFullName  string
	selectedPhone string

	reg       *registry.Registry
	gate      *gate.Gate
	bus       bus.Bus
	transport transport.Transport
	backend   backend.Backend
	scheduler sched.Scheduler
	directory *contacts.Directory
	ids       call.IDGenerator
	clock     call.Clock
	log       *logrus.Entry

	agentAvailable bool
	onlineUsers    map[string]string // agent id -> full name

	// thirdPartyInfo is the shared call-info snapshot attached to
	// transfer participants.
	thirdPartyInfo call.Info

	removeParticipantVariant string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source.
func WithClock(c call.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithIDGenerator sets the call identifier source.
func WithIDGenerator(ids call.IDGenerator) Option {
	return func(e *Engine) { e.ids = ids }
}

// WithScheduler sets the next-turn scheduler used for wrap-up.
func WithScheduler(s sched.Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithLogger sets the log entry the engine writes through.
func WithLogger(log *logrus.Entry) Option {
	return func(e *Engine) { e.log = log }
}

// WithDirectory sets the contact directory.
func WithDirectory(d *contacts.Directory) Option {
	return func(e *Engine) { e.directory = d }
}

// New wires an engine from its collaborators and registers the inbound
// signaling handler on the transport.
func New(cfg *config.Config, reg *registry.Registry, g *gate.Gate, b bus.Bus, tr transport.Transport, be backend.Backend, opts ...Option) *Engine {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Engine{
		agentID:       cfg.Agent.ID,
		userFullName:  cfg.Agent.FullName,
		selectedPhone: cfg.Agent.SelectedPhone,
		reg:           reg,
		gate:          g,
		bus:           b,
		transport:     tr,
		backend:       be,
		scheduler:     sched.Async{},
		directory:     contacts.NewDirectory(20),
		ids:           call.UUIDGenerator{},
		clock:         time.Now,
		log:           logrus.NewEntry(discard),
		onlineUsers:   make(map[string]string),
		thirdPartyInfo: call.Info{
			RemoveParticipantVariant: "NEVER",
		},
		removeParticipantVariant: "ALWAYS",
	}
	for _, opt := range opts {
		opt(e)
	}
	tr.OnMessage(e.handleMessage)
	return e
}

// SetAvailable marks the agent ready (or not) for inbound work. The
// subsystem login result flips this in the daemon.
func (e *Engine) SetAvailable(available bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.agentAvailable = available
}

// Available reports whether the agent can take inbound work.
func (e *Engine) Available() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.agentAvailable
}

// SetOnlineUsers replaces the set of online agents.
func (e *Engine) SetOnlineUsers(users map[string]string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onlineUsers = make(map[string]string, len(users))
	for id, name := range users {
		e.onlineUsers[id] = name
	}
}

// Dial starts an outbound call to the contact. Fails when an initial
// caller leg already exists. Dialing another online agent starts an
// internal call and signals the remote side.
func (e *Engine) Dial(ctx context.Context, contact call.Contact, info call.Info, fireCallStarted, isCallback bool) (call.CallResult, error) {
	e.mu.Lock()
	if e.reg.HasActive(call.RoleInitialCaller) {
		e.mu.Unlock()
		return call.CallResult{}, fmt.Errorf("dial: %w", call.ErrAgentBusy)
	}

	now := e.clock()
	info.CallStateTimestamp = now

	kind := call.KindOutbound
	switch {
	case isCallback:
		kind = call.KindDialedCallback
	case contact.Type == call.ContactAgent:
		kind = call.KindInternal
	}

	c := call.New(e.ids.NewID(), kind, contact, call.Attributes{Role: call.RoleInitialCaller}, info, now)
	if err := e.reg.Put(c); err != nil {
		e.mu.Unlock()
		return call.CallResult{}, err
	}
	e.log.WithFields(logrus.Fields{"call_id": c.ID, "call_type": kind}).Info("dialing")

	res := call.CallResult{Call: *c}
	if !info.IsSoftphoneCall && fireCallStarted {
		e.emit(ctx, bus.EventCallStarted, res)
	}
	e.agentAvailable = false

	_, online := e.onlineUsers[contact.ID]
	e.mu.Unlock()

	if online && contact.Type == call.ContactAgent {
		e.send(ctx, contact.ID, transport.TypeInternalCallStarted, transport.InternalCallStartedData{
			PhoneNumber: contact.PhoneNumber,
			CallID:      c.ID,
			Contact:     contact,
		})
	}

	if err := e.gate.Run(ctx, "dial"); err != nil {
		return call.CallResult{}, err
	}
	return res, nil
}

// StartInboundCall simulates a customer calling in. The vendor backend
// mints the voice-call record before the leg is registered.
func (e *Engine) StartInboundCall(ctx context.Context, phoneNumber string, info call.Info) (call.CallResult, error) {
	e.mu.Lock()
	if !e.agentAvailable {
		e.mu.Unlock()
		e.log.WithField("phone_number", phoneNumber).Info("rejecting inbound call, agent unavailable")
		return call.CallResult{}, fmt.Errorf("inbound call from %s: %w", phoneNumber, call.ErrAgentUnavailable)
	}
	additionalFields := info.AdditionalFields
	e.mu.Unlock()

	// Asynchronous boundary: other commands may run while the backend
	// request is in flight.
	vc, err := e.backend.CreateVoiceCall(ctx, "", call.KindInbound, phoneNumber, additionalFields)
	if err != nil {
		return call.CallResult{}, fmt.Errorf("creating voice call: %w", err)
	}

	e.mu.Lock()
	now := e.clock()
	info.CallStateTimestamp = now
	id := vc.VendorCallKey
	if id == "" {
		id = e.ids.NewID()
	}
	c := call.New(id, call.KindInbound, call.Contact{PhoneNumber: phoneNumber},
		call.Attributes{Role: call.RoleInitialCaller, VoiceCallID: vc.VoiceCallID}, info, now)
	if err := e.reg.Put(c); err != nil {
		e.mu.Unlock()
		return call.CallResult{}, err
	}
	e.log.WithFields(logrus.Fields{"call_id": c.ID, "voice_call_id": vc.VoiceCallID}).Info("inbound call started")

	res := call.CallResult{Call: *c}
	e.emit(ctx, bus.EventCallStarted, res)
	e.mu.Unlock()

	if err := e.gate.Run(ctx, "startInboundCall"); err != nil {
		return call.CallResult{}, err
	}
	return res, nil
}

// AcceptCall answers a ringing call. Callback and internal calls stay
// Ringing until their second leg connects; everything else goes straight
// to Connected.
func (e *Engine) AcceptCall(ctx context.Context, sel call.Selector) (call.CallResult, error) {
	var res call.CallResult
	if !e.gate.AlwaysFail() {
		e.mu.Lock()
		c, err := e.reg.Get(sel)
		if err != nil {
			e.mu.Unlock()
			return call.CallResult{}, fmt.Errorf("accept call: %w", err)
		}

		state := call.StateConnected
		if (c.Kind == call.KindCallback || c.Kind == call.KindInternal) && c.State != call.StateConnected {
			state = call.StateRinging
		}
		c.SetState(state, e.clock())
		if err := e.reg.Put(c); err != nil {
			e.mu.Unlock()
			return call.CallResult{}, err
		}
		e.agentAvailable = false
		e.log.WithFields(logrus.Fields{"call_id": c.ID, "state": state}).Info("call accepted")
		res = call.CallResult{Call: *c}
		info, kind := c.Info, c.Kind
		e.mu.Unlock()

		e.send(ctx, "", transport.TypeParticipantConnected, transport.ParticipantConnectedData{Info: info, Kind: kind})
	}

	if err := e.gate.Run(ctx, "acceptCall"); err != nil {
		return call.CallResult{}, err
	}
	return res, nil
}

// DeclineCall rejects a ringing call and frees the agent.
func (e *Engine) DeclineCall(ctx context.Context, sel call.Selector) (call.CallResult, error) {
	e.mu.Lock()
	destroyed, err := e.destroy(ctx, sel, call.ReasonEnded)
	if err != nil {
		e.mu.Unlock()
		return call.CallResult{}, fmt.Errorf("decline call: %w", err)
	}
	e.agentAvailable = true
	e.log.WithField("call_id", destroyed[len(destroyed)-1].ID).Info("call declined")
	res := call.CallResult{Call: destroyed[len(destroyed)-1]}
	e.mu.Unlock()

	if err := e.gate.Run(ctx, "declineCall"); err != nil {
		return call.CallResult{}, err
	}
	return res, nil
}

// EndCall hangs up the selected call; an Agent-role selector cascades to
// every leg of the interaction. Wrap-up is scheduled for the next turn.
func (e *Engine) EndCall(ctx context.Context, sel call.Selector) (call.HangupResult, error) {
	var res call.HangupResult
	if !e.gate.AlwaysFail() {
		e.mu.Lock()
		destroyed, err := e.destroy(ctx, sel, call.ReasonEnded)
		if err != nil {
			e.mu.Unlock()
			return call.HangupResult{}, fmt.Errorf("end call: %w", err)
		}
		e.agentAvailable = e.reg.Len() == 0
		e.log.WithField("destroyed", len(destroyed)).Info("call ended")
		res = call.HangupResult{Calls: destroyed}
		e.scheduleWrapup(destroyed[0].ID)
		e.mu.Unlock()
	}

	if err := e.gate.Run(ctx, "endCall"); err != nil {
		return call.HangupResult{}, err
	}
	return res, nil
}

// Hold places the selected call on hold.
func (e *Engine) Hold(ctx context.Context, sel call.Selector) (call.HoldToggleResult, error) {
	return e.toggleHold(ctx, sel, true, "hold")
}

// Resume takes the selected call off hold.
func (e *Engine) Resume(ctx context.Context, sel call.Selector) (call.HoldToggleResult, error) {
	return e.toggleHold(ctx, sel, false, "resume")
}

func (e *Engine) toggleHold(ctx context.Context, sel call.Selector, onHold bool, action string) (call.HoldToggleResult, error) {
	e.mu.Lock()
	c, err := e.reg.Get(sel)
	if err != nil {
		e.mu.Unlock()
		return call.HoldToggleResult{}, fmt.Errorf("%s: %w", action, err)
	}
	c.SetHold(onHold)
	if err := e.reg.Put(c); err != nil {
		e.mu.Unlock()
		return call.HoldToggleResult{}, err
	}
	res := e.holdResult()
	e.mu.Unlock()

	if err := e.gate.Run(ctx, action); err != nil {
		return call.HoldToggleResult{}, err
	}
	return res, nil
}

// SwapCalls flips the hold state of each call independently. This is not
// a rotation: two off-hold calls both end up on hold.
func (e *Engine) SwapCalls(ctx context.Context, sel1, sel2 call.Selector) (call.HoldToggleResult, error) {
	e.mu.Lock()
	c1, err := e.reg.Get(sel1)
	if err != nil {
		e.mu.Unlock()
		return call.HoldToggleResult{}, fmt.Errorf("swap calls: %w", err)
	}
	c2, err := e.reg.Get(sel2)
	if err != nil {
		e.mu.Unlock()
		return call.HoldToggleResult{}, fmt.Errorf("swap calls: %w", err)
	}
	c1.SetHold(!c1.Attributes.IsOnHold)
	c2.SetHold(!c2.Attributes.IsOnHold)
	if err := e.reg.Put(c1); err != nil {
		e.mu.Unlock()
		return call.HoldToggleResult{}, err
	}
	if err := e.reg.Put(c2); err != nil {
		e.mu.Unlock()
		return call.HoldToggleResult{}, err
	}
	res := call.HoldToggleResult{
		IsThirdPartyOnHold: c1.Attributes.IsOnHold,
		IsCustomerOnHold:   c2.Attributes.IsOnHold,
		Calls:              e.reg.ActiveByID(),
	}
	e.mu.Unlock()

	if err := e.gate.Run(ctx, gate.ActionSwapCalls); err != nil {
		return call.HoldToggleResult{}, err
	}
	return res, nil
}

// Conference joins the given calls, taking every one of them off hold.
func (e *Engine) Conference(ctx context.Context, sels []call.Selector) (call.HoldToggleResult, error) {
	e.mu.Lock()
	for _, sel := range sels {
		c, err := e.reg.Get(sel)
		if err != nil {
			e.mu.Unlock()
			return call.HoldToggleResult{}, fmt.Errorf("conference: %w", err)
		}
		c.SetHold(false)
		if err := e.reg.Put(c); err != nil {
			e.mu.Unlock()
			return call.HoldToggleResult{}, err
		}
	}
	e.mu.Unlock()

	if err := e.gate.Run(ctx, gate.ActionConference); err != nil {
		return call.HoldToggleResult{}, err
	}
	return call.HoldToggleResult{IsThirdPartyOnHold: false, IsCustomerOnHold: false}, nil
}

// Hangup simulates the agent hanging up the phone: every leg of the
// interaction is destroyed, one combined hangup event is published, and
// wrap-up is scheduled.
func (e *Engine) Hangup(ctx context.Context, reason, agentErrorStatus string) (call.HangupResult, error) {
	e.mu.Lock()
	destroyed, err := e.destroy(ctx, call.ByRole(call.RoleAgent), reason)
	if err != nil {
		e.mu.Unlock()
		return call.HangupResult{}, fmt.Errorf("hangup: %w", err)
	}
	for i := range destroyed {
		destroyed[i].Info.IsSoftphoneCall = false
		destroyed[i].AgentStatus = agentErrorStatus
		destroyed[i].Reason = reason
	}
	e.agentAvailable = e.reg.Len() == 0
	e.log.WithFields(logrus.Fields{"destroyed": len(destroyed), "reason": reason}).Info("hangup")

	res := call.HangupResult{Calls: destroyed}
	e.emit(ctx, bus.EventHangup, res)
	e.scheduleWrapup(destroyed[0].ID)
	e.mu.Unlock()

	if err := e.gate.Run(ctx, "hangup"); err != nil {
		return call.HangupResult{}, err
	}
	return res, nil
}

// RequestCallback registers a queued callback call and announces it.
func (e *Engine) RequestCallback(ctx context.Context, phoneNumber string) (call.CallResult, error) {
	e.mu.Lock()
	now := e.clock()
	c := call.New(e.ids.NewID(), call.KindCallback, call.Contact{PhoneNumber: phoneNumber},
		call.Attributes{Role: call.RoleInitialCaller}, call.Info{CallStateTimestamp: now}, now)
	if err := e.reg.Put(c); err != nil {
		e.mu.Unlock()
		return call.CallResult{}, err
	}
	e.log.WithField("call_id", c.ID).Info("callback requested")
	res := call.CallResult{Call: *c}
	e.emit(ctx, bus.EventQueuedCallStarted, res)
	e.mu.Unlock()
	return res, nil
}

// PreviewCall registers an outbound preview-dialer call and announces it.
func (e *Engine) PreviewCall(ctx context.Context, phoneNumber string) (call.CallResult, error) {
	e.mu.Lock()
	now := e.clock()
	c := call.New(e.ids.NewID(), call.KindOutbound, call.Contact{PhoneNumber: phoneNumber},
		call.Attributes{Role: call.RoleInitialCaller, DialerType: call.DialerTypePreview},
		call.Info{CallStateTimestamp: now}, now)
	if err := e.reg.Put(c); err != nil {
		e.mu.Unlock()
		return call.CallResult{}, err
	}
	e.log.WithField("call_id", c.ID).Info("preview call started")
	res := call.CallResult{Call: *c}
	e.emit(ctx, bus.EventPreviewCallStarted, res)
	e.mu.Unlock()
	return res, nil
}

// ConnectCall simulates the initial caller leg connecting.
func (e *Engine) ConnectCall(ctx context.Context, removeParticipantVariant string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, err := e.reg.Get(call.ByRole(call.RoleInitialCaller))
	if err != nil {
		return fmt.Errorf("connect call: %w", err)
	}
	c.SetState(call.StateConnected, e.clock())
	if removeParticipantVariant != "" {
		c.Info.RemoveParticipantVariant = removeParticipantVariant
	}
	if err := e.reg.Put(c); err != nil {
		return err
	}
	e.log.WithField("call_id", c.ID).Info("call connected")
	e.emit(ctx, bus.EventCallConnected, call.CallResult{Call: *c})
	return nil
}

// BeginWrapup schedules the after-call-work-started notification for the
// next scheduling turn. It fires only if the agent is available when the
// turn runs, guaranteeing observers saw the triggering event first.
func (e *Engine) BeginWrapup(c call.Call) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scheduleWrapup(c.ID)
}

// EndWrapup is an observability hook; wrap-up has no engine-side state.
func (e *Engine) EndWrapup() {
	e.log.Debug("wrapup ended")
}

// UpdateAudioStats republishes an audio quality report to the host.
func (e *Engine) UpdateAudioStats(ctx context.Context, stats call.AudioStats) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emit(ctx, bus.EventUpdateAudioStats, stats)
}

// GetActiveCalls lists the active registry contents.
func (e *Engine) GetActiveCalls(ctx context.Context) (call.ActiveCallsResult, error) {
	e.mu.Lock()
	res := call.ActiveCallsResult{ActiveCalls: e.reg.Active()}
	e.mu.Unlock()

	if err := e.gate.Run(ctx, "getActiveCalls"); err != nil {
		return call.ActiveCallsResult{}, err
	}
	return res, nil
}

// GetAgentConfig reports the phones configured for this agent.
func (e *Engine) GetAgentConfig(ctx context.Context) (call.AgentConfigResult, error) {
	e.mu.Lock()
	res := call.AgentConfigResult{
		Phones:        []string{config.PhoneSoft, config.PhoneDesk},
		SelectedPhone: call.Phone{Type: e.selectedPhone},
	}
	e.mu.Unlock()

	if err := e.gate.Run(ctx, "getAgentConfig"); err != nil {
		return call.AgentConfigResult{}, err
	}
	return res, nil
}

// SetAgentConfig updates the selected phone.
func (e *Engine) SetAgentConfig(ctx context.Context, selectedPhone string) (call.GenericResult, error) {
	e.mu.Lock()
	e.selectedPhone = selectedPhone
	e.mu.Unlock()

	if err := e.gate.Run(ctx, "setAgentConfig"); err != nil {
		return call.GenericResult{}, err
	}
	return call.GenericResult{Success: true}, nil
}

// GetCapabilities reports the current capability flags.
func (e *Engine) GetCapabilities(ctx context.Context) (config.Capabilities, error) {
	caps := e.gate.Capabilities()
	if err := e.gate.Run(ctx, "getCapabilities"); err != nil {
		return config.Capabilities{}, err
	}
	return caps, nil
}

// SetAgentStatus broadcasts the agent's presence and reports success.
func (e *Engine) SetAgentStatus(ctx context.Context, status string) (call.GenericResult, error) {
	e.mu.Lock()
	data := transport.PresenceData{
		Username:    e.agentID,
		FullName:    e.userFullName,
		IsAvailable: status != "offline",
	}
	e.mu.Unlock()

	e.send(ctx, "", transport.TypePresence, data)

	if err := e.gate.Run(ctx, "setAgentStatus"); err != nil {
		return call.GenericResult{}, err
	}
	return call.GenericResult{Success: true}, nil
}

// GetSignedRecordingURL returns the configured signed recording URL for a
// call, gated on the signed-recording capability.
func (e *Engine) GetSignedRecordingURL(ctx context.Context, recordingURL, vendorCallKey, callID string) (call.SignedRecordingURLResult, error) {
	caps := e.gate.Capabilities()
	res := call.SignedRecordingURLResult{
		Success:  caps.HasSignedRecordingURL,
		URL:      caps.SignedRecordingURL,
		Duration: caps.SignedRecordingDuration,
		CallID:   callID,
	}
	if err := e.gate.Run(ctx, gate.ActionSignedRecordingURL); err != nil {
		return call.SignedRecordingURLResult{}, err
	}
	return res, nil
}

// GetPhoneContacts lists phone book entries plus the currently online
// agents, filtered by the host's search.
func (e *Engine) GetPhoneContacts(ctx context.Context, f contacts.Filter) (call.PhoneContactsResult, error) {
	e.mu.Lock()
	var online []call.Contact
	for id, name := range e.onlineUsers {
		if id == e.agentID {
			continue
		}
		online = append(online, call.Contact{
			ID:           id,
			Type:         call.ContactAgent,
			Name:         name,
			Availability: call.AvailabilityAvailable,
		})
	}
	merged := append(online, e.directory.Phone(contacts.Filter{})...)
	e.mu.Unlock()

	res := call.PhoneContactsResult{
		Contacts: contacts.Apply(merged, f),
		ContactTypes: []call.ContactType{
			call.ContactAgent, call.ContactQueue, call.ContactPhoneBook, call.ContactPhoneNumber,
		},
	}
	if err := e.gate.Run(ctx, "getPhoneContacts"); err != nil {
		return call.PhoneContactsResult{}, err
	}
	return res, nil
}

// GetContacts lists messaging contacts matching the host's search.
func (e *Engine) GetContacts(ctx context.Context, f contacts.Filter) (call.ContactsResult, error) {
	res := call.ContactsResult{Contacts: e.directory.Messaging(f)}
	if err := e.gate.Run(ctx, "getContacts"); err != nil {
		return call.ContactsResult{}, err
	}
	return res, nil
}

// destroy removes the calls resolved by sel and broadcasts a destroy
// notification for internal calls so other sessions tear down their leg.
// Caller must hold e.mu.
func (e *Engine) destroy(ctx context.Context, sel call.Selector, reason string) ([]call.Call, error) {
	destroyed, err := e.reg.RemoveCascading(sel, reason)
	if err != nil {
		return nil, err
	}
	for _, c := range destroyed {
		if c.Kind == call.KindInternal {
			e.send(ctx, "", transport.TypeCallDestroyed, transport.CallDestroyedData{CallID: c.ID, Reason: reason})
		}
	}
	return destroyed, nil
}

// holdResult builds the combined hold status of the customer and
// third-party legs. Caller must hold e.mu.
func (e *Engine) holdResult() call.HoldToggleResult {
	return call.HoldToggleResult{
		IsThirdPartyOnHold: e.roleOnHold(call.RoleThirdParty),
		IsCustomerOnHold:   e.roleOnHold(call.RoleInitialCaller),
		Calls:              e.reg.ActiveByID(),
	}
}

func (e *Engine) roleOnHold(role call.Role) bool {
	c, err := e.reg.Get(call.ByRole(role))
	if err != nil {
		return false
	}
	return c.Attributes.IsOnHold
}

// scheduleWrapup defers the after-call-work notification to the next
// scheduling turn. Caller must hold e.mu.
func (e *Engine) scheduleWrapup(callID string) {
	e.scheduler.Defer(func() {
		e.mu.Lock()
		available := e.agentAvailable
		e.mu.Unlock()
		if available {
			e.emit(context.Background(), bus.EventAfterCallWorkStarted, WrapupStarted{CallID: callID})
		}
	})
}

// emit publishes an event to the host. Event delivery is fire-and-forget
// from the state machine's point of view; failures are only logged.
func (e *Engine) emit(ctx context.Context, eventType string, payload any) {
	if err := e.bus.Publish(ctx, eventType, payload); err != nil {
		e.log.WithError(err).WithField("event", eventType).Error("publishing event")
	}
}

// send delivers a signaling message; failures are only logged.
func (e *Engine) send(ctx context.Context, to, msgType string, data any) {
	if err := e.transport.Send(ctx, to, msgType, data); err != nil {
		e.log.WithError(err).WithField("message", msgType).Error("sending signaling message")
	}
}
