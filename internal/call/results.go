package call

// Result payloads handed back to the host application. These are the
// values published on the event bus and returned from lifecycle
// operations; fields are JSON-tagged for the bus encoding.

// CallResult wraps a single call.
type CallResult struct {
	Call Call `json:"call"`
}

// HangupResult lists the calls destroyed by a hangup or end-call operation.
type HangupResult struct {
	Calls []Call `json:"calls"`
}

// HoldToggleResult reports the combined hold status of the customer and
// third-party legs after a hold-affecting operation.
type HoldToggleResult struct {
	IsThirdPartyOnHold bool            `json:"is_third_party_on_hold"`
	IsCustomerOnHold   bool            `json:"is_customer_on_hold"`
	Calls              map[string]Call `json:"calls,omitempty"`
}

// ParticipantResult describes the state of a transfer participant.
type ParticipantResult struct {
	PhoneNumber         string `json:"phone_number,omitempty"`
	Info                Info   `json:"call_info"`
	InitialCallHasEnded bool   `json:"initial_call_has_ended"`
	CallID              string `json:"call_id"`
}

// SuperviseCallResult wraps the supervisor's call leg.
type SuperviseCallResult struct {
	Call Call `json:"call"`
}

// SupervisorHangupResult lists supervisor legs removed from the interaction.
type SupervisorHangupResult struct {
	Calls []Call `json:"calls"`
}

// MuteToggleResult reports the mute state after a mute or unmute.
type MuteToggleResult struct {
	IsMuted bool `json:"is_muted"`
}

// RecordingToggleResult reports the recording state.
type RecordingToggleResult struct {
	IsRecordingPaused bool `json:"is_recording_paused"`
}

// SignedRecordingURLResult carries a signed playback URL for a recording.
type SignedRecordingURLResult struct {
	Success  bool   `json:"success"`
	URL      string `json:"url,omitempty"`
	Duration int    `json:"duration,omitempty"`
	CallID   string `json:"call_id"`
}

// GenericResult reports plain success or failure.
type GenericResult struct {
	Success bool `json:"success"`
}

// ActiveCallsResult lists the calls currently in the registry.
type ActiveCallsResult struct {
	ActiveCalls []Call `json:"active_calls"`
}

// ContactsResult lists directory entries matching a search.
type ContactsResult struct {
	Contacts []Contact `json:"contacts"`
}

// PhoneContactsResult lists phone book entries and the contact types the
// host should offer for transfers.
type PhoneContactsResult struct {
	Contacts     []Contact     `json:"contacts"`
	ContactTypes []ContactType `json:"contact_types,omitempty"`
}

// AgentConfigResult reports the phones configured for the agent.
type AgentConfigResult struct {
	Phones        []string `json:"phones"`
	SelectedPhone Phone    `json:"selected_phone"`
}

// Phone describes the agent's selected phone.
type Phone struct {
	Type string `json:"type"`
}

// StatsInfo is a single direction's audio channel statistics.
type StatsInfo struct {
	PacketsCount int     `json:"packets_count"`
	PacketsLost  int     `json:"packets_lost"`
	JitterMillis float64 `json:"jitter_ms"`
	RoundTripMs  float64 `json:"round_trip_ms"`
	MOS          float64 `json:"mos,omitempty"`
}

// AudioStatsElement pairs input and output channel statistics.
type AudioStatsElement struct {
	InputChannelStats  *StatsInfo `json:"input_channel_stats,omitempty"`
	OutputChannelStats *StatsInfo `json:"output_channel_stats,omitempty"`
}

// AudioStats is the audio quality report published for MOS computation.
type AudioStats struct {
	CallID                string              `json:"call_id"`
	Stats                 []AudioStatsElement `json:"stats"`
	IsAudioStatsCompleted bool                `json:"is_audio_stats_completed"`
}
