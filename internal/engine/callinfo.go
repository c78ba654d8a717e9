package engine

import (
	"context"
	"fmt"

	"github.com/sweeney/softphone-sim/internal/call"
	"github.com/sweeney/softphone-sim/internal/gate"
)

// updateInitialCallInfo applies fn to the shared call-level info of the
// primary leg. When no initial caller exists, a connected supervisor
// stands in; that is the registry's selector fallback.
func (e *Engine) updateInitialCallInfo(fn func(*call.Info)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, err := e.reg.Get(call.ByRole(call.RoleInitialCaller))
	if err != nil {
		return err
	}
	fn(&c.Info)
	return e.reg.Put(c)
}

// Mute mutes the primary leg.
func (e *Engine) Mute(ctx context.Context) (call.MuteToggleResult, error) {
	if err := e.updateInitialCallInfo(func(i *call.Info) { i.IsMuted = true }); err != nil {
		return call.MuteToggleResult{}, fmt.Errorf("mute: %w", err)
	}
	if err := e.gate.Run(ctx, gate.ActionMute); err != nil {
		return call.MuteToggleResult{}, err
	}
	return call.MuteToggleResult{IsMuted: true}, nil
}

// Unmute unmutes the primary leg.
func (e *Engine) Unmute(ctx context.Context) (call.MuteToggleResult, error) {
	if err := e.updateInitialCallInfo(func(i *call.Info) { i.IsMuted = false }); err != nil {
		return call.MuteToggleResult{}, fmt.Errorf("unmute: %w", err)
	}
	if err := e.gate.Run(ctx, gate.ActionUnmute); err != nil {
		return call.MuteToggleResult{}, err
	}
	return call.MuteToggleResult{IsMuted: false}, nil
}

// PauseRecording pauses recording on the primary leg.
func (e *Engine) PauseRecording(ctx context.Context) (call.RecordingToggleResult, error) {
	if err := e.updateInitialCallInfo(func(i *call.Info) { i.IsRecordingPaused = true }); err != nil {
		return call.RecordingToggleResult{}, fmt.Errorf("pause recording: %w", err)
	}
	if err := e.gate.Run(ctx, gate.ActionPauseRecording); err != nil {
		return call.RecordingToggleResult{}, err
	}
	return call.RecordingToggleResult{IsRecordingPaused: true}, nil
}

// ResumeRecording resumes recording on the primary leg.
func (e *Engine) ResumeRecording(ctx context.Context) (call.RecordingToggleResult, error) {
	if err := e.updateInitialCallInfo(func(i *call.Info) { i.IsRecordingPaused = false }); err != nil {
		return call.RecordingToggleResult{}, fmt.Errorf("resume recording: %w", err)
	}
	if err := e.gate.Run(ctx, gate.ActionResumeRecording); err != nil {
		return call.RecordingToggleResult{}, err
	}
	return call.RecordingToggleResult{IsRecordingPaused: false}, nil
}

// SetRemoveParticipantVariant caches the remove-participant button
// variant the host should use while a transfer target is still dialing.
func (e *Engine) SetRemoveParticipantVariant(variant string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeParticipantVariant = variant
}
