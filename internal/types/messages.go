package types

// Event type tags delivered over the staff WebSocket channel
const (
	EventIncomingCall = "incoming_call"
	EventCallResolved = "call_resolved"
)

// IncomingCallEvent is broadcast to staff when a kiosk places a call
type IncomingCallEvent struct {
	Type string `json:"type"`
	From string `json:"from"`
	SID  string `json:"sid"`
}

// CallResolvedEvent is broadcast to staff when a call has been claimed
type CallResolvedEvent struct {
	Type     string `json:"type"`
	SID      string `json:"sid"`
	Accepted bool   `json:"accepted"`
}

// NewIncomingCallEvent builds an incoming_call event for the given kiosk and SID
func NewIncomingCallEvent(from, sid string) IncomingCallEvent {
	return IncomingCallEvent{Type: EventIncomingCall, From: from, SID: sid}
}

// NewCallResolvedEvent builds a call_resolved event for the given SID
func NewCallResolvedEvent(sid string, accepted bool) CallResolvedEvent {
	return CallResolvedEvent{Type: EventCallResolved, SID: sid, Accepted: accepted}
}
