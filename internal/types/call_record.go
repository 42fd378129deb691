package types

// CallLogEntry is one persisted record of a dispatched call.
// The log is a JSON array, newest first, capped at 100 entries.
type CallLogEntry struct {
	SID        string     `json:"sid" dynamodbav:"SID"`
	Resolution Resolution `json:"resolution" dynamodbav:"Resolution"`
	Accepted   *bool      `json:"accepted" dynamodbav:"Accepted"`
	Time       string     `json:"time" dynamodbav:"Time"`                           // RFC3339, set at creation
	ResolvedAt string     `json:"resolvedAt,omitempty" dynamodbav:"ResolvedAt"`     // RFC3339, set once on resolution
	Source     string     `json:"source" dynamodbav:"Source"`
}
