package domain

// Recipient identifies a notification target.
type Recipient struct {
	Name  string
	Email string
}

// Event is a post-transition fact produced by a lifecycle operation. The
// engine returns events instead of firing side effects; a dispatcher turns
// them into activity rows, notification intents and broadcasts.
type Event struct {
	Type   ActivityType
	TaskID string
	// BoardID scopes the broadcast channel for the event.
	BoardID string
	// ActorID is empty for system-triggered events.
	ActorID string
	Meta    map[string]any
	// Notify lists the recipients for event types that fan out to mail.
	Notify []Recipient
}

// UniqueRecipients deduplicates recipients by email, preserving order.
// Recipients with empty emails are dropped.
func UniqueRecipients(recipients ...Recipient) []Recipient {
	seen := make(map[string]bool, len(recipients))
	var out []Recipient
	for _, r := range recipients {
		if r.Email == "" || seen[r.Email] {
			continue
		}
		seen[r.Email] = true
		out = append(out, r)
	}
	return out
}
