// Package model defines data structures for conversation reporting.
package model

import (
	"encoding/json"
	"time"
)

// LiveInstructionsKey is the context key holding per-conversation instruction variables.
const LiveInstructionsKey = "live_instructions"

// Conversation is a single conversation record as returned by the upstream platform.
// It is read-only input to aggregation.
type Conversation struct {
	ID              string         `json:"session_id,omitempty"`
	MessageCount    int            `json:"message_count"`
	AssigneeAgentID *string        `json:"assignee_agent_id"`
	CreatedAt       *time.Time     `json:"created_time,omitempty"`
	Context         map[string]any `json:"context,omitempty"`

	// Raw is the record exactly as the platform returned it.
	Raw json.RawMessage `json:"-"`
}

// HasHumanAttendance reports whether a human agent was assigned to the conversation.
func (c *Conversation) HasHumanAttendance() bool {
	return c.AssigneeAgentID != nil
}

// Tags returns the tags applied to the conversation, or nil when there are none.
func (c *Conversation) Tags() []string {
	switch tags := c.Context["tags"].(type) {
	case []string:
		return tags
	case []any:
		out := make([]string, 0, len(tags))
		for _, t := range tags {
			if s, ok := t.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// ContextValue returns a top-level context variable, or nil when absent.
func (c *Conversation) ContextValue(key string) any {
	return c.Context[key]
}

// LiveInstruction returns a variable from the nested live_instructions mapping,
// or nil when either the mapping or the variable is absent.
func (c *Conversation) LiveInstruction(key string) any {
	switch li := c.Context[LiveInstructionsKey].(type) {
	case map[string]any:
		return li[key]
	case map[string]string:
		if v, ok := li[key]; ok {
			return v
		}
	}
	return nil
}
