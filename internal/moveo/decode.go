package moveo

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/tidwall/gjson"

	"github.com/tiagoarodrigues55/moveo-report/internal/model"
)

var errInvalidPage = errors.New("conversation page is not valid JSON")

// createdKeys are tried in order for a record's creation time.
var createdKeys = []string{"created_time", "created_at", "inserted_at", "created"}

var idKeys = []string{"session_id", "conversation_id", "id"}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// page is one decoded response of the conversations endpoint.
type page struct {
	records    []gjson.Result
	nextCursor string
}

// parsePage accepts either {"conversations": [...], "pagination": {...}} or a
// bare array of conversations.
func parsePage(body []byte) (page, error) {
	if !gjson.ValidBytes(body) {
		return page{}, errInvalidPage
	}

	root := gjson.ParseBytes(body)
	if root.IsArray() {
		return page{records: root.Array()}, nil
	}

	return page{
		records:    root.Get("conversations").Array(),
		nextCursor: root.Get("pagination.next_cursor").String(),
	}, nil
}

// decodeConversation converts a raw record, substituting empty defaults for
// anything missing or mistyped.
func decodeConversation(r gjson.Result) model.Conversation {
	conv := model.Conversation{
		ID:           firstString(r, idKeys),
		MessageCount: max(int(r.Get("message_count").Int()), 0),
		CreatedAt:    createdAt(r),
		Raw:          json.RawMessage(r.Raw),
	}

	if a := r.Get("assignee_agent_id"); a.Exists() && a.Type != gjson.Null {
		id := a.String()
		conv.AssigneeAgentID = &id
	}

	if c := r.Get("context"); c.IsObject() {
		if m, ok := c.Value().(map[string]any); ok {
			conv.Context = m
		}
	}

	return conv
}

func firstString(r gjson.Result, keys []string) string {
	for _, k := range keys {
		if v := r.Get(k); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// createdAt returns nil when the record has no usable creation time.
func createdAt(r gjson.Result) *time.Time {
	for _, k := range createdKeys {
		v := r.Get(k)
		if !v.Exists() || v.Type == gjson.Null || v.String() == "" {
			continue
		}
		if v.Type == gjson.Number {
			t := time.UnixMilli(v.Int()).UTC()
			return &t
		}
		return parseTime(v.String())
	}
	return nil
}

func parseTime(s string) *time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
