package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// messageKind tags the shape an inbound job stream message decoded into.
type messageKind int

const (
	messageUnknown messageKind = iota
	// messagePlainText is anything that failed to parse as JSON.
	messagePlainText
	// messageList is a JSON array whose headline is a string.
	messageList
	// messageObject is a JSON object.
	messageObject
)

func (k messageKind) String() string {
	switch k {
	case messagePlainText:
		return "text"
	case messageList:
		return "list"
	case messageObject:
		return "object"
	default:
		return "unknown"
	}
}

// folderIDTag marks a folder id assignment tuple.
const folderIDTag = "folderid"

// inboundMessage is the decoded form of one job stream message.
type inboundMessage struct {
	kind messageKind

	// folderID is set when the message carried an assignment tuple.
	folderID string

	// lines holds the headline followed by supplementary lines (text and list kinds).
	lines []string

	object objectFields
}

// objectFields are the recognised members of an object message; nil means absent.
type objectFields struct {
	Status   *string
	Message  *string
	Messages []string
	Progress *string
	Complete bool
}

// hasUpdate reports whether any display field is present.
func (o objectFields) hasUpdate() bool {
	return o.Status != nil || o.Message != nil || o.Messages != nil || o.Progress != nil
}

// headline classification of text and list messages.
type headlineClass int

const (
	headlineProgress headlineClass = iota
	headlineComplete
	headlineError
)

func classifyHeadline(s string) headlineClass {
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, "complete"):
		return headlineComplete
	case strings.Contains(l, "error"):
		return headlineError
	default:
		return headlineProgress
	}
}

// decodeMessage classifies raw data. It never fails: anything that is not JSON
// becomes plain text and well-formed JSON of an unsupported shape becomes unknown.
func decodeMessage(data []byte) inboundMessage {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return inboundMessage{kind: messagePlainText, lines: textLines(string(data))}
	}

	switch t := v.(type) {
	case []any:
		return decodeList(t)
	case map[string]any:
		return decodeObject(t)
	default:
		return inboundMessage{kind: messageUnknown}
	}
}

func decodeList(items []any) inboundMessage {
	if len(items) == 0 {
		return inboundMessage{kind: messageUnknown}
	}

	// ["folderid", id]
	if id, ok := folderIDTuple(items); ok {
		return inboundMessage{kind: messageList, folderID: id}
	}

	msg := inboundMessage{kind: messageList}
	// [["folderid", id], headline, ...]
	if nested, ok := items[0].([]any); ok {
		id, ok := folderIDTuple(nested)
		if !ok {
			return inboundMessage{kind: messageUnknown}
		}
		msg.folderID = id
		items = items[1:]
		if len(items) == 0 {
			return msg
		}
	}

	headline, ok := items[0].(string)
	if !ok {
		return inboundMessage{kind: messageUnknown, folderID: msg.folderID}
	}
	msg.lines = append(msg.lines, headline)
	for _, it := range items[1:] {
		if s, ok := scalarString(it); ok {
			msg.lines = append(msg.lines, s)
		}
	}
	return msg
}

func folderIDTuple(items []any) (string, bool) {
	if len(items) != 2 {
		return "", false
	}
	tag, ok := items[0].(string)
	if !ok || !strings.EqualFold(strings.TrimSpace(tag), folderIDTag) {
		return "", false
	}
	id, ok := scalarString(items[1])
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return strings.TrimSpace(id), true
}

func decodeObject(m map[string]any) inboundMessage {
	var o objectFields
	if s, ok := nonEmptyScalar(m["status"]); ok {
		o.Status = &s
	}
	if s, ok := nonEmptyScalar(m["message"]); ok {
		o.Message = &s
	}
	if list, ok := m["messages"].([]any); ok {
		o.Messages = make([]string, 0, len(list))
		for _, it := range list {
			if s, ok := scalarString(it); ok {
				o.Messages = append(o.Messages, s)
			}
		}
	}
	if s, ok := nonEmptyScalar(m["progress"]); ok {
		o.Progress = &s
	}
	if b, ok := m["complete"].(bool); ok {
		o.Complete = b
	}
	return inboundMessage{kind: messageObject, object: o}
}

// scalarString renders JSON strings, numbers and booleans; null and containers are rejected.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

func nonEmptyScalar(v any) (string, bool) {
	s, ok := scalarString(v)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// textLines splits raw text into trimmed non-empty lines.
func textLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// nonEmpty drops blank entries.
func nonEmpty(lines []string) []string {
	var out []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func (m inboundMessage) String() string {
	return fmt.Sprintf("%s(%d lines)", m.kind, len(m.lines))
}
