package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Role identifies who authored a turn.
type Role string

const (
	RoleDeveloper Role = "developer"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PartType is the discriminator of a ContentPart.
type PartType string

const (
	PartInputText PartType = "input_text"
	PartInputFile PartType = "input_file"
)

// ContentPart is one unit of a turn's payload: either text (input_text) or an
// embedded file (input_file) whose FileData is a data URI.
type ContentPart struct {
	Type     PartType `json:"type" validate:"oneof=input_text input_file"`
	Text     string   `json:"text,omitempty"`
	Filename string   `json:"filename,omitempty"`
	FileData string   `json:"file_data,omitempty"`

	// Extra holds members the relay does not interpret. They are written back
	// out unchanged so the upstream sees the part as the caller sent it.
	Extra map[string]json.RawMessage `json:"-"`
}

// TextPart returns an input_text part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: PartInputText, Text: text}
}

// FilePart returns an input_file part.
func FilePart(filename, dataURI string) ContentPart {
	return ContentPart{Type: PartInputFile, Filename: filename, FileData: dataURI}
}

// MarshalJSON emits the fields of the part's variant followed by any Extra
// members. Text is always present on input_text parts, even when empty.
// Fields of the other variant are emitted only when set.
func (p ContentPart) MarshalJSON() ([]byte, error) {
	members := []member{{"type", p.Type}}

	if p.Type == PartInputFile {
		members = append(members, member{"filename", p.Filename}, member{"file_data", p.FileData})
		if p.Text != "" {
			members = append(members, member{"text", p.Text})
		}
	} else {
		members = append(members, member{"text", p.Text})
		if p.Filename != "" {
			members = append(members, member{"filename", p.Filename})
		}
		if p.FileData != "" {
			members = append(members, member{"file_data", p.FileData})
		}
	}

	return marshalObject(members, p.Extra)
}

// UnmarshalJSON decodes the known members and keeps the rest in Extra.
func (p *ContentPart) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*p = ContentPart{}
	known := map[string]any{
		"type":      &p.Type,
		"text":      &p.Text,
		"filename":  &p.Filename,
		"file_data": &p.FileData,
	}
	if err := takeFields(fields, known); err != nil {
		return err
	}
	if len(fields) > 0 {
		p.Extra = fields
	}
	return nil
}

// ConversationTurn is a single message in a chat exchange.
type ConversationTurn struct {
	Role    Role          `json:"role" validate:"oneof=developer user assistant"`
	Content []ContentPart `json:"content" validate:"min=1,dive"`

	// Extra holds members the relay does not interpret, such as the "type"
	// and "id" the Responses API attaches to message items.
	Extra map[string]json.RawMessage `json:"-"`

	// textContent records that Content was decoded from a bare string.
	textContent bool
}

// NewTextTurn builds a turn holding a single input_text part.
func NewTextTurn(role Role, text string) ConversationTurn {
	return ConversationTurn{
		Role:    role,
		Content: []ContentPart{TextPart(text)},
	}
}

// MarshalJSON writes role and content followed by any Extra members. Content
// that arrived as a bare string is written back as that string.
func (t ConversationTurn) MarshalJSON() ([]byte, error) {
	var content any = t.Content
	if t.textContent && len(t.Content) == 1 && t.Content[0].Type == PartInputText && len(t.Content[0].Extra) == 0 {
		content = t.Content[0].Text
	}

	return marshalObject([]member{{"role", t.Role}, {"content", content}}, t.Extra)
}

// UnmarshalJSON accepts content either as a list of parts or as a bare string,
// which is exposed as a single input_text part. Members other than role and
// content are kept in Extra.
func (t *ConversationTurn) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*t = ConversationTurn{}

	var raw json.RawMessage
	if err := takeFields(fields, map[string]any{"role": &t.Role, "content": &raw}); err != nil {
		return err
	}
	if len(fields) > 0 {
		t.Extra = fields
	}

	content := bytes.TrimSpace(raw)
	switch {
	case len(content) == 0, bytes.Equal(content, []byte("null")):
		// left empty, rejected by validation
	case content[0] == '"':
		var text string
		if err := json.Unmarshal(content, &text); err != nil {
			return err
		}
		t.Content = []ContentPart{TextPart(text)}
		t.textContent = true
	default:
		if err := json.Unmarshal(content, &t.Content); err != nil {
			return err
		}
	}

	return nil
}

type member struct {
	key   string
	value any
}

// takeFields decodes each known member of fields into its target and removes
// it, leaving only the members nobody claimed.
func takeFields(fields map[string]json.RawMessage, known map[string]any) error {
	for key, target := range known {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		delete(fields, key)

		if err := json.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// marshalObject writes members in order, then extra in key order.
func marshalObject(members []member, extra map[string]json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, value []byte) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
		return nil
	}

	for _, m := range members {
		value, err := json.Marshal(m.value)
		if err != nil {
			return nil, err
		}
		if err := write(m.key, value); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := write(key, extra[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
