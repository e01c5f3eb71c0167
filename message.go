package orchestra

// Role tags a Message with the participant that produced it.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCallRequest is a model's request to invoke a named tool.
//
// ID is an opaque correlation key. It is unique within one assistant turn and is echoed
// back on the tool message that carries the result.
type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Message is one role-tagged unit of conversation.
//
// Only assistant messages carry ToolCalls, and only tool messages carry ToolCallID and
// Name. Use the role constructors below rather than filling the struct by hand.
type Message struct {
	Role    Role
	Content string

	// ToolCalls is set on assistant messages that request tool execution.
	ToolCalls []ToolCallRequest

	// ToolCallID links a tool message to the ToolCallRequest it answers.
	ToolCallID string

	// Name is the tool that produced a tool message.
	Name string
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message, optionally requesting tool calls.
func AssistantMessage(content string, calls ...ToolCallRequest) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// ToolMessage creates a tool message answering the given request.
func ToolMessage(call ToolCallRequest, content string) Message {
	return Message{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: call.ID,
		Name:       call.Name,
	}
}

// HasToolCalls reports whether the message requests at least one tool call.
func (m Message) HasToolCalls() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}

// clone returns a copy that shares no slices or maps with m.
func (m Message) clone() Message {
	if len(m.ToolCalls) == 0 {
		return m
	}
	calls := make([]ToolCallRequest, len(m.ToolCalls))
	for i, c := range m.ToolCalls {
		args := make(map[string]any, len(c.Arguments))
		for k, v := range c.Arguments {
			args[k] = v
		}
		calls[i] = ToolCallRequest{ID: c.ID, Name: c.Name, Arguments: args}
	}
	m.ToolCalls = calls
	return m
}

// Transcript is the append-only message log of a single loop run.
//
// Appended messages are copied in and Messages returns copies, so nothing that was
// appended can be edited afterwards. A Transcript is not safe for concurrent use.
type Transcript struct {
	messages []Message
}

// NewTranscript creates a transcript seeded with the given messages.
func NewTranscript(messages ...Message) *Transcript {
	t := &Transcript{messages: make([]Message, 0, len(messages)+4)}
	t.Append(messages...)
	return t
}

// Append adds messages to the end of the transcript.
func (t *Transcript) Append(messages ...Message) {
	for _, m := range messages {
		t.messages = append(t.messages, m.clone())
	}
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	if t == nil {
		return 0
	}
	return len(t.messages)
}

// Messages returns a copy of all messages in order.
func (t *Transcript) Messages() []Message {
	if t == nil {
		return nil
	}
	out := make([]Message, len(t.messages))
	for i, m := range t.messages {
		out[i] = m.clone()
	}
	return out
}

// Last returns the most recent message, or false if the transcript is empty.
func (t *Transcript) Last() (Message, bool) {
	if t.Len() == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1].clone(), true
}

// LastAssistant returns the most recent assistant message, or false if there is none.
func (t *Transcript) LastAssistant() (Message, bool) {
	if t == nil {
		return Message{}, false
	}
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].Role == RoleAssistant {
			return t.messages[i].clone(), true
		}
	}
	return Message{}, false
}
