package picking

import "strings"

// Picker turns the name of a picked node into the popup text shown to the
// user. Only names containing Prefix produce text; names missing from the
// message table produce an empty string.
type Picker struct {
	prefix   string
	messages map[string]string
	current  string
}

// NewPicker creates a picker for the given prefix and message table.
func NewPicker(prefix string, messages map[string]string) *Picker {
	m := make(map[string]string, len(messages))
	for k, v := range messages {
		m[k] = v
	}
	return &Picker{prefix: prefix, messages: m}
}

// Resolve returns the message for a node name.
func (p *Picker) Resolve(name string) string {
	if p.prefix == "" || !strings.Contains(name, p.prefix) {
		return ""
	}
	return p.messages[name]
}

// Update records the result of a pick and reports whether the displayed
// message changed. A miss clears the message.
func (p *Picker) Update(name string, hit bool) (msg string, changed bool) {
	msg = ""
	if hit {
		msg = p.Resolve(name)
	}
	changed = msg != p.current
	p.current = msg
	return msg, changed
}

// Message returns the currently displayed message.
func (p *Picker) Message() string {
	return p.current
}
