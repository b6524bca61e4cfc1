package usecase

import (
	"bytes"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"text/template"
	"time"
)

// MaxNoteLength is the longest invitation note the site accepts.
const MaxNoteLength = 300

const fallbackName = "there"

var DefaultNoteTemplates = []string{
	"Hi {{.FirstName}}, I came across your profile and would love to connect and follow your work.",
	"Hello {{.FirstName}}! I'm growing my network with people in the industry. Happy to connect.",
	"Hi {{.FirstName}}, it looks like we share professional interests. I'd be glad to have you in my network.",
}

type noteData struct {
	FirstName string
}

// MessageComposer renders personalized invitation notes from a template pool.
type MessageComposer struct {
	templates []*template.Template
	mu        sync.Mutex
	rng       *rand.Rand
}

// NewMessageComposer parses the templates. A nil source seeds from the clock.
func NewMessageComposer(templates []string, src rand.Source) (*MessageComposer, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("at least one note template is required")
	}
	parsed := make([]*template.Template, 0, len(templates))
	for i, text := range templates {
		t, err := template.New(fmt.Sprintf("note-%d", i)).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse note template %d: %w", i, err)
		}
		parsed = append(parsed, t)
	}
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &MessageComposer{templates: parsed, rng: rand.New(src)}, nil
}

// Compose renders a note for the given first name.
func (m *MessageComposer) Compose(firstName string) string {
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = fallbackName
	}

	m.mu.Lock()
	t := m.templates[m.rng.Intn(len(m.templates))]
	m.mu.Unlock()

	var buf bytes.Buffer
	if err := t.Execute(&buf, noteData{FirstName: name}); err != nil {
		return "Hi " + name + ", I'd like to connect."
	}
	return truncateRunes(buf.String(), MaxNoteLength)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
