package message

import (
	"fmt"
	"strings"
)

const (
	PolicySingle = "single"
	PolicyPack   = "pack"
)

const separator = "\n\n"

type Batcher struct {
	policy    string
	maxLength int
}

func NewBatcher(policy string, maxLength int) (*Batcher, error) {
	if policy != PolicySingle && policy != PolicyPack {
		return nil, fmt.Errorf("unknown batch policy '%s'", policy)
	}
	return &Batcher{policy: policy, maxLength: maxLength}, nil
}

// Run groups messages into units, preserving order.
func (b *Batcher) Run(messages []Message) []Unit {
	if b.policy == PolicySingle {
		units := make([]Unit, 0, len(messages))
		for _, m := range messages {
			units = append(units, Unit{Text: m.Text, ImageURL: m.ImageURL, Links: []string{m.Link}})
		}
		return units
	}

	var (
		units   []Unit
		current *Unit
		text    strings.Builder
		length  int
	)

	flush := func() {
		if current != nil {
			current.Text = text.String()
			units = append(units, *current)
			current = nil
			text.Reset()
			length = 0
		}
	}

	for _, m := range messages {
		size := Len(m.Text)
		if current != nil && length+Len(separator)+size > b.maxLength {
			flush()
		}

		if current == nil {
			current = &Unit{ImageURL: m.ImageURL}
		} else {
			text.WriteString(separator)
			length += Len(separator)
		}

		text.WriteString(m.Text)
		length += size
		current.Links = append(current.Links, m.Link)
	}
	flush()

	return units
}
