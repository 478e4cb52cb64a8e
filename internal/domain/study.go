package domain

import (
	"encoding/json"
	"fmt"
)

// MCQ is a four-option multiple-choice question with an explanation.
type MCQ struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// UnmarshalJSON tolerates the camelCase "correctAnswer" key some model
// replies use instead of the requested snake_case field.
func (m *MCQ) UnmarshalJSON(data []byte) error {
	var wire struct {
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer *int     `json:"correct_answer"`
		CamelAnswer   *int     `json:"correctAnswer"`
		Explanation   string   `json:"explanation"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	m.Question = wire.Question
	m.Options = wire.Options
	m.Explanation = wire.Explanation
	switch {
	case wire.CorrectAnswer != nil:
		m.CorrectAnswer = *wire.CorrectAnswer
	case wire.CamelAnswer != nil:
		m.CorrectAnswer = *wire.CamelAnswer
	default:
		m.CorrectAnswer = 0
	}

	return nil
}

// Valid checks the option count and answer-index bounds.
func (m MCQ) Valid() bool {
	return m.Question != "" &&
		len(m.Options) == 4 &&
		m.CorrectAnswer >= 0 &&
		m.CorrectAnswer < len(m.Options)
}

// MindMap is a two-level topic tree rendered by the study clients.
type MindMap struct {
	Topic     string        `json:"topic"`
	Subtopics []MindMapNode `json:"subtopics"`
}

// MindMapNode is a named subtopic with optional children.
type MindMapNode struct {
	Name     string        `json:"name"`
	Children []MindMapLeaf `json:"children"`
}

// MindMapLeaf is a terminal mind-map entry.
type MindMapLeaf struct {
	Name string `json:"name"`
}

const defaultMindMapTopic = "Main Topic"

// DefaultMindMap is the value stored when enrichment is skipped or fails.
func DefaultMindMap() MindMap {
	return MindMap{Topic: defaultMindMapTopic, Subtopics: []MindMapNode{}}
}

// UnmarshalJSON accepts either {"name": "..."} or a bare string. Model
// replies occasionally emit the latter despite the prompt.
func (l *MindMapLeaf) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		l.Name = s
		return nil
	}

	var wire struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("mind map leaf: %w", err)
	}
	l.Name = wire.Name
	return nil
}

// UnmarshalJSON accepts either a subtopic object or a bare string.
func (n *MindMapNode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n.Name = s
		n.Children = nil
		return nil
	}

	var wire struct {
		Name     string        `json:"name"`
		Children []MindMapLeaf `json:"children"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("mind map subtopic: %w", err)
	}
	n.Name = wire.Name
	n.Children = wire.Children
	return nil
}

// Normalized drops nameless nodes and guarantees a non-empty topic and
// non-nil slices, so consumers never see a partially formed tree.
func (m MindMap) Normalized() MindMap {
	out := MindMap{Topic: m.Topic, Subtopics: make([]MindMapNode, 0, len(m.Subtopics))}
	if out.Topic == "" {
		out.Topic = defaultMindMapTopic
	}

	for _, sub := range m.Subtopics {
		if sub.Name == "" {
			continue
		}
		node := MindMapNode{Name: sub.Name, Children: make([]MindMapLeaf, 0, len(sub.Children))}
		for _, child := range sub.Children {
			if child.Name == "" {
				continue
			}
			node.Children = append(node.Children, child)
		}
		out.Subtopics = append(out.Subtopics, node)
	}

	return out
}
