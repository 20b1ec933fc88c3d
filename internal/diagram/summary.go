package diagram

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Component is one extracted diagram element.
type Component struct {
	ID    string
	Type  string
	Label string
}

// Connection is an arrow between two components.
type Connection struct {
	ID    string
	From  string
	To    string
	Label string
}

// Summary is the canonical, display- and prompt-ready view of a diagram
// snapshot. It is a pure function of the payload: same diagram in, same
// summary out.
type Summary struct {
	TotalElements int
	Components    []Component
	Connections   []Connection
	Labels        []string
}

// IsEmpty reports whether the diagram contains no elements at all.
func (s *Summary) IsEmpty() bool {
	return s.TotalElements == 0
}

// Summarize extracts components, connections, and text labels from a raw
// canvas payload. Shapes (rectangle, ellipse, diamond, ...) become
// components, arrows become connections, standalone text becomes labels.
// Unknown or malformed elements are skipped, not rejected.
//
// Payloads arrive both JSON-decoded (from request bodies) and BSON-decoded
// (from stored sessions, where the driver produces primitive.A/primitive.M
// for nested values); both forms are accepted.
func Summarize(data map[string]interface{}) *Summary {
	summary := &Summary{}
	if data == nil {
		return summary
	}

	elements := asList(data["elements"])
	summary.TotalElements = len(elements)

	for _, raw := range elements {
		elem := asMap(raw)
		if elem == nil {
			continue
		}

		elemType, _ := elem["type"].(string)
		elemID, _ := elem["id"].(string)
		elemText, _ := elem["text"].(string)

		switch elemType {
		case "arrow":
			summary.Connections = append(summary.Connections, Connection{
				ID:    shortID(elemID),
				From:  shortID(bindingTarget(elem, "startBinding")),
				To:    shortID(bindingTarget(elem, "endBinding")),
				Label: elemText,
			})
		case "text":
			if elemText != "" {
				summary.Labels = append(summary.Labels, elemText)
			}
		default:
			summary.Components = append(summary.Components, Component{
				ID:    shortID(elemID),
				Type:  elemType,
				Label: elemText,
			})
		}
	}

	return summary
}

// Format renders the summary as the text block sent to the evaluator and
// shown in feedback.
func (s *Summary) Format() string {
	if s.TotalElements == 0 {
		return "Empty diagram - no elements found"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== DIAGRAM SUMMARY ===\n")
	fmt.Fprintf(&b, "Total: %d elements\n", s.TotalElements)
	fmt.Fprintf(&b, "Components: %d\n", len(s.Components))
	fmt.Fprintf(&b, "Connections: %d\n", len(s.Connections))

	if len(s.Components) > 0 {
		b.WriteString("\n=== COMPONENTS ===\n")
		for _, c := range s.Components {
			fmt.Fprintf(&b, "- %s(%s)", strings.ToUpper(c.Type), c.ID)
			if c.Label != "" {
				fmt.Fprintf(&b, ": %q", c.Label)
			}
			b.WriteString("\n")
		}
	}

	if len(s.Connections) > 0 {
		b.WriteString("\n=== CONNECTIONS ===\n")
		for _, c := range s.Connections {
			fmt.Fprintf(&b, "- Arrow(%s): %s -> %s", c.ID, c.From, c.To)
			if c.Label != "" {
				fmt.Fprintf(&b, " %q", c.Label)
			}
			b.WriteString("\n")
		}
	}

	if len(s.Labels) > 0 {
		b.WriteString("\n=== LABELS ===\n")
		for i, label := range s.Labels {
			if i >= 10 {
				break
			}
			fmt.Fprintf(&b, "- %q\n", label)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func bindingTarget(elem map[string]interface{}, key string) string {
	binding := asMap(elem[key])
	if binding == nil {
		return ""
	}
	target, _ := binding["elementId"].(string)
	return target
}

func asList(v interface{}) []interface{} {
	switch l := v.(type) {
	case []interface{}:
		return l
	case primitive.A:
		return []interface{}(l)
	}
	return nil
}

func asMap(v interface{}) map[string]interface{} {
	switch m := v.(type) {
	case map[string]interface{}:
		return m
	case primitive.M:
		return map[string]interface{}(m)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
