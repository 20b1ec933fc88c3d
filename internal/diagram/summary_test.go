package diagram

import (
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestSummarize(t *testing.T) {
	data := map[string]interface{}{
		"elements": []interface{}{
			map[string]interface{}{"id": "client-node-1", "type": "rectangle", "text": "Client"},
			map[string]interface{}{"id": "lb-node-123456", "type": "rectangle", "text": "Load Balancer"},
			map[string]interface{}{"id": "db-node", "type": "ellipse", "text": "Postgres"},
			map[string]interface{}{
				"id":           "arrow-1",
				"type":         "arrow",
				"text":         "HTTPS",
				"startBinding": map[string]interface{}{"elementId": "client-node-1"},
				"endBinding":   map[string]interface{}{"elementId": "lb-node-123456"},
			},
			map[string]interface{}{
				"id":           "arrow-2",
				"type":         "arrow",
				"startBinding": map[string]interface{}{"elementId": "lb-node-123456"},
				"endBinding":   map[string]interface{}{"elementId": "db-node"},
			},
			map[string]interface{}{"id": "note-1", "type": "text", "text": "read replica later"},
		},
	}

	s := Summarize(data)

	if s.TotalElements != 6 {
		t.Errorf("TotalElements = %d, want 6", s.TotalElements)
	}
	if len(s.Components) != 3 {
		t.Fatalf("components = %d, want 3", len(s.Components))
	}
	if len(s.Connections) != 2 {
		t.Fatalf("connections = %d, want 2", len(s.Connections))
	}
	if len(s.Labels) != 1 || s.Labels[0] != "read replica later" {
		t.Errorf("labels = %v, want the standalone text", s.Labels)
	}

	first := s.Connections[0]
	if first.From != "client-n" || first.To != "lb-node-" {
		t.Errorf("first arrow = %s -> %s, want truncated endpoint IDs", first.From, first.To)
	}
	if first.Label != "HTTPS" {
		t.Errorf("first arrow label = %q, want HTTPS", first.Label)
	}
	if s.IsEmpty() {
		t.Error("a populated diagram must not be empty")
	}
}

// Stored sessions come back from the driver with primitive.A/primitive.M in
// place of []interface{}/map[string]interface{}; the summarizer must read
// those the same as a freshly JSON-decoded payload.
func TestSummarizeStoredDiagram(t *testing.T) {
	data := map[string]interface{}{
		"elements": []interface{}{
			map[string]interface{}{"id": "api", "type": "rectangle", "text": "API"},
			map[string]interface{}{"id": "db", "type": "ellipse", "text": "DB"},
			map[string]interface{}{
				"id":           "arrow-1",
				"type":         "arrow",
				"startBinding": map[string]interface{}{"elementId": "api"},
				"endBinding":   map[string]interface{}{"elementId": "db"},
			},
		},
	}

	type doc struct {
		Diagram map[string]interface{} `bson:"diagram_data"`
	}
	raw, err := bson.Marshal(doc{Diagram: data})
	if err != nil {
		t.Fatalf("bson.Marshal failed: %v", err)
	}
	var loaded doc
	if err := bson.Unmarshal(raw, &loaded); err != nil {
		t.Fatalf("bson.Unmarshal failed: %v", err)
	}

	s := Summarize(loaded.Diagram)
	if s.TotalElements != 3 {
		t.Fatalf("TotalElements = %d after bson round trip, want 3", s.TotalElements)
	}
	if len(s.Components) != 2 || len(s.Connections) != 1 {
		t.Errorf("components/connections = %d/%d, want 2/1", len(s.Components), len(s.Connections))
	}
	if conn := s.Connections[0]; conn.From != "api" || conn.To != "db" {
		t.Errorf("arrow = %s -> %s, want api -> db", conn.From, conn.To)
	}
	if s.IsEmpty() {
		t.Error("a stored non-empty diagram must not summarize as empty")
	}
}

func TestSummarizeSkipsMalformedElements(t *testing.T) {
	data := map[string]interface{}{
		"elements": []interface{}{
			"not an object",
			42,
			map[string]interface{}{"id": "ok", "type": "rectangle"},
			map[string]interface{}{"type": "arrow"},
		},
	}

	s := Summarize(data)
	if s.TotalElements != 4 {
		t.Errorf("TotalElements = %d, want 4", s.TotalElements)
	}
	if len(s.Components) != 1 {
		t.Errorf("components = %d, want 1", len(s.Components))
	}
	if len(s.Connections) != 1 {
		t.Errorf("connections = %d, want 1 (unbound arrow kept with empty endpoints)", len(s.Connections))
	}
}

func TestSummarizeEmpty(t *testing.T) {
	cases := []struct {
		name string
		data map[string]interface{}
	}{
		{"nil payload", nil},
		{"no elements key", map[string]interface{}{"appState": map[string]interface{}{}}},
		{"empty elements", map[string]interface{}{"elements": []interface{}{}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Summarize(tc.data)
			if !s.IsEmpty() {
				t.Errorf("IsEmpty() = false for %s", tc.name)
			}
			if got := s.Format(); got != "Empty diagram - no elements found" {
				t.Errorf("Format() = %q", got)
			}
		})
	}
}

func TestSummaryFormat(t *testing.T) {
	s := &Summary{
		TotalElements: 3,
		Components: []Component{
			{ID: "api", Type: "rectangle", Label: "API"},
			{ID: "db", Type: "ellipse"},
		},
		Connections: []Connection{
			{ID: "a1", From: "api", To: "db", Label: "SQL"},
		},
	}

	got := s.Format()
	for _, want := range []string{
		"=== DIAGRAM SUMMARY ===",
		"Total: 3 elements",
		"Components: 2",
		"Connections: 1",
		`- RECTANGLE(api): "API"`,
		"- ELLIPSE(db)",
		`- Arrow(a1): api -> db "SQL"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Format() missing %q in:\n%s", want, got)
		}
	}
}
