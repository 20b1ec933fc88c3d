package diagram

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestFingerprintDeterministic(t *testing.T) {
	data := map[string]interface{}{
		"elements": []interface{}{
			map[string]interface{}{"id": "a", "type": "rectangle", "x": 10.0},
			map[string]interface{}{"id": "b", "type": "ellipse", "x": 20.0},
		},
		"appState": map[string]interface{}{"zoom": 1.0},
	}

	first := Fingerprint(data)
	second := Fingerprint(data)
	if first != second {
		t.Errorf("same diagram produced different fingerprints: %q vs %q", first, second)
	}
	if len(first) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(first))
	}
}

func TestFingerprintKeyOrderIndependent(t *testing.T) {
	a := map[string]interface{}{
		"appState": map[string]interface{}{"zoom": 1.0},
		"elements": []interface{}{map[string]interface{}{"type": "rectangle", "id": "a"}},
	}
	b := map[string]interface{}{
		"elements": []interface{}{map[string]interface{}{"id": "a", "type": "rectangle"}},
		"appState": map[string]interface{}{"zoom": 1.0},
	}
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("fingerprint must not depend on map insertion order")
	}
}

func TestFingerprintDistinguishesDiagrams(t *testing.T) {
	a := map[string]interface{}{
		"elements": []interface{}{map[string]interface{}{"id": "a", "type": "rectangle"}},
	}
	b := map[string]interface{}{
		"elements": []interface{}{map[string]interface{}{"id": "b", "type": "rectangle"}},
	}
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("different diagrams must fingerprint differently")
	}
}

// A diagram fingerprinted at autosave time and again after being loaded
// back from storage must produce the same digest, or every cache lookup
// would miss.
func TestFingerprintStableAcrossStorage(t *testing.T) {
	data := map[string]interface{}{
		"elements": []interface{}{
			map[string]interface{}{"id": "a", "type": "rectangle", "text": "API"},
			map[string]interface{}{"id": "b", "type": "arrow",
				"startBinding": map[string]interface{}{"elementId": "a"}},
		},
	}
	before := Fingerprint(data)

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

	if after := Fingerprint(loaded.Diagram); after != before {
		t.Errorf("fingerprint changed across storage: %q vs %q", before, after)
	}
}

func TestFingerprintEmpty(t *testing.T) {
	empty := Fingerprint(map[string]interface{}{})
	if empty != EmptyFingerprint() {
		t.Errorf("Fingerprint(empty map) = %q, want EmptyFingerprint() = %q", empty, EmptyFingerprint())
	}
	if Fingerprint(nil) != EmptyFingerprint() {
		t.Error("a nil diagram must fingerprint as the canonical empty form")
	}
}
