package ai

import (
	"math"
	"testing"
)

func TestUnmarshalFlexible_StandardJSON(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	err := UnmarshalFlexible(`{"name": "test"}`, &out)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Name != "test" {
		t.Fatalf("expected %q, got %q", "test", out.Name)
	}
}

func TestUnmarshalFlexible_DoubleEncoded(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	err := UnmarshalFlexible(`"{\"name\": \"test\"}"`, &out)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Name != "test" {
		t.Fatalf("expected %q, got %q", "test", out.Name)
	}
}

func TestUnmarshalFlexible_MalformedRepaired(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	err := UnmarshalFlexible(`{name: "test",}`, &out)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Name != "test" {
		t.Fatalf("expected %q, got %q", "test", out.Name)
	}
}

func TestUnmarshalFlexible_DuplicateLeadingBrace(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	err := UnmarshalFlexible(`{ {"name": "test"}`, &out)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.Name != "test" {
		t.Fatalf("expected %q, got %q", "test", out.Name)
	}
}

func TestNormalize_UnitLength(t *testing.T) {
	v := Normalize([]float32{3, 4})
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Fatalf("expected unit length, got squared norm %f", sum)
	}
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Fatalf("unexpected normalized vector: %v", v)
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	v := Normalize([]float32{0, 0, 0})
	for _, x := range v {
		if x != 0 {
			t.Fatalf("zero vector must stay zero, got %v", v)
		}
	}
}
