package components

import (
	"testing"

	"github.com/pthm-cable/psiscout/config"
)

func TestScoutTypeCount(t *testing.T) {
	if NumScoutTypes != config.NumScoutTypes {
		t.Fatalf("NumScoutTypes = %d, config expects %d", NumScoutTypes, config.NumScoutTypes)
	}
	if got := len(AllScoutTypes()); got != 12 {
		t.Errorf("AllScoutTypes() has %d entries, want 12", got)
	}
}

func TestScoutTypeFamilies(t *testing.T) {
	tests := []struct {
		typ  ScoutType
		want Family
	}{
		{EdgeVertical, FamilyEdge},
		{EdgeDiagonal2, FamilyEdge},
		{MotionUp, FamilyMotion},
		{MotionRight, FamilyMotion},
		{ColorBright, FamilyColor},
		{ColorDark, FamilyColor},
		{TextureHigh, FamilyTexture},
		{TextureLow, FamilyTexture},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			if got := tt.typ.Family(); got != tt.want {
				t.Errorf("%v.Family() = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestScoutTypeNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, typ := range AllScoutTypes() {
		name := typ.String()
		if name == "" || name == "unknown" {
			t.Errorf("type %d has no name", typ)
		}
		if seen[name] {
			t.Errorf("duplicate name %q", name)
		}
		seen[name] = true
	}

	if ScoutType(200).Valid() {
		t.Error("out-of-range type reported valid")
	}
	if ScoutType(200).String() != "unknown" {
		t.Error("out-of-range type should be named unknown")
	}
}
