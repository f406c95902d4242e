package math

import (
	"testing"
)

func TestVec2Ops(t *testing.T) {
	tests := []struct {
		name string
		got  Vec2
		want Vec2
	}{
		{"add", Vec2{1, 2}.Add(Vec2{3, 4}), Vec2{4, 6}},
		{"sub", Vec2{3, 4}.Sub(Vec2{1, 2}), Vec2{2, 2}},
		{"scale", Vec2{1, 2}.Scale(3), Vec2{3, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestVec2Length(t *testing.T) {
	// Half-diagonal of a 6x8 extent, the tile bound radius shape.
	if got := (Vec2{3, 4}).Length(); got != 5 {
		t.Errorf("Length() = %v, want 5", got)
	}
	if got := (Vec2{}).Normalize(); got != (Vec2{}) {
		t.Errorf("zero Normalize() = %v, want zero", got)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	if got := x.Cross(y); got != (Vec3{0, 0, 1}) {
		t.Errorf("Cross() = %v, want +Z", got)
	}
	if got := y.Cross(x); got != (Vec3{0, 0, -1}) {
		t.Errorf("reversed Cross() = %v, want -Z", got)
	}
}

func TestVec3NormalFromTangents(t *testing.T) {
	// Tangents of a flat heightfield cell yield an up normal.
	east := Vec3{1, 0, 0}
	north := Vec3{0, 1, 0}
	n := east.Cross(north).Normalize()
	if n != (Vec3{0, 0, 1}) {
		t.Errorf("flat normal = %v, want {0 0 1}", n)
	}

	l := (Vec3{2, 0, 1}).Cross(Vec3{0, 2, 0}).Normalize().Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Normalize().Length() = %v, want ~1", l)
	}
}

func TestVec3Distance(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{2, 3, 6}
	if got := a.Distance(b); got != 7 {
		t.Errorf("Distance() = %v, want 7", got)
	}
}
