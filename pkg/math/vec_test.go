package math

import (
	"math"
	"testing"
)

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3MoveTowards(t *testing.T) {
	tests := []struct {
		name     string
		from, to Vec3
		maxDelta float32
		want     Vec3
	}{
		{"partial step", Vec3{0, 0, 0}, Vec3{10, 0, 0}, 2, Vec3{2, 0, 0}},
		{"no overshoot", Vec3{0, 0, 0}, Vec3{1, 0, 0}, 5, Vec3{1, 0, 0}},
		{"already there", Vec3{1, 2, 3}, Vec3{1, 2, 3}, 1, Vec3{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.from.MoveTowards(tt.to, tt.maxDelta)
			if got.Distance(tt.want) > 1e-5 {
				t.Errorf("MoveTowards() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3ProjectOnPlane(t *testing.T) {
	v := Vec3{3, 5, -2}
	got := v.ProjectOnPlane(Up)
	want := Vec3{3, 0, -2}
	if got != want {
		t.Errorf("ProjectOnPlane() = %v, want %v", got, want)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Error("finite vector reported as non-finite")
	}
	nan := float32(math.NaN())
	if (Vec3{nan, 0, 0}).IsFinite() {
		t.Error("NaN vector reported as finite")
	}
	inf := float32(math.Inf(1))
	if (Vec3{0, 0, inf}).IsFinite() {
		t.Error("Inf vector reported as finite")
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
