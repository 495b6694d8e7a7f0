package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatSlerp(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))

	result0 := q1.Slerp(q2, 0)
	if math.Abs(float64(result0.W-q1.W)) > 0.001 {
		t.Errorf("Slerp at t=0 should equal q1")
	}

	result1 := q1.Slerp(q2, 1)
	if math.Abs(float64(result1.W-q2.W)) > 0.001 {
		t.Errorf("Slerp at t=1 should equal q2")
	}

	// Halfway through a 90 degree turn is 45 degrees.
	result5 := q1.Slerp(q2, 0.5)
	expectedW := float32(math.Cos(float64(math.Pi / 8)))
	if math.Abs(float64(result5.W-expectedW)) > 0.01 {
		t.Errorf("Slerp at t=0.5: expected W ~%v, got %v", expectedW, result5.W)
	}
}

func TestQuatRotate(t *testing.T) {
	q := QuatFromYaw(90)
	got := q.Rotate(Forward)
	want := Vec3{1, 0, 0}
	if got.Distance(want) > 1e-5 {
		t.Errorf("Rotate(Forward) by yaw 90 = %v, want %v", got, want)
	}
}

func TestLookRotation(t *testing.T) {
	tests := []struct {
		name    string
		forward Vec3
	}{
		{"right", Vec3{1, 0, 0}},
		{"back", Vec3{0, 0, -1}},
		{"diagonal", Vec3{1, 1, 1}},
		{"straight up", Vec3{0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := LookRotation(tt.forward, Up)
			got := q.Forward()
			want := tt.forward.Normalize()
			if got.Distance(want) > 1e-4 {
				t.Errorf("LookRotation(%v).Forward() = %v, want %v", tt.forward, got, want)
			}
		})
	}

	if q := LookRotation(Vec3{}, Up); q != QuatIdentity() {
		t.Errorf("LookRotation(zero) = %v, want identity", q)
	}
}

func TestQuatAngle(t *testing.T) {
	a := QuatIdentity()
	b := QuatFromYaw(60)
	if got := a.Angle(b); math.Abs(float64(got-60)) > 0.01 {
		t.Errorf("Angle() = %v, want 60", got)
	}
	if got := b.Angle(b); got > 0.1 {
		t.Errorf("Angle(self) = %v, want 0", got)
	}
}

func TestQuatRotateTowards(t *testing.T) {
	from := QuatIdentity()
	to := QuatFromYaw(90)

	step := from.RotateTowards(to, 30)
	if got := from.Angle(step); math.Abs(float64(got-30)) > 0.05 {
		t.Errorf("RotateTowards step angle = %v, want 30", got)
	}

	final := from.RotateTowards(to, 120)
	if final != to {
		t.Errorf("RotateTowards should snap to target when within step, got %v", final)
	}
}
