package dataset

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		want VariableKind
	}{
		{"knee_flexion_angle_ipsi_rad", KindKinematic},
		{"hip_rotation_velocity_contra_rad_s", KindKinematic},
		{"ankle_dorsiflexion_moment_ipsi_nm_kg", KindKinetic},
		{"vertical_grf_ipsi_bw", KindKinetic},
		{"cop_anterior_ipsi_m", KindKinetic},
		{"step_length_ipsi_m", KindUnknown},
		{"", KindUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.name); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseVariableName(t *testing.T) {
	v, ok := ParseVariableName("knee_flexion_angle_ipsi_rad")
	if !ok {
		t.Fatal("expected convention-compliant name to parse")
	}
	if v.Joint != "knee" || v.Motion != "flexion" || v.Measurement != "angle" || v.Side != "ipsi" || v.Unit != "rad" {
		t.Fatalf("unexpected parse: %+v", v)
	}

	v, ok = ParseVariableName("hip_flexion_moment_ipsi_nm_kg")
	if !ok || v.Unit != "nm_kg" {
		t.Fatalf("multi-token unit parse failed: %+v ok=%v", v, ok)
	}

	for _, name := range []string{
		"vertical_grf_ipsi_bw", // too few tokens before the side
		"knee_flexion_angle_ipsi",
		"knee_flexion_angle_rad",
		"",
	} {
		if _, ok := ParseVariableName(name); ok {
			t.Errorf("ParseVariableName(%q) unexpectedly succeeded", name)
		}
	}
}

func TestCanonicalVariablesClassify(t *testing.T) {
	for _, name := range CanonicalVariables {
		if Classify(name) == KindUnknown {
			t.Errorf("canonical variable %q does not classify", name)
		}
	}
}
