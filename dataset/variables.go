// Package dataset loads and writes phase-indexed locomotion tables in
// the canonical interchange formats (parquet and CSV) consumed by the
// stridecheck engine. The engine core never touches the filesystem;
// everything that does lives here.
package dataset

import "strings"

// Canonical signal column names, following the
// <joint>_<motion>_<measurement>_<side>_<unit> convention. Angles are
// radians; moments are newton-meters per kilogram of body mass;
// ground reaction force is in bodyweights.
var CanonicalVariables = []string{
	"hip_flexion_angle_ipsi_rad",
	"knee_flexion_angle_ipsi_rad",
	"ankle_dorsiflexion_angle_ipsi_rad",
	"hip_flexion_moment_ipsi_nm_kg",
	"knee_flexion_moment_ipsi_nm_kg",
	"ankle_dorsiflexion_moment_ipsi_nm_kg",
	"vertical_grf_ipsi_bw",
}

// VariableKind classifies a signal column by its measurement.
type VariableKind string

const (
	KindKinematic VariableKind = "kinematic" // joint angles, angular velocities
	KindKinetic   VariableKind = "kinetic"   // moments, forces, center of pressure
	KindUnknown   VariableKind = "unknown"
)

// Classify reports whether a variable name carries a kinematic or
// kinetic measurement token. Unknown names indicate drift from the
// naming convention and are logged as warnings, never rejected: the
// engine validates whatever columns it is given.
func Classify(name string) VariableKind {
	for _, tok := range strings.Split(name, "_") {
		switch tok {
		case "angle", "velocity":
			return KindKinematic
		case "moment", "force", "grf", "cop", "power":
			return KindKinetic
		}
	}
	return KindUnknown
}

// VariableName is the parsed form of a convention-compliant column
// name.
type VariableName struct {
	Joint       string
	Motion      string
	Measurement string
	Side        string
	Unit        string
}

// ParseVariableName splits a column name against the naming
// convention. The second return is false for names that do not carry
// a recognizable <side> token with joint, motion, and measurement
// before it and a unit after it.
func ParseVariableName(name string) (VariableName, bool) {
	parts := strings.Split(name, "_")
	side := -1
	for i, tok := range parts {
		if tok == "ipsi" || tok == "contra" {
			side = i
			break
		}
	}
	if side < 3 || side == len(parts)-1 {
		return VariableName{}, false
	}
	return VariableName{
		Joint:       parts[0],
		Motion:      strings.Join(parts[1:side-1], "_"),
		Measurement: parts[side-1],
		Side:        parts[side],
		Unit:        strings.Join(parts[side+1:], "_"),
	}, true
}
