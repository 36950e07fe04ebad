package model

import "fmt"

// Role is one of the fixed account roles controlling endpoint access.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleDoctor  Role = "Doctor"
	RoleStudent Role = "Student"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleDoctor, RoleStudent}

// Valid reports whether r is one of the known roles. Matching is exact.
func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ParseRole converts s into a Role, rejecting anything outside the fixed set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("role must be Admin, Doctor, or Student")
	}
	return r, nil
}

// PatientStatus classifies a patient as a student or a staff member.
type PatientStatus string

const (
	StatusStudent PatientStatus = "Student"
	StatusStaff   PatientStatus = "Staff"
)

// Valid reports whether s is Student or Staff.
func (s PatientStatus) Valid() bool {
	return s == StatusStudent || s == StatusStaff
}
