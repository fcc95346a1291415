package model

import "time"

// Student is a participant in the school banking program.
type Student struct {
	ID               int64
	Name             string
	DOB              time.Time
	Class            string
	SchoolName       string
	Taluka           string
	District         string
	AttendanceNumber int64
}
