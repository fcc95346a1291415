package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/schoolbank/passbook/internal/model"
	"github.com/schoolbank/passbook/internal/money"
)

// RegisterParser reads the student register written by `student list --csv`.
// The ID column is ignored; imported students get fresh IDs.
type RegisterParser struct{}

const (
	registerNumFields = 8
	registerColName   = 1
	registerColDOB    = 2
	registerColClass  = 3
	registerColSchool = 4
	registerColTaluka = 5
	registerColDist   = 6
	registerColAttend = 7
)

// Format returns the parser name.
func (p *RegisterParser) Format() string { return "register" }

// Parse reads a register CSV and returns Students.
func (p *RegisterParser) Parse(r io.Reader, d Defaults) ([]model.Student, error) {
	return parseRows(r, registerNumFields, d, func(rec []string) (model.Student, error) {
		return buildStudent(rec[registerColName], rec[registerColDOB], rec[registerColClass],
			rec[registerColSchool], rec[registerColTaluka], rec[registerColDist], rec[registerColAttend])
	})
}

// ClassListParser reads a teacher's class list: attendance number, name,
// date of birth and class. School and location come from Defaults.
type ClassListParser struct{}

const (
	classListNumFields = 4
	classListColAttend = 0
	classListColName   = 1
	classListColDOB    = 2
	classListColClass  = 3
)

// Format returns the parser name.
func (p *ClassListParser) Format() string { return "classlist" }

// Parse reads a class list CSV and returns Students.
func (p *ClassListParser) Parse(r io.Reader, d Defaults) ([]model.Student, error) {
	return parseRows(r, classListNumFields, d, func(rec []string) (model.Student, error) {
		return buildStudent(rec[classListColName], rec[classListColDOB], rec[classListColClass],
			"", "", "", rec[classListColAttend])
	})
}

func parseRows(r io.Reader, fields int, d Defaults, row func([]string) (model.Student, error)) ([]model.Student, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading roster CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var students []model.Student
	for i, rec := range records[1:] {
		st, err := row(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		d.apply(&st)
		students = append(students, st)
	}
	return students, nil
}

func buildStudent(name, dob, class, school, taluka, district, attendance string) (model.Student, error) {
	st := model.Student{
		Name:       strings.TrimSpace(name),
		Class:      strings.TrimSpace(class),
		SchoolName: strings.TrimSpace(school),
		Taluka:     strings.TrimSpace(taluka),
		District:   strings.TrimSpace(district),
	}
	if dob = strings.TrimSpace(dob); dob != "" {
		t, err := time.Parse(money.DateLayout, dob)
		if err != nil {
			return model.Student{}, fmt.Errorf("parsing date of birth %q: %w", dob, err)
		}
		st.DOB = t
	}
	if attendance = strings.TrimSpace(attendance); attendance != "" {
		n, err := strconv.ParseInt(attendance, 10, 64)
		if err != nil {
			return model.Student{}, fmt.Errorf("parsing attendance number %q: %w", attendance, err)
		}
		st.AttendanceNumber = n
	}
	return st, nil
}
