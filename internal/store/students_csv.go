package store

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/schoolbank/passbook/internal/id"
	"github.com/schoolbank/passbook/internal/model"
)

const (
	studentFields    = 8
	studentColID     = 0
	studentColName   = 1
	studentColDOB    = 2
	studentColClass  = 3
	studentColSchool = 4
	studentColTaluka = 5
	studentColDist   = 6
	studentColAttend = 7
	dateOnlyFormat   = "2006-01-02"
	studentsFile     = "students.csv"
)

var studentHeader = []string{"id", "name", "dob", "class", "school_name", "taluka", "district", "attendance_number"}

var studentCodec = codec[model.Student]{
	file:      studentsFile,
	header:    studentHeader,
	marshal:   MarshalStudent,
	unmarshal: UnmarshalStudent,
	id:        func(s model.Student) int64 { return s.ID },
	withID:    func(s model.Student, v int64) model.Student { s.ID = v; return s },
}

// ReadStudents reads students.csv.
func ReadStudents(r io.Reader) ([]model.Student, error) {
	return readRecords(r, studentCodec)
}

// WriteStudents writes students.csv including the header.
func WriteStudents(w io.Writer, students []model.Student) error {
	return writeRecords(w, studentCodec, students)
}

// MarshalStudent converts a Student to a CSV row.
func MarshalStudent(s model.Student) []string {
	row := make([]string, studentFields)
	row[studentColID] = id.Format(s.ID)
	row[studentColName] = s.Name
	if !s.DOB.IsZero() {
		row[studentColDOB] = s.DOB.Format(dateOnlyFormat)
	}
	row[studentColClass] = s.Class
	row[studentColSchool] = s.SchoolName
	row[studentColTaluka] = s.Taluka
	row[studentColDist] = s.District
	row[studentColAttend] = strconv.FormatInt(s.AttendanceNumber, 10)
	return row
}

// UnmarshalStudent converts a CSV row to a Student.
func UnmarshalStudent(record []string) (model.Student, error) {
	if len(record) != studentFields {
		return model.Student{}, fmt.Errorf("expected %d fields, got %d", studentFields, len(record))
	}

	sid, err := strconv.ParseInt(record[studentColID], 10, 64)
	if err != nil {
		return model.Student{}, fmt.Errorf("parsing id %q: %w", record[studentColID], err)
	}

	var dob time.Time
	if record[studentColDOB] != "" {
		dob, err = time.Parse(dateOnlyFormat, record[studentColDOB])
		if err != nil {
			return model.Student{}, fmt.Errorf("parsing dob %q: %w", record[studentColDOB], err)
		}
	}

	var attendance int64
	if record[studentColAttend] != "" {
		attendance, err = strconv.ParseInt(record[studentColAttend], 10, 64)
		if err != nil {
			return model.Student{}, fmt.Errorf("parsing attendance_number %q: %w", record[studentColAttend], err)
		}
	}

	return model.Student{
		ID:               sid,
		Name:             record[studentColName],
		DOB:              dob,
		Class:            record[studentColClass],
		SchoolName:       record[studentColSchool],
		Taluka:           record[studentColTaluka],
		District:         record[studentColDist],
		AttendanceNumber: attendance,
	}, nil
}
