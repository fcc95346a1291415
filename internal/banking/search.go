package banking

import (
	"context"
	"strings"

	"github.com/schoolbank/passbook/internal/model"
)

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// SearchStudents matches name, school or class case-insensitively. An empty
// query returns every student.
func (s *Service) SearchStudents(ctx context.Context, query string) ([]model.Student, error) {
	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := []model.Student{}
	for _, st := range students {
		if q == "" || contains(st.Name, q) || contains(st.SchoolName, q) || contains(st.Class, q) {
			out = append(out, st)
		}
	}
	return out, nil
}

// SearchAccounts matches the account number or the owning student's name.
func (s *Service) SearchAccounts(ctx context.Context, query string) ([]model.Account, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := []model.Account{}
	for _, a := range snap.Accounts {
		if q == "" || contains(a.AccountNumber, q) {
			out = append(out, a)
			continue
		}
		if st, ok := findStudent(snap.Students, a.StudentID); ok && contains(st.Name, q) {
			out = append(out, a)
		}
	}
	return out, nil
}

// StudentName returns the name of the account holder or "" when unknown.
func StudentName(students []model.Student, a model.Account) string {
	if st, ok := findStudent(students, a.StudentID); ok {
		return st.Name
	}
	return ""
}
