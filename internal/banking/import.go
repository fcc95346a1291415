package banking

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/schoolbank/passbook/internal/model"
)

// ImportStudents validates every row before adding any, so a roster with a
// bad row is rejected as a whole. Row numbers count the header as row 1.
func (s *Service) ImportStudents(ctx context.Context, students []model.Student) ([]model.Student, error) {
	for i := range students {
		students[i] = trimStudent(students[i])
		if err := ValidateStudent(students[i]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	created := make([]model.Student, 0, len(students))
	for _, st := range students {
		c, err := s.store.CreateStudent(ctx, st)
		if err != nil {
			return created, fmt.Errorf("importing %s: %w", st.Name, err)
		}
		created = append(created, c)
	}
	s.log.Info("students imported", zap.Int("count", len(created)))
	return created, nil
}
