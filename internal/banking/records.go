package banking

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/schoolbank/passbook/internal/model"
)

func required(v *ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "is required")
	}
}

// ValidateStudent checks that every student field is filled in.
func ValidateStudent(st model.Student) error {
	var v ValidationErrors
	required(&v, "name", st.Name)
	if st.DOB.IsZero() {
		v.add("dob", "is required")
	}
	required(&v, "class", st.Class)
	required(&v, "school_name", st.SchoolName)
	required(&v, "taluka", st.Taluka)
	required(&v, "district", st.District)
	if st.AttendanceNumber <= 0 {
		v.add("attendance_number", "must be positive")
	}
	return v.err()
}

// ValidateBankBranch checks that every bank branch field is filled in.
func ValidateBankBranch(b model.BankBranch) error {
	var v ValidationErrors
	required(&v, "name", b.Name)
	required(&v, "ifsc", b.IFSC)
	required(&v, "taluka", b.Taluka)
	required(&v, "district", b.District)
	return v.err()
}

func trimStudent(st model.Student) model.Student {
	st.Name = strings.TrimSpace(st.Name)
	st.Class = strings.TrimSpace(st.Class)
	st.SchoolName = strings.TrimSpace(st.SchoolName)
	st.Taluka = strings.TrimSpace(st.Taluka)
	st.District = strings.TrimSpace(st.District)
	return st
}

func trimBank(b model.BankBranch) model.BankBranch {
	b.Name = strings.TrimSpace(b.Name)
	b.IFSC = strings.ToUpper(strings.TrimSpace(b.IFSC))
	b.Taluka = strings.TrimSpace(b.Taluka)
	b.District = strings.TrimSpace(b.District)
	return b
}

// Students

// ListStudents returns every student.
func (s *Service) ListStudents(ctx context.Context) ([]model.Student, error) {
	return s.store.ListStudents(ctx)
}

// AddStudent validates st and stores it with a new ID.
func (s *Service) AddStudent(ctx context.Context, st model.Student) (model.Student, error) {
	st = trimStudent(st)
	if err := ValidateStudent(st); err != nil {
		return model.Student{}, err
	}
	created, err := s.store.CreateStudent(ctx, st)
	if err != nil {
		return model.Student{}, fmt.Errorf("adding student: %w", err)
	}
	s.log.Info("student added", zap.Int64("student_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// UpdateStudent replaces the student with st.ID.
func (s *Service) UpdateStudent(ctx context.Context, st model.Student) error {
	st = trimStudent(st)
	if err := ValidateStudent(st); err != nil {
		return err
	}
	if err := s.store.UpdateStudent(ctx, st); err != nil {
		return notFound(fmt.Errorf("updating student: %w", err))
	}
	s.log.Info("student updated", zap.Int64("student_id", st.ID))
	return nil
}

// DeleteStudent removes the student only. Accounts that referenced it are
// left in place and reported by Check.
func (s *Service) DeleteStudent(ctx context.Context, id int64) error {
	if err := s.store.DeleteStudent(ctx, id); err != nil {
		return notFound(fmt.Errorf("deleting student: %w", err))
	}
	s.log.Info("student deleted", zap.Int64("student_id", id))
	return nil
}

// Bank branches

// ListBankBranches returns every bank branch.
func (s *Service) ListBankBranches(ctx context.Context) ([]model.BankBranch, error) {
	return s.store.ListBankBranches(ctx)
}

// AddBankBranch validates b and stores it with a new ID. The IFSC is upper-cased.
func (s *Service) AddBankBranch(ctx context.Context, b model.BankBranch) (model.BankBranch, error) {
	b = trimBank(b)
	if err := ValidateBankBranch(b); err != nil {
		return model.BankBranch{}, err
	}
	created, err := s.store.CreateBankBranch(ctx, b)
	if err != nil {
		return model.BankBranch{}, fmt.Errorf("adding bank branch: %w", err)
	}
	s.log.Info("bank branch added", zap.Int64("bank_id", created.ID), zap.String("ifsc", created.IFSC))
	return created, nil
}

// UpdateBankBranch changes the branch record. Accounts keep the IFSC they
// copied when they were saved; Check reports the ones that now differ.
func (s *Service) UpdateBankBranch(ctx context.Context, b model.BankBranch) error {
	b = trimBank(b)
	if err := ValidateBankBranch(b); err != nil {
		return err
	}
	if err := s.store.UpdateBankBranch(ctx, b); err != nil {
		return notFound(fmt.Errorf("updating bank branch: %w", err))
	}
	s.log.Info("bank branch updated", zap.Int64("bank_id", b.ID))
	return nil
}

// DeleteBankBranch removes the branch only; accounts at it are kept.
func (s *Service) DeleteBankBranch(ctx context.Context, id int64) error {
	if err := s.store.DeleteBankBranch(ctx, id); err != nil {
		return notFound(fmt.Errorf("deleting bank branch: %w", err))
	}
	s.log.Info("bank branch deleted", zap.Int64("bank_id", id))
	return nil
}

// Accounts

// ListAccounts returns every account.
func (s *Service) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return s.store.ListAccounts(ctx)
}

// prepareAccount validates an account against the current students and
// branches and copies the branch IFSC onto it.
func (s *Service) prepareAccount(ctx context.Context, a model.Account) (model.Account, error) {
	a.AccountNumber = strings.TrimSpace(a.AccountNumber)

	var v ValidationErrors
	required(&v, "account_number", a.AccountNumber)
	if a.InitialAmount < 0 {
		v.add("initial_amount", "must not be negative")
	}

	students, err := s.store.ListStudents(ctx)
	if err != nil {
		return model.Account{}, err
	}
	banks, err := s.store.ListBankBranches(ctx)
	if err != nil {
		return model.Account{}, err
	}
	if _, ok := findStudent(students, a.StudentID); !ok {
		v.add("student_id", "unknown student %d", a.StudentID)
	}
	bank, ok := findBank(banks, a.BankID)
	if !ok {
		v.add("bank_id", "unknown bank branch %d", a.BankID)
	}
	if err := v.err(); err != nil {
		return model.Account{}, err
	}
	a.IFSC = bank.IFSC
	return a, nil
}

// AddAccount opens an account for an existing student at an existing branch.
func (s *Service) AddAccount(ctx context.Context, a model.Account) (model.Account, error) {
	a, err := s.prepareAccount(ctx, a)
	if err != nil {
		return model.Account{}, err
	}
	created, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		return model.Account{}, fmt.Errorf("adding account %q: %w", a.AccountNumber, err)
	}
	s.log.Info("account added",
		zap.Int64("account_id", created.ID),
		zap.String("account_number", created.AccountNumber),
		zap.Int64("student_id", created.StudentID))
	return created, nil
}

// UpdateAccount replaces the account with a.ID, copying the IFSC again.
func (s *Service) UpdateAccount(ctx context.Context, a model.Account) error {
	a, err := s.prepareAccount(ctx, a)
	if err != nil {
		return err
	}
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return notFound(fmt.Errorf("updating account: %w", err))
	}
	s.log.Info("account updated", zap.Int64("account_id", a.ID))
	return nil
}

// DeleteAccount removes the account only; its transactions become orphans.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return notFound(fmt.Errorf("deleting account: %w", err))
	}
	s.log.Info("account deleted", zap.Int64("account_id", id))
	return nil
}
