package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/schoolbank/passbook/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Postgres keeps records in a PostgreSQL database.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Migrate creates the tables if they do not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func wrapWrite(what string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", what, ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func expectOne(tag pgconn.CommandTag, what string, recID int64) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s id %d: %w", what, recID, ErrNotFound)
	}
	return nil
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Students

const studentColumns = "id, name, dob, class, school_name, taluka, district, attendance_number"

func scanStudent(row pgx.Row) (model.Student, error) {
	var s model.Student
	var dob *time.Time
	if err := row.Scan(&s.ID, &s.Name, &dob, &s.Class, &s.SchoolName, &s.Taluka, &s.District, &s.AttendanceNumber); err != nil {
		return model.Student{}, err
	}
	if dob != nil {
		s.DOB = time.Date(dob.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC)
	}
	return s, nil
}

func (p *Postgres) ListStudents(ctx context.Context) ([]model.Student, error) {
	rows, err := p.pool.Query(ctx, "SELECT "+studentColumns+" FROM students ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	return collect(rows, scanStudent, "students")
}

func (p *Postgres) CreateStudent(ctx context.Context, s model.Student) (model.Student, error) {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO students (name, dob, class, school_name, taluka, district, attendance_number)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		s.Name, nullableDate(s.DOB), s.Class, s.SchoolName, s.Taluka, s.District, s.AttendanceNumber,
	).Scan(&s.ID)
	if err != nil {
		return model.Student{}, wrapWrite("creating student", err)
	}
	return s, nil
}

func (p *Postgres) UpdateStudent(ctx context.Context, s model.Student) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE students SET name = $2, dob = $3, class = $4, school_name = $5,
		 taluka = $6, district = $7, attendance_number = $8 WHERE id = $1`,
		s.ID, s.Name, nullableDate(s.DOB), s.Class, s.SchoolName, s.Taluka, s.District, s.AttendanceNumber,
	)
	if err != nil {
		return wrapWrite("updating student", err)
	}
	return expectOne(tag, "student", s.ID)
}

func (p *Postgres) DeleteStudent(ctx context.Context, recID int64) error {
	return p.deleteByID(ctx, "students", "student", recID)
}

// Bank branches

const bankColumns = "id, name, ifsc, taluka, district"

func scanBankBranch(row pgx.Row) (model.BankBranch, error) {
	var b model.BankBranch
	err := row.Scan(&b.ID, &b.Name, &b.IFSC, &b.Taluka, &b.District)
	return b, err
}

func (p *Postgres) ListBankBranches(ctx context.Context) ([]model.BankBranch, error) {
	rows, err := p.pool.Query(ctx, "SELECT "+bankColumns+" FROM bank_branches ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing bank branches: %w", err)
	}
	return collect(rows, scanBankBranch, "bank branches")
}

func (p *Postgres) CreateBankBranch(ctx context.Context, b model.BankBranch) (model.BankBranch, error) {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO bank_branches (name, ifsc, taluka, district) VALUES ($1, $2, $3, $4) RETURNING id`,
		b.Name, b.IFSC, b.Taluka, b.District,
	).Scan(&b.ID)
	if err != nil {
		return model.BankBranch{}, wrapWrite("creating bank branch", err)
	}
	return b, nil
}

func (p *Postgres) UpdateBankBranch(ctx context.Context, b model.BankBranch) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE bank_branches SET name = $2, ifsc = $3, taluka = $4, district = $5 WHERE id = $1`,
		b.ID, b.Name, b.IFSC, b.Taluka, b.District,
	)
	if err != nil {
		return wrapWrite("updating bank branch", err)
	}
	return expectOne(tag, "bank branch", b.ID)
}

func (p *Postgres) DeleteBankBranch(ctx context.Context, recID int64) error {
	return p.deleteByID(ctx, "bank_branches", "bank branch", recID)
}

// Accounts

const accountColumns = "id, student_id, bank_id, account_number, initial_amount, ifsc"

func scanAccount(row pgx.Row) (model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.StudentID, &a.BankID, &a.AccountNumber, &a.InitialAmount, &a.IFSC)
	return a, err
}

func (p *Postgres) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := p.pool.Query(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return collect(rows, scanAccount, "accounts")
}

func (p *Postgres) FindAccountByNumber(ctx context.Context, accountNumber string) (model.Account, error) {
	a, err := scanAccount(p.pool.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE account_number = $1 ORDER BY id LIMIT 1",
		accountNumber,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Account{}, fmt.Errorf("account %q: %w", accountNumber, ErrNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("finding account %q: %w", accountNumber, err)
	}
	return a, nil
}

func (p *Postgres) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO accounts (student_id, bank_id, account_number, initial_amount, ifsc)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		a.StudentID, a.BankID, a.AccountNumber, a.InitialAmount, a.IFSC,
	).Scan(&a.ID)
	if err != nil {
		return model.Account{}, wrapWrite("creating account", err)
	}
	return a, nil
}

func (p *Postgres) UpdateAccount(ctx context.Context, a model.Account) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE accounts SET student_id = $2, bank_id = $3, account_number = $4,
		 initial_amount = $5, ifsc = $6 WHERE id = $1`,
		a.ID, a.StudentID, a.BankID, a.AccountNumber, a.InitialAmount, a.IFSC,
	)
	if err != nil {
		return wrapWrite("updating account", err)
	}
	return expectOne(tag, "account", a.ID)
}

func (p *Postgres) DeleteAccount(ctx context.Context, recID int64) error {
	return p.deleteByID(ctx, "accounts", "account", recID)
}

// Transactions

const txnColumns = "id, account_id, kind, date, amount, reason, total_amount"

func scanTransaction(row pgx.Row) (model.Transaction, error) {
	var t model.Transaction
	var kind string
	if err := row.Scan(&t.ID, &t.AccountID, &kind, &t.Date, &t.Amount, &t.Reason, &t.TotalAmount); err != nil {
		return model.Transaction{}, err
	}
	k, err := model.ParseKind(kind)
	if err != nil {
		return model.Transaction{}, err
	}
	t.Kind = k
	return t, nil
}

func (p *Postgres) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := p.pool.Query(ctx, "SELECT "+txnColumns+" FROM transactions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return collect(rows, scanTransaction, "transactions")
}

func (p *Postgres) CreateTransaction(ctx context.Context, t model.Transaction) (model.Transaction, error) {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO transactions (account_id, kind, date, amount, reason, total_amount)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		t.AccountID, string(t.Kind), t.Date, t.Amount, t.Reason, t.TotalAmount,
	).Scan(&t.ID)
	if err != nil {
		return model.Transaction{}, wrapWrite("creating transaction", err)
	}
	return t, nil
}

const updateTxnSQL = `UPDATE transactions SET account_id = $2, kind = $3, date = $4, amount = $5,
 reason = $6, total_amount = $7 WHERE id = $1`

func (p *Postgres) UpdateTransaction(ctx context.Context, t model.Transaction) error {
	tag, err := p.pool.Exec(ctx, updateTxnSQL,
		t.ID, t.AccountID, string(t.Kind), t.Date, t.Amount, t.Reason, t.TotalAmount)
	if err != nil {
		return wrapWrite("updating transaction", err)
	}
	return expectOne(tag, "transaction", t.ID)
}

func (p *Postgres) UpdateTransactions(ctx context.Context, txns []model.Transaction) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		for _, t := range txns {
			tag, err := tx.Exec(ctx, updateTxnSQL,
				t.ID, t.AccountID, string(t.Kind), t.Date, t.Amount, t.Reason, t.TotalAmount)
			if err != nil {
				return wrapWrite("updating transaction", err)
			}
			if err := expectOne(tag, "transaction", t.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Postgres) DeleteTransaction(ctx context.Context, recID int64) error {
	return p.deleteByID(ctx, "transactions", "transaction", recID)
}

func (p *Postgres) deleteByID(ctx context.Context, table, what string, recID int64) error {
	tag, err := p.pool.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", recID)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", what, err)
	}
	return expectOne(tag, what, recID)
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error), what string) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", what, err)
	}
	return out, nil
}
