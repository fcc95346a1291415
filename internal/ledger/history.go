package ledger

import (
	"slices"
	"time"

	"github.com/schoolbank/passbook/internal/model"
)

// DayLayout is the calendar date format accepted for statement ranges.
const DayLayout = "2006-01-02"

// FilterHistory selects the account's transactions dated within the closed
// range [from, to] and orders them by date, keeping input order for equal
// dates. An inverted range is valid and yields an empty result.
func FilterHistory(
	accountNumber string,
	accounts []model.Account,
	txns []model.Transaction,
	from, to time.Time,
) ([]model.Transaction, error) {
	acct, err := FindAccount(accountNumber, accounts)
	if err != nil {
		return nil, err
	}

	out := []model.Transaction{}
	if from.After(to) {
		return out, nil
	}
	for _, t := range txns {
		if t.AccountID != acct.ID {
			continue
		}
		if t.Date.Before(from) || t.Date.After(to) {
			continue
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, func(a, b model.Transaction) int {
		return a.Date.Compare(b.Date)
	})
	return out, nil
}

// DayRange widens two calendar days to a statement range: fromDay at
// 00:00:00 through toDay at 23:59:59, both in loc.
func DayRange(fromDay, toDay time.Time, loc *time.Location) (time.Time, time.Time) {
	f := fromDay.In(loc)
	t := toDay.In(loc)
	from := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, loc)
	to := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc)
	return from, to
}

// ParseDayRange parses two DayLayout dates and widens them with DayRange.
func ParseDayRange(fromDay, toDay string, loc *time.Location) (time.Time, time.Time, error) {
	f, err := time.ParseInLocation(DayLayout, fromDay, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	t, err := time.ParseInLocation(DayLayout, toDay, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	from, to := DayRange(f, t, loc)
	return from, to, nil
}
