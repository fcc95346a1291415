package ledger

import (
	"time"

	"github.com/schoolbank/passbook/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func deposit(id, accountID, amount int64, date time.Time) model.Transaction {
	return model.Transaction{ID: id, AccountID: accountID, Kind: model.KindDeposit, Amount: amount, Date: date}
}

func withdrawal(id, accountID, amount int64, date time.Time) model.Transaction {
	return model.Transaction{ID: id, AccountID: accountID, Kind: model.KindWithdrawal, Amount: amount, Date: date}
}
