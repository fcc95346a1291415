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
	txnFields     = 7
	txnColID      = 0
	txnColAccount = 1
	txnColKind    = 2
	txnColDate    = 3
	txnColAmount  = 4
	txnColReason  = 5
	txnColTotal   = 6
	txnDateFormat = time.RFC3339Nano
	txnsFile      = "transactions.csv"
)

var txnCodec = codec[model.Transaction]{
	file:      txnsFile,
	header:    []string{"id", "account_id", "kind", "date", "amount", "reason", "total_amount"},
	marshal:   MarshalTransaction,
	unmarshal: UnmarshalTransaction,
	id:        func(t model.Transaction) int64 { return t.ID },
	withID:    func(t model.Transaction, v int64) model.Transaction { t.ID = v; return t },
}

// ReadTransactions reads transactions.csv.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	return readRecords(r, txnCodec)
}

// WriteTransactions writes transactions.csv including the header.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	return writeRecords(w, txnCodec, txns)
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, txnFields)
	row[txnColID] = id.Format(t.ID)
	row[txnColAccount] = strconv.FormatInt(t.AccountID, 10)
	row[txnColKind] = string(t.Kind)
	row[txnColDate] = t.Date.Format(txnDateFormat)
	row[txnColAmount] = strconv.FormatInt(t.Amount, 10)
	row[txnColReason] = t.Reason
	row[txnColTotal] = strconv.FormatInt(t.TotalAmount, 10)
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != txnFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", txnFields, len(record))
	}

	tid, err := strconv.ParseInt(record[txnColID], 10, 64)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing id %q: %w", record[txnColID], err)
	}

	accountID, err := strconv.ParseInt(record[txnColAccount], 10, 64)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing account_id %q: %w", record[txnColAccount], err)
	}

	kind, err := model.ParseKind(record[txnColKind])
	if err != nil {
		return model.Transaction{}, err
	}

	date, err := time.Parse(txnDateFormat, record[txnColDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[txnColDate], err)
	}

	amount, err := strconv.ParseInt(record[txnColAmount], 10, 64)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[txnColAmount], err)
	}

	total, err := strconv.ParseInt(record[txnColTotal], 10, 64)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing total_amount %q: %w", record[txnColTotal], err)
	}

	return model.Transaction{
		ID:          tid,
		AccountID:   accountID,
		Kind:        kind,
		Date:        date,
		Amount:      amount,
		Reason:      record[txnColReason],
		TotalAmount: total,
	}, nil
}
