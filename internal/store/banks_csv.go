package store

import (
	"fmt"
	"io"
	"strconv"

	"github.com/schoolbank/passbook/internal/id"
	"github.com/schoolbank/passbook/internal/model"
)

const (
	bankFields    = 5
	bankColID     = 0
	bankColName   = 1
	bankColIFSC   = 2
	bankColTaluka = 3
	bankColDist   = 4
	banksFile     = "banks.csv"
)

var bankCodec = codec[model.BankBranch]{
	file:      banksFile,
	header:    []string{"id", "name", "ifsc", "taluka", "district"},
	marshal:   MarshalBankBranch,
	unmarshal: UnmarshalBankBranch,
	id:        func(b model.BankBranch) int64 { return b.ID },
	withID:    func(b model.BankBranch, v int64) model.BankBranch { b.ID = v; return b },
}

// ReadBankBranches reads banks.csv.
func ReadBankBranches(r io.Reader) ([]model.BankBranch, error) {
	return readRecords(r, bankCodec)
}

// WriteBankBranches writes banks.csv including the header.
func WriteBankBranches(w io.Writer, banks []model.BankBranch) error {
	return writeRecords(w, bankCodec, banks)
}

// MarshalBankBranch converts a BankBranch to a CSV row.
func MarshalBankBranch(b model.BankBranch) []string {
	row := make([]string, bankFields)
	row[bankColID] = id.Format(b.ID)
	row[bankColName] = b.Name
	row[bankColIFSC] = b.IFSC
	row[bankColTaluka] = b.Taluka
	row[bankColDist] = b.District
	return row
}

// UnmarshalBankBranch converts a CSV row to a BankBranch.
func UnmarshalBankBranch(record []string) (model.BankBranch, error) {
	if len(record) != bankFields {
		return model.BankBranch{}, fmt.Errorf("expected %d fields, got %d", bankFields, len(record))
	}

	bid, err := strconv.ParseInt(record[bankColID], 10, 64)
	if err != nil {
		return model.BankBranch{}, fmt.Errorf("parsing id %q: %w", record[bankColID], err)
	}

	return model.BankBranch{
		ID:       bid,
		Name:     record[bankColName],
		IFSC:     record[bankColIFSC],
		Taluka:   record[bankColTaluka],
		District: record[bankColDist],
	}, nil
}
