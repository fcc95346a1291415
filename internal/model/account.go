package model

// Account is a student's bank account.
//
// IFSC is a snapshot of the branch routing code taken when the account was
// created or last edited. It is not refreshed when the branch record changes.
type Account struct {
	ID            int64
	StudentID     int64
	BankID        int64
	AccountNumber string
	InitialAmount int64 // smallest currency unit, >= 0
	IFSC          string
}
