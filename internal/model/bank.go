package model

// BankBranch is administrator-managed master data referenced by accounts.
type BankBranch struct {
	ID       int64
	Name     string
	IFSC     string // routing code, not validated against any registry
	Taluka   string
	District string
}
