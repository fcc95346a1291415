package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("deposit")
	require.NoError(t, err)
	assert.Equal(t, KindDeposit, k)

	k, err = ParseKind("withdrawal")
	require.NoError(t, err)
	assert.Equal(t, KindWithdrawal, k)

	_, err = ParseKind("Deposit")
	assert.Error(t, err, "kinds are case-sensitive")
	_, err = ParseKind("")
	assert.Error(t, err)
}

func TestTransactionSigned(t *testing.T) {
	assert.Equal(t, int64(200), Transaction{Kind: KindDeposit, Amount: 200}.Signed())
	assert.Equal(t, int64(-50), Transaction{Kind: KindWithdrawal, Amount: 50}.Signed())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
	}{
		{"admin", RoleAdmin},
		{"user", RoleUser},
		{"guest", RoleGuest},
		{"", RoleGuest},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.input)
		require.NoError(t, err, "input: %q", tt.input)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseRole("root")
	assert.Error(t, err)
}
