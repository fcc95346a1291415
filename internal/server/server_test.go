package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/schoolbank/passbook/internal/banking"
	"github.com/schoolbank/passbook/internal/model"
	"github.com/schoolbank/passbook/internal/money"
	"github.com/schoolbank/passbook/internal/session"
	"github.com/schoolbank/passbook/internal/store"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*Server, *Verifier) {
	t.Helper()
	ctx := context.Background()

	st, err := store.OpenCSV(t.TempDir())
	require.NoError(t, err)
	svc := banking.NewService(st, nil, banking.WithLocation(time.UTC))

	student, err := svc.AddStudent(ctx, model.Student{
		Name: "Asha Patil", DOB: time.Date(2012, 6, 14, 0, 0, 0, 0, time.UTC), Class: "6A",
		SchoolName: "ZP School Wai", Taluka: "Wai", District: "Satara", AttendanceNumber: 12,
	})
	require.NoError(t, err)
	bank, err := svc.AddBankBranch(ctx, model.BankBranch{Name: "SBI Wai", IFSC: "SBIN0000123", Taluka: "Wai", District: "Satara"})
	require.NoError(t, err)
	_, err = svc.AddAccount(ctx, model.Account{StudentID: student.ID, BankID: bank.ID, AccountNumber: "0042", InitialAmount: 1500})
	require.NoError(t, err)
	_, err = svc.AddAccount(ctx, model.Account{StudentID: student.ID, BankID: bank.ID, AccountNumber: "0043", InitialAmount: 10})
	require.NoError(t, err)

	for _, p := range []banking.RecordParams{
		{AccountNumber: "0042", Kind: model.KindDeposit, Date: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC), Amount: 200000, Reason: "Scholarship"},
		{AccountNumber: "0042", Kind: model.KindWithdrawal, Date: time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC), Amount: 500, Reason: "Books"},
	} {
		_, err := svc.RecordTransaction(ctx, p)
		require.NoError(t, err)
	}

	v, err := NewVerifier(testSecret, "passbook")
	require.NoError(t, err)
	return New(svc, v, money.Rupees, nil), v
}

func token(t *testing.T, v *Verifier, sess session.Session) string {
	t.Helper()
	tok, err := v.Issue(sess, time.Hour, time.Now())
	require.NoError(t, err)
	return tok
}

func get(t *testing.T, s *Server, path, tok string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthRequired(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/v1/accounts/0042/balance", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(t, s, "/api/v1/accounts/0042/balance", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := NewVerifier("other-secret", "passbook")
	require.NoError(t, err)
	rec = get(t, s, "/api/v1/accounts/0042/balance", token(t, other, session.Admin()))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "invalid token", body["error"])
}

func TestExpiredToken(t *testing.T) {
	s, v := newTestServer(t)
	tok, err := v.Issue(session.Admin(), time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	rec := get(t, s, "/api/v1/summary", tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenWithoutExpiry(t *testing.T) {
	s, _ := newTestServer(t)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "passbook"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec := get(t, s, "/api/v1/summary", tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBalance(t *testing.T) {
	s, v := newTestServer(t)
	rec := get(t, s, "/api/v1/accounts/0042/balance", token(t, v, session.Admin()))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		AccountNumber string `json:"account_number"`
		Balance       amount `json:"balance"`
	}
	decode(t, rec, &body)
	assert.Equal(t, "0042", body.AccountNumber)
	assert.Equal(t, int64(201000), body.Balance.Value)
	assert.Equal(t, "₹2,01,000", body.Balance.Display)
}

func TestUserSeesOnlyOwnAccount(t *testing.T) {
	s, v := newTestServer(t)
	user, err := session.User("0042")
	require.NoError(t, err)
	tok := token(t, v, user)

	rec := get(t, s, "/api/v1/accounts/0042/passbook", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var pb passbookResponse
	decode(t, rec, &pb)
	assert.Equal(t, "SBIN0000123", pb.IFSC)
	require.NotNil(t, pb.Student)
	assert.Equal(t, "Asha Patil", pb.Student.Name)
	require.Len(t, pb.Entries, 2)
	assert.Equal(t, int64(201500), pb.Entries[0].Balance.Value)
	assert.Equal(t, int64(201000), pb.Balance.Value)

	rec = get(t, s, "/api/v1/accounts/0043/passbook", tok)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = get(t, s, "/api/v1/summary", tok)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestNotFound(t *testing.T) {
	s, v := newTestServer(t)
	rec := get(t, s, "/api/v1/accounts/9999/passbook", token(t, v, session.Admin()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistory(t *testing.T) {
	s, v := newTestServer(t)
	tok := token(t, v, session.Admin())

	rec := get(t, s, "/api/v1/accounts/0042/history?from=2024-07-05&to=2024-07-31", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var h historyResponse
	decode(t, rec, &h)
	require.Len(t, h.Entries, 1)
	assert.Equal(t, "withdrawal", h.Entries[0].Kind)
	assert.Equal(t, int64(201000), h.Entries[0].Balance.Value)

	rec = get(t, s, "/api/v1/accounts/0042/history?from=2024-07-31&to=2024-07-01", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &h)
	assert.Empty(t, h.Entries)

	rec = get(t, s, "/api/v1/accounts/0042/history?from=yesterday&to=2024-07-01", tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummary(t *testing.T) {
	s, v := newTestServer(t)
	rec := get(t, s, "/api/v1/summary", token(t, v, session.Admin()))
	require.Equal(t, http.StatusOK, rec.Code)

	var sum summaryResponse
	decode(t, rec, &sum)
	assert.Equal(t, int64(1510), sum.TotalInitial.Value)
	assert.Equal(t, int64(200000), sum.TotalDeposits.Value)
	assert.Equal(t, int64(500), sum.TotalWithdrawals.Value)
	assert.Equal(t, int64(201010), sum.NetBalance.Value)
	assert.Equal(t, 2, sum.AccountCount)
	assert.Equal(t, 2, sum.TransactionCount)
}

func TestVerifier(t *testing.T) {
	_, err := NewVerifier("", "passbook")
	assert.Error(t, err)

	v, err := NewVerifier(testSecret, "passbook")
	require.NoError(t, err)

	_, err = v.Issue(session.Guest(), time.Hour, time.Now())
	assert.Error(t, err)

	user, err := session.User("0042")
	require.NoError(t, err)
	got, err := v.Parse(token(t, v, user))
	require.NoError(t, err)
	assert.Equal(t, user, got)

	wrongIssuer, err := NewVerifier(testSecret, "someone-else")
	require.NoError(t, err)
	_, err = wrongIssuer.Parse(token(t, v, user))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := requestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := w.(http.Flusher)
		assert.True(t, ok, "wrapped writer must still flush")
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pot", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, int64(15), fields["bytes"])
	assert.Equal(t, "/pot", fields["path"])
}

func TestRequestLoggerDefaultsToOK(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := requestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, logs.All(), 1)
	assert.Equal(t, int64(http.StatusOK), logs.All()[0].ContextMap()["status"])
}
