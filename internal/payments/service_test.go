package payments

import (
	"context"
	"testing"

	"fahran-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPaymentsTest(t *testing.T) (*Service, *gorm.DB, *domain.Member) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Member{}, &domain.Share{}, &domain.MonthlyPayment{}, &domain.Transaction{},
	))
	m := &domain.Member{
		Name:       "arif",
		Email:      "arif@example.com",
		MemberType: domain.MemberTypeRegular,
	}
	require.NoError(t, db.Create(m).Error)
	require.NoError(t, db.Create(&domain.Share{
		MemberID:  m.MemberID,
		ShareType: domain.ShareTypeBase,
		Quantity:  3,
	}).Error)
	return &Service{DB: db}, db, m
}

func TestRecord_FullPayment(t *testing.T) {
	svc, db, m := setupPaymentsTest(t)

	payment, err := svc.Record(context.Background(), RecordInput{
		MemberID: m.MemberID,
		Month:    5,
		Year:     2026,
		Amount:   300,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, payment.BaseSharesCount)
	assert.Equal(t, 300.0, payment.AmountDue)
	assert.True(t, payment.IsPaid)
	require.NotNil(t, payment.PaidAt)

	// Dues payment lands in the transaction ledger.
	var txs []domain.Transaction
	require.NoError(t, db.Where("member_id = ? AND type = ?", m.MemberID, domain.TxPayment).Find(&txs).Error)
	require.Len(t, txs, 1)
	assert.Equal(t, 300.0, txs[0].Amount)

	// And the base share row carries the payment date.
	var share domain.Share
	require.NoError(t, db.Where("member_id = ? AND share_type = ?", m.MemberID, domain.ShareTypeBase).First(&share).Error)
	assert.NotNil(t, share.LastPaymentDate)
}

func TestRecord_PartialPayment(t *testing.T) {
	svc, _, m := setupPaymentsTest(t)

	payment, err := svc.Record(context.Background(), RecordInput{
		MemberID: m.MemberID,
		Month:    5,
		Year:     2026,
		Amount:   150,
	})
	require.NoError(t, err)
	assert.Equal(t, 300.0, payment.AmountDue)
	assert.Equal(t, 150.0, payment.AmountPaid)
	assert.False(t, payment.IsPaid)
	assert.Nil(t, payment.PaidAt)
}

func TestRecord_Validation(t *testing.T) {
	svc, _, m := setupPaymentsTest(t)

	_, err := svc.Record(context.Background(), RecordInput{MemberID: m.MemberID, Month: 13, Year: 2026, Amount: 100})
	assert.ErrorIs(t, err, ErrInvalidMonth)

	_, err = svc.Record(context.Background(), RecordInput{MemberID: m.MemberID, Month: 5, Year: 2026, Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Record(context.Background(), RecordInput{MemberID: uuid.New(), Month: 5, Year: 2026, Amount: 100})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestDuesFor(t *testing.T) {
	svc, _, m := setupPaymentsTest(t)

	due, err := svc.DuesFor(context.Background(), m.MemberID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, due)

	_, err = svc.DuesFor(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
