// ABOUTME: Tests for SQLite profile and transaction persistence
// ABOUTME: Verifies round-trips, not-found sentinels, and categorization updates

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.GetProfile(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)

	p := &FinancialProfile{
		UserID:            7,
		Salary:            5000,
		Investments:       300,
		BusinessIncome:    1200,
		RentMortgage:      1800,
		Groceries:         450,
		SavingsBalance:    10000,
		InvestmentBalance: 25000,
		DebtBalance:       5000,
	}
	require.NoError(t, s.SaveProfile(ctx, p))

	got, err := s.GetProfile(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 6500.0, got.TotalIncome())
	assert.Equal(t, 2250.0, got.TotalExpenses())
	assert.Equal(t, 30000.0, got.NetWorth())
}

func TestSaveProfile_ReplacesExisting(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveProfile(ctx, &FinancialProfile{UserID: 7, Salary: 5000}))
	require.NoError(t, s.SaveProfile(ctx, &FinancialProfile{UserID: 7, Salary: 5500}))

	got, err := s.GetProfile(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 5500.0, got.Salary)
}

func TestTransactions_CategorizationFlow(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tx1 := &Transaction{UserID: 7, Description: "TRADER JOES #552", Amount: -82.17}
	tx2 := &Transaction{UserID: 7, Description: "NETFLIX.COM", Amount: -15.49}
	require.NoError(t, s.SaveTransaction(ctx, tx1))
	require.NoError(t, s.SaveTransaction(ctx, tx2))

	uncategorized, err := s.ListUncategorizedTransactions(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, uncategorized, 2)

	require.NoError(t, s.SetTransactionCategory(ctx, tx1.ID, "Groceries"))

	uncategorized, err = s.ListUncategorizedTransactions(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, uncategorized, 1)
	assert.Equal(t, tx2.ID, uncategorized[0].ID)
}

func TestSetTransactionCategory_UnknownID(t *testing.T) {
	s := createTestStore(t)
	err := s.SetTransactionCategory(context.Background(), 999, "Groceries")
	assert.ErrorIs(t, err, ErrNotFound)
}
