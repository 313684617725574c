package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSignedEffect_Expense(t *testing.T) {
	effect := SignedEffect(decimal.NewFromInt(100), CategoryTypeExpense)

	if !effect.Equal(decimal.NewFromInt(-100)) {
		t.Errorf("Expected -100, got %s", effect.String())
	}
}

func TestSignedEffect_Income(t *testing.T) {
	effect := SignedEffect(decimal.NewFromInt(100), CategoryTypeIncome)

	if !effect.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected 100, got %s", effect.String())
	}
}

func TestSignedEffect_RoundTrip(t *testing.T) {
	amount := decimal.NewFromFloat(42.50)

	for _, categoryType := range []CategoryType{CategoryTypeExpense, CategoryTypeIncome} {
		effect := SignedEffect(amount, categoryType)
		if !effect.Add(effect.Neg()).Equal(decimal.Zero) {
			t.Errorf("Expected effect and its reversal to cancel for %s", categoryType)
		}
	}
}

func TestCategoryType_Valid(t *testing.T) {
	if !CategoryTypeExpense.Valid() {
		t.Error("Expected 'expense' to be valid")
	}
	if !CategoryTypeIncome.Valid() {
		t.Error("Expected 'income' to be valid")
	}
	if CategoryType("transfer").Valid() {
		t.Error("Expected 'transfer' to be invalid")
	}
	if CategoryType("").Valid() {
		t.Error("Expected empty type to be invalid")
	}
}
