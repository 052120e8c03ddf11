// Package models defines the data types shared across the advisor engine
package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrContractViolation marks input that breaks the read contract, such as a
// negative budget amount. It is the only input condition allowed to surface
// as a hard failure, and only through the agent pipeline.
var ErrContractViolation = errors.New("contract violation")

// Account is a user's account as exposed by the snapshot store
type Account struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
	IsActive bool    `json:"is_active"`
}

// Transaction is a single posted or pending transaction.
// Positive amounts are income, negative amounts are expenses.
type Transaction struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	IsPending   bool      `json:"is_pending"`
}

// Budget is a spending limit for one category. Spent is maintained by the store.
type Budget struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Spent    float64 `json:"current_spent"`
	IsActive bool    `json:"is_active"`
}

// Goal is a savings target with a deadline
type Goal struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TargetAmount  float64   `json:"target_amount"`
	CurrentAmount float64   `json:"current_amount"`
	TargetDate    time.Time `json:"target_date"`
	IsActive      bool      `json:"is_active"`
}

// Window is a half-open time range [From, To) used to scope transaction reads
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// SnapshotInputs is everything the snapshot builder reads for one user
type SnapshotInputs struct {
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
	Budgets      []Budget      `json:"budgets"`
	Goals        []Goal        `json:"goals"`
}

// Validate checks the amounts the engine relies on being non-negative.
func (in *SnapshotInputs) Validate() error {
	if in == nil {
		return nil
	}
	for _, b := range in.Budgets {
		if b.Amount < 0 {
			return fmt.Errorf("%w: budget %q has negative amount %.2f", ErrContractViolation, b.Category, b.Amount)
		}
		if b.Spent < 0 {
			return fmt.Errorf("%w: budget %q has negative spent %.2f", ErrContractViolation, b.Category, b.Spent)
		}
	}
	for _, g := range in.Goals {
		if g.TargetAmount < 0 {
			return fmt.Errorf("%w: goal %q has negative target %.2f", ErrContractViolation, g.Name, g.TargetAmount)
		}
	}
	return nil
}
