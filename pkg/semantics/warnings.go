package semantics

import (
	"fmt"
	"math/big"

	"github.com/Mindburn-Labs/accord/pkg/contract"
)

// Payment is an external payout produced by reduction: funds leaving the
// contract's custody. Account-to-account transfers stay in State.Accounts and
// produce no Payment. The payments list of a transaction is ordered; creation
// order is settlement order.
type Payment struct {
	Account contract.Party
	Payee   contract.Payee
	Token   contract.Token
	Amount  *big.Int
}

func (p Payment) String() string {
	return fmt.Sprintf("pay %s %s from %s to %s", p.Amount, p.Token, p.Account, p.Payee)
}

// TransactionWarning describes a non-fatal deviation during reduction or
// application: the transaction succeeded, but not exactly as literally
// written. Warnings are ordered and never abort.
type TransactionWarning interface {
	isWarning()
	Kind() string
}

// NonPositiveDeposit reports a matched deposit whose declared quantity was
// zero or negative; no funds were credited.
type NonPositiveDeposit struct {
	Party       contract.Party
	IntoAccount contract.Party
	Token       contract.Token
	Amount      *big.Int
}

// NonPositivePay reports a Pay whose evaluated amount was zero or negative;
// no funds moved.
type NonPositivePay struct {
	Account contract.Party
	Payee   contract.Payee
	Token   contract.Token
	Amount  *big.Int
}

// PartialPay reports a Pay capped at the source account's available balance.
type PartialPay struct {
	Account  contract.Party
	Payee    contract.Payee
	Token    contract.Token
	Paid     *big.Int
	Expected *big.Int
}

// Shadowing reports a Let rebinding an identifier to a different value.
type Shadowing struct {
	Name contract.ValueID
	Old  *big.Int
	New  *big.Int
}

// AssertionFailed reports an Assert whose observation evaluated to false.
// The contract proceeds regardless.
type AssertionFailed struct{}

func (NonPositiveDeposit) isWarning() {}
func (NonPositivePay) isWarning()     {}
func (PartialPay) isWarning()         {}
func (Shadowing) isWarning()          {}
func (AssertionFailed) isWarning()    {}

func (NonPositiveDeposit) Kind() string { return "non_positive_deposit" }
func (NonPositivePay) Kind() string     { return "non_positive_pay" }
func (PartialPay) Kind() string         { return "partial_pay" }
func (Shadowing) Kind() string          { return "shadowing" }
func (AssertionFailed) Kind() string    { return "assertion_failed" }

func (w NonPositiveDeposit) String() string {
	return fmt.Sprintf("non-positive deposit of %s %s by %s into account %s",
		w.Amount, w.Token, w.Party, w.IntoAccount)
}

func (w NonPositivePay) String() string {
	return fmt.Sprintf("non-positive pay of %s %s from account %s to %s",
		w.Amount, w.Token, w.Account, w.Payee)
}

func (w PartialPay) String() string {
	return fmt.Sprintf("partial pay from account %s to %s: paid %s of %s %s",
		w.Account, w.Payee, w.Paid, w.Expected, w.Token)
}

func (w Shadowing) String() string {
	return fmt.Sprintf("let shadows %q: %s -> %s", string(w.Name), w.Old, w.New)
}

func (AssertionFailed) String() string { return "assertion failed" }
