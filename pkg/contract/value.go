package contract

import "math/big"

// Value is a recursive integer expression evaluated against interpreter state
// and a transaction time interval. The variant set is closed: every consumer
// switches exhaustively over the types below.
type Value interface {
	isValue()
}

// Constant is a literal integer.
type Constant struct {
	Value *big.Int
}

// ConstantOf builds a Constant from an int64.
func ConstantOf(n int64) Constant { return Constant{Value: big.NewInt(n)} }

// AvailableMoney reads the balance of the (Party, Token) account; 0 if absent.
type AvailableMoney struct {
	Party Party
	Token Token
}

// NegValue negates its operand.
type NegValue struct {
	V Value
}

// AddValue is exact integer addition.
type AddValue struct {
	Lhs Value
	Rhs Value
}

// SubValue is exact integer subtraction.
type SubValue struct {
	Lhs Value
	Rhs Value
}

// MulValue is exact integer multiplication.
type MulValue struct {
	Lhs Value
	Rhs Value
}

// DivValue is integer division rounded to the nearest integer with ties away
// from zero. Division by zero evaluates to 0. The rounding rule is pinned to
// the on-chain validator's semantics; see semantics.EvalValue.
type DivValue struct {
	Lhs Value
	Rhs Value
}

// ChoiceValue reads the number chosen for a choice identifier; 0 if unchosen.
type ChoiceValue struct {
	Choice ChoiceID
}

// TimeIntervalStart reads the inclusive lower bound of the transaction interval.
type TimeIntervalStart struct{}

// TimeIntervalEnd reads the inclusive upper bound of the transaction interval.
type TimeIntervalEnd struct{}

// UseValue reads a Let-bound value; 0 if the identifier is unbound.
type UseValue struct {
	Name ValueID
}

// Cond selects Then or Else depending on If.
type Cond struct {
	If   Observation
	Then Value
	Else Value
}

func (Constant) isValue()          {}
func (AvailableMoney) isValue()    {}
func (NegValue) isValue()          {}
func (AddValue) isValue()          {}
func (SubValue) isValue()          {}
func (MulValue) isValue()          {}
func (DivValue) isValue()          {}
func (ChoiceValue) isValue()       {}
func (TimeIntervalStart) isValue() {}
func (TimeIntervalEnd) isValue()   {}
func (UseValue) isValue()          {}
func (Cond) isValue()              {}

// Observation is a recursive boolean expression over Values and choice state.
// Closed variant set, like Value.
type Observation interface {
	isObservation()
}

// AndObs is boolean conjunction.
type AndObs struct {
	Lhs Observation
	Rhs Observation
}

// OrObs is boolean disjunction.
type OrObs struct {
	Lhs Observation
	Rhs Observation
}

// NotObs is boolean negation.
type NotObs struct {
	O Observation
}

// ChoseSomething is true iff the choice identifier has been recorded.
type ChoseSomething struct {
	Choice ChoiceID
}

// ValueGE is Lhs >= Rhs.
type ValueGE struct {
	Lhs Value
	Rhs Value
}

// ValueGT is Lhs > Rhs.
type ValueGT struct {
	Lhs Value
	Rhs Value
}

// ValueLT is Lhs < Rhs.
type ValueLT struct {
	Lhs Value
	Rhs Value
}

// ValueLE is Lhs <= Rhs.
type ValueLE struct {
	Lhs Value
	Rhs Value
}

// ValueEQ is Lhs == Rhs.
type ValueEQ struct {
	Lhs Value
	Rhs Value
}

// TrueObs is the constant true.
type TrueObs struct{}

// FalseObs is the constant false.
type FalseObs struct{}

func (AndObs) isObservation()         {}
func (OrObs) isObservation()          {}
func (NotObs) isObservation()         {}
func (ChoseSomething) isObservation() {}
func (ValueGE) isObservation()        {}
func (ValueGT) isObservation()        {}
func (ValueLT) isObservation()        {}
func (ValueLE) isObservation()        {}
func (ValueEQ) isObservation()        {}
func (TrueObs) isObservation()        {}
func (FalseObs) isObservation()       {}
