package contract

import "math/big"

// Action is what a waiting When case accepts from the outside world.
type Action interface {
	isAction()
}

// Deposit accepts funds from Party into IntoAccount's (party, token) account.
// The expected quantity is an expression; an input deposit matches only if
// its declared quantity equals the evaluated expression exactly.
type Deposit struct {
	IntoAccount Party
	Party       Party
	Token       Token
	Amount      Value
}

// Choice accepts a number chosen by the choice's owner, constrained to fall
// within at least one bound.
type Choice struct {
	For    ChoiceID
	Bounds []Bound
}

// Notify accepts a notification only while its observation holds.
type Notify struct {
	If Observation
}

func (Deposit) isAction() {}
func (Choice) isAction()  {}
func (Notify) isAction()  {}

// Case pairs an Action with its continuation. The continuation is either
// inline (Then) or merkleized: referenced by the content hash of its wire
// encoding (MerkleizedThen) and disclosed at apply time.
type Case struct {
	Action         Action
	Then           Contract // nil when merkleized
	MerkleizedThen string   // empty when inline
}

// IsMerkleized reports whether the case's continuation is hash-referenced.
func (c Case) IsMerkleized() bool { return c.MerkleizedThen != "" }

// Contract is the closed recursive contract algebra.
type Contract interface {
	isContract()
}

// Close is the terminal contract. Reducing it refunds remaining account
// balances to their owners, one account per reduction step.
type Close struct{}

// Pay moves funds from FromAccount's (party, token) account to a payee, then
// continues. Amounts are clamped to the available balance.
type Pay struct {
	FromAccount Party
	To          Payee
	Token       Token
	Amount      Value
	Then        Contract
}

// If branches on an observation.
type If struct {
	Condition Observation
	Then      Contract
	Else      Contract
}

// When waits for any of Cases until Timeout (milliseconds since epoch,
// inclusive), after which it continues with Then.
type When struct {
	Cases   []Case
	Timeout int64
	Then    Contract
}

// Let binds an evaluated value to a name for the continuation, shadowing any
// previous binding.
type Let struct {
	Name  ValueID
	Value Value
	Then  Contract
}

// Assert records a warning if its observation is false, then continues
// regardless. It never blocks progress.
type Assert struct {
	Condition Observation
	Then      Contract
}

func (Close) isContract()  {}
func (Pay) isContract()    {}
func (If) isContract()     {}
func (When) isContract()   {}
func (Let) isContract()    {}
func (Assert) isContract() {}

// InputContent is the external-input algebra: what a participant submits
// against a waiting When.
type InputContent interface {
	isInputContent()
}

// DepositInput declares a deposit of Quantity by Party into IntoAccount's
// (party, token) account.
type DepositInput struct {
	IntoAccount Party
	Party       Party
	Token       Token
	Quantity    *big.Int
}

// ChoiceInput declares a chosen number for a choice identifier.
type ChoiceInput struct {
	For   ChoiceID
	Value *big.Int
}

// NotifyInput triggers a Notify case whose observation currently holds.
type NotifyInput struct{}

func (DepositInput) isInputContent() {}
func (ChoiceInput) isInputContent()  {}
func (NotifyInput) isInputContent()  {}

// MerkleizedContinuation discloses the contract behind a merkleized case.
// The interpreter verifies that the disclosed contract hashes to the case's
// recorded hash; it never fetches continuations itself.
type MerkleizedContinuation struct {
	Hash     string
	Contract Contract
}

// Input is one external input, optionally carrying the disclosure needed to
// continue past a merkleized case.
type Input struct {
	Content      InputContent
	Continuation *MerkleizedContinuation
}

// NormalInput wraps bare input content.
func NormalInput(c InputContent) Input { return Input{Content: c} }

// MerkleizedInput wraps input content with a disclosed continuation.
func MerkleizedInput(c InputContent, hash string, k Contract) Input {
	return Input{Content: c, Continuation: &MerkleizedContinuation{Hash: hash, Contract: k}}
}
