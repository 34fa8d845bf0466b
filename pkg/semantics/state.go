// Package semantics implements the operational semantics of the Accord
// contract language: pure expression evaluation, internal-step reduction to
// quiescence, and external-input application. Every exported entry point is a
// total, deterministic function of its arguments; inputs are never mutated.
package semantics

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"

	"github.com/Mindburn-Labs/accord/pkg/contract"
)

// AccountID keys an internal account: a party's holdings of one token.
type AccountID struct {
	Party contract.Party
	Token contract.Token
}

func (a AccountID) String() string {
	return fmt.Sprintf("%s/%s", a.Party, a.Token)
}

func (a AccountID) compare(o AccountID) int {
	if c := a.Party.Compare(o.Party); c != 0 {
		return c
	}
	return a.Token.Compare(o.Token)
}

// TimeInterval is a transaction's declared time window, milliseconds since
// epoch, both endpoints inclusive.
type TimeInterval struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// Environment carries the per-transaction evaluation context.
type Environment struct {
	Interval TimeInterval
}

// State is the interpreter state threaded through reduction and application.
// Account balances are strictly positive: a zero balance is represented by
// the key's absence.
type State struct {
	Accounts    map[AccountID]*big.Int
	Choices     map[contract.ChoiceID]*big.Int
	BoundValues map[contract.ValueID]*big.Int
	MinTime     int64
}

// NewState returns an empty state.
func NewState() State {
	return State{
		Accounts:    make(map[AccountID]*big.Int),
		Choices:     make(map[contract.ChoiceID]*big.Int),
		BoundValues: make(map[contract.ValueID]*big.Int),
	}
}

// Clone deep-copies the state. Exported entry points clone before mutating so
// callers keep referential transparency.
func (s State) Clone() State {
	out := State{
		Accounts:    make(map[AccountID]*big.Int, len(s.Accounts)),
		Choices:     make(map[contract.ChoiceID]*big.Int, len(s.Choices)),
		BoundValues: make(map[contract.ValueID]*big.Int, len(s.BoundValues)),
		MinTime:     s.MinTime,
	}
	for k, v := range s.Accounts {
		out.Accounts[k] = new(big.Int).Set(v)
	}
	for k, v := range s.Choices {
		out.Choices[k] = new(big.Int).Set(v)
	}
	for k, v := range s.BoundValues {
		out.BoundValues[k] = new(big.Int).Set(v)
	}
	return out
}

// balance returns the account balance, 0 if absent. Never nil.
func (s State) balance(id AccountID) *big.Int {
	if b, ok := s.Accounts[id]; ok {
		return b
	}
	return big.NewInt(0)
}

// creditAccount adds a strictly positive amount to an account.
func (s State) creditAccount(id AccountID, amount *big.Int) {
	if amount.Sign() <= 0 {
		return
	}
	if b, ok := s.Accounts[id]; ok {
		s.Accounts[id] = new(big.Int).Add(b, amount)
		return
	}
	s.Accounts[id] = new(big.Int).Set(amount)
}

// setBalance writes a balance, deleting the key when it is non-positive.
func (s State) setBalance(id AccountID, amount *big.Int) {
	if amount.Sign() <= 0 {
		delete(s.Accounts, id)
		return
	}
	s.Accounts[id] = new(big.Int).Set(amount)
}

// sortedAccounts returns account keys in canonical order. Close reduction
// drains accounts in this order, one per step.
func (s State) sortedAccounts() []AccountID {
	ids := make([]AccountID, 0, len(s.Accounts))
	for id := range s.Accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].compare(ids[j]) < 0 })
	return ids
}

// TotalBalance sums all account balances for a token.
func (s State) TotalBalance(token contract.Token) *big.Int {
	total := big.NewInt(0)
	for id, b := range s.Accounts {
		if id.Token == token {
			total.Add(total, b)
		}
	}
	return total
}

// FixInterval validates a transaction interval against the state's monotonic
// time lower bound and clamps the interval's start to it. The returned state
// has MinTime advanced to the clamped start; MinTime never decreases.
func FixInterval(interval TimeInterval, state State) (Environment, State, error) {
	if interval.From > interval.To {
		return Environment{}, State{}, fmt.Errorf("%w: [%d, %d]", ErrInvalidInterval, interval.From, interval.To)
	}
	if interval.To < state.MinTime {
		return Environment{}, State{}, fmt.Errorf("%w: interval ends at %d, state min-time is %d",
			ErrIntervalInPast, interval.To, state.MinTime)
	}
	newFrom := interval.From
	if state.MinTime > newFrom {
		newFrom = state.MinTime
	}
	out := state.Clone()
	out.MinTime = newFrom
	return Environment{Interval: TimeInterval{From: newFrom, To: interval.To}}, out, nil
}

// --- persistence encoding (struct-keyed maps as sorted arrays) ---

type accountEntry struct {
	Party  contract.Party `json:"party"`
	Token  contract.Token `json:"token"`
	Amount string         `json:"amount"`
}

type choiceEntry struct {
	For   contract.ChoiceID `json:"for"`
	Value string            `json:"value"`
}

type boundValueEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type stateWire struct {
	Accounts    []accountEntry    `json:"accounts"`
	Choices     []choiceEntry     `json:"choices"`
	BoundValues []boundValueEntry `json:"bound_values"`
	MinTime     int64             `json:"min_time"`
}

// MarshalJSON encodes the state deterministically: all maps become sorted
// arrays with string-encoded integers.
func (s State) MarshalJSON() ([]byte, error) {
	w := stateWire{
		Accounts:    make([]accountEntry, 0, len(s.Accounts)),
		Choices:     make([]choiceEntry, 0, len(s.Choices)),
		BoundValues: make([]boundValueEntry, 0, len(s.BoundValues)),
		MinTime:     s.MinTime,
	}
	for _, id := range s.sortedAccounts() {
		w.Accounts = append(w.Accounts, accountEntry{
			Party:  id.Party,
			Token:  id.Token,
			Amount: s.Accounts[id].Text(10),
		})
	}
	for id, v := range s.Choices {
		w.Choices = append(w.Choices, choiceEntry{For: id, Value: v.Text(10)})
	}
	sort.Slice(w.Choices, func(i, j int) bool {
		a, b := w.Choices[i].For, w.Choices[j].For
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Owner.Compare(b.Owner) < 0
	})
	for id, v := range s.BoundValues {
		w.BoundValues = append(w.BoundValues, boundValueEntry{Name: string(id), Value: v.Text(10)})
	}
	sort.Slice(w.BoundValues, func(i, j int) bool { return w.BoundValues[i].Name < w.BoundValues[j].Name })
	return json.Marshal(w)
}

// UnmarshalJSON decodes a persisted state.
func (s *State) UnmarshalJSON(data []byte) error {
	var w stateWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := NewState()
	out.MinTime = w.MinTime
	for _, e := range w.Accounts {
		n, ok := new(big.Int).SetString(e.Amount, 10)
		if !ok {
			return fmt.Errorf("semantics: invalid account amount %q", e.Amount)
		}
		if n.Sign() < 0 {
			return fmt.Errorf("semantics: negative account balance %q", e.Amount)
		}
		if n.Sign() > 0 {
			out.Accounts[AccountID{Party: e.Party, Token: e.Token}] = n
		}
	}
	for _, e := range w.Choices {
		n, ok := new(big.Int).SetString(e.Value, 10)
		if !ok {
			return fmt.Errorf("semantics: invalid choice value %q", e.Value)
		}
		out.Choices[e.For] = n
	}
	for _, e := range w.BoundValues {
		n, ok := new(big.Int).SetString(e.Value, 10)
		if !ok {
			return fmt.Errorf("semantics: invalid bound value %q", e.Value)
		}
		out.BoundValues[contract.ValueID(e.Name)] = n
	}
	*s = out
	return nil
}
