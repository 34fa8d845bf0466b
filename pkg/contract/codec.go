package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
)

// Wire format. Every variant encodes as either a JSON string literal or a
// single-key tagged object. Arbitrary-precision integers encode as decimal
// strings so that canonicalization (RFC 8785) is lossless at any magnitude;
// timeouts are millisecond timestamps and encode as plain JSON numbers.

// Marshal encodes a contract into its wire form.
func Marshal(c Contract) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("contract: marshal nil contract")
	}
	return json.Marshal(c)
}

// Unmarshal decodes a contract from its wire form.
func Unmarshal(data []byte) (Contract, error) {
	return unmarshalContract(data)
}

func encodeBig(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.Text(10)
}

func decodeBig(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("contract: invalid integer %q", s)
	}
	return n, nil
}

type bigWire string

func bigOut(n *big.Int) bigWire { return bigWire(encodeBig(n)) }

func (b bigWire) decode() (*big.Int, error) { return decodeBig(string(b)) }

// UnmarshalJSON validates that a party names exactly one of address or role.
func (p *Party) UnmarshalJSON(data []byte) error {
	type partyWire Party
	var w partyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if (w.Address == "") == (w.Role == "") {
		return fmt.Errorf("contract: party must set exactly one of address or role")
	}
	*p = Party(w)
	return nil
}

// UnmarshalJSON validates that a payee names exactly one destination.
func (p *Payee) UnmarshalJSON(data []byte) error {
	type payeeWire Payee
	var w payeeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if (w.Account == nil) == (w.Party == nil) {
		return fmt.Errorf("contract: payee must set exactly one of account or party")
	}
	*p = Payee(w)
	return nil
}

// MarshalJSON encodes a bound with string integers.
func (b Bound) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		From bigWire `json:"from"`
		To   bigWire `json:"to"`
	}{bigOut(b.From), bigOut(b.To)})
}

// UnmarshalJSON decodes a bound.
func (b *Bound) UnmarshalJSON(data []byte) error {
	var w struct {
		From bigWire `json:"from"`
		To   bigWire `json:"to"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	from, err := w.From.decode()
	if err != nil {
		return err
	}
	to, err := w.To.decode()
	if err != nil {
		return err
	}
	b.From, b.To = from, to
	return nil
}

// --- Value encoding ---

type pairWire struct {
	Lhs json.RawMessage `json:"lhs"`
	Rhs json.RawMessage `json:"rhs"`
}

func tag(name string, inner any) ([]byte, error) {
	body, err := json.Marshal(inner)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"`)
	buf.WriteString(name)
	buf.WriteString(`":`)
	buf.Write(body)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func pair(name string, lhs, rhs any) ([]byte, error) {
	l, err := json.Marshal(lhs)
	if err != nil {
		return nil, err
	}
	r, err := json.Marshal(rhs)
	if err != nil {
		return nil, err
	}
	return tag(name, pairWire{Lhs: l, Rhs: r})
}

func (v Constant) MarshalJSON() ([]byte, error) { return tag("constant", bigOut(v.Value)) }

func (v AvailableMoney) MarshalJSON() ([]byte, error) {
	return tag("available_money", struct {
		Party Party `json:"party"`
		Token Token `json:"token"`
	}{v.Party, v.Token})
}

func (v NegValue) MarshalJSON() ([]byte, error) { return tag("negate", v.V) }
func (v AddValue) MarshalJSON() ([]byte, error) { return pair("add", v.Lhs, v.Rhs) }
func (v SubValue) MarshalJSON() ([]byte, error) { return pair("sub", v.Lhs, v.Rhs) }
func (v MulValue) MarshalJSON() ([]byte, error) { return pair("mul", v.Lhs, v.Rhs) }
func (v DivValue) MarshalJSON() ([]byte, error) { return pair("div", v.Lhs, v.Rhs) }

func (v ChoiceValue) MarshalJSON() ([]byte, error) { return tag("choice_value", v.Choice) }

func (TimeIntervalStart) MarshalJSON() ([]byte, error) {
	return []byte(`"time_interval_start"`), nil
}

func (TimeIntervalEnd) MarshalJSON() ([]byte, error) {
	return []byte(`"time_interval_end"`), nil
}

func (v UseValue) MarshalJSON() ([]byte, error) { return tag("use_value", string(v.Name)) }

func (v Cond) MarshalJSON() ([]byte, error) {
	return tag("cond", struct {
		If   Observation `json:"if"`
		Then Value       `json:"then"`
		Else Value       `json:"else"`
	}{v.If, v.Then, v.Else})
}

// UnmarshalValue decodes a value expression from its wire form.
func UnmarshalValue(data []byte) (Value, error) { return unmarshalValue(data) }

func variantKey(data []byte) (string, json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", nil, err
	}
	if len(obj) != 1 {
		return "", nil, fmt.Errorf("contract: expected a single-key tagged object, got %d keys", len(obj))
	}
	for k, v := range obj {
		return k, v, nil
	}
	return "", nil, fmt.Errorf("contract: empty tagged object")
}

func decodePair(body json.RawMessage) (json.RawMessage, json.RawMessage, error) {
	var w pairWire
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, nil, err
	}
	if w.Lhs == nil || w.Rhs == nil {
		return nil, nil, fmt.Errorf("contract: pair requires lhs and rhs")
	}
	return w.Lhs, w.Rhs, nil
}

func unmarshalValue(data []byte) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("contract: empty value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		switch s {
		case "time_interval_start":
			return TimeIntervalStart{}, nil
		case "time_interval_end":
			return TimeIntervalEnd{}, nil
		}
		return nil, fmt.Errorf("contract: unknown value literal %q", s)
	}
	key, body, err := variantKey(data)
	if err != nil {
		return nil, err
	}
	switch key {
	case "constant":
		var w bigWire
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		n, err := w.decode()
		if err != nil {
			return nil, err
		}
		return Constant{Value: n}, nil
	case "available_money":
		var w struct {
			Party Party `json:"party"`
			Token Token `json:"token"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		return AvailableMoney{Party: w.Party, Token: w.Token}, nil
	case "negate":
		v, err := unmarshalValue(body)
		if err != nil {
			return nil, err
		}
		return NegValue{V: v}, nil
	case "add", "sub", "mul", "div":
		l, r, err := decodePair(body)
		if err != nil {
			return nil, err
		}
		lhs, err := unmarshalValue(l)
		if err != nil {
			return nil, err
		}
		rhs, err := unmarshalValue(r)
		if err != nil {
			return nil, err
		}
		switch key {
		case "add":
			return AddValue{Lhs: lhs, Rhs: rhs}, nil
		case "sub":
			return SubValue{Lhs: lhs, Rhs: rhs}, nil
		case "mul":
			return MulValue{Lhs: lhs, Rhs: rhs}, nil
		default:
			return DivValue{Lhs: lhs, Rhs: rhs}, nil
		}
	case "choice_value":
		var id ChoiceID
		if err := json.Unmarshal(body, &id); err != nil {
			return nil, err
		}
		return ChoiceValue{Choice: id}, nil
	case "use_value":
		var s string
		if err := json.Unmarshal(body, &s); err != nil {
			return nil, err
		}
		return UseValue{Name: ValueID(s)}, nil
	case "cond":
		var w struct {
			If   json.RawMessage `json:"if"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		obs, err := unmarshalObservation(w.If)
		if err != nil {
			return nil, err
		}
		then, err := unmarshalValue(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := unmarshalValue(w.Else)
		if err != nil {
			return nil, err
		}
		return Cond{If: obs, Then: then, Else: els}, nil
	}
	return nil, fmt.Errorf("contract: unknown value tag %q", key)
}

// --- Observation encoding ---

func (o AndObs) MarshalJSON() ([]byte, error) { return pair("and", o.Lhs, o.Rhs) }
func (o OrObs) MarshalJSON() ([]byte, error)  { return pair("or", o.Lhs, o.Rhs) }
func (o NotObs) MarshalJSON() ([]byte, error) { return tag("not", o.O) }

func (o ChoseSomething) MarshalJSON() ([]byte, error) { return tag("chose_something", o.Choice) }

func (o ValueGE) MarshalJSON() ([]byte, error) { return pair("ge", o.Lhs, o.Rhs) }
func (o ValueGT) MarshalJSON() ([]byte, error) { return pair("gt", o.Lhs, o.Rhs) }
func (o ValueLT) MarshalJSON() ([]byte, error) { return pair("lt", o.Lhs, o.Rhs) }
func (o ValueLE) MarshalJSON() ([]byte, error) { return pair("le", o.Lhs, o.Rhs) }
func (o ValueEQ) MarshalJSON() ([]byte, error) { return pair("eq", o.Lhs, o.Rhs) }

func (TrueObs) MarshalJSON() ([]byte, error)  { return []byte("true"), nil }
func (FalseObs) MarshalJSON() ([]byte, error) { return []byte("false"), nil }

// UnmarshalObservation decodes an observation from its wire form.
func UnmarshalObservation(data []byte) (Observation, error) { return unmarshalObservation(data) }

func unmarshalObservation(data []byte) (Observation, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("contract: empty observation")
	}
	switch string(data) {
	case "true":
		return TrueObs{}, nil
	case "false":
		return FalseObs{}, nil
	}
	key, body, err := variantKey(data)
	if err != nil {
		return nil, err
	}
	switch key {
	case "and", "or":
		l, r, err := decodePair(body)
		if err != nil {
			return nil, err
		}
		lhs, err := unmarshalObservation(l)
		if err != nil {
			return nil, err
		}
		rhs, err := unmarshalObservation(r)
		if err != nil {
			return nil, err
		}
		if key == "and" {
			return AndObs{Lhs: lhs, Rhs: rhs}, nil
		}
		return OrObs{Lhs: lhs, Rhs: rhs}, nil
	case "not":
		o, err := unmarshalObservation(body)
		if err != nil {
			return nil, err
		}
		return NotObs{O: o}, nil
	case "chose_something":
		var id ChoiceID
		if err := json.Unmarshal(body, &id); err != nil {
			return nil, err
		}
		return ChoseSomething{Choice: id}, nil
	case "ge", "gt", "lt", "le", "eq":
		l, r, err := decodePair(body)
		if err != nil {
			return nil, err
		}
		lhs, err := unmarshalValue(l)
		if err != nil {
			return nil, err
		}
		rhs, err := unmarshalValue(r)
		if err != nil {
			return nil, err
		}
		switch key {
		case "ge":
			return ValueGE{Lhs: lhs, Rhs: rhs}, nil
		case "gt":
			return ValueGT{Lhs: lhs, Rhs: rhs}, nil
		case "lt":
			return ValueLT{Lhs: lhs, Rhs: rhs}, nil
		case "le":
			return ValueLE{Lhs: lhs, Rhs: rhs}, nil
		default:
			return ValueEQ{Lhs: lhs, Rhs: rhs}, nil
		}
	}
	return nil, fmt.Errorf("contract: unknown observation tag %q", key)
}

// --- Action encoding ---

func (a Deposit) MarshalJSON() ([]byte, error) {
	return tag("deposit", struct {
		IntoAccount Party `json:"into_account"`
		Party       Party `json:"party"`
		Token       Token `json:"token"`
		Amount      Value `json:"amount"`
	}{a.IntoAccount, a.Party, a.Token, a.Amount})
}

func (a Choice) MarshalJSON() ([]byte, error) {
	return tag("choice", struct {
		For    ChoiceID `json:"for"`
		Bounds []Bound  `json:"bounds"`
	}{a.For, a.Bounds})
}

func (a Notify) MarshalJSON() ([]byte, error) { return tag("notify", a.If) }

func unmarshalAction(data []byte) (Action, error) {
	key, body, err := variantKey(data)
	if err != nil {
		return nil, err
	}
	switch key {
	case "deposit":
		var w struct {
			IntoAccount Party           `json:"into_account"`
			Party       Party           `json:"party"`
			Token       Token           `json:"token"`
			Amount      json.RawMessage `json:"amount"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		amount, err := unmarshalValue(w.Amount)
		if err != nil {
			return nil, err
		}
		return Deposit{IntoAccount: w.IntoAccount, Party: w.Party, Token: w.Token, Amount: amount}, nil
	case "choice":
		var w struct {
			For    ChoiceID `json:"for"`
			Bounds []Bound  `json:"bounds"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		return Choice{For: w.For, Bounds: w.Bounds}, nil
	case "notify":
		o, err := unmarshalObservation(body)
		if err != nil {
			return nil, err
		}
		return Notify{If: o}, nil
	}
	return nil, fmt.Errorf("contract: unknown action tag %q", key)
}

// --- Case and Contract encoding ---

// MarshalJSON encodes a case with either an inline or a merkleized continuation.
func (c Case) MarshalJSON() ([]byte, error) {
	if c.IsMerkleized() {
		return json.Marshal(struct {
			Action         Action `json:"action"`
			MerkleizedThen string `json:"merkleized_then"`
		}{c.Action, c.MerkleizedThen})
	}
	return json.Marshal(struct {
		Action Action   `json:"action"`
		Then   Contract `json:"then"`
	}{c.Action, c.Then})
}

// UnmarshalJSON decodes a case.
func (c *Case) UnmarshalJSON(data []byte) error {
	var w struct {
		Action         json.RawMessage `json:"action"`
		Then           json.RawMessage `json:"then"`
		MerkleizedThen string          `json:"merkleized_then"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	action, err := unmarshalAction(w.Action)
	if err != nil {
		return err
	}
	if w.MerkleizedThen != "" {
		if w.Then != nil {
			return fmt.Errorf("contract: case cannot carry both inline and merkleized continuations")
		}
		*c = Case{Action: action, MerkleizedThen: w.MerkleizedThen}
		return nil
	}
	if w.Then == nil {
		return fmt.Errorf("contract: case requires a continuation")
	}
	then, err := unmarshalContract(w.Then)
	if err != nil {
		return err
	}
	*c = Case{Action: action, Then: then}
	return nil
}

func (Close) MarshalJSON() ([]byte, error) { return []byte(`"close"`), nil }

func (c Pay) MarshalJSON() ([]byte, error) {
	return tag("pay", struct {
		FromAccount Party    `json:"from_account"`
		To          Payee    `json:"to"`
		Token       Token    `json:"token"`
		Amount      Value    `json:"amount"`
		Then        Contract `json:"then"`
	}{c.FromAccount, c.To, c.Token, c.Amount, c.Then})
}

func (c If) MarshalJSON() ([]byte, error) {
	return tag("if", struct {
		Condition Observation `json:"condition"`
		Then      Contract    `json:"then"`
		Else      Contract    `json:"else"`
	}{c.Condition, c.Then, c.Else})
}

func (c When) MarshalJSON() ([]byte, error) {
	cases := c.Cases
	if cases == nil {
		cases = []Case{}
	}
	return tag("when", struct {
		Cases   []Case   `json:"cases"`
		Timeout int64    `json:"timeout"`
		Then    Contract `json:"then"`
	}{cases, c.Timeout, c.Then})
}

func (c Let) MarshalJSON() ([]byte, error) {
	return tag("let", struct {
		Name  string   `json:"name"`
		Value Value    `json:"value"`
		Then  Contract `json:"then"`
	}{string(c.Name), c.Value, c.Then})
}

func (c Assert) MarshalJSON() ([]byte, error) {
	return tag("assert", struct {
		Condition Observation `json:"condition"`
		Then      Contract    `json:"then"`
	}{c.Condition, c.Then})
}

func unmarshalContract(data []byte) (Contract, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("contract: empty contract")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		if s == "close" {
			return Close{}, nil
		}
		return nil, fmt.Errorf("contract: unknown contract literal %q", s)
	}
	key, body, err := variantKey(data)
	if err != nil {
		return nil, err
	}
	switch key {
	case "pay":
		var w struct {
			FromAccount Party           `json:"from_account"`
			To          Payee           `json:"to"`
			Token       Token           `json:"token"`
			Amount      json.RawMessage `json:"amount"`
			Then        json.RawMessage `json:"then"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		amount, err := unmarshalValue(w.Amount)
		if err != nil {
			return nil, err
		}
		then, err := unmarshalContract(w.Then)
		if err != nil {
			return nil, err
		}
		return Pay{FromAccount: w.FromAccount, To: w.To, Token: w.Token, Amount: amount, Then: then}, nil
	case "if":
		var w struct {
			Condition json.RawMessage `json:"condition"`
			Then      json.RawMessage `json:"then"`
			Else      json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		cond, err := unmarshalObservation(w.Condition)
		if err != nil {
			return nil, err
		}
		then, err := unmarshalContract(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := unmarshalContract(w.Else)
		if err != nil {
			return nil, err
		}
		return If{Condition: cond, Then: then, Else: els}, nil
	case "when":
		var w struct {
			Cases   []Case          `json:"cases"`
			Timeout int64           `json:"timeout"`
			Then    json.RawMessage `json:"then"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		then, err := unmarshalContract(w.Then)
		if err != nil {
			return nil, err
		}
		// Marshal renders nil cases as []; decode the empty array back to
		// nil so a decoded contract is structurally equal to its source.
		cases := w.Cases
		if len(cases) == 0 {
			cases = nil
		}
		return When{Cases: cases, Timeout: w.Timeout, Then: then}, nil
	case "let":
		var w struct {
			Name  string          `json:"name"`
			Value json.RawMessage `json:"value"`
			Then  json.RawMessage `json:"then"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		value, err := unmarshalValue(w.Value)
		if err != nil {
			return nil, err
		}
		then, err := unmarshalContract(w.Then)
		if err != nil {
			return nil, err
		}
		return Let{Name: ValueID(w.Name), Value: value, Then: then}, nil
	case "assert":
		var w struct {
			Condition json.RawMessage `json:"condition"`
			Then      json.RawMessage `json:"then"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		cond, err := unmarshalObservation(w.Condition)
		if err != nil {
			return nil, err
		}
		then, err := unmarshalContract(w.Then)
		if err != nil {
			return nil, err
		}
		return Assert{Condition: cond, Then: then}, nil
	}
	return nil, fmt.Errorf("contract: unknown contract tag %q", key)
}

// --- Input encoding ---

func (i DepositInput) MarshalJSON() ([]byte, error) {
	return tag("deposit", struct {
		IntoAccount Party   `json:"into_account"`
		Party       Party   `json:"party"`
		Token       Token   `json:"token"`
		Quantity    bigWire `json:"quantity"`
	}{i.IntoAccount, i.Party, i.Token, bigOut(i.Quantity)})
}

func (i ChoiceInput) MarshalJSON() ([]byte, error) {
	return tag("choice", struct {
		For   ChoiceID `json:"for"`
		Value bigWire  `json:"value"`
	}{i.For, bigOut(i.Value)})
}

func (NotifyInput) MarshalJSON() ([]byte, error) { return []byte(`"notify"`), nil }

func unmarshalInputContent(data []byte) (InputContent, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("contract: empty input content")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		if s == "notify" {
			return NotifyInput{}, nil
		}
		return nil, fmt.Errorf("contract: unknown input literal %q", s)
	}
	key, body, err := variantKey(data)
	if err != nil {
		return nil, err
	}
	switch key {
	case "deposit":
		var w struct {
			IntoAccount Party   `json:"into_account"`
			Party       Party   `json:"party"`
			Token       Token   `json:"token"`
			Quantity    bigWire `json:"quantity"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		q, err := w.Quantity.decode()
		if err != nil {
			return nil, err
		}
		return DepositInput{IntoAccount: w.IntoAccount, Party: w.Party, Token: w.Token, Quantity: q}, nil
	case "choice":
		var w struct {
			For   ChoiceID `json:"for"`
			Value bigWire  `json:"value"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, err
		}
		v, err := w.Value.decode()
		if err != nil {
			return nil, err
		}
		return ChoiceInput{For: w.For, Value: v}, nil
	}
	return nil, fmt.Errorf("contract: unknown input tag %q", key)
}

// MarshalJSON encodes an input with its optional merkleized disclosure.
func (i Input) MarshalJSON() ([]byte, error) {
	if i.Continuation == nil {
		return json.Marshal(struct {
			Content InputContent `json:"content"`
		}{i.Content})
	}
	return json.Marshal(struct {
		Content      InputContent `json:"content"`
		Continuation struct {
			Hash     string   `json:"hash"`
			Contract Contract `json:"contract"`
		} `json:"continuation"`
	}{i.Content, struct {
		Hash     string   `json:"hash"`
		Contract Contract `json:"contract"`
	}{i.Continuation.Hash, i.Continuation.Contract}})
}

// UnmarshalJSON decodes an input.
func (i *Input) UnmarshalJSON(data []byte) error {
	var w struct {
		Content      json.RawMessage `json:"content"`
		Continuation *struct {
			Hash     string          `json:"hash"`
			Contract json.RawMessage `json:"contract"`
		} `json:"continuation"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	content, err := unmarshalInputContent(w.Content)
	if err != nil {
		return err
	}
	out := Input{Content: content}
	if w.Continuation != nil {
		k, err := unmarshalContract(w.Continuation.Contract)
		if err != nil {
			return err
		}
		out.Continuation = &MerkleizedContinuation{Hash: w.Continuation.Hash, Contract: k}
	}
	*i = out
	return nil
}
