package contract

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed contract.schema.json
var schemaJSON string

const schemaURL = "https://accord.schemas.local/contract.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func compiledContractSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, bytes.NewReader([]byte(schemaJSON))); err != nil {
			schemaErr = fmt.Errorf("contract: schema load failed: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// ValidateDocument checks an encoded contract document against the wire-format
// schema before it is decoded. Schema validation is structural only; semantic
// rules (hash verification, balances) are enforced by the interpreter.
func ValidateDocument(data []byte) error {
	schema, err := compiledContractSchema()
	if err != nil {
		return err
	}
	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("contract: invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("contract: schema validation failed: %w", err)
	}
	return nil
}

// DecodeValidated validates a contract document against the schema and then
// decodes it.
func DecodeValidated(data []byte) (Contract, error) {
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
