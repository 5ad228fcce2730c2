package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

const schemaBaseURL = "https://pokerdealer.dev/schemas/"

// dataSchemas maps each request type to the schema for its data field.
var dataSchemas = map[MessageType]string{
	TypeAuth:          "auth.json",
	TypeInit:          "init.json",
	TypeStartHand:     "start_hand.json",
	TypeReveal:        "reveal.json",
	TypeAdvance:       "advance.json",
	TypeShowdown:      "showdown.json",
	TypeOwnerShowdown: "owner_showdown.json",
	TypePrivateData:   "table.json",
	TypeEndHand:       "table.json",
}

// Validator checks incoming requests against the embedded JSON schemas.
type Validator struct {
	envelope *jsonschema.Schema
	data     map[MessageType]*jsonschema.Schema
}

// NewValidator compiles every embedded schema.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	entries, err := schemaFiles.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}
	for _, entry := range entries {
		data, err := schemaFiles.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", entry.Name(), err)
		}
		if err := compiler.AddResource(schemaBaseURL+entry.Name(), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", entry.Name(), err)
		}
	}

	v := &Validator{data: make(map[MessageType]*jsonschema.Schema, len(dataSchemas))}
	if v.envelope, err = compiler.Compile(schemaBaseURL + "message.json"); err != nil {
		return nil, fmt.Errorf("failed to compile message schema: %w", err)
	}
	for msgType, file := range dataSchemas {
		schema, err := compiler.Compile(schemaBaseURL + file)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", file, err)
		}
		v.data[msgType] = schema
	}
	return v, nil
}

// Validate checks a raw request and returns the decoded envelope.
func (v *Validator) Validate(raw []byte) (*Message, error) {
	doc, err := decodeAny(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidMessage, err)
	}
	if err := v.envelope.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidMessage, err)
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidMessage, err)
	}

	data := []byte(msg.Data)
	if len(data) == 0 {
		data = []byte("{}")
	}
	payload, err := decodeAny(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidMessage, err)
	}
	if err := v.data[msg.Type].Validate(payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errInvalidMessage, msg.Type, err)
	}
	return &msg, nil
}

// decodeAny decodes JSON the way the schema library expects, keeping numbers
// exact.
func decodeAny(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
