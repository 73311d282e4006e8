package protocol

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/command.schema.json
var commandSchemaRaw []byte

var (
	commandSchemaOnce sync.Once
	commandSchema     *jsonschema.Schema
	commandSchemaErr  error
)

func compiledCommandSchema() (*jsonschema.Schema, error) {
	commandSchemaOnce.Do(func() {
		const url = "mem://protocol/command.schema.json"
		c := jsonschema.NewCompiler()
		if err := c.AddResource(url, bytes.NewReader(commandSchemaRaw)); err != nil {
			commandSchemaErr = err
			return
		}
		commandSchema, commandSchemaErr = c.Compile(url)
	})
	return commandSchema, commandSchemaErr
}

// DecodeCommand validates raw against the COMMAND schema and decodes it.
func DecodeCommand(raw []byte) (CommandMsg, error) {
	var msg CommandMsg
	s, err := compiledCommandSchema()
	if err != nil {
		return msg, fmt.Errorf("command schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return msg, err
	}
	if err := s.Validate(v); err != nil {
		return msg, fmt.Errorf("command: %w", err)
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return msg, err
	}
	return msg, nil
}
