// schemagen emits a JSON schema for the wire protocol so client
// implementations in other languages can validate their codecs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"dust-and-lead/server/internal/net/proto"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	schema := buildSchema()

	if err := writeSchema(outPath, schema); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}

	root := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Dust & Lead Wire Protocol",
		Description: "Messages exchanged between the arena server and its clients.",
		OneOf: []*jsonschema.Schema{
			reflector.Reflect(new(proto.ClientMessage)),
			reflector.Reflect(new(proto.StateMessage)),
			reflector.Reflect(new(proto.HUDMessage)),
			reflector.Reflect(new(proto.InputAckMessage)),
			reflector.Reflect(new(proto.InputRejectMessage)),
			reflector.Reflect(new(proto.HeartbeatMessage)),
			reflector.Reflect(new(proto.JoinResponse)),
		},
	}
	return root
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
