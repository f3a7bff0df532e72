package envconfig

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/open-ce/envlint/pkg/logger"
)

var schemaLog = logger.New("envconfig:schema")

//go:embed schemas/env-config.schema.json
var envConfigSchemaJSON []byte

var (
	compileSchemaOnce sync.Once
	envConfigSchema   *jsonschema.Schema
	compileSchemaErr  error
)

// documentKeys are the keys allowed at the top level of an env file. Kept in
// sync with the embedded schema; used for the friendlier unexpected-key
// message emitted before full schema validation.
var documentKeys = []string{
	"channels",
	"imported_envs",
	"git_tag_for_env",
	"external_dependencies",
	"packages",
}

// SchemaJSON returns the embedded env-file JSON schema document.
func SchemaJSON() []byte {
	return envConfigSchemaJSON
}

func compiledSchema() (*jsonschema.Schema, error) {
	compileSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(envConfigSchemaJSON))
		if err != nil {
			compileSchemaErr = fmt.Errorf("failed to load embedded env-config schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("env-config.schema.json", doc); err != nil {
			compileSchemaErr = fmt.Errorf("failed to register env-config schema: %w", err)
			return
		}
		envConfigSchema, compileSchemaErr = compiler.Compile("env-config.schema.json")
	})
	return envConfigSchema, compileSchemaErr
}

// validateWithSchema validates a parsed env file against the embedded JSON
// schema. Unexpected top-level keys are reported with a dedicated message
// before schema validation runs, because the schema's additionalProperties
// failure is much harder to act on.
func validateWithSchema(jsonDoc []byte, path string) error {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonDoc))
	if err != nil {
		return fmt.Errorf("failed to decode %s for schema validation: %w", path, err)
	}

	if top, ok := instance.(map[string]any); ok {
		if err := checkUnexpectedKeys(top, path); err != nil {
			schemaLog.Printf("Unexpected key check failed for %s: %v", path, err)
			return err
		}
	}

	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(instance); err != nil {
		schemaLog.Printf("Schema validation failed for %s: %v", path, err)
		return fmt.Errorf("schema validation failed for %s: %w", path, err)
	}
	return nil
}

// checkUnexpectedKeys rejects unknown top-level keys with a message that
// names the key and the file, mirroring the historical tool output.
func checkUnexpectedKeys(doc map[string]any, path string) error {
	allowed := make(map[string]bool, len(documentKeys))
	for _, key := range documentKeys {
		allowed[key] = true
	}

	var unexpected []string
	for key := range doc {
		if !allowed[key] {
			unexpected = append(unexpected, key)
		}
	}
	if len(unexpected) == 0 {
		return nil
	}
	sort.Strings(unexpected)
	if len(unexpected) == 1 {
		return fmt.Errorf("unexpected key %s was found in %s", unexpected[0], path)
	}
	return fmt.Errorf("unexpected keys %s were found in %s", strings.Join(unexpected, ", "), path)
}
