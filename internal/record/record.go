// Package record reads and writes the version record (ver.json), the single
// file that pins which upstream release the repository currently tracks.
package record

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/ver.schema.json
var schemaBytes []byte

var (
	// ErrNotFound is returned when the record file does not exist
	ErrNotFound = errors.New("version record not found")
	// ErrInvalid is returned when the record content fails schema validation
	ErrInvalid = errors.New("invalid version record")
)

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// VersionRecord is the persisted upstream pin.
// Fields are declared in key order so the file is written with sorted keys.
type VersionRecord struct {
	Commit string `json:"commit,omitempty"`
	Date   string `json:"date,omitempty"`
	Hash   string `json:"hash,omitempty"`
	Owner  string `json:"owner,omitempty"`
	Repo   string `json:"repo,omitempty"`
	Rev    string `json:"rev"`
	URL    string `json:"url,omitempty"`
}

// getSchema compiles the embedded JSON schema once and returns it
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("ver.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("ver.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Validate checks raw record JSON against the embedded schema
func Validate(data []byte) error {
	schema, err := getSchema()
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(issues(ve), "; "))
}

// issues flattens a validation error tree into "location: message" strings
func issues(ve *jsonschema.ValidationError) []string {
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, cause := range e.Causes {
				walk(cause)
			}
			return
		}
		location := "/" + strings.Join(e.InstanceLocation, "/")
		msg := e.Error()
		if e.ErrorKind != nil {
			msg = e.ErrorKind.LocalizedString(printer)
		}
		out = append(out, location+": "+msg)
	}
	walk(ve)
	sort.Strings(out)
	return out
}

// Load reads and validates the record at path
func Load(path string) (*VersionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}

	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var rec VersionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, path, err)
	}

	return &rec, nil
}

// Marshal renders the record as indented JSON with a trailing newline
func Marshal(rec *VersionRecord) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Save validates rec and overwrites the file at path
func Save(path string, rec *VersionRecord) error {
	data, err := Marshal(rec)
	if err != nil {
		return err
	}

	if err := Validate(data); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
