// Package loader reads flame chart input documents.
//
// A document is either a JSON array of nodes, or an object with the optional keys data (an array of nodes), marks
// and waterfall. Documents can be reshaped by a jq filter before they are validated against the input schema and
// decoded.
package loader

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"honnef.co/go/flamechart"
	"honnef.co/go/flamechart/plugins/marks"
	"honnef.co/go/flamechart/plugins/waterfall"
	"honnef.co/go/flamechart/tree"

	"github.com/itchyny/gojq"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "https://honnef.co/go/flamechart/input.json"

// Document is a decoded input document.
type Document struct {
	Data      []*tree.Node    `json:"data"`
	Marks     []marks.Mark    `json:"marks"`
	Waterfall *waterfall.Data `json:"waterfall"`
}

// Apply copies the document's data into opts.
func (doc *Document) Apply(opts *flamechart.Options) {
	opts.Data = doc.Data
	opts.Marks = doc.Marks
	opts.Waterfall = doc.Waterfall
}

// ValidationError is returned for documents that don't match the input schema.
type ValidationError struct {
	// Violations lists the failed constraints as "location: message".
	Violations []string
	err        *jsonschema.ValidationError
}

func (err *ValidationError) Error() string {
	if len(err.Violations) == 1 {
		return "invalid input: " + err.Violations[0]
	}
	return fmt.Sprintf("invalid input: %d violations: %s", len(err.Violations), strings.Join(err.Violations, "; "))
}

func (err *ValidationError) Unwrap() error { return err.err }

func newValidationError(err *jsonschema.ValidationError) *ValidationError {
	return &ValidationError{Violations: violations(err), err: err}
}

var printer = message.NewPrinter(language.English)

func violations(err *jsonschema.ValidationError) []string {
	if len(err.Causes) == 0 {
		return []string{fmt.Sprintf("/%s: %s", strings.Join(err.InstanceLocation, "/"), err.ErrorKind.LocalizedString(printer))}
	}
	var out []string
	for _, cause := range err.Causes {
		out = append(out, violations(cause)...)
	}
	return out
}

type Loader struct {
	schema *jsonschema.Schema
	filter *gojq.Code
	log    *zap.Logger
}

type Option func(*Loader) error

func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) error {
		ld.log = l
		return nil
	}
}

// WithFilter runs every document through the jq program src before validating it. The program must produce
// exactly one value.
func WithFilter(src string) Option {
	return func(ld *Loader) error {
		if src == "" {
			return nil
		}
		query, err := gojq.Parse(src)
		if err != nil {
			return fmt.Errorf("couldn't parse filter %q: %w", src, err)
		}
		code, err := gojq.Compile(query, gojq.WithEnvironLoader(func() []string { return nil }))
		if err != nil {
			return fmt.Errorf("couldn't compile filter %q: %w", src, err)
		}
		ld.filter = code
		return nil
	}
}

func New(opts ...Option) (*Loader, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("couldn't parse input schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("couldn't add input schema: %w", err)
	}
	schema, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("couldn't compile input schema: %w", err)
	}

	ld := &Loader{schema: schema, log: zap.NewNop()}
	for _, opt := range opts {
		if err := opt(ld); err != nil {
			return nil, err
		}
	}
	return ld, nil
}

// LoadFile loads the document at path.
func (ld *Loader) LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := ld.Load(f)
	if err != nil {
		return nil, fmt.Errorf("couldn't load %s: %w", path, err)
	}
	return doc, nil
}

// Load reads, filters, validates and decodes a document.
func (ld *Loader) Load(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if ld.filter != nil {
		if data, err = ld.runFilter(data); err != nil {
			return nil, err
		}
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("couldn't parse input: %w", err)
	}
	if err := ld.schema.Validate(inst); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, newValidationError(verr)
		}
		return nil, err
	}

	var doc Document
	if _, ok := inst.([]any); ok {
		err = json.Unmarshal(data, &doc.Data)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("couldn't decode input: %w", err)
	}
	ld.log.Debug("loaded input",
		zap.Int("roots", len(doc.Data)),
		zap.Int("marks", len(doc.Marks)),
		zap.Bool("waterfall", doc.Waterfall != nil))
	return &doc, nil
}

func (ld *Loader) runFilter(data []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("couldn't parse input: %w", err)
	}
	iter := ld.filter.Run(v)
	out, ok := iter.Next()
	if !ok {
		return nil, errors.New("filter produced no output")
	}
	if err, ok := out.(error); ok {
		return nil, fmt.Errorf("filter failed: %w", err)
	}
	if _, ok := iter.Next(); ok {
		return nil, errors.New("filter produced more than one output")
	}
	return json.Marshal(out)
}
