package research

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidCatalog is wrapped by every catalog validation failure.
var ErrInvalidCatalog = errors.New("invalid research catalog")

//go:embed catalog.schema.json
var catalogSchema []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("catalog.schema.json", bytes.NewReader(catalogSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("catalog.schema.json")
})

// Issue is a single problem found while validating a catalog.
type Issue struct {
	Location string
	Message  string
}

// ValidationError lists every issue found in a catalog document.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "/"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return ErrInvalidCatalog.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidCatalog
}

// validateShape checks the raw document against the embedded JSON schema.
func validateShape(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("research: compile schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return &ValidationError{Issues: []Issue{{Message: "malformed JSON: " + err.Error()}}}
	}

	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &ValidationError{Issues: collectSchemaIssues(verr)}
		}
		return &ValidationError{Issues: []Issue{{Message: err.Error()}}}
	}
	return nil
}

func collectSchemaIssues(err *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}

// validateRecords applies the rules the schema cannot express: unique ids
// and non-blank required values.
func validateRecords(file *catalogFile) []Issue {
	var issues []Issue

	seen := make(map[string]struct{}, len(file.Papers))
	for i := range file.Papers {
		p := &file.Papers[i]
		loc := fmt.Sprintf("/papers/%d", i)
		err := validation.ValidateStruct(p,
			validation.Field(&p.ID, validation.Required),
			validation.Field(&p.Type, validation.Required, validation.In(PaperTypeAcademic, PaperTypeWhitepaper)),
			validation.Field(&p.Title, validation.Required),
			validation.Field(&p.Year, validation.Required, validation.Min(1)),
		)
		issues = append(issues, fieldIssues(loc, err)...)
		if _, dup := seen[p.ID]; dup && p.ID != "" {
			issues = append(issues, Issue{Location: loc + "/id", Message: fmt.Sprintf("duplicate paper id %q", p.ID)})
		}
		seen[p.ID] = struct{}{}
	}

	seen = make(map[string]struct{}, len(file.Comics))
	for i := range file.Comics {
		c := &file.Comics[i]
		loc := fmt.Sprintf("/comics/%d", i)
		err := validation.ValidateStruct(c,
			validation.Field(&c.ID, validation.Required),
			validation.Field(&c.Type, validation.Required, validation.In(ComicType)),
			validation.Field(&c.Title, validation.Required),
			validation.Field(&c.Episode, validation.Min(0)),
		)
		issues = append(issues, fieldIssues(loc, err)...)
		if _, dup := seen[c.ID]; dup && c.ID != "" {
			issues = append(issues, Issue{Location: loc + "/id", Message: fmt.Sprintf("duplicate comic id %q", c.ID)})
		}
		seen[c.ID] = struct{}{}
	}

	seen = make(map[string]struct{}, len(file.Categories.Topics))
	for i, topic := range file.Categories.Topics {
		if _, dup := seen[topic.ID]; dup {
			issues = append(issues, Issue{
				Location: fmt.Sprintf("/categories/topics/%d/id", i),
				Message:  fmt.Sprintf("duplicate topic id %q", topic.ID),
			})
		}
		seen[topic.ID] = struct{}{}
	}

	return issues
}

func fieldIssues(loc string, err error) []Issue {
	if err == nil {
		return nil
	}
	var fields validation.Errors
	if !errors.As(err, &fields) {
		return []Issue{{Location: loc, Message: err.Error()}}
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	issues := make([]Issue, 0, len(keys))
	for _, key := range keys {
		issues = append(issues, Issue{Location: loc + "/" + key, Message: fields[key].Error()})
	}
	return issues
}
