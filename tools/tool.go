// Package tools provides the tool system for the agent loop.
//
// Information Hiding:
// - Tool execution details hidden behind interface
// - Argument decoding and required-field checks hidden in decodeInput
// - Failures folded into "Error: ..." result strings; tools never return Go errors
package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrUnknownTool is returned by ParseKind for names outside the closed set.
var ErrUnknownTool = errors.New("unknown tool")

// Kind enumerates the tools the agent may dispatch.
type Kind int

const (
	KindBash Kind = iota
	KindReadFile
	KindWriteFile
	KindEditFile
	KindTodoWrite
)

var kindNames = map[Kind]string{
	KindBash:      "bash",
	KindReadFile:  "read_file",
	KindWriteFile: "write_file",
	KindEditFile:  "edit_file",
	KindTodoWrite: "TodoWrite",
}

// String returns the wire name of the tool.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a wire name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownTool, name)
}

// Field describes one input field of a tool.
type Field struct {
	Name        string
	Type        string // string, number, integer, boolean, array
	Description string
	Required    bool
	Items       map[string]interface{} // element schema for array fields
}

// Definition describes what a tool does and how to call it.
type Definition struct {
	Name        string
	Description string
	Fields      []Field
}

// String returns a one-line summary.
func (d Definition) String() string {
	return fmt.Sprintf("%s: %s", d.Name, d.Description)
}

// JSONSchema renders the definition's input as a JSON schema object.
func (d Definition) JSONSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(d.Fields))
	required := []string{}
	for _, f := range d.Fields {
		prop := map[string]interface{}{
			"type":        f.Type,
			"description": f.Description,
		}
		if f.Items != nil {
			prop["items"] = f.Items
		}
		properties[f.Name] = prop
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// Tool is the interface that all tools must implement.
type Tool interface {
	Kind() Kind
	Definition() Definition

	// Execute runs the tool. The returned string is the result handed back
	// to the model; failures start with "Error: ".
	Execute(ctx context.Context, args map[string]any) string
}

// integralFloatHook rejects JSON numbers with a fractional part bound for
// an integer field; whole floats such as 5.0 pass through.
func integralFloatHook(from, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}

	var f float64
	switch from.Kind() {
	case reflect.Float32, reflect.Float64:
		f = reflect.ValueOf(data).Float()
	default:
		return data, nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return nil, fmt.Errorf("expected an integer, got %v", data)
	}
	return data, nil
}

// errorResult formats a failure the way every tool reports it.
func errorResult(format string, args ...any) string {
	return "Error: " + fmt.Sprintf(format, args...)
}

// decodeInput decodes args into out and checks that every required key was
// present. No type coercion: a number where a string is expected fails, and
// so does a fractional number for an integer field.
func decodeInput(kind Kind, args map[string]any, out any, required ...string) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     out,
		TagName:    "mapstructure",
		DecodeHook: mapstructure.DecodeHookFuncType(integralFloatHook),
	})
	if err != nil {
		return err
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments for %s: %w", kind, err)
	}

	var missing []string
	for _, name := range required {
		if _, ok := args[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("invalid arguments for %s: missing required field(s) %s",
			kind, strings.Join(missing, ", "))
	}
	return nil
}
