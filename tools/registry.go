// Tool catalog: ordered registration and dispatch by wire name.
//
// Information Hiding:
// - Tool storage and lookup implementation hidden
// - Output truncation applied in one place for every tool
// - Unknown names folded into an error result

package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/richinex/toolloop/workspace"
)

// Catalog holds the tools offered to the model, in registration order.
type Catalog struct {
	mu        sync.RWMutex
	order     []Tool
	byKind    map[Kind]Tool
	truncator Truncator
}

// NewCatalog creates a catalog holding tools in the given order.
// Returns error if two tools share a kind.
func NewCatalog(tools ...Tool) (*Catalog, error) {
	c := &Catalog{byKind: make(map[Kind]Tool)}
	for _, t := range tools {
		if err := c.Register(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithTruncator replaces the output truncation policy.
func (c *Catalog) WithTruncator(t Truncator) *Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.truncator = t
	return c
}

// Register appends a tool to the catalog.
func (c *Catalog) Register(tool Tool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	kind := tool.Kind()
	if _, exists := c.byKind[kind]; exists {
		return fmt.Errorf("tool '%s' already registered", kind)
	}
	c.byKind[kind] = tool
	c.order = append(c.order, tool)
	return nil
}

// Get returns the tool registered for kind.
func (c *Catalog) Get(kind Kind) (Tool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tool, ok := c.byKind[kind]
	return tool, ok
}

// Names returns the registered wire names in catalog order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.order))
	for i, t := range c.order {
		names[i] = t.Kind().String()
	}
	return names
}

// Definitions returns the definitions of all tools in catalog order.
func (c *Catalog) Definitions() []Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()

	defs := make([]Definition, len(c.order))
	for i, t := range c.order {
		defs[i] = t.Definition()
	}
	return defs
}

// Description returns a formatted description of all tools, one block per tool.
func (c *Catalog) Description() string {
	var blocks []string
	for _, def := range c.Definitions() {
		var params []string
		for _, f := range def.Fields {
			required := "optional"
			if f.Required {
				required = "required"
			}
			params = append(params, fmt.Sprintf("  - %s (%s): %s [%s]",
				f.Name, f.Type, f.Description, required))
		}
		blocks = append(blocks, fmt.Sprintf("Tool: %s\nDescription: %s\nParameters:\n%s",
			def.Name, def.Description, strings.Join(params, "\n")))
	}
	return strings.Join(blocks, "\n\n")
}

// Dispatch runs the tool named name and returns its truncated result.
func (c *Catalog) Dispatch(ctx context.Context, name string, args map[string]any) string {
	kind, err := ParseKind(name)
	if err != nil {
		return "Error: Unknown tool: " + name
	}
	tool, ok := c.Get(kind)
	if !ok {
		return "Error: Unknown tool: " + name
	}

	c.mu.RLock()
	truncator := c.truncator
	c.mu.RUnlock()

	return truncator.Apply(tool.Execute(ctx, args))
}

// WithDefaults creates a catalog with bash, read_file, write_file and
// edit_file, in that order.
func WithDefaults(guard *workspace.Guard, runner CommandRunner) (*Catalog, error) {
	catalog, err := NewCatalog(
		NewBashTool(runner),
		NewReadFileTool(guard),
		NewWriteFileTool(guard),
		NewEditFileTool(guard),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register default tools: %w", err)
	}
	return catalog, nil
}
