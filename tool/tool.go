// Package tool declares the capabilities a chat request advertises to the
// backend. The backend executes tools server-side and streams tool_call /
// tool_result events back; the client only has to describe what is
// available, as a name plus a JSON schema for the arguments.
package tool

import (
	"fmt"

	"github.com/fogfish/opts"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/gatewayz/chatstream/pkg/stdx"
)

// Definition describes one tool offered in a chat request. Parameters is
// an example value (typically a struct with json tags) whose reflected
// schema becomes the tool's argument schema; nil means the tool takes an
// empty object.
type Definition struct {
	Name        string
	Description string
	Parameters  any
}

// Option configures a Definition during construction.
type Option = opts.Option[Definition]

var (
	// Description sets the human-readable description sent to the model.
	Description = opts.ForName[Definition, string]("Description")

	// Parameters sets the value whose reflected schema describes the
	// tool's arguments.
	Parameters = opts.ForName[Definition, any]("Parameters")
)

var reflector = jsonschema.Reflector{
	AllowAdditionalProperties: true,
	DoNotReference:            true,
}

// New builds a tool definition with the given name and options.
func New(name string, options ...Option) (Definition, error) {
	if name == "" {
		return Definition{}, fmt.Errorf("tool name cannot be empty")
	}

	def := Definition{Name: name}
	if err := opts.Apply(&def, options); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// Must is New that panics on error, for package-level declarations.
func Must(name string, options ...Option) Definition {
	return stdx.Must1(New(name, options...))
}

// Schema reflects the argument schema for this definition.
func (d Definition) Schema() *jsonschema.Schema {
	if d.Parameters == nil {
		return &jsonschema.Schema{
			Type:       "object",
			Properties: orderedmap.New[string, *jsonschema.Schema](),
		}
	}

	schema := reflector.Reflect(d.Parameters)
	schema.Version = ""
	return schema
}
