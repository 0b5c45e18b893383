// Package tools exposes the Codemagic API as MCP tools.
//
// Every tool is declared once from a typed argument struct. The Registry
// owns the declarations, validates arguments against the derived schema
// and installs the tools into an mcp.Server.
package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/exp/maps"

	"github.com/ee99ee/codemagic-mcp-improved/internal/codemagic"
	"github.com/ee99ee/codemagic-mcp-improved/internal/jsonx"
)

// tool is one registered tool: its MCP definition, the resolved schema of
// every parameter and the typed handler behind it.
type tool struct {
	def    *mcp.Tool
	params map[string]*jsonschema.Resolved
	call   func(ctx context.Context, args map[string]any) (any, error)
}

// Registry maps tool names to their definitions. It is read-only once New
// returns.
type Registry struct {
	tools  map[string]*tool
	logger *log.Logger
	errs   []error
}

func newRegistry(logger *log.Logger) *Registry {
	return &Registry{tools: make(map[string]*tool), logger: logger}
}

// New registers every Codemagic tool backed by client.
func New(client *codemagic.Client, logger *log.Logger) (*Registry, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	r := newRegistry(logger)
	registerApplications(r, client)
	registerArtifacts(r, client)
	registerBuilds(r, client)
	registerWorkflows(r, client)
	registerCaches(r, client)
	registerTeams(r, client)
	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}
	return r, nil
}

// addTool declares a tool whose arguments decode into In. Registration
// failures are collected and reported by New.
func addTool[In any](r *Registry, t *mcp.Tool, h func(ctx context.Context, args In) (any, error)) {
	if _, dup := r.tools[t.Name]; dup {
		r.errs = append(r.errs, &codemagic.ConfigurationError{Message: fmt.Sprintf("duplicate tool name %q", t.Name)})
		return
	}

	sch, err := schemaFor[In]()
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("tool %s: %w", t.Name, err))
		return
	}
	params := make(map[string]*jsonschema.Resolved, len(sch.Properties))
	for name, p := range sch.Properties {
		resolved, err := p.Resolve(nil)
		if err != nil {
			r.errs = append(r.errs, fmt.Errorf("tool %s: parameter %s: %w", t.Name, name, err))
			return
		}
		params[name] = resolved
	}
	t.InputSchema = sch

	r.tools[t.Name] = &tool{
		def:    t,
		params: params,
		call: func(ctx context.Context, args map[string]any) (any, error) {
			b, err := jsonx.Marshal(args)
			if err != nil {
				return nil, err
			}
			var in In
			if err := jsonx.Unmarshal(b, &in); err != nil {
				return nil, &codemagic.InvalidArgumentError{Reason: err.Error()}
			}
			return h(ctx, in)
		},
	}
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := maps.Keys(r.tools)
	slices.Sort(names)
	return names
}

// Tool returns the MCP definition of name.
func (r *Registry) Tool(name string) (*mcp.Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, &codemagic.NotFoundError{Kind: "tool", Name: name}
	}
	return t.def, nil
}

// Dispatch runs the tool name with JSON-encoded arguments. Empty input is
// treated as an empty object.
func (r *Registry) Dispatch(ctx context.Context, name string, rawArgs []byte) (any, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, &codemagic.NotFoundError{Kind: "tool", Name: name}
	}

	args := map[string]any{}
	if len(rawArgs) > 0 {
		var v any
		if err := jsonx.Unmarshal(rawArgs, &v); err != nil {
			return nil, &codemagic.InvalidArgumentError{Reason: fmt.Sprintf("arguments are not valid JSON: %v", err)}
		}
		switch v := v.(type) {
		case map[string]any:
			args = v
		case nil:
		default:
			return nil, &codemagic.InvalidArgumentError{Reason: "arguments must be a JSON object"}
		}
	}
	return r.invoke(ctx, t, args)
}

// invoke validates args parameter by parameter and calls the handler.
func (r *Registry) invoke(ctx context.Context, t *tool, args map[string]any) (any, error) {
	sch := t.def.InputSchema
	for name := range args {
		if _, ok := t.params[name]; !ok {
			return nil, &codemagic.InvalidArgumentError{Param: name, Reason: "unknown parameter"}
		}
	}
	for name, p := range sch.Properties {
		v, present := args[name]
		if present && v == nil {
			delete(args, name)
			present = false
		}
		if !present {
			if len(p.Default) > 0 {
				var def any
				if err := jsonx.Unmarshal(p.Default, &def); err != nil {
					return nil, fmt.Errorf("tool %s: bad default for %s: %w", t.def.Name, name, err)
				}
				args[name] = def
			}
			continue
		}
		args[name] = coerce(p.Type, v)
	}
	for _, name := range sch.Required {
		if v, ok := args[name]; !ok || v == nil {
			return nil, &codemagic.InvalidArgumentError{Param: name, Reason: "missing required argument"}
		}
	}
	for name, v := range args {
		if err := t.params[name].Validate(v); err != nil {
			return nil, &codemagic.InvalidArgumentError{Param: name, Reason: err.Error()}
		}
	}

	r.logger.Debug("calling tool", "tool", t.def.Name)
	return t.call(ctx, args)
}

// coerce converts numeric and boolean strings to the declared type. Values
// that do not parse are returned unchanged for validation to reject.
func coerce(typ string, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch typ {
	case "integer":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return float64(n)
		}
	case "number":
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
	case "boolean":
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return v
}
