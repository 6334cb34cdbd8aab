// Package mcp provides an MCP (Model Context Protocol) server for scmap.
// Agents drive the same scene the browser shows: focusing a node through a
// tool moves the live view exactly as a click would.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/supplynet/scmap/internal/engine"
	"github.com/supplynet/scmap/internal/graph"
	"github.com/supplynet/scmap/internal/metrics"
	"github.com/supplynet/scmap/internal/output"
)

// Runner executes fn against the scene. *engine.Loop is a Runner; tools
// then run between frames on the loop goroutine.
type Runner interface {
	Do(ctx context.Context, fn func(*engine.Scene)) error
}

// SceneRunner runs tools directly on a scene owned by the caller, with a
// mutex in place of the frame loop.
type SceneRunner struct {
	mu    sync.Mutex
	Scene *engine.Scene
}

// Do implements Runner.
func (r *SceneRunner) Do(ctx context.Context, fn func(*engine.Scene)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.Scene)
	return nil
}

// Server wraps the MCP server with scmap-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	runner       Runner
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
}

// AllTools lists all available tools
var AllTools = []string{"scm_focus", "scm_node", "scm_stats", "scm_path", "scm_graph", "scm_filter", "scm_rank"}

// New creates a new MCP server operating on runner's scene.
func New(runner Runner, cfg Config) (*Server, error) {
	mcpServer := server.NewMCPServer(
		"scmap",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		runner:       runner,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = AllTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	schema, ok := toolSchemaRegistry[name]
	if !ok {
		return fmt.Errorf("unknown tool: %s", name)
	}
	s.mcpServer.AddTool(newTool(schema), s.handler(name))
	return nil
}

// newTool builds the mcp-go tool definition from a schema entry.
func newTool(schema ToolSchema) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(schema.Description)}
	for _, p := range schema.Parameters {
		popts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			popts = append(popts, mcp.Required())
		}
		switch p.Type {
		case "number":
			opts = append(opts, mcp.WithNumber(p.Name, popts...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(p.Name, popts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, popts...))
		}
	}
	return mcp.NewTool(schema.Name, opts...)
}

// handler adapts CallTool to the mcp-go handler signature.
func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.updateActivity()

		result, err := s.call(ctx, name, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}

// ServeStdio serves MCP over stdin/stdout until ctx is canceled, stdin
// closes, or the inactivity timeout passes.
func (s *Server) ServeStdio(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.timeout > 0 {
		go s.timeoutChecker(ctx, cancel)
	}

	err := server.NewStdioServer(s.mcpServer).Listen(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// timeoutChecker cancels the session once the timeout passes without a call.
func (s *Server) timeoutChecker(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "scmap serve: timeout after %v of inactivity\n", s.timeout)
			cancel()
			return
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the list of registered tools
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry holds the schema definitions for all tools.
var toolSchemaRegistry = map[string]ToolSchema{
	"scm_focus": {
		Name:        "scm_focus",
		Description: "Focus the view on one node and its supply-chain neighborhood, or clear focus. Returns the selection.",
		Parameters: []ParameterSchema{
			{Name: "node", Type: "string", Description: "Node as ITEM@LOCATION; empty clears focus"},
		},
	},
	"scm_node": {
		Name:        "scm_node",
		Description: "Show category, stock levels, health and direct links of one node.",
		Parameters: []ParameterSchema{
			{Name: "node", Type: "string", Description: "Node as ITEM@LOCATION", Required: true},
		},
	},
	"scm_stats": {
		Name:        "scm_stats",
		Description: "Summarize the network: node and edge counts, focus, layout heat and zoom.",
	},
	"scm_path": {
		Name:        "scm_path",
		Description: "Find the shortest material path between two nodes.",
		Parameters: []ParameterSchema{
			{Name: "from", Type: "string", Description: "Start node as ITEM@LOCATION", Required: true},
			{Name: "to", Type: "string", Description: "End node as ITEM@LOCATION", Required: true},
			{Name: "reverse", Type: "boolean", Description: "Walk edges backwards (what does 'from' feed from)"},
		},
	},
	"scm_graph": {
		Name:        "scm_graph",
		Description: "List the nodes and edges currently in view.",
		Parameters: []ParameterSchema{
			{Name: "density", Type: "string", Description: "Detail level: sparse, medium, dense (default: sparse)"},
		},
	},
	"scm_filter": {
		Name:        "scm_filter",
		Description: "Change which categories and locations are shown.",
		Parameters: []ParameterSchema{
			{Name: "hide", Type: "string", Description: "Comma-separated categories to hide: RM, FG, DC"},
			{Name: "locations", Type: "string", Description: "Comma-separated location allow-list; empty allows all"},
			{Name: "hide_orphans", Type: "boolean", Description: "Drop nodes without edges while unfocused"},
		},
	},
	"scm_rank": {
		Name:        "scm_rank",
		Description: "Rank the nodes in view by supply risk: what the most stock depends on, and which nodes sit on the most dependency chains.",
		Parameters: []ParameterSchema{
			{Name: "top", Type: "number", Description: "Number of nodes to return (default: 10)"},
			{Name: "keystones", Type: "boolean", Description: "Only return keystones"},
		},
	},
}

// GetToolSchemas returns schemas for all registered tools.
func (s *Server) GetToolSchemas() []ToolSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schemas := make([]ToolSchema, 0, len(s.tools))
	for name := range s.tools {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].Name < schemas[j].Name })
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'scmap call --list' to see available tools)", name)
	}
	return s.call(ctx, name, args)
}

func (s *Server) call(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	var result interface{}
	var callErr, opErr error

	switch name {
	case "scm_focus":
		raw, _ := args["node"].(string)
		var id graph.Identity
		if strings.TrimSpace(raw) != "" {
			parsed, err := graph.ParseIdentity(raw)
			if err != nil {
				return "", err
			}
			id = parsed
		}
		callErr = s.runner.Do(ctx, func(sc *engine.Scene) {
			result, opErr = executeFocus(sc, id)
		})

	case "scm_node":
		id, err := requireIdentity(args, "node")
		if err != nil {
			return "", err
		}
		callErr = s.runner.Do(ctx, func(sc *engine.Scene) {
			result, opErr = executeNode(sc, id)
		})

	case "scm_stats":
		callErr = s.runner.Do(ctx, func(sc *engine.Scene) {
			result = sc.Stats()
		})

	case "scm_path":
		from, err := requireIdentity(args, "from")
		if err != nil {
			return "", err
		}
		to, err := requireIdentity(args, "to")
		if err != nil {
			return "", err
		}
		direction := "forward"
		if reverse, _ := args["reverse"].(bool); reverse {
			direction = "reverse"
		}
		callErr = s.runner.Do(ctx, func(sc *engine.Scene) {
			result = output.NewPathOutput(from, to, sc.Graph().ShortestPath(from, to, direction))
		})

	case "scm_graph":
		raw, _ := args["density"].(string)
		if raw == "" {
			raw = string(output.DensitySparse)
		}
		density, err := output.ParseDensity(raw)
		if err != nil {
			return "", err
		}
		callErr = s.runner.Do(ctx, func(sc *engine.Scene) {
			result = output.NewGraphOutput(sc.View(), density)
		})

	case "scm_filter":
		callErr = s.runner.Do(ctx, func(sc *engine.Scene) {
			result, opErr = executeFilter(sc, args)
		})

	case "scm_rank":
		top := 10
		if v, ok := args["top"].(float64); ok {
			if v < 0 {
				return "", fmt.Errorf("top must be non-negative, got %v", v)
			}
			top = int(v)
		}
		keystones, _ := args["keystones"].(bool)
		callErr = s.runner.Do(ctx, func(sc *engine.Scene) {
			g := sc.View().Graph
			scores := metrics.Compute(g, metrics.DefaultThresholds())
			if keystones {
				kept := scores[:0]
				for _, score := range scores {
					if score.Keystone {
						kept = append(kept, score)
					}
				}
				scores = kept
			}
			result = output.NewRankOutput(g, metrics.TopN(scores, top))
		})

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	if callErr != nil {
		return "", callErr
	}
	if opErr != nil {
		return "", opErr
	}
	return toJSON(result)
}

func requireIdentity(args map[string]interface{}, key string) (graph.Identity, error) {
	raw, ok := args[key].(string)
	if !ok || raw == "" {
		return graph.Identity{}, fmt.Errorf("%s parameter is required", key)
	}
	return graph.ParseIdentity(raw)
}

// focusResult reports what scm_focus did.
type focusResult struct {
	Focused   bool              `json:"focused"`
	Selection *engine.Selection `json:"selection,omitempty"`
	Visible   int               `json:"visible_nodes"`
}

func executeFocus(sc *engine.Scene, id graph.Identity) (interface{}, error) {
	if id.IsZero() {
		sc.ClearFocus()
	} else {
		if sc.Graph().Node(id) == nil {
			return nil, fmt.Errorf("node not found: %s", id)
		}
		sc.Focus(id)
	}
	res := focusResult{Visible: sc.View().NodeCount()}
	if sel, ok := sc.Selection(); ok {
		res.Focused = true
		res.Selection = &sel
	} else if !id.IsZero() {
		return nil, fmt.Errorf("node %s is hidden by the current filter", id)
	}
	return res, nil
}

// nodeResult is the scm_node document.
type nodeResult struct {
	engine.Selection
	Visible     bool     `json:"visible"`
	Consumes    []string `json:"consumes,omitempty"`
	ConsumedBy  []string `json:"consumed_by,omitempty"`
	ShipsTo     []string `json:"ships_to,omitempty"`
	ShippedFrom []string `json:"shipped_from,omitempty"`
}

func executeNode(sc *engine.Scene, id graph.Identity) (interface{}, error) {
	g := sc.Graph()
	n := g.Node(id)
	if n == nil {
		return nil, fmt.Errorf("node not found: %s", id)
	}

	// Degree on the full graph; the view may have recounted it.
	sel := engine.SelectionOf(n)
	sel.Degree = g.InDegree(id) + g.OutDegree(id)
	res := nodeResult{Selection: sel, Visible: sc.View().Has(id)}
	for _, e := range g.Edges {
		switch {
		case e.Source == id && e.Kind == graph.BOMEdge:
			res.Consumes = append(res.Consumes, e.Target.String())
		case e.Target == id && e.Kind == graph.BOMEdge:
			res.ConsumedBy = append(res.ConsumedBy, e.Source.String())
		case e.Source == id && e.Kind == graph.FlowEdge:
			res.ShipsTo = append(res.ShipsTo, e.Target.String())
		case e.Target == id && e.Kind == graph.FlowEdge:
			res.ShippedFrom = append(res.ShippedFrom, e.Source.String())
		}
	}
	return res, nil
}

func executeFilter(sc *engine.Scene, args map[string]interface{}) (interface{}, error) {
	f := sc.Filter()
	if raw, ok := args["hide"].(string); ok {
		f.ShowRM, f.ShowFG, f.ShowDC = true, true, true
		if err := f.HideCategories(splitList(raw)); err != nil {
			return nil, err
		}
	}
	if raw, ok := args["locations"].(string); ok {
		f.Locations = splitList(raw)
	}
	if v, ok := args["hide_orphans"].(bool); ok {
		f.HideOrphans = v
	}
	sc.SetFilter(f)
	return struct {
		Filter graph.Filter `json:"filter"`
		Stats  engine.Stats `json:"stats"`
	}{f, sc.Stats()}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func toJSON(v interface{}) (string, error) {
	return output.NewJSONFormatter().Format(v)
}
