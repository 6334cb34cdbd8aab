package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/supplynet/scmap/internal/config"
	"github.com/supplynet/scmap/internal/engine"
	"github.com/supplynet/scmap/internal/mcp"
)

var (
	callList bool
	callPipe bool
)

var callCmd = &cobra.Command{
	Use:   "call [tool] [json-args]",
	Short: "Call an MCP tool once, without starting a server",
	Long: `Call any scmap MCP tool with JSON arguments against a freshly loaded scene.

The scene is built from the store, filtered by the config, and not laid out,
so tools that report positions see the initial placement.

Modes:
  scmap call --list                          List all tools and parameters
  scmap call <tool> '{"key":"value"}'        Call a tool with JSON args
  scmap call --pipe                          Read JSON lines from stdin

In pipe mode every call shares one scene, so a focus or filter set by one
line applies to the lines after it.

Tool names accept shorthand: "focus" is equivalent to "scm_focus".

Examples:
  scmap call --list
  scmap call stats
  scmap call node '{"node":"FG-100@PLANT1"}'
  scmap call path '{"from":"RM-7@PLANT1","to":"FG-100@DC1"}'
  echo '{"tool":"scm_focus","args":{"node":"FG-100@PLANT1"}}' | scmap call --pipe`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().BoolVar(&callList, "list", false, "List all available tools and their parameters")
	callCmd.Flags().BoolVar(&callPipe, "pipe", false, "Read JSON lines from stdin (pipe mode)")
}

func runCall(cmd *cobra.Command, args []string) error {
	if callList {
		return runCallList(cmd.OutOrStdout())
	}
	if !callPipe && len(args) == 0 {
		return fmt.Errorf("tool name required (run 'scmap call --list' to see available tools)")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	srv, err := newSceneServer(cfg)
	if err != nil {
		return err
	}

	if callPipe {
		return runCallPipe(cmd, srv)
	}
	return runCallSingle(cmd, srv, args)
}

func runCallList(w io.Writer) error {
	srv, err := mcp.New(&mcp.SceneRunner{}, mcp.Config{Tools: mcp.AllTools})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return writeOutput(w, cfg, srv.GetToolSchemas())
}

// newSceneServer loads the stored graph into a scene and wraps it in an
// MCP server that runs tools directly.
func newSceneServer(cfg *config.Config) (*mcp.Server, error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	records, boms, err := loadData(cfg)
	if err != nil {
		return nil, err
	}
	scene := engine.NewScene(opts)
	scene.Load(records, boms)

	srv, err := mcp.New(&mcp.SceneRunner{Scene: scene}, mcp.Config{Tools: mcp.AllTools})
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}
	return srv, nil
}

func runCallSingle(cmd *cobra.Command, srv *mcp.Server, args []string) error {
	toolName := normalizeToolName(args[0])

	toolArgs, err := parseToolArgs(args[1:])
	if err != nil {
		return err
	}

	result, err := srv.CallTool(commandContext(cmd), toolName, toolArgs)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

// parseToolArgs decodes the optional JSON argument object.
func parseToolArgs(args []string) (map[string]interface{}, error) {
	toolArgs := make(map[string]interface{})
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return toolArgs, nil
	}
	if err := json.Unmarshal([]byte(args[0]), &toolArgs); err != nil {
		return nil, fmt.Errorf("invalid JSON args: %w", err)
	}
	if toolArgs == nil {
		toolArgs = make(map[string]interface{})
	}
	return toolArgs, nil
}

// pipeRequest is the JSON format for pipe mode input.
type pipeRequest struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

// pipeResponse is the JSON format for pipe mode output.
type pipeResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func runCallPipe(cmd *cobra.Command, srv *mcp.Server) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	scanner := bufio.NewScanner(cmd.InOrStdin())
	// Allow larger lines (1MB)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req pipeRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			enc.Encode(pipeResponse{Error: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}
		if req.Args == nil {
			req.Args = make(map[string]interface{})
		}

		result, err := srv.CallTool(commandContext(cmd), normalizeToolName(req.Tool), req.Args)
		if err != nil {
			enc.Encode(pipeResponse{Error: err.Error()})
			continue
		}

		var raw json.RawMessage
		if err := json.Unmarshal([]byte(result), &raw); err != nil {
			b, _ := json.Marshal(result)
			raw = b
		}
		enc.Encode(pipeResponse{Result: raw})
	}

	return scanner.Err()
}

// normalizeToolName converts shorthand names to full tool names.
// "focus" -> "scm_focus", "scm_focus" -> "scm_focus"
func normalizeToolName(name string) string {
	name = strings.TrimSpace(name)
	if !strings.HasPrefix(name, "scm_") {
		return "scm_" + name
	}
	return name
}
