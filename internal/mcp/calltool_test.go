package mcp

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/supplynet/scmap/internal/engine"
	"github.com/supplynet/scmap/internal/graph"
	"github.com/supplynet/scmap/internal/inventory"
)

func TestGetToolSchemas(t *testing.T) {
	for _, name := range AllTools {
		schema, ok := toolSchemaRegistry[name]
		if !ok {
			t.Errorf("toolSchemaRegistry missing tool: %s", name)
			continue
		}
		if schema.Name != name {
			t.Errorf("schema name mismatch: got %q, want %q", schema.Name, name)
		}
		if schema.Description == "" {
			t.Errorf("tool %s has empty description", name)
		}
	}

	if len(toolSchemaRegistry) != len(AllTools) {
		t.Errorf("toolSchemaRegistry has %d tools, want %d", len(toolSchemaRegistry), len(AllTools))
	}
}

func TestToolSchemaParameters(t *testing.T) {
	tests := []struct {
		tool          string
		requiredParam string
	}{
		{"scm_node", "node"},
		{"scm_path", "from"},
		{"scm_path", "to"},
	}

	for _, tt := range tests {
		schema, ok := toolSchemaRegistry[tt.tool]
		if !ok {
			t.Fatalf("missing tool: %s", tt.tool)
		}

		found := false
		for _, p := range schema.Parameters {
			if p.Name == tt.requiredParam {
				found = true
				if !p.Required {
					t.Errorf("tool %s param %s should be required", tt.tool, tt.requiredParam)
				}
			}
		}
		if !found {
			t.Errorf("tool %s missing parameter %s", tt.tool, tt.requiredParam)
		}
	}
}

func TestToolSchemaNoRequiredParams(t *testing.T) {
	noRequired := []string{"scm_focus", "scm_stats", "scm_graph", "scm_filter", "scm_rank"}

	for _, name := range noRequired {
		schema := toolSchemaRegistry[name]
		for _, p := range schema.Parameters {
			if p.Required {
				t.Errorf("tool %s param %s is marked required but should not be", name, p.Name)
			}
		}
	}
}

func newTestServer(t *testing.T) (*Server, *engine.Scene) {
	t.Helper()

	opts := engine.DefaultOptions()
	opts.Sites = graph.NewSites([]string{"P"}, []string{"D"})
	scene := engine.NewScene(opts)
	scene.Load(
		[]inventory.Record{
			{Item: "FG-1", Location: "P", Current: 40, Target: 100, HasCurrent: true, HasTarget: true},
			{Item: "RM-1", Location: "P", Category: "RM"},
			{Item: "FG-1", Location: "D"},
			{Item: "FG-2", Location: "P"},
		},
		[]inventory.BOM{{Parent: "FG-1", Child: "RM-1", Site: "P"}},
	)

	s, err := New(&SceneRunner{Scene: scene}, Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, scene
}

func call(t *testing.T, s *Server, name string, args map[string]interface{}) map[string]interface{} {
	t.Helper()
	out, err := s.CallTool(context.Background(), name, args)
	if err != nil {
		t.Fatalf("CallTool(%s) error: %v", name, err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("CallTool(%s) returned invalid JSON: %v\n%s", name, err, out)
	}
	return decoded
}

func TestListToolsMatchesAllTools(t *testing.T) {
	s, _ := newTestServer(t)

	got := s.ListTools()
	sort.Strings(got)
	want := append([]string(nil), AllTools...)
	sort.Strings(want)

	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ListTools() = %v, want %v", got, want)
	}
	if len(s.GetToolSchemas()) != len(AllTools) {
		t.Errorf("GetToolSchemas() returned %d schemas, want %d", len(s.GetToolSchemas()), len(AllTools))
	}
}

func TestNewRejectsUnknownTool(t *testing.T) {
	if _, err := New(&SceneRunner{}, Config{Tools: []string{"scm_nope"}}); err == nil {
		t.Error("New should reject an unknown tool")
	}
}

func TestCallToolUnregistered(t *testing.T) {
	s, err := New(&SceneRunner{}, Config{Tools: []string{"scm_stats"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CallTool(context.Background(), "scm_focus", nil); err == nil {
		t.Error("CallTool should reject a tool that is not registered")
	}
}

func TestFocusTool(t *testing.T) {
	s, scene := newTestServer(t)

	res := call(t, s, "scm_focus", map[string]interface{}{"node": "FG-1@P"})
	if res["focused"] != true {
		t.Errorf("focused = %v, want true", res["focused"])
	}
	sel, _ := res["selection"].(map[string]interface{})
	if sel["item"] != "FG-1" || sel["location"] != "P" {
		t.Errorf("selection = %v, want FG-1@P", sel)
	}
	if got := scene.Stats().Focus; got != "FG-1|P" {
		t.Errorf("scene focus = %q, want FG-1|P", got)
	}
	// FG-1@P, its raw material and its DC
	if res["visible_nodes"] != float64(3) {
		t.Errorf("visible_nodes = %v, want 3", res["visible_nodes"])
	}

	res = call(t, s, "scm_focus", map[string]interface{}{"node": ""})
	if res["focused"] != false {
		t.Errorf("focused after clear = %v, want false", res["focused"])
	}
	if got := scene.Stats().Focus; got != "" {
		t.Errorf("scene focus after clear = %q, want empty", got)
	}
}

func TestFocusToolUnknownNode(t *testing.T) {
	s, _ := newTestServer(t)

	if _, err := s.CallTool(context.Background(), "scm_focus", map[string]interface{}{"node": "X@P"}); err == nil {
		t.Error("expected error for unknown node")
	}
	if _, err := s.CallTool(context.Background(), "scm_focus", map[string]interface{}{"node": "no-separator"}); err == nil {
		t.Error("expected error for malformed node")
	}
}

func TestNodeTool(t *testing.T) {
	s, _ := newTestServer(t)

	res := call(t, s, "scm_node", map[string]interface{}{"node": "FG-1|P"})
	if res["category"] != "FG" {
		t.Errorf("category = %v, want FG", res["category"])
	}
	if res["health"] != "low" {
		t.Errorf("health = %v, want low", res["health"])
	}
	if res["degree"] != float64(2) {
		t.Errorf("degree = %v, want 2", res["degree"])
	}
	consumes, _ := res["consumes"].([]interface{})
	if len(consumes) != 1 || consumes[0] != "RM-1|P" {
		t.Errorf("consumes = %v, want [RM-1|P]", consumes)
	}
	shipsTo, _ := res["ships_to"].([]interface{})
	if len(shipsTo) != 1 || shipsTo[0] != "FG-1|D" {
		t.Errorf("ships_to = %v, want [FG-1|D]", shipsTo)
	}

	if _, err := s.CallTool(context.Background(), "scm_node", map[string]interface{}{}); err == nil {
		t.Error("expected error when node is missing")
	}
}

func TestStatsTool(t *testing.T) {
	s, _ := newTestServer(t)

	res := call(t, s, "scm_stats", nil)
	if res["nodes"] != float64(4) || res["edges"] != float64(2) {
		t.Errorf("stats = %v, want 4 nodes and 2 edges", res)
	}
}

func TestPathTool(t *testing.T) {
	s, _ := newTestServer(t)

	res := call(t, s, "scm_path", map[string]interface{}{"from": "RM-1@P", "to": "FG-1@D", "reverse": false})
	if res["found"] != false {
		t.Errorf("forward RM-1 -> FG-1@D found = %v, want false", res["found"])
	}

	res = call(t, s, "scm_path", map[string]interface{}{"from": "FG-1@P", "to": "FG-1@D"})
	if res["found"] != true || res["hops"] != float64(1) {
		t.Errorf("path = %v, want one hop", res)
	}

	res = call(t, s, "scm_path", map[string]interface{}{"from": "RM-1@P", "to": "FG-1@P", "reverse": true})
	if res["found"] != true {
		t.Errorf("reverse path = %v, want found", res)
	}
}

func TestGraphTool(t *testing.T) {
	s, _ := newTestServer(t)

	res := call(t, s, "scm_graph", nil)
	nodes, _ := res["nodes"].([]interface{})
	if len(nodes) != 4 {
		t.Errorf("len(nodes) = %d, want 4", len(nodes))
	}
	if _, ok := res["edges"]; ok {
		t.Error("sparse graph output should omit edges")
	}

	if _, err := s.CallTool(context.Background(), "scm_graph", map[string]interface{}{"density": "bogus"}); err == nil {
		t.Error("expected error for invalid density")
	}
}

func TestFilterTool(t *testing.T) {
	s, scene := newTestServer(t)

	res := call(t, s, "scm_filter", map[string]interface{}{"hide": "rm, DC"})
	stats, _ := res["stats"].(map[string]interface{})
	if stats["visible_nodes"] != float64(2) {
		t.Errorf("visible_nodes = %v, want 2", stats["visible_nodes"])
	}
	if f := scene.Filter(); f.ShowRM || f.ShowDC || !f.ShowFG {
		t.Errorf("scene filter = %+v, want only FG shown", f)
	}

	call(t, s, "scm_filter", map[string]interface{}{"hide": ""})
	if f := scene.Filter(); !f.ShowRM || !f.ShowDC {
		t.Errorf("empty hide should show all, got %+v", f)
	}

	if _, err := s.CallTool(context.Background(), "scm_filter", map[string]interface{}{"hide": "XX"}); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestRankTool(t *testing.T) {
	s, _ := newTestServer(t)

	res := call(t, s, "scm_rank", map[string]interface{}{"top": float64(2)})
	nodes, _ := res["nodes"].([]interface{})
	if len(nodes) != 2 {
		t.Fatalf("len(nodes) = %d, want 2", len(nodes))
	}
	top, _ := nodes[0].(map[string]interface{})
	if top["id"] != "RM-1|P" {
		t.Errorf("top node = %v, want RM-1|P", top["id"])
	}
	if top["importance"] != "critical" {
		t.Errorf("top importance = %v, want critical", top["importance"])
	}

	if _, err := s.CallTool(context.Background(), "scm_rank", map[string]interface{}{"top": float64(-1)}); err == nil {
		t.Error("expected error for negative top")
	}
}

func TestSceneRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &SceneRunner{}
	ran := false
	if err := r.Do(ctx, func(*engine.Scene) { ran = true }); err == nil {
		t.Error("Do with canceled context should fail")
	}
	if ran {
		t.Error("Do ran fn despite canceled context")
	}
}
