package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smilealdway/PowerMCP/internal/engine/powerworld"
)

type pwOpenInput struct {
	CasePath string `json:"case_path" jsonschema:"required,Path to the .pwb binary case file"`
}

type pwPowerFlowInput struct {
	SolutionMethod string `json:"solution_method,omitempty" jsonschema:"Solver: RECTNEWT POLARNEWTON GAUSSSEIDEL FDXB or DC (default: RECTNEWT)"`
}

type pwContingencyInput struct {
	Option   string `json:"option,omitempty" jsonschema:"Contingency screening option, only N-1 is supported (default: N-1)"`
	Validate bool   `json:"validate,omitempty" jsonschema:"Validate the auto-generated contingency set before solving"`
}

type pwResultsInput struct {
	ObjectType       string   `json:"object_type" jsonschema:"required,Object family: bus gen load shunt or branch"`
	AdditionalFields []string `json:"additional_fields,omitempty" jsonschema:"Extra result fields beyond the key fields"`
}

type pwObjectTypeInput struct {
	ObjectType string `json:"object_type" jsonschema:"required,Object family: bus gen load shunt or branch"`
}

type pwChangeParamsInput struct {
	ObjectType string   `json:"object_type" jsonschema:"required,Object family: bus gen load shunt or branch"`
	ParamList  []string `json:"param_list" jsonschema:"required,Parameter names, starting with the family's key fields"`
	ValueList  [][]any  `json:"value_list" jsonschema:"required,One row of values per element, aligned with param_list"`
}

type pwYbusInput struct {
	Full bool `json:"full,omitempty" jsonschema:"Return the dense matrix instead of sparse CSR form"`
}

type pwGraphInput struct {
	Node       string `json:"node,omitempty" jsonschema:"Graph node kind: bus or substation (default: bus)"`
	Geographic bool   `json:"geographic,omitempty" jsonschema:"Attach latitude and longitude to nodes"`
	Directed   bool   `json:"directed,omitempty" jsonschema:"Export a directed graph"`
}

func (s *Server) registerPowerWorldTools() {
	eng := s.engines.PowerWorld
	if eng == nil {
		return
	}

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "powerworld_open_case",
		Description: "Open a PowerWorld .pwb case and activate it as the current case.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args pwOpenInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, powerworld.OpenCase(eng, args.CasePath))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "powerworld_run_powerflow",
		Description: "Solve the power flow for the current PowerWorld case and report overflows and voltage violations.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args pwPowerFlowInput) (*mcp.CallToolResult, map[string]any, error) {
		method := args.SolutionMethod
		if method == "" {
			method = "RECTNEWT"
		}
		env := s.gw.Invoke(ctx, powerworld.RunPowerFlow(eng, method))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "powerworld_analyze_contingencies",
		Description: "Run automated N-1 contingency screening on the current case.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args pwContingencyInput) (*mcp.CallToolResult, map[string]any, error) {
		option := args.Option
		if option == "" {
			option = "N-1"
		}
		env := s.gw.Invoke(ctx, powerworld.AnalyzeContingencies(eng, option, args.Validate))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "powerworld_get_power_flow_results",
		Description: "Read solved power flow values for one object family of the current case.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args pwResultsInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, powerworld.GetPowerFlowResults(eng, args.ObjectType, args.AdditionalFields))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "powerworld_get_key_field_list",
		Description: "List the identifying key fields for one object family.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args pwObjectTypeInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, powerworld.GetKeyFieldList(eng, args.ObjectType))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "powerworld_change_parameters_multiple_element",
		Description: "Bulk-edit parameters across multiple elements of one object family in the current case.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args pwChangeParamsInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, powerworld.ChangeParametersMultipleElement(eng,
			args.ObjectType, args.ParamList, args.ValueList))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "powerworld_get_ybus",
		Description: "Extract the bus admittance matrix of the current case, sparse by default.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args pwYbusInput) (*mcp.CallToolResult, map[string]any, error) {
		env := s.gw.Invoke(ctx, powerworld.GetYbus(eng, args.Full))
		return nil, env.Payload(), nil
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "powerworld_to_graph",
		Description: "Export the current case as a node/edge graph, aggregated by bus or substation.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args pwGraphInput) (*mcp.CallToolResult, map[string]any, error) {
		node := args.Node
		if node == "" {
			node = "bus"
		}
		env := s.gw.Invoke(ctx, powerworld.ToGraph(eng, node, args.Geographic, args.Directed))
		return nil, env.Payload(), nil
	})
}
