package powerworld

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilealdway/PowerMCP/internal/engine/mocks"
	"github.com/smilealdway/PowerMCP/internal/envelope"
	"github.com/smilealdway/PowerMCP/internal/gateway"
	"github.com/smilealdway/PowerMCP/internal/session"
	"github.com/smilealdway/PowerMCP/internal/workspace"
)

func newGateway(t *testing.T) *gateway.Gateway {
	t.Helper()
	mgr, err := workspace.NewManager(t.TempDir())
	require.NoError(t, err)
	return gateway.New(mgr, session.NewStore())
}

func writeCase(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("pwb-binary-stub"), 0o644))
	return path
}

func openCase(t *testing.T, gw *gateway.Gateway, eng *Engine, caller *mocks.MockCaller) {
	t.Helper()
	caller.EXPECT().
		Call(gomock.Any(), "open_case", gomock.Any(), nil).
		Return(envelope.Success("Case opened", map[string]any{"num_buses": 14}), nil)
	env := gw.Invoke(context.Background(), OpenCase(eng, writeCase(t, "ieee14.pwb")))
	require.True(t, env.OK(), env.Message)
}

func TestOpenCaseActivatesAndPowerFlowUsesStagedPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "open_case", gomock.Any(), nil).
		Return(envelope.Success("Case opened", map[string]any{
			"num_buses":    14,
			"num_branches": 20,
		}), nil)
	caller.EXPECT().
		Call(gomock.Any(), "run_powerflow", gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, _ string, args []string, _ map[string]string) (envelope.Envelope, error) {
			require.Len(t, args, 4)
			assert.Equal(t, "--case", args[0])
			assert.Equal(t, "ieee14.pwb", filepath.Base(args[1]))
			assert.Equal(t, "--method", args[2])
			assert.Equal(t, "RECTNEWT", args[3])
			return envelope.Success("Power flow solved", map[string]any{"converged": true}), nil
		})

	gw := newGateway(t)
	eng := New(caller)

	env := gw.Invoke(context.Background(), OpenCase(eng, writeCase(t, "ieee14.pwb")))
	require.True(t, env.OK(), env.Message)
	assert.EqualValues(t, 14, env.Data["num_buses"])
	assert.Contains(t, env.Data, "output_dir")

	env = gw.Invoke(context.Background(), RunPowerFlow(eng, "RECTNEWT"))
	require.True(t, env.OK(), env.Message)
	assert.Equal(t, true, env.Data["converged"])
}

func TestOpenCaseRejectsNonPwb(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := newGateway(t)
	eng := New(mocks.NewMockCaller(ctrl))

	env := gw.Invoke(context.Background(), OpenCase(eng, writeCase(t, "ieee14.raw")))
	assert.False(t, env.OK())
	assert.Equal(t, envelope.KindUnsupportedInputFormat, env.ErrorKind())
}

func TestDependentBeforeOpenIsGated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := newGateway(t)
	eng := New(mocks.NewMockCaller(ctrl))

	env := gw.Invoke(context.Background(), GetYbus(eng, false))
	assert.False(t, env.OK())
	assert.Equal(t, envelope.KindStateNotLoaded, env.ErrorKind())
}

func TestPowerFlowRejectsUnknownMethod(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	gw := newGateway(t)
	eng := New(caller)
	openCase(t, gw, eng, caller)

	env := gw.Invoke(context.Background(), RunPowerFlow(eng, "SIMPLEX"))
	assert.False(t, env.OK())
	assert.Contains(t, env.Message, "unsupported solution method")
}

func TestContingenciesOnlyAcceptNMinusOne(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "analyze_contingencies", gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, _ string, args []string, _ map[string]string) (envelope.Envelope, error) {
			assert.Contains(t, args, "--validate")
			return envelope.Success("Contingency analysis finished", map[string]any{
				"num_violations": 2,
			}), nil
		})

	gw := newGateway(t)
	eng := New(caller)
	openCase(t, gw, eng, caller)

	env := gw.Invoke(context.Background(), AnalyzeContingencies(eng, "N-2", false))
	assert.False(t, env.OK())
	assert.Contains(t, env.Message, "unsupported contingency option")

	env = gw.Invoke(context.Background(), AnalyzeContingencies(eng, "N-1", true))
	require.True(t, env.OK(), env.Message)
	assert.EqualValues(t, 2, env.Data["num_violations"])
}

func TestResultsRejectUnknownObjectType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	gw := newGateway(t)
	eng := New(caller)
	openCase(t, gw, eng, caller)

	env := gw.Invoke(context.Background(), GetPowerFlowResults(eng, "transformer", nil))
	assert.False(t, env.OK())
	assert.Contains(t, env.Message, "object_type must be one of")

	env = gw.Invoke(context.Background(), GetKeyFieldList(eng, "feeder"))
	assert.False(t, env.OK())
	assert.Contains(t, env.Message, "object_type must be one of")
}

func TestChangeParametersSerializesValueMatrix(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "change_parameters_multiple_element", gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, _ string, args []string, _ map[string]string) (envelope.Envelope, error) {
			require.Len(t, args, 8)
			assert.Equal(t, "--params", args[4])
			assert.Equal(t, "BusNum,GenMW", args[5])
			assert.Equal(t, "--values", args[6])
			assert.JSONEq(t, `[[1,40.5],[2,65]]`, args[7])
			return envelope.Success("Parameters updated", map[string]any{"num_elements": 2}), nil
		})

	gw := newGateway(t)
	eng := New(caller)
	openCase(t, gw, eng, caller)

	env := gw.Invoke(context.Background(), ChangeParametersMultipleElement(eng, "gen",
		[]string{"BusNum", "GenMW"},
		[][]any{{1, 40.5}, {2, 65}}))
	require.True(t, env.OK(), env.Message)
	assert.EqualValues(t, 2, env.Data["num_elements"])
}

func TestChangeParametersRejectsRaggedRows(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	gw := newGateway(t)
	eng := New(caller)
	openCase(t, gw, eng, caller)

	env := gw.Invoke(context.Background(), ChangeParametersMultipleElement(eng, "gen",
		[]string{"BusNum", "GenMW"},
		[][]any{{1, 40.5}, {2}}))
	assert.False(t, env.OK())
	assert.Contains(t, env.Message, "value row 1 has 1 values, want 2")

	env = gw.Invoke(context.Background(), ChangeParametersMultipleElement(eng, "gen", nil, [][]any{{1}}))
	assert.False(t, env.OK())
	assert.Contains(t, env.Message, "param_list must name")
}

func TestToGraphValidatesNodeKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "to_graph", gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, _ string, args []string, _ map[string]string) (envelope.Envelope, error) {
			assert.Contains(t, args, "--node")
			assert.Contains(t, args, "substation")
			return envelope.Success("Graph exported", map[string]any{"num_nodes": 5}), nil
		})

	gw := newGateway(t)
	eng := New(caller)
	openCase(t, gw, eng, caller)

	env := gw.Invoke(context.Background(), ToGraph(eng, "feeder", false, false))
	assert.False(t, env.OK())
	assert.Contains(t, env.Message, "node must be bus or substation")

	env = gw.Invoke(context.Background(), ToGraph(eng, "substation", true, false))
	require.True(t, env.OK(), env.Message)
	assert.EqualValues(t, 5, env.Data["num_nodes"])
}
