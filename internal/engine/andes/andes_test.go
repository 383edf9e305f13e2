package andes

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
	require.NoError(t, os.WriteFile(path, []byte("{\"Bus\":[]}"), 0o644))
	return path
}

func TestRunPowerFlowActivatesCase(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "run_power_flow", gomock.Any(), nil).
		Return(envelope.Success("Power flow completed successfully", map[string]any{
			"converged":  true,
			"iterations": 4,
		}), nil)
	caller.EXPECT().
		Call(gomock.Any(), "get_system_info", gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, _ string, args []string, _ map[string]string) (envelope.Envelope, error) {
			require.Len(t, args, 2)
			assert.Equal(t, "--case", args[0])
			assert.Equal(t, "kundur.json", filepath.Base(args[1]))
			return envelope.Success("ok", map[string]any{"num_buses": 10}), nil
		})

	gw := newGateway(t)
	eng := New(caller)
	caseFile := writeCase(t, "kundur.json")

	env := gw.Invoke(context.Background(), RunPowerFlow(eng, caseFile))
	require.True(t, env.OK(), env.Message)
	assert.Equal(t, true, env.Data["converged"])
	assert.Contains(t, env.Data, "output_dir")

	env = gw.Invoke(context.Background(), GetSystemInfo(eng))
	require.True(t, env.OK(), env.Message)
	assert.EqualValues(t, 10, env.Data["num_buses"])
}

func TestDependentBeforeLoadIsGated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// The caller must never be reached.
	caller := mocks.NewMockCaller(ctrl)
	gw := newGateway(t)

	env := gw.Invoke(context.Background(), RunTimeDomainSimulation(New(caller), 0.01, 10))
	assert.False(t, env.OK())
	assert.Equal(t, envelope.KindStateNotLoaded, env.ErrorKind())
}

func TestTimeDomainRejectsBadParameters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "run_power_flow", gomock.Any(), nil).
		Return(envelope.Success("done", nil), nil)

	gw := newGateway(t)
	eng := New(caller)
	gw.Invoke(context.Background(), RunPowerFlow(eng, writeCase(t, "case.json")))

	env := gw.Invoke(context.Background(), RunTimeDomainSimulation(eng, 0, 10))
	assert.False(t, env.OK())
	assert.Contains(t, env.Message, "step_size must be positive")

	env = gw.Invoke(context.Background(), RunTimeDomainSimulation(eng, 0.01, -1))
	assert.False(t, env.OK())
	assert.Contains(t, env.Message, "t_end must be positive")
}

func TestFailedPowerFlowDoesNotActivate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "run_power_flow", gomock.Any(), nil).
		Return(envelope.Error(envelope.KindUnknownEngineError, "parse error"), nil)

	gw := newGateway(t)
	eng := New(caller)

	env := gw.Invoke(context.Background(), RunPowerFlow(eng, writeCase(t, "broken.json")))
	assert.False(t, env.OK())

	env = gw.Invoke(context.Background(), GetSystemInfo(eng))
	assert.Equal(t, envelope.KindStateNotLoaded, env.ErrorKind())
}

func TestEigenvalueAnalysisActivates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "run_eigenvalue_analysis", gomock.Any(), nil).
		Return(envelope.Success("Eigenvalue analysis completed successfully", map[string]any{
			"n_eigenvalues": 20,
		}), nil)
	caller.EXPECT().
		Call(gomock.Any(), "run_time_domain_simulation", gomock.Any(), nil).
		Return(envelope.Success("Time domain simulation completed successfully", nil), nil)

	gw := newGateway(t)
	eng := New(caller)

	env := gw.Invoke(context.Background(), RunEigenvalueAnalysis(eng, writeCase(t, "kundur.json")))
	require.True(t, env.OK(), env.Message)

	env = gw.Invoke(context.Background(), RunTimeDomainSimulation(eng, 0.01, 5))
	assert.True(t, env.OK(), env.Message)
}
