package egret

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
	require.NoError(t, os.WriteFile(path, []byte(`{"system":{}}`), 0o644))
	return path
}

func TestSolveACOPFDefaultsSolver(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "solve_ac_opf", gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, _ string, args []string, _ map[string]string) (envelope.Envelope, error) {
			assert.Contains(t, args, "--solver")
			assert.Contains(t, args, "ipopt")
			return envelope.Success("solved", map[string]any{"total_cost": 12345.6}), nil
		})

	gw := newGateway(t)
	env := gw.Invoke(context.Background(), SolveACOPF(New(caller), writeCase(t, "case118.json"), ""))
	require.True(t, env.OK(), env.Message)
	assert.EqualValues(t, 12345.6, env.Data["total_cost"])
}

func TestSolveUnitCommitmentAppliesDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "solve_unit_commitment", gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, _ string, args []string, _ map[string]string) (envelope.Envelope, error) {
			assert.Contains(t, args, "0.01")
			assert.Contains(t, args, "300")
			assert.Contains(t, args, "gurobi")
			return envelope.Success("solved", nil), nil
		})

	gw := newGateway(t)
	env := gw.Invoke(context.Background(), SolveUnitCommitment(New(caller), writeCase(t, "uc.json"), UnitCommitmentOptions{}))
	require.True(t, env.OK(), env.Message)
}

func TestSolveRejectsNonJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := newGateway(t)
	env := gw.Invoke(context.Background(), SolveDCOPF(New(mocks.NewMockCaller(ctrl)), writeCase(t, "case.raw"), ""))
	assert.Equal(t, envelope.KindUnsupportedInputFormat, env.ErrorKind())
}

func TestSolveMissingCase(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := newGateway(t)
	missing := filepath.Join(t.TempDir(), "nope.json")
	env := gw.Invoke(context.Background(), SolveDCOPF(New(mocks.NewMockCaller(ctrl)), missing, ""))
	assert.Equal(t, envelope.KindInputNotFound, env.ErrorKind())
}
