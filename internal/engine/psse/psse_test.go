package psse

import (
	"context"
	"os"
	"path/filepath"
	"strings"
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

func writeInput(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
	return path
}

func TestLoadAndSolveInjectsPSSBIN(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "solve", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, args []string, env map[string]string) (envelope.Envelope, error) {
			assert.Equal(t, "--sav-case", args[0])
			assert.Equal(t, `C:\PTI\PSSE33\PSSBIN`, env["PYTHONPATH"])
			return envelope.Success("Case solved successfully", map[string]any{"success": true}), nil
		})

	gw := newGateway(t)
	eng := New(caller, `C:\PTI\PSSE33\PSSBIN`)

	sav := writeInput(t, t.TempDir(), "ieee39.sav")
	env := gw.Invoke(context.Background(), LoadAndSolveCase(eng, sav))
	require.True(t, env.OK(), env.Message)
}

func TestLoadAndSolveRejectsNonSav(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	gw := newGateway(t)
	eng := New(mocks.NewMockCaller(ctrl), "")

	env := gw.Invoke(context.Background(), LoadAndSolveCase(eng, writeInput(t, t.TempDir(), "ieee39.raw")))
	assert.Equal(t, envelope.KindUnsupportedInputFormat, env.ErrorKind())
}

func TestDynamicSimulationStagesBothInputs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "simulate", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, args []string, _ map[string]string) (envelope.Envelope, error) {
			joined := strings.Join(args, " ")
			assert.Contains(t, joined, "ieee39.sav")
			assert.Contains(t, joined, "ieee39.dyr")
			assert.Contains(t, joined, "channels.out")
			return envelope.Success("Simulation completed", nil), nil
		})

	dir := t.TempDir()
	gw := newGateway(t)
	eng := New(caller, "")

	env := gw.Invoke(context.Background(), RunDynamicSimulation(eng, DynamicSimulationParams{
		SavCase:  writeInput(t, dir, "ieee39.sav"),
		DyrCase:  writeInput(t, dir, "ieee39.dyr"),
		FaultBus: 16,
	}))
	require.True(t, env.OK(), env.Message)
}

func TestDynamicSimulationValidatesFaultBus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := t.TempDir()
	gw := newGateway(t)
	eng := New(mocks.NewMockCaller(ctrl), "")

	env := gw.Invoke(context.Background(), RunDynamicSimulation(eng, DynamicSimulationParams{
		SavCase: writeInput(t, dir, "a.sav"),
		DyrCase: writeInput(t, dir, "a.dyr"),
	}))
	assert.False(t, env.OK())
	assert.Contains(t, env.Message, "fault_bus")
}

func TestExportDefaultsExcelFileIntoWorkspace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "export", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, args []string, _ map[string]string) (envelope.Envelope, error) {
			assert.Equal(t, "out.xls", filepath.Base(args[3]))
			assert.True(t, filepath.IsAbs(args[3]))
			return envelope.Success("Export completed", nil), nil
		})

	gw := newGateway(t)
	eng := New(caller, "")

	env := gw.Invoke(context.Background(), ExportResultsToExcel(eng, writeInput(t, t.TempDir(), "channels.out"), "", ""))
	require.True(t, env.OK(), env.Message)
}
