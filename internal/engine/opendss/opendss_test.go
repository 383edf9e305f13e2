package opendss

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

func writeMaster(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("clear\nnew circuit.test\n"), 0o644))
	return path
}

func TestCompileAndSolveActivates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "compile_and_solve", gomock.Any(), nil).
		Return(envelope.Success("solved", map[string]any{"success": true}), nil)
	caller.EXPECT().
		Call(gomock.Any(), "get_total_power", gomock.Any(), nil).
		Return(envelope.Success("ok", map[string]any{
			"power": []any{-1200.5, -300.2},
			"units": "kW, kVAr",
		}), nil)

	gw := newGateway(t)
	eng := New(caller)

	env := gw.Invoke(context.Background(), CompileAndSolve(eng, writeMaster(t, "feeder.dss")))
	require.True(t, env.OK(), env.Message)

	env = gw.Invoke(context.Background(), GetTotalPower(eng))
	require.True(t, env.OK(), env.Message)
	assert.Equal(t, "kW, kVAr", env.Data["units"])
}

func TestCompileRejectsNonDSS(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	gw := newGateway(t)

	env := gw.Invoke(context.Background(), CompileAndSolve(New(caller), writeMaster(t, "feeder.txt")))
	assert.Equal(t, envelope.KindUnsupportedInputFormat, env.ErrorKind())
}

func TestCompileRestoresWorkingDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "compile_and_solve", gomock.Any(), nil).
		Return(envelope.Success("solved", nil), nil)

	before, err := os.Getwd()
	require.NoError(t, err)

	gw := newGateway(t)
	gw.Invoke(context.Background(), CompileAndSolve(New(caller), writeMaster(t, "feeder.dss")))

	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDailyEnergyMeterDefaultsAndValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	caller := mocks.NewMockCaller(ctrl)
	caller.EXPECT().
		Call(gomock.Any(), "compile_and_solve", gomock.Any(), nil).
		Return(envelope.Success("solved", nil), nil)
	caller.EXPECT().
		Call(gomock.Any(), "run_daily_energy_meter", gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, _ string, args []string, _ map[string]string) (envelope.Envelope, error) {
			assert.Contains(t, args, "--meter")
			assert.Contains(t, args, "Feeder")
			assert.Contains(t, args, "24")
			return envelope.Success("ok", map[string]any{"energy_kwh": []any{1.0, 2.0}}), nil
		})

	gw := newGateway(t)
	eng := New(caller)
	gw.Invoke(context.Background(), CompileAndSolve(eng, writeMaster(t, "feeder.dss")))

	env := gw.Invoke(context.Background(), RunDailyEnergyMeter(eng, "", 24))
	require.True(t, env.OK(), env.Message)

	env = gw.Invoke(context.Background(), RunDailyEnergyMeter(eng, "Feeder", 0))
	assert.False(t, env.OK())
	assert.Contains(t, env.Message, "hours must be positive")
}
