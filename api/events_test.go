package api_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/programme-lv/aggregator/api"
)

func TestDecodeCompilationStatus(t *testing.T) {
	line := `{"eval_uuid":"u","msg_type":"compilation_status","file":"sol.cpp","status":"failed","metadata":{"cpu_ms":120,"wall_ms":150,"mem_kib":2048,"exit_code":1}}`

	ev, err := api.Decode([]byte(line))
	require.NoError(t, err)

	comp, ok := ev.(api.CompilationStatusEvent)
	require.True(t, ok)
	require.Equal(t, "sol.cpp", comp.File)
	require.Equal(t, api.CompilationFailed, comp.Status)
	require.NotNil(t, comp.Meta)
	require.Equal(t, int64(1), comp.Meta.ExitCode)
}

func TestDecodeTestcaseStatus(t *testing.T) {
	line := `{"eval_uuid":"u","msg_type":"testcase_status","solution":"sol.cpp","subtask":1,"testcase":3,"status":"partial","score":0.5}`

	ev, err := api.Decode([]byte(line))
	require.NoError(t, err)

	tc, ok := ev.(api.TestcaseStatusEvent)
	require.True(t, ok)
	require.Equal(t, 1, tc.Subtask)
	require.Equal(t, 3, tc.Testcase)
	require.Equal(t, api.TestcasePartial, tc.Status)
	require.NotNil(t, tc.Score)
	require.InDelta(t, 0.5, *tc.Score, 1e-9)
}

func TestDecodeWarning(t *testing.T) {
	ev, err := api.Decode([]byte(`{"eval_uuid":"u","msg_type":"warning","message":"odd input"}`))
	require.NoError(t, err)

	w, ok := ev.(api.WarningEvent)
	require.True(t, ok)
	require.Equal(t, "odd input", w.Message)
}

func TestDecodeRejectsUnknownMsgType(t *testing.T) {
	_, err := api.Decode([]byte(`{"eval_uuid":"u","msg_type":"job_start"}`))
	require.Error(t, err)
}

func TestDecodeRejectsUnknownStatus(t *testing.T) {
	_, err := api.Decode([]byte(`{"eval_uuid":"u","msg_type":"testcase_status","solution":"s","subtask":0,"testcase":0,"status":"presentation_error"}`))
	require.Error(t, err)

	_, err = api.Decode([]byte(`{"eval_uuid":"u","msg_type":"compilation_status","file":"s","status":"linked"}`))
	require.Error(t, err)
}

func TestConstructorsRoundTrip(t *testing.T) {
	ev := api.NewPartialTestcaseStatus("u", "sol.cpp", 0, 2, 0.25)
	b, err := json.Marshal(ev)
	require.NoError(t, err)

	back, err := api.Decode(b)
	require.NoError(t, err)
	require.Equal(t, ev, back)
}

func TestTerminalStatuses(t *testing.T) {
	require.False(t, api.TestcasePending.Terminal())
	require.False(t, api.TestcaseRunning.Terminal())
	require.True(t, api.TestcaseAccepted.Terminal())
	require.True(t, api.TestcaseSkipped.Terminal())
	require.True(t, api.TestcaseInternalError.Terminal())
	require.False(t, api.TestcaseStatus("bogus").Terminal())

	require.False(t, api.CompilationRunning.Terminal())
	require.True(t, api.CompilationDone.Terminal())
	require.True(t, api.CompilationSkipped.Terminal())
}

func TestContribution(t *testing.T) {
	require.Equal(t, 1.0, api.TestcaseAccepted.Contribution(0.7))
	require.Equal(t, 0.7, api.TestcasePartial.Contribution(0.7))
	require.Equal(t, 0.0, api.TestcaseWrongAnswer.Contribution(0.7))
	require.Equal(t, 0.0, api.TestcaseTimeLimitExceeded.Contribution(0.7))
}
