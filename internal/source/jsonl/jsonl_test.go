package jsonl_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/programme-lv/aggregator/api"
	"github.com/programme-lv/aggregator/internal/source/jsonl"
)

const sampleLog = `{"eval_uuid":"u","msg_type":"compilation_status","file":"sol.cpp","status":"done"}

{"eval_uuid":"u","msg_type":"testcase_status","solution":"sol.cpp","subtask":0,"testcase":0,"status":"accepted"}
`

func TestNextYieldsEventsInOrder(t *testing.T) {
	src := jsonl.New(strings.NewReader(sampleLog))
	ctx := context.Background()

	ev, err := src.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, api.CompilationStatusMsg, ev.Type())

	ev, err = src.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, api.TestcaseStatusMsg, ev.Type())

	_, err = src.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
}

func TestNextRejectsMalformedLine(t *testing.T) {
	src := jsonl.New(strings.NewReader("{not json}\n"))
	_, err := src.Next(context.Background())
	require.Error(t, err)
}

func TestNextHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := jsonl.New(strings.NewReader(sampleLog))
	_, err := src.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestZstdRecordedLog(t *testing.T) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write([]byte(sampleLog))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	src, err := jsonl.NewZstd(&buf)
	require.NoError(t, err)

	ctx := context.Background()
	var count int
	for {
		_, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		count++
	}
	require.Equal(t, 2, count)
}
