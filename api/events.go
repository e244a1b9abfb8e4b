package api

import (
	"encoding/json"
	"fmt"
)

// MsgType is a message type for evaluation stream events
type MsgType string

// Evaluation stream message type constants
const (
	CompilationStatusMsg MsgType = "compilation_status"
	TestcaseStatusMsg    MsgType = "testcase_status"
	WarningMsg           MsgType = "warning"
)

// Runtime data size constraints for streamed compiler output
const (
	MaxOutputHeight = 40
	MaxOutputWidth  = 80
)

// Header is the common header for all evaluation stream messages
type Header struct {
	EvalUuid string  `json:"eval_uuid"`
	MsgType  MsgType `json:"msg_type"`
}

// Type returns the message type carried in the header.
func (h Header) Type() MsgType { return h.MsgType }

// Event is a single message of the evaluation stream.
type Event interface {
	Type() MsgType
}

// ExecMeta contains execution information for a finished process
type ExecMeta struct {
	CpuMillis     int64   `json:"cpu_ms"`
	WallMillis    int64   `json:"wall_ms"`
	MemoryKiBytes int64   `json:"mem_kib"`
	ExitCode      int64   `json:"exit_code"`
	Stderr        *string `json:"stderr,omitempty"`
}

// CompilationStatusEvent reports the status of compiling one source file.
// Later events for the same file overwrite earlier ones.
type CompilationStatusEvent struct {
	Header
	File   string            `json:"file"`
	Status CompilationStatus `json:"status"`
	Meta   *ExecMeta         `json:"metadata,omitempty"`
}

// TestcaseStatusEvent reports the status of one testcase of one solution.
type TestcaseStatusEvent struct {
	Header
	Solution string         `json:"solution"`
	Subtask  int            `json:"subtask"`
	Testcase int            `json:"testcase"`
	Status   TestcaseStatus `json:"status"`

	// Score is the carried value of a partial verdict, in [0, 1].
	Score *float64 `json:"score,omitempty"`
}

// WarningEvent is a free-form producer warning, routed to diagnostics.
type WarningEvent struct {
	Header
	Message string `json:"message"`
}

// Helper function to create a header
func NewHeader(evalUuid string, msgType MsgType) Header {
	return Header{
		EvalUuid: evalUuid,
		MsgType:  msgType,
	}
}

// Helper functions to create specific stream message types
func NewCompilationStatus(evalUuid, file string, status CompilationStatus, meta *ExecMeta) CompilationStatusEvent {
	return CompilationStatusEvent{
		Header: NewHeader(evalUuid, CompilationStatusMsg),
		File:   file,
		Status: status,
		Meta:   meta,
	}
}

func NewTestcaseStatus(evalUuid, solution string, subtask, testcase int, status TestcaseStatus) TestcaseStatusEvent {
	return TestcaseStatusEvent{
		Header:   NewHeader(evalUuid, TestcaseStatusMsg),
		Solution: solution,
		Subtask:  subtask,
		Testcase: testcase,
		Status:   status,
	}
}

func NewPartialTestcaseStatus(evalUuid, solution string, subtask, testcase int, score float64) TestcaseStatusEvent {
	ev := NewTestcaseStatus(evalUuid, solution, subtask, testcase, TestcasePartial)
	ev.Score = &score
	return ev
}

func NewWarning(evalUuid, message string) WarningEvent {
	return WarningEvent{
		Header:  NewHeader(evalUuid, WarningMsg),
		Message: message,
	}
}

// Decode parses one line of the event stream into its concrete event type.
func Decode(line []byte) (Event, error) {
	var header Header
	if err := json.Unmarshal(line, &header); err != nil {
		return nil, fmt.Errorf("failed to parse event header: %w", err)
	}
	switch header.MsgType {
	case CompilationStatusMsg:
		var ev CompilationStatusEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("failed to parse compilation status event: %w", err)
		}
		if !ev.Status.Valid() {
			return nil, fmt.Errorf("unknown compilation status: %q", ev.Status)
		}
		return ev, nil
	case TestcaseStatusMsg:
		var ev TestcaseStatusEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("failed to parse testcase status event: %w", err)
		}
		if !ev.Status.Valid() {
			return nil, fmt.Errorf("unknown testcase status: %q", ev.Status)
		}
		return ev, nil
	case WarningMsg:
		var ev WarningEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("failed to parse warning event: %w", err)
		}
		return ev, nil
	}
	return nil, fmt.Errorf("unknown msg_type: %q", header.MsgType)
}
