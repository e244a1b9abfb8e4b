package api

// Status vocabularies for compilation and testcase outcomes.

// CompilationStatus is the outcome of compiling a single source file.
type CompilationStatus string

const (
	CompilationPending CompilationStatus = "pending"
	CompilationRunning CompilationStatus = "running"
	CompilationDone    CompilationStatus = "done"
	CompilationFailed  CompilationStatus = "failed"
	CompilationSkipped CompilationStatus = "skipped"
)

// Terminal reports whether no further compilation event is expected
// for the file within one evaluation run.
func (s CompilationStatus) Terminal() bool {
	switch s {
	case CompilationDone, CompilationFailed, CompilationSkipped:
		return true
	}
	return false
}

// Valid reports whether s belongs to the closed vocabulary.
func (s CompilationStatus) Valid() bool {
	switch s {
	case CompilationPending, CompilationRunning, CompilationDone,
		CompilationFailed, CompilationSkipped:
		return true
	}
	return false
}

// TestcaseStatus is the verdict of running a solution on a single testcase.
type TestcaseStatus string

const (
	TestcasePending             TestcaseStatus = "pending"
	TestcaseRunning             TestcaseStatus = "running"
	TestcaseAccepted            TestcaseStatus = "accepted"
	TestcaseWrongAnswer         TestcaseStatus = "wrong_answer"
	TestcasePartial             TestcaseStatus = "partial"
	TestcaseTimeLimitExceeded   TestcaseStatus = "time_limit_exceeded"
	TestcaseMemoryLimitExceeded TestcaseStatus = "memory_limit_exceeded"
	TestcaseRuntimeError        TestcaseStatus = "runtime_error"
	TestcaseSkipped             TestcaseStatus = "skipped"
	TestcaseInternalError       TestcaseStatus = "internal_error"
)

// Terminal reports whether the verdict is final for one evaluation run.
// Every status except pending and running is terminal.
func (s TestcaseStatus) Terminal() bool {
	switch s {
	case TestcasePending, TestcaseRunning:
		return false
	}
	return s.Valid()
}

// Valid reports whether s belongs to the closed vocabulary.
func (s TestcaseStatus) Valid() bool {
	switch s {
	case TestcasePending, TestcaseRunning, TestcaseAccepted,
		TestcaseWrongAnswer, TestcasePartial, TestcaseTimeLimitExceeded,
		TestcaseMemoryLimitExceeded, TestcaseRuntimeError,
		TestcaseSkipped, TestcaseInternalError:
		return true
	}
	return false
}

// Contribution returns the score contribution of the verdict in [0, 1].
// partial is the carried value of a partial verdict and is ignored for
// every other status. Only meaningful for terminal statuses.
func (s TestcaseStatus) Contribution(partial float64) float64 {
	switch s {
	case TestcaseAccepted:
		return 1
	case TestcasePartial:
		return partial
	}
	return 0
}
