package datarecording

import (
	"os"
	"strings"
	"time"
)

const execTableName = "exec_info"

// execInfo is one property of the program execution.
type execInfo struct {
	Property string
	Value    string
}

// execRecorder records when and how the program ran next to the data.
type execRecorder struct {
	recorder DataRecorder
	entries  []execInfo
}

func newExecRecorder(recorder DataRecorder) *execRecorder {
	return &execRecorder{recorder: recorder}
}

// Start creates the table and notes the start of the execution.
func (e *execRecorder) Start() error {
	if err := e.recorder.CreateTable(execTableName, execInfo{}); err != nil {
		return err
	}

	startTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	e.entries = append(e.entries, execInfo{"Start Time", startTime})
	e.entries = append(e.entries,
		execInfo{"Command", strings.Join(os.Args, " ")})

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	e.entries = append(e.entries, execInfo{"Working Directory", cwd})

	return nil
}

// End writes the collected entries along with the end time.
func (e *execRecorder) End() error {
	endTime := time.Now().Format("2006-01-02 15:04:05.000000000")
	e.entries = append(e.entries, execInfo{"End Time", endTime})

	for _, entry := range e.entries {
		if err := e.recorder.InsertData(execTableName, entry); err != nil {
			return err
		}
	}

	e.entries = nil

	return nil
}
