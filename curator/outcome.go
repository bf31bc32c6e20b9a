// SPDX-FileCopyrightText: 2021 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package curator

import (
	"fmt"
	"time"

	"emperror.dev/errors"
)

// Stage is a step of the deletion run for one cluster.
type Stage string

const (
	ConnectStage Stage = "connect"
	PingStage    Stage = "ping"
	ListStage    Stage = "list"
	FilterStage  Stage = "filter"
	DeleteStage  Stage = "delete"
	DryRunStage  Stage = "dry-run"
	DoneStage    Stage = "done"
)

const (
	ErrPanic = errors.Sentinel("cluster run panicked")
)

// StageError is the cause of a failed cluster run along with the stage it
// happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (se *StageError) Error() string {
	return fmt.Sprintf("%s: %v", se.Stage, se.Err)
}

func (se *StageError) Unwrap() error {
	return se.Err
}

// Outcome is the result of running the executor against one cluster.
type Outcome struct {
	Address string

	// Selected holds the expired indices, deleted or only reported in
	// dry-run mode.
	Selected []string

	// Malformed holds the indices skipped for carrying no date.
	Malformed []string

	DryRun bool

	// Stage is the last stage reached. For failed runs it is the stage
	// that failed.
	Stage Stage

	// Err is a *StageError when the run failed.
	Err error

	Duration time.Duration
}

// Failed reports whether the run ended with an error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Skipped reports whether the run completed with nothing to delete.
func (o Outcome) Skipped() bool {
	return o.Err == nil && len(o.Selected) == 0
}

func (o Outcome) result() string {
	switch {
	case o.Failed():
		return FailureOutcome
	case o.Skipped():
		return SkippedOutcome
	default:
		return SuccessOutcome
	}
}

func modeOf(dryRun bool) string {
	if dryRun {
		return DryRunMode
	}
	return LiveMode
}
