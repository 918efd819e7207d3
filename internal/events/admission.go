package events

import "time"

// AdmissionStart is emitted before an operation is analyzed.
type AdmissionStart struct {
	OperationName string
	OperationType string
}

// AdmissionFinish is emitted after the verdict is produced.
type AdmissionFinish struct {
	OperationName string
	OperationType string
	Verdict       string
	Depth         int
	Cost          int

	// Codes lists the violation codes when the operation was
	// rejected, in decision order.
	Codes []string

	Duration time.Duration
}
