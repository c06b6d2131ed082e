// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldJobID     = "job_id"
	FieldWorkerID  = "worker_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Model fields
	FieldNodes  = "nodes"
	FieldBeams  = "beams"
	FieldPlanes = "planes"

	// Artifact fields
	FieldArtifact = "artifact"
	FieldPath     = "path"
	FieldBytes    = "bytes"

	// Job fields
	FieldStatus   = "status"
	FieldOldState = "old_state"
	FieldNewState = "new_state"
)
