// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// JobStatus is the lifecycle state of a bulk export job. The non-idle,
// non-cancelled values arrive verbatim from the backend status endpoint.
type JobStatus string

const (
	// StatusIdle is the local rest state; no job is running.
	StatusIdle JobStatus = "idle"

	// StatusStarted means the server accepted the task.
	StatusStarted JobStatus = "started"

	// StatusQuerying means the server is counting and locating matches.
	StatusQuerying JobStatus = "querying"

	// StatusDownloading means the server is pulling matched rows.
	StatusDownloading JobStatus = "downloading"

	// StatusProcessing means rows are being materialized; processed and
	// total counters advance while in this state.
	StatusProcessing JobStatus = "processing"

	// StatusGeneratingCSV means the server is writing the output file.
	StatusGeneratingCSV JobStatus = "generating_csv"

	// StatusCompleted is terminal: the file is ready to download.
	StatusCompleted JobStatus = "completed"

	// StatusError is terminal: the job failed with a message.
	StatusError JobStatus = "error"

	// StatusCancelled is terminal and client-authoritative: once set, no
	// later server response may mutate the job.
	StatusCancelled JobStatus = "cancelled"

	// StatusNoData is terminal: the query matched zero records.
	StatusNoData JobStatus = "no_data"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusCancelled, StatusNoData:
		return true
	}
	return false
}

// JobProgress is the backend's poll response for one bulk export task.
// Field names are binding for a compatible backend.
type JobProgress struct {
	TaskID         string    `json:"taskId"`
	Status         JobStatus `json:"status"`
	ProcessedCount int       `json:"processedCount"`
	TotalCount     int       `json:"totalCount"`
	Completed      bool      `json:"completed"`
	Error          string    `json:"error,omitempty"`
	Warning        string    `json:"warning,omitempty"`
	DownloadURL    string    `json:"downloadUrl,omitempty"`
	FileName       string    `json:"fileName,omitempty"`
}
