package kaggle

import "encoding/json"

// KernelMetadataFile is the metadata file name in a kernel directory
const KernelMetadataFile = "kernel-metadata.json"

// SourceExtensions are the recognized kernel source file extensions
var SourceExtensions = []string{".ipynb", ".py", ".r", ".rmd"}

// PullResponse is the response from GET /kernels/pull
type PullResponse struct {
	Metadata json.RawMessage `json:"metadata"`
	Blob     *KernelBlob     `json:"blob"`
}

// KernelBlob is the source of a pulled kernel
type KernelBlob struct {
	Name       string `json:"name"`
	Source     string `json:"source"`
	Language   string `json:"language"`
	KernelType string `json:"kernelType"`
}

// KernelRun is the response from POST /kernels/push
type KernelRun struct {
	Ref                 string   `json:"ref"`
	URL                 string   `json:"url"`
	VersionNumber       int      `json:"versionNumber"`
	Error               string   `json:"error"`
	InvalidTags         []string `json:"invalidTags"`
	InvalidDatasets     []string `json:"invalidDatasetSources"`
	InvalidKernels      []string `json:"invalidKernelSources"`
	InvalidCompetitions []string `json:"invalidCompetitionSources"`
}

// Kernel run states reported by /kernels/status
const (
	KernelStatusQueued             = "queued"
	KernelStatusRunning            = "running"
	KernelStatusComplete           = "complete"
	KernelStatusError              = "error"
	KernelStatusCancelRequested    = "cancelRequested"
	KernelStatusCancelAcknowledged = "cancelAcknowledged"
)

// KernelStatus is the response from GET /kernels/status
type KernelStatus struct {
	Status         string `json:"status"`
	FailureMessage string `json:"failureMessage"`
}

// Done reports whether the run reached a terminal state.
func (s KernelStatus) Done() bool {
	switch s.Status {
	case KernelStatusComplete, KernelStatusError, KernelStatusCancelAcknowledged:
		return true
	}
	return false
}

// DatasetFile is one entry from GET /datasets/list/{owner}/{slug}/files
type DatasetFile struct {
	Name         string `json:"name"`
	TotalBytes   int64  `json:"totalBytes"`
	CreationDate string `json:"creationDate"`
}

// datasetFilesResponse accepts both the bare array and the wrapped form
type datasetFilesResponse struct {
	DatasetFiles []DatasetFile `json:"datasetFiles"`
}

// SubmitResult is the response from POST /competitions/submissions/submit/{name}
type SubmitResult struct {
	Message string `json:"message"`
	Ref     int64  `json:"ref"`
}
