package rename

import "time"

// Pair is one proposed rename shown in previews.
type Pair struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// ErrorDetail records one per-file failure.
type ErrorDetail struct {
	File    string `json:"file"`
	Message string `json:"error"`
}

// ExistingCollision records a proposal whose target already exists on
// disk outside the batch's own renamed set.
type ExistingCollision struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
	NewPath string `json:"new_path"`
}

// InternalCollision records a group of inputs proposing the same
// output path within one batch.
type InternalCollision struct {
	NewName  string   `json:"new_name"`
	NewPath  string   `json:"new_path"`
	OldNames []string `json:"old_names"`
}

// Result aggregates the outcome of one batch rename run. It is built
// incrementally by the processor and immutable once returned.
type Result struct {
	FilesFound       int `json:"files_found"`
	FilesToRename    int `json:"files_to_rename"`
	FilesFilteredOut int `json:"files_filtered_out"`
	FilesRenamed     int `json:"files_renamed"`
	Errors           int `json:"errors"`
	Collisions       int `json:"collisions"`

	ProcessingTime time.Duration `json:"processing_time"`

	PreviewData        []Pair              `json:"preview_data"`
	ErrorDetails       []ErrorDetail       `json:"error_details"`
	ExistingCollisions []ExistingCollision `json:"existing_file_collisions"`
	InternalCollisions []InternalCollision `json:"internal_collisions"`
}

// SuccessRate returns renamed files as a percentage of planned renames.
func (r *Result) SuccessRate() float64 {
	if r.FilesToRename == 0 {
		return 0
	}
	return float64(r.FilesRenamed) / float64(r.FilesToRename) * 100
}
