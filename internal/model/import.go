package model

// ImportProgress is reported twice per import: once when the candidate count is known
// and once when the extraction call has returned.
type ImportProgress struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Valid     int `json:"valid"`
}

type ImportResult struct {
	ID          string         `json:"import_id"`
	FileName    string         `json:"file_name,omitempty"`
	Progress    ImportProgress `json:"progress"`
	NewContacts []Contact      `json:"contacts"`
	// Imported is the number of contacts actually merged into the store.
	Imported int `json:"imported"`
}

// Duplicates counts valid numbers that were already known.
func (r *ImportResult) Duplicates() int {
	return r.Progress.Valid - len(r.NewContacts)
}
