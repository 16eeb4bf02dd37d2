package services

type ScanRequest struct {
	RootPath        string   `json:"path"`
	MaxDepth        *int     `json:"maxDepth,omitempty"`
	ExcludePatterns []string `json:"excludePatterns,omitempty"`
}

type DeleteRequest struct {
	Paths    []string `json:"paths"`
	UseTrash bool     `json:"useTrash"`
	SafeMode bool     `json:"safeMode,omitempty"`
}
