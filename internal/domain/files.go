package domain

import "time"

type FailedPath struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type DeleteResult struct {
	Success      bool         `json:"success"`
	DeletedPaths []string     `json:"deletedPaths"`
	FreedSize    int64        `json:"freedSize"`
	FailedPaths  []FailedPath `json:"failedPaths,omitempty"`
}

// FileDetails is the on-demand metadata view of a single path. The attribute
// flags are best effort and stay false where the platform has no such concept.
type FileDetails struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	Kind       NodeKind  `json:"type"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
	AccessedAt time.Time `json:"accessedAt"`
	Extension  string    `json:"extension,omitempty"`
	IsHidden   bool      `json:"isHidden"`
	IsSystem   bool      `json:"isSystem"`
	IsReadOnly bool      `json:"isReadOnly"`
}
