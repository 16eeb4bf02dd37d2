package domain

import "time"

type ScanStatus string

const (
	ScanIdle      ScanStatus = "idle"
	ScanScanning  ScanStatus = "scanning"
	ScanCompleted ScanStatus = "completed"
	ScanError     ScanStatus = "error"
	ScanCancelled ScanStatus = "cancelled"
)

// Terminal reports whether no further snapshots follow a status.
func (status ScanStatus) Terminal() bool {
	switch status {
	case ScanCompleted, ScanError, ScanCancelled:
		return true
	default:
		return false
	}
}

type ScanProgress struct {
	Status       ScanStatus `json:"status"`
	ScannedCount int64      `json:"scannedCount"`
	ScannedSize  int64      `json:"scannedSize"`
	CurrentPath  string     `json:"currentPath"`
	StartTime    time.Time  `json:"startTime"`
	Error        string     `json:"error,omitempty"`
}
