package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"diskscope/internal/domain"
)

// segmentPattern matches a run of consecutive interior path segments. An
// anchored pattern only matches at the first interior segment.
type segmentPattern struct {
	parts    []string
	anchored bool
}

func segments(parts ...string) segmentPattern {
	return segmentPattern{parts: foldAll(parts)}
}

func anchored(parts ...string) segmentPattern {
	return segmentPattern{parts: foldAll(parts), anchored: true}
}

func (pattern segmentPattern) matches(interior []string) bool {
	n := len(pattern.parts)
	last := len(interior) - n
	if pattern.anchored && last > 0 {
		last = 0
	}
	for start := 0; start <= last; start++ {
		if equalSegments(interior[start:start+n], pattern.parts) {
			return true
		}
	}
	return false
}

func equalSegments(a, b []string) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Classifier maps paths to the application that owns them and to a deletion
// risk. It never touches the filesystem.
type Classifier struct {
	appDataRoots [][]string
}

// NewClassifier builds a classifier that treats every path beneath one of
// roots as per-user application data.
func NewClassifier(roots ...string) *Classifier {
	classifier := &Classifier{}
	for _, root := range roots {
		parts := foldAll(splitSegments(root))
		if len(parts) == 0 {
			continue
		}
		classifier.appDataRoots = append(classifier.appDataRoots, parts)
	}
	return classifier
}

func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultAppDataRoots()...)
}

// DefaultAppDataRoots lists the per-user application data directories of
// the current user on every supported platform.
func DefaultAppDataRoots() []string {
	home, _ := os.UserHomeDir()
	var roots []string
	add := func(env string, fallback ...string) {
		if value := os.Getenv(env); value != "" {
			roots = append(roots, value)
			return
		}
		if home != "" {
			roots = append(roots, filepath.Join(append([]string{home}, fallback...)...))
		}
	}
	add("APPDATA", "AppData", "Roaming")
	add("LOCALAPPDATA", "AppData", "Local")
	add("XDG_CONFIG_HOME", ".config")
	add("XDG_DATA_HOME", ".local", "share")
	if home != "" {
		roots = append(roots, filepath.Join(home, "Library", "Application Support"))
	}
	return roots
}

func (classifier *Classifier) Associate(path string) domain.AppAssociation {
	parts := splitSegments(path)
	interior := interiorSegments(path)

	for _, rule := range knownApps {
		if rule.pattern.matches(interior) {
			return domain.AppAssociation{AppName: rule.appName, AssociationType: rule.kind, Confidence: knownAppConfidence}
		}
	}
	for _, pattern := range personalFolders {
		if pattern.matches(interior) {
			return domain.AppAssociation{AppName: personalAppName, AssociationType: domain.AssocPersonal, Confidence: personalConfidence}
		}
	}
	for _, pattern := range cacheFolders {
		if pattern.matches(interior) {
			return domain.AppAssociation{AppName: cacheAppName, AssociationType: domain.AssocCache, Confidence: cacheConfidence}
		}
	}

	folded := foldAll(parts)
	for _, root := range classifier.appDataRoots {
		if len(folded) <= len(root) || !equalSegments(folded, root) {
			continue
		}
		return domain.AppAssociation{AppName: parts[len(root)], AssociationType: domain.AssocAppData, Confidence: appDataConfidence}
	}

	return domain.AppAssociation{AppName: unknownAppName, AssociationType: domain.AssocUnknown, Confidence: unknownConfidence}
}

func (classifier *Classifier) Assess(path string) domain.DeletionAssessment {
	return Assessment(classifier.Associate(path), Extension(path))
}

// Assessment turns an association and a lowercase, dot-less extension into a
// deletion risk.
func Assessment(association domain.AppAssociation, ext string) domain.DeletionAssessment {
	assessment := domain.DeletionAssessment{AssociatedApp: &association}
	app := association.AppName

	switch association.AssociationType {
	case domain.AssocSystem:
		assessment.SafetyLevel = domain.SafetyDanger
		assessment.Reason = "System file, removing it can destabilize the operating system"
		assessment.Impact = "The operating system may stop working correctly"
	case domain.AssocInstalled:
		if _, ok := executableExts[ext]; ok {
			assessment.SafetyLevel = domain.SafetyDanger
			assessment.Reason = "Core application file"
			assessment.Impact = fmt.Sprintf("%s may no longer start", app)
			break
		}
		assessment.SafetyLevel = domain.SafetyCaution
		assessment.Reason = "Application file"
		assessment.Impact = fmt.Sprintf("May affect %s", app)
	case domain.AssocCache:
		assessment.SafetyLevel = domain.SafetySafe
		assessment.Reason = "Cache or temporary file, safe to remove"
		assessment.Impact = "Applications recreate it when needed"
	case domain.AssocPersonal:
		assessment.SafetyLevel = domain.SafetyCaution
		assessment.Reason = "Personal file, make sure it is no longer needed"
	case domain.AssocAppData:
		assessment.SafetyLevel = domain.SafetyCaution
		if _, ok := disposableExts[ext]; ok {
			assessment.SafetyLevel = domain.SafetySafe
			assessment.Reason = "Log or temporary file"
			assessment.Impact = "Does not affect the application"
		} else if _, ok := configExts[ext]; ok {
			assessment.Reason = "Configuration file"
			assessment.Impact = fmt.Sprintf("%s may need to be configured again", app)
		} else if _, ok := databaseExts[ext]; ok {
			assessment.Reason = "Database file"
			assessment.Impact = fmt.Sprintf("Data of %s may be lost", app)
		} else {
			assessment.Reason = "Application data"
			assessment.Impact = fmt.Sprintf("May affect %s", app)
		}
	default:
		assessment.SafetyLevel = domain.SafetyCaution
		assessment.Reason = "Unknown file type"
	}
	return assessment
}

// Extension returns the lowercase extension of the last path segment without
// its dot. Dot files have no extension.
func Extension(path string) string {
	parts := splitSegments(path)
	if len(parts) == 0 {
		return ""
	}
	name := parts[len(parts)-1]
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}

func splitSegments(path string) []string {
	return strings.FieldsFunc(path, isSeparator)
}

// interiorSegments returns the segments that have a separator on both sides.
func interiorSegments(path string) []string {
	parts := strings.Split(strings.ReplaceAll(path, `\`, "/"), "/")
	if len(parts) < 3 {
		return nil
	}
	interior := make([]string, 0, len(parts)-2)
	for _, part := range parts[1 : len(parts)-1] {
		if part != "" {
			interior = append(interior, strings.ToLower(part))
		}
	}
	return interior
}

func foldAll(parts []string) []string {
	folded := make([]string, len(parts))
	for i, part := range parts {
		folded[i] = strings.ToLower(part)
	}
	return folded
}
