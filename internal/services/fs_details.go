package services

import (
	"os"
	"strings"

	"diskscope/internal/domain"
)

// FileDetails stats path on demand. Creation and access times fall back to
// the modification time where the platform cannot report them.
func FileDetails(path string) (domain.FileDetails, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.FileDetails{}, err
	}
	details := domain.FileDetails{
		Name:       info.Name(),
		Path:       path,
		Size:       info.Size(),
		Kind:       domain.NodeFile,
		CreatedAt:  info.ModTime(),
		ModifiedAt: info.ModTime(),
		AccessedAt: info.ModTime(),
		IsHidden:   strings.HasPrefix(info.Name(), "."),
		IsReadOnly: info.Mode().Perm()&0o200 == 0,
	}
	if info.IsDir() {
		details.Kind = domain.NodeDir
	} else {
		details.Extension = Extension(path)
	}
	applyPlatformDetails(path, info, &details)
	return details, nil
}
