package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesExclusion(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		patterns []string
		want     bool
	}{
		{name: "no patterns", path: "/a/node_modules", want: false},
		{name: "substring", path: "/src/node_modules/x", patterns: []string{"node_modules"}, want: true},
		{name: "case insensitive", path: `C:\Src\Node_Modules`, patterns: []string{"node_modules"}, want: true},
		{name: "suffix wildcard", path: "/var/log/app.log", patterns: []string{"*.log"}, want: true},
		{name: "suffix wildcard miss", path: "/var/log/app.log.1", patterns: []string{"*.log"}, want: false},
		{name: "trailing wildcard is substring", path: "/home/u/.cache/pip", patterns: []string{".cache*"}, want: true},
		{name: "separators folded", path: `C:\proj\build\out`, patterns: []string{"build/out"}, want: true},
		{name: "empty pattern ignored", path: "/anything", patterns: []string{""}, want: false},
		{name: "second pattern", path: "/a/.git/objects", patterns: []string{"vendor", ".git"}, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MatchesExclusion(tc.path, tc.patterns))
		})
	}
}
