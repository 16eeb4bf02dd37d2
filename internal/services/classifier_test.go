package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"diskscope/internal/domain"
)

func TestClassifierAssess(t *testing.T) {
	classifier := NewClassifier()
	cases := []struct {
		path       string
		kind       domain.AssociationType
		app        string
		confidence int
		level      domain.SafetyLevel
	}{
		{`C:\Users\X\AppData\Local\Temp\foo.tmp`, domain.AssocCache, cacheAppName, 80, domain.SafetySafe},
		{`C:\Windows\System32\kernel32.dll`, domain.AssocSystem, "Windows System", 90, domain.SafetyDanger},
		{`C:\random\folder\data.bin`, domain.AssocUnknown, unknownAppName, 10, domain.SafetyCaution},
		{`C:\Program Files\App\app.exe`, domain.AssocInstalled, "Installed App", 90, domain.SafetyDanger},
		{`C:\Program Files\App\readme.txt`, domain.AssocInstalled, "Installed App", 90, domain.SafetyCaution},
		{`C:\Users\X\AppData\Roaming\Google\Chrome\User Data\History`, domain.AssocAppData, "Google Chrome", 90, domain.SafetyCaution},
		{"/home/u/Documents/report.pdf", domain.AssocPersonal, personalAppName, 85, domain.SafetyCaution},
		{"/home/u/.cache/pip/wheel.whl", domain.AssocCache, cacheAppName, 80, domain.SafetySafe},
		{"/home/u/work/node_modules/lodash/index.js", domain.AssocAppData, "Node.js", 90, domain.SafetyCaution},
		{"/usr/lib/libc.so.6", domain.AssocSystem, "Operating system", 90, domain.SafetyDanger},
		{"/opt/tool/bin/tool", domain.AssocInstalled, "Installed App", 90, domain.SafetyCaution},
		{"/home/u/Library/Caches/com.app/blob", domain.AssocCache, "macOS cache", 90, domain.SafetySafe},
		{`c:\windows\notepad.exe`, domain.AssocSystem, "Windows System", 90, domain.SafetyDanger},
		{"/c/Windows/System32/x.dll", domain.AssocSystem, "Windows System", 90, domain.SafetyDanger},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			assessment := classifier.Assess(tc.path)
			if assert.NotNil(t, assessment.AssociatedApp) {
				assert.Equal(t, tc.kind, assessment.AssociatedApp.AssociationType)
				assert.Equal(t, tc.app, assessment.AssociatedApp.AppName)
				assert.Equal(t, tc.confidence, assessment.AssociatedApp.Confidence)
			}
			assert.Equal(t, tc.level, assessment.SafetyLevel)
			assert.NotEmpty(t, assessment.Reason)
		})
	}
}

func TestClassifierRuleOrder(t *testing.T) {
	classifier := NewClassifier()

	// personal folders win over cache folders
	assoc := classifier.Associate(`C:\Users\X\Documents\Temp\notes.txt`)
	assert.Equal(t, domain.AssocPersonal, assoc.AssociationType)

	// known applications win over both
	assoc = classifier.Associate("/home/u/Code/Cache/blob")
	assert.Equal(t, domain.AssocAppData, assoc.AssociationType)
	assert.Equal(t, "Visual Studio Code", assoc.AppName)

	// more specific application rules come first
	assoc = classifier.Associate(`C:\Users\X\AppData\Roaming\Microsoft\VSCode\state`)
	assert.Equal(t, "Visual Studio Code", assoc.AppName)
}

func TestClassifierMatchesInteriorSegmentsOnly(t *testing.T) {
	classifier := NewClassifier()

	// the last segment is never matched
	assert.Equal(t, domain.AssocUnknown, classifier.Associate(`D:\data\Windows`).AssociationType)
	// nor is the first one
	assert.Equal(t, domain.AssocUnknown, classifier.Associate(`Temp\data\file.bin`).AssociationType)
	// partial segment names do not match
	assert.Equal(t, domain.AssocUnknown, classifier.Associate("/srv/Windowsill/file.bin").AssociationType)
	// anchored rules only match at the top
	assert.Equal(t, domain.AssocUnknown, classifier.Associate("/srv/usr/file.bin").AssociationType)
}

func TestClassifierAppDataRoots(t *testing.T) {
	classifier := NewClassifier(`C:\Users\X\AppData\Roaming`, "/home/u/.config/")

	cases := []struct {
		path  string
		app   string
		level domain.SafetyLevel
	}{
		{`C:\Users\X\AppData\Roaming\SomeApp\settings.json`, "SomeApp", domain.SafetyCaution},
		{`c:\users\x\appdata\roaming\SomeApp\debug.log`, "SomeApp", domain.SafetySafe},
		{"/home/u/.config/foo/state.db", "foo", domain.SafetyCaution},
		{"/home/u/.config/foo/blob", "foo", domain.SafetyCaution},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			assoc := classifier.Associate(tc.path)
			assert.Equal(t, domain.AssocAppData, assoc.AssociationType)
			assert.Equal(t, tc.app, assoc.AppName)
			assert.Equal(t, 70, assoc.Confidence)
			assert.Equal(t, tc.level, classifier.Assess(tc.path).SafetyLevel)
		})
	}

	assert.Equal(t, domain.AssocUnknown, classifier.Associate("/home/u/.config").AssociationType)
}

func TestAssessmentTable(t *testing.T) {
	cases := []struct {
		kind  domain.AssociationType
		ext   string
		level domain.SafetyLevel
	}{
		{domain.AssocSystem, "txt", domain.SafetyDanger},
		{domain.AssocInstalled, "dll", domain.SafetyDanger},
		{domain.AssocInstalled, "msi", domain.SafetyDanger},
		{domain.AssocInstalled, "png", domain.SafetyCaution},
		{domain.AssocCache, "db", domain.SafetySafe},
		{domain.AssocPersonal, "log", domain.SafetyCaution},
		{domain.AssocAppData, "temp", domain.SafetySafe},
		{domain.AssocAppData, "cfg", domain.SafetyCaution},
		{domain.AssocAppData, "ldb", domain.SafetyCaution},
		{domain.AssocAppData, "", domain.SafetyCaution},
		{domain.AssocUnknown, "tmp", domain.SafetyCaution},
	}
	for _, tc := range cases {
		assessment := Assessment(domain.AppAssociation{AppName: "App", AssociationType: tc.kind}, tc.ext)
		assert.Equal(t, tc.level, assessment.SafetyLevel, "%s/%s", tc.kind, tc.ext)
		assert.NotEmpty(t, assessment.Reason)
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "txt", Extension("a/b/File.TXT"))
	assert.Equal(t, "gz", Extension(`C:\x\archive.tar.gz`))
	assert.Equal(t, "", Extension("/home/u/.bashrc"))
	assert.Equal(t, "", Extension("dir.d/noext"))
	assert.Equal(t, "", Extension("trailing."))
	assert.Equal(t, "", Extension(""))
}
