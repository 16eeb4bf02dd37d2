package services

import "diskscope/internal/domain"

const (
	knownAppConfidence = 90
	personalConfidence = 85
	cacheConfidence    = 80
	appDataConfidence  = 70
	unknownConfidence  = 10
	unknownAppName     = "unknown"
	personalAppName    = "Personal files"
	cacheAppName       = "Cached files"
)

type associationRule struct {
	pattern segmentPattern
	appName string
	kind    domain.AssociationType
}

// knownApps is evaluated top to bottom and the first hit wins, so the more
// specific patterns must stay ahead of the generic ones.
var knownApps = []associationRule{
	// browsers
	{pattern: segments("Google", "Chrome"), appName: "Google Chrome", kind: domain.AssocAppData},
	{pattern: segments("Mozilla", "Firefox"), appName: "Mozilla Firefox", kind: domain.AssocAppData},
	{pattern: segments("Microsoft", "Edge"), appName: "Microsoft Edge", kind: domain.AssocAppData},

	// developer tools
	{pattern: segments("Microsoft", "VSCode"), appName: "Visual Studio Code", kind: domain.AssocAppData},
	{pattern: segments("Code"), appName: "Visual Studio Code", kind: domain.AssocAppData},
	{pattern: segments("JetBrains"), appName: "JetBrains IDE", kind: domain.AssocAppData},
	{pattern: segments("npm"), appName: "npm", kind: domain.AssocCache},
	{pattern: segments("node_modules"), appName: "Node.js", kind: domain.AssocAppData},
	{pattern: segments(".nuget"), appName: "NuGet", kind: domain.AssocCache},
	{pattern: segments(".gradle"), appName: "Gradle", kind: domain.AssocCache},
	{pattern: segments(".m2"), appName: "Maven", kind: domain.AssocCache},
	{pattern: segments(".npm"), appName: "npm", kind: domain.AssocCache},

	// games
	{pattern: segments("Steam"), appName: "Steam", kind: domain.AssocAppData},
	{pattern: segments("Epic Games"), appName: "Epic Games", kind: domain.AssocInstalled},
	{pattern: segments("Riot Games"), appName: "Riot Games", kind: domain.AssocInstalled},

	// communication
	{pattern: segments("WeChat"), appName: "WeChat", kind: domain.AssocAppData},
	{pattern: segments("Tencent", "QQ"), appName: "QQ", kind: domain.AssocAppData},
	{pattern: segments("Discord"), appName: "Discord", kind: domain.AssocAppData},
	{pattern: segments("Slack"), appName: "Slack", kind: domain.AssocAppData},
	{pattern: segments("Zoom"), appName: "Zoom", kind: domain.AssocAppData},

	// office
	{pattern: segments("Microsoft", "Office"), appName: "Microsoft Office", kind: domain.AssocAppData},
	{pattern: segments("Adobe"), appName: "Adobe", kind: domain.AssocAppData},

	// operating system
	{pattern: segments("Windows"), appName: "Windows System", kind: domain.AssocSystem},
	{pattern: segments("System32"), appName: "Windows System", kind: domain.AssocSystem},
	{pattern: segments("SysWOW64"), appName: "Windows System", kind: domain.AssocSystem},
	{pattern: segments("Program Files"), appName: "Installed App", kind: domain.AssocInstalled},
	{pattern: segments("Program Files (x86)"), appName: "Installed App (32-bit)", kind: domain.AssocInstalled},

	{pattern: segments("Library", "Caches"), appName: "macOS cache", kind: domain.AssocCache},
	{pattern: anchored("usr"), appName: "Operating system", kind: domain.AssocSystem},
	{pattern: anchored("bin"), appName: "Operating system", kind: domain.AssocSystem},
	{pattern: anchored("sbin"), appName: "Operating system", kind: domain.AssocSystem},
	{pattern: anchored("lib"), appName: "Operating system", kind: domain.AssocSystem},
	{pattern: anchored("lib64"), appName: "Operating system", kind: domain.AssocSystem},
	{pattern: anchored("etc"), appName: "Operating system", kind: domain.AssocSystem},
	{pattern: anchored("boot"), appName: "Operating system", kind: domain.AssocSystem},
	{pattern: anchored("System"), appName: "macOS System", kind: domain.AssocSystem},
	{pattern: anchored("Applications"), appName: "Installed App", kind: domain.AssocInstalled},
	{pattern: anchored("opt"), appName: "Installed App", kind: domain.AssocInstalled},
}

var personalFolders = []segmentPattern{
	segments("Documents"),
	segments("Downloads"),
	segments("Desktop"),
	segments("Pictures"),
	segments("Videos"),
	segments("Music"),
}

var cacheFolders = []segmentPattern{
	segments("Temp"),
	segments("Cache"),
	segments("tmp"),
	segments(".cache"),
	segments("Temporary Internet Files"),
}

var (
	executableExts = extensionSet("exe", "dll", "sys", "msi")
	disposableExts = extensionSet("log", "tmp", "temp")
	configExts     = extensionSet("json", "xml", "ini", "config", "cfg")
	databaseExts   = extensionSet("db", "sqlite", "sqlite3", "ldb")
)

func extensionSet(exts ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		set[ext] = struct{}{}
	}
	return set
}
