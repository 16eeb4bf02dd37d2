package domain

type AssociationType string

const (
	AssocInstalled AssociationType = "installed"
	AssocAppData   AssociationType = "appData"
	AssocCache     AssociationType = "cache"
	AssocPersonal  AssociationType = "personal"
	AssocSystem    AssociationType = "system"
	AssocUnknown   AssociationType = "unknown"
)

type AppAssociation struct {
	AppName         string          `json:"appName"`
	IconPath        string          `json:"iconPath,omitempty"`
	AssociationType AssociationType `json:"associationType"`
	Confidence      int             `json:"confidence"`
}

type SafetyLevel string

const (
	SafetySafe    SafetyLevel = "safe"
	SafetyCaution SafetyLevel = "caution"
	SafetyDanger  SafetyLevel = "danger"
)

type DeletionAssessment struct {
	SafetyLevel   SafetyLevel     `json:"safetyLevel"`
	Reason        string          `json:"reason"`
	Impact        string          `json:"impact,omitempty"`
	AssociatedApp *AppAssociation `json:"associatedApp,omitempty"`
}
