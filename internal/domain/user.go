package domain

// RoleCapabilities flags what a viewer's role allows.
type RoleCapabilities struct {
	CanPostJobs         bool `json:"canPostJobs"`
	CanShowcaseProjects bool `json:"canShowcaseProjects"`
	CanUploadProducts   bool `json:"canUploadProducts"`
}

// Viewer is the authenticated user as the gateway sees them. Read-only for
// every core component; only the auth surface writes it.
type Viewer struct {
	ID                 string           `json:"_id"`
	Username           string           `json:"username"`
	Email              string           `json:"email,omitempty"`
	IsEmailVerified    bool             `json:"isEmailVerified"`
	IsPhoneVerified    bool             `json:"isPhoneVerified"`
	Role               string           `json:"role"`
	RoleCapabilities   RoleCapabilities `json:"roleCapabilities"`
	IsProfileCompleted bool             `json:"isProfileCompleted"`
}
