package model

import "time"

// Parameter is a named value held by the parameter service. Names are
// path-like ("/GithubPrNotification/GithubToken"). Secure parameters are
// encrypted at rest; Value is always plaintext at the domain boundary.
type Parameter struct {
	Name      string
	Value     string
	Secure    bool
	UpdatedAt time.Time
}

// Parameters is the typed configuration a run needs from the parameter
// service. TargetUser may be empty, in which case the token's own login is used.
type Parameters struct {
	GitHubToken string
	WebhookURL  string
	TargetUser  string
}
