package model

// RemoteUser is a member of the provider organization
type RemoteUser struct {
	ID       int64  `json:"id"`
	UserName string `json:"user_name"`
}

// ProviderRepository is the remote hosting platform's view of a repository.
// It is the source of truth for clone URLs and remote existence.
type ProviderRepository struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	CloneURL string `json:"clone_url"`
	HTMLURL  string `json:"html_url"`
	Private  bool   `json:"private"`
}
