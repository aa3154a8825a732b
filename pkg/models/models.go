package models

// Repository is the summary of one repository search hit.
type Repository struct {
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	OpenIssues  int    `json:"open_issues_count"`
	HTMLURL     string `json:"html_url,omitempty"`
	Language    string `json:"language,omitempty"`
}

// SearchResult is one page of repository search results, in the order the API returned them.
type SearchResult struct {
	TotalCount int          `json:"total_count"`
	Items      []Repository `json:"items"`
}
