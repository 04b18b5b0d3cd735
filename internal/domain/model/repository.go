package model

// RepositoryPage is a single page of a repository scan. An empty NextToken
// means the scan is complete.
type RepositoryPage struct {
	Names     []string
	NextToken string
}
