package postgres

import "fmt"

// TableNames holds dynamically prefixed table names so dev, test and prod
// environments can share a database.
type TableNames struct {
	Folders string
	Media   string
	Users   string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Folders: fmt.Sprintf("%sfolders", prefix),
		Media:   fmt.Sprintf("%smedia", prefix),
		Users:   fmt.Sprintf("%susers", prefix),
	}
}
