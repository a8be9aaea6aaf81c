package dataset

import (
	"fmt"
	"path/filepath"
)

// LoginFile returns the path of the login list holding n usernames.
func LoginFile(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("logins_%d.csv", n))
}

// QueryFile returns the path of the query list holding q queries.
func QueryFile(dir string, q int) string {
	return filepath.Join(dir, fmt.Sprintf("queries_%d.csv", q))
}

// Paths returns the login and query file paths of a dataset size.
func Paths(dir string, logins, queries int) (loginPath, queryPath string) {
	return LoginFile(dir, logins), QueryFile(dir, queries)
}
