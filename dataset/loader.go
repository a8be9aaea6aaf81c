// Package dataset reads and writes the login and query lists consumed by the
// benchmark.
//
// A login file holds one username per row. A query file holds one username per
// row; whether the username is expected to be present is recovered from the
// login file. Query files written with a username,is_present header and column
// are accepted too; the column is then trusted or checked against the login
// file. A login file only has a header when LoadOptions.LoginHeader says so.
package dataset

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"slices"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

const readBufferSize = 1 << 20

// Query is one membership query and its ground truth.
type Query struct {
	Username string
	Present  bool
}

// Dataset is a login list and the queries issued against it.
type Dataset struct {
	Logins  []string
	Queries []Query
}

// Release drops the sequences so they can be collected.
func (d *Dataset) Release() {
	d.Logins = nil
	d.Queries = nil
}

// NumPresent returns the number of queries whose username is in the logins.
func (d *Dataset) NumPresent() int {
	n := 0
	for i := range d.Queries {
		if d.Queries[i].Present {
			n++
		}
	}
	return n
}

// LoadOptions tune Load.
type LoadOptions struct {
	// VerifyLabels checks an explicit is_present column against the login
	// list. Without it the column is trusted.
	VerifyLabels bool
	// LoginHeader skips a leading "username" row of the login file.
	LoginHeader bool
}

// Load reads the login list at loginPath and the query list at queryPath.
// Any error is marked with ErrDatasetFormat.
func Load(loginPath, queryPath string, opts LoadOptions) (*Dataset, error) {
	logins, err := LoadLogins(loginPath, opts.LoginHeader)
	if err != nil {
		return nil, err
	}
	queries, err := LoadQueries(queryPath, logins, opts.VerifyLabels)
	if err != nil {
		return nil, err
	}
	return &Dataset{Logins: logins, Queries: queries}, nil
}

// LoadLogins reads a login list, one username per row, in file order. With
// header a first row reading "username" is skipped.
func LoadLogins(path string, header bool) ([]string, error) {
	var headerRow []string
	if header {
		headerRow = []string{"username"}
	}
	var logins []string
	err := readRows(path, 1, headerRow, func(row int, record []string) error {
		logins = append(logins, record[0])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return logins, nil
}

// LoadQueries reads a query list in file order and labels each query against
// logins. Rows may carry a second is_present column.
func LoadQueries(path string, logins []string, verify bool) ([]Query, error) {
	sorted := slices.Clone(logins)
	slices.Sort(sorted)
	contains := func(username string) bool {
		_, found := slices.BinarySearch(sorted, username)
		return found
	}

	var queries []Query
	err := readRows(path, 2, labelledHeader, func(row int, record []string) error {
		q := Query{Username: record[0]}
		if len(record) == 1 {
			q.Present = contains(q.Username)
		} else {
			present, err := parsePresent(record[1])
			if err != nil {
				return errors.Wrapf(err, "row %d", row)
			}
			q.Present = present
			if verify && present != contains(q.Username) {
				return errors.Newf("row %d: %q labelled is_present=%s disagrees with the login list",
					row, q.Username, record[1])
			}
		}
		queries = append(queries, q)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return queries, nil
}

func parsePresent(v string) (bool, error) {
	switch v {
	case "1", "true", "True":
		return true, nil
	case "0", "false", "False":
		return false, nil
	}
	return false, errors.Newf("is_present value %q is not 0 or 1", v)
}

// labelledHeader is the first row of a query file carrying labels.
var labelledHeader = []string{"username", "is_present"}

// readRows calls fn for every data row of the csv file at path. Rows must have
// between 1 and maxCols columns, all rows the same count. A first row equal to
// header is skipped.
func readRows(path string, maxCols int, header []string, fn func(row int, record []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = errors.Mark(err, ErrDatasetMissing)
		}
		return formatError(path, err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReaderSize(f, readBufferSize))
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	cols := 0
	rows := 0
	for line := 1; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return formatError(path, err)
		}
		if line == 1 && header != nil && slices.Equal(record, header) {
			continue
		}
		if cols == 0 {
			cols = len(record)
			if cols > maxCols {
				return formatError(path, errors.Newf("row %d: expected at most %d columns, found %d", line, maxCols, cols))
			}
		} else if len(record) != cols {
			return formatError(path, errors.Newf("row %d: expected %d columns, found %d", line, cols, len(record)))
		}
		for _, field := range record {
			if !utf8.ValidString(field) {
				return formatError(path, errors.Newf("row %d: not valid UTF-8 text", line))
			}
		}
		if record[0] == "" {
			return formatError(path, errors.Newf("row %d: empty username", line))
		}
		if err := fn(line, record); err != nil {
			return formatError(path, err)
		}
		rows++
	}
	if rows == 0 {
		return formatError(path, errors.New("file is empty"))
	}
	return nil
}
