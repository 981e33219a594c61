// Package dsconfig parses the datasource list and the optional audit
// configuration file.
package dsconfig

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Drivers a datasource line may name.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Datasource is one connection target. For the sqlite driver, Host carries
// the database file path and Port is unused.
type Datasource struct {
	Name     string
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
}

// ParseDatasources reads newline-separated records of the form
//
//	name,host,port,username,password[,driver]
//
// Blank lines and lines starting with '#' are skipped. Lines with fewer
// than five fields, or a non-numeric port under the mysql driver, are
// skipped with a logged warning.
func ParseDatasources(text string, logw io.Writer) []Datasource {
	var out []Datasource

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) < 5 {
			fmt.Fprintf(logw, "dsconfig: skipping invalid line: %s\n", line)
			continue
		}

		driver := DriverMySQL
		if len(parts) >= 6 && parts[5] != "" {
			driver = strings.ToLower(parts[5])
		}
		if driver != DriverMySQL && driver != DriverSQLite {
			fmt.Fprintf(logw, "dsconfig: skipping line with unknown driver %q: %s\n", driver, line)
			continue
		}

		ds := Datasource{
			Name:     parts[0],
			Driver:   driver,
			Host:     parts[1],
			User:     parts[3],
			Password: parts[4],
		}
		if driver == DriverMySQL {
			port, err := strconv.Atoi(parts[2])
			if err != nil {
				fmt.Fprintf(logw, "dsconfig: skipping line with bad port %q: %s\n", parts[2], line)
				continue
			}
			ds.Port = port
		}

		out = append(out, ds)
	}
	return out
}
