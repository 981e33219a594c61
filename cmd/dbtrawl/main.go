// dbtrawl audits relational databases for sensitive data exposure.
package main

import "github.com/dbtrawl/dbtrawl/internal/cli"

func main() {
	cli.Execute()
}
