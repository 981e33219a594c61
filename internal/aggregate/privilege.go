package aggregate

import (
	"fmt"
	"strings"

	"github.com/dbtrawl/dbtrawl/internal/model"
)

// privilegeSubject is the fixed subject for privilege findings.
const privilegeSubject = "user privileges"

// highRiskPrivileges can destroy data, read files, or take over replication.
var highRiskPrivileges = []string{
	"super", "file", "shutdown", "reload",
	"process", "grant", "replication-slave", "replication-client",
}

// dataPrivileges are the plain DML grants checked for wildcard-host users.
var dataPrivileges = []string{"select", "insert", "update", "delete"}

// privilegeFindings runs two independent checks per user: held high-risk
// privileges, and wildcard-host access combined with DML grants. Both
// findings may fire for the same user.
func privilegeFindings(users []model.UserGrant) []model.Finding {
	var findings []model.Finding

	for _, u := range users {
		var held []string
		for _, p := range highRiskPrivileges {
			if u.Flags[p] == "yes" {
				held = append(held, p)
			}
		}
		if len(held) > 0 {
			severity := model.SeverityMedium
			for _, p := range held {
				if p == "super" {
					severity = model.SeverityHigh
					break
				}
			}
			findings = append(findings, model.Finding{
				Type:           model.TypePrivilege,
				Severity:       severity,
				Subject:        privilegeSubject,
				Table:          model.NotApplicable,
				Fields:         model.NotApplicable,
				SensitiveTypes: "database privileges",
				Description: fmt.Sprintf("user %s@%s holds high-risk privileges: %s",
					u.User, u.Host, strings.Join(held, ", ")),
				Detected:    fmt.Sprintf("%d high-risk privileges", len(held)),
				Records:     model.NotApplicable,
				Remediation: "remove unnecessary high-risk privileges per least privilege",
			})
		}

		if u.Host == "%" && holdsAny(u, dataPrivileges) {
			findings = append(findings, model.Finding{
				Type:           model.TypePrivilege,
				Severity:       model.SeverityMedium,
				Subject:        privilegeSubject,
				Table:          model.NotApplicable,
				Fields:         model.NotApplicable,
				SensitiveTypes: "host access",
				Description: fmt.Sprintf("user %s may connect from any host (%%) with data privileges",
					u.User),
				Detected:    "wildcard host access",
				Records:     model.NotApplicable,
				Remediation: "restrict the user to specific hosts instead of the wildcard (%)",
			})
		}
	}
	return findings
}

func holdsAny(u model.UserGrant, privs []string) bool {
	for _, p := range privs {
		if u.Flags[p] == "yes" {
			return true
		}
	}
	return false
}
