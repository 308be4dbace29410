package policy

import (
	"strings"

	"github.com/KaramelBytes/agentops-cli/internal/report"
)

// RefusalMessage is returned for problem statements that trip the banned-term screen.
const RefusalMessage = "Request appears unsafe. Please provide a lawful, policy-compliant objective."

var bannedTerms = []string{"hack", "breach", "steal", "malware"}

// RefusalCheck screens a problem statement with a case-insensitive substring
// match against the banned-term list. ok is false when the request is safe.
func RefusalCheck(problem string) (msg string, ok bool) {
	lower := strings.ToLower(problem)
	for _, term := range bannedTerms {
		if strings.Contains(lower, term) {
			return RefusalMessage, true
		}
	}
	return "", false
}

const (
	costAwarePrefix  = "Cost-aware: "
	compliancePrefix = "[Compliance Review Required] "
)

var complianceTerms = []string{"hipaa", "gdpr", "pci"}

// EnforceConstraints returns a new action list tuned to the declared constraints.
// A budget constraint prefixes every impact; a HIPAA/GDPR/PCI constraint
// prefixes every action. The input slice is left untouched.
func EnforceConstraints(constraints []string, actions []report.ActionItem) []report.ActionItem {
	normalized := strings.ToLower(strings.Join(constraints, " "))
	budget := strings.Contains(normalized, "budget")
	compliance := false
	for _, term := range complianceTerms {
		if strings.Contains(normalized, term) {
			compliance = true
			break
		}
	}
	out := make([]report.ActionItem, 0, len(actions))
	for _, a := range actions {
		if budget {
			a.Impact = costAwarePrefix + a.Impact
		}
		if compliance {
			a.Action = compliancePrefix + a.Action
		}
		out = append(out, a)
	}
	return out
}
