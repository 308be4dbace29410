package orchestrator

import (
	"fmt"
	"strings"
)

// ObjectiveType is the caller's declared intent. The zero value routes to
// operations diagnosis like any unrecognised objective.
type ObjectiveType string

const (
	ObjectiveAnalyzeData     ObjectiveType = "Analyze Data (CSV/Excel)"
	ObjectiveDecideStrategy  ObjectiveType = "Decide Strategy (no data needed)"
	ObjectiveDesignProcess   ObjectiveType = "Design a Process (SOP/workflow)"
	ObjectiveMonitorDiagnose ObjectiveType = "Monitor & Diagnose (metrics/logs)"
)

// Objectives lists the declared intents in display order.
var Objectives = []ObjectiveType{ObjectiveAnalyzeData, ObjectiveDecideStrategy, ObjectiveDesignProcess, ObjectiveMonitorDiagnose}

var objectiveAliases = map[string]ObjectiveType{
	"analyze-data":     ObjectiveAnalyzeData,
	"analyze":          ObjectiveAnalyzeData,
	"data":             ObjectiveAnalyzeData,
	"decide-strategy":  ObjectiveDecideStrategy,
	"strategy":         ObjectiveDecideStrategy,
	"design-process":   ObjectiveDesignProcess,
	"process":          ObjectiveDesignProcess,
	"monitor-diagnose": ObjectiveMonitorDiagnose,
	"monitor":          ObjectiveMonitorDiagnose,
	"diagnose":         ObjectiveMonitorDiagnose,
}

// ParseObjective accepts a short alias (analyze-data, strategy, ...) or a
// full label, case-insensitively.
func ParseObjective(s string) (ObjectiveType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "-", " ", "-").Replace(key)
	if o, ok := objectiveAliases[key]; ok {
		return o, nil
	}
	for _, o := range Objectives {
		if strings.EqualFold(strings.TrimSpace(s), string(o)) {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown objective %q (use analyze-data, decide-strategy, design-process or monitor-diagnose)", s)
}
