package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"vuescope/internal/query"
)

// SARIF v2.1.0, the format code-scanning dashboards ingest.
const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

// sarifRules describes each task as a rule. The component graph is not a
// diagnostic and has no rule.
var sarifRules = map[string]sarifRule{
	query.TaskFind:            rule("VUE001", "AttributeUsage", "Component receives the searched attribute.", "note"),
	query.TaskClickNative:     rule("VUE002", "NativeModifier", "The .native modifier was removed in Vue 3.", "warning"),
	query.TaskNonPropBindings: rule("VUE003", "NonPropBinding", "Attribute is not declared as a prop by the receiving component.", "warning"),
	query.TaskMissingEmits:    rule("VUE004", "MissingEmits", "Emitted event is not declared in the emits option.", "warning"),
	query.TaskRouterLinkAttrs: rule("VUE005", "RemovedRouterLinkAttribute", "Attribute was removed from <router-link> in Vue Router 4.", "warning"),
	query.TaskTemplateVFor:    rule("VUE006", "TemplateVFor", "<template v-for> changes key placement in Vue 3.", "note"),
	query.TaskTeleportTargets: rule("VUE007", "TeleportTarget", "Distinct <teleport> target.", "note"),
}

func rule(id, name, text, level string) sarifRule {
	return sarifRule{
		ID:               id,
		Name:             name,
		ShortDescription: sarifMessage{Text: text},
		DefaultConfig:    sarifRuleDefaultConfig{Level: level},
	}
}

// SARIF renders res as a SARIF document. URIs are relative to projectRoot
// so reports carry no absolute paths.
func SARIF(res *query.Result, projectRoot, toolVersion string) ([]byte, error) {
	r, ok := sarifRules[res.Task]
	if !ok {
		return nil, fmt.Errorf("task %q has no SARIF rule", res.Task)
	}

	results := make([]sarifResult, 0, len(res.Findings))
	for _, f := range res.Findings {
		msg := f.Message
		if msg == "" {
			msg = fmt.Sprintf("<%s> %s", f.Component, f.Attribute)
		}
		path, line, col := f.Position()
		loc := sarifLocation{PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{URI: relativeURI(projectRoot, path), URIBaseID: "%SRCROOT%"},
		}}
		if line > 0 {
			loc.PhysicalLocation.Region = &sarifRegion{StartLine: line, StartColumn: col}
		}
		results = append(results, sarifResult{
			RuleID:    r.ID,
			Level:     r.DefaultConfig.Level,
			Message:   sarifMessage{Text: msg},
			Locations: []sarifLocation{loc},
		})
	}

	doc := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:    "vuescope",
				Version: toolVersion,
				Rules:   []sarifRule{r},
			}},
			Results: results,
		}},
	}
	return json.MarshalIndent(doc, "", "  ")
}

// relativeURI turns an absolute path into a forward-slash URI relative to
// projectRoot.
func relativeURI(projectRoot, path string) string {
	if projectRoot != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(projectRoot, path); err == nil {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}
