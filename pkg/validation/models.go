// Package validation provides the stateless structural analysis pass over a
// graph snapshot, plus go-playground/validator integration for declaration
// level checks used by the DSL parser.
package validation

import "fmt"

// Severity classifies an issue. Errors make the report invalid; warnings and
// info never do.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// IssueType identifies a specific structural check.
type IssueType string

const (
	// Errors
	TypeStartNoOutput        IssueType = "start_no_output"
	TypeStartMultipleOutputs IssueType = "start_multiple_outputs"
	TypeStartHasInput        IssueType = "start_has_input"
	TypeEndHasOutput         IssueType = "end_has_output"
	TypeCircularContainment  IssueType = "circular_containment"
	TypeDanglingEdge         IssueType = "dangling_edge"

	// Warnings
	TypeMissingStart           IssueType = "missing_start"
	TypeMissingEnd             IssueType = "missing_end"
	TypeForkFewBranches        IssueType = "fork_few_branches"
	TypeForkManyBranches       IssueType = "fork_many_branches"
	TypeJoinFewInputs          IssueType = "join_few_inputs"
	TypeForkJoinMismatch       IssueType = "fork_join_mismatch"
	TypeOrphanedNode           IssueType = "orphaned_node"
	TypeEmptyComponent         IssueType = "empty_component"
	TypeNodeOutsideComponent   IssueType = "node_outside_component"
	TypeSelfLoop               IssueType = "self_loop"
	TypeRespDisconnected       IssueType = "responsibility_disconnected"
	TypeRespOneSided           IssueType = "responsibility_one_sided"

	// Info
	TypeDeepNesting IssueType = "deep_nesting"
)

// Issue is one finding of the analysis pass.
type Issue struct {
	Severity Severity  `json:"severity"`
	Type     IssueType `json:"type"`
	Message  string    `json:"message"`
	// TargetID names the offending node, edge, or component, when there is one.
	TargetID string `json:"targetId,omitempty"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Type, i.Message)
}

// Report is the categorized outcome of a validation pass. Valid is true when
// no errors were found; warnings and info do not affect it.
type Report struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Info     []Issue `json:"info"`
}

func (r *Report) add(i Issue) {
	switch i.Severity {
	case SeverityError:
		r.Errors = append(r.Errors, i)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, i)
	default:
		r.Info = append(r.Info, i)
	}
}

func (r *Report) errorf(t IssueType, targetID, format string, args ...any) {
	r.add(Issue{Severity: SeverityError, Type: t, TargetID: targetID, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) warnf(t IssueType, targetID, format string, args ...any) {
	r.add(Issue{Severity: SeverityWarning, Type: t, TargetID: targetID, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) infof(t IssueType, targetID, format string, args ...any) {
	r.add(Issue{Severity: SeverityInfo, Type: t, TargetID: targetID, Message: fmt.Sprintf(format, args...)})
}

// ByType returns all issues of the given type across severities.
func (r *Report) ByType(t IssueType) []Issue {
	var out []Issue
	for _, set := range [][]Issue{r.Errors, r.Warnings, r.Info} {
		for _, i := range set {
			if i.Type == t {
				out = append(out, i)
			}
		}
	}
	return out
}
