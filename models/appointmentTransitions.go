package models

import "fmt"

// Action is a named lifecycle operation on an appointment.
type Action string

const (
	ActionApprove      Action = "approve"
	ActionComplete     Action = "complete"
	ActionCancel       Action = "cancel"
	ActionReschedule   Action = "reschedule"
	ActionAttachReport Action = "attach_report"
)

type transition struct {
	from []string
	to   string
}

// transitions is the whole state machine. Anything not listed is illegal;
// blocked, cancelled and rescheduled rows never leave their state, and a
// completed row only accepts a report.
//
// attach_report completes its row, so it is closed to rescheduled and
// cancelled rows as well. A rescheduled row's visit lives on its successor
// and a cancelled row has released its slot; completing either would record
// a visit on a row that no longer owns one and break the reschedule lineage.
var transitions = map[Action]transition{
	ActionApprove:      {from: []string{StatusRequested}, to: StatusApproved},
	ActionComplete:     {from: []string{StatusApproved}, to: StatusCompleted},
	ActionCancel:       {from: []string{StatusRequested, StatusApproved}, to: StatusCancelled},
	ActionReschedule:   {from: []string{StatusRequested, StatusApproved}, to: StatusRescheduled},
	ActionAttachReport: {from: []string{StatusRequested, StatusApproved, StatusCompleted}, to: StatusCompleted},
}

// doctorTargets maps the statuses a doctor may set directly to their action.
var doctorTargets = map[string]Action{
	StatusApproved:  ActionApprove,
	StatusCompleted: ActionComplete,
	StatusCancelled: ActionCancel,
}

// TransitionError reports an action applied to a status it does not accept.
type TransitionError struct {
	Action Action
	From   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s an appointment that is %s", e.Action, e.From)
}

// Transition returns the status that results from applying action to an
// appointment currently in status from.
func Transition(from string, action Action) (string, error) {
	t, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("unknown action %q", action)
	}
	for _, s := range t.from {
		if s == from {
			return t.to, nil
		}
	}
	return "", &TransitionError{Action: action, From: from}
}

// ActionForStatus maps a doctor-requested target status to its action.
// Only approved, completed and cancelled can be requested directly.
func ActionForStatus(target string) (Action, bool) {
	a, ok := doctorTargets[target]
	return a, ok
}

// IsTerminal reports whether no action other than a report is accepted.
func IsTerminal(status string) bool {
	for action, t := range transitions {
		if action == ActionAttachReport {
			continue
		}
		for _, s := range t.from {
			if s == status {
				return false
			}
		}
	}
	return true
}
