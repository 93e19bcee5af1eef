// Package actions decides which lifecycle actions a viewer is offered for a
// borrower record. Every presentation layer reads this one function; the
// result is advisory and the upstream API has the final word.
package actions

import (
	"strings"

	"daterbo-console/internal/core/domain"
)

// Action is a permitted operation on a record
type Action string

const (
	View         Action = "view"
	Update       Action = "update"
	MarkComplete Action = "mark_complete"
	Process      Action = "process"
	Disburse     Action = "disburse"
	Cancel       Action = "cancel"
	Delete       Action = "delete"
)

var labels = map[Action]string{
	View:         "Detail",
	Update:       "Update",
	MarkComplete: "Data Lengkap",
	Process:      "Proses",
	Disburse:     "Cair",
	Cancel:       "Batal",
	Delete:       "Delete",
}

// Label returns the menu label of the action
func (a Action) Label() string {
	return labels[a]
}

// Parse validates an action name
func Parse(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := labels[a]; !ok {
		return "", domain.ErrUnknownAction
	}
	return a, nil
}

// IsTransition reports whether the action moves the record to another status
func (a Action) IsTransition() bool {
	switch a {
	case MarkComplete, Process, Disburse, Cancel:
		return true
	}
	return false
}

// forward maps a status code to the single forward transition it offers
var forward = map[string]Action{
	domain.StatusSubmitted:    MarkComplete,
	domain.StatusDataComplete: Process,
	domain.StatusProcessing:   Disburse,
}

// Permitted returns the actions offered for a record, in menu order.
// It depends only on the record's status code and the viewer's role.
func Permitted(r *domain.BorrowerRecord, viewer *domain.Identity) []Action {
	out := []Action{View, Update}

	code := r.StatusCode()
	next, cancellable := forward[code]
	if cancellable {
		out = append(out, next)
	}
	if viewer.IsAdmin() {
		if cancellable {
			out = append(out, Cancel)
		}
		out = append(out, Delete)
	}
	return out
}

// Allows reports whether action is among the permitted actions
func Allows(r *domain.BorrowerRecord, viewer *domain.Identity, action Action) bool {
	for _, a := range Permitted(r, viewer) {
		if a == action {
			return true
		}
	}
	return false
}

// adminOnlyStatuses may only be assigned by administrators through the edit form
var adminOnlyStatuses = map[string]struct{}{
	domain.StatusNameCancelled: {},
	domain.StatusNameSearching: {},
	domain.StatusNameDisbursed: {},
}

// AssignableStatuses filters the statuses offered in the record form
func AssignableStatuses(statuses []domain.Status, viewer *domain.Identity) []domain.Status {
	if viewer.IsAdmin() {
		return statuses
	}
	out := make([]domain.Status, 0, len(statuses))
	for _, s := range statuses {
		if _, restricted := adminOnlyStatuses[strings.ToUpper(strings.TrimSpace(s.Name))]; restricted {
			continue
		}
		out = append(out, s)
	}
	return out
}

// CanAssign reports whether the viewer may set statusID through the form
func CanAssign(statuses []domain.Status, viewer *domain.Identity, statusID string) bool {
	if statusID == "" {
		return true
	}
	for _, s := range AssignableStatuses(statuses, viewer) {
		if s.ID == statusID {
			return true
		}
	}
	return false
}
