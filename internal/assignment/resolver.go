package assignment

import "taskrouter/internal/models"

// Assignment names who asked and who was asked. AssignorID is always the
// message sender; AssigneeID is the first addressed user when present.
type Assignment struct {
	AssignorID string
	AssigneeID *string
}

// Resolve determines the assignment for a classified message. When the
// message is not a work request no assignment exists and ok is false;
// that is not an error condition, simply "no assignment".
func Resolve(senderID string, addressed []string, result models.ClassificationResult) (Assignment, bool) {
	if !result.IsWorkRequest {
		return Assignment{}, false
	}

	a := Assignment{AssignorID: senderID}
	if len(addressed) > 0 {
		assignee := addressed[0]
		a.AssigneeID = &assignee
	}
	return a, true
}
