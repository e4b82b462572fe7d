// Package access holds the authorization predicates shared by every service.
// They are pure: callers fetch the project (with members loaded) first.
package access

import (
	"github.com/google/uuid"

	"projecthub/internal/model"
)

// CanAccess reports whether the user owns the project or is one of its members.
func CanAccess(userID uuid.UUID, project *model.Project) bool {
	if project == nil {
		return false
	}
	return project.OwnerID == userID || project.HasMember(userID)
}

// CanMutateProject reports whether the user may edit, delete or invite to the project.
func CanMutateProject(userID uuid.UUID, project *model.Project) bool {
	return project != nil && project.OwnerID == userID
}

// CanMutateTask: any member may edit or delete any task of the project.
func CanMutateTask(userID uuid.UUID, project *model.Project) bool {
	return CanAccess(userID, project)
}

// CanDeleteNote allows the author and the project owner.
func CanDeleteNote(userID uuid.UUID, project *model.Project, note *model.Note) bool {
	if project == nil || note == nil {
		return false
	}
	return note.CreatedBy == userID || project.OwnerID == userID
}
