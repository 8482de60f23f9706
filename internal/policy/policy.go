// Package policy holds the static authorization table: which roles may
// perform which action on which entity. Handlers consult it before touching
// the store; a denial never reaches the persistence layer.
package policy

import "github.com/tawargy/project-manager/internal/model"

type Entity string

const (
	EntityUser    Entity = "user"
	EntityProject Entity = "project"
	EntityTask    Entity = "task"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// anyAuthenticated marks actions open to every signed-in principal,
// including those with no role assigned yet.
const anyAuthenticated = "*"

var table = map[Entity]map[Action][]string{
	EntityUser: {
		ActionRead:   {model.RoleAdmin},
		ActionUpdate: {model.RoleAdmin},
		ActionDelete: {model.RoleAdmin},
	},
	EntityProject: {
		ActionRead:   {anyAuthenticated},
		ActionCreate: {model.RoleAdmin, model.RoleProjectManager},
		ActionUpdate: {model.RoleAdmin, model.RoleProjectManager},
		ActionDelete: {model.RoleAdmin},
	},
	EntityTask: {
		ActionRead:   {anyAuthenticated},
		ActionCreate: {model.RoleAdmin, model.RoleProjectManager},
		ActionUpdate: {model.RoleAdmin, model.RoleProjectManager},
		ActionDelete: {model.RoleAdmin, model.RoleProjectManager},
	},
}

// Allows reports whether a principal with the given role may perform action
// on entity. An unknown entity/action pair denies.
func Allows(role string, entity Entity, action Action) bool {
	actions, ok := table[entity]
	if !ok {
		return false
	}
	roles, ok := actions[action]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == anyAuthenticated || r == role {
			return true
		}
	}
	return false
}

// CanUpdateTask extends the table row for task update with the dynamic
// assignee rule: the task's current assignee may update it regardless of
// role. The assignee's update is not restricted to the status field.
func CanUpdateTask(role string, userID uint, task *model.Task) bool {
	if Allows(role, EntityTask, ActionUpdate) {
		return true
	}
	return task.AssignedToID != nil && *task.AssignedToID == userID
}
