// Package policy решает, может ли пользователь выполнить действие над задачей.
package policy

import (
	"todoTracker/internal/models/task"
	"todoTracker/internal/models/user"
)

type Action string

const ActionList Action = "list"
const ActionCreate Action = "create"
const ActionView Action = "view"
const ActionUpdate Action = "update"
const ActionDelete Action = "delete"
const ActionRestore Action = "restore"
const ActionForceDelete Action = "force_delete"

// AssertFunc одно условие правила; t может быть nil для действий без конкретной задачи
type AssertFunc func(actor user.Actor, t *task.Task) bool

func IsAuthenticated(actor user.Actor, _ *task.Task) bool {
	return actor.IsAuthenticated()
}

func IsOwner(actor user.Actor, t *task.Task) bool {
	return t != nil && actor.IsAuthenticated() && actor.ID == t.OwnerID
}

// Deny правило без soft-delete: восстановление и принудительное удаление запрещены всегда
func Deny(user.Actor, *task.Task) bool {
	return false
}

type TaskPolicy struct {
	rules map[Action][]AssertFunc
}

func NewTaskPolicy() *TaskPolicy {
	return &TaskPolicy{
		rules: map[Action][]AssertFunc{
			ActionList:        {IsAuthenticated},
			ActionCreate:      {IsAuthenticated},
			ActionView:        {IsOwner},
			ActionUpdate:      {IsOwner},
			ActionDelete:      {IsOwner},
			ActionRestore:     {Deny},
			ActionForceDelete: {Deny},
		},
	}
}

// Allows все условия действия должны выполниться; неизвестное действие запрещено
func (p *TaskPolicy) Allows(action Action, actor user.Actor, t *task.Task) bool {
	funcs, ok := p.rules[action]
	if !ok || len(funcs) == 0 {
		return false
	}
	for _, fn := range funcs {
		if !fn(actor, t) {
			return false
		}
	}
	return true
}

func (p *TaskPolicy) CanListOwn(actor user.Actor) bool {
	return p.Allows(ActionList, actor, nil)
}

func (p *TaskPolicy) CanCreate(actor user.Actor) bool {
	return p.Allows(ActionCreate, actor, nil)
}

func (p *TaskPolicy) CanView(actor user.Actor, t *task.Task) bool {
	return p.Allows(ActionView, actor, t)
}

func (p *TaskPolicy) CanUpdate(actor user.Actor, t *task.Task) bool {
	return p.Allows(ActionUpdate, actor, t)
}

func (p *TaskPolicy) CanDelete(actor user.Actor, t *task.Task) bool {
	return p.Allows(ActionDelete, actor, t)
}

func (p *TaskPolicy) CanRestore(actor user.Actor, t *task.Task) bool {
	return p.Allows(ActionRestore, actor, t)
}

func (p *TaskPolicy) CanForceDelete(actor user.Actor, t *task.Task) bool {
	return p.Allows(ActionForceDelete, actor, t)
}
