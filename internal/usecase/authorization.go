package usecase

import (
	"context"
	"errors"

	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/ferdian3456/rosterbridge/internal/model"
	"github.com/google/uuid"
)

// Actor is the caller resolved inside one department.
type Actor struct {
	Member       model.Member
	Level        int
	Capabilities model.Capability
}

type Authorizer struct {
	DepartmentStore DepartmentStore
	MemberStore     MemberStore
}

func NewAuthorizer(departmentStore DepartmentStore, memberStore MemberStore) *Authorizer {
	return &Authorizer{
		DepartmentStore: departmentStore,
		MemberStore:     memberStore,
	}
}

// ResolveActor loads the caller's membership and rank in departmentId. Callers without an
// active membership are forbidden.
func (authorizer *Authorizer) ResolveActor(ctx context.Context, actorUserId string, departmentId uuid.UUID) (Actor, error) {
	actor := Actor{}

	member, err := authorizer.MemberStore.GetMemberByUser(ctx, actorUserId, departmentId)
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) && appErr.Code == constant.ERR_NOT_FOUND_ERROR {
			return actor, &model.AppError{
				Code:    constant.ERR_FORBIDDEN_ERROR,
				Message: "You are not a member of this department",
				Param:   "departmentId",
			}
		}
		return actor, err
	}

	if !member.HoldsRoles() {
		return actor, &model.AppError{
			Code:    constant.ERR_FORBIDDEN_ERROR,
			Message: "Your membership in this department is not active",
			Param:   "departmentId",
		}
	}

	actor.Member = member
	if member.RankId == nil {
		return actor, nil
	}

	rank, err := authorizer.DepartmentStore.GetRank(ctx, *member.RankId)
	if err != nil {
		return actor, err
	}

	actor.Level = rank.Level
	actor.Capabilities = rank.Permissions

	return actor, nil
}

func (authorizer *Authorizer) Require(ctx context.Context, actorUserId string, departmentId uuid.UUID, capability model.Capability) (Actor, error) {
	actor, err := authorizer.ResolveActor(ctx, actorUserId, departmentId)
	if err != nil {
		return actor, err
	}

	err = actor.Require(capability)
	if err != nil {
		return actor, err
	}

	return actor, nil
}

func (actor Actor) Require(capability model.Capability) error {
	if !actor.Capabilities.Has(capability) {
		return &model.AppError{
			Code:    constant.ERR_FORBIDDEN_ERROR,
			Message: "You do not have the " + capability.String() + " permission in this department",
			Param:   "permission",
		}
	}

	return nil
}

// Outranks rejects actions on members at or above the actor's own level.
func (actor Actor) Outranks(targetLevel int) error {
	if actor.Level <= targetLevel {
		return &model.AppError{
			Code:    constant.ERR_FORBIDDEN_ERROR,
			Message: "You can only act on members ranked below you",
			Param:   "memberId",
		}
	}

	return nil
}
