package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"projecthub/internal/apperrors"
	"projecthub/internal/logger"
	"projecthub/internal/model"
	"projecthub/internal/repository"
)

const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
)

type RespondInput struct {
	Action string `json:"action"`
}

type InviteService struct {
	invites *repository.InviteRepository
	log     *zap.Logger
}

func NewInviteService(invites *repository.InviteRepository) *InviteService {
	return &InviteService{invites: invites, log: logger.WithModule("invites")}
}

// ListPending returns the invites still waiting on the user's answer.
func (s *InviteService) ListPending(ctx context.Context, userID uuid.UUID) ([]model.Invite, error) {
	invites, err := s.invites.ListPendingFor(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to fetch invites")
	}
	return invites, nil
}

// Respond resolves an invite addressed to the user. Repeating the answer that
// already resolved the invite succeeds without changes; the opposite answer is rejected.
func (s *InviteService) Respond(ctx context.Context, userID, inviteID uuid.UUID, in RespondInput) (*model.Invite, error) {
	var target model.InviteStatus
	switch in.Action {
	case ActionAccept:
		target = model.InviteAccepted
	case ActionDecline:
		target = model.InviteDeclined
	default:
		return nil, apperrors.NewConflict("INVALID_ACTION", "Invalid action")
	}

	invite, err := s.invites.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, repository.ErrInviteNotFound) {
			return nil, apperrors.ErrNotFound.WithMessage("Invite not found")
		}
		return nil, apperrors.Wrap(err, "failed to load invite")
	}
	if invite.ToUserID != userID {
		return nil, apperrors.ErrNotFound.WithMessage("Invite not found")
	}

	switch invite.Status {
	case target:
		return invite, nil
	case model.InvitePending:
	default:
		return nil, apperrors.NewConflict("INVITE_RESOLVED", "Invite has already been "+string(invite.Status))
	}

	if target == model.InviteAccepted {
		err = s.invites.Accept(ctx, invite)
	} else {
		err = s.invites.Decline(ctx, invite)
	}
	if errors.Is(err, repository.ErrInviteResolved) {
		return s.resolvedConcurrently(ctx, inviteID, target)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to respond to invite")
	}

	s.log.Info("invite resolved",
		zap.String("invite_id", invite.ID.String()),
		zap.String("project_id", invite.ProjectID.String()),
		zap.String("status", string(target)),
	)
	return invite, nil
}

// resolvedConcurrently handles an invite answered by another request between
// the read and the update.
func (s *InviteService) resolvedConcurrently(ctx context.Context, inviteID uuid.UUID, target model.InviteStatus) (*model.Invite, error) {
	current, err := s.invites.GetByID(ctx, inviteID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load invite")
	}
	if current.Status == target {
		return current, nil
	}
	return nil, apperrors.NewConflict("INVITE_RESOLVED", "Invite has already been "+string(current.Status))
}
