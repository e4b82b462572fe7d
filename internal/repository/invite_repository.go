package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"projecthub/internal/model"
)

type InviteRepository struct {
	db *gorm.DB
}

func NewInviteRepository(db *gorm.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

func (r *InviteRepository) Create(ctx context.Context, invite *model.Invite) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(invite).Error
}

func (r *InviteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Invite, error) {
	var invite model.Invite
	if err := r.db.WithContext(ctx).First(&invite, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrInviteNotFound)
	}
	return &invite, nil
}

// HasPending reports whether a pending invite exists for (project, invitee).
func (r *InviteRepository) HasPending(ctx context.Context, projectID, toUserID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Invite{}).
		Where("project_id = ? AND to_user_id = ? AND status = ?", projectID, toUserID, model.InvitePending).
		Count(&count).Error
	return count > 0, err
}

// ListPendingFor returns pending invites addressed to the user, newest first,
// with the inviter and the project loaded.
func (r *InviteRepository) ListPendingFor(ctx context.Context, userID uuid.UUID) ([]model.Invite, error) {
	invites := []model.Invite{}
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("From").
		Where("to_user_id = ? AND status = ?", userID, model.InvitePending).
		Order("created_at DESC").
		Find(&invites).Error
	return invites, err
}

// Accept marks the invite accepted and adds the invitee as a member in one transaction.
func (r *InviteRepository) Accept(ctx context.Context, invite *model.Invite) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setStatus(tx, invite, model.InviteAccepted); err != nil {
			return err
		}
		return addMember(tx, invite.ProjectID, invite.ToUserID)
	})
}

func (r *InviteRepository) Decline(ctx context.Context, invite *model.Invite) error {
	return setStatus(r.db.WithContext(ctx), invite, model.InviteDeclined)
}

// setStatus moves a pending invite to status. The pending check is part of
// the UPDATE so two concurrent answers cannot both succeed.
func setStatus(tx *gorm.DB, invite *model.Invite, status model.InviteStatus) error {
	result := tx.Model(&model.Invite{}).
		Where("id = ? AND status = ?", invite.ID, model.InvitePending).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInviteResolved
	}
	invite.Status = status
	return nil
}
