package database

import (
	"errors"

	"github.com/google/uuid"
	"github.com/itihub/backend/internal/models"
	"gorm.io/gorm"
)

func (d *Database) CreateGroup(group *models.GroupChat) error {
	return d.db.Create(group).Error
}

func (d *Database) GetGroup(id uuid.UUID) (*models.GroupChat, error) {
	var group models.GroupChat
	err := d.db.Preload("Members").Preload("Supervisors").First(&group, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &group, nil
}

// IsGroupMember проверяет текущее членство. Членство никогда не создается
// неявно при подключении — только через AddGroupMember.
func (d *Database) IsGroupMember(groupID, userID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.Table("group_members").
		Where("group_chat_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

// IsGroupAdmin проверяет, входит ли пользователь в supervisors группы
func (d *Database) IsGroupAdmin(groupID, userID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.Table("group_supervisors").
		Where("group_chat_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

// GroupMemberIDs идентификаторы всех участников группы
func (d *Database) GroupMemberIDs(groupID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.Table("group_members").
		Where("group_chat_id = ?", groupID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (d *Database) AddGroupMember(groupID, userID uuid.UUID) error {
	group, err := d.GetGroup(groupID)
	if err != nil {
		return err
	}

	user, err := d.GetUser(userID)
	if err != nil {
		return err
	}

	return d.db.Model(group).Association("Members").Append(user)
}

func (d *Database) RemoveGroupMember(groupID, userID uuid.UUID) error {
	group, err := d.GetGroup(groupID)
	if err != nil {
		return err
	}

	user, err := d.GetUser(userID)
	if err != nil {
		return err
	}

	// Супервайзер обязан быть участником, поэтому снимаем обе роли
	if err := d.db.Model(group).Association("Supervisors").Delete(user); err != nil {
		return err
	}
	return d.db.Model(group).Association("Members").Delete(user)
}

// AddGroupSupervisor выдает права администратора участнику группы
func (d *Database) AddGroupSupervisor(groupID, userID uuid.UUID) error {
	isMember, err := d.IsGroupMember(groupID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrForbidden
	}

	group, err := d.GetGroup(groupID)
	if err != nil {
		return err
	}

	user, err := d.GetUser(userID)
	if err != nil {
		return err
	}

	return d.db.Model(group).Association("Supervisors").Append(user)
}
