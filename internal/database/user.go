package database

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/itihub/backend/internal/models"
	"gorm.io/gorm"
)

func (d *Database) SaveUser(user *models.User) error {
	return d.db.Create(user).Error
}

func (d *Database) GetUser(id uuid.UUID) (*models.User, error) {
	user := models.User{}
	if err := d.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (d *Database) FindUserByEmail(email string) (*models.User, error) {
	user := models.User{}
	if err := d.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUsersByUsernames возвращает пользователей по точным именам.
// Несуществующие имена молча пропускаются.
func (d *Database) FindUsersByUsernames(usernames []string) ([]models.User, error) {
	if len(usernames) == 0 {
		return nil, nil
	}

	var users []models.User
	if err := d.db.Where("username IN ?", usernames).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FollowerIDs идентификаторы подписчиков пользователя
func (d *Database) FollowerIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.Table("follows").
		Where("following_id = ?", userID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (d *Database) Follow(followerID, followingID uuid.UUID) error {
	follower, err := d.GetUser(followerID)
	if err != nil {
		return err
	}

	following, err := d.GetUser(followingID)
	if err != nil {
		return err
	}

	return d.db.Model(following).Association("Followers").Append(follower)
}

func (d *Database) UpdateLastSeen(id uuid.UUID) error {
	return d.db.Model(&models.User{}).Where("id = ?", id).Update("last_seen_at", time.Now()).Error
}
