package database

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/itihub/backend/internal/models"
	"gorm.io/gorm"
)

func (d *Database) SaveMessage(message *models.ChatMessage) error {
	return d.db.Create(message).Error
}

func (d *Database) GetMessage(id uuid.UUID) (*models.ChatMessage, error) {
	var message models.ChatMessage
	if err := d.db.First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &message, nil
}

// canModifyMessage автор может всегда; в групповом чате также супервайзер
// группы. Авторство сообщения неизменяемо.
func (d *Database) canModifyMessage(message *models.ChatMessage, requester uuid.UUID) (bool, error) {
	if message.SenderID == requester {
		return true, nil
	}
	if message.GroupID != nil {
		return d.IsGroupAdmin(*message.GroupID, requester)
	}
	return false, nil
}

// UpdateMessageContent заменяет тело сообщения и ставит отметку о правке.
// Токена оптимистичной блокировки нет: при одновременных правках побеждает
// последняя запись.
func (d *Database) UpdateMessageContent(id, requester uuid.UUID, newContent string) (*models.ChatMessage, error) {
	message, err := d.GetMessage(id)
	if err != nil {
		return nil, err
	}

	ok, err := d.canModifyMessage(message, requester)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	now := time.Now()
	message.Content = newContent
	message.EditedAt = &now

	if err := d.db.Save(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// DeleteMessage удаляет сообщение; последующие чтения его не возвращают.
// Возвращает удаленную запись для рассылки события delete_message.
func (d *Database) DeleteMessage(id, requester uuid.UUID) (*models.ChatMessage, error) {
	message, err := d.GetMessage(id)
	if err != nil {
		return nil, err
	}

	ok, err := d.canModifyMessage(message, requester)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	if err := d.db.Delete(&models.ChatMessage{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// GetRoomMessages история комнаты в порядке создания. ascending=true —
// старые первыми (прокрутка назад), false — новые первыми (превью).
// before ограничивает выборку сообщениями, созданными раньше этой отметки.
func (d *Database) GetRoomMessages(roomKey string, limit int, before *time.Time, ascending bool) ([]models.ChatMessage, error) {
	query := d.db.Where("room_key = ?", roomKey)

	if before != nil {
		query = query.Where("created_at < ?", *before)
	}

	order := "created_at DESC"
	if ascending {
		order = "created_at ASC"
	}

	var messages []models.ChatMessage
	err := query.
		Order(order).
		Limit(limit).
		Preload("Sender").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}
