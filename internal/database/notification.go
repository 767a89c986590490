package database

import (
	"errors"

	"github.com/google/uuid"
	"github.com/itihub/backend/internal/models"
	"gorm.io/gorm"
)

// InsertNotifications одна пакетная вставка для всей пачки fan-out'а.
// Строки, чей кортеж (recipient, sender, type, related_kind, related_id)
// уже существует, пропускаются — повторная обработка того же события
// не создает дубликатов. Пачка разделяет sender, type и related-ссылку,
// различаются только получатели.
func (d *Database) InsertNotifications(notifications []models.Notification) (int, error) {
	if len(notifications) == 0 {
		return 0, nil
	}

	first := notifications[0]

	recipientIDs := make([]uuid.UUID, len(notifications))
	for i, n := range notifications {
		recipientIDs[i] = n.RecipientID
	}

	query := d.db.Model(&models.Notification{}).
		Where("type = ? AND related_kind = ? AND related_id = ?", first.Type, first.RelatedKind, first.RelatedID).
		Where("recipient_id IN ?", recipientIDs)
	if first.SenderID != nil {
		query = query.Where("sender_id = ?", *first.SenderID)
	} else {
		query = query.Where("sender_id IS NULL")
	}

	var existing []models.Notification
	if err := query.Find(&existing).Error; err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(existing))
	for i := range existing {
		seen[existing[i].DedupKey()] = true
	}

	fresh := make([]models.Notification, 0, len(notifications))
	for _, n := range notifications {
		if !seen[n.DedupKey()] {
			seen[n.DedupKey()] = true
			fresh = append(fresh, n)
		}
	}

	if len(fresh) == 0 {
		return 0, nil
	}

	if err := d.db.CreateInBatches(fresh, 100).Error; err != nil {
		return 0, err
	}
	return len(fresh), nil
}

// RetractNotification удаляет уведомление по кортежу идемпотентности.
// Используется при снятии реакции; отсутствие строки — не ошибка.
func (d *Database) RetractNotification(recipient uuid.UUID, sender *uuid.UUID, notificationType models.NotificationType, kind models.RelatedKind, relatedID uuid.UUID) error {
	query := d.db.
		Where("recipient_id = ? AND type = ? AND related_kind = ? AND related_id = ?",
			recipient, notificationType, kind, relatedID)
	if sender != nil {
		query = query.Where("sender_id = ?", *sender)
	} else {
		query = query.Where("sender_id IS NULL")
	}

	return query.Delete(&models.Notification{}).Error
}

// ListNotifications уведомления получателя, новые первыми.
// notificationType фильтрует по типу ("" — все), unreadOnly — только
// непрочитанные.
func (d *Database) ListNotifications(recipient uuid.UUID, notificationType string, unreadOnly bool) ([]models.Notification, error) {
	query := d.db.Where("recipient_id = ?", recipient)

	if notificationType != "" {
		query = query.Where("type = ?", notificationType)
	}
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	err := query.
		Order("created_at DESC").
		Preload("Sender").
		Find(&notifications).Error
	return notifications, err
}

// MarkNotificationRead единственный переход unread → read. Повторная
// отметка уже прочитанного — no-op, не ошибка.
func (d *Database) MarkNotificationRead(recipient, id uuid.UUID) error {
	var notification models.Notification
	err := d.db.First(&notification, "id = ? AND recipient_id = ?", id, recipient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if notification.IsRead {
		return nil
	}

	return d.db.Model(&notification).Update("is_read", true).Error
}

func (d *Database) MarkAllNotificationsRead(recipient uuid.UUID) (int64, error) {
	result := d.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipient, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (d *Database) DeleteNotification(recipient, id uuid.UUID) error {
	result := d.db.Delete(&models.Notification{}, "id = ? AND recipient_id = ?", id, recipient)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *Database) ClearNotifications(recipient uuid.UUID) (int64, error) {
	result := d.db.Delete(&models.Notification{}, "recipient_id = ?", recipient)
	return result.RowsAffected, result.Error
}
