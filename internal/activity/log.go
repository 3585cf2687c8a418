// Package activity appends rows to the audit trail.
package activity

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/maurocmendes/leechycupcakes/internal/models"
)

// Log appends one audit row. Details is marshaled to JSON; nil details
// produce an empty column.
func Log(db *gorm.DB, userID uint, action, entityType, entityID string, details interface{}) error {
	var detailsJSON string
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("activity: marshal details: %w", err)
		}
		detailsJSON = string(data)
	}

	row := models.ActivityLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    detailsJSON,
	}
	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("activity: insert log: %w", err)
	}
	return nil
}
