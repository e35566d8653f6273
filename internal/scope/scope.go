package scope

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const localsKey = "api_scope"

// KeyScope is the (list, app) pair a validated API key is bound to. Every
// mutating achievement call requires the scope's ListID to match the path.
type KeyScope struct {
	KeyID   uuid.UUID
	ListID  uuid.UUID
	AppID   uuid.UUID
	ExpDate time.Time
}

// Set stores the validated key scope in Fiber context locals.
func Set(c *fiber.Ctx, s KeyScope) {
	c.Locals(localsKey, s)
}

// Get extracts the key scope from Fiber context locals.
func Get(c *fiber.Ctx) (KeyScope, bool) {
	s, ok := c.Locals(localsKey).(KeyScope)
	return s, ok
}

// ForList returns a GORM scope that filters by list_id.
func ForList(listID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("list_id = ?", listID)
	}
}

// ForApp returns a GORM scope that filters by app_id.
func ForApp(appID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("app_id = ?", appID)
	}
}
