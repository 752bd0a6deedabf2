package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tags is stored as a JSON-encoded text column so the same model works
// against postgres and the sqlite test database.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	return json.Marshal(t)
}

func (t *Tags) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("tags: cannot scan %T", src)
	}
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"  json:"username"`
	Email        string    `gorm:"not null"              json:"email"`
	PasswordHash string    `gorm:"not null"              json:"-"`
	IsActive     bool      `gorm:"not null"             json:"is_active"`
	IsSuperuser  bool      `gorm:"not null"             json:"is_superuser"`
	CreatedAt    time.Time `gorm:"not null"             json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Item struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"     json:"id"`
	Name        string     `gorm:"not null"                 json:"name"`
	Description string     `json:"description"`
	OwnerID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"owner_id"`
	Price       float64    `gorm:"not null"                 json:"price"`
	Tags        Tags       `gorm:"type:text"                json:"tags"`
	CreatedAt   time.Time  `gorm:"not null"                 json:"created_at"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false"     json:"updated_at"`
	Deleted     bool       `gorm:"not null;index"           json:"deleted"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Tags == nil {
		i.Tags = Tags{}
	}
	return nil
}
