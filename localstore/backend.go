// Package localstore is the durable draft store for in-flight wizard
// courses. It mirrors a browser local-storage contract: synchronous string
// key/value access, a full course JSON under "course_<id>" and a single
// "currentCourseId" pointer. Reads of malformed JSON behave as not-found and
// never surface an error.
package localstore

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Backend is the raw key/value surface the store sits on.
type Backend interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Entry is one stored key/value pair.
type Entry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (Entry) TableName() string {
	return "draft_entries"
}

// SqliteBackend persists entries in a local sqlite file.
type SqliteBackend struct {
	db *gorm.DB
}

func NewSqliteBackend(path string) (*SqliteBackend, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &SqliteBackend{db: db}, nil
}

func (b *SqliteBackend) Get(key string) (string, bool) {
	var entry Entry
	if err := b.db.Where("key = ?", key).First(&entry).Error; err != nil {
		return "", false
	}
	return entry.Value, true
}

func (b *SqliteBackend) Set(key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	return b.db.Save(&entry).Error
}

func (b *SqliteBackend) Delete(key string) error {
	return b.db.Where("key = ?", key).Delete(&Entry{}).Error
}

// MemoryBackend keeps entries in a map. Used by tests and as a last-resort
// fallback when the sqlite file cannot be opened.
type MemoryBackend struct {
	entries map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]string)}
}

func (b *MemoryBackend) Get(key string) (string, bool) {
	v, ok := b.entries[key]
	return v, ok
}

func (b *MemoryBackend) Set(key, value string) error {
	b.entries[key] = value
	return nil
}

func (b *MemoryBackend) Delete(key string) error {
	delete(b.entries, key)
	return nil
}
