// Package testutil holds shared fixtures for package tests: an isolated
// in-memory database per test and a recording notification dispatcher.
package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"go-aqua-delivery/internal/database"
	"go-aqua-delivery/internal/models"
	"go-aqua-delivery/internal/notify"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// OpenDB returns a migrated in-memory database private to this test.
// cache=shared keeps every pooled connection on the same memory database.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_busy_timeout=5000", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// Recorder captures dispatched notification events for assertions.
type Recorder struct {
	mu     sync.Mutex
	Events []notify.Event
}

func (r *Recorder) Notify(e notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
	return nil
}

// CountType returns how many captured events carry the given event type.
func (r *Recorder) CountType(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.Events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}

// CaptureNotifications installs a Recorder for the duration of the test.
func CaptureNotifications(t *testing.T) *Recorder {
	t.Helper()
	rec := &Recorder{}
	notify.Use(rec)
	t.Cleanup(func() { notify.Use(&notify.LogDispatcher{Log: logrus.StandardLogger()}) })
	return rec
}

// SeedProduct inserts a product and returns it.
func SeedProduct(t *testing.T, db *gorm.DB, p models.Product) models.Product {
	t.Helper()
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

// SeedClient inserts a client with an address on file.
func SeedClient(t *testing.T, db *gorm.DB) models.Client {
	t.Helper()
	client := models.Client{
		Name:     "Maria Lopez",
		Phone:    "999111222",
		Address:  "Av. Central 123",
		District: "Miraflores",
	}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return client
}
