package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"pollstream/internal/domain/user"
	"pollstream/internal/events"
	"pollstream/internal/repository"
	"pollstream/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, name string) user.User {
	t.Helper()

	u := user.User{
		UUID:         uuid.New(),
		Name:         name,
		Email:        fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
		PasswordHash: "x",
	}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), &u))
	return u
}

// capturingPublisher records published envelopes for assertions.
type capturingPublisher struct {
	mu        sync.Mutex
	envelopes []events.Envelope
}

func (p *capturingPublisher) Publish(_ context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envelopes = append(p.envelopes, env)
	return nil
}

func (p *capturingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.envelopes))
	for i, env := range p.envelopes {
		out[i] = env.EventType
	}
	return out
}

func (p *capturingPublisher) last() (events.Envelope, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.envelopes) == 0 {
		return events.Envelope{}, false
	}
	return p.envelopes[len(p.envelopes)-1], true
}
