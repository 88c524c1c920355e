// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"sync"

	"github.com/serveease/admin/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Background is shared between Startup, which starts the workers, and
	// Shutdown, which stops them.
	Background *Background
}

// Background tracks the workers Startup launched.
type Background struct {
	mu         sync.Mutex
	loginPurge *workers.LoginPurge
}

func (b *Background) setLoginPurge(w *workers.LoginPurge) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loginPurge = w
}

// Stop halts every running worker and waits for in-flight jobs.
func (b *Background) Stop() {
	if b == nil {
		return
	}
	b.mu.Lock()
	w := b.loginPurge
	b.loginPurge = nil
	b.mu.Unlock()
	if w != nil {
		w.Stop()
	}
}
