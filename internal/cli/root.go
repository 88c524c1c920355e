// Package cli implements serveease-admin, the operator tool for accounts,
// keys and schema that the dashboard itself does not manage.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Environment variables read by commands that need the database. They match
// the server's own SERVEEASE_* settings so one .env serves both.
const (
	EnvMongoURI      = "SERVEEASE_MONGO_URI"
	EnvMongoDatabase = "SERVEEASE_MONGO_DATABASE"

	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "serveease"
)

// connectFunc opens the database and returns a release func.
type connectFunc func(ctx context.Context) (*mongo.Database, func(), error)

type runtime struct {
	out     io.Writer
	connect connectFunc
	timeout time.Duration
}

// NewRootCmd builds the serveease-admin command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&runtime{out: os.Stdout, connect: connectFromEnv, timeout: 30 * time.Second})
}

func newRootCmd(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:           "serveease-admin",
		Short:         "Operator tasks for the ServeEase admin dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is normal in production.
			_ = godotenv.Load()
		},
	}
	root.SetOut(rt.out)

	root.AddCommand(
		newCreateAdminCmd(rt),
		newSetStatusCmd(rt),
		newEnsureIndexesCmd(rt),
		newHashPasswordCmd(rt),
		newGenKeyCmd(rt),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func connectFromEnv(ctx context.Context) (*mongo.Database, func(), error) {
	uri := envOr(EnvMongoURI, defaultMongoURI)
	name := envOr(EnvMongoDatabase, defaultMongoDatabase)

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetAppName("serveease-admin-cli"))
	if err != nil {
		return nil, nil, fmt.Errorf("connect %s: %w", uri, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping %s: %w", uri, err)
	}
	release := func() { _ = client.Disconnect(context.Background()) }
	return client.Database(name), release, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// withDB runs fn against the database under the command timeout.
func (rt *runtime) withDB(cmd *cobra.Command, fn func(ctx context.Context, db *mongo.Database) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), rt.timeout)
	defer cancel()

	db, release, err := rt.connect(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx, db)
}
