package cli

import (
	"context"
	"errors"
	"fmt"

	adminstore "github.com/serveease/admin/internal/app/store/admins"
	"github.com/serveease/admin/internal/app/system/auth"
	"github.com/serveease/admin/internal/app/system/indexes"
	"github.com/serveease/admin/internal/app/system/passwords"
	"github.com/serveease/admin/internal/domain/models"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

func newCreateAdminCmd(rt *runtime) *cobra.Command {
	var email, name, password, role string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account, or reset an existing one",
		Long: "Creates the admin with --email. When the email already exists the account's\n" +
			"name, password, and role are replaced and it is re-enabled.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := passwords.Validate(password); err != nil {
				return fmt.Errorf("--password: %w", err)
			}
			if role != auth.RoleAdmin && role != auth.RoleSuperAdmin {
				return fmt.Errorf("--role must be %q or %q", auth.RoleAdmin, auth.RoleSuperAdmin)
			}
			hash, err := passwords.Hash(password)
			if err != nil {
				return err
			}
			return rt.withDB(cmd, func(ctx context.Context, db *mongo.Database) error {
				a, created, err := adminstore.New(db).Upsert(ctx, models.Admin{
					FullName:     name,
					Email:        email,
					PasswordHash: hash,
					Role:         role,
					Status:       models.AdminStatusActive,
				})
				if err != nil {
					return err
				}
				verb := "Updated"
				if created {
					verb = "Created"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%s)\n", verb, a.Role, a.Email, a.ID.Hex())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Sign-in email (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Initial password (required)")
	cmd.Flags().StringVar(&role, "role", auth.RoleAdmin, "admin or superadmin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSetStatusCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <email> <active|disabled>",
		Short: "Enable or disable an admin account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, status := args[0], args[1]
			if status != models.AdminStatusActive && status != models.AdminStatusDisabled {
				return fmt.Errorf("status must be %q or %q", models.AdminStatusActive, models.AdminStatusDisabled)
			}
			return rt.withDB(cmd, func(ctx context.Context, db *mongo.Database) error {
				store := adminstore.New(db)
				a, err := store.GetByEmail(ctx, email)
				if errors.Is(err, adminstore.ErrNotFound) {
					return fmt.Errorf("no admin with email %s", email)
				}
				if err != nil {
					return err
				}
				if err := store.SetStatus(ctx, a.ID, status); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", a.Email, status)
				return nil
			})
		},
	}
}

func newEnsureIndexesCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create or repair the collection indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withDB(cmd, func(ctx context.Context, db *mongo.Database) error {
				if err := indexes.EnsureAll(ctx, db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Indexes are up to date")
				return nil
			})
		},
	}
}
