package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/readlater/internal/config"
	"github.com/mrlokans/readlater/internal/entrypoint"
)

// CreateUserCommand adds a user for AUTH_MODE=token and prints its API token.
type CreateUserCommand struct {
	DatabasePath string
	Username     string
	Regenerate   bool

	Config *config.Config
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.StringVar(&cmd.Username, "username", "", "Name of the user (required)")
	fs.BoolVar(&cmd.Regenerate, "regenerate", false, "Issue a new token for an existing user")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Username == "" {
		return fmt.Errorf("required flag -username not provided")
	}
	return nil
}

func (cmd *CreateUserCommand) Run() error {
	cfg, err := resolveConfig(cmd.Config, cmd.DatabasePath)
	if err != nil {
		return err
	}
	app, err := entrypoint.Open(cfg, true)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer app.Close()

	if cmd.Regenerate {
		user, err := app.Users.GetUserByUsername(cmd.Username)
		if err != nil {
			return fmt.Errorf("failed to look up user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("user %q not found", cmd.Username)
		}
		token, err := app.Users.RegenerateToken(user.ID)
		if err != nil {
			return fmt.Errorf("failed to regenerate token: %w", err)
		}
		fmt.Printf("User %s (id %d)\nToken: %s\n", user.Username, user.ID, token)
		return nil
	}

	user, err := app.Users.CreateUser(cmd.Username)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	fmt.Printf("User %s (id %d)\nToken: %s\n", user.Username, user.ID, user.Token)
	return nil
}
