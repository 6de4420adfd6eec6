// CLI tool to create a user with a bcrypt-hashed password and a fresh auth
// token. Works against either store driver; the profile is created later
// through PUT /api/profile.
// Usage: go run ./cmd/create-user
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lg/diet-mentor-go-api/internal/config"
	"lg/diet-mentor-go-api/internal/domain"
	"lg/diet-mentor-go-api/internal/logging"
	"lg/diet-mentor-go-api/internal/store"
)

type userCreator interface {
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging)
	ctx := context.Background()

	var st store.Store
	if cfg.Database.Driver == config.DriverSQLite {
		st, err = store.NewSQLite(ctx, cfg.Database.URL, logger)
	} else {
		st, err = store.NewPostgres(ctx, cfg.Database.URL, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	u, err := createUser(ctx, st, os.Stdin, os.Stdout, bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nUser created successfully!\n")
	fmt.Printf("  ID:         %d\n", u.ID)
	fmt.Printf("  Username:   %s\n", u.Username)
	fmt.Printf("  Auth Token: %s\n", u.AuthToken)
}

// createUser prompts on out, reads answers from in and stores the user.
func createUser(ctx context.Context, st userCreator, in io.Reader, out io.Writer, cost int) (domain.User, error) {
	reader := bufio.NewReader(in)
	prompt := func(label string) string {
		fmt.Fprintf(out, "%s: ", label)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}

	username := prompt("Username")
	email := prompt("Email")
	password := prompt("Password")
	if username == "" || password == "" {
		return domain.User{}, fmt.Errorf("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	return st.CreateUser(ctx, domain.User{
		Username:  username,
		Email:     email,
		Password:  string(hash),
		AuthToken: uuid.New().String(),
	})
}
