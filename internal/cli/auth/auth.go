package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/dailyfocus/internal/cli"
	"github.com/julianstephens/dailyfocus/internal/models"
)

type AuthCmd struct {
	Login  LoginCmd  `cmd:"" help:"Sign in with an email (offline) or an access token (hosted)."`
	Logout LogoutCmd `cmd:"" help:"Sign out and remove the stored session."`
	Whoami WhoamiCmd `cmd:"" help:"Show the signed-in user."`
}

type LoginCmd struct {
	Email string `help:"Sign in offline as this email address." xor:"method"`
	Token string `help:"Sign in with a hosted-backend access token ('-' reads stdin)." xor:"method"`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	email, token := c.Email, c.Token

	if token == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read token from stdin: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}

	if email == "" && token == "" {
		if !cli.IsInteractive() {
			return errors.New("provide --email or --token")
		}
		var err error
		if email, token, err = loginForm(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return cli.ErrCancelled
			}
			return err
		}
	}

	var (
		id  *models.Identity
		err error
	)
	if token != "" {
		id, err = ctx.Session.SignInWithToken(token)
	} else {
		id, err = ctx.Session.SignInLocal(email)
	}
	if err != nil {
		return err
	}

	fmt.Printf("✓ Signed in as %s\n", describe(id))
	return nil
}

func loginForm() (email, token string, err error) {
	method := "email"
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sign in with").
				Options(
					huh.NewOption("Email (offline)", "email"),
					huh.NewOption("Access token (hosted)", "token"),
				).
				Value(&method),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return errors.New("enter an email address")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return method != "email" }),
		huh.NewGroup(
			huh.NewInput().
				Title("Access token").
				EchoMode(huh.EchoModePassword).
				Value(&token).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("token cannot be empty")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return method != "token" }),
	).WithTheme(huh.ThemeDracula()).Run()

	if method == "email" {
		token = ""
	} else {
		email = ""
	}
	return email, token, err
}

func describe(id *models.Identity) string {
	name := id.Email
	if name == "" {
		name = id.ID
	}
	return fmt.Sprintf("%s (%s)", name, id.Provider)
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := ctx.Session.SignOut(); err != nil {
		return err
	}
	fmt.Println("✓ Signed out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	id, err := ctx.Session.CurrentUser(context.Background())
	if err != nil {
		return err
	}
	if id == nil {
		fmt.Println("Not signed in")
		return nil
	}

	fmt.Printf("User:      %s\n", describe(id))
	fmt.Printf("ID:        %s\n", id.ID)
	fmt.Printf("Signed in: %s\n", id.SignedInAt.In(ctx.Location).Format("2006-01-02 15:04"))
	if id.ExpiresAt != nil {
		fmt.Printf("Expires:   %s\n", id.ExpiresAt.In(ctx.Location).Format("2006-01-02 15:04"))
	}
	return nil
}
