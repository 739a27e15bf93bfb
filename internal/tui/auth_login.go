package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"nathanbeddoewebdev/xostats/internal/xoapi"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user cancels a form.
var ErrAborted = errors.New("aborted by user")

// LoginForm asks for the XO address and an authentication token. The
// server prompt is prefilled with server and skipped when it is already
// a valid address.
func LoginForm(server string) (string, string, error) {
	accessible := os.Getenv("ACCESSIBLE") != ""

	server = strings.TrimSpace(server)
	var token string

	tokenField := huh.NewInput().
		Title("Authentication token").
		Description("Create one in XO under User > Authentication tokens").
		EchoMode(huh.EchoModePassword).
		Value(&token).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("token cannot be empty")
			}
			return nil
		})

	var fields []huh.Field
	if _, err := xoapi.Endpoint(server); err != nil {
		fields = append(fields, huh.NewInput().
			Title("Xen Orchestra URL").
			Placeholder("https://xo.example.com").
			Value(&server).
			Validate(func(s string) error {
				_, err := xoapi.Endpoint(s)
				return err
			}))
	}
	fields = append(fields, tokenField)

	form := huh.NewForm(huh.NewGroup(fields...)).WithAccessible(accessible)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", "", ErrAborted
		}
		return "", "", err
	}

	return strings.TrimSpace(server), strings.TrimSpace(token), nil
}
