// Package cli implements the commands of the feed client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iudanet/feedhub/internal/client/api"
	"github.com/iudanet/feedhub/internal/client/auth"
	"github.com/iudanet/feedhub/internal/client/iocli"
)

// ErrUnknownCommand is returned by Run for a command it does not know
var ErrUnknownCommand = errors.New("unknown command")

type Cli struct {
	io      iocli.IO
	api     *api.Client
	session *auth.Service
}

func New(console iocli.IO, apiClient *api.Client, session *auth.Service) *Cli {
	return &Cli{
		io:      console,
		api:     apiClient,
		session: session,
	}
}

// Run выполняет команду; args не включают имя команды
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "signup":
		return c.runSignup(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "sessions":
		return c.runSessions(ctx)
	case "set-status":
		return c.runSetStatus(ctx, args)
	case "posts":
		return c.runPosts(ctx, args)
	case "post":
		return c.runPost(ctx, args)
	case "create":
		return c.runCreate(ctx)
	case "edit":
		return c.runEdit(ctx, args)
	case "delete":
		return c.runDelete(ctx, args)
	case "watch":
		return c.runWatch(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

// token возвращает токен сессии или подсказку выполнить login
func (c *Cli) token(ctx context.Context) (string, error) {
	token, err := c.session.Token(ctx)
	if errors.Is(err, auth.ErrNotAuthenticated) {
		return "", fmt.Errorf("not authenticated. Please run 'feedhub login' first")
	}
	return token, err
}

// serverError добавляет подсказку к ошибкам, после которых нужен повторный вход
func serverError(err error) error {
	if api.IsUnauthorized(err) {
		return fmt.Errorf("%w\nYour session was rejected by the server. Please run 'feedhub login' again", err)
	}
	return err
}

// requireArg returns args[0] or a usage error
func requireArg(args []string, usage string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("missing argument. Usage: feedhub %s", usage)
	}
	return strings.TrimSpace(args[0]), nil
}

func PrintUsage(w io.Writer) {
	usage := []string{
		"Feedhub Client",
		"",
		"Usage:",
		"  feedhub [OPTIONS] COMMAND [ARGS]",
		"",
		"Options:",
		"  --version                    Show version information",
		"  --server URL                 Server URL (default: http://localhost:8080)",
		"  --db PATH                    Path to local session database (default: feedhub-client.db)",
		"",
		"Environment:",
		"  FEEDHUB_SERVER               Server URL, overridden by --server",
		"  FEEDHUB_CLIENT_DB            Session database path, overridden by --db",
		"",
		"Commands:",
		"  signup                  Create a new account",
		"  login                   Login to server",
		"  logout                  Forget the local session",
		"  status                  Show session and your status message",
		"  sessions                List saved sessions of all servers",
		"  set-status <text>       Change your status message",
		"  posts [page]            List the feed, newest first",
		"  post <id>               Show a single post",
		"  create                  Create a post with an image",
		"  edit <id>               Edit your post",
		"  delete <id>             Delete your post",
		"  watch                   Print post notifications until interrupted",
		"",
		"Examples:",
		"  feedhub signup",
		"  feedhub login",
		"  feedhub posts 2",
		"  feedhub set-status 'Out of office'",
		"  feedhub --server https://feed.example.com watch",
	}
	for _, line := range usage {
		_, _ = fmt.Fprintln(w, line)
	}
}
