package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/operatorhq/mailops/interfaces"
	"github.com/operatorhq/mailops/internal/logger"
	"github.com/operatorhq/mailops/internal/models"
	"github.com/operatorhq/mailops/services"
	"github.com/operatorhq/mailops/services/accounts"
	"github.com/operatorhq/mailops/services/oauth"
)

// Every command prints exactly one JSON document on stdout. Failures are
// reported inside the document rather than as process errors so callers
// always get structured output.

func newApp(svcs *services.Services, log logger.Logger) *cli.App {
	return &cli.App{
		Name:  "mailops",
		Usage: "Read and send emails across configured accounts",
		Commands: []*cli.Command{
			listCommand(svcs),
			readCommand(svcs),
			searchCommand(svcs),
			sendCommand(svcs),
			draftCommand(svcs),
			foldersCommand(svcs),
			moveCommand(svcs),
			markReadCommand(svcs),
			oauthInitCommand(svcs),
			oauthCallbackCommand(svcs),
			oauthStatusCommand(svcs),
		},
	}
}

func accountFlag(defaultValue string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "account",
		Value: defaultValue,
		Usage: "Account (gmail, hotmail, ac-creteil)",
	}
}

func printJSON(payload any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(payload)
}

func printError(err error) error {
	return printJSON(map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

// withReadSession opens an authenticated read session, runs fn, and takes
// care of closing and error reporting.
func withReadSession(c *cli.Context, svcs *services.Services, fn func(ctx context.Context, session interfaces.ReadSession) (any, error)) error {
	ctx := c.Context

	session, err := svcs.SessionFactory.OpenReadSession(ctx, c.String("account"))
	if err != nil {
		return printError(err)
	}
	defer session.Close()

	payload, err := fn(ctx, session)
	if err != nil {
		return printError(err)
	}
	return printJSON(payload)
}

func listCommand(svcs *services.Services) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List emails",
		Flags: []cli.Flag{
			accountFlag(accounts.AccountGmail),
			&cli.BoolFlag{Name: "unread", Usage: "Only show unread emails"},
			&cli.IntFlag{Name: "limit", Value: 10, Usage: "Number of emails to show"},
			&cli.StringFlag{Name: "from", Usage: "Filter by sender"},
		},
		Action: func(c *cli.Context) error {
			return withReadSession(c, svcs, func(ctx context.Context, session interfaces.ReadSession) (any, error) {
				emails, err := session.ListMessages(ctx, interfaces.ListOptions{
					Limit:      c.Int("limit"),
					UnreadOnly: c.Bool("unread"),
					FromFilter: c.String("from"),
				})
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"success": true,
					"count":   len(emails),
					"emails":  emails,
					"account": c.String("account"),
				}, nil
			})
		},
	}
}

func readCommand(svcs *services.Services) *cli.Command {
	return &cli.Command{
		Name:  "read",
		Usage: "Read a specific email",
		Flags: []cli.Flag{
			accountFlag(accounts.AccountGmail),
			&cli.StringFlag{Name: "id", Required: true, Usage: "Email ID to read"},
		},
		Action: func(c *cli.Context) error {
			return withReadSession(c, svcs, func(ctx context.Context, session interfaces.ReadSession) (any, error) {
				email, err := session.ReadMessage(ctx, c.String("id"))
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"success": true,
					"email":   email,
					"account": c.String("account"),
				}, nil
			})
		},
	}
}

func searchCommand(svcs *services.Services) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search emails",
		Flags: []cli.Flag{
			accountFlag(accounts.AccountGmail),
			&cli.StringFlag{Name: "from", Usage: "Search by sender"},
			&cli.StringFlag{Name: "subject", Usage: "Search by subject"},
			&cli.StringFlag{Name: "keyword", Usage: "Search by keyword in body"},
			&cli.BoolFlag{Name: "unread", Usage: "Only unread emails"},
			&cli.IntFlag{Name: "limit", Value: 10, Usage: "Number of results"},
		},
		Action: func(c *cli.Context) error {
			return withReadSession(c, svcs, func(ctx context.Context, session interfaces.ReadSession) (any, error) {
				emails, err := session.SearchMessages(ctx, interfaces.SearchOptions{
					From:       c.String("from"),
					Subject:    c.String("subject"),
					Keyword:    c.String("keyword"),
					UnreadOnly: c.Bool("unread"),
					Limit:      c.Int("limit"),
				})
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"success": true,
					"count":   len(emails),
					"emails":  emails,
					"account": c.String("account"),
				}, nil
			})
		},
	}
}

func sendCommand(svcs *services.Services) *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "Send an email",
		Flags: []cli.Flag{
			accountFlag(accounts.AccountAcCreteil),
			&cli.StringFlag{Name: "to", Required: true, Usage: "Recipient email"},
			&cli.StringFlag{Name: "subject", Required: true, Usage: "Email subject"},
			&cli.StringFlag{Name: "body", Required: true, Usage: "Email body"},
			&cli.StringFlag{Name: "in-reply-to", Usage: "Message-ID for threading"},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			account := c.String("account")

			creds, err := svcs.SessionFactory.ResolveCredentials(account)
			if err != nil {
				return printError(err)
			}

			session, err := svcs.SessionFactory.OpenSendSession(ctx, account)
			if err != nil {
				return printError(err)
			}
			defer session.Close()

			email := &models.OutgoingEmail{
				FromAddress: creds.Address,
				ToAddress:   c.String("to"),
				Subject:     c.String("subject"),
				BodyText:    c.String("body"),
				InReplyTo:   c.String("in-reply-to"),
			}

			if err := session.Send(ctx, email); err != nil {
				return printError(err)
			}

			return printJSON(map[string]any{
				"success": true,
				"message": fmt.Sprintf("Email sent successfully from %s to %s", email.FromAddress, email.ToAddress),
				"details": map[string]any{
					"from":    email.FromAddress,
					"to":      email.ToAddress,
					"subject": email.Subject,
					"account": account,
				},
			})
		},
	}
}

func draftCommand(svcs *services.Services) *cli.Command {
	return &cli.Command{
		Name:  "draft",
		Usage: "Create a draft for review",
		Flags: []cli.Flag{
			accountFlag(accounts.AccountAcCreteil),
			&cli.StringFlag{Name: "to", Required: true, Usage: "Recipient email"},
			&cli.StringFlag{Name: "subject", Required: true, Usage: "Email subject"},
			&cli.StringFlag{Name: "body", Required: true, Usage: "Email body"},
		},
		Action: func(c *cli.Context) error {
			account := c.String("account")

			creds, err := svcs.SessionFactory.ResolveCredentials(account)
			if err != nil {
				return printError(err)
			}

			return printJSON(map[string]any{
				"success": true,
				"draft": map[string]any{
					"from":         creds.Address,
					"to":           c.String("to"),
					"subject":      c.String("subject"),
					"body":         c.String("body"),
					"account":      account,
					"status":       "PENDING_VALIDATION",
					"instructions": "Review this draft. Reply with 'send' to send, 'edit: [changes]' to modify, or 'cancel' to discard.",
				},
			})
		},
	}
}

func foldersCommand(svcs *services.Services) *cli.Command {
	return &cli.Command{
		Name:  "folders",
		Usage: "List folders",
		Flags: []cli.Flag{accountFlag(accounts.AccountGmail)},
		Action: func(c *cli.Context) error {
			return withReadSession(c, svcs, func(ctx context.Context, session interfaces.ReadSession) (any, error) {
				folders, err := session.ListFolders(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"success": true,
					"folders": folders,
					"account": c.String("account"),
				}, nil
			})
		},
	}
}

func moveCommand(svcs *services.Services) *cli.Command {
	return &cli.Command{
		Name:  "move",
		Usage: "Move email to folder",
		Flags: []cli.Flag{
			accountFlag(accounts.AccountGmail),
			&cli.StringFlag{Name: "id", Required: true, Usage: "Email ID"},
			&cli.StringFlag{Name: "folder", Required: true, Usage: "Destination folder"},
		},
		Action: func(c *cli.Context) error {
			return withReadSession(c, svcs, func(ctx context.Context, session interfaces.ReadSession) (any, error) {
				id := c.String("id")
				folder := c.String("folder")
				if err := session.MoveMessage(ctx, id, folder); err != nil {
					return nil, err
				}
				return map[string]any{
					"success": true,
					"message": fmt.Sprintf("Email %s moved to %s", id, folder),
					"account": c.String("account"),
				}, nil
			})
		},
	}
}

func markReadCommand(svcs *services.Services) *cli.Command {
	return &cli.Command{
		Name:  "mark-read",
		Usage: "Mark email as read",
		Flags: []cli.Flag{
			accountFlag(accounts.AccountGmail),
			&cli.StringFlag{Name: "id", Required: true, Usage: "Email ID"},
		},
		Action: func(c *cli.Context) error {
			return withReadSession(c, svcs, func(ctx context.Context, session interfaces.ReadSession) (any, error) {
				id := c.String("id")
				if err := session.MarkRead(ctx, id); err != nil {
					return nil, err
				}
				return map[string]any{
					"success": true,
					"message": fmt.Sprintf("Email %s marked as read", id),
					"account": c.String("account"),
				}, nil
			})
		},
	}
}

func oauthInitCommand(svcs *services.Services) *cli.Command {
	return &cli.Command{
		Name:  "oauth-init",
		Usage: "Initialize OAuth for the hotmail account",
		Action: func(c *cli.Context) error {
			authURL, err := svcs.OAuthService.AuthorizationURL()
			if err != nil {
				return printError(err)
			}

			return printJSON(map[string]any{
				"success":  true,
				"action":   "OAUTH_INIT",
				"auth_url": authURL,
				"instructions": "1. Open this URL in your browser\n" +
					"2. Sign in with the hotmail account\n" +
					"3. Accept the permissions\n" +
					"4. You will be redirected to a blank page\n" +
					"5. Copy the ENTIRE URL from your browser's address bar\n" +
					"6. Run: mailops oauth-callback --url 'PASTE_URL_HERE'",
			})
		},
	}
}

func oauthCallbackCommand(svcs *services.Services) *cli.Command {
	return &cli.Command{
		Name:  "oauth-callback",
		Usage: "Process OAuth callback",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Required: true, Usage: "Full callback URL from browser"},
		},
		Action: func(c *cli.Context) error {
			code, err := oauth.ParseCallbackURL(c.String("url"))
			if err != nil {
				return printError(err)
			}

			if _, err := svcs.OAuthService.ExchangeCode(c.Context, code); err != nil {
				return printError(err)
			}

			return printJSON(map[string]any{
				"success":     true,
				"message":     "OAuth configured successfully! You can now use hotmail for reading and sending emails.",
				"token_saved": svcs.TokenStore.Status().TokenFile,
			})
		},
	}
}

func oauthStatusCommand(svcs *services.Services) *cli.Command {
	return &cli.Command{
		Name:  "oauth-status",
		Usage: "Check OAuth status",
		Action: func(c *cli.Context) error {
			status := svcs.TokenStore.Status()
			if !status.Configured {
				return printJSON(map[string]any{
					"success": true,
					"status":  "NOT_CONFIGURED",
					"message": "OAuth not configured. Run 'oauth-init' to start.",
				})
			}

			return printJSON(map[string]any{
				"success":           true,
				"status":            "CONFIGURED",
				"saved_at":          status.SavedAt,
				"has_refresh_token": status.HasRefreshToken,
				"token_file":        status.TokenFile,
			})
		},
	}
}
