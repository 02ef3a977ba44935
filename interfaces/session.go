package interfaces

import (
	"context"

	"github.com/operatorhq/mailops/internal/models"
)

// ListOptions narrows a mailbox listing.
type ListOptions struct {
	Limit      int
	UnreadOnly bool
	FromFilter string
}

// SearchOptions describe a mailbox search. Empty fields are ignored.
type SearchOptions struct {
	From       string
	Subject    string
	Keyword    string
	UnreadOnly bool
	Limit      int
}

// ReadSession is an authenticated mailbox handle. The caller owns it for
// the duration of one operation and must Close it.
type ReadSession interface {
	ListMessages(ctx context.Context, opts ListOptions) ([]*models.EmailMessage, error)
	ReadMessage(ctx context.Context, id string) (*models.EmailMessage, error)
	SearchMessages(ctx context.Context, opts SearchOptions) ([]*models.EmailMessage, error)
	ListFolders(ctx context.Context) ([]string, error)
	MoveMessage(ctx context.Context, id string, folder string) error
	MarkRead(ctx context.Context, id string) error
	Close() error
}

// SendSession is an authenticated submission handle.
type SendSession interface {
	Send(ctx context.Context, email *models.OutgoingEmail) error
	Close() error
}

// ReadConn is a connected but not yet authenticated read-protocol
// connection. Exactly one of Login or AuthenticateBearer is invoked by the
// session factory; a failed bearer attempt may be retried once on the same
// connection after a token refresh.
type ReadConn interface {
	Login(username, secret string) error
	AuthenticateBearer(identity, accessToken string) error
	Session() ReadSession
	Close() error
}

// SendConn is the submission-protocol counterpart of ReadConn.
type SendConn interface {
	Login(username, secret string) error
	AuthenticateBearer(identity, accessToken string) error
	Session() SendSession
	Close() error
}

// ReadConnector dials the read protocol for an account. Dial and TLS
// failures are connection errors, never authentication errors.
type ReadConnector interface {
	Connect(ctx context.Context, account *models.Account) (ReadConn, error)
}

// SendConnector dials the submission protocol for an account.
type SendConnector interface {
	Connect(ctx context.Context, account *models.Account) (SendConn, error)
}
