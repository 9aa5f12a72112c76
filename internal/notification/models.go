// internal/notification/models.go

package notification

// Recipient identifies who a notification is delivered to
type Recipient struct {
	UserID string
	Name   string
	Email  string
	Phone  *string
}

// EmailMessage is a single outbound email
type EmailMessage struct {
	To        string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

// SMSMessage is a single outbound text message
type SMSMessage struct {
	To   string
	Body string
}

// PushMessage is one notification fanned out to a user's devices
type PushMessage struct {
	Tokens      []string
	Title       string
	Body        string
	Data        map[string]string
	CollapseKey string
}

// PushResult reports how many devices accepted a push and which tokens are
// no longer registered
type PushResult struct {
	Delivered int
	Stale     []string
}
