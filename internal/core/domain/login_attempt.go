package domain

import "fmt"

const (
	// DefaultErrorCode is used for failed attempts whose reply carried no
	// error code.
	DefaultErrorCode = "unknown_error"
	// DefaultErrorMessage is used for failed attempts whose reply carried no
	// error message.
	DefaultErrorMessage = "Unknown Error"
)

// LoginAttempt is the immutable record of one authentication or signup flow
// with a relying party.
type LoginAttempt struct {
	ID           string
	WalletID     string
	WebsiteName  string
	WebsiteURL   string
	Signup       bool
	Success      bool
	ErrorCode    string
	ErrorMessage string
	CreatedAt    int64
}

// ActionLog is a human readable entry describing something done with a
// wallet.
type ActionLog struct {
	WalletID string `json:"walletId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// ActionLog returns the entry describing the login attempt.
func (a LoginAttempt) ActionLog() ActionLog {
	title := fmt.Sprintf("Login to %s", a.WebsiteURL)
	if a.Signup {
		title = fmt.Sprintf("Signup to %s", a.WebsiteURL)
	}

	content := fmt.Sprintf("%s was successful", title)
	if !a.Success {
		content = fmt.Sprintf("%s has failed", title)
	}

	return ActionLog{
		WalletID: a.WalletID,
		Title:    title,
		Content:  content,
	}
}
