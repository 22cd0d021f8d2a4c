package domain

// EmailMessage is what the OTP service hands to a mail sender.
type EmailMessage struct {
	To       string
	From     string
	FromName string
	Subject  string
	Text     string
	HTML     string
}
