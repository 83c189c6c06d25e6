package mailer

import "fmt"

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// HTML is optional; Text is the fallback body.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// WelcomeJob builds the signup welcome email for a new user.
func WelcomeJob(to, username string) EmailJob {
	name := username
	if name == "" {
		name = "there"
	}
	return EmailJob{
		To:      to,
		Subject: "Welcome to MarketMapper!",
		Text: fmt.Sprintf("Hi %s,\n\n"+
			"Your MarketMapper account is ready. Head to your dashboard to run your "+
			"first market analysis.\n\n— The MarketMapper team", name),
	}
}
