package mailer

import (
	"os"

	"pbs/src/lib"
	awslib "pbs/src/lib/aws"

	"github.com/aws/aws-sdk-go-v2/aws"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// NewMailerMessage delivers a transactional email through the configured
// backend. MAILER_BACKEND=ses routes through SES, anything else uses SMTP.
// Callers treat delivery as best-effort and never fail a request on error.
func NewMailerMessage(input *lib.SendMailInput) error {
	backend := os.Getenv("MAILER_BACKEND")
	if backend == "ses" {
		dest := &sestypes.Destination{
			ToAddresses: input.To,
		}
		content := &sestypes.Content{Data: aws.String(input.Body)}
		body := &sestypes.Body{Text: content}
		if input.Html {
			body = &sestypes.Body{Html: content}
		}
		message := &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(input.Subject)},
			Body:    body,
		}
		return awslib.SESSendMessage(aws.String(input.From), dest, message)
	}
	return lib.SendMail(input)
}
