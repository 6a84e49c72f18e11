package utils

import "fmt"

func BookingConfirmationEmailBody(name string, date string, timeOfDay string, sessionName string) string {
	session := sessionName
	if session == "" {
		session = "your photography session"
	}
	return fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Thanks for reaching out! We received your inquiry for %s on <b>%s</b> (%s).</p>
<p>We'll get back to you within one business day to confirm the details.</p>
<p>&mdash; The Studio</p>
</body></html>`, name, session, date, timeOfDay)
}

func OrderReceiptEmailBody(name string, productTitle string, amount string, date string, timeOfDay string, orderID uint) string {
	return fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Your payment of <b>%s</b> for <b>%s</b> was received.</p>
<p>Order #%d &middot; %s (%s)</p>
<p>We look forward to seeing you!</p>
<p>&mdash; The Studio</p>
</body></html>`, name, amount, productTitle, orderID, date, timeOfDay)
}

func PasswordResetEmailBody(resetURL string) string {
	return fmt.Sprintf(`<html><body>
<p>We received a request to reset your password.</p>
<p><a href="%s">Click here to choose a new password.</a></p>
<p>The link expires in one hour. If you didn't request this, you can ignore this email.</p>
</body></html>`, resetURL)
}
