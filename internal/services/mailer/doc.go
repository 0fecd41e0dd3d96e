// Package mailer delivers rendered QSL cards by email.
//
// Messages are assembled as raw MIME with the card image attached and handed
// to a Sender. The SES sender posts them through Amazon SES v2; the noop
// sender only logs, for dry runs.
package mailer
