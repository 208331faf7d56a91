// Package mail defines the contract for sending email and an SMTP
// implementation built on go-mail.
package mail
