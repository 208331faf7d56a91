// Package sms defines the contract for sending text messages and ships the
// gateway clients the service can be configured with.
//
// Clients only move an already rendered body to a phone number; what the body
// says is decided by the caller.
package sms
