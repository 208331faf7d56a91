// Package clock provides the time source for expiry and rate-limit windows.
//
// Production code depends on Clocker instead of calling time.Now directly, so
// tests can drive time with a Manual clock.
package clock
