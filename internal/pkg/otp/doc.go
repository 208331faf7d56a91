// Package otp generates the numeric one-time passcodes delivered to recipients.
//
// Codes are drawn uniformly from [0, 10^length) using crypto/rand and are
// zero padded to the requested length, so "004217" is as likely as "913370".
// Length bounds are a configuration concern; the generator only rejects
// lengths it cannot represent.
package otp
