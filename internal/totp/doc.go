// Package totp computes RFC 6238 time-based one-time codes (HMAC-SHA1,
// 30-second step, 6 digits) from base32 shared secrets, and validates
// secrets before they are stored.
//
// Code generation is lenient: the secret is uppercased and every character
// outside A-Z and 2-7 is discarded before decoding. Validation is strict and
// is what the account editor runs before saving a secret.
package totp
