// Package cli provides the interactive acctkeeper command-line client.
//
// It wires configuration, the vault, and the account and fill services into
// a REPL. Typical flow: unlock (or create) the vault with a master password,
// add accounts, then use fill and otp to reveal credentials for one account
// at a time. The vault locks itself after the configured idle period.
//
// Commands:
//   - unlock / lock / status
//   - list, add, edit, delete
//   - fill, otp, stage, loggedin
//   - autolock, autofill
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
