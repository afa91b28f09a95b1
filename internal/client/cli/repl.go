package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isUnlocked() bool
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	Status(ctx context.Context) error
	List(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context) error
	Delete(ctx context.Context) error
	Fill(ctx context.Context) error
	OTP(ctx context.Context) error
	Stage(ctx context.Context) error
	LoggedIn(ctx context.Context) error
	AutoLock(ctx context.Context) error
	AutoFill(ctx context.Context) error
}

const (
	helpLocked   = "Available commands: unlock, status, autolock, autofill, exit"
	helpUnlocked = "Available commands: (l)ist, add, edit, delete, fill, otp, stage, loggedin, lock, status, autolock, autofill, exit"
)

// runREPL starts a read–eval–print loop over reader.
//
// The first token of each line is the command. Commands that touch accounts
// are refused while the vault is locked. Errors returned by handlers are
// printed and the loop continues. The loop exits on EOF or when the user
// types "exit" or "quit".
//
//	Always:
//	  - help              — show available commands
//	  - unlock            — unlock, or create the vault on first use
//	  - status            — lock state, account count, pending selection
//	  - autolock          — change the auto-lock threshold
//	  - autofill          — toggle one-time code auto-fill
//	  - exit | quit       — leave the program
//
//	Unlocked:
//	  - list | l          — list accounts
//	  - add, edit, delete — manage accounts
//	  - fill              — reveal a login and select it for a one-time code
//	  - otp               — reveal the current one-time code of an account
//	  - stage             — the login now asks for a one-time code
//	  - loggedin          — the login completed
//	  - lock              — lock the vault
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ak %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var handler func(context.Context) error
		needsUnlock := true

		switch cmd {
		case "help":
			if a.isUnlocked() {
				printlnFn(helpUnlocked)
			} else {
				printlnFn(helpLocked)
			}
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "unlock":
			handler, needsUnlock = a.Unlock, false
		case "status":
			handler, needsUnlock = a.Status, false
		case "autolock":
			handler, needsUnlock = a.AutoLock, false
		case "autofill":
			handler, needsUnlock = a.AutoFill, false
		case "lock":
			handler = a.Lock
		case "l", "list":
			handler = a.List
		case "add":
			handler = a.Add
		case "edit":
			handler = a.Edit
		case "delete":
			handler = a.Delete
		case "fill":
			handler = a.Fill
		case "otp":
			handler = a.OTP
		case "stage":
			handler = a.Stage
		case "loggedin":
			handler = a.LoggedIn

		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		if needsUnlock && !a.isUnlocked() {
			printlnFn("Vault is locked. Use 'unlock' first.")
			continue
		}
		if err := handler(ctx); err != nil {
			printlnFn("Error:", err)
		}
	}
}
