package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Signin(ctx context.Context) error
	Signout(ctx context.Context) error
	Submit(ctx context.Context) error
	Sync(ctx context.Context) error
	SubmitRandom(ctx context.Context, count int) error
	List(ctx context.Context) error
	Show(ctx context.Context, view string) error
	Export(ctx context.Context, view string) error
}

// runREPL reads one command per line and dispatches it. Handlers report
// their own errors; the loop only stops on EOF or exit/quit.
//
//	Not signed in: help, signup, signin, exit
//	Signed in:     help, submit, random [n], sync, list, show <view>, export <view>, signout, exit
//
// A view is daily, weekly, monthly or yearly.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "ww %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		arg := func(def string) string {
			if len(args) > 0 {
				return args[0]
			}
			return def
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: submit, random [n], sync, (l)ist, show <daily|weekly|monthly|yearly>, export <view>, signout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: signup, signin, exit")
			}

		case "signup", "register":
			_ = a.Signup(ctx)

		case "signin", "login":
			_ = a.Signin(ctx)

		case "signout", "logout":
			_ = a.Signout(ctx)

		case "submit":
			_ = a.Submit(ctx)

		case "random":
			n := 1
			if _, err := fmt.Sscan(arg("1"), &n); err != nil || n < 1 {
				fmt.Fprintln(w, "usage: random [count]")
				continue
			}
			_ = a.SubmitRandom(ctx, n)

		case "sync":
			_ = a.Sync(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			_ = a.Show(ctx, arg("daily"))

		case "export":
			_ = a.Export(ctx, arg("daily"))

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
