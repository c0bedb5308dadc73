package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/astravon/portal/core"
	"github.com/astravon/portal/core/post"
	"github.com/astravon/portal/core/session"
	"github.com/astravon/portal/services/portalapi"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp   = errors.New("help provided")
	errDenied = errors.New("access denied")
)

// portalAPI is the part of the portal REST API the commands use.
type portalAPI interface {
	session.Authenticator
	post.Source
	CreatePost(ctx context.Context, content, postURL string, media *portalapi.Media) (post.Post, error)
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

type command struct {
	usage      string
	capability session.Capability
	run        func(ctx context.Context, cli *commandLine, args []string) error
}

var commands = map[string]command{
	"login":  {usage: "login -mail MAIL                         - sign in; the password is prompted next", run: login},
	"logout": {usage: "logout                                   - sign out", run: logout},
	"whoami": {usage: "whoami                                   - show the signed in user", capability: session.Authenticated, run: whoami},
	"watch":  {usage: "watch [-once]                            - print the feed and follow its changes", run: watch},
	"post":   {usage: "post -content TEXT [-url URL] [-media FILE] - publish a post", capability: session.Authenticated, run: publish},
	"delete": {usage: "delete -id ID                            - delete one of your posts", capability: session.Authenticated, run: deletePost},
	"upload": {usage: "upload -file FILE                        - upload an image (admins)", capability: session.AdminOnly, run: upload},
}

var commandOrder = []string{"login", "logout", "whoami", "watch", "post", "delete", "upload"}

type commandLine struct {
	store  session.Store
	guard  session.Guard
	api    portalAPI
	hubURL string
	origin string
	logger core.Logger
	out    io.Writer
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, args...)
}

func (cli *commandLine) printUsage() {
	cli.printf("Usage:\n")
	for _, name := range commandOrder {
		cli.printf("  %s\n", commands[name].usage)
	}
}

// authorize evaluates the stored session once for the command about to run.
func (cli *commandLine) authorize(c session.Capability) error {
	d := cli.guard.Authorize(cli.store.Load(), c)
	if d.Allowed {
		return nil
	}
	if d.Replace {
		cli.printf("permission denied: this command is reserved to admins\n")
	} else {
		cli.printf("you are not logged in; run \"login -mail MAIL\" first\n")
	}
	return errDenied
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	cmd, ok := commands[args[1]]
	if !ok {
		cli.printUsage()
		return errHelp
	}
	if err := cli.authorize(cmd.capability); err != nil {
		return err
	}
	return cmd.run(ctx, cli, args[2:])
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// promptPassword reads a password from the terminal without echoing it.
func (cli *commandLine) promptPassword() (string, error) {
	cli.printf("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	cli.printf("\n")
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
