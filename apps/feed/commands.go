package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/astravon/portal/core"
	"github.com/astravon/portal/core/post"
	"github.com/astravon/portal/core/session"
	"github.com/astravon/portal/services/portalapi"
	"github.com/astravon/portal/services/realtime"
)

func login(ctx context.Context, cli *commandLine, args []string) error {
	fs := cli.newFlagSet("login")
	mail := fs.String("mail", "", "The account mail address.")
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	if *mail == "" {
		fs.Usage()
		return errHelp
	}
	pwd, err := cli.promptPassword()
	if err != nil {
		return err
	}
	if pwd == "" {
		fs.Usage()
		return errHelp
	}

	s, err := session.SignIn(ctx, cli.api, cli.store, core.CleanString(*mail), pwd)
	if err != nil {
		cli.printf("login failed: %v\n", err)
		return err
	}
	cli.printf("logged in as %s\n", displayName(s.User))
	return nil
}

func logout(ctx context.Context, cli *commandLine, args []string) error {
	if err := session.SignOut(cli.store); err != nil {
		return err
	}
	cli.printf("logged out\n")
	return nil
}

func whoami(ctx context.Context, cli *commandLine, args []string) error {
	s := cli.store.Load()
	cli.printf("%s <%s>", displayName(s.User), s.User.Mail)
	if cli.guard.IsAdmin(s.User) {
		cli.printf(" (admin)")
	}
	cli.printf("\n")
	return nil
}

// watch prints the feed, then follows the realtime channel until ctx is done.
func watch(ctx context.Context, cli *commandLine, args []string) error {
	fs := cli.newFlagSet("watch")
	once := fs.Bool("once", false, "Print the feed once and exit.")
	if err := fs.Parse(args); err != nil {
		return errHelp
	}

	feed := post.NewFeed(cli.api, cli.logger)
	if *once {
		err := feed.Refresh(ctx)
		cli.printFeed(feed.Posts())
		return err
	}

	feed.OnChange(cli.printFeed)
	sub := realtime.NewSubscriber(cli.hubURL, cli.origin, cli.logger)
	sub.OnConnect(func() { feed.Signal(ctx) })
	sub.On(post.EventRefreshPosts, func() { feed.Signal(ctx) })

	feed.Signal(ctx)
	sub.Start(ctx)
	<-ctx.Done()
	sub.Close()
	feed.Wait()
	return nil
}

func publish(ctx context.Context, cli *commandLine, args []string) error {
	fs := cli.newFlagSet("post")
	content := fs.String("content", "", "The post text.")
	postURL := fs.String("url", "", "A link attached to the post.")
	mediaPath := fs.String("media", "", "An image or video file attached to the post.")
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	if strings.TrimSpace(*content) == "" {
		fs.Usage()
		return errHelp
	}

	var media *portalapi.Media
	if *mediaPath != "" {
		f, err := os.Open(*mediaPath)
		if err != nil {
			return errors.Wrap(err, "opening media")
		}
		defer f.Close()
		media = &portalapi.Media{Filename: filepath.Base(*mediaPath), Content: f}
	}

	p, err := cli.api.CreatePost(ctx, *content, *postURL, media)
	if err != nil {
		cli.printf("could not publish: %v\n", err)
		return err
	}
	cli.printf("post #%d published\n", p.ID)
	return nil
}

func deletePost(ctx context.Context, cli *commandLine, args []string) error {
	fs := cli.newFlagSet("delete")
	id := fs.Int("id", 0, "The post id.")
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	if *id <= 0 {
		fs.Usage()
		return errHelp
	}

	feed := post.NewFeed(cli.api, cli.logger)
	if err := feed.Delete(ctx, *id); err != nil {
		cli.printf("could not delete post #%d: %v\n", *id, err)
		return err
	}
	cli.printf("post #%d deleted\n", *id)
	return nil
}

func upload(ctx context.Context, cli *commandLine, args []string) error {
	fs := cli.newFlagSet("upload")
	path := fs.String("file", "", "The image to upload.")
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	if *path == "" {
		fs.Usage()
		return errHelp
	}

	f, err := os.Open(*path)
	if err != nil {
		return errors.Wrap(err, "opening file")
	}
	defer f.Close()

	url, err := cli.api.Upload(ctx, filepath.Base(*path), f)
	if err != nil {
		cli.printf("upload failed: %v\n", err)
		return err
	}
	cli.printf("%s\n", url)
	return nil
}
