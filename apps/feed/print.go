package main

import (
	"strings"

	"github.com/astravon/portal/core/post"
	"github.com/astravon/portal/core/user"
)

func displayName(p *user.Profile) string {
	if p == nil {
		return ""
	}
	if name := strings.TrimSpace(p.FirstName + " " + p.LastName); name != "" {
		return name
	}
	return p.Mail
}

func (cli *commandLine) printFeed(posts []post.Post) {
	if len(posts) == 0 {
		cli.printf("no posts yet\n")
		return
	}
	cli.printf("--- %d posts ---\n", len(posts))
	for _, p := range posts {
		cli.printf("#%d %s (%s)  %d likes, %d comments\n",
			p.ID, p.UserName, p.PublicationDate.Format("2006-01-02 15:04"), p.LikeCount, p.CommentCount)
		cli.printf("    %s\n", p.Content)
		if p.PostURL != "" {
			cli.printf("    %s\n", p.PostURL)
		}
		if p.URLMedia != "" {
			cli.printf("    [media] %s\n", p.URLMedia)
		}
	}
}
