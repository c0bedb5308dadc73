package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/astravon/portal/core"
	"github.com/astravon/portal/core/user"
)

// addUser updates or creates a verified user.User
func (cli *commandLine) addUser(firstName, lastName, mail, pwd string, isAdmin bool) error {
	ctx := context.Background()
	mail = core.CleanString(mail, true /* lower */)
	now := time.Now().UTC()

	usr, err := cli.usrRepo.GetUserByMail(ctx, mail)
	exists := err == nil
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{
			FirstName: core.CleanString(firstName),
			LastName:  core.CleanString(lastName),
			Mail:      mail,
			Roles:     []string{user.RoleMember},
			CreatedAt: now,
		}
	}
	if isAdmin {
		usr.Roles = user.AdminRoles
	}
	usr.IsVerified = true
	usr.UpdatedAt = now
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	return err
}
