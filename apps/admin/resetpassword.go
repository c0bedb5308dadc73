package main

import (
	"context"
)

func (cli *commandLine) resetPassword(mail, pwd string) error {
	_, err := cli.usrSvc.SetPassword(context.Background(), mail, pwd)
	return err
}
