package main

import (
	"context"
	"fmt"

	"github.com/trezcool/registrar/core/user"
)

func (cli *commandLine) createUser(uname, pwd string, typ user.Type, name string) error {
	usr, err := cli.usrSvc.CreateUser(context.Background(), uname, pwd, typ, name)
	if err != nil {
		return err
	}
	fmt.Printf("%s %q created (id %d)\n", usr.Type, usr.Username, usr.ID)
	return nil
}
