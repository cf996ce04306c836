package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/registrar/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db     *sql.DB
	usrSvc user.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  createuser -username USERNAME -name NAME -type student|teacher|admin - create a user")
	fmt.Println("  resetpassword -username USERNAME - reset user's password")
}

// readPassword prompts for a password; an empty one prints the command usage.
func readPassword(cmd *flag.FlagSet) (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createUserCmd := flag.NewFlagSet("createuser", flag.ContinueOnError)
	createUserUname := createUserCmd.String("username", "", "The user's username (the numeric student ID for students). The password will be prompted next.")
	createUserName := createUserCmd.String("name", "", "The user's full name.")
	createUserType := createUserCmd.String("type", user.TypeAdmin.String(), "One of student, teacher or admin.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "createuser":
		if err := createUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createUserUname == "" || *createUserName == "" {
			createUserCmd.Usage()
			return errHelp
		}
		typ, err := user.ParseType(*createUserType)
		if err != nil {
			return err
		}
		pwd, err := readPassword(createUserCmd)
		if err != nil {
			return err
		}
		return cli.createUser(*createUserUname, pwd, typ, *createUserName)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := readPassword(resetPasswordCmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	default:
		cli.printUsage()
		return errHelp
	}
}
