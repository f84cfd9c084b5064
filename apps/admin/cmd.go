package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/getskill/core"
	"github.com/trezcool/getskill/core/attendance"
	"github.com/trezcool/getskill/core/catalog"
	"github.com/trezcool/getskill/core/user"
	dummydb "github.com/trezcool/getskill/storage/database/dummy"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf          *core.Config
	db            *dummydb.DB
	usrRepo       user.Repository
	usrSvc        user.Service
	catalogSvc    catalog.Service
	attendanceSvc attendance.Service
	out           io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  createdb                                      - create the postgres role and database if missing")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                        - run a goose command against the postgres store")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -name NAME [-role ROLE] [-cohort ID] - create or update a user")
	fmt.Fprintln(cli.out, "  setpassword -email EMAIL                      - set a user's password")
	fmt.Fprintln(cli.out, "  reset                                         - restore the seed data")
	fmt.Fprintln(cli.out, "  export                                        - print the stored collections as JSON")
	fmt.Fprintln(cli.out, "  report -cohort ID                             - print a cohort's attendance report")
}

// promptPassword reads a password from the terminal without echoing it.
func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserRole := addUserCmd.String("role", user.RoleStudent, "One of student, mentor or admin.")
	addUserCohort := addUserCmd.String("cohort", "", "The cohort of a student.")

	setPasswordCmd := flag.NewFlagSet("setpassword", flag.ContinueOnError)
	setPasswordEmail := setPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	reportCmd := flag.NewFlagSet("report", flag.ContinueOnError)
	reportCohort := reportCmd.String("cohort", "", "The cohort to report on.")

	switch args[1] {
	case "createdb":
		if err := createDBFunc(context.Background(), cli.conf); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "database %q ready\n", cli.conf.Database.Name)
		return nil

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		usr, err := cli.addUser(*addUserName, *addUserEmail, *addUserRole, *addUserCohort, pwd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "saved %s %s (%s)\n", usr.Role, usr.Email, usr.ID)
		return nil

	case "setpassword":
		if err := setPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setPasswordEmail == "" {
			setPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			setPasswordCmd.Usage()
			return errHelp
		}
		return cli.setPassword(*setPasswordEmail, pwd)

	case "reset":
		return cli.reset()

	case "export":
		return cli.export()

	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *reportCohort == "" {
			reportCmd.Usage()
			return errHelp
		}
		return cli.report(*reportCohort)

	default:
		cli.printUsage()
		return errHelp
	}
}
