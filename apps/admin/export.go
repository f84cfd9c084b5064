package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/getskill/core/user"
)

func (cli *commandLine) reset() error {
	if err := cli.db.Reset(context.Background()); err != nil {
		return errors.Wrap(err, "restoring seed data")
	}
	fmt.Fprintln(cli.out, "seed data restored")
	return nil
}

// export prints every stored collection in the snapshot encoding.
func (cli *commandLine) export() error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(cli.db.Export())
}

// report prints the attendance standing and eligibility of every student in the cohort.
func (cli *commandLine) report(cohortID string) error {
	ctx := context.Background()
	cohort, err := cli.catalogSvc.Cohort(ctx, cohortID)
	if err != nil {
		return errors.Wrap(err, "getting cohort")
	}
	students, err := cli.usrSvc.Query(ctx, user.QueryFilter{Roles: []string{user.RoleStudent}, CohortID: cohort.ID})
	if err != nil {
		return errors.Wrap(err, "querying students")
	}

	fmt.Fprintf(cli.out, "%s (%s)\n", cohort.Name, cohort.ID)
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STUDENT\tNAME\tATTENDANCE\tSTREAK\tACADEMIC\tTASKS\tELIGIBLE")
	for _, usr := range students {
		s, err := cli.attendanceSvc.StudentSummary(ctx, usr.ID)
		if err != nil {
			return errors.Wrapf(err, "summarizing %s", usr.ID)
		}
		eligible := "no"
		if s.Eligibility.Eligible {
			eligible = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%d%%\t%d\t%d%%\t%d%%\t%s\n",
			usr.ID, usr.Name, s.Rate, s.Streak, s.AcademicScore, s.TaskCompletion, eligible)
	}
	return w.Flush()
}
