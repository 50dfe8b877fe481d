package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jobtrackapp/go-jobtrack-client/applications"
	"github.com/jobtrackapp/go-jobtrack-client/internal/utils"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Manage job applications",
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications, newest first",
	RunE:  runAppsList,
}

var appsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one application in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppsShow,
}

var appsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an application",
	RunE:  runAppsAdd,
}

var appsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an application",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppsUpdate,
}

var appsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an application",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppsDelete,
}

var draftFlags struct {
	company        string
	position       string
	status         string
	appliedDate    string
	jobDescription string
	contactEmail   string
	contactPhone   string
	companyWebsite string
	notes          string
	resume         string
	interviewDate  string
	interviewTime  string
	interviewType  string
}

func addDraftFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&draftFlags.company, "company", "", "company name")
	cmd.Flags().StringVar(&draftFlags.position, "position", "", "position title")
	cmd.Flags().StringVar(&draftFlags.status, "status", string(applications.StatusApplied), "status (Applied, Ghosted, Interviewing, Assessment, Offered)")
	cmd.Flags().StringVar(&draftFlags.appliedDate, "applied-date", "", "applied date, YYYY-MM-DD (defaults to today)")
	cmd.Flags().StringVar(&draftFlags.jobDescription, "description", "", "job description")
	cmd.Flags().StringVar(&draftFlags.contactEmail, "contact-email", "", "recruiter contact email")
	cmd.Flags().StringVar(&draftFlags.contactPhone, "contact-phone", "", "recruiter contact phone")
	cmd.Flags().StringVar(&draftFlags.companyWebsite, "website", "", "company website")
	cmd.Flags().StringVar(&draftFlags.notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&draftFlags.interviewDate, "interview-date", "", "interview date, YYYY-MM-DD (with --status Interviewing)")
	cmd.Flags().StringVar(&draftFlags.interviewTime, "interview-time", "", "interview time, HH:MM")
	cmd.Flags().StringVar(&draftFlags.interviewType, "interview-type", "", "interview type (Technical, HR, Behavioral, Final, Phone Screen, System Design)")
}

func init() {
	addDraftFlags(appsAddCmd)
	appsAddCmd.Flags().StringVar(&draftFlags.resume, "resume", "", "path to a resume file to upload")
	_ = appsAddCmd.MarkFlagRequired("company")
	_ = appsAddCmd.MarkFlagRequired("position")

	addDraftFlags(appsUpdateCmd)

	appsCmd.AddCommand(appsListCmd, appsShowCmd, appsAddCmd, appsUpdateCmd, appsDeleteCmd)
	rootCmd.AddCommand(appsCmd)
}

func draftFromFlags() applications.Draft {
	appliedDate := draftFlags.appliedDate
	if appliedDate == "" {
		appliedDate = time.Now().Format("2006-01-02")
	}

	draft := applications.Draft{
		Company:     draftFlags.company,
		Position:    draftFlags.position,
		AppliedDate: appliedDate,
		Status:      applications.Status(draftFlags.status),
	}

	setOptional := func(target **string, value string) {
		if value != "" {
			*target = utils.Ptr(value)
		}
	}
	setOptional(&draft.JobDescription, draftFlags.jobDescription)
	setOptional(&draft.ContactEmail, draftFlags.contactEmail)
	setOptional(&draft.ContactPhone, draftFlags.contactPhone)
	setOptional(&draft.CompanyWebsite, draftFlags.companyWebsite)
	setOptional(&draft.Notes, draftFlags.notes)
	setOptional(&draft.InterviewDate, draftFlags.interviewDate)
	setOptional(&draft.InterviewTime, draftFlags.interviewTime)
	setOptional(&draft.InterviewType, draftFlags.interviewType)
	return draft
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid application ID %q", arg)
	}
	return id, nil
}

func runAppsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(cmd.Context()); err != nil {
		return err
	}

	apps, err := a.apps.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		fmt.Println("No applications yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMPANY\tPOSITION\tAPPLIED\tSTATUS")
	for _, app := range apps {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", app.ID, app.Company, app.Position, app.AppliedDate, app.Status)
	}
	return w.Flush()
}

func runAppsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(cmd.Context()); err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	app, err := a.apps.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Printf("%s — %s\n", app.Company, app.Position)
	fmt.Printf("Status: %s (applied %s)\n", app.Status, app.AppliedDate)
	if v := utils.Value(app.InterviewDate); v != "" {
		fmt.Printf("Interview: %s %s (%s)\n", v, utils.Value(app.InterviewTime), utils.Value(app.InterviewType))
	}
	if v := utils.Value(app.ContactEmail); v != "" {
		fmt.Printf("Contact: %s %s\n", v, utils.Value(app.ContactPhone))
	}
	if v := utils.Value(app.CompanyWebsite); v != "" {
		fmt.Printf("Website: %s\n", v)
	}
	if v := utils.Value(app.Resume); v != "" {
		fmt.Printf("Resume: %s%s\n", a.endpoints.MediaBase(), v)
	}
	if v := utils.Value(app.Notes); v != "" {
		fmt.Printf("Notes: %s\n", v)
	}
	return nil
}

func runAppsAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(cmd.Context()); err != nil {
		return err
	}

	var resume *applications.ResumeFile
	if draftFlags.resume != "" {
		file, err := os.Open(draftFlags.resume)
		if err != nil {
			return errors.Wrap(err, "open resume")
		}
		defer func() { _ = file.Close() }()
		resume = &applications.ResumeFile{Name: filepath.Base(draftFlags.resume), Content: file}
	}

	if err := a.apps.Create(cmd.Context(), draftFromFlags(), resume); err != nil {
		return err
	}
	fmt.Println("Application added.")
	return nil
}

func runAppsUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(cmd.Context()); err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	app, err := a.apps.Update(cmd.Context(), id, draftFromFlags())
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s — %s (%s).\n", app.Company, app.Position, app.Status)
	return nil
}

func runAppsDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(cmd.Context()); err != nil {
		return err
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := a.apps.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Println("Application deleted.")
	return nil
}
