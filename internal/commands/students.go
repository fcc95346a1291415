package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/schoolbank/passbook/internal/banking"
	"github.com/schoolbank/passbook/internal/export"
	"github.com/schoolbank/passbook/internal/model"
)

func newStudentCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Manage students (admin)",
	}
	cmd.AddCommand(
		newStudentAddCommand(opts),
		newStudentListCommand(opts),
		newStudentUpdateCommand(opts),
		newStudentDeleteCommand(opts),
		newStudentImportCommand(opts),
	)
	return cmd
}

type studentFlags struct {
	name       string
	dob        string
	class      string
	school     string
	taluka     string
	district   string
	attendance int64
}

func (f *studentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "student name")
	cmd.Flags().StringVar(&f.dob, "dob", "", "date of birth, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.class, "class", "", "class, e.g. 6A")
	cmd.Flags().StringVar(&f.school, "school", "", "school name")
	cmd.Flags().StringVar(&f.taluka, "taluka", "", "taluka")
	cmd.Flags().StringVar(&f.district, "district", "", "district")
	cmd.Flags().Int64Var(&f.attendance, "attendance", 0, "attendance register number")
}

// apply copies the flags that were set onto st.
func (f *studentFlags) apply(cmd *cobra.Command, st *model.Student) error {
	if changed(cmd, "name") {
		st.Name = f.name
	}
	if changed(cmd, "dob") {
		dob, err := parseDay("dob", f.dob, time.UTC)
		if err != nil {
			return err
		}
		st.DOB = dob
	}
	if changed(cmd, "class") {
		st.Class = f.class
	}
	if changed(cmd, "school") {
		st.SchoolName = f.school
	}
	if changed(cmd, "taluka") {
		st.Taluka = f.taluka
	}
	if changed(cmd, "district") {
		st.District = f.district
	}
	if changed(cmd, "attendance") {
		st.AttendanceNumber = f.attendance
	}
	return nil
}

func newStudentAddCommand(opts *options) *cobra.Command {
	var f studentFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a student",
		Args:  cobra.NoArgs,
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			var st model.Student
			if err := f.apply(cmd, &st); err != nil {
				return err
			}
			created, err := rt.svc.AddStudent(cmd.Context(), st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added student %d: %s\n", created.ID, created.Name)
			return nil
		}),
	}
	f.register(cmd)
	return cmd
}

func newStudentListCommand(opts *options) *cobra.Command {
	var search, csvPath string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students",
		Args:  cobra.NoArgs,
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			students, err := rt.svc.SearchStudents(cmd.Context(), search)
			if err != nil {
				return err
			}
			if csvPath != "" {
				if err := export.ToFile(csvPath, func(w io.Writer) error {
					return export.Students(w, students, rt.exportOptions())
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d students to %s\n", len(students), csvPath)
				return nil
			}

			tw := newTable(cmd.OutOrStdout(), "ID", "NAME", "CLASS", "SCHOOL", "ATTENDANCE", "DOB")
			for _, st := range students {
				row(tw, st.ID, st.Name, st.Class, st.SchoolName, st.AttendanceNumber, rt.date(st.DOB))
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name, school or class")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write the list to a CSV file instead")
	return cmd
}

func newStudentUpdateCommand(opts *options) *cobra.Command {
	var f studentFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a student's details",
		Args:  cobra.ExactArgs(1),
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			sid, err := recordID("student", args)
			if err != nil {
				return err
			}
			students, err := rt.svc.ListStudents(cmd.Context())
			if err != nil {
				return err
			}
			var st *model.Student
			for i := range students {
				if students[i].ID == sid {
					st = &students[i]
					break
				}
			}
			if st == nil {
				return fmt.Errorf("student %d: %w", sid, banking.ErrNotFound)
			}
			if err := f.apply(cmd, st); err != nil {
				return err
			}
			if err := rt.svc.UpdateStudent(cmd.Context(), *st); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated student %d\n", sid)
			return nil
		}),
	}
	f.register(cmd)
	return cmd
}

func newStudentDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a student (accounts are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			sid, err := recordID("student", args)
			if err != nil {
				return err
			}
			if err := rt.svc.DeleteStudent(cmd.Context(), sid); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted student %d\n", sid)
			return nil
		}),
	}
}
