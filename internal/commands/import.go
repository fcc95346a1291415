package commands

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schoolbank/passbook/internal/importer"
)

func newStudentImportCommand(opts *options) *cobra.Command {
	var format, taluka, district, school string
	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import students from roster CSV files",
		Long: `Import students from roster CSV files.

With no arguments, every CSV in <root>/import/ is imported and moved to
import/processed/ once its students are added. Formats:

  register   the file written by "student list --csv"
  classlist  Roll No, Name, Date of Birth (dd/mm/yyyy), Class`,
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			reg := importer.DefaultRegistry()
			p := reg.Get(format)
			if p == nil {
				formats := reg.Formats()
				sort.Strings(formats)
				return fmt.Errorf("unknown import format %q (have %s)", format, strings.Join(formats, ", "))
			}
			d := importer.Defaults{SchoolName: school, Taluka: taluka, District: district}
			if d.SchoolName == "" {
				d.SchoolName = rt.cfg.School.Name
			}

			scanned := len(args) == 0
			paths := args
			if scanned {
				files, err := importer.Scan(rt.root)
				if err != nil {
					return err
				}
				if len(files) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import.")
					return nil
				}
				paths = make([]string, len(files))
				for i, f := range files {
					paths[i] = f.Path
				}
			}

			for _, path := range paths {
				students, err := importer.ParseFile(p, path, d)
				if err != nil {
					return err
				}
				created, err := rt.svc.ImportStudents(cmd.Context(), students)
				if err != nil {
					return fmt.Errorf("%s: %w", filepath.Base(path), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d students from %s\n", len(created), filepath.Base(path))
				if scanned {
					if err := importer.MarkProcessed(rt.root, filepath.Base(path)); err != nil {
						return err
					}
				}
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&format, "format", "register", "roster format: register or classlist")
	cmd.Flags().StringVar(&school, "school", "", "school name for rows without one (default: the project school)")
	cmd.Flags().StringVar(&taluka, "taluka", "", "taluka for rows without one")
	cmd.Flags().StringVar(&district, "district", "", "district for rows without one")
	return cmd
}
