package main

import (
	"fmt"
	"os"

	"github.com/newsdesk/newsdesk/internal/authors"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/seed"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load authors, posts, pages and ads from a YAML file",
	Long: `Seed writes the records of a YAML file through the regular services.
Records that already exist (matched by email, slug or title) are skipped,
so the same file can be applied repeatedly.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	fh, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer fh.Close()
	f, err := seed.Parse(fh)
	if err != nil {
		return err
	}
	a := appFrom(cmd)
	s := &seed.Seeder{Authors: a.Authors, Posts: a.Posts, Sections: a.Sections, Pages: a.Pages, Ads: a.Ads}
	rep, err := s.Apply(cmd.Context(), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %v\nskipped %v\n", rep.Created, rep.Skipped)
	return nil
}

var adminFlags struct {
	name     string
	email    string
	password string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an approved admin, or promote an existing author",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := appFrom(cmd).Authors.EnsureAdmin(cmd.Context(), adminFlags.name, adminFlags.email, adminFlags.password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s (%s)\n", a.Email, a.ID)
		return nil
	},
}

var approveAs string

var approveCmd = &cobra.Command{
	Use:   "approve <email>",
	Short: "Approve a pending author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := appFrom(cmd).Authors
		admin, err := svc.GetByEmail(cmd.Context(), approveAs)
		if err != nil {
			return fmt.Errorf("admin %s: %w", approveAs, err)
		}
		if admin.Role != models.RoleAdmin {
			return fmt.Errorf("%s is not an admin", approveAs)
		}
		target, err := svc.GetByEmail(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if _, err := svc.Review(cmd.Context(), models.PrincipalOf(admin), target.ID, authors.DecisionApprove, "approved from newsdeskctl"); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "approved %s\n", target.Email)
		return nil
	},
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&adminFlags.name, "name", "Administrator", "display name")
	f.StringVar(&adminFlags.email, "email", "", "login email")
	f.StringVar(&adminFlags.password, "password", os.Getenv("NEWSDESK_ADMIN_PASSWORD"), "password (defaults to $NEWSDESK_ADMIN_PASSWORD)")
	_ = createAdminCmd.MarkFlagRequired("email")

	approveCmd.Flags().StringVar(&approveAs, "as", "", "email of the approving admin")
	_ = approveCmd.MarkFlagRequired("as")
}
