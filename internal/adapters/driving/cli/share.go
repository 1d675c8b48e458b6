package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

var shareCmd = &cobra.Command{
	Use:   "share <user-id> <folder-id>",
	Short: "Share a folder and everything beneath it",
	Long: `Grants a permission on a folder and propagates it to every file and
subfolder. Failures on individual items are reported and do not stop the walk.

Examples:
  sercha-drive share alice 1AbC --type user --email bob@example.com --role reader
  sercha-drive share alice 1AbC --type domain --domain example.com --role writer`,
	Args: cobra.ExactArgs(2),
	RunE: runShare,
}

var unshareCmd = &cobra.Command{
	Use:   "unshare <user-id> <folder-id>",
	Short: "Remove public (anyone) access from a folder tree",
	Args:  cobra.ExactArgs(2),
	RunE:  runUnshare,
}

func init() {
	shareCmd.Flags().String("type", string(domain.PermissionUser), "grantee type: user, group, domain or anyone")
	shareCmd.Flags().String("role", string(domain.RoleReader), "role: reader, commenter or writer")
	shareCmd.Flags().String("email", "", "grantee email for user and group grants")
	shareCmd.Flags().String("domain", "", "grantee domain for domain grants")
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(unshareCmd)
}

func runShare(cmd *cobra.Command, args []string) error {
	if sharingService == nil {
		return notConfigured("sharing")
	}

	perm, err := permissionFromFlags(cmd)
	if err != nil {
		return err
	}

	report, err := sharingService.Share(cmd.Context(), args[0], args[1], perm)
	if err != nil {
		return err
	}
	return printReport(cmd, "Shared", report)
}

func runUnshare(cmd *cobra.Command, args []string) error {
	if sharingService == nil {
		return notConfigured("sharing")
	}

	report, err := sharingService.Unshare(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	return printReport(cmd, "Unshared", report)
}

func permissionFromFlags(cmd *cobra.Command) (domain.Permission, error) {
	typ, _ := cmd.Flags().GetString("type")
	role, _ := cmd.Flags().GetString("role")
	email, _ := cmd.Flags().GetString("email")
	dom, _ := cmd.Flags().GetString("domain")

	perm := domain.Permission{
		Type:         domain.PermissionType(typ),
		Role:         domain.PermissionRole(role),
		EmailAddress: email,
		Domain:       dom,
	}

	switch perm.Type {
	case domain.PermissionUser, domain.PermissionGroup:
		if email == "" {
			return perm, fmt.Errorf("%w: --email is required for %s grants", domain.ErrInvalidInput, typ)
		}
	case domain.PermissionDomain:
		if dom == "" {
			return perm, fmt.Errorf("%w: --domain is required for domain grants", domain.ErrInvalidInput)
		}
	case domain.PermissionAnyone:
	default:
		return perm, fmt.Errorf("%w: unknown grantee type %q", domain.ErrInvalidInput, typ)
	}

	switch perm.Role {
	case domain.RoleReader, domain.RoleCommenter, domain.RoleWriter:
	default:
		return perm, fmt.Errorf("%w: unsupported role %q", domain.ErrInvalidInput, role)
	}
	return perm, nil
}

func printReport(cmd *cobra.Command, verb string, report domain.PropagationReport) error {
	cmd.Printf("%s %d items.\n", verb, report.NodesVisited-len(report.Failures))
	if report.OK() {
		return nil
	}

	ids := make([]string, 0, len(report.Failures))
	for id := range report.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		cmd.Printf("  failed %s: %s\n", id, report.Failures[id])
	}
	return fmt.Errorf("%d of %d items failed", len(report.Failures), report.NodesVisited)
}
