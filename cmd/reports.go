package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/isdestimator/internal/estimator"
	"github.com/cwbudde/isdestimator/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	reportsStore  storeFlags
	showJSON      bool
	keepLast      int
	olderThanDays int
	forceClean    bool
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage stored reports",
	Long: `Manage the reports cached by estimate and serve, including listing,
showing and cleaning old reports.`,
}

var listReportsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored reports",
	Long:  `Display all stored reports with key, family, problem, fastest algorithm and age.`,
	RunE:  runListReports,
}

var showReportCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show a stored report",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowReport,
}

var cleanReportsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old reports",
	Long: `Delete old reports based on retention policy.
You can specify how many reports to keep or delete reports older than N days.`,
	RunE: runCleanReports,
}

func init() {
	rootCmd.AddCommand(reportsCmd)

	reportsCmd.AddCommand(listReportsCmd)
	reportsCmd.AddCommand(showReportCmd)
	reportsCmd.AddCommand(cleanReportsCmd)

	reportsStore.bind(reportsCmd.PersistentFlags(), "fs")

	showReportCmd.Flags().BoolVar(&showJSON, "json", false, "Print the stored JSON")

	cleanReportsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the N newest reports (0 = keep all)")
	cleanReportsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete reports older than N days (0 = no age limit)")
	cleanReportsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func openReportsStore(cmd *cobra.Command) (store.Store, error) {
	st, err := reportsStore.open(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to open report store: %w", err)
	}
	if st == nil {
		return nil, errors.New("reports need a store, use --store fs or --store sqlite")
	}
	return st, nil
}

func runListReports(cmd *cobra.Command, args []string) error {
	st, err := openReportsStore(cmd)
	if err != nil {
		return err
	}
	defer store.CloseIfSupported(st)

	infos, err := st.List()
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No reports found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tFAMILY\tPROBLEM\tFASTEST\tCREATED")
	fmt.Fprintln(w, "---\t------\t-------\t-------\t-------")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortKey(info.Key),
			info.Family,
			info.Problem,
			info.Fastest,
			humanize.Time(info.CreatedAt),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nTotal reports: %d\n", len(infos))
	return nil
}

func runShowReport(cmd *cobra.Command, args []string) error {
	st, err := openReportsStore(cmd)
	if err != nil {
		return err
	}
	defer store.CloseIfSupported(st)

	r, err := st.Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if showJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintf(out, "Key: %s\n", r.Key)
	fmt.Fprintf(out, "Created: %s (%s)\n", r.CreatedAt.Format(time.DateTime), humanize.Time(r.CreatedAt))
	fmt.Fprintf(out, "%s (%s)\n\n", r.Estimate.Problem, r.Estimate.ComplexityType)
	return r.Estimate.WriteTable(out, estimator.DefaultTableOptions())
}

func runCleanReports(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	st, err := openReportsStore(cmd)
	if err != nil {
		return err
	}
	defer store.CloseIfSupported(st)

	infos, err := st.List()
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No reports to clean.")
		return nil
	}

	toDelete := selectReportsForDeletion(infos, keepLast, olderThanDays)
	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No reports match deletion criteria.")
		return nil
	}

	fmt.Fprintf(out, "Found %d report(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Fprintf(out, "  - %s (%s, %s)\n", shortKey(info.Key), info.Problem, info.CreatedAt.Format(time.DateTime))
	}

	if !forceClean {
		fmt.Fprint(out, "\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Fscanln(cmd.InOrStdin(), &response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	deleted, failed := 0, 0
	for _, info := range toDelete {
		if err := st.Delete(info.Key); err != nil {
			slog.Error("Failed to delete report", "key", info.Key, "error", err)
			failed++
			continue
		}
		slog.Info("Deleted report", "key", info.Key)
		deleted++
	}

	fmt.Fprintf(out, "\nDeleted %d report(s), %d failed.\n", deleted, failed)
	return nil
}

// selectReportsForDeletion returns the reports older than olderThanDays
// together with all but the keepLast newest, oldest first. Zero disables
// either rule.
func selectReportsForDeletion(infos []store.ReportInfo, keepLast int, olderThanDays int) []store.ReportInfo {
	sorted := slices.Clone(infos)
	slices.SortFunc(sorted, func(a, b store.ReportInfo) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	var cutoff time.Time
	if olderThanDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -olderThanDays)
	}
	excess := 0
	if keepLast > 0 {
		excess = max(0, len(sorted)-keepLast)
	}

	var toDelete []store.ReportInfo
	for i, info := range sorted {
		if i < excess || (olderThanDays > 0 && info.CreatedAt.Before(cutoff)) {
			toDelete = append(toDelete, info)
		}
	}
	return toDelete
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12] + "..."
	}
	return key
}
