package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/smukkama/factory-monitor/internal/aggregation"
	"github.com/smukkama/factory-monitor/internal/auth"
	"github.com/smukkama/factory-monitor/internal/clock"
	"github.com/smukkama/factory-monitor/internal/database"
	"github.com/smukkama/factory-monitor/internal/report"
	"github.com/smukkama/factory-monitor/internal/store"
	"github.com/smukkama/factory-monitor/internal/telemetry"
	"github.com/smukkama/factory-monitor/pkg/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "factoryctl",
		Short:         "Offline reports over the factory dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			telemetry.SetupLogging("warn", "console")
		},
	}

	cmd.AddCommand(newSummaryCommand())
	cmd.AddCommand(newExportCommand())
	cmd.AddCommand(newCanCommand())
	cmd.AddCommand(newRolesCommand())
	return cmd
}

func loadAggregator(ctx context.Context) (*aggregation.Aggregator, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	clk := clock.Fixed{At: cfg.Data.ReferenceDate.Add(12 * time.Hour)}
	return aggregation.NewAggregator(st, clk, cfg.Metrics.Windows, cfg.Metrics.Alerts), st, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

type summary struct {
	Stats       aggregation.DashboardStats    `json:"stats"`
	OEE         aggregation.OEE               `json:"oee"`
	Uptime      float64                       `json:"uptimePercent"`
	ScrapRate   float64                       `json:"scrapRate"`
	Lines       []aggregation.LinePerformance `json:"lines"`
	Alerts      []aggregation.Alert           `json:"alerts"`
	Trend       []aggregation.TrendPoint      `json:"trend"`
	GeneratedAt string                        `json:"generatedAt"`
}

func newSummaryCommand() *cobra.Command {
	var table bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print dashboard KPIs, line performance and alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			agg, _, err := loadAggregator(commandContext(cmd))
			if err != nil {
				return err
			}
			if table {
				return printSummary(cmd.OutOrStdout(), agg)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summary{
				Stats:       agg.DashboardStats(),
				OEE:         agg.OEE(),
				Uptime:      agg.UptimePercentage(),
				ScrapRate:   agg.ScrapRate(),
				Lines:       agg.LinePerformance(),
				Alerts:      agg.Alerts(),
				Trend:       agg.ProductionTrend(),
				GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			})
		},
	}

	cmd.Flags().BoolVar(&table, "table", false, "Print an aligned table instead of JSON")
	return cmd
}

func printSummary(out io.Writer, agg *aggregation.Aggregator) error {
	stats := agg.DashboardStats()
	oee := agg.OEE()

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Machines\t%d (%d running, %d idle, %d stopped, %d maintenance)\n",
		stats.TotalMachines, stats.RunningMachines, stats.IdleMachines, stats.StoppedMachines, stats.MaintenanceMachines)
	fmt.Fprintf(tw, "Active downtimes\t%d\n", stats.ActiveDowntimes)
	fmt.Fprintf(tw, "Average yield\t%.2f%%\n", stats.AverageYield)
	fmt.Fprintf(tw, "Uptime\t%.1f%%\n", agg.UptimePercentage())
	fmt.Fprintf(tw, "Scrap rate\t%.1f%%\n", agg.ScrapRate())
	fmt.Fprintf(tw, "OEE\t%.1f%% (A %.1f / P %.1f / Q %.1f)\n", oee.OEE, oee.Availability, oee.Performance, oee.Quality)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "LINE\tMACHINES\tRUNNING\tOUTPUT\tYIELD\tUPTIME")
	for _, l := range agg.LinePerformance() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.1f%%\t%.1f%%\n",
			l.LineName, l.TotalMachines, l.RunningMachines, l.TotalOutput, l.AverageYield, l.UptimePercent)
	}
	fmt.Fprintln(tw)

	alerts := agg.Alerts()
	fmt.Fprintf(tw, "ALERTS (%d)\t\n", len(alerts))
	for _, a := range alerts {
		fmt.Fprintf(tw, "[%s]\t%s\t%s\n", strings.ToUpper(a.Type), a.Title, a.Message)
	}
	return tw.Flush()
}

func newExportCommand() *cobra.Command {
	var (
		output string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the dashboard figures to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			agg, st, err := loadAggregator(commandContext(cmd))
			if err != nil {
				return err
			}

			production := st.ProductionLogs()
			if limit > 0 && limit < len(production) {
				production = production[:limit]
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := report.Write(f, agg, production); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d production rows)\n", output, len(production))
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "out", "factory-report.xlsx", "Destination workbook")
	cmd.Flags().IntVar(&limit, "limit", 500, "Most recent production logs to include (0 for all)")
	return cmd
}

func newCanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "can <role> <action>",
		Short: "Check whether a role holds a permission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := database.Role(strings.ToUpper(args[0]))
			action := auth.Permission(args[1])
			if auth.HasPermission(role, action) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s may %s\n", role, action)
				return nil
			}
			return fmt.Errorf("%s may not %s", role, action)
		},
	}
}

func newRolesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List roles and their permissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, role := range auth.Roles() {
				perms := auth.Permissions(role)
				names := make([]string, len(perms))
				for i, p := range perms {
					names[i] = string(p)
				}
				fmt.Fprintf(tw, "%s\t%s\n", role, strings.Join(names, ", "))
			}
			return tw.Flush()
		},
	}
}
