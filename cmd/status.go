package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cwbudde/isdestimator/internal/estimator"
	"github.com/cwbudde/isdestimator/internal/server"
	"github.com/spf13/cobra"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or specific job",
	Long: `Queries the server for estimation jobs.
If no job-id is provided, lists all jobs.
If job-id is provided, shows the progress and, once finished, the report of that job.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	if len(args) == 0 {
		return listJobs(cmd.OutOrStdout(), client, fmt.Sprintf("%s/api/v1/estimates", serverURL))
	}
	jobID := args[0]
	return getJobStatus(cmd.OutOrStdout(), client, fmt.Sprintf("%s/api/v1/estimates/%s", serverURL, jobID), jobID)
}

func fetchJSON(client *http.Client, url string, v any) (int, error) {
	resp, err := client.Get(url)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("server returned error: %s", body)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func listJobs(out io.Writer, client *http.Client, url string) error {
	var jobs []server.Job
	if _, err := fetchJSON(client, url, &jobs); err != nil {
		return err
	}

	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs found")
		return nil
	}

	fmt.Fprintf(out, "Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		fmt.Fprintf(out, "Job ID: %s\n", job.ID)
		fmt.Fprintf(out, "  State: %s\n", job.State)
		fmt.Fprintf(out, "  Problem: %s\n", describeConfig(job.Config))
		fmt.Fprintf(out, "  Progress: %d/%d\n", job.Done, job.Total)
		if job.Report != nil && job.Report.Fastest != "" {
			fmt.Fprintf(out, "  Fastest: %s\n", job.Report.Fastest)
		}
		fmt.Fprintln(out)
	}

	return nil
}

func getJobStatus(out io.Writer, client *http.Client, url, jobID string) error {
	var job server.Job
	if code, err := fetchJSON(client, url, &job); err != nil {
		if code == http.StatusNotFound {
			return fmt.Errorf("job not found: %s", jobID)
		}
		return err
	}

	fmt.Fprintf(out, "Job: %s\n", job.ID)
	fmt.Fprintf(out, "State: %s\n", job.State)
	fmt.Fprintf(out, "Problem: %s\n", describeConfig(job.Config))
	fmt.Fprintf(out, "Key: %s\n", job.Key)
	if job.Cached {
		fmt.Fprintln(out, "Served from store")
	}

	end := time.Now()
	if job.EndTime != nil {
		end = *job.EndTime
	}
	fmt.Fprintf(out, "Progress: %d/%d algorithms, %s elapsed\n", job.Done, job.Total, end.Sub(job.StartTime).Round(time.Millisecond))

	if job.Error != "" {
		fmt.Fprintf(out, "\nError: %s\n", job.Error)
	}
	if job.Report != nil {
		fmt.Fprintln(out)
		opts := estimator.DefaultTableOptions()
		opts.ShowTildeO = job.Config.TildeO
		if err := job.Report.WriteTable(out, opts); err != nil {
			return err
		}
	}
	return nil
}

func describeConfig(c server.JobConfig) string {
	var s string
	switch c.Family {
	case server.FamilyMQ:
		s = fmt.Sprintf("MQ(n=%d, m=%d, q=%d)", c.N, c.M, c.Q)
	default:
		s = fmt.Sprintf("SD(n=%d, k=%d, w=%d)", c.N, c.K, c.W)
	}
	if c.MemoryBound != nil {
		s += fmt.Sprintf(", memory bound %g", *c.MemoryBound)
	}
	return s
}
