package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ganbatte-hq/ganbatte/internal/client"
	"github.com/ganbatte-hq/ganbatte/internal/models"
)

const pollInterval = time.Second

// Theme holds the color scheme for the watch display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

var watchPlain bool

var watchCmd = &cobra.Command{
	Use:   "watch <job-id>",
	Short: "Watch a job move through its delivery lifecycle",
	Long: `Follow a job's status live until it is delivered or cancelled.

By default renders an interactive progress bar. With --plain, streams status
changes over a WebSocket and prints one line per change, which suits logs and
non-TTY environments.

Examples:
  ganbatte watch abc123
  ganbatte watch abc123 --plain`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "stream status lines instead of the progress UI")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchPlain {
		return watchStream(args[0])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	job, err := apiClient.GetJob(ctx, args[0])
	cancel()
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	return runWatchUI(apiClient, job)
}

// watchStream follows the server's WebSocket status feed until the job
// reaches a terminal status.
func watchStream(id string) error {
	return apiClient.WatchJob(context.Background(), id, func(job models.DeliveryJob) error {
		fmt.Printf("%s  %s  due %s\n",
			time.Now().Format("15:04:05"), job.Status, job.DeadlineDisplay)
		return nil
	})
}

// tickMsg triggers polling the job status
type tickMsg time.Time

// jobUpdateMsg carries the updated job data
type jobUpdateMsg struct {
	job *models.DeliveryJob
	err error
}

// watchModel is the bubbletea model for job tracking.
type watchModel struct {
	client   *client.Client
	jobID    string
	job      *models.DeliveryJob
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
	err      error
}

// newWatchModel creates a new watch model.
func newWatchModel(c *client.Client, job *models.DeliveryJob) watchModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return watchModel{
		client:   c,
		jobID:    models.MustRecordIDString(job.ID),
		job:      job,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command (start polling).
func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		return m, m.fetchJob()

	case jobUpdateMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("failed to fetch job status: %w", msg.err)
			m.done = true
			return m, tea.Quit
		}

		m.job = msg.job

		if m.job.Status.Terminal() {
			m.done = true
			if m.job.Status == models.JobStatusCancelled {
				m.err = fmt.Errorf("job was cancelled")
			}
			return m, tea.Quit
		}

		// Continue polling for live jobs
		return m, tickCmd()

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the watch display.
func (m watchModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m watchModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	if m.job == nil {
		return "Loading job status...\n"
	}

	step, total := m.job.Status.Step()
	var pct float64
	if step >= 0 {
		pct = float64(step) / float64(total-1)
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.job.Status))
	progressBar := m.progress.ViewAs(pct)
	deadline := fmt.Sprintf("due %s", m.job.DeadlineDisplay)
	hint := m.theme.hintStyle().Render("Press q to stop watching")

	return fmt.Sprintf("%s %s %s\n%s\n%s\n",
		status, progressBar, deadline,
		strings.Join(m.job.Parts, ", "),
		hint)
}

// finalView renders the completion message.
func (m watchModel) finalView() string {
	if m.quitting {
		msg := fmt.Sprintf("\nJob %s continues without you.\nUse 'ganbatte jobs %s' to check status.\n",
			m.jobID, m.jobID)
		return m.theme.hintStyle().Render(msg)
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ %s\n", m.err))
	}

	return m.theme.completedStyle().Render(fmt.Sprintf("✓ Delivered: %s\n", strings.Join(m.job.Parts, ", ")))
}

// fetchJob fetches the current job status from the server.
// Runs in a separate goroutine (command) to avoid blocking Update().
func (m watchModel) fetchJob() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		job, err := m.client.GetJob(ctx, m.jobID)
		return jobUpdateMsg{job: job, err: err}
	}
}

// tickCmd returns a command that sends a tick after the poll interval.
func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// runWatchUI runs the interactive tracking UI for a job.
// Returns nil on success or q/Ctrl+C, error on cancellation or fetch failure.
func runWatchUI(c *client.Client, job *models.DeliveryJob) error {
	model := newWatchModel(c, job)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("watch UI error: %w", err)
	}

	if m, ok := finalModel.(watchModel); ok {
		if m.quitting {
			return nil
		}
		if m.err != nil {
			return m.err
		}
	}

	return nil
}
