package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

type Config struct {
	BaseURL       string `json:"base_url"`
	ProjectID     string `json:"project_id"`
	SessionCookie string `json:"session_cookie"` // e.g. "session_token=abc..."
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".intellimanage")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "cli_config.json"), nil
}

func loadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func saveConfig(cfg *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

var rootCmd = &cobra.Command{
	Use:   "intellimanage",
	Short: "IntelliManage CLI",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ---- Login ----

func cmdLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password")
	baseURL := fs.String("base-url", "http://localhost:8080/api", "Platform API base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" || *password == "" {
		return fmt.Errorf("email and password are required")
	}

	body, err := json.Marshal(map[string]string{
		"email":    *email,
		"password": *password,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(*baseURL, "/")+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("login failed: %s", strings.TrimSpace(string(msg)))
	}

	var sessionCookie string
	for _, c := range resp.Cookies() {
		if c.Name == "session_token" {
			sessionCookie = c.Name + "=" + c.Value
			break
		}
	}
	if sessionCookie == "" {
		return fmt.Errorf("no session_token cookie received")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.BaseURL = strings.TrimRight(*baseURL, "/")
	cfg.SessionCookie = sessionCookie
	if err := saveConfig(cfg); err != nil {
		return err
	}

	fmt.Println("Logged in successfully")
	return nil
}

func requireAuthConfig() (*Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" || cfg.SessionCookie == "" {
		return nil, fmt.Errorf("not logged in; run `intellimanage login` first")
	}
	return cfg, nil
}

func doAuthedRequest(cfg *Config, method, path string, body io.Reader) (*http.Response, error) {
	url := strings.TrimRight(cfg.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", cfg.SessionCookie)
	return http.DefaultClient.Do(req)
}

func decodeOK(resp *http.Response, what string, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s failed: %s", what, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ---- Projects ----

func cmdProjects(args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: intellimanage projects [list|use]")
		return nil
	}
	switch args[0] {
	case "list":
		return projectsList()
	case "use":
		return projectsUse(args[1:])
	default:
		fmt.Println("Usage: intellimanage projects [list|use]")
		return nil
	}
}

func projectsList() error {
	cfg, err := requireAuthConfig()
	if err != nil {
		return err
	}
	resp, err := doAuthedRequest(cfg, http.MethodGet, "/projects", nil)
	if err != nil {
		return err
	}

	var projects []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Status      string `json:"status"`
		FounderName string `json:"founder_name"`
	}
	if err := decodeOK(resp, "list projects", &projects); err != nil {
		return err
	}

	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}
	fmt.Println("Projects:")
	for _, p := range projects {
		active := ""
		if cfg.ProjectID == p.ID {
			active = " (active)"
		}
		fmt.Printf("  %s%s\n    ID: %s\n    Status: %s\n    Founder: %s\n", p.Name, active, p.ID, p.Status, p.FounderName)
	}
	return nil
}

func projectsUse(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: intellimanage projects use <project-id>")
	}
	cfg, err := requireAuthConfig()
	if err != nil {
		return err
	}
	cfg.ProjectID = args[0]
	if err := saveConfig(cfg); err != nil {
		return err
	}
	fmt.Println("Active project set to", args[0])
	return nil
}

func requireProject(cfg *Config) (string, error) {
	if cfg.ProjectID == "" {
		return "", fmt.Errorf("no active project; run `intellimanage projects use <project-id>` first")
	}
	return cfg.ProjectID, nil
}

// ---- Sprints ----

func cmdSprints(args []string) error {
	_ = args
	cfg, err := requireAuthConfig()
	if err != nil {
		return err
	}
	projectID, err := requireProject(cfg)
	if err != nil {
		return err
	}

	resp, err := doAuthedRequest(cfg, http.MethodGet, "/projects/"+projectID+"/sprints", nil)
	if err != nil {
		return err
	}

	var sprints []struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		Status    string  `json:"status"`
		StartDate string  `json:"start_date"`
		EndDate   string  `json:"end_date"`
		TaskCount int     `json:"task_count"`
		Progress  float64 `json:"progress"`
	}
	if err := decodeOK(resp, "list sprints", &sprints); err != nil {
		return err
	}

	if len(sprints) == 0 {
		fmt.Println("No sprints found.")
		return nil
	}
	fmt.Println("Sprints:")
	for _, s := range sprints {
		fmt.Printf("  %s [%s]\n    ID: %s\n    Dates: %s .. %s\n    Tasks: %d (%.0f%% done)\n",
			s.Name, s.Status, s.ID, s.StartDate, s.EndDate, s.TaskCount, s.Progress)
	}
	return nil
}

// ---- Tasks ----

func cmdTasks(args []string) error {
	fs := flag.NewFlagSet("tasks", flag.ExitOnError)
	mine := fs.Bool("mine", false, "Only tasks assigned to me")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := requireAuthConfig()
	if err != nil {
		return err
	}
	projectID, err := requireProject(cfg)
	if err != nil {
		return err
	}

	path := "/projects/" + projectID + "/tasks"
	if *mine {
		path += "/me"
	}
	resp, err := doAuthedRequest(cfg, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	var tasks []struct {
		ID           string `json:"id"`
		Title        string `json:"title"`
		Status       string `json:"status"`
		Priority     string `json:"priority"`
		SprintName   string `json:"sprint_name"`
		AssigneeName string `json:"assignee_name"`
	}
	if err := decodeOK(resp, "list tasks", &tasks); err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}
	fmt.Println("Tasks:")
	for _, t := range tasks {
		assignee := t.AssigneeName
		if assignee == "" {
			assignee = "unassigned"
		}
		fmt.Printf("  [%s/%s] %s\n    ID: %s\n    Sprint: %s\n    Assignee: %s\n",
			t.Status, t.Priority, t.Title, t.ID, t.SprintName, assignee)
	}
	return nil
}

// ---- Dashboard ----

func cmdDashboard(args []string) error {
	_ = args
	cfg, err := requireAuthConfig()
	if err != nil {
		return err
	}
	projectID, err := requireProject(cfg)
	if err != nil {
		return err
	}

	resp, err := doAuthedRequest(cfg, http.MethodGet, "/projects/"+projectID+"/dashboard", nil)
	if err != nil {
		return err
	}

	var snap struct {
		ProjectName      string         `json:"project_name"`
		OverallProgress  float64        `json:"overall_progress"`
		TaskDistribution map[string]int `json:"task_distribution"`
		BlockedCount     int            `json:"blocked_tasks_count"`
		OverdueCount     int            `json:"overdue_tasks_count"`
		ActiveSprint     *struct {
			Name     string  `json:"name"`
			Status   string  `json:"status"`
			Progress float64 `json:"progress"`
		} `json:"active_sprint"`
	}
	if err := decodeOK(resp, "dashboard", &snap); err != nil {
		return err
	}

	fmt.Printf("%s\n", snap.ProjectName)
	fmt.Printf("  Overall progress: %.0f%%\n", snap.OverallProgress)
	fmt.Printf("  Blocked tasks:    %d\n", snap.BlockedCount)
	fmt.Printf("  Overdue tasks:    %d\n", snap.OverdueCount)
	if snap.ActiveSprint != nil {
		fmt.Printf("  Active sprint:    %s [%s] %.0f%%\n", snap.ActiveSprint.Name, snap.ActiveSprint.Status, snap.ActiveSprint.Progress)
	}
	if len(snap.TaskDistribution) > 0 {
		fmt.Println("  Distribution:")
		for status, n := range snap.TaskDistribution {
			fmt.Printf("    %-12s %d\n", status, n)
		}
	}
	return nil
}

// ---- Invitations ----

func cmdInvitations(args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: intellimanage invitations [list|accept <id>|reject <id>]")
		return nil
	}
	cfg, err := requireAuthConfig()
	if err != nil {
		return err
	}

	switch args[0] {
	case "list":
		resp, err := doAuthedRequest(cfg, http.MethodGet, "/invitations/me", nil)
		if err != nil {
			return err
		}
		var invs []struct {
			ID            string `json:"id"`
			ProjectName   string `json:"project_name"`
			InvitedByName string `json:"invited_by_name"`
		}
		if err := decodeOK(resp, "list invitations", &invs); err != nil {
			return err
		}
		if len(invs) == 0 {
			fmt.Println("No pending invitations.")
			return nil
		}
		fmt.Println("Pending invitations:")
		for _, inv := range invs {
			fmt.Printf("  %s (from %s)\n    ID: %s\n", inv.ProjectName, inv.InvitedByName, inv.ID)
		}
		return nil
	case "accept", "reject":
		if len(args) < 2 {
			return fmt.Errorf("usage: intellimanage invitations %s <invitation-id>", args[0])
		}
		resp, err := doAuthedRequest(cfg, http.MethodPost, "/invitations/"+args[1]+"/"+args[0], nil)
		if err != nil {
			return err
		}
		if err := decodeOK(resp, args[0]+" invitation", nil); err != nil {
			return err
		}
		fmt.Printf("Invitation %sed\n", args[0])
		return nil
	default:
		fmt.Println("Usage: intellimanage invitations [list|accept <id>|reject <id>]")
		return nil
	}
}

// ---- Cobra command wiring ----

func init() {
	loginCmd := &cobra.Command{
		Use:                "login",
		Short:              "Login to IntelliManage",
		DisableFlagParsing: true, // delegate flag parsing to cmdLogin (uses flag package)
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdLogin(args)
		},
	}

	projectsCmd := &cobra.Command{
		Use:                "projects",
		Short:              "List projects and pick the active one",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdProjects(args)
		},
	}

	sprintsCmd := &cobra.Command{
		Use:                "sprints",
		Short:              "List the active project's sprints",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdSprints(args)
		},
	}

	tasksCmd := &cobra.Command{
		Use:                "tasks",
		Short:              "List the active project's tasks",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdTasks(args)
		},
	}

	dashboardCmd := &cobra.Command{
		Use:                "dashboard",
		Short:              "Show the active project's dashboard",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdDashboard(args)
		},
	}

	invitationsCmd := &cobra.Command{
		Use:                "invitations",
		Short:              "List and respond to invitations",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdInvitations(args)
		},
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireAuthConfig()
			if err != nil {
				return err
			}
			resp, err := doAuthedRequest(cfg, http.MethodGet, "/auth/me", nil)
			if err != nil {
				return err
			}
			var user struct {
				ID       string `json:"id"`
				Email    string `json:"email"`
				FullName string `json:"full_name"`
				Role     string `json:"role"`
			}
			if err := decodeOK(resp, "whoami", &user); err != nil {
				return err
			}
			fmt.Println("Current user:")
			fmt.Printf("  ID:    %s\n", user.ID)
			fmt.Printf("  Name:  %s\n", user.FullName)
			fmt.Printf("  Email: %s\n", user.Email)
			fmt.Printf("  Role:  %s\n", user.Role)
			return nil
		},
	}

	rootCmd.AddCommand(loginCmd, projectsCmd, sprintsCmd, tasksCmd, dashboardCmd, invitationsCmd, whoamiCmd)
}
