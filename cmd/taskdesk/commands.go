package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vthunder/taskdesk/internal/app"
	"github.com/vthunder/taskdesk/internal/config"
	"github.com/vthunder/taskdesk/internal/integrations/notion"
	"github.com/vthunder/taskdesk/internal/logging"
	"github.com/vthunder/taskdesk/internal/mcp"
	"github.com/vthunder/taskdesk/internal/tasks"
)

// cli holds flags shared by every subcommand.
type cli struct {
	envFiles []string
	debug    bool
}

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "taskdesk",
		Short: "Notion task board tools from the command line",
		Long: `taskdesk runs the same tools the MCP server exposes, one call per
invocation, and prints the JSON result envelope.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Init(c.debug)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}

	rootCmd.PersistentFlags().StringSliceVar(&c.envFiles, "env-file", nil, "Env files to load (default .env)")
	rootCmd.PersistentFlags().BoolVarP(&c.debug, "debug", "d", false, "Enable debug logging")

	rootCmd.AddCommand(
		c.toolsCommand(),
		c.callCommand(),
		c.shortcut("overdue", "List open tasks past their due date", "get_overdue_tasks"),
		c.shortcut("reminders", "List open tasks due tomorrow", "send_reminders"),
		c.shortcut("report", "Summarize the board by status and priority", "generate_daily_report"),
		c.shortcut("schema", "Show the task database's properties", "check_database_schema"),
		c.emailCommand(),
		c.databasesCommand(),
		c.pageCommand(),
	)
	return rootCmd
}

func (c *cli) load() (*app.App, error) {
	cfg, err := config.Load(c.envFiles...)
	if err != nil {
		return nil, err
	}
	if c.debug {
		cfg.Debug = true
	}
	return app.New(cfg)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (c *cli) toolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the available tools and their arguments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.load()
			if err != nil {
				return err
			}
			printTools(cmd.OutOrStdout(), a.Server)
			return nil
		},
	}
}

func printTools(w io.Writer, s *mcp.Server) {
	for _, name := range s.ToolNames() {
		def, _ := s.Def(name)
		fmt.Fprintf(w, "%s\n  %s\n", name, def.Description)
		required := make(map[string]bool, len(def.Required))
		for _, r := range def.Required {
			required[r] = true
		}
		props := make([]string, 0, len(def.Properties))
		for p := range def.Properties {
			props = append(props, p)
		}
		sort.Strings(props)
		for _, p := range props {
			mark := ""
			if required[p] {
				mark = " (required)"
			}
			fmt.Fprintf(w, "    %s%s: %s\n", p, mark, def.Properties[p].Description)
		}
	}
}

func (c *cli) callCommand() *cobra.Command {
	var rawJSON string

	cmd := &cobra.Command{
		Use:   "call <tool> [key=value ...]",
		Short: "Call a tool with key=value arguments or a JSON object",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.load()
			if err != nil {
				return err
			}
			def, ok := a.Server.Def(args[0])
			if !ok {
				return fmt.Errorf("unknown tool %q (see 'taskdesk tools')", args[0])
			}
			toolArgs, err := parseArgs(def, rawJSON, args[1:])
			if err != nil {
				return err
			}
			return run(cmd, a.Server, args[0], toolArgs)
		},
	}
	cmd.Flags().StringVar(&rawJSON, "json", "", "Arguments as a JSON object; key=value pairs override it")
	return cmd
}

// parseArgs merges a JSON object and key=value pairs into tool arguments,
// rejecting keys the tool does not declare.
func parseArgs(def mcp.ToolDef, rawJSON string, pairs []string) (map[string]any, error) {
	out := map[string]any{}
	if rawJSON != "" {
		if err := json.Unmarshal([]byte(rawJSON), &out); err != nil {
			return nil, fmt.Errorf("--json: %w", err)
		}
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("argument %q is not key=value", pair)
		}
		out[key] = value
	}
	for key := range out {
		if _, ok := def.Properties[key]; !ok {
			return nil, fmt.Errorf("unknown argument %q", key)
		}
	}
	return out, nil
}

// run calls a tool and prints its result. An error envelope makes the
// command fail after printing it.
func run(cmd *cobra.Command, s *mcp.Server, tool string, args map[string]any) error {
	ctx, cancel := signalContext()
	defer cancel()

	out, err := s.Call(ctx, tool, args)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	var envelope tasks.Result
	if err := json.Unmarshal([]byte(out), &envelope); err == nil && envelope.Status == tasks.ResultError {
		return fmt.Errorf("%s: %s", envelope.ErrorKind, envelope.Message)
	}
	return nil
}

func (c *cli) shortcut(use, short, tool string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.load()
			if err != nil {
				return err
			}
			return run(cmd, a.Server, tool, nil)
		},
	}
}

func (c *cli) emailCommand() *cobra.Command {
	var (
		create   bool
		assignee string
		priority string
	)

	cmd := &cobra.Command{
		Use:   "email [file]",
		Short: "Classify an email and extract its meeting and task (stdin when no file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.load()
			if err != nil {
				return err
			}
			if a.Email == nil {
				return errors.New("email tools need GROQ_API_KEY")
			}

			var text []byte
			if len(args) == 1 {
				text, err = os.ReadFile(args[0])
			} else {
				text, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read email: %w", err)
			}

			toolArgs := map[string]any{"email_text": string(text)}
			tool := "process_email"
			if create {
				tool = "create_tasks_from_email"
				if assignee != "" {
					toolArgs["assignee"] = assignee
				}
				if priority != "" {
					toolArgs["priority"] = priority
				}
			}
			return run(cmd, a.Server, tool, toolArgs)
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "Create tasks for what was extracted")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee email for created tasks")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority for created tasks")
	return cmd
}

func (c *cli) databasesCommand() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "databases",
		Short: "List databases shared with the integration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.load()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			found, err := notion.Paginate(ctx, func(ctx context.Context, cursor string) ([]notion.Object, string, bool, error) {
				res, err := a.Notion.Search(ctx, notion.SearchParams{
					Query:       query,
					Filter:      &notion.SearchFilter{Property: "object", Value: "database"},
					StartCursor: cursor,
				})
				if err != nil {
					return nil, "", false, err
				}
				return res.Results, res.NextCursor, res.HasMore, nil
			})
			if err != nil {
				return fmt.Errorf("search databases: %w", err)
			}

			w := cmd.OutOrStdout()
			for i := range found {
				db := &found[i]
				mark := " "
				if db.ID == a.Config.Notion.DatabaseID {
					mark = "*"
				}
				fmt.Fprintf(w, "%s %s  %s\n", mark, db.ID, db.GetTitle())
			}
			if len(found) == 0 {
				fmt.Fprintln(w, "no databases shared with this integration")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only databases whose title matches")
	return cmd
}

func (c *cli) pageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "page <page-id>",
		Short: "Print every property of a page as text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.load()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			page, err := a.Notion.GetPage(ctx, args[0])
			if err != nil {
				return err
			}
			printPage(cmd.OutOrStdout(), page)
			return nil
		},
	}
}

func printPage(w io.Writer, page *notion.Object) {
	fmt.Fprintf(w, "%s  %s\n", page.ID, page.GetTitle())
	names := make([]string, 0, len(page.Properties))
	for name := range page.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, page.GetPropertyText(name))
	}
}
