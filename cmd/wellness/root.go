package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/noah-isme/wellness-client/internal/app"
	"github.com/noah-isme/wellness-client/pkg/config"
)

// sessionRequest is what the root flags ask of a session.
type sessionRequest struct {
	envFile string
	stats   bool
	// stderr receives toasts.
	stderr io.Writer
}

// opener builds the session for one invocation.
type opener func(req sessionRequest) (*app.App, error)

func defaultOpener(req sessionRequest) (*app.App, error) {
	var files []string
	if req.envFile != "" {
		files = append(files, req.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if req.stats {
		cfg.Metrics.Enabled = true
	}
	return app.New(cfg, app.Options{Output: req.stderr})
}

// cli carries the state shared by every command of one invocation.
type cli struct {
	open    opener
	envFile string
	stats   bool
	session *app.App
}

// report dumps the session metrics: the Prometheus textfile when one is
// configured and the snapshot when --stats is set.
func (c *cli) report(w io.Writer) error {
	if c.session == nil || c.session.Metrics == nil {
		return nil
	}
	if path := c.session.Config.Metrics.File; path != "" {
		if err := c.session.Metrics.WriteTextfile(path); err != nil {
			return err
		}
	}
	if !c.stats {
		return nil
	}
	fmt.Fprintln(w, "session stats")
	return renderRecord(w, c.session.Metrics.Snapshot())
}

func (c *cli) close() {
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
}

func run(ctx context.Context, args []string, open opener, stdin io.Reader, stdout, stderr io.Writer) error {
	c := &cli{open: open}
	defer c.close()

	root := &cobra.Command{
		Use:           "wellness",
		Short:         "Command line client for the school wellness platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			session, err := c.open(sessionRequest{envFile: c.envFile, stats: c.stats, stderr: cmd.ErrOrStderr()})
			if err != nil {
				return fmt.Errorf("starting session: %w", err)
			}
			c.session = session
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "path to a .env file")
	root.PersistentFlags().BoolVar(&c.stats, "stats", false, "print request and cache statistics to stderr when done")

	root.AddCommand(
		loginCmd(c),
		logoutCmd(c),
		whoamiCmd(c),
		studentsCmd(c),
		casesCmd(c),
		goalsCmd(c),
		assessmentsCmd(c),
		observationsCmd(c),
		alertsCmd(c),
		bookingsCmd(c),
		webinarsCmd(c),
		dashboardCmd(c),
		uploadCmd(c),
		exportsCmd(c),
	)

	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if reportErr := c.report(stderr); err == nil {
		err = reportErr
	}
	return err
}
