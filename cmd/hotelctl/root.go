package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/app"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/dispatch"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/mutation"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/pkg/utilities"
)

// cli carries what every command needs. app is built in PersistentPreRunE
// so flags are already parsed.
type cli struct {
	in  *bufio.Reader
	out io.Writer

	apiURL    string
	outFormat string
	state     string
	stateFile string

	logger *zap.Logger
	app    *app.App
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	c := &cli{
		in:        bufio.NewReader(stdin),
		out:       stdout,
		outFormat: utilities.GetEnv("HOTELIT_OUT", "text"),
	}

	root := &cobra.Command{
		Use:           "hotelctl",
		Short:         "Operator CLI for the HotelIT asset backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.close()
		},
	}
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "backend base URL (env HOTELIT_API_URL)")
	root.PersistentFlags().StringVar(&c.outFormat, "out", c.outFormat, "output format: json|text")
	root.PersistentFlags().StringVar(&c.state, "state", "", "session state backend: file|postgres|redis|memory (env STATE_BACKEND)")
	root.PersistentFlags().StringVar(&c.stateFile, "state-file", "", "session file for the file backend (env STATE_FILE)")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.scopeCmd(),
		c.hotelsCmd(),
		resourceCmd(c, "devices", "Hotel devices", func(a *app.App) resource { return wrap(a.Devices.Resource()) }),
		c.maintenancesCmd(),
		resourceCmd(c, "users", "Console accounts", func(a *app.App) resource { return wrap(a.Users.Resource()) }),
		resourceCmd(c, "staff", "Hotel staff", func(a *app.App) resource { return wrap(a.Staff.Resource()) }),
		resourceCmd(c, "audit", "Audit log (read-only)", func(a *app.App) resource { return wrap(a.Audit.Resource()) }),
		c.alertsCmd(),
		c.reportCmd(),
	)
	return root
}

func (c *cli) open(ctx context.Context) error {
	lcfg := utilities.ConfigFromEnv()
	lcfg.Level = utilities.GetEnv("LOG_LEVEL", "warn")
	lcfg.Stderr = true
	lg, err := utilities.Init(lcfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	c.logger = lg

	cfg := app.ConfigFromEnv()
	if c.apiURL != "" {
		cfg.Dispatch.BaseURL = c.apiURL
	}
	if c.state != "" {
		cfg.Session.Backend = c.state
	}
	if c.stateFile != "" {
		cfg.Session.File = c.stateFile
	}
	a, err := app.New(ctx, cfg, lg.Sugar())
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
	}
	if c.logger != nil {
		_ = c.logger.Sync()
	}
}

// print writes v as indented JSON, or through text when the format is text
// and text is non-nil.
func (c *cli) print(v any, text func(w io.Writer)) {
	if c.outFormat != "json" && text != nil {
		text(c.out)
		return
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(c.out, "%v\n", v)
		return
	}
	fmt.Fprintln(c.out, string(b))
}

// prompt reads one trimmed line after showing question.
func (c *cli) prompt(question string) (string, error) {
	fmt.Fprint(c.out, question)
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirmer asks on stdin unless yes is set.
func (c *cli) confirmer(yes bool) mutation.Confirmer {
	if yes {
		return mutation.Always
	}
	return mutation.ConfirmFunc(func(_ context.Context, question string) (bool, error) {
		answer, err := c.prompt(question + " [y/N] ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes", "s", "si", "sí":
			return true, nil
		}
		return false, nil
	})
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// errorText is what the operator sees for err: the backend's message when
// there is one.
func errorText(err error) string {
	var de *dispatch.Error
	if errors.As(err, &de) {
		if de.Kind == dispatch.KindNetwork {
			return "backend unreachable: " + de.Err.Error()
		}
		return fmt.Sprintf("%s (HTTP %d)", de.Message, de.Status)
	}
	var re *mutation.RefreshError
	if errors.As(err, &re) {
		return "done, but the list could not be refreshed: " + errorText(re.Err)
	}
	return err.Error()
}
