package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/alert"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/app"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/mutation"
)

func (c *cli) maintenancesCmd() *cobra.Command {
	cmd := resourceCmd(c, "maintenances", "Maintenance jobs",
		func(a *app.App) resource { return wrap(a.Maintenances.Resource()) })

	var notes string
	complete := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a job as completed today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, err := c.app.Maintenances.Complete(cmd.Context(), id, notes)
			var re *mutation.RefreshError
			if err != nil && !errors.As(err, &re) {
				return err
			}
			c.print(m, func(w io.Writer) {
				fmt.Fprintf(w, "maintenance %d completed on %s\n", m.ID, m.CompletedDate)
			})
			if re != nil {
				fmt.Fprintln(c.out, errorText(re))
			}
			return nil
		},
	}
	complete.Flags().StringVar(&notes, "notes", "", "closing notes")
	cmd.AddCommand(complete)
	return cmd
}

func (c *cli) alertsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "Warranty and maintenance alerts for the active scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Alerts.Recompute(cmd.Context()); err != nil && !errors.Is(err, alert.ErrSuperseded) {
				return err
			}
			s, _ := c.app.Alerts.Current()
			c.print(s, func(w io.Writer) {
				fmt.Fprintf(w, "warranty expiring:    %d\n", s.WarrantyExpiring)
				fmt.Fprintf(w, "pending maintenance:  %d\n", s.PendingMaintenance)
				fmt.Fprintf(w, "overdue maintenance:  %d\n", s.OverdueMaintenance)
			})
			return nil
		},
	}
}

func (c *cli) reportCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summary report for the active scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.app.Reports.Summary(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			c.print(s, func(w io.Writer) {
				fmt.Fprintf(w, "devices: %d\n", s.DevicesTotal)
				for status, n := range s.DevicesByStatus {
					fmt.Fprintf(w, "  %-12s %d\n", status, n)
				}
				m := s.Maintenances
				fmt.Fprintf(w, "maintenances: %d open (%d overdue), %d completed\n", m.Open(), m.Overdue, m.Completed)
				fmt.Fprintf(w, "warranties expiring: %d\n", s.WarrantyExpiring)
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD")
	return cmd
}
