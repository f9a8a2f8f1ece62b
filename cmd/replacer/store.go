package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/orneryd/replacer/pkg/storage"
)

func newPutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "put NAME [values...]",
		Short:   "Store a sequence under NAME",
		Example: `  replacer put scores 1 3 4 6 5`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseValues(args[1:])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.Put(&storage.Sequence{Name: args[0], Values: values}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s (%d values)\n", args[0], len(values))
			return nil
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Print a stored sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			seq, err := store.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatValues(seq.Values))
			return nil
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sequences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			names, err := store.List()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range names {
				seq, err := store.Get(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", name, seq.Len(), seq.UpdatedAt.Format("2006-01-02T15:04:05Z"))
			}
			return w.Flush()
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the execution backend and accelerator status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "backend:\t%s\n", a.cfg.Execution.Backend)
			fmt.Fprintf(w, "system:\t%s\n", a.sys.Name())
			if p, ok := a.sys.(interface{ Workers() int }); ok {
				fmt.Fprintf(w, "workers:\t%d\n", p.Workers())
			}
			if a.accel != nil {
				stats := a.accel.Stats()
				fmt.Fprintf(w, "gpu:\t%t\n", a.accel.IsEnabled())
				fmt.Fprintf(w, "device:\t%s\n", a.accel.DeviceName())
				fmt.Fprintf(w, "memory_mb:\t%d\n", a.accel.DeviceMemoryMB())
				fmt.Fprintf(w, "launches:\t%d\n", stats.Launches)
			}
			if a.cfg.Storage.InMemory {
				fmt.Fprintf(w, "store:\tin-memory\n")
			} else {
				fmt.Fprintf(w, "store:\t%s\n", a.cfg.Storage.DataDir)
			}
			return w.Flush()
		},
	}
}
