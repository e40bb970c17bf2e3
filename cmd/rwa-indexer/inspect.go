package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goran-ethernal/RWAIndexor/internal/checkpoint"
	"github.com/goran-ethernal/RWAIndexor/internal/common"
	"github.com/goran-ethernal/RWAIndexor/internal/config"
	"github.com/goran-ethernal/RWAIndexor/internal/db"
	"github.com/goran-ethernal/RWAIndexor/internal/processors"
	"github.com/goran-ethernal/RWAIndexor/pkg/processor"
	"github.com/spf13/cobra"
)

// listProcessors prints every supported type and, when a configuration is
// readable, the processors it declares.
func listProcessors(out io.Writer) error {
	fmt.Fprintln(out, "Supported processor types:")
	for _, t := range processor.AllTypes {
		if processors.Supported(t) {
			fmt.Fprintf(out, "  - %s\n", t)
		}
	}

	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		fmt.Fprintf(out, "\nNo configured processors (%v)\n", err)
		return nil
	}

	fmt.Fprintf(out, "\nConfigured processors (%s):\n", configPath)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0) //nolint:mnd
	fmt.Fprintln(w, "  NAME\tTYPE\tMODULE REF\tCONTRACT")
	for _, p := range cfg.Processors {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", p.Name, p.Type, p.ModuleRef, p.ContractName)
	}
	return w.Flush()
}

func printCheckpoint(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	database, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	cp, err := checkpoint.NewStore(database, componentLogger(cfg, common.ComponentCheckpoint), nil).
		Last(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read checkpoint: %w", err)
	}

	out := cmd.OutOrStdout()
	if cp == nil {
		_, err = fmt.Fprintf(out, "No block processed yet, indexing starts at %d\n", cfg.Listener.DefaultStartHeight)
		return err
	}

	_, err = fmt.Fprintf(out, "height:    %d\nhash:      %s\nslot time: %s\n",
		cp.Height, cp.Hash.Hex(), cp.SlotTime.UTC().Format("2006-01-02T15:04:05Z07:00"))
	return err
}
