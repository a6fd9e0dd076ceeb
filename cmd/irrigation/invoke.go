package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lawn-irrigation/internal/application"
	"lawn-irrigation/internal/domain"
)

func newInvokeCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "invoke [file|-]",
		Short: "Answer one request envelope and print the response",
		Long: `Reads a skill request envelope as JSON from a file, or from stdin when the
argument is "-" or missing, handles it exactly as the HTTP endpoint would and
prints the response envelope.

With --dry-run the shadow update is logged instead of published.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := "-"
			if len(args) == 1 {
				src = args[0]
			}

			data, err := readInput(cmd.InOrStdin(), src)
			if err != nil {
				return err
			}

			var env domain.RequestEnvelope
			if err := json.Unmarshal(data, &env); err != nil {
				return fmt.Errorf("decoding request envelope: %w", err)
			}

			var transport application.ShadowTransport = dryRunTransport{logger: a.logger}
			if !dryRun {
				t, closeTransport, err := newTransport(cmd.Context(), a.cfg, a.logger)
				if err != nil {
					return err
				}
				defer closeTransport()
				transport = t
			}

			skill, err := newSkill(a.cfg, transport, a.logger)
			if err != nil {
				return err
			}

			resp := skill.Handle(cmd.Context(), env)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log the shadow update instead of publishing it")
	return cmd
}

func readInput(stdin io.Reader, src string) ([]byte, error) {
	if src == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("reading request file: %w", err)
	}
	return data, nil
}
