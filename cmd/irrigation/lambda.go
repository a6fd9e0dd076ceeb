package main

import (
	"github.com/spf13/cobra"

	"lawn-irrigation/internal/infra/lambda"
)

func newLambdaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run as an AWS Lambda function handler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			transport, closeTransport, err := newTransport(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer closeTransport()

			skill, err := newSkill(a.cfg, transport, a.logger)
			if err != nil {
				return err
			}

			lambda.NewHandler(skill, a.logger).Start()
			return nil
		},
	}
}
