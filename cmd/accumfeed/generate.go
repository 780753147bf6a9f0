package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/payerlink/accumfeed/internal/exitcode"
	"github.com/payerlink/accumfeed/internal/logging"
	"github.com/payerlink/accumfeed/internal/x12"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Encode an accumulator submission into a wire-format file",
	RunE:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&cfg.SchemaPath, "schema", "", "Path to segment schema JSON (required)")
	f.StringVar(&cfg.RequestPath, "request", "", "Path to encoding request JSON (required)")
	f.StringVar(&cfg.OutPath, "out", "", "Output file (default stdout)")
	_ = generateCmd.MarkFlagRequired("schema")
	_ = generateCmd.MarkFlagRequired("request")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if err := loadConfig(); err != nil {
		log.Error().Err(err).Msg("config load failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.ValidateGenerate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	schemaFile, err := os.Open(cfg.SchemaPath)
	if err != nil {
		log.Error().Err(err).Msg("open schema failed")
		os.Exit(exitcode.SchemaError)
	}
	schema, err := x12.LoadSchema(schemaFile)
	schemaFile.Close()
	if err != nil {
		log.Error().Err(err).Msg("schema compile failed")
		os.Exit(exitcode.SchemaError)
	}

	reqData, err := os.ReadFile(cfg.RequestPath)
	if err != nil {
		log.Error().Err(err).Msg("read request failed")
		os.Exit(exitcode.UsageError)
	}
	req, err := x12.ParseRequest(reqData)
	if err != nil {
		log.Error().Err(err).Msg("request parse failed")
		os.Exit(exitcode.EncodeError)
	}

	writer, err := x12.NewWriter(schema, cfg.Separators)
	if err != nil {
		log.Error().Err(err).Msg("writer setup failed")
		os.Exit(exitcode.SchemaError)
	}

	var out io.Writer = os.Stdout
	if cfg.OutPath != "" {
		f, err := os.Create(cfg.OutPath)
		if err != nil {
			log.Error().Err(err).Msg("create output file failed")
			os.Exit(exitcode.EncodeError)
		}
		defer f.Close()
		out = f
	}

	if err := writer.Generate(req, out); err != nil {
		log.Error().Err(err).Msg("encode failed")
		os.Exit(exitcode.EncodeError)
	}

	if cfg.OutPath != "" {
		fmt.Printf("Wrote %s\n", cfg.OutPath)
	}
	return nil
}
