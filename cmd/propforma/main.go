package main

import (
	"flag"
	"fmt"

	"github.com/propforma/propforma/internal/analysis"
	"github.com/propforma/propforma/internal/config"
	"github.com/propforma/propforma/internal/optimizer"
	"github.com/propforma/propforma/pkg/constants"
	"github.com/propforma/propforma/pkg/output"
	"github.com/propforma/propforma/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file first to get the logging configuration.
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := config.BuildLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over the config file.
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings.
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	// Run the analysis pipeline for every active scenario.
	results, err := analysis.RunScenarios(logger, *conf)
	if err != nil {
		logger.Fatal("failed to analyze scenarios",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Run break-even solves when the config asks for them.
	if conf.HasSolveDirectives() {
		runner, err := optimizer.NewRunner(logger, conf)
		if err != nil {
			logger.Fatal("failed to initialize solver",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		solveResult, err := runner.Run()
		if err != nil {
			logger.Fatal("failed to run break-even solves",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		if !solveResult.Empty() {
			solveResult.Apply(results)
		}
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(results)
	case constants.OutputFormatCSV:
		output.CsvFormat(results)
	}
}
