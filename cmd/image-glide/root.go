package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const envLogLevel = "IMAGE_GLIDE_LOG_LEVEL"

var (
	configPath string
	logLevel   string
	logFormat  string

	// logger writes to stderr; stdout carries command output and the tool
	// protocol.
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "image-glide",
	Short: "On-demand image resizing and delivery",
	Long: `image-glide serves resized, re-encoded and cached images for URLs of the
form /<prefix>/<preset>/<file>, where <preset> names a registered set of
transform options and <file> is relative to the upload directory.

It also builds those URLs, and inline base64 versions of the images, for
application code.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		l, err := newLogger(cmd.ErrOrStderr(), logLevel, logFormat)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $IMAGE_GLIDE_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", os.Getenv(envLogLevel), "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format: console or json")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"image-glide %s (built %s, commit %s, %s/%s)\n",
		Version, BuildTime, GitCommit, runtime.GOOS, runtime.GOARCH,
	))
}

func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
		}
	}

	switch format {
	case "console", "":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", format)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
