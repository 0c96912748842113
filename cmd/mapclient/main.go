package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/UnknownOlympus/meridian/internal/mapclient"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

var errUsage = errors.New("usage: mapclient [flags] (route <from-zip> <to-zip> | export | clear)...")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], afero.NewOsFs(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run parses the command line, runs its commands against one map session and
// prints the status after each of them.
func run(ctx context.Context, args []string, fs afero.Fs, stdout io.Writer) error {
	flags := pflag.NewFlagSet("mapclient", pflag.ContinueOnError)
	flags.String("proxy", mapclient.DefaultProxyURL, "base URL of the routing proxy")
	flags.String("out", "", "write the drawn map as GeoJSON to this file")
	flags.String("downloads", ".", "directory receiving export downloads")
	flags.String("env", envProd, "logging environment: local, development, production")
	flags.Float64Slice("bbox", []float64{
		mapclient.DefaultExportBBox.SouthWest.Lon(), mapclient.DefaultExportBBox.SouthWest.Lat(),
		mapclient.DefaultExportBBox.NorthEast.Lon(), mapclient.DefaultExportBBox.NorthEast.Lat(),
	}, "export region as minLon,minLat,maxLon,maxLat")

	if err := flags.Parse(args); err != nil {
		return err
	}

	// flags may also come from MERIDIAN_PROXY, MERIDIAN_OUT, ... environment variables
	vpr := viper.New()
	vpr.SetEnvPrefix("MERIDIAN")
	vpr.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vpr.AutomaticEnv()
	if err := vpr.BindPFlags(flags); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	logger := setupLogger(vpr.GetString("env"))

	api := mapclient.NewProxyClient(vpr.GetString("proxy"), logger)
	canvas := mapclient.NewCanvas()
	session := mapclient.NewSession(api, mapclient.NewMapController(canvas),
		mapclient.NewFileDownloader(fs, vpr.GetString("downloads")), logger)

	commands, err := parseCommands(flags)
	if err != nil {
		return err
	}

	var cmdErr error
	for _, cmd := range commands {
		cmdErr = cmd(ctx, session)
		fmt.Fprintln(stdout, session.Status())
		if cmdErr != nil {
			break
		}
	}

	if out := vpr.GetString("out"); out != "" {
		if err := writeSnapshot(fs, out, canvas); err != nil {
			return err
		}
	}

	return cmdErr
}

// command is one step of a map session.
type command func(ctx context.Context, session *mapclient.Session) error

// parseCommands reads the positional arguments as a sequence of commands. The
// whole sequence is validated before any command runs.
func parseCommands(flags *pflag.FlagSet) ([]command, error) {
	args := flags.Args()
	if len(args) == 0 {
		return nil, errUsage
	}

	var commands []command
	for len(args) > 0 {
		switch args[0] {
		case "route":
			if len(args) < 3 {
				return nil, errUsage
			}
			from, to := args[1], args[2]
			commands = append(commands, func(ctx context.Context, s *mapclient.Session) error {
				return s.FindRoute(ctx, from, to)
			})
			args = args[3:]
		case "export":
			bbox, err := parseBBox(flags)
			if err != nil {
				return nil, err
			}
			commands = append(commands, func(ctx context.Context, s *mapclient.Session) error {
				return s.ExportRoads(ctx, bbox)
			})
			args = args[1:]
		case "clear":
			commands = append(commands, func(_ context.Context, s *mapclient.Session) error {
				s.Clear()
				return nil
			})
			args = args[1:]
		default:
			return nil, errUsage
		}
	}

	return commands, nil
}

func parseBBox(flags *pflag.FlagSet) (models.BoundingBox, error) {
	values, err := flags.GetFloat64Slice("bbox")
	if err != nil {
		return models.BoundingBox{}, fmt.Errorf("failed to read bbox: %w", err)
	}
	if len(values) != 4 {
		return models.BoundingBox{}, models.ErrInvalidBoundingBox
	}

	return models.BoundingBox{
		SouthWest: models.NewGeoPoint(values[0], values[1]),
		NorthEast: models.NewGeoPoint(values[2], values[3]),
	}, nil
}

func writeSnapshot(fs afero.Fs, path string, canvas *mapclient.Canvas) error {
	data, err := canvas.FeatureCollection().MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode map snapshot: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write map snapshot: %w", err)
	}

	return nil
}

// setupLogger initializes a logger on stderr so stdout only carries the status line.
func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.Attr{}
				}
				return a
			},
		}))
	}
}
