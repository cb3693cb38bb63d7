// ABOUTME: Entry point for the qreader QR payload server and CLI.
// ABOUTME: Wires config, store, plugins and packages together behind cobra commands.

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/2389/qreader/internal/api"
	"github.com/2389/qreader/internal/app"
	"github.com/2389/qreader/internal/config"
	"github.com/2389/qreader/internal/logger"
	"github.com/2389/qreader/internal/seed"
	"github.com/2389/qreader/internal/view"
	"github.com/2389/qreader/plugins/core"
	_ "github.com/2389/qreader/plugins/base"   // Register URL, mail, SMS and telephone decoders
	_ "github.com/2389/qreader/plugins/docomo" // Register MATMSG, MEBKM and MECARD decoders
	_ "github.com/2389/qreader/plugins/text"   // Register the free-text decoder
	_ "github.com/2389/qreader/plugins/vcard"  // Register the vCard decoder
	_ "github.com/2389/qreader/plugins/zxing"  // Register MMSTO and BIZCARD decoders
)

var errNotDecoded = errors.New("payload not decoded")

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#9E9E9E"})
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B71C1C", Dark: "#EF9A9A"})
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()

	rootCmd := &cobra.Command{
		Use:   "qreader",
		Short: "qreader - decode, render and record QR code payloads",
		Long: `qreader turns raw QR code payloads into typed results (links, mail, SMS,
telephone numbers, contacts and text) and renders them as HTML, terminal text
or vCard.

Decoders are chosen by the payload's scheme, e.g. "tel:" or "MECARD:". Extra
schemes can be added at runtime by installing .qrp plugin packages.

Quick Start:
  qreader decode "tel:+15555550100"   # Decode one payload
  qreader seed                        # Record sample scans
  qreader serve                       # Start the server on port 9000`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.String(config.KeyDB, "", "Database path (default: $XDG_DATA_HOME/qreader/qreader.db)")
	pf.String(config.KeyPackagesDir, "", "Directory holding installed .qrp packages")
	pf.String(config.KeyLogLevel, "", "Log level: debug, info, warn or error")
	pf.String(config.KeyLogFile, "", "Write logs to this file instead of stderr")
	bindFlags(v, pf)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the qreader HTTP server.

The server provides:
  • POST /api/decode and the /ws/scan websocket stream
  • Scan history, decoder, view and package endpoints under /api
  • A dashboard at http://localhost:PORT/
  • Health check at http://localhost:PORT/healthz

Devices identify themselves with the X-Device-ID header. When a token is
configured every request must send it as "Authorization: Bearer TOKEN".

Environment Variables:
  QREADER_PORT          Server port (default: 9000)
  QREADER_TOKEN         Shared bearer token
  QREADER_MAX_PAYLOAD   Largest accepted payload in bytes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, v)
		},
	}
	serveCmd.Flags().StringP(config.KeyPort, "p", "", "Port to listen on (default: 9000)")
	serveCmd.Flags().String(config.KeyToken, "", "Bearer token required on every request")
	serveCmd.Flags().Int64(config.KeyMaxPayload, 0, "Largest accepted payload in bytes")
	bindFlags(v, serveCmd.Flags())

	decodeCmd := &cobra.Command{
		Use:   "decode [payload]",
		Short: "Decode one payload and print it",
		Long: `Decode a payload given as an argument, read from --file, or read from stdin
when the argument is "-". Payloads that no decoder accepts are printed as a raw
dump and the command exits non-zero.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, v, args)
		},
	}
	decodeCmd.Flags().Bool("hex", false, "Treat the payload as hex")
	decodeCmd.Flags().StringP("file", "f", "", "Read the payload from a file")
	decodeCmd.Flags().StringP("capability", "c", string(view.CapabilityText), "View to render: text, html or vcf")
	decodeCmd.Flags().Bool("show", false, "Also draw the payload as a QR code")
	decodeCmd.Flags().Bool("save", false, "Record the scan in history")
	decodeCmd.Flags().String("device", "cli", "Device recorded with saved scans")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Record sample scans",
		Long: `Scan a built-in list of sample payloads covering every supported scheme,
including a few that do not decode.

AI-Powered Generation:
  Set OPENAI_API_KEY and pass --ai N to add N generated payloads.

Note: Seed is not idempotent. Use 'qreader reset' to start over.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, v, false)
		},
	}
	seedCmd.Flags().Int("ai", 0, "Number of extra payloads to generate with OpenAI")

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the database (wipe and reseed)",
		Long: `Delete the database file and create a fresh one with sample scans.

Warning: This permanently deletes the scan history and request logs!
Installed packages are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, v, true)
		},
	}
	resetCmd.Flags().Int("ai", 0, "Number of extra payloads to generate with OpenAI")

	packagesCmd := &cobra.Command{
		Use:   "packages",
		Short: "Manage installed plugin packages",
	}
	packagesCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List installed packages",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPackagesList(cmd, v)
			},
		},
		&cobra.Command{
			Use:   "install <file.qrp>",
			Short: "Install or upgrade a package",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPackagesInstall(cmd, v, args[0])
			},
		},
		&cobra.Command{
			Use:   "remove <name>",
			Short: "Remove an installed package",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPackagesRemove(cmd, v, args[0])
			},
		},
	)

	decodersCmd := &cobra.Command{
		Use:   "decoders [plugin]",
		Short: "List decoders in dispatch order",
		Long: `List every plugin's decoders in dispatch order, or only those of the named
plugin or package. The listing ends with the class names that a package's
classes.xml may reference.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecoders(cmd, v, args)
		},
	}

	rootCmd.AddCommand(serveCmd, decodeCmd, seedCmd, resetCmd, packagesCmd, decodersCmd)
	return rootCmd
}

// bindFlags makes every flag in fs a viper key of the same name.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		// lookups by name cannot fail here
		_ = v.BindPFlag(f.Name, f)
	})
}

func loadConfig(v *viper.Viper) (*config.Config, error) {
	config.LoadDotEnv()
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return cfg, nil
}

func openWire(ctx context.Context, v *viper.Viper) (*app.Wire, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	return app.NewWire(ctx, cfg)
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := openWire(ctx, v)
	if err != nil {
		return err
	}
	defer w.Close()

	srv := &http.Server{
		Addr:              ":" + w.Config.Port,
		Handler:           api.NewServer(w).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("qreader server listening", "addr", srv.Addr, "db", w.Config.DBPath, "packages", w.Config.PackagesDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runDecode(cmd *cobra.Command, v *viper.Viper, args []string) error {
	payload, err := readPayload(cmd, args)
	if err != nil {
		return err
	}

	w, err := openWire(cmd.Context(), v)
	if err != nil {
		return err
	}
	defer w.Close()

	out := cmd.OutOrStdout()
	flags := cmd.Flags()
	if show, _ := flags.GetBool("show"); show {
		qrterminal.GenerateHalfBlock(string(payload), qrterminal.L, out)
	}

	save, _ := flags.GetBool("save")
	device, _ := flags.GetString("device")
	_, res, err := w.Scanner.Decode(cmd.Context(), device, payload, save)
	if err != nil {
		return err
	}

	if res.Code == nil {
		fmt.Fprintln(out, warnStyle.Render(notDecodedReason(res.Scheme, res.Decoder)))
		view.RenderRaw(out, payload)
		return errNotDecoded
	}

	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%s via %s (%s)", res.Code.Kind(), res.Decoder, res.Scheme)))

	capability, _ := flags.GetString("capability")
	if err := w.Views.Render(out, res.Code, view.Capability(capability)); err != nil {
		if !errors.Is(err, view.ErrNoView) {
			return err
		}
		fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("no %s view for %s, showing raw payload", capability, res.Code.Kind())))
		view.RenderRaw(out, payload)
	}
	return nil
}

func readPayload(cmd *cobra.Command, args []string) ([]byte, error) {
	flags := cmd.Flags()
	file, _ := flags.GetString("file")

	var payload []byte
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload: %w", err)
		}
		payload = data
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read payload: %w", err)
		}
		payload = data
	case len(args) == 1:
		payload = []byte(args[0])
	default:
		return nil, errors.New("a payload argument, '-' or --file is required")
	}

	if isHex, _ := flags.GetBool("hex"); isHex {
		decoded, err := hex.DecodeString(strings.Join(strings.Fields(string(payload)), ""))
		if err != nil {
			return nil, fmt.Errorf("invalid hex payload: %w", err)
		}
		payload = decoded
	}
	if len(payload) == 0 {
		return nil, errors.New("payload is empty")
	}
	return payload, nil
}

func notDecodedReason(scheme, decoder string) string {
	switch {
	case scheme == "":
		return "payload has no scheme"
	case decoder == "":
		return fmt.Sprintf("no decoder for scheme %q", scheme)
	default:
		return fmt.Sprintf("decoder %q rejected the payload", decoder)
	}
}

func runSeed(cmd *cobra.Command, v *viper.Viper, reset bool) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	if reset && cfg.DBPath != ":memory:" {
		// WAL mode leaves -wal and -shm companions next to the database
		for _, suffix := range []string{"", "-wal", "-shm"} {
			if err := os.Remove(cfg.DBPath + suffix); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove existing database: %w", err)
			}
		}
	}

	w, err := app.NewWire(ctx, cfg)
	if err != nil {
		return err
	}
	defer w.Close()

	aiCount, _ := cmd.Flags().GetInt("ai")
	payloads := seed.NewGenerator(cfg.OpenAIKey, cfg.OpenAIModel).Generate(ctx, aiCount)

	logger.Info("seeding scan history", "payloads", len(payloads))
	sum, err := seed.Run(ctx, w.Scanner, "seed", payloads)
	if err != nil {
		return fmt.Errorf("seeding stopped after %d payloads: %w", sum.Total, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeding complete! Recorded %d scans (%d decoded, %d not decoded)\n",
		sum.Total, sum.Decoded, sum.Failed)
	return nil
}

func runPackagesList(cmd *cobra.Command, v *viper.Viper) error {
	w, err := openWire(cmd.Context(), v)
	if err != nil {
		return err
	}
	defer w.Close()

	packages, err := w.Installer.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(packages) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No packages installed in "+w.Installer.Dir()))
		return nil
	}
	for _, p := range packages {
		fmt.Fprintf(out, "%s %s\n", headingStyle.Render(p.Name()), p.Version)
		if p.Brief() != "" {
			fmt.Fprintf(out, "  %s\n", p.Brief())
		}
		for _, d := range p.Decoders() {
			fmt.Fprintf(out, "  %s %s\n", mutedStyle.Render("decoder"), strings.Join(d.Schemes(), ", "))
		}
		for _, b := range p.Views() {
			fmt.Fprintf(out, "  %s %s/%s\n", mutedStyle.Render("view"), b.Kind, b.Capability)
		}
	}
	return nil
}

func runPackagesInstall(cmd *cobra.Command, v *viper.Viper, path string) error {
	w, err := openWire(cmd.Context(), v)
	if err != nil {
		return err
	}
	defer w.Close()

	p, err := w.Installer.Install(cmd.Context(), path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Installed %s %s\n", p.Name(), p.Version)
	return nil
}

func runPackagesRemove(cmd *cobra.Command, v *viper.Viper, name string) error {
	w, err := openWire(cmd.Context(), v)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Installer.Remove(cmd.Context(), name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", name)
	return nil
}

func runDecoders(cmd *cobra.Command, v *viper.Viper, args []string) error {
	w, err := openWire(cmd.Context(), v)
	if err != nil {
		return err
	}
	defer w.Close()

	plugins := w.Catalog.Plugins()
	if len(args) == 1 {
		p, ok := w.Catalog.Plugin(args[0])
		if !ok {
			return fmt.Errorf("no plugin or package named %q", args[0])
		}
		plugins = []core.Plugin{p}
	}

	out := cmd.OutOrStdout()
	for _, p := range plugins {
		fmt.Fprintf(out, "%s %s\n", headingStyle.Render(p.Name()), mutedStyle.Render(fmt.Sprintf("priority %d, %s", p.Priority(), p.Health().Status)))
		for _, d := range p.Decoders() {
			fmt.Fprintf(out, "  %-10s %s\n", d.Name(), strings.Join(d.Schemes(), ", "))
		}
	}
	if len(args) == 1 {
		return nil
	}

	classes := core.Classes()
	fmt.Fprintln(out, headingStyle.Render("classes"))
	fmt.Fprintf(out, "  %-10s %s\n", "decoder", strings.Join(classes["decoder"], ", "))
	fmt.Fprintf(out, "  %-10s %s\n", "view", strings.Join(classes["view"], ", "))
	return nil
}
