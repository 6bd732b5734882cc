package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyike/DepotGo/config"
	"github.com/dyike/DepotGo/internal/handlers"
	"github.com/dyike/DepotGo/internal/storage"
	"github.com/dyike/DepotGo/internal/utils"
)

const version = "v1.0.0"

// configAnnotation tells PersistentPreRunE how much configuration a command
// needs. Unannotated commands require a valid config.
const configAnnotation = "depot/config"

const (
	configNone    = "none"    // never reads the config
	configLenient = "lenient" // runs on an invalid config so it can be inspected or repaired
)

var lenientConfig = map[string]string{configAnnotation: configLenient}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "depot",
		Short: "Depot - stock, orders, accounts and starship reports",
		Long: `depot talks to the depot API: it shows stock levels for the tracked items,
places orders, creates accounts and uploads starship reports.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			a.in = cmd.InOrStdin()
			switch cmd.Annotations[configAnnotation] {
			case configNone:
				return nil
			case configLenient:
				return a.loadConfig(true)
			default:
				return a.loadConfig(false)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: start interactive mode
			return runInteractiveMode(cmd.Context(), a)
		},
	}

	rootCmd.AddCommand(newStockCmd(a))
	rootCmd.AddCommand(newOrderCmd(a))
	rootCmd.AddCommand(newSignupCmd(a))
	rootCmd.AddCommand(newUploadCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newHistoryCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "Configuration file path (json, yaml or toml)")
	flags.BoolVar(&a.opts.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&a.opts.baseURL, "base-url", "", "Depot API base URL")
	flags.StringVar(&a.opts.accessCode, "access-code", "", "Access code appended to every request")
	flags.BoolVar(&a.opts.html, "html", false, "Print the resulting page as HTML")

	return rootCmd
}

func newStockCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stock [ITEM...]",
		Short: "Show stock levels for the tracked items",
		Long: `Fetch the stock level of every tracked item concurrently, or of the given items.
Example: depot stock "laser crystals" fuel`,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := a.cfg.TrackedItems
			if len(args) > 0 {
				items = make([]config.TrackedItem, 0, len(args))
				for _, item := range args {
					items = append(items, config.TrackedItem{Item: item, Target: handlers.TargetFor(item)})
				}
			}
			return a.run(cmd.Context(), false, func(ctx context.Context) error {
				a.stock.PollAll(ctx, items)
				a.term.Board("Stock", a.page.Elements())
				return nil
			})
		},
	}
}

func newOrderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "order ITEM QUANTITY",
		Short: "Place an order and refresh the item's stock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[1], err)
			}
			return a.run(cmd.Context(), true, func(ctx context.Context) error {
				return a.orders.Submit(ctx, args[0], quantity)
			})
		},
	}
}

func newSignupCmd(a *app) *cobra.Command {
	var username string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a depot account",
		Long: `Create an account. Missing values are prompted for. With --password-stdin the
password and its confirmation are read from the first two lines of stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := handlers.SignupForm{Username: strings.TrimSpace(username)}
			if form.Username == "" {
				if passwordStdin {
					return errors.New("--username is required with --password-stdin")
				}
				u, err := PromptForUsername()
				if err != nil {
					return err
				}
				form.Username = u
			}

			var err error
			if passwordStdin {
				form.Password, form.PasswordConfirm, err = readPasswords(a.in)
			} else {
				form.Password, form.PasswordConfirm, err = PromptForPasswords()
			}
			if err != nil {
				return err
			}

			return a.run(cmd.Context(), true, func(ctx context.Context) error {
				return a.signup.Submit(ctx, form)
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read password and confirmation from stdin")
	return cmd
}

// readPasswords reads the password and confirmation lines. A missing
// confirmation line repeats the password.
func readPasswords(r io.Reader) (string, string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
		return "", "", errors.New("no password on stdin")
	}
	password := strings.TrimRight(scanner.Text(), "\r")
	confirm := password
	if scanner.Scan() {
		confirm = strings.TrimRight(scanner.Text(), "\r")
	}
	return password, confirm, scanner.Err()
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a starship report and print its download link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := handlers.OpenFile(args[0])
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), true, func(ctx context.Context) error {
				return a.upload.Submit(ctx, req)
			})
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Show, validate and edit the depot configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:         "show",
		Short:       "Show the effective configuration",
		Annotations: lenientConfig,
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(a.out, a.cfg, a.configPath())
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:         "validate",
		Short:       "Validate the effective configuration",
		Annotations: lenientConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if err := a.cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			fmt.Fprintln(a.out, completedStyle.Render("✅ Configuration is valid"))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:         "set KEY VALUE",
		Short:       "Update a configuration value, e.g. endpoint.base_url",
		Annotations: lenientConfig,
		Args:        cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.manager == nil {
				return fmt.Errorf("config set needs a json config file, %s is read-only", a.configPath())
			}
			if err := a.manager.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s = %s\n", args[0], args[1])
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:         "path",
		Short:       "Print the configuration file path",
		Annotations: map[string]string{configAnnotation: configNone},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.out, a.configPath())
		},
	})

	return configCmd
}

func (a *app) configPath() string {
	if a.manager != nil {
		return a.manager.Path()
	}
	if a.opts.configPath != "" {
		return a.opts.configPath
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return ""
	}
	return path
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	var csvPath string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent depot interactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.OpenConfigured(&a.cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if csvPath != "" {
				if err := utils.ExportHistoryCSV(csvPath, entries); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Exported %d entries to %s\n", len(entries), csvPath)
				return nil
			}
			showHistory(a.out, entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Export the entries to a CSV file instead of printing them")
	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Annotations: map[string]string{configAnnotation: configNone},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "depot %s\n", version)
		},
	}
}
