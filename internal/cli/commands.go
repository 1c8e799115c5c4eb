package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/northstar-backend/internal/client"
	"github.com/yungbote/northstar-backend/internal/modules/onboarding"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
	"github.com/yungbote/northstar-backend/internal/services"
)

type rootOptions struct {
	configPath string
	apiURL     string
	token      string
	statePath  string
	verbose    bool
}

// resolve loads the config file and applies flag overrides.
func (o *rootOptions) resolve() (Config, error) {
	path, err := o.configFile()
	if err != nil {
		return Config{}, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return Config{}, err
	}
	if o.apiURL != "" {
		cfg.APIURL = o.apiURL
	}
	if o.statePath != "" {
		cfg.StatePath = o.statePath
	}
	switch {
	case o.token != "":
		cfg.Token = o.token
	case cfg.Token == "":
		// A keyring that is missing or locked just means no stored login.
		if token, err := loadKeyringToken(cfg.APIURL); err == nil {
			cfg.Token = token
		}
	}
	return cfg, nil
}

func (o *rootOptions) configFile() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return DefaultConfigPath()
}

func (o *rootOptions) logger() *logger.Logger {
	if !o.verbose {
		return logger.Nop()
	}
	log, err := logger.New("development")
	if err != nil {
		return logger.Nop()
	}
	return log
}

func (o *rootOptions) machine(ctx context.Context, cfg Config, gen onboarding.Generator) (*onboarding.Machine, error) {
	m := onboarding.NewMachine(o.logger(), onboarding.NewFileStore(cfg.StatePath), gen, onboarding.StorageKey)
	if err := m.Load(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// NewRootCommand builds the northstar-onboard command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "northstar-onboard",
		Short:         "Set a north star goal and get a phased habit plan",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/northstar/config.yaml)")
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "API base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", "", "bearer token")
	root.PersistentFlags().StringVar(&opts.statePath, "state", "", "onboarding state file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newRunCommand(opts),
		newShowCommand(opts),
		newPlansCommand(opts),
		newResetCommand(opts),
		newTokenCommand(opts),
		newLogoutCommand(opts),
	)
	return root
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run (or resume) onboarding",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve()
			if err != nil {
				return err
			}
			if cfg.Token == "" {
				return fmt.Errorf("no token configured; run `northstar-onboard token --save` or pass --token")
			}
			gen := &client.Generator{Client: client.New(cfg.APIURL, cfg.Token, 0)}
			m, err := opts.machine(cmd.Context(), cfg, gen)
			if err != nil {
				return err
			}
			return NewWizard(m, NewHuhPrompter(), cmd.OutOrStdout()).Run(cmd.Context())
		},
	}
}

func newShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show saved onboarding progress and journey",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve()
			if err != nil {
				return err
			}
			m, err := opts.machine(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), RenderState(m.Snapshot()))
			return nil
		},
	}
}

func newPlansCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List habit plans stored on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve()
			if err != nil {
				return err
			}
			plans, err := client.New(cfg.APIURL, cfg.Token, 30*time.Second).ListPlans(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), RenderPlans(plans))
			return nil
		},
	}
}

func newResetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget saved onboarding progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve()
			if err != nil {
				return err
			}
			m, err := opts.machine(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			if err := m.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Onboarding reset.")
			return nil
		},
	}
}

func newTokenCommand(opts *rootOptions) *cobra.Command {
	var (
		userID string
		email  string
		secret string
		ttl    time.Duration
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token",
		Long: `Mint an HS256 token signed with JWT_SECRET_KEY (or --secret).

Only useful against a server sharing the same secret, e.g. a local run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = strings.TrimSpace(os.Getenv("JWT_SECRET_KEY"))
			}
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET_KEY is required")
			}
			id := uuid.New()
			if userID != "" {
				parsed, err := uuid.Parse(userID)
				if err != nil {
					return fmt.Errorf("invalid --user-id: %w", err)
				}
				id = parsed
			}
			token, err := services.NewAuthService(logger.Nop(), secret).IssueToken(id, email, ttl)
			if err != nil {
				return err
			}
			if !save {
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			}
			return saveToken(cmd.OutOrStdout(), opts, token)
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "user id (default: random)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (default: $JWT_SECRET_KEY)")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")
	cmd.Flags().BoolVar(&save, "save", false, "write the token to the config file")
	return cmd
}

// saveToken prefers the OS keyring and falls back to the config file when
// no keyring is reachable (headless hosts, containers).
func saveToken(out io.Writer, opts *rootOptions, token string) error {
	cfg, err := opts.resolve()
	if err != nil {
		return err
	}
	if err = storeKeyringToken(cfg.APIURL, token); err == nil {
		fmt.Fprintf(out, "Token saved to the system keyring for %s\n", cfg.APIURL)
		return nil
	}
	opts.logger().Warn("Keyring unavailable, writing token to config file", "error", err)

	path, err := opts.configFile()
	if err != nil {
		return err
	}
	onDisk, err := LoadConfig(path)
	if err != nil {
		return err
	}
	onDisk.Token = token
	if err := SaveConfig(path, onDisk); err != nil {
		return err
	}
	fmt.Fprintf(out, "Token saved to %s\n", path)
	return nil
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token for the configured API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve()
			if err != nil {
				return err
			}
			if err := deleteKeyringToken(cfg.APIURL); err != nil {
				opts.logger().Warn("Could not clear keyring entry", "error", err)
			}
			path, err := opts.configFile()
			if err != nil {
				return err
			}
			onDisk, err := LoadConfig(path)
			if err != nil {
				return err
			}
			if onDisk.Token != "" {
				onDisk.Token = ""
				if err := SaveConfig(path, onDisk); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}
