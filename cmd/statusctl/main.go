// Command statusctl runs status-check resolution from the command line and
// inspects a session's remembered codes.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/polsek-portal/api/internal/codestore"
	"github.com/polsek-portal/api/internal/config"
	"github.com/polsek-portal/api/internal/status"
	"github.com/polsek-portal/api/internal/tracking"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "statusctl",
		Short:        "Status-check operator tool",
		SilenceUsage: true,
	}
	root.AddCommand(newClassifyCmd(), newValidateCmd(), newResolveCmd(), newRememberCmd(), newRecallCmd())
	return root
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <hint>",
		Short: "Print the service kind a hint maps to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := tracking.Classify(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", kind, kind.Label(), codestore.StorageKey(kind))
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	var hint string
	cmd := &cobra.Command{
		Use:   "validate <code>",
		Short: "Check a code against the format of the hinted service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := tracking.KindOfCode(args[0])
			if hint != "" {
				kind = tracking.Classify(hint)
			}
			if !tracking.IsValid(kind, args[0]) {
				return fmt.Errorf("%s", status.InvalidCodeMessage(kind, args[0]))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid %s code\n", kind)
			return nil
		},
	}
	cmd.Flags().StringVar(&hint, "from", "", "service hint (defaults to the code prefix)")
	return cmd
}

func newResolveCmd() *cobra.Command {
	var (
		nav     status.NavState
		rawURL  string
		submit  string
		session string
		driver  string
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a status-check entry and optionally submit a code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if rawURL != "" {
				u, err := url.Parse(rawURL)
				if err != nil {
					return fmt.Errorf("parse url: %w", err)
				}
				query = u.Query()
			}

			var store status.CodeStore
			if session != "" {
				s, closeFn, err := openSessionStore(cmd.Context(), driver, session)
				if err != nil {
					return err
				}
				defer closeFn()
				store = s
			}

			check := status.NewCheck(store)
			out := map[string]interface{}{"entry": check.Resolve(cmd.Context(), nav, query)}
			if submit != "" {
				out["outcome"] = check.Submit(cmd.Context(), submit)
			}
			out["phase"] = check.Phase().String()
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&nav.From, "state-from", "", "navigation state 'from'")
	cmd.Flags().StringVar(&nav.Code, "state-code", "", "navigation state 'code'")
	cmd.Flags().StringVar(&rawURL, "url", "", "entry URL, e.g. '/cek-status?from=pengajuan-izin'")
	cmd.Flags().StringVar(&submit, "submit", "", "code to submit after resolving")
	addStoreFlags(cmd, &session, &driver)
	return cmd
}

func newRememberCmd() *cobra.Command {
	var session, driver string
	cmd := &cobra.Command{
		Use:   "remember <hint> <code>",
		Short: "Write a code into a session's store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := openSessionStore(cmd.Context(), driver, session)
			if err != nil {
				return err
			}
			defer closeFn()

			kind := tracking.Classify(args[0])
			store.Remember(cmd.Context(), kind, args[1])
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", codestore.StorageKey(kind), store.Recall(cmd.Context(), kind))
			return nil
		},
	}
	addStoreFlags(cmd, &session, &driver)
	cmd.MarkFlagRequired("session")
	return cmd
}

func newRecallCmd() *cobra.Command {
	var session, driver string
	cmd := &cobra.Command{
		Use:   "recall <hint>",
		Short: "Print the code a session remembers for a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := openSessionStore(cmd.Context(), driver, session)
			if err != nil {
				return err
			}
			defer closeFn()

			fmt.Fprintln(cmd.OutOrStdout(), store.Recall(cmd.Context(), tracking.Classify(args[0])))
			return nil
		},
	}
	addStoreFlags(cmd, &session, &driver)
	cmd.MarkFlagRequired("session")
	return cmd
}

func addStoreFlags(cmd *cobra.Command, session, driver *string) {
	cmd.Flags().StringVar(session, "session", "", "session ID")
	cmd.Flags().StringVar(driver, "driver", "", "store driver (defaults to STORE_DRIVER)")
}

// openSessionStore opens the configured backend and returns the store of
// one session. The memory driver is process-local and only useful for
// trying commands out.
func openSessionStore(ctx context.Context, driver, session string) (*codestore.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if driver == "" {
		driver = cfg.StoreDriver
	}

	var (
		b       codestore.Backend
		closeFn = func() {}
	)
	switch driver {
	case config.DriverRedis:
		client := codestore.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		b = codestore.NewRedisBackend(client, cfg.SessionTTL)
		closeFn = func() { client.Close() }
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		pb := codestore.NewPostgresBackend(pool, cfg.SessionTTL)
		if err := pb.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		b, closeFn = pb, pool.Close
	case config.DriverMemory:
		b = codestore.NewMemoryBackend(cfg.SessionTTL)
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", driver)
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		log = zap.NewNop()
	}
	return codestore.New(b.Session(session), log), closeFn, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
