package assoctool

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jacksonlee411/jobdesk/modules/association/domain/bindings"
	"github.com/jacksonlee411/jobdesk/modules/association/infrastructure/dictsource"
	"github.com/jacksonlee411/jobdesk/modules/association/services"
	"github.com/jacksonlee411/jobdesk/modules/permission/domain/catalog"
	permservices "github.com/jacksonlee411/jobdesk/modules/permission/services"
	"github.com/jacksonlee411/jobdesk/pkg/authz"
	"github.com/jacksonlee411/jobdesk/pkg/dict"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRootCommand wires the legacy association migration commands.
func NewRootCommand(logger *zap.Logger) *cobra.Command {
	if logger == nil {
		logger = zap.NewNop()
	}
	root := &cobra.Command{
		Use:           "assoctool",
		Short:         "Inspect and migrate legacy association columns",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newBindingsCommand(),
		newDecodeCommand(logger),
		newNormalizeCommand(logger),
		newPermsCommand(logger),
	)
	return root
}

func newBindingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bindings",
		Short: "List the association bindings of the admin screens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, b := range bindings.ListBindings() {
				primary := "-"
				if b.TrackPrimary {
					primary = b.PrimaryField
				}
				if _, err := fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", b.Key, b.DictCode, b.ListField, primary); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

type editorFlags struct {
	binding     string
	optionsPath string
}

func (f *editorFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.binding, "binding", "", "association binding key (see `assoctool bindings`)")
	cmd.Flags().StringVar(&f.optionsPath, "options", "", "YAML file with reference lists; enables option checks")
	_ = cmd.MarkFlagRequired("binding")
}

func (f *editorFlags) newEditor(ctx context.Context, logger *zap.Logger) (*services.Editor, error) {
	cfg := services.Config{Logger: logger}
	if f.optionsPath != "" {
		r, err := dict.LoadStatic(f.optionsPath)
		if err != nil {
			return nil, err
		}
		if err := dict.RegisterResolver(r); err != nil {
			return nil, err
		}
		return services.NewEditorForBinding(ctx, f.binding, dictsource.New(0), cfg)
	}
	b, ok := bindings.LookupBinding(f.binding)
	if !ok {
		return nil, fmt.Errorf("%w: %s", services.ErrUnknownBinding, f.binding)
	}
	cfg.Binding = b
	return services.NewEditor(cfg)
}

type decodeOutput struct {
	Binding  string   `json:"binding"`
	Members  []string `json:"members"`
	Primary  string   `json:"primary,omitempty"`
	List     string   `json:"list"`
	Decoded  string   `json:"decoded"`
	Degraded []string `json:"degraded,omitempty"`
	Invalid  string   `json:"invalid,omitempty"`
}

func newDecodeCommand(logger *zap.Logger) *cobra.Command {
	var flags editorFlags
	var primary string
	cmd := &cobra.Command{
		Use:   "decode TEXT",
		Short: "Decode one stored column value and print its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := flags.newEditor(cmd.Context(), logger)
			if err != nil {
				return err
			}
			e.LoadText(args[0], primary)
			state := e.State()
			rep := e.LastReport()
			out := decodeOutput{
				Binding:  state.Binding,
				Members:  e.Set().Strings(),
				Primary:  string(state.Primary),
				List:     state.List,
				Decoded:  string(rep.Decoded),
				Degraded: rep.Reasons(),
			}
			if err := e.Validate(); err != nil {
				out.Invalid = err.Error()
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&primary, "primary", "", "value of the separate primary field")
	return cmd
}

func newNormalizeCommand(logger *zap.Logger) *cobra.Command {
	var flags editorFlags
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Rewrite TSV rows of `list<TAB>primary` from stdin into canonical form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := flags.newEditor(cmd.Context(), logger)
			if err != nil {
				return err
			}
			return normalize(cmd.InOrStdin(), cmd.OutOrStdout(), e, logger)
		},
	}
	flags.bind(cmd)
	return cmd
}

func normalize(in io.Reader, out io.Writer, e *services.Editor, logger *zap.Logger) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	w := bufio.NewWriter(out)
	line := 0
	for scanner.Scan() {
		line++
		text, primary, _ := strings.Cut(scanner.Text(), "\t")
		e.LoadText(text, primary)
		if rep := e.LastReport(); rep.Degraded() {
			logger.Info("normalized degraded row", zap.Int("line", line), zap.Strings("reasons", rep.Reasons()))
		}
		list, p := e.Encode()
		if _, err := fmt.Fprintf(w, "%s\t%s\n", list, p); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return w.Flush()
}

type permsOutput struct {
	Permissions []string        `json:"permissions"`
	Encoded     string          `json:"encoded"`
	Dropped     []string        `json:"dropped,omitempty"`
	Unknown     []string        `json:"unknown,omitempty"`
	Policy      []string        `json:"policy,omitempty"`
	Tables      []catalog.Table `json:"tables,omitempty"`
	Check       *permsCheck     `json:"check,omitempty"`
}

type permsCheck struct {
	Permission string `json:"permission"`
	Allowed    bool   `json:"allowed"`
	Enforced   bool   `json:"enforced"`
}

func newPermsCommand(logger *zap.Logger) *cobra.Command {
	var catalogPath, role, check string
	var tables bool
	cmd := &cobra.Command{
		Use:   "perms TEXT",
		Short: "Decode a stored role permission column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := catalog.Default()
			if catalogPath != "" {
				loaded, err := catalog.LoadCatalog(catalogPath)
				if err != nil {
					return err
				}
				c = loaded
			}
			e, err := permservices.NewEditor(permservices.Config{Catalog: c, Logger: logger})
			if err != nil {
				return err
			}
			e.LoadText(args[0])

			out := permsOutput{
				Permissions: e.List(),
				Encoded:     e.Encode(),
				Dropped:     e.Dropped(),
				Unknown:     c.Unknown(e.Set()),
			}
			if tables {
				out.Tables = e.Tables()
			}
			if role != "" {
				roles := map[string][]string{role: e.List()}
				out.Policy = authz.PolicyLines(roles)
				if check != "" {
					mode, err := authz.ModeFromEnv()
					if err != nil {
						return err
					}
					a, err := authz.NewAuthorizer(roles, mode)
					if err != nil {
						return err
					}
					obj, act := authz.SplitPermission(check)
					allowed, enforced, err := a.Authorize(authz.SubjectFromRoleSlug(role), obj, act)
					if err != nil {
						return err
					}
					out.Check = &permsCheck{Permission: check, Allowed: allowed, Enforced: enforced}
				}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "permission catalog YAML (defaults to the built-in catalog)")
	cmd.Flags().StringVar(&role, "role", "", "role slug; prints casbin policy lines")
	cmd.Flags().StringVar(&check, "check", "", "permission to authorize for --role")
	cmd.Flags().BoolVar(&tables, "tables", false, "include category tables")
	return cmd
}
