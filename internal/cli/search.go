package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sternrassler/pokedex-client/pkg/pokedex"
	"github.com/Sternrassler/pokedex-client/pkg/search"
	"github.com/spf13/cobra"
)

func (a *app) newSession(cmd *cobra.Command) *search.Session {
	return search.NewSession(a.client.Resolver(), a.client, search.NewTextRenderer(cmd.OutOrStdout()), search.Options{
		Spinner:        newTerminalSpinner(cmd.ErrOrStderr()),
		MaxConcurrency: a.cfg.MaxConcurrency,
		PageSize:       a.cfg.PageSize,
	})
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		searchContext string
		all           bool
	)

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search by name, id, type or ability",
		Example: "  pokedex search pikachu\n" +
			"  pokedex search --context type ghost\n" +
			"  pokedex search --all",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				if len(args) > 0 {
					return fmt.Errorf("--all takes no search term")
				}
				out, err := a.newSession(cmd).All(cmd.Context())
				if err != nil {
					return userError(err)
				}
				reportFailures(cmd, out)
				return nil
			}

			c, err := pokedex.ParseContext(searchContext)
			if err != nil {
				return err
			}
			term := ""
			if len(args) == 1 {
				term = args[0]
			}

			out, err := a.newSession(cmd).Search(cmd.Context(), c, term)
			if err != nil {
				return userError(err)
			}
			reportFailures(cmd, out)
			return nil
		},
	}

	names := make([]string, len(pokedex.Contexts))
	for i, c := range pokedex.Contexts {
		names[i] = string(c)
	}
	cmd.Flags().StringVarP(&searchContext, "context", "c", string(pokedex.ContextName),
		"Search context: "+strings.Join(names, ", "))
	cmd.Flags().BoolVar(&all, "all", false, "Show every species in the catalog")

	return cmd
}

func newRandomCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Show a random Pokémon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.newSession(cmd).Random(cmd.Context()); err != nil {
				return userError(err)
			}
			return nil
		},
	}
}

func reportFailures(cmd *cobra.Command, out *search.Outcome) {
	if out.Failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d entries could not be loaded\n", out.Failed, out.Requested)
	}
}

// ErrReported marks errors whose message the renderer has already shown.
// main exits non-zero without printing them again.
var ErrReported = errors.New("error already reported")

type reportedError struct {
	msg string
}

func (e *reportedError) Error() string        { return e.msg }
func (e *reportedError) Is(target error) bool { return target == ErrReported }

// userError replaces a lookup error with its user-facing message and marks
// it as reported.
func userError(err error) error {
	return &reportedError{msg: pokedex.UserMessage(err)}
}
