package cmd

import (
	"fmt"
	"strings"

	"github.com/abramin/symmerge/internal/store"
	"github.com/abramin/symmerge/internal/symbols"
	"github.com/spf13/cobra"
)

var lookupVersion string

var lookupCmd = &cobra.Command{
	Use:   "lookup <module> <name>",
	Short: "Show which variant of a symbol applies to a version",
	Long: `Resolve a fully-qualified symbol name against the merged store.

Without --version every variant of the name is listed with the versions
it is valid for.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		module, name := args[0], args[1]

		st, err := store.Open(GetConfig().Output.Dir)
		if err != nil {
			return err
		}
		defer st.Close()

		var variants []*store.Variant
		if lookupVersion != "" {
			variants, err = st.Resolve(module, name, symbols.Version(lookupVersion))
		} else {
			variants, err = namedVariants(st, module, name)
		}
		if err != nil {
			if store.IsNotFound(err) {
				return fmt.Errorf("no variant of %s in %s: %w", name, module, err)
			}
			return err
		}

		for _, v := range variants {
			fmt.Printf("%s %s #%d  valid for [%s]\n", v.Kind, v.Name, v.Index, strings.Join(v.ValidFor, ", "))
			fmt.Printf("  %s\n", v.Payload)
		}
		return nil
	},
}

func namedVariants(st *store.Store, module, name string) ([]*store.Variant, error) {
	all, err := st.GetModuleVariants(module)
	if err != nil {
		return nil, err
	}
	var out []*store.Variant
	for _, v := range all {
		if v.Name == name {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, store.ErrNotFound
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.Flags().StringVarP(&lookupVersion, "version", "v", "", "version to resolve against")
}
